package handlers

import (
	"net/http"

	"okrhub/internal/common"
	"okrhub/internal/models"
	"okrhub/internal/services"

	"github.com/labstack/echo/v4"
)

// TenantHandlers handles tenant administration requests
type TenantHandlers struct {
	tenantService services.TenantService
}

func NewTenantHandlers(tenantService services.TenantService) *TenantHandlers {
	return &TenantHandlers{tenantService: tenantService}
}

// CreateTenantRequest represents the tenant creation payload
type CreateTenantRequest struct {
	Name      string `json:"name" validate:"required"`
	Subdomain string `json:"subdomain" validate:"required,alphanum,lowercase"`
}

func (h *TenantHandlers) CreateTenant(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateTenantRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return common.SendClientError(c, err.Error())
	}

	tenant := &models.Tenant{
		Name:      req.Name,
		Subdomain: req.Subdomain,
	}
	if err := h.tenantService.Create(ctx, tenant); err != nil {
		return respondError(c, err, "failed to create tenant")
	}
	return c.JSON(http.StatusCreated, tenant)
}

func (h *TenantHandlers) GetTenant(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := common.ValidateUUID(c.Param("id"), "tenant id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	// Callers may only read their own tenant
	callerTenant, ok := common.GetTenantIDFromContext(ctx)
	if !ok || callerTenant != tenantID {
		return common.SendForbiddenError(c, "cannot access another tenant")
	}

	tenant, err := h.tenantService.GetByID(ctx, tenantID)
	if err != nil {
		return respondError(c, err, "failed to load tenant")
	}
	return c.JSON(http.StatusOK, tenant)
}

// UpdateTenantRequest represents the tenant update payload
type UpdateTenantRequest struct {
	Name *string `json:"name"`
}

func (h *TenantHandlers) UpdateTenant(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := common.ValidateUUID(c.Param("id"), "tenant id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	callerTenant, ok := common.GetTenantIDFromContext(ctx)
	if !ok || callerTenant != tenantID {
		return common.SendForbiddenError(c, "cannot access another tenant")
	}

	var req UpdateTenantRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request format")
	}

	tenant, err := h.tenantService.GetByID(ctx, tenantID)
	if err != nil {
		return respondError(c, err, "failed to load tenant")
	}
	if req.Name != nil {
		tenant.Name = *req.Name
	}

	if err := h.tenantService.Update(ctx, tenant); err != nil {
		return respondError(c, err, "failed to update tenant")
	}
	return c.JSON(http.StatusOK, tenant)
}
