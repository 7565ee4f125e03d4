package handlers

import (
	"net/http"

	"okrhub/internal/common"
	"okrhub/internal/models"
	"okrhub/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AreaHandlers handles area-related HTTP requests
type AreaHandlers struct {
	areaService services.AreaService
}

func NewAreaHandlers(areaService services.AreaService) *AreaHandlers {
	return &AreaHandlers{areaService: areaService}
}

// ListAreasRequest represents query parameters for listing areas
type ListAreasRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

func (h *AreaHandlers) ListAreas(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req ListAreasRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid query parameters")
	}
	limit, offset, err := common.ValidatePaginationParams(req.Limit, req.Offset)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	areas, err := h.areaService.List(ctx, tenantID, limit, offset)
	if err != nil {
		return respondError(c, err, "failed to list areas")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"areas":  areas,
		"limit":  limit,
		"offset": offset,
	})
}

// CreateAreaRequest represents the area creation payload
type CreateAreaRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
	ManagerID   *string `json:"manager_id"`
}

func (h *AreaHandlers) CreateArea(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req CreateAreaRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return common.SendClientError(c, err.Error())
	}

	area := &models.Area{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.ManagerID != nil {
		managerID, err := common.ValidateUUID(*req.ManagerID, "manager_id")
		if err != nil {
			return common.SendValidationError(c, "manager_id", err.Error())
		}
		area.ManagerID = &managerID
	}

	if err := h.areaService.Create(ctx, tenantID, area); err != nil {
		return respondError(c, err, "failed to create area")
	}
	return c.JSON(http.StatusCreated, area)
}

func (h *AreaHandlers) GetArea(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	areaID, err := common.ValidateUUID(c.Param("id"), "area id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	area, err := h.areaService.GetByID(ctx, tenantID, areaID)
	if err != nil {
		return respondError(c, err, "failed to load area")
	}
	return c.JSON(http.StatusOK, area)
}

// UpdateAreaRequest represents the area update payload
type UpdateAreaRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ManagerID   *string `json:"manager_id"`
}

func (h *AreaHandlers) UpdateArea(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	areaID, err := common.ValidateUUID(c.Param("id"), "area id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req UpdateAreaRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request format")
	}

	area, err := h.areaService.GetByID(ctx, tenantID, areaID)
	if err != nil {
		return respondError(c, err, "failed to load area")
	}

	if req.Name != nil {
		area.Name = *req.Name
	}
	if req.Description != nil {
		area.Description = req.Description
	}
	if req.ManagerID != nil {
		managerID, err := common.ValidateUUID(*req.ManagerID, "manager_id")
		if err != nil {
			return common.SendValidationError(c, "manager_id", err.Error())
		}
		area.ManagerID = &managerID
	}

	if err := h.areaService.Update(ctx, tenantID, area); err != nil {
		return respondError(c, err, "failed to update area")
	}
	return c.JSON(http.StatusOK, area)
}

func (h *AreaHandlers) DeleteArea(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	areaID, err := common.ValidateUUID(c.Param("id"), "area id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.areaService.Delete(ctx, tenantID, areaID); err != nil {
		return respondError(c, err, "failed to delete area")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Area deleted successfully",
	})
}

// GetAreaKPIs handles GET /areas/:id/kpis
func (h *AreaHandlers) GetAreaKPIs(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	areaID, err := common.ValidateUUID(c.Param("id"), "area id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	kpis, err := h.areaService.KPIs(ctx, tenantID, areaID)
	if err != nil {
		return respondError(c, err, "failed to compute area KPIs")
	}
	return c.JSON(http.StatusOK, kpis)
}

// ResolveAreaID extracts the area id from the :id route parameter for the
// area-management middleware
func ResolveAreaID(c echo.Context) (uuid.UUID, error) {
	return common.ValidateUUID(c.Param("id"), "area id")
}
