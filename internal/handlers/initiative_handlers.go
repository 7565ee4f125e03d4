package handlers

import (
	"net/http"

	"okrhub/internal/common"
	"okrhub/internal/models"
	"okrhub/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// InitiativeHandlers handles initiative-related HTTP requests
type InitiativeHandlers struct {
	initiativeService services.InitiativeService
}

func NewInitiativeHandlers(initiativeService services.InitiativeService) *InitiativeHandlers {
	return &InitiativeHandlers{initiativeService: initiativeService}
}

// ListInitiativesRequest represents query parameters for listing initiatives
type ListInitiativesRequest struct {
	AreaID string `query:"area_id"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

func (h *InitiativeHandlers) ListInitiatives(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req ListInitiativesRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid query parameters")
	}
	limit, offset, err := common.ValidatePaginationParams(req.Limit, req.Offset)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var areaID *uuid.UUID
	if req.AreaID != "" {
		parsed, parseErr := common.ValidateUUID(req.AreaID, "area_id")
		if parseErr != nil {
			return common.SendValidationError(c, "area_id", parseErr.Error())
		}
		areaID = &parsed
	}

	initiatives, err := h.initiativeService.List(ctx, tenantID, areaID, limit, offset)
	if err != nil {
		return respondError(c, err, "failed to list initiatives")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"initiatives": initiatives,
		"limit":       limit,
		"offset":      offset,
	})
}

// CreateInitiativeRequest represents the initiative creation payload
type CreateInitiativeRequest struct {
	ObjectiveID string   `json:"objective_id" validate:"required,uuid"`
	Title       string   `json:"title" validate:"required"`
	Description *string  `json:"description"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	Progress    int      `json:"progress"`
	Budget      *float64 `json:"budget"`
	ActualCost  *float64 `json:"actual_cost"`
	TargetDate  *string  `json:"target_date"`
}

func (h *InitiativeHandlers) CreateInitiative(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req CreateInitiativeRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return common.SendClientError(c, err.Error())
	}

	objectiveID, err := common.ValidateUUID(req.ObjectiveID, "objective_id")
	if err != nil {
		return common.SendValidationError(c, "objective_id", err.Error())
	}

	initiative := &models.Initiative{
		ObjectiveID: objectiveID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Progress:    req.Progress,
		Budget:      req.Budget,
		ActualCost:  req.ActualCost,
	}
	if req.TargetDate != nil {
		targetDate, err := common.ParseDate(*req.TargetDate)
		if err != nil {
			return common.SendValidationError(c, "target_date", err.Error())
		}
		initiative.TargetDate = targetDate
	}

	if err := h.initiativeService.Create(ctx, tenantID, initiative); err != nil {
		return respondError(c, err, "failed to create initiative")
	}
	return c.JSON(http.StatusCreated, initiative)
}

func (h *InitiativeHandlers) GetInitiative(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	initiativeID, err := common.ValidateUUID(c.Param("id"), "initiative id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	initiative, err := h.initiativeService.GetByID(ctx, tenantID, initiativeID)
	if err != nil {
		return respondError(c, err, "failed to load initiative")
	}
	return c.JSON(http.StatusOK, initiative)
}

// UpdateInitiativeRequest represents the initiative update payload
type UpdateInitiativeRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Status      *string  `json:"status"`
	Priority    *string  `json:"priority"`
	Progress    *int     `json:"progress"`
	Budget      *float64 `json:"budget"`
	ActualCost  *float64 `json:"actual_cost"`
	TargetDate  *string  `json:"target_date"`
}

func (h *InitiativeHandlers) UpdateInitiative(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	initiativeID, err := common.ValidateUUID(c.Param("id"), "initiative id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req UpdateInitiativeRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request format")
	}

	initiative, err := h.initiativeService.GetByID(ctx, tenantID, initiativeID)
	if err != nil {
		return respondError(c, err, "failed to load initiative")
	}

	if req.Title != nil {
		initiative.Title = *req.Title
	}
	if req.Description != nil {
		initiative.Description = req.Description
	}
	if req.Status != nil {
		initiative.Status = *req.Status
	}
	if req.Priority != nil {
		initiative.Priority = *req.Priority
	}
	if req.Progress != nil {
		initiative.Progress = *req.Progress
	}
	if req.Budget != nil {
		initiative.Budget = req.Budget
	}
	if req.ActualCost != nil {
		initiative.ActualCost = req.ActualCost
	}
	if req.TargetDate != nil {
		targetDate, err := common.ParseDate(*req.TargetDate)
		if err != nil {
			return common.SendValidationError(c, "target_date", err.Error())
		}
		initiative.TargetDate = targetDate
	}

	if err := h.initiativeService.Update(ctx, tenantID, initiative); err != nil {
		return respondError(c, err, "failed to update initiative")
	}
	return c.JSON(http.StatusOK, initiative)
}

func (h *InitiativeHandlers) DeleteInitiative(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	initiativeID, err := common.ValidateUUID(c.Param("id"), "initiative id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.initiativeService.Delete(ctx, tenantID, initiativeID); err != nil {
		return respondError(c, err, "failed to delete initiative")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Initiative deleted successfully",
	})
}

// ListInitiativeActivitiesRequest represents query parameters for listing
// an initiative's activities
type ListInitiativeActivitiesRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// ListInitiativeActivities handles GET /initiatives/:id/activities
func (h *InitiativeHandlers) ListInitiativeActivities(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	initiativeID, err := common.ValidateUUID(c.Param("id"), "initiative id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req ListInitiativeActivitiesRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid query parameters")
	}
	limit, offset, err := common.ValidatePaginationParams(req.Limit, req.Offset)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	activities, err := h.initiativeService.Activities(ctx, tenantID, initiativeID, limit, offset)
	if err != nil {
		return respondError(c, err, "failed to list activities")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"activities": activities,
		"limit":      limit,
		"offset":     offset,
	})
}
