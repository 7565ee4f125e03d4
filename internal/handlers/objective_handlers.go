package handlers

import (
	"net/http"

	"okrhub/internal/common"
	"okrhub/internal/models"
	"okrhub/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ObjectiveHandlers handles objective-related HTTP requests
type ObjectiveHandlers struct {
	objectiveService services.ObjectiveService
}

func NewObjectiveHandlers(objectiveService services.ObjectiveService) *ObjectiveHandlers {
	return &ObjectiveHandlers{objectiveService: objectiveService}
}

// ListObjectivesRequest represents query parameters for listing objectives
type ListObjectivesRequest struct {
	AreaID string `query:"area_id"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

func (h *ObjectiveHandlers) ListObjectives(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req ListObjectivesRequest
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

	objectives, err := h.objectiveService.List(ctx, tenantID, areaID, limit, offset)
	if err != nil {
		return respondError(c, err, "failed to list objectives")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"objectives": objectives,
		"limit":      limit,
		"offset":     offset,
	})
}

// CreateObjectiveRequest represents the objective creation payload
type CreateObjectiveRequest struct {
	AreaID      string  `json:"area_id" validate:"required,uuid"`
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description"`
	Quarter     *string `json:"quarter"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	Progress    int     `json:"progress"`
	StartDate   *string `json:"start_date"`
	TargetDate  *string `json:"target_date"`
}

func (h *ObjectiveHandlers) CreateObjective(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req CreateObjectiveRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return common.SendClientError(c, err.Error())
	}

	areaID, err := common.ValidateUUID(req.AreaID, "area_id")
	if err != nil {
		return common.SendValidationError(c, "area_id", err.Error())
	}

	objective := &models.Objective{
		AreaID:      areaID,
		Title:       req.Title,
		Description: req.Description,
		Quarter:     req.Quarter,
		Status:      req.Status,
		Priority:    req.Priority,
		Progress:    req.Progress,
	}
	if req.StartDate != nil {
		startDate, err := common.ParseDate(*req.StartDate)
		if err != nil {
			return common.SendValidationError(c, "start_date", err.Error())
		}
		objective.StartDate = startDate
	}
	if req.TargetDate != nil {
		targetDate, err := common.ParseDate(*req.TargetDate)
		if err != nil {
			return common.SendValidationError(c, "target_date", err.Error())
		}
		objective.TargetDate = targetDate
	}

	if err := h.objectiveService.Create(ctx, tenantID, objective); err != nil {
		return respondError(c, err, "failed to create objective")
	}
	return c.JSON(http.StatusCreated, objective)
}

func (h *ObjectiveHandlers) GetObjective(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	objectiveID, err := common.ValidateUUID(c.Param("id"), "objective id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	objective, err := h.objectiveService.GetByID(ctx, tenantID, objectiveID)
	if err != nil {
		return respondError(c, err, "failed to load objective")
	}
	return c.JSON(http.StatusOK, objective)
}

// UpdateObjectiveRequest represents the objective update payload
type UpdateObjectiveRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Quarter     *string `json:"quarter"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	Progress    *int    `json:"progress"`
	StartDate   *string `json:"start_date"`
	TargetDate  *string `json:"target_date"`
}

func (h *ObjectiveHandlers) UpdateObjective(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	objectiveID, err := common.ValidateUUID(c.Param("id"), "objective id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req UpdateObjectiveRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request format")
	}

	objective, err := h.objectiveService.GetByID(ctx, tenantID, objectiveID)
	if err != nil {
		return respondError(c, err, "failed to load objective")
	}

	if req.Title != nil {
		objective.Title = *req.Title
	}
	if req.Description != nil {
		objective.Description = req.Description
	}
	if req.Quarter != nil {
		objective.Quarter = req.Quarter
	}
	if req.Status != nil {
		objective.Status = *req.Status
	}
	if req.Priority != nil {
		objective.Priority = *req.Priority
	}
	if req.Progress != nil {
		objective.Progress = *req.Progress
	}
	if req.StartDate != nil {
		startDate, err := common.ParseDate(*req.StartDate)
		if err != nil {
			return common.SendValidationError(c, "start_date", err.Error())
		}
		objective.StartDate = startDate
	}
	if req.TargetDate != nil {
		targetDate, err := common.ParseDate(*req.TargetDate)
		if err != nil {
			return common.SendValidationError(c, "target_date", err.Error())
		}
		objective.TargetDate = targetDate
	}

	if err := h.objectiveService.Update(ctx, tenantID, objective); err != nil {
		return respondError(c, err, "failed to update objective")
	}
	return c.JSON(http.StatusOK, objective)
}

func (h *ObjectiveHandlers) DeleteObjective(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	objectiveID, err := common.ValidateUUID(c.Param("id"), "objective id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.objectiveService.Delete(ctx, tenantID, objectiveID); err != nil {
		return respondError(c, err, "failed to delete objective")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Objective deleted successfully",
	})
}

// ListObjectiveInitiatives handles GET /objectives/:id/initiatives
func (h *ObjectiveHandlers) ListObjectiveInitiatives(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	objectiveID, err := common.ValidateUUID(c.Param("id"), "objective id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	initiatives, err := h.objectiveService.Initiatives(ctx, tenantID, objectiveID)
	if err != nil {
		return respondError(c, err, "failed to list initiatives")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"initiatives": initiatives,
	})
}
