package handlers

import (
	"net/http"

	"okrhub/internal/common"
	"okrhub/internal/models"
	"okrhub/internal/services"

	"github.com/labstack/echo/v4"
)

// ActivityHandlers handles activity-related HTTP requests
type ActivityHandlers struct {
	activityService services.ActivityService
}

func NewActivityHandlers(activityService services.ActivityService) *ActivityHandlers {
	return &ActivityHandlers{activityService: activityService}
}

// CreateActivityRequest represents the activity creation payload
type CreateActivityRequest struct {
	InitiativeID string  `json:"initiative_id" validate:"required,uuid"`
	Title        string  `json:"title" validate:"required"`
	AssignedTo   *string `json:"assigned_to"`
	IsCompleted  bool    `json:"is_completed"`
}

func (h *ActivityHandlers) CreateActivity(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req CreateActivityRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return common.SendClientError(c, err.Error())
	}

	initiativeID, err := common.ValidateUUID(req.InitiativeID, "initiative_id")
	if err != nil {
		return common.SendValidationError(c, "initiative_id", err.Error())
	}

	activity := &models.Activity{
		InitiativeID: initiativeID,
		Title:        req.Title,
		IsCompleted:  req.IsCompleted,
	}
	if req.AssignedTo != nil {
		assignedTo, err := common.ValidateUUID(*req.AssignedTo, "assigned_to")
		if err != nil {
			return common.SendValidationError(c, "assigned_to", err.Error())
		}
		activity.AssignedTo = &assignedTo
	}

	if err := h.activityService.Create(ctx, tenantID, activity); err != nil {
		return respondError(c, err, "failed to create activity")
	}
	return c.JSON(http.StatusCreated, activity)
}

func (h *ActivityHandlers) GetActivity(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	activityID, err := common.ValidateUUID(c.Param("id"), "activity id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	activity, err := h.activityService.GetByID(ctx, tenantID, activityID)
	if err != nil {
		return respondError(c, err, "failed to load activity")
	}
	return c.JSON(http.StatusOK, activity)
}

// UpdateActivityRequest represents the activity update payload
type UpdateActivityRequest struct {
	Title       *string `json:"title"`
	AssignedTo  *string `json:"assigned_to"`
	IsCompleted *bool   `json:"is_completed"`
}

func (h *ActivityHandlers) UpdateActivity(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	activityID, err := common.ValidateUUID(c.Param("id"), "activity id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req UpdateActivityRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request format")
	}

	activity, err := h.activityService.GetByID(ctx, tenantID, activityID)
	if err != nil {
		return respondError(c, err, "failed to load activity")
	}

	if req.Title != nil {
		activity.Title = *req.Title
	}
	if req.AssignedTo != nil {
		assignedTo, err := common.ValidateUUID(*req.AssignedTo, "assigned_to")
		if err != nil {
			return common.SendValidationError(c, "assigned_to", err.Error())
		}
		activity.AssignedTo = &assignedTo
	}
	if req.IsCompleted != nil {
		activity.IsCompleted = *req.IsCompleted
	}

	if err := h.activityService.Update(ctx, tenantID, activity); err != nil {
		return respondError(c, err, "failed to update activity")
	}
	return c.JSON(http.StatusOK, activity)
}

func (h *ActivityHandlers) DeleteActivity(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	activityID, err := common.ValidateUUID(c.Param("id"), "activity id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.activityService.Delete(ctx, tenantID, activityID); err != nil {
		return respondError(c, err, "failed to delete activity")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Activity deleted successfully",
	})
}
