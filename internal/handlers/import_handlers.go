package handlers

import (
	"net/http"
	"time"

	"okrhub/internal/common"
	"okrhub/internal/importer"
	"okrhub/internal/repositories"

	"github.com/labstack/echo/v4"
)

// ImportHandlers exposes the bulk import surface: signed upload URLs, upload
// notification, job status polling, per-row results, history and stats.
type ImportHandlers struct {
	dispatcher *importer.Dispatcher
	tracker    *importer.Tracker
}

func NewImportHandlers(dispatcher *importer.Dispatcher, tracker *importer.Tracker) *ImportHandlers {
	return &ImportHandlers{
		dispatcher: dispatcher,
		tracker:    tracker,
	}
}

// RequestSignedURL handles POST /upload/signed-url
func (h *ImportHandlers) RequestSignedURL(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req importer.SignedURLRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return common.SendClientError(c, err.Error())
	}

	resp, err := h.dispatcher.RequestSignedURL(ctx, tenantID, userID, &req)
	if err != nil {
		return respondError(c, err, "failed to issue upload URL")
	}
	return c.JSON(http.StatusOK, resp)
}

// NotifyUploadRequest carries the object path returned by the signed-url step
type NotifyUploadRequest struct {
	ObjectPath string `json:"objectPath" validate:"required"`
}

// NotifyUpload handles POST /upload/notify
func (h *ImportHandlers) NotifyUpload(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req NotifyUploadRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return common.SendClientError(c, err.Error())
	}

	summary, err := h.dispatcher.Notify(ctx, tenantID, userID, req.ObjectPath)
	if err != nil {
		return respondError(c, err, "failed to start import")
	}

	status := http.StatusAccepted
	if summary.Duplicate || summary.Job.IsTerminal() {
		status = http.StatusOK
	}
	return c.JSON(status, summary)
}

// GetJob handles GET /upload/jobs/:id
func (h *ImportHandlers) GetJob(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	jobID, err := common.ValidateUUID(c.Param("id"), "job id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	summary, err := h.tracker.GetStatus(ctx, tenantID, jobID)
	if err != nil {
		return respondError(c, err, "failed to load import job")
	}
	return c.JSON(http.StatusOK, summary)
}

// ListJobItemsRequest represents query parameters for per-row results
type ListJobItemsRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// ListJobItems handles GET /upload/jobs/:id/items
func (h *ImportHandlers) ListJobItems(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	jobID, err := common.ValidateUUID(c.Param("id"), "job id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req ListJobItemsRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid query parameters")
	}
	limit, offset, err := common.ValidatePaginationParams(req.Limit, req.Offset)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	items, total, err := h.tracker.ListItems(ctx, tenantID, jobID, limit, offset)
	if err != nil {
		return respondError(c, err, "failed to load import results")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"items":  items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// ListJobsRequest represents query parameters for the upload history
type ListJobsRequest struct {
	Status   string `query:"status"`
	DateFrom string `query:"dateFrom"`
	DateTo   string `query:"dateTo"`
	Limit    int    `query:"limit"`
	Offset   int    `query:"offset"`
}

// ListJobs handles GET /upload/history
func (h *ImportHandlers) ListJobs(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req ListJobsRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid query parameters")
	}
	limit, offset, err := common.ValidatePaginationParams(req.Limit, req.Offset)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	filter := &repositories.ImportJobFilter{
		Status: req.Status,
		Limit:  limit,
		Offset: offset,
	}
	if req.DateFrom != "" {
		from, err := common.ParseDate(req.DateFrom)
		if err != nil {
			return common.SendValidationError(c, "dateFrom", err.Error())
		}
		filter.DateFrom = from
	}
	if req.DateTo != "" {
		to, err := common.ParseDate(req.DateTo)
		if err != nil {
			return common.SendValidationError(c, "dateTo", err.Error())
		}
		filter.DateTo = to
	}
	if filter.DateFrom != nil && filter.DateTo != nil {
		if err := common.ValidateDateRange(*filter.DateFrom, *filter.DateTo); err != nil {
			return common.SendClientError(c, err.Error())
		}
	}

	jobs, err := h.tracker.ListJobs(ctx, tenantID, filter)
	if err != nil {
		return respondError(c, err, "failed to load import history")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"jobs":   jobs,
		"limit":  limit,
		"offset": offset,
	})
}

// GetStats handles GET /upload/stats
func (h *ImportHandlers) GetStats(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	stats, err := h.tracker.Stats(ctx, tenantID)
	if err != nil {
		return respondError(c, err, "failed to load import stats")
	}
	stats.GeneratedAt = time.Now().UTC()
	return c.JSON(http.StatusOK, stats)
}
