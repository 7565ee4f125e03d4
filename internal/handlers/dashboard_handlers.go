package handlers

import (
	"net/http"

	"okrhub/internal/common"
	"okrhub/internal/services"

	"github.com/labstack/echo/v4"
)

// DashboardHandlers serves the aggregated progress views
type DashboardHandlers struct {
	dashboardService services.DashboardService
}

func NewDashboardHandlers(dashboardService services.DashboardService) *DashboardHandlers {
	return &DashboardHandlers{dashboardService: dashboardService}
}

// GetSummary handles GET /dashboard/summary
func (h *DashboardHandlers) GetSummary(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	summary, err := h.dashboardService.Summary(ctx, tenantID)
	if err != nil {
		return respondError(c, err, "failed to load dashboard summary")
	}
	return c.JSON(http.StatusOK, summary)
}
