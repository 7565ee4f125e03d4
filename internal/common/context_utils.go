package common

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"okrhub/internal/models"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	TenantIDKey contextKey = "tenant_id"
	RoleKey     contextKey = "role"
	AreaIDKey   contextKey = "area_id"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendValidationError sends a validation error response
func SendValidationError(c echo.Context, field, message string) error {
	details := map[string]string{
		field: message,
	}
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", "Validation failed", details))
}

// SendClientError sends a client error response
func SendClientError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("CLIENT_ERROR", message, nil))
}

// SendServerError sends a server error response
func SendServerError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", message, nil))
}

// SendNotFoundError sends a not found error response
func SendNotFoundError(c echo.Context, resource string) error {
	return c.JSON(http.StatusNotFound, CreateErrorResponse("NOT_FOUND", fmt.Sprintf("%s not found", resource), nil))
}

// SendUnauthorizedError sends an unauthorized error response
func SendUnauthorizedError(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, CreateErrorResponse("UNAUTHORIZED", "Unauthorized access", nil))
}

// SendForbiddenError sends a forbidden error response
func SendForbiddenError(c echo.Context, message string) error {
	return c.JSON(http.StatusForbidden, CreateErrorResponse("FORBIDDEN", message, nil))
}

// SendConflictError sends a conflict error response
func SendConflictError(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, CreateErrorResponse("CONFLICT", message, nil))
}

// SendRateLimitError sends a too-many-requests error response
func SendRateLimitError(c echo.Context, message string) error {
	return c.JSON(http.StatusTooManyRequests, CreateErrorResponse("RATE_LIMITED", message, nil))
}

// ValidateUUID validates UUID path/query parameters
func ValidateUUID(idStr string, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s is required", fieldName)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s is not a valid UUID: %v", fieldName, err)
	}

	return id, nil
}

// ValidateRequiredString validates required string fields
func ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateDateFormat validates YYYY-MM-DD date strings
func ValidateDateFormat(dateStr, fieldName string) error {
	if strings.TrimSpace(dateStr) == "" {
		return nil // Empty is allowed, will be handled elsewhere
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return fmt.Errorf("%s must be in YYYY-MM-DD format", fieldName)
	}

	if date.After(time.Now().AddDate(10, 0, 0)) {
		return fmt.Errorf("%s cannot be more than 10 years in the future", fieldName)
	}
	if date.Before(time.Now().AddDate(-100, 0, 0)) {
		return fmt.Errorf("%s cannot be more than 100 years ago", fieldName)
	}

	return nil
}

// ParseDate parses an optional YYYY-MM-DD string into a time pointer
func ParseDate(dateStr string) (*time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return nil, nil
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("must be in YYYY-MM-DD format")
	}
	return &date, nil
}

// ValidateProgress validates progress values. Out-of-range values are
// rejected, never clamped.
func ValidateProgress(progress int, fieldName string) error {
	if progress < 0 || progress > 100 {
		return fmt.Errorf("%s must be between 0 and 100", fieldName)
	}
	return nil
}

// ParseProgress parses a raw progress string and enforces the 0-100 bound
func ParseProgress(raw, fieldName string) (int, error) {
	raw = strings.TrimSpace(raw)
	progress, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", fieldName)
	}
	if err := ValidateProgress(progress, fieldName); err != nil {
		return 0, err
	}
	return progress, nil
}

// ValidateObjectiveStatus validates objective status values
func ValidateObjectiveStatus(status string) error {
	validStatuses := map[string]bool{
		models.StatusPlanning: true, models.StatusInProgress: true,
		models.StatusCompleted: true, models.StatusOverdue: true,
	}
	if !validStatuses[status] {
		return fmt.Errorf("objective status must be one of: planning, in_progress, completed, overdue")
	}
	return nil
}

// ValidateInitiativeStatus validates initiative status values
func ValidateInitiativeStatus(status string) error {
	validStatuses := map[string]bool{
		models.StatusPlanning: true, models.StatusInProgress: true,
		models.StatusCompleted: true, models.StatusOnHold: true,
	}
	if !validStatuses[status] {
		return fmt.Errorf("initiative status must be one of: planning, in_progress, completed, on_hold")
	}
	return nil
}

// ValidatePriority validates priority values
func ValidatePriority(priority string) error {
	validPriorities := map[string]bool{
		models.PriorityHigh: true, models.PriorityMedium: true, models.PriorityLow: true,
	}
	if !validPriorities[priority] {
		return fmt.Errorf("priority must be one of: high, medium, low")
	}
	return nil
}

// ValidateJobStatus validates import job status filter values
func ValidateJobStatus(status string) error {
	validStatuses := map[string]bool{
		models.JobPending: true, models.JobProcessing: true,
		models.JobCompleted: true, models.JobPartial: true, models.JobFailed: true,
	}
	if !validStatuses[status] {
		return fmt.Errorf("job status must be one of: pending, processing, completed, partial, failed")
	}
	return nil
}

// SafeString safely handles string pointer operations
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ValidatePaginationParams validates pagination parameters
func ValidatePaginationParams(limit, offset int) (int, int, error) {
	if limit <= 0 {
		limit = 50 // Default
	}
	if limit > 1000 {
		limit = 1000 // Maximum
	}

	if offset < 0 {
		offset = 0
	}
	if offset > 1000000 {
		return 0, 0, fmt.Errorf("offset cannot exceed 1,000,000")
	}

	return limit, offset, nil
}

// ValidateDateRange validates history date range filters
func ValidateDateRange(startDate, endDate time.Time) error {
	if endDate.Before(startDate) {
		return fmt.Errorf("end date cannot be before start date")
	}

	duration := endDate.Sub(startDate)
	maxDuration := time.Hour * 24 * 365 * 10 // 10 years
	if duration > maxDuration {
		return fmt.Errorf("date range cannot exceed 10 years")
	}

	return nil
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetTenantIDFromContext extracts the tenant ID from the request context
func GetTenantIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	tenantID, ok := ctx.Value(TenantIDKey).(uuid.UUID)
	return tenantID, ok
}

// GetRoleFromContext extracts the caller role from the request context
func GetRoleFromContext(ctx context.Context) (models.Role, bool) {
	role, ok := ctx.Value(RoleKey).(models.Role)
	return role, ok
}

// GetAreaIDFromContext extracts the caller's assigned area, if any
func GetAreaIDFromContext(ctx context.Context) (*uuid.UUID, bool) {
	areaID, ok := ctx.Value(AreaIDKey).(*uuid.UUID)
	return areaID, ok
}
