package handlers

import (
	"errors"

	"okrhub/internal/common"

	"github.com/labstack/echo/v4"
)

// respondError maps the service error taxonomy onto the standard error
// envelope. Anything unrecognized is a server error with a generic message
// so internals do not leak to clients.
func respondError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, common.ErrValidation):
		return common.SendClientError(c, err.Error())
	case errors.Is(err, common.ErrNotFound):
		return common.SendNotFoundError(c, err.Error())
	case errors.Is(err, common.ErrConflict):
		return common.SendConflictError(c, err.Error())
	case errors.Is(err, common.ErrForbidden):
		return common.SendForbiddenError(c, err.Error())
	case errors.Is(err, common.ErrRateLimited):
		return common.SendRateLimitError(c, err.Error())
	}
	c.Logger().Errorf("%s: %v", fallback, err)
	return common.SendServerError(c, fallback)
}
