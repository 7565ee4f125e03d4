package services

import (
	"context"
	"fmt"

	"okrhub/internal/common"
	"okrhub/internal/models"

	"github.com/google/uuid"
)

// authorizeArea enforces the area-management capability for the caller in
// ctx. Contexts without a role claim (background workers, the import
// pipeline) pass; HTTP requests always carry one via the JWT middleware.
func authorizeArea(ctx context.Context, areaID uuid.UUID) error {
	raw, ok := common.GetRoleFromContext(ctx)
	if !ok {
		return nil
	}
	role, err := models.ParseRole(string(raw))
	if err != nil {
		return fmt.Errorf("%w: unrecognized role", common.ErrForbidden)
	}
	assigned, _ := common.GetAreaIDFromContext(ctx)
	if !role.CanManageArea(assigned, areaID) {
		return fmt.Errorf("%w: role cannot manage area %s", common.ErrForbidden, areaID)
	}
	return nil
}

// authorizeAllAreas enforces tenant-wide management capability
func authorizeAllAreas(ctx context.Context) error {
	raw, ok := common.GetRoleFromContext(ctx)
	if !ok {
		return nil
	}
	role, err := models.ParseRole(string(raw))
	if err != nil {
		return fmt.Errorf("%w: unrecognized role", common.ErrForbidden)
	}
	if !role.CanManageAllAreas() {
		return fmt.Errorf("%w: administrator role required", common.ErrForbidden)
	}
	return nil
}
