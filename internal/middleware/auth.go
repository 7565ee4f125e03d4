package middleware

import (
	"context"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"

	"okrhub/internal/common"
	"okrhub/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Claims is the token payload issued at login. Tenant and role ride in the
// token so request handling never needs a user lookup.
type Claims struct {
	UserID   uuid.UUID  `json:"user_id"`
	TenantID uuid.UUID  `json:"tenant_id"`
	Role     string     `json:"role"`
	AreaID   *uuid.UUID `json:"area_id,omitempty"`
	jwt.RegisteredClaims
}

// JWTMiddleware validates the bearer token and copies its claims into the
// request context under the common keys the rest of the stack reads.
func JWTMiddleware(jwtSecret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(jwtSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(Claims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			claims, ok := token.Claims.(*Claims)
			if !ok {
				return
			}

			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, common.TenantIDKey, claims.TenantID)
			ctx = context.WithValue(ctx, common.RoleKey, models.Role(claims.Role))
			if claims.AreaID != nil {
				ctx = context.WithValue(ctx, common.AreaIDKey, claims.AreaID)
			}
			c.SetRequest(c.Request().WithContext(ctx))
		},
	})
}

// roleFromContext parses the role claim into the closed enum. Tokens with
// unknown roles are rejected rather than treated as a default role.
func roleFromContext(ctx context.Context) (models.Role, error) {
	raw, ok := common.GetRoleFromContext(ctx)
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing role")
	}
	role, err := models.ParseRole(string(raw))
	if err != nil {
		return "", echo.NewHTTPError(http.StatusForbidden, "unrecognized role")
	}
	return role, nil
}

// RequireImportCapability gates the bulk import surface
func RequireImportCapability() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, err := roleFromContext(c.Request().Context())
			if err != nil {
				return err
			}
			if !role.CanImport() {
				return echo.NewHTTPError(http.StatusForbidden, "role cannot run imports")
			}
			return next(c)
		}
	}
}

// RequireAreaManagement gates entity writes. CEO and Admin manage every
// area; a Manager only the area bound to their account, checked per request
// against the area id in the route or body.
func RequireAreaManagement(resolveAreaID func(c echo.Context) (uuid.UUID, error)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			role, err := roleFromContext(ctx)
			if err != nil {
				return err
			}
			if role.CanManageAllAreas() {
				return next(c)
			}

			areaID, err := resolveAreaID(c)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "cannot determine area for request")
			}
			assigned, _ := common.GetAreaIDFromContext(ctx)
			if !role.CanManageArea(assigned, areaID) {
				return echo.NewHTTPError(http.StatusForbidden, "role cannot manage this area")
			}
			return next(c)
		}
	}
}

// RequireTenantAdmin gates tenant-level administration
func RequireTenantAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, err := roleFromContext(c.Request().Context())
			if err != nil {
				return err
			}
			if !role.CanManageAllAreas() {
				return echo.NewHTTPError(http.StatusForbidden, "administrator role required")
			}
			return next(c)
		}
	}
}
