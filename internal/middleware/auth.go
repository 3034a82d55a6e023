package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	"vltweb/internal/lib/jwt"
)

const roleContextKey = "auth.role"

// RequireToken guards mutating admin routes with a bearer token. When
// roles are given, the token's role must be one of them. The verified
// role is stored on the echo context for handlers that care.
func RequireToken(secret string, roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			role, err := jwt.ParseRole(token, secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			if len(roles) > 0 && !slices.Contains(roles, role) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
			}

			c.Set(roleContextKey, role)

			return next(c)
		}
	}
}

// RoleFromContext returns the role set by RequireToken, if any.
func RoleFromContext(c echo.Context) string {
	role, _ := c.Get(roleContextKey).(string)
	return role
}
