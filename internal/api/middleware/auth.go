package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// UserIDKey is the echo.Context key holding the authenticated user id.
const UserIDKey = "userID"

// Authorizer validates an identity token and returns the user id it names.
type Authorizer interface {
	Authorize(token string) (string, error)
}

// Auth validates the bearer token and injects the user id into context.
func Auth(authorizer Authorizer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Access token required")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Access token required")
			}

			userID, err := authorizer.Authorize(strings.TrimSpace(parts[1]))
			if err != nil || userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			c.Set(UserIDKey, userID)
			return next(c)
		}
	}
}
