package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/turtlecode/tutor-api/internal/api/middleware"
	"github.com/turtlecode/tutor-api/internal/core/domain"
)

// ctxUserID returns the user id injected by the Auth middleware. An empty id
// means the route was mounted without the middleware.
func ctxUserID(c echo.Context) (string, error) {
	userID, _ := c.Get(middleware.UserIDKey).(string)
	if userID == "" {
		return "", domain.ErrUnauthenticated
	}
	return userID, nil
}

// bindAndValidate decodes the request body into req and runs struct validation.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.NewValidationError("invalid payload")
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(req)
}
