package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/closetshop/closet-api/internal/api/handler"
	"github.com/closetshop/closet-api/internal/core/domain"
)

// RequireAdmin only lets administrators through. It must run after Auth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, _ := c.Get(handler.UserContextKey).(*domain.User)
			if user == nil {
				return c.JSON(http.StatusUnauthorized, loggedOut)
			}
			if !user.Admin {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
