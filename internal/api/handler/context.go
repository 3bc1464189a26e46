package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/closetshop/closet-api/internal/core/domain"
)

// UserContextKey is where the access gate stores the authenticated user.
const UserContextKey = "user"

// ctxUser returns the user injected by the access gate. Handlers behind the
// gate can rely on it; a missing user is reported as logged out before any
// service call.
func ctxUser(c echo.Context) (*domain.User, error) {
	user, _ := c.Get(UserContextKey).(*domain.User)
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}
