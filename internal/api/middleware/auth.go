package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/closetshop/closet-api/internal/api/handler"
	"github.com/closetshop/closet-api/internal/core/domain"
	"github.com/closetshop/closet-api/internal/core/ports"
)

// loggedOut is the body of every 401 produced by the gate.
var loggedOut = map[string]string{"error": domain.ErrUnauthorized.Message}

// Auth resolves the access token in the Authorization header to a user and
// injects it into context. The header carries the raw token; a "Bearer "
// prefix is accepted as well.
func Auth(access ports.AccessService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				return c.JSON(http.StatusUnauthorized, loggedOut)
			}

			user, err := access.Authenticate(c.Request().Context(), token)
			if err != nil {
				if domain.KindOf(err) == domain.KindUnauthorized {
					return c.JSON(http.StatusUnauthorized, loggedOut)
				}
				return err
			}

			c.Set(handler.UserContextKey, user)
			return next(c)
		}
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return header
}
