package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/reviewdeck/reviewdeck/internal/core/domain"
	"github.com/reviewdeck/reviewdeck/internal/core/ports"
)

const actorContextKey = "actor"

// Auth verifies the bearer token and resolves the user it names, storing
// the result in the request context. With required=false an absent header
// passes through as anonymous; a present-but-invalid token still fails, so
// a client can never downgrade itself accidentally.
func Auth(auth ports.AuthService, required bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				if required {
					return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
				}
				return next(c)
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			user, err := auth.Authenticate(c.Request().Context(), parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(actorContextKey, user)
			return next(c)
		}
	}
}

// Actor returns the authenticated user for the request, or nil for an
// anonymous one.
func Actor(c echo.Context) *domain.User {
	actor, _ := c.Get(actorContextKey).(*domain.User)
	return actor
}
