package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/reviewdeck/reviewdeck/internal/api/metrics"
	"github.com/reviewdeck/reviewdeck/internal/core/policy"
)

// Authorize runs the request-level policy decision for a resource class.
// It needs no object lookup: denial short-circuits before any resource is
// fetched. Failing with no identity is 401; failing with one is 403.
func Authorize(class policy.Class) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := Actor(c)
			if policy.Allowed(actor, verbFor(c.Request().Method), class) {
				return next(c)
			}

			metrics.AuthzDenialsTotal.WithLabelValues(class.String(), "request").Inc()
			if actor == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return echo.NewHTTPError(http.StatusForbidden, "access forbidden")
		}
	}
}

// verbFor maps safe HTTP methods to reads and everything else to writes.
func verbFor(method string) policy.Verb {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return policy.Read
	}
	return policy.Write
}
