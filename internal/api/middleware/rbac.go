package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/commonfund/treasury-api/internal/core/domain"
)

// RoleChecker answers whether an identity currently holds a role. Roles are
// earned on the ledger (contributing, crossing the stake threshold), not
// carried in the token, so the gate has to ask the live state.
type RoleChecker interface {
	HasRole(ctx context.Context, who domain.Identity, tag domain.RoleTag) bool
}

// RequireRole rejects callers whose ledger membership lacks any of the given
// roles. Auth must run first so the identity is already in context.
func RequireRole(checker RoleChecker, tags ...domain.RoleTag) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			who, _ := c.Get("identity").(string)
			if who == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
			}
			for _, tag := range tags {
				if checker.HasRole(c.Request().Context(), domain.Identity(who), tag) {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
	}
}
