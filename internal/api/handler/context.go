package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/commonfund/treasury-api/internal/core/domain"
)

// ctxIdentity extracts the caller identity injected by the Auth middleware
// and fast-fails before any service call: a missing or empty identity means
// the JWT was structurally valid but carried no on-ledger address, so the
// request cannot be attributed — reject with 401.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	who, _ := c.Get("identity").(string)
	if who == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "token missing identity")
	}
	return domain.Identity(who), nil
}
