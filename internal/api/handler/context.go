package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/product-api/internal/core/domain"
)

// ctxClaims extracts the identity injected by the Auth middleware. A missing
// subject or role means the route was mounted without the middleware.
func ctxClaims(c echo.Context) (username string, role domain.Role, err error) {
	username, _ = c.Get("username").(string)
	role, _ = c.Get("role").(domain.Role)
	if username == "" || !role.IsValid() {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return username, role, nil
}
