package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/servicelens/mobile-core/internal/core/ports"
)

// AdminHandler serves the admin-only account lookups. RBAC is enforced by
// the router; handlers assume an ADMIN identity.
type AdminHandler struct {
	accounts ports.AccountService
}

func NewAdminHandler(accounts ports.AccountService) *AdminHandler {
	return &AdminHandler{accounts: accounts}
}

// AccountByEmail returns the public profile of the account registered under
// the given email.
//
// @Summary      Look up an account
// @Tags         admin
// @Produce      json
// @Param        email  path      string  true  "Account email"
// @Success      200    {object}  domain.User
// @Failure      403    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Router       /admin/accounts/{email} [get]
func (h *AdminHandler) AccountByEmail(c echo.Context) error {
	email := c.Param("email")
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing email")
	}

	user, err := h.accounts.Lookup(c.Request().Context(), email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
