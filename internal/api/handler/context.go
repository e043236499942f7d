package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// identity is the claim set the Auth middleware injects into the request
// context.
type identity struct {
	UserID string
	Email  string
	Role   string
}

// ctxIdentity extracts the claims injected by the Auth middleware and
// fast-fails before any service call: a missing uid means the middleware did
// not run (or the token carried no subject), so the request cannot be served.
func ctxIdentity(c echo.Context) (identity, error) {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	email, _ := c.Get("email").(string)
	role, _ := c.Get("role").(string)
	return identity{UserID: uid, Email: email, Role: role}, nil
}

// tokenRemaining returns how long the request's token stays valid, taken
// from the exp claim the Auth middleware stored. Zero when absent; the
// revocation list applies its own fallback TTL then.
func tokenRemaining(c echo.Context) time.Duration {
	exp, ok := c.Get("exp").(time.Time)
	if !ok {
		return 0
	}
	return time.Until(exp)
}
