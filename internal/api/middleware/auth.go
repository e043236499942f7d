package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/servicelens/mobile-core/internal/api/metrics"
	"github.com/servicelens/mobile-core/internal/core/ports"
)

// Auth validates the bearer JWT, rejects revoked tokens, and injects claims
// into the request context (uid, email, role, exp) along with the raw token.
// revoker may be nil when no revocation backend is configured.
func Auth(jwtSecret string, revoker ports.TokenRevoker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}
			raw := parts[1]

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			if revoker != nil {
				revoked, err := revoker.IsRevoked(c.Request().Context(), raw)
				if err != nil {
					return echo.NewHTTPError(http.StatusServiceUnavailable, "revocation check unavailable")
				}
				if revoked {
					metrics.RevokedTokenHitsTotal.Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, "token revoked")
				}
			}

			c.Set("uid", claims["uid"])
			c.Set("email", claims["email"])
			c.Set("role", claims["role"])
			c.Set("token", raw)
			if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
				c.Set("exp", exp.Time)
			}

			return next(c)
		}
	}
}
