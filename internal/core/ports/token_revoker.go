package ports

import (
	"context"
	"time"
)

// TokenRevoker tracks tokens invalidated before their natural expiry.
// Logout feeds it; the auth middleware consults it on every authorized call.
type TokenRevoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}
