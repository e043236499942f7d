package ports

import (
	"context"

	"github.com/servicelens/mobile-core/internal/core/domain"
)

// AuthAPI is the remote authentication service boundary consumed by the
// client. Implementations map transport and payload failures to
// domain.ErrNetworkFailure / domain.ErrMalformedResponse and auth rejections
// to domain.ErrInvalidCredentials.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*Credentials, error)
	Register(ctx context.Context, input RegisterInput) (*Credentials, error)

	// Profile and UpdateProfile are authorized calls; token is sent as a
	// bearer credential.
	Profile(ctx context.Context, token string) (*domain.User, error)
	UpdateProfile(ctx context.Context, token string, update domain.ProfileUpdate) (*domain.User, error)

	// Refresh exchanges the current token for a fresh one.
	Refresh(ctx context.Context, token string) (string, error)

	// Logout invalidates the token server-side. Best effort.
	Logout(ctx context.Context, token string) error
}
