package ports

import (
	"context"

	"github.com/servicelens/mobile-core/internal/core/domain"
)

// AccountService is the server-side counterpart of the client's AuthAPI:
// registration, login, profile reads/edits and token refresh for the
// development auth backend.
type AccountService interface {
	Register(ctx context.Context, input RegisterInput) (*Credentials, error)
	Login(ctx context.Context, email, password string) (*Credentials, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error)
	Refresh(ctx context.Context, token string) (string, error)

	// Lookup resolves an account by email. Admin-only surface.
	Lookup(ctx context.Context, email string) (*domain.User, error)
}
