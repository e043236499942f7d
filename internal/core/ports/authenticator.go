package ports

import (
	"context"

	"github.com/servicelens/mobile-core/internal/core/domain"
)

// Credentials pairs an opaque session token with its user record.
type Credentials struct {
	Token string
	User  *domain.User
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Email       string
	Password    string
	FullName    string
	PhoneNumber string
	Role        string
}

// Authenticator validates credentials and produces a token/user pair. It
// never persists anything; persistence belongs to the session manager.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*Credentials, error)
	Register(ctx context.Context, input RegisterInput) (*Credentials, error)
}
