package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/servicelens/mobile-core/internal/core/domain"
	"github.com/servicelens/mobile-core/internal/core/ports"
)

// testAccount is a pre-provisioned identity usable without a backend.
type testAccount struct {
	email    string
	password string
	token    string
	user     domain.User
}

// Built-in test identities, one per customer-facing role. Shipping these in
// a client build is a known security smell; they are disabled unless the
// deployment opts in (AUTH_TEST_ACCOUNTS). Email matching is case-sensitive.
var testAccounts = []testAccount{
	{
		email:    "user@test.com",
		password: "123456",
		token:    "mock-user-token-123",
		user: domain.User{
			ID:          "1",
			Email:       "user@test.com",
			FullName:    "Nguyễn Văn A",
			PhoneNumber: "0901234567",
			Role:        domain.RoleUser,
		},
	},
	{
		email:    "staff@test.com",
		password: "123456",
		token:    "mock-staff-token-456",
		user: domain.User{
			ID:          "2",
			Email:       "staff@test.com",
			FullName:    "Trần Thị B",
			PhoneNumber: "0912345678",
			Role:        domain.RoleStaff,
		},
	},
	{
		email:    "admin@test.com",
		password: "123456",
		token:    "mock-admin-token-789",
		user: domain.User{
			ID:          "3",
			Email:       "admin@test.com",
			FullName:    "Lê Văn C",
			PhoneNumber: "0923456789",
			Role:        domain.RoleAdmin,
		},
	},
}

// Authenticator resolves login and registration requests. Login consults the
// built-in test accounts first (when enabled) and only then contacts the
// remote authentication service; registration always goes remote.
type Authenticator struct {
	api          ports.AuthAPI
	testAccounts bool
	logger       zerolog.Logger
}

func NewAuthenticator(api ports.AuthAPI, enableTestAccounts bool, logger zerolog.Logger) *Authenticator {
	return &Authenticator{api: api, testAccounts: enableTestAccounts, logger: logger}
}

func (a *Authenticator) Login(ctx context.Context, email, password string) (*ports.Credentials, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if a.testAccounts {
		for _, acc := range testAccounts {
			if acc.email == email && acc.password == password {
				a.logger.Debug().Str("email", email).Msg("test account login, backend skipped")
				user := acc.user
				return &ports.Credentials{Token: acc.token, User: &user}, nil
			}
		}
	}

	creds, err := a.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return creds, nil
}

func (a *Authenticator) Register(ctx context.Context, input ports.RegisterInput) (*ports.Credentials, error) {
	if input.Email == "" || input.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	return a.api.Register(ctx, input)
}
