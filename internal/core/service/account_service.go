package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/servicelens/mobile-core/internal/core/domain"
	"github.com/servicelens/mobile-core/internal/core/ports"
)

// AccountService implements registration, login, profile management and
// token refresh for the development auth backend.
type AccountService struct {
	repo      ports.AccountRepository
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAccountService(repo ports.AccountRepository, jwtSecret string, tokenTTL time.Duration) *AccountService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AccountService{repo: repo, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

func (s *AccountService) Register(ctx context.Context, input ports.RegisterInput) (*ports.Credentials, error) {
	if input.Email == "" || input.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		User: domain.User{
			ID:          uuid.NewString(),
			Email:       input.Email,
			FullName:    input.FullName,
			PhoneNumber: input.PhoneNumber,
			Role:        role,
		},
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		return nil, err
	}

	token, err := s.generateToken(created)
	if err != nil {
		return nil, err
	}
	user := created.User
	return &ports.Credentials{Token: token, User: &user}, nil
}

func (s *AccountService) Login(ctx context.Context, email, password string) (*ports.Credentials, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(account)
	if err != nil {
		return nil, err
	}
	user := account.User
	return &ports.Credentials{Token: token, User: &user}, nil
}

func (s *AccountService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	account, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user := account.User
	return &user, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error) {
	account, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	account.User = account.User.Merge(update)
	account.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.Update(ctx, account)
	if err != nil {
		return nil, err
	}
	user := updated.User
	return &user, nil
}

// Lookup resolves an account by email for the admin surface.
func (s *AccountService) Lookup(ctx context.Context, email string) (*domain.User, error) {
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	user := account.User
	return &user, nil
}

// Refresh validates the presented token and issues a fresh one for the same
// account. The account is re-read so a refreshed token always carries the
// current role.
func (s *AccountService) Refresh(ctx context.Context, token string) (string, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !parsed.Valid {
		return "", domain.ErrInvalidCredentials
	}

	uid, _ := claims["uid"].(string)
	if uid == "" {
		return "", domain.ErrInvalidCredentials
	}

	account, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return "", err
	}
	return s.generateToken(account)
}

// TokenTTL exposes the configured token lifetime; the logout handler uses it
// to bound revocation-list entries.
func (s *AccountService) TokenTTL() time.Duration {
	return s.tokenTTL
}

func (s *AccountService) generateToken(account *domain.Account) (string, error) {
	claims := jwt.MapClaims{
		"uid":   account.ID,
		"email": account.Email,
		"role":  account.Role,
		"exp":   time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
