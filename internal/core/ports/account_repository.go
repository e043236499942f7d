package ports

import (
	"context"

	"github.com/servicelens/mobile-core/internal/core/domain"
)

// AccountRepository defines server-side persistence for registered accounts.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	Update(ctx context.Context, account *domain.Account) (*domain.Account, error)
}
