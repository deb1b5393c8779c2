package accounts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hollydays/wishlist-backend/internal/identity"
	"github.com/hollydays/wishlist-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository is the persistence surface for accounts, including the
// multi-step cleanup run when one is deleted.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	ListAll(ctx context.Context) ([]models.Account, error)
	Save(ctx context.Context, account *models.Account) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error

	DeleteClaimsByAccount(ctx context.Context, accountID uuid.UUID) error
	DeleteClaimsOnOwnedItems(ctx context.Context, ownerID uuid.UUID) error
	DeleteOwnedItems(ctx context.Context, ownerID uuid.UUID) error
	DeleteGrantsForAccount(ctx context.Context, accountID uuid.UUID) error
	DeleteChangeLogForOwner(ctx context.Context, ownerID uuid.UUID) error
	ListProxyListsCreatedBy(ctx context.Context, accountID uuid.UUID) ([]models.ProxyList, error)
	DeleteProxyListCascade(ctx context.Context, proxyListID uuid.UUID) error
}

// Service exposes account browsing and lifecycle operations.
type Service interface {
	List(ctx context.Context) ([]models.Account, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Account, error)
	UpdateProfile(ctx context.Context, actor identity.Actor, id uuid.UUID, input UpdateProfileInput) (*models.Account, error)
	Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error
}
