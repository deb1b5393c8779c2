package claims

import (
	"context"

	"github.com/google/uuid"
	"github.com/hollydays/wishlist-backend/internal/identity"
	"github.com/hollydays/wishlist-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository is the persistence surface for purchase-intent claims.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindItem(ctx context.Context, itemID uuid.UUID) (*models.GiftItem, error)
	SumClaimQuantities(ctx context.Context, itemID uuid.UUID) (int, error)
	CreateClaim(ctx context.Context, claim *models.Claim) error
	FindClaim(ctx context.Context, id uuid.UUID) (*models.Claim, error)
	SaveClaim(ctx context.Context, claim *models.Claim) error
	DeleteClaim(ctx context.Context, id uuid.UUID) error
	ListClaimsByAccount(ctx context.Context, accountID uuid.UUID) ([]models.Claim, error)
}

// Service exposes claim use cases: create, withdraw, progress tracking.
type Service interface {
	Create(ctx context.Context, actor identity.Actor, itemID uuid.UUID, quantity int) (*models.Claim, error)
	Withdraw(ctx context.Context, actor identity.Actor, claimID uuid.UUID) error
	UpdateProgress(ctx context.Context, actor identity.Actor, claimID uuid.UUID, input ProgressInput) (*models.Claim, error)
	ListMine(ctx context.Context, actor identity.Actor) ([]models.Claim, error)
}
