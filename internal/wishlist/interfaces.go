package wishlist

import (
	"context"

	"github.com/google/uuid"
	"github.com/hollydays/wishlist-backend/internal/identity"
	"github.com/hollydays/wishlist-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository is the persistence surface for wishlist items and their claims.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	ListItems(ctx context.Context, list models.ListRef) ([]models.GiftItem, error)
	FindItem(ctx context.Context, id uuid.UUID) (*models.GiftItem, error)
	CreateItem(ctx context.Context, item *models.GiftItem) error
	SaveItem(ctx context.Context, item *models.GiftItem) error
	DeleteItem(ctx context.Context, id uuid.UUID) error

	ClaimsForItems(ctx context.Context, itemIDs []uuid.UUID) (map[uuid.UUID][]models.Claim, error)
	SumClaimQuantities(ctx context.Context, itemID uuid.UUID) (int, error)

	RecordChange(ctx context.Context, entry *models.ChangeLogEntry) error
}

// Service exposes the wishlist use cases consumed by the HTTP layer.
type Service interface {
	ListItems(ctx context.Context, actor identity.Actor, list models.ListRef) ([]ItemView, error)
	GetItem(ctx context.Context, actor identity.Actor, itemID uuid.UUID) (*ItemView, error)
	AddItem(ctx context.Context, actor identity.Actor, list models.ListRef, input AddItemInput) (*AddItemResult, error)
	UpdateItem(ctx context.Context, actor identity.Actor, itemID uuid.UUID, input UpdateItemInput) (*models.GiftItem, error)
	DeleteItem(ctx context.Context, actor identity.Actor, itemID uuid.UUID) error
	MergeItems(ctx context.Context, actor identity.Actor, keepID, absorbID uuid.UUID) (*models.GiftItem, error)
	RemainingQuantity(ctx context.Context, itemID uuid.UUID) (int, error)
}
