package match

import (
	"context"

	"github.com/google/uuid"
	"github.com/hollydays/wishlist-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository is the store surface the merger needs. WithTx rebinds the
// repository to an open transaction.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindItem(ctx context.Context, id uuid.UUID) (*models.GiftItem, error)
	SaveItem(ctx context.Context, item *models.GiftItem) error
	RepointClaims(ctx context.Context, fromItemID, toItemID uuid.UUID) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

// Merger combines two duplicate items on the same list without losing claims.
// MergeTx joins a transaction the caller already holds open, so the merge
// commits or rolls back together with the caller's own writes.
type Merger interface {
	Merge(ctx context.Context, keepID, absorbID uuid.UUID) (*models.GiftItem, error)
	MergeTx(ctx context.Context, tx *gorm.DB, keepID, absorbID uuid.UUID) (*models.GiftItem, error)
}
