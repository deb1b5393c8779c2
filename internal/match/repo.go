package match

import (
	"context"

	"github.com/google/uuid"
	"github.com/hollydays/wishlist-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a merge repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindItem takes a row lock on both sides of a merge. A claim arriving for
// the absorbed item waits behind the merge instead of landing between the
// claim re-point and the delete.
func (r *repository) FindItem(ctx context.Context, id uuid.UUID) (*models.GiftItem, error) {
	var item models.GiftItem
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) SaveItem(ctx context.Context, item *models.GiftItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *repository) RepointClaims(ctx context.Context, fromItemID, toItemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Claim{}).
		Where("item_id = ?", fromItemID).
		Update("item_id", toItemID).Error
}

func (r *repository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.GiftItem{}).Error
}
