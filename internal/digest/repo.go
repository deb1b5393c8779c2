package digest

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hollydays/wishlist-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a digest repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListUnnotified(ctx context.Context) ([]models.ChangeLogEntry, error) {
	var entries []models.ChangeLogEntry
	err := r.db.WithContext(ctx).
		Where("notified = ?", false).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) MarkNotified(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.ChangeLogEntry{}).
		Where("id IN ?", ids).
		Update("notified", true).Error
}

func (r *repository) ListAccounts(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := r.db.WithContext(ctx).Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *repository) FindProxyLists(ctx context.Context, ids []uuid.UUID) ([]models.ProxyList, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var lists []models.ProxyList
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&lists).Error; err != nil {
		return nil, err
	}
	return lists, nil
}
