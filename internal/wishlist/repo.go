package wishlist

import (
	"context"

	"github.com/google/uuid"
	"github.com/hollydays/wishlist-backend/pkg/db/models"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a wishlist repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListItems(ctx context.Context, list models.ListRef) ([]models.GiftItem, error) {
	query := r.db.WithContext(ctx).Model(&models.GiftItem{})
	if proxyID, isProxy := list.ProxyListID(); isProxy {
		query = query.Where("proxy_list_id = ?", proxyID)
	} else if ownerID, owned := list.OwnerID(); owned {
		query = query.Where("owner_id = ?", ownerID)
	} else {
		return nil, gorm.ErrRecordNotFound
	}

	var items []models.GiftItem
	if err := query.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindItem(ctx context.Context, id uuid.UUID) (*models.GiftItem, error) {
	var item models.GiftItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) CreateItem(ctx context.Context, item *models.GiftItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) SaveItem(ctx context.Context, item *models.GiftItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *repository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.GiftItem{}).Error
}

func (r *repository) ClaimsForItems(ctx context.Context, itemIDs []uuid.UUID) (map[uuid.UUID][]models.Claim, error) {
	grouped := make(map[uuid.UUID][]models.Claim, len(itemIDs))
	if len(itemIDs) == 0 {
		return grouped, nil
	}

	var claims []models.Claim
	err := r.db.WithContext(ctx).
		Where("item_id IN ?", itemIDs).
		Order("created_at ASC").
		Find(&claims).Error
	if err != nil {
		return nil, err
	}
	for _, claim := range claims {
		grouped[claim.ItemID] = append(grouped[claim.ItemID], claim)
	}
	return grouped, nil
}

func (r *repository) SumClaimQuantities(ctx context.Context, itemID uuid.UUID) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Claim{}).
		Where("item_id = ?", itemID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return int(total), nil
}

func (r *repository) RecordChange(ctx context.Context, entry *models.ChangeLogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}
