package proxylists

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/hollydays/wishlist-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a proxy list repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateList(ctx context.Context, list *models.ProxyList) error {
	return r.db.WithContext(ctx).Create(list).Error
}

func (r *repository) FindList(ctx context.Context, id uuid.UUID) (*models.ProxyList, error) {
	var list models.ProxyList
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&list).Error; err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *repository) FindListsByEmail(ctx context.Context, email string) ([]models.ProxyList, error) {
	var lists []models.ProxyList
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Find(&lists).Error
	if err != nil {
		return nil, err
	}
	return lists, nil
}

func (r *repository) ListAll(ctx context.Context) ([]models.ProxyList, error) {
	var lists []models.ProxyList
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&lists).Error; err != nil {
		return nil, err
	}
	return lists, nil
}

func (r *repository) SaveList(ctx context.Context, list *models.ProxyList) error {
	return r.db.WithContext(ctx).Save(list).Error
}

func (r *repository) DeleteList(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ProxyList{}).Error
}

func (r *repository) ListItems(ctx context.Context, proxyListID uuid.UUID) ([]models.GiftItem, error) {
	var items []models.GiftItem
	err := r.db.WithContext(ctx).
		Where("proxy_list_id = ?", proxyListID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ListOwnedItems(ctx context.Context, ownerID uuid.UUID) ([]models.GiftItem, error) {
	var items []models.GiftItem
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) SaveItem(ctx context.Context, item *models.GiftItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *repository) DeleteItemsForList(ctx context.Context, proxyListID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("proxy_list_id = ?", proxyListID).
		Delete(&models.GiftItem{}).Error
}

func (r *repository) DeleteClaimsForList(ctx context.Context, proxyListID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("item_id IN (?)", r.db.Model(&models.GiftItem{}).Select("id").Where("proxy_list_id = ?", proxyListID)).
		Delete(&models.Claim{}).Error
}

func (r *repository) UpsertGrant(ctx context.Context, grant *models.DelegateGrant) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "proxy_list_id"}, {Name: "account_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"can_add", "can_edit", "can_remove", "updated_at"}),
		}).
		Create(grant).Error
}

func (r *repository) FindGrant(ctx context.Context, proxyListID, accountID uuid.UUID) (*models.DelegateGrant, error) {
	var grant models.DelegateGrant
	err := r.db.WithContext(ctx).
		Where("proxy_list_id = ? AND account_id = ?", proxyListID, accountID).
		First(&grant).Error
	if err != nil {
		return nil, err
	}
	return &grant, nil
}

func (r *repository) ListGrantsForList(ctx context.Context, proxyListID uuid.UUID) ([]models.DelegateGrant, error) {
	var grants []models.DelegateGrant
	err := r.db.WithContext(ctx).
		Where("proxy_list_id = ?", proxyListID).
		Order("created_at ASC").
		Find(&grants).Error
	if err != nil {
		return nil, err
	}
	return grants, nil
}

func (r *repository) ListGrantsForAccount(ctx context.Context, accountID uuid.UUID) ([]models.DelegateGrant, error) {
	var grants []models.DelegateGrant
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Find(&grants).Error
	if err != nil {
		return nil, err
	}
	return grants, nil
}

func (r *repository) DeleteGrant(ctx context.Context, proxyListID, accountID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("proxy_list_id = ? AND account_id = ?", proxyListID, accountID).
		Delete(&models.DelegateGrant{}).Error
}

func (r *repository) DeleteGrantsForList(ctx context.Context, proxyListID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("proxy_list_id = ?", proxyListID).
		Delete(&models.DelegateGrant{}).Error
}

func (r *repository) ReassignChangeLog(ctx context.Context, proxyListID, ownerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.ChangeLogEntry{}).
		Where("proxy_list_id = ?", proxyListID).
		Updates(map[string]any{"proxy_list_id": nil, "owner_id": ownerID}).Error
}

func (r *repository) DeleteChangeLogForList(ctx context.Context, proxyListID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("proxy_list_id = ?", proxyListID).
		Delete(&models.ChangeLogEntry{}).Error
}
