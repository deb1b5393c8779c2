package accounts

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hollydays/wishlist-backend/pkg/db/models"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an accounts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) ListAll(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *repository) Save(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Save(account).Error
}

func (r *repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Account{}).Error
}

func (r *repository) DeleteClaimsByAccount(ctx context.Context, accountID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("claimed_by_id = ?", accountID).
		Delete(&models.Claim{}).Error
}

func (r *repository) DeleteClaimsOnOwnedItems(ctx context.Context, ownerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("item_id IN (?)", r.db.Model(&models.GiftItem{}).Select("id").Where("owner_id = ?", ownerID)).
		Delete(&models.Claim{}).Error
}

func (r *repository) DeleteOwnedItems(ctx context.Context, ownerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Delete(&models.GiftItem{}).Error
}

func (r *repository) DeleteGrantsForAccount(ctx context.Context, accountID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Delete(&models.DelegateGrant{}).Error
}

func (r *repository) DeleteChangeLogForOwner(ctx context.Context, ownerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Delete(&models.ChangeLogEntry{}).Error
}

func (r *repository) ListProxyListsCreatedBy(ctx context.Context, accountID uuid.UUID) ([]models.ProxyList, error) {
	var lists []models.ProxyList
	err := r.db.WithContext(ctx).
		Where("created_by_id = ?", accountID).
		Find(&lists).Error
	if err != nil {
		return nil, err
	}
	return lists, nil
}

func (r *repository) DeleteProxyListCascade(ctx context.Context, proxyListID uuid.UUID) error {
	db := r.db.WithContext(ctx)
	err := db.
		Where("item_id IN (?)", r.db.Model(&models.GiftItem{}).Select("id").Where("proxy_list_id = ?", proxyListID)).
		Delete(&models.Claim{}).Error
	if err != nil {
		return err
	}
	if err := db.Where("proxy_list_id = ?", proxyListID).Delete(&models.GiftItem{}).Error; err != nil {
		return err
	}
	if err := db.Where("proxy_list_id = ?", proxyListID).Delete(&models.DelegateGrant{}).Error; err != nil {
		return err
	}
	if err := db.Where("proxy_list_id = ?", proxyListID).Delete(&models.ChangeLogEntry{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", proxyListID).Delete(&models.ProxyList{}).Error
}
