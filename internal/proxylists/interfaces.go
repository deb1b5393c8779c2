package proxylists

import (
	"context"

	"github.com/google/uuid"
	"github.com/hollydays/wishlist-backend/internal/identity"
	"github.com/hollydays/wishlist-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository is the persistence surface for proxy lists and delegate grants.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateList(ctx context.Context, list *models.ProxyList) error
	FindList(ctx context.Context, id uuid.UUID) (*models.ProxyList, error)
	FindListsByEmail(ctx context.Context, email string) ([]models.ProxyList, error)
	ListAll(ctx context.Context) ([]models.ProxyList, error)
	SaveList(ctx context.Context, list *models.ProxyList) error
	DeleteList(ctx context.Context, id uuid.UUID) error

	ListItems(ctx context.Context, proxyListID uuid.UUID) ([]models.GiftItem, error)
	ListOwnedItems(ctx context.Context, ownerID uuid.UUID) ([]models.GiftItem, error)
	SaveItem(ctx context.Context, item *models.GiftItem) error
	DeleteItemsForList(ctx context.Context, proxyListID uuid.UUID) error
	DeleteClaimsForList(ctx context.Context, proxyListID uuid.UUID) error

	UpsertGrant(ctx context.Context, grant *models.DelegateGrant) error
	FindGrant(ctx context.Context, proxyListID, accountID uuid.UUID) (*models.DelegateGrant, error)
	ListGrantsForList(ctx context.Context, proxyListID uuid.UUID) ([]models.DelegateGrant, error)
	ListGrantsForAccount(ctx context.Context, accountID uuid.UUID) ([]models.DelegateGrant, error)
	DeleteGrant(ctx context.Context, proxyListID, accountID uuid.UUID) error
	DeleteGrantsForList(ctx context.Context, proxyListID uuid.UUID) error

	ReassignChangeLog(ctx context.Context, proxyListID, ownerID uuid.UUID) error
	DeleteChangeLogForList(ctx context.Context, proxyListID uuid.UUID) error
}

// Service exposes proxy list management and registration-time conversion.
type Service interface {
	Create(ctx context.Context, actor identity.Actor, input CreateInput) (*models.ProxyList, error)
	Get(ctx context.Context, listID uuid.UUID) (*models.ProxyList, error)
	List(ctx context.Context) ([]models.ProxyList, error)
	Update(ctx context.Context, actor identity.Actor, listID uuid.UUID, input UpdateInput) (*models.ProxyList, error)
	Delete(ctx context.Context, actor identity.Actor, listID uuid.UUID) error

	UpsertGrant(ctx context.Context, actor identity.Actor, listID uuid.UUID, input GrantInput) (*models.DelegateGrant, error)
	RevokeGrant(ctx context.Context, actor identity.Actor, listID, accountID uuid.UUID) error
	ListGrants(ctx context.Context, actor identity.Actor, listID uuid.UUID) ([]models.DelegateGrant, error)
	GrantsForAccount(ctx context.Context, accountID uuid.UUID) ([]models.DelegateGrant, error)

	ConvertForAccount(ctx context.Context, account models.Account) (*ConversionResult, error)
}
