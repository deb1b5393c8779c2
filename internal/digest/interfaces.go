package digest

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hollydays/wishlist-backend/pkg/db/models"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Repository is the data access needed to build and settle a digest run.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	ListUnnotified(ctx context.Context) ([]models.ChangeLogEntry, error)
	MarkNotified(ctx context.Context, ids []uuid.UUID) error
	ListAccounts(ctx context.Context) ([]models.Account, error)
	FindProxyLists(ctx context.Context, ids []uuid.UUID) ([]models.ProxyList, error)
}
