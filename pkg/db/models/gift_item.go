package models

import (
	"time"

	"github.com/google/uuid"
	dbtypes "github.com/hollydays/wishlist-backend/pkg/db/types"
	"github.com/shopspring/decimal"
)

// GiftItem is a single wishlist entry. Exactly one of OwnerID / ProxyListID is
// set: the item belongs either to an account's own list or to a proxy list.
type GiftItem struct {
	ID              uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID         *uuid.UUID         `gorm:"column:owner_id;type:uuid;index"`
	ProxyListID     *uuid.UUID         `gorm:"column:proxy_list_id;type:uuid;index"`
	AddedByID       *uuid.UUID         `gorm:"column:added_by_id;type:uuid"`
	Name            string             `gorm:"column:name;not null"`
	URL             *string            `gorm:"column:url"`
	Description     *string            `gorm:"column:description"`
	Price           *decimal.Decimal   `gorm:"column:price;type:numeric"`
	ImageURL        *string            `gorm:"column:image_url"`
	ImageCandidates dbtypes.StringList `gorm:"column:image_candidates;type:text"`
	Quantity        int                `gorm:"column:quantity;not null;default:1"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// IsCustomGift reports whether the item was contributed by someone other than
// the list's owner. Every attributed item on a proxy list counts as custom
// because a proxy list has no owner to compare against.
func (i GiftItem) IsCustomGift() bool {
	if i.AddedByID == nil {
		return false
	}
	if i.OwnerID == nil {
		return true
	}
	return *i.AddedByID != *i.OwnerID
}

// List returns the item's list reference, or false for an orphaned row.
func (i GiftItem) List() (ListRef, bool) {
	switch {
	case i.OwnerID != nil && i.ProxyListID == nil:
		return OwnedListRef(*i.OwnerID), true
	case i.OwnerID == nil && i.ProxyListID != nil:
		return ProxyListRef(*i.ProxyListID), true
	default:
		return ListRef{}, false
	}
}
