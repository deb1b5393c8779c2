package models

import (
	"time"

	"github.com/google/uuid"
)

// Change types recorded in the wishlist change log.
const (
	ChangeTypeAdded   = "added"
	ChangeTypeUpdated = "updated"
	ChangeTypeDeleted = "deleted"
)

// ChangeLogEntry is an append-only record of a wishlist mutation, consumed by
// the daily digest job. ItemID may be nil when the item was deleted.
type ChangeLogEntry struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID     *uuid.UUID `gorm:"column:owner_id;type:uuid;index"`
	ProxyListID *uuid.UUID `gorm:"column:proxy_list_id;type:uuid;index"`
	ChangeType  string     `gorm:"column:change_type;not null"`
	ItemName    string     `gorm:"column:item_name;not null"`
	ItemID      *uuid.UUID `gorm:"column:item_id;type:uuid"`
	Notified    bool       `gorm:"column:notified;not null;default:false;index"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime;index"`
}
