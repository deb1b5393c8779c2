package models

import (
	"time"

	"github.com/google/uuid"
)

// DelegateGrant lets an account manage a proxy list's items. The capability
// flags gate add/edit/remove independently; none of them ever grants claim
// visibility.
type DelegateGrant struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProxyListID uuid.UUID `gorm:"column:proxy_list_id;type:uuid;not null;uniqueIndex:delegate_grants_list_account_key"`
	AccountID   uuid.UUID `gorm:"column:account_id;type:uuid;not null;uniqueIndex:delegate_grants_list_account_key"`
	// No default tags here: gorm would skip a false flag on insert and the
	// schema default true would silently widen the grant.
	CanAdd    bool `gorm:"column:can_add;not null"`
	CanEdit   bool `gorm:"column:can_edit;not null"`
	CanRemove bool `gorm:"column:can_remove;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
