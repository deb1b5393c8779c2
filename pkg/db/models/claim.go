package models

import (
	"time"

	"github.com/google/uuid"
)

// Claim records one account's intent to buy a quantity of a gift item. The
// three progress flags are independent of each other.
type Claim struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ItemID      uuid.UUID `gorm:"column:item_id;type:uuid;not null;index"`
	ClaimedByID uuid.UUID `gorm:"column:claimed_by_id;type:uuid;not null;index"`
	Quantity    int       `gorm:"column:quantity;not null;default:1"`
	Purchased   bool      `gorm:"column:purchased;not null;default:false"`
	Received    bool      `gorm:"column:received;not null;default:false"`
	Wrapped     bool      `gorm:"column:wrapped;not null;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
