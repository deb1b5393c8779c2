package models

import (
	"time"

	"github.com/google/uuid"
)

// ProxyList is a wishlist kept on behalf of someone without an account. The
// optional email is the credential that triggers conversion at registration.
type ProxyList struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Email       *string   `gorm:"column:email;index"`
	CreatedByID uuid.UUID `gorm:"column:created_by_id;type:uuid;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
