package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/hollydays/wishlist-backend/pkg/db/models"
)

// RegisterRequest carries the fields for creating an account. Password is
// optional; accounts without one sign in via magic link only.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"omitempty,min=8"`
}

// LoginRequest carries password login credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// MagicLinkRequest asks for a sign-in link to be emailed.
type MagicLinkRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// AccountSummary is the caller-safe shape of an account.
type AccountSummary struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	IsAdmin     bool       `json:"is_admin"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// AuthResponse is returned from every flow that establishes a session.
type AuthResponse struct {
	AccessToken    string         `json:"access_token"`
	Account        AccountSummary `json:"account"`
	ConvertedLists int            `json:"converted_lists,omitempty"`
	ImpersonatedBy *uuid.UUID     `json:"impersonated_by,omitempty"`
}

func summaryFromModel(account *models.Account) AccountSummary {
	return AccountSummary{
		ID:          account.ID,
		Email:       account.Email,
		Name:        account.Name,
		IsAdmin:     account.IsAdmin,
		LastLoginAt: account.LastLoginAt,
	}
}
