package wishlist

import (
	"github.com/google/uuid"
	"github.com/hollydays/wishlist-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// AddItemInput carries the fields for a new wishlist item.
type AddItemInput struct {
	Name            string
	URL             *string
	Description     *string
	Price           *decimal.Decimal
	ImageURL        *string
	ImageCandidates []string
	Quantity        int
}

// UpdateItemInput carries a partial update; nil fields are left untouched.
type UpdateItemInput struct {
	Name            *string
	URL             *string
	Description     *string
	Price           *decimal.Decimal
	ImageURL        *string
	ImageCandidates []string
	Quantity        *int
}

// AddItemResult reports the stored item and whether the add was folded into
// an existing duplicate.
type AddItemResult struct {
	Item   *models.GiftItem
	Merged bool
}

// ClaimView is one claim as shown to an actor allowed to see it.
type ClaimView struct {
	ID          uuid.UUID `json:"id"`
	ClaimedByID uuid.UUID `json:"claimed_by_id"`
	Quantity    int       `json:"quantity"`
	Purchased   bool      `json:"purchased"`
	Received    bool      `json:"received"`
	Wrapped     bool      `json:"wrapped"`
}

// ItemView is an item plus whatever claim data the requesting actor may see.
// For claim-blind actors (the owner, delegates) ClaimsVisible is false and
// the claim fields are zeroed; their own claim is still surfaced when
// present.
type ItemView struct {
	Item            models.GiftItem `json:"item"`
	IsCustomGift    bool            `json:"is_custom_gift"`
	ClaimsVisible   bool            `json:"claims_visible"`
	ClaimedQuantity int             `json:"claimed_quantity,omitempty"`
	Remaining       int             `json:"remaining,omitempty"`
	Claims          []ClaimView     `json:"claims,omitempty"`
	OwnClaim        *ClaimView      `json:"own_claim,omitempty"`
}
