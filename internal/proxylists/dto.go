package proxylists

import "github.com/google/uuid"

// CreateInput holds the fields for a new proxy list.
type CreateInput struct {
	Name  string
	Email *string
}

// UpdateInput holds a partial proxy list update.
type UpdateInput struct {
	Name  *string
	Email *string
}

// GrantInput configures a delegate grant on a proxy list.
type GrantInput struct {
	AccountID uuid.UUID
	CanAdd    bool
	CanEdit   bool
	CanRemove bool
}

// ConversionResult summarizes what happened when proxy lists were handed over
// to a newly registered account.
type ConversionResult struct {
	ConvertedLists int
	MigratedItems  int
	MergedItems    int
}
