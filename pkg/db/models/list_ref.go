package models

import "github.com/google/uuid"

// ListRef identifies a wishlist as either an account's own list or a proxy
// list. It is a tagged union: exactly one variant is ever populated, which
// keeps the "owner XOR proxy" invariant out of nullable-column juggling.
type ListRef struct {
	ownerID     *uuid.UUID
	proxyListID *uuid.UUID
}

// OwnedListRef references the list owned by the given account.
func OwnedListRef(ownerID uuid.UUID) ListRef {
	return ListRef{ownerID: &ownerID}
}

// ProxyListRef references a proxy list.
func ProxyListRef(proxyListID uuid.UUID) ListRef {
	return ListRef{proxyListID: &proxyListID}
}

// OwnerID returns the owning account id when the list is account-owned.
func (r ListRef) OwnerID() (uuid.UUID, bool) {
	if r.ownerID == nil {
		return uuid.Nil, false
	}
	return *r.ownerID, true
}

// ProxyListID returns the proxy list id when the list is a proxy list.
func (r ListRef) ProxyListID() (uuid.UUID, bool) {
	if r.proxyListID == nil {
		return uuid.Nil, false
	}
	return *r.proxyListID, true
}

// IsProxy reports whether the reference points at a proxy list.
func (r ListRef) IsProxy() bool {
	return r.proxyListID != nil
}

// Equal reports whether two references identify the same list.
func (r ListRef) Equal(other ListRef) bool {
	if r.ownerID != nil && other.ownerID != nil {
		return *r.ownerID == *other.ownerID
	}
	if r.proxyListID != nil && other.proxyListID != nil {
		return *r.proxyListID == *other.proxyListID
	}
	return false
}
