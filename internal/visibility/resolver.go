// Package visibility answers "can this actor see that?" and "can this actor
// do that?" for wishlist items and claims. Every predicate is a pure function
// over the actor context and entity fields so the rules stay testable without
// a store.
package visibility

import (
	"github.com/hollydays/wishlist-backend/internal/identity"
	"github.com/hollydays/wishlist-backend/pkg/db/models"
)

// Capability is one of the delegate grant flags.
type Capability int

const (
	CapabilityAdd Capability = iota
	CapabilityEdit
	CapabilityRemove
)

// CanSeeClaimDetails reports whether the actor may see aggregate claim data
// (claim existence, claimant identities, progress flags) for the item. The
// list's owner never sees claims on their own list, and a delegate managing
// the item's proxy list is equally claim-blind. Everyone else, admin
// included, sees claims.
func CanSeeClaimDetails(actor identity.Actor, item models.GiftItem) bool {
	if actor.IsAdmin {
		return true
	}
	if item.OwnerID != nil && *item.OwnerID == actor.ID {
		return false
	}
	if item.ProxyListID != nil && actor.IsDelegateOf(*item.ProxyListID) {
		return false
	}
	return true
}

// CanSeeClaim reports whether the actor may see one specific claim. A
// claimant always sees their own claim, even while delegate-blind to the
// rest.
func CanSeeClaim(actor identity.Actor, item models.GiftItem, claim models.Claim) bool {
	if claim.ClaimedByID == actor.ID {
		return true
	}
	return CanSeeClaimDetails(actor, item)
}

// VisibleItems filters a list's items down to what the actor may see,
// preserving the input order. The owner of a list never sees custom gifts
// added by others; delegates and third-party viewers see everything. Items
// with no list reference should never exist and are skipped rather than
// surfaced.
func VisibleItems(actor identity.Actor, items []models.GiftItem) []models.GiftItem {
	visible := make([]models.GiftItem, 0, len(items))
	for _, item := range items {
		ref, ok := item.List()
		if !ok {
			continue
		}
		if ownerID, owned := ref.OwnerID(); owned && ownerID == actor.ID && !actor.IsAdmin {
			if item.AddedByID != nil && *item.AddedByID != actor.ID {
				continue
			}
		}
		visible = append(visible, item)
	}
	return visible
}

// CanModify reports whether the actor may edit or remove the item: admins
// always, the owner for items they own outright, the contributor of a custom
// gift for that gift, and a delegate of the item's proxy list when the
// matching capability flag is set.
func CanModify(actor identity.Actor, item models.GiftItem, cap Capability) bool {
	if actor.IsAdmin {
		return true
	}
	if item.OwnerID != nil && *item.OwnerID == actor.ID {
		if item.AddedByID == nil || *item.AddedByID == actor.ID {
			return true
		}
	}
	if item.AddedByID != nil && *item.AddedByID == actor.ID {
		return true
	}
	if item.ProxyListID != nil {
		if grant, ok := actor.GrantFor(*item.ProxyListID); ok {
			return grantAllows(grant, cap)
		}
	}
	return false
}

// CanAddTo reports whether the actor may add an item to the list. Owners add
// to their own lists, any authenticated account may contribute a custom gift
// to someone else's list, and on proxy lists a delegate's can_add flag
// governs; a delegate whose flag is off is denied even though a stranger
// would be allowed.
func CanAddTo(actor identity.Actor, list models.ListRef) bool {
	if actor.IsAdmin {
		return true
	}
	if proxyID, isProxy := list.ProxyListID(); isProxy {
		if grant, ok := actor.GrantFor(proxyID); ok {
			return grant.CanAdd
		}
		return true
	}
	return true
}

// CanClaim reports whether the actor may claim the item. Claiming on a list
// you own is rejected outright, no matter who added the item and no matter
// the actor's role.
func CanClaim(actor identity.Actor, item models.GiftItem) bool {
	if item.OwnerID != nil && *item.OwnerID == actor.ID {
		return false
	}
	return true
}

func grantAllows(grant models.DelegateGrant, cap Capability) bool {
	switch cap {
	case CapabilityAdd:
		return grant.CanAdd
	case CapabilityEdit:
		return grant.CanEdit
	case CapabilityRemove:
		return grant.CanRemove
	default:
		return false
	}
}
