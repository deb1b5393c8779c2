package identity

import (
	"github.com/google/uuid"
	"github.com/hollydays/wishlist-backend/pkg/db/models"
)

// Actor is the resolved identity behind a request. It is constructed once per
// request and passed explicitly into every permission check; nothing reads
// identity out of ambient state. ImpersonatedBy is set when an admin is acting
// as another account and is carried through for audit logging only.
type Actor struct {
	ID             uuid.UUID
	IsAdmin        bool
	ImpersonatedBy *uuid.UUID
	Grants         []models.DelegateGrant
}

// GrantFor returns the actor's delegate grant on the given proxy list, if any.
func (a Actor) GrantFor(proxyListID uuid.UUID) (models.DelegateGrant, bool) {
	for _, g := range a.Grants {
		if g.ProxyListID == proxyListID {
			return g, true
		}
	}
	return models.DelegateGrant{}, false
}

// IsDelegateOf reports whether the actor holds any grant on the proxy list.
func (a Actor) IsDelegateOf(proxyListID uuid.UUID) bool {
	_, ok := a.GrantFor(proxyListID)
	return ok
}

// Impersonate builds an actor context for the target account on behalf of an
// admin. The returned actor carries the target's identity and grants, never
// the admin's, so permission checks behave exactly as they would for the
// target; only the audit field remembers who is really driving.
func Impersonate(admin Actor, target models.Account, targetGrants []models.DelegateGrant) Actor {
	adminID := admin.ID
	return Actor{
		ID:             target.ID,
		IsAdmin:        target.IsAdmin,
		ImpersonatedBy: &adminID,
		Grants:         targetGrants,
	}
}
