package visibility

import (
	"testing"

	"github.com/google/uuid"
	"github.com/hollydays/wishlist-backend/internal/identity"
	"github.com/hollydays/wishlist-backend/pkg/db/models"
)

func ownedItem(owner uuid.UUID, addedBy *uuid.UUID) models.GiftItem {
	return models.GiftItem{ID: uuid.New(), OwnerID: &owner, AddedByID: addedBy, Name: "item", Quantity: 1}
}

func proxyItem(list uuid.UUID, addedBy uuid.UUID) models.GiftItem {
	return models.GiftItem{ID: uuid.New(), ProxyListID: &list, AddedByID: &addedBy, Name: "item", Quantity: 1}
}

func delegateActor(id, list uuid.UUID, canAdd, canEdit, canRemove bool) identity.Actor {
	return identity.Actor{
		ID: id,
		Grants: []models.DelegateGrant{{
			ProxyListID: list,
			AccountID:   id,
			CanAdd:      canAdd,
			CanEdit:     canEdit,
			CanRemove:   canRemove,
		}},
	}
}

func TestOwnerNeverSeesClaimDetails(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	other := uuid.New()
	item := ownedItem(owner, &other)

	if CanSeeClaimDetails(identity.Actor{ID: owner}, item) {
		t.Fatal("owner must not see claim details on their own list")
	}
	if !CanSeeClaimDetails(identity.Actor{ID: uuid.New()}, item) {
		t.Fatal("third party should see claim details")
	}
	if !CanSeeClaimDetails(identity.Actor{ID: uuid.New(), IsAdmin: true}, item) {
		t.Fatal("admin should see claim details")
	}
}

func TestDelegateBlindnessHoldsWithFullCapabilities(t *testing.T) {
	t.Parallel()

	list := uuid.New()
	delegate := delegateActor(uuid.New(), list, true, true, true)
	item := proxyItem(list, uuid.New())

	if CanSeeClaimDetails(delegate, item) {
		t.Fatal("delegate must be claim-blind regardless of capability flags")
	}
	if !CanSeeClaimDetails(identity.Actor{ID: uuid.New()}, item) {
		t.Fatal("non-delegate viewer should see claim details on a proxy list")
	}
}

func TestClaimantSeesOwnClaimDespiteDelegateBlindness(t *testing.T) {
	t.Parallel()

	list := uuid.New()
	delegateID := uuid.New()
	delegate := delegateActor(delegateID, list, true, true, true)
	item := proxyItem(list, uuid.New())

	own := models.Claim{ItemID: item.ID, ClaimedByID: delegateID, Quantity: 1}
	theirs := models.Claim{ItemID: item.ID, ClaimedByID: uuid.New(), Quantity: 1}

	if !CanSeeClaim(delegate, item, own) {
		t.Fatal("claimant should always see their own claim")
	}
	if CanSeeClaim(delegate, item, theirs) {
		t.Fatal("delegate should not see someone else's claim")
	}
}

func TestVisibleItemsHidesCustomGiftsFromOwner(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	stranger := uuid.New()
	ownItem := ownedItem(owner, nil)
	ownAdded := ownedItem(owner, &owner)
	surprise := ownedItem(owner, &stranger)

	items := []models.GiftItem{surprise, ownAdded, ownItem}

	forOwner := VisibleItems(identity.Actor{ID: owner}, items)
	if len(forOwner) != 2 {
		t.Fatalf("expected owner to see 2 items, got %d", len(forOwner))
	}
	for _, it := range forOwner {
		if it.ID == surprise.ID {
			t.Fatal("owner must not see a custom gift added by someone else")
		}
	}

	forViewer := VisibleItems(identity.Actor{ID: uuid.New()}, items)
	if len(forViewer) != 3 {
		t.Fatalf("expected third party to see all items, got %d", len(forViewer))
	}
}

func TestVisibleItemsSkipsOrphans(t *testing.T) {
	t.Parallel()

	orphan := models.GiftItem{ID: uuid.New(), Name: "orphan", Quantity: 1}
	got := VisibleItems(identity.Actor{ID: uuid.New()}, []models.GiftItem{orphan})
	if len(got) != 0 {
		t.Fatal("expected orphaned item to be skipped, not surfaced")
	}
}

func TestVisibleItemsProxyListShowsAll(t *testing.T) {
	t.Parallel()

	list := uuid.New()
	items := []models.GiftItem{proxyItem(list, uuid.New()), proxyItem(list, uuid.New())}

	delegate := delegateActor(uuid.New(), list, true, false, false)
	if got := VisibleItems(delegate, items); len(got) != 2 {
		t.Fatalf("expected delegate to see all proxy items, got %d", len(got))
	}
}

func TestCanModifyMatrix(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	contributor := uuid.New()
	list := uuid.New()

	outright := ownedItem(owner, nil)
	custom := ownedItem(owner, &contributor)
	proxied := proxyItem(list, contributor)

	cases := []struct {
		name  string
		actor identity.Actor
		item  models.GiftItem
		cap   Capability
		want  bool
	}{
		{"admin always", identity.Actor{ID: uuid.New(), IsAdmin: true}, custom, CapabilityEdit, true},
		{"owner on outright item", identity.Actor{ID: owner}, outright, CapabilityEdit, true},
		{"owner on someone's custom gift", identity.Actor{ID: owner}, custom, CapabilityEdit, false},
		{"contributor on own custom gift", identity.Actor{ID: contributor}, custom, CapabilityRemove, true},
		{"stranger on owned item", identity.Actor{ID: uuid.New()}, outright, CapabilityEdit, false},
		{"delegate with edit flag", delegateActor(uuid.New(), list, false, true, false), proxyItem(list, uuid.New()), CapabilityEdit, true},
		{"delegate without remove flag", delegateActor(uuid.New(), list, true, true, false), proxyItem(list, uuid.New()), CapabilityRemove, false},
		{"contributor on own proxy item", identity.Actor{ID: contributor}, proxied, CapabilityEdit, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanModify(tc.actor, tc.item, tc.cap); got != tc.want {
				t.Fatalf("CanModify = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCanAddTo(t *testing.T) {
	t.Parallel()

	list := uuid.New()
	ownerRef := models.OwnedListRef(uuid.New())
	proxyRef := models.ProxyListRef(list)

	if !CanAddTo(identity.Actor{ID: uuid.New()}, ownerRef) {
		t.Fatal("any account may add a custom gift to an owned list")
	}
	if !CanAddTo(identity.Actor{ID: uuid.New()}, proxyRef) {
		t.Fatal("non-delegate may contribute to a proxy list")
	}
	if CanAddTo(delegateActor(uuid.New(), list, false, true, true), proxyRef) {
		t.Fatal("delegate with can_add off must be denied")
	}
	if !CanAddTo(delegateActor(uuid.New(), list, true, false, false), proxyRef) {
		t.Fatal("delegate with can_add on must be allowed")
	}
}

func TestCanClaimRejectsSelfClaim(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	stranger := uuid.New()

	if CanClaim(identity.Actor{ID: owner}, ownedItem(owner, &stranger)) {
		t.Fatal("owner must not claim items on their own list, even custom gifts")
	}
	if !CanClaim(identity.Actor{ID: stranger}, ownedItem(owner, nil)) {
		t.Fatal("viewer should be able to claim on someone else's list")
	}
	if !CanClaim(identity.Actor{ID: stranger}, proxyItem(uuid.New(), stranger)) {
		t.Fatal("proxy list items have no owner, claims allowed")
	}
}
