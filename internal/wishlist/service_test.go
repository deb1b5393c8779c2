package wishlist

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hollydays/wishlist-backend/internal/identity"
	"github.com/hollydays/wishlist-backend/internal/match"
	"github.com/hollydays/wishlist-backend/pkg/db/models"
	pkgerrors "github.com/hollydays/wishlist-backend/pkg/errors"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupWishlistTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:wishlist_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	giftItems := `
CREATE TABLE IF NOT EXISTS gift_items (
  id TEXT PRIMARY KEY,
  owner_id TEXT,
  proxy_list_id TEXT,
  added_by_id TEXT,
  name TEXT NOT NULL,
  url TEXT,
  description TEXT,
  price NUMERIC,
  image_url TEXT,
  image_candidates TEXT,
  quantity INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	claims := `
CREATE TABLE IF NOT EXISTS claims (
  id TEXT PRIMARY KEY,
  item_id TEXT NOT NULL,
  claimed_by_id TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  purchased INTEGER NOT NULL DEFAULT 0,
  received INTEGER NOT NULL DEFAULT 0,
  wrapped INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	changeLog := `
CREATE TABLE IF NOT EXISTS change_log_entries (
  id TEXT PRIMARY KEY,
  owner_id TEXT,
  proxy_list_id TEXT,
  change_type TEXT NOT NULL,
  item_name TEXT NOT NULL,
  item_id TEXT,
  notified INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(giftItems).Error)
	require.NoError(t, db.Exec(claims).Error)
	require.NoError(t, db.Exec(changeLog).Error)
	return db
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	merger, err := match.NewMerger(match.NewRepository(db), testTxRunner{db: db})
	require.NoError(t, err)
	svc, err := NewService(NewRepository(db), testTxRunner{db: db}, merger)
	require.NoError(t, err)
	return svc
}

func seedItem(t *testing.T, db *gorm.DB, item *models.GiftItem) *models.GiftItem {
	t.Helper()
	item.ID = uuid.New()
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func seedClaim(t *testing.T, db *gorm.DB, itemID, claimant uuid.UUID, qty int) *models.Claim {
	t.Helper()
	claim := &models.Claim{ID: uuid.New(), ItemID: itemID, ClaimedByID: claimant, Quantity: qty}
	require.NoError(t, db.Create(claim).Error)
	return claim
}

func TestAddItemCreatesAndRecordsChange(t *testing.T) {
	db := setupWishlistTestDB(t)
	svc := newTestService(t, db)

	owner := uuid.New()
	actor := identity.Actor{ID: owner}
	list := models.OwnedListRef(owner)

	result, err := svc.AddItem(context.Background(), actor, list, AddItemInput{Name: "Fuzzy Slippers"})
	require.NoError(t, err)
	assert.False(t, result.Merged)
	assert.Nil(t, result.Item.AddedByID)
	require.NotNil(t, result.Item.OwnerID)
	assert.Equal(t, owner, *result.Item.OwnerID)
	assert.Equal(t, 1, result.Item.Quantity)

	var entries []models.ChangeLogEntry
	require.NoError(t, db.Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ChangeTypeAdded, entries[0].ChangeType)
	assert.Equal(t, "Fuzzy Slippers", entries[0].ItemName)
	require.NotNil(t, entries[0].OwnerID)
	assert.Equal(t, owner, *entries[0].OwnerID)
}

func TestAddItemMergesIntoExistingDuplicate(t *testing.T) {
	db := setupWishlistTestDB(t)
	svc := newTestService(t, db)

	owner := uuid.New()
	actor := identity.Actor{ID: owner}
	list := models.OwnedListRef(owner)

	existing := seedItem(t, db, &models.GiftItem{
		OwnerID:  &owner,
		Name:     "Espresso Machine",
		URL:      strp("http://example.com/espresso"),
		Quantity: 1,
	})
	buyer := uuid.New()
	seedClaim(t, db, existing.ID, buyer, 1)

	result, err := svc.AddItem(context.Background(), actor, list, AddItemInput{
		Name:     "espresso machine",
		URL:      strp("http://example.com/espresso/"),
		Quantity: 2,
	})
	require.NoError(t, err)
	assert.True(t, result.Merged)
	assert.Equal(t, existing.ID, result.Item.ID)
	assert.Equal(t, 2, result.Item.Quantity)

	var count int64
	require.NoError(t, db.Model(&models.GiftItem{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var claims []models.Claim
	require.NoError(t, db.Where("item_id = ?", existing.ID).Find(&claims).Error)
	assert.Len(t, claims, 1)
}

func TestAddItemKeepsNewWhenExistingIsStrangersCustomGift(t *testing.T) {
	db := setupWishlistTestDB(t)
	svc := newTestService(t, db)

	owner := uuid.New()
	stranger := uuid.New()
	list := models.OwnedListRef(owner)

	customGift := seedItem(t, db, &models.GiftItem{
		OwnerID:   &owner,
		AddedByID: &stranger,
		Name:      "Record Player",
		URL:       strp("http://example.com/turntable"),
		Quantity:  1,
	})
	seedClaim(t, db, customGift.ID, stranger, 1)

	// The owner adds the same product themselves; their new item survives.
	result, err := svc.AddItem(context.Background(), identity.Actor{ID: owner}, list, AddItemInput{
		Name: "Record Player",
		URL:  strp("http://example.com/turntable/"),
	})
	require.NoError(t, err)
	assert.True(t, result.Merged)
	assert.NotEqual(t, customGift.ID, result.Item.ID)
	assert.Nil(t, result.Item.AddedByID)

	var claims []models.Claim
	require.NoError(t, db.Where("item_id = ?", result.Item.ID).Find(&claims).Error)
	require.Len(t, claims, 1)
	assert.Equal(t, stranger, claims[0].ClaimedByID)

	var gone int64
	require.NoError(t, db.Model(&models.GiftItem{}).Where("id = ?", customGift.ID).Count(&gone).Error)
	assert.Zero(t, gone)
}

type conflictMerger struct{}

func (conflictMerger) Merge(ctx context.Context, keepID, absorbID uuid.UUID) (*models.GiftItem, error) {
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "item to merge no longer exists")
}

func (conflictMerger) MergeTx(ctx context.Context, tx *gorm.DB, keepID, absorbID uuid.UUID) (*models.GiftItem, error) {
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "item to merge no longer exists")
}

func TestAddItemRollsBackInsertWhenMergeFails(t *testing.T) {
	db := setupWishlistTestDB(t)
	svc, err := NewService(NewRepository(db), testTxRunner{db: db}, conflictMerger{})
	require.NoError(t, err)

	owner := uuid.New()
	list := models.OwnedListRef(owner)
	seedItem(t, db, &models.GiftItem{
		OwnerID: &owner,
		Name:    "Espresso Machine",
		URL:     strp("http://example.com/espresso"),
	})

	_, err = svc.AddItem(context.Background(), identity.Actor{ID: owner}, list, AddItemInput{
		Name: "espresso machine",
		URL:  strp("http://example.com/espresso/"),
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())

	// The failed request must not leave the freshly inserted duplicate behind.
	var count int64
	require.NoError(t, db.Model(&models.GiftItem{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var entries []models.ChangeLogEntry
	require.NoError(t, db.Find(&entries).Error)
	assert.Empty(t, entries)
}

func TestListItemsOwnerViewHidesCustomGiftsAndClaims(t *testing.T) {
	db := setupWishlistTestDB(t)
	svc := newTestService(t, db)

	owner := uuid.New()
	stranger := uuid.New()
	list := models.OwnedListRef(owner)

	own := seedItem(t, db, &models.GiftItem{OwnerID: &owner, Name: "Hiking Boots", Quantity: 3})
	seedItem(t, db, &models.GiftItem{OwnerID: &owner, AddedByID: &stranger, Name: "Surprise Gift"})
	seedClaim(t, db, own.ID, stranger, 2)

	ownerViews, err := svc.ListItems(context.Background(), identity.Actor{ID: owner}, list)
	require.NoError(t, err)
	require.Len(t, ownerViews, 1)
	assert.False(t, ownerViews[0].ClaimsVisible)
	assert.Zero(t, ownerViews[0].ClaimedQuantity)
	assert.Empty(t, ownerViews[0].Claims)
	assert.Nil(t, ownerViews[0].OwnClaim)

	viewerViews, err := svc.ListItems(context.Background(), identity.Actor{ID: uuid.New()}, list)
	require.NoError(t, err)
	require.Len(t, viewerViews, 2)
	for _, v := range viewerViews {
		if v.Item.ID == own.ID {
			assert.True(t, v.ClaimsVisible)
			assert.Equal(t, 2, v.ClaimedQuantity)
			assert.Equal(t, 1, v.Remaining)
		}
	}
}

func TestUpdateItemPermissionDenied(t *testing.T) {
	db := setupWishlistTestDB(t)
	svc := newTestService(t, db)

	owner := uuid.New()
	item := seedItem(t, db, &models.GiftItem{OwnerID: &owner, Name: "Teapot"})

	_, err := svc.UpdateItem(context.Background(), identity.Actor{ID: uuid.New()}, item.ID, UpdateItemInput{Name: strp("Kettle")})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
}

func TestDeleteItemRemovesClaims(t *testing.T) {
	db := setupWishlistTestDB(t)
	svc := newTestService(t, db)

	owner := uuid.New()
	item := seedItem(t, db, &models.GiftItem{OwnerID: &owner, Name: "Blanket"})
	seedClaim(t, db, item.ID, uuid.New(), 1)

	require.NoError(t, svc.DeleteItem(context.Background(), identity.Actor{ID: owner}, item.ID))

	var itemCount, claimCount int64
	require.NoError(t, db.Model(&models.GiftItem{}).Count(&itemCount).Error)
	require.NoError(t, db.Model(&models.Claim{}).Count(&claimCount).Error)
	assert.Zero(t, itemCount)
	assert.Zero(t, claimCount)

	var entries []models.ChangeLogEntry
	require.NoError(t, db.Where("change_type = ?", models.ChangeTypeDeleted).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].ItemID)
}

func TestRemainingQuantityRecomputedLive(t *testing.T) {
	db := setupWishlistTestDB(t)
	svc := newTestService(t, db)

	owner := uuid.New()
	item := seedItem(t, db, &models.GiftItem{OwnerID: &owner, Name: "Board Game", Quantity: 2})

	remaining, err := svc.RemainingQuantity(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)

	seedClaim(t, db, item.ID, uuid.New(), 2)

	remaining, err = svc.RemainingQuantity(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
}

func strp(s string) *string {
	return &s
}
