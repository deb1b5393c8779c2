package match

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hollydays/wishlist-backend/pkg/db/models"
	pkgerrors "github.com/hollydays/wishlist-backend/pkg/errors"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupMergeTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:merge_" + uuid.NewString() + "?mode=memory&cache=shared"
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
	require.NoError(t, db.Exec(giftItems).Error)
	require.NoError(t, db.Exec(claims).Error)
	return db
}

func newMerger(t *testing.T, db *gorm.DB) Merger {
	t.Helper()
	m, err := NewMerger(NewRepository(db), testTxRunner{db: db})
	require.NoError(t, err)
	return m
}

func createItem(t *testing.T, db *gorm.DB, item *models.GiftItem) *models.GiftItem {
	t.Helper()
	item.ID = uuid.New()
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func createClaim(t *testing.T, db *gorm.DB, itemID, claimant uuid.UUID, qty int) *models.Claim {
	t.Helper()
	claim := &models.Claim{ID: uuid.New(), ItemID: itemID, ClaimedByID: claimant, Quantity: qty}
	require.NoError(t, db.Create(claim).Error)
	return claim
}

func TestMergeRepointsClaimsAndDeletesAbsorbed(t *testing.T) {
	db := setupMergeTestDB(t)
	merger := newMerger(t, db)

	owner := uuid.New()
	price := decimal.NewFromFloat(49.99)

	keep := createItem(t, db, &models.GiftItem{
		OwnerID:     &owner,
		Name:        "Lego Castle",
		Description: strPtr("big castle set"),
		Quantity:    1,
	})
	absorb := createItem(t, db, &models.GiftItem{
		OwnerID:         &owner,
		Name:            "LEGO Castle",
		URL:             strPtr("http://example.com/lego"),
		Description:     strPtr("should not win"),
		Price:           &price,
		ImageCandidates: []string{"http://example.com/img1.jpg"},
		Quantity:        3,
	})

	buyerA := uuid.New()
	buyerB := uuid.New()
	createClaim(t, db, keep.ID, buyerA, 1)
	createClaim(t, db, absorb.ID, buyerB, 2)

	merged, err := merger.Merge(context.Background(), keep.ID, absorb.ID)
	require.NoError(t, err)

	assert.Equal(t, keep.ID, merged.ID)
	assert.Equal(t, 3, merged.Quantity)
	require.NotNil(t, merged.Description)
	assert.Equal(t, "big castle set", *merged.Description)
	require.NotNil(t, merged.URL)
	assert.Equal(t, "http://example.com/lego", *merged.URL)
	require.NotNil(t, merged.Price)
	assert.True(t, merged.Price.Equal(price))
	assert.Equal(t, []string{"http://example.com/img1.jpg"}, []string(merged.ImageCandidates))

	var absorbCount int64
	require.NoError(t, db.Model(&models.GiftItem{}).Where("id = ?", absorb.ID).Count(&absorbCount).Error)
	assert.Zero(t, absorbCount)

	var claims []models.Claim
	require.NoError(t, db.Where("item_id = ?", keep.ID).Find(&claims).Error)
	require.Len(t, claims, 2)
	total := 0
	for _, c := range claims {
		total += c.Quantity
	}
	assert.Equal(t, 3, total)
}

func TestMergeCrossListRejectedWithoutMutation(t *testing.T) {
	db := setupMergeTestDB(t)
	merger := newMerger(t, db)

	ownerA := uuid.New()
	proxyList := uuid.New()

	keep := createItem(t, db, &models.GiftItem{OwnerID: &ownerA, Name: "Scarf"})
	absorb := createItem(t, db, &models.GiftItem{ProxyListID: &proxyList, Name: "Scarf"})
	createClaim(t, db, absorb.ID, uuid.New(), 1)

	_, err := merger.Merge(context.Background(), keep.ID, absorb.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	var itemCount, claimCount int64
	require.NoError(t, db.Model(&models.GiftItem{}).Count(&itemCount).Error)
	require.NoError(t, db.Model(&models.Claim{}).Where("item_id = ?", absorb.ID).Count(&claimCount).Error)
	assert.Equal(t, int64(2), itemCount)
	assert.Equal(t, int64(1), claimCount)
}

func TestMergeMissingAbsorbedItemIsConflict(t *testing.T) {
	db := setupMergeTestDB(t)
	merger := newMerger(t, db)

	owner := uuid.New()
	keep := createItem(t, db, &models.GiftItem{OwnerID: &owner, Name: "Puzzle"})

	_, err := merger.Merge(context.Background(), keep.ID, uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestMergeSelfAndNilIDsRejected(t *testing.T) {
	db := setupMergeTestDB(t)
	merger := newMerger(t, db)

	id := uuid.New()
	if _, err := merger.Merge(context.Background(), id, id); err == nil {
		t.Fatal("expected self merge to be rejected")
	}
	if _, err := merger.Merge(context.Background(), uuid.Nil, id); err == nil {
		t.Fatal("expected nil keep id to be rejected")
	}
}

func TestMergeDoesNotOverwritePopulatedFields(t *testing.T) {
	db := setupMergeTestDB(t)
	merger := newMerger(t, db)

	owner := uuid.New()
	keepPrice := decimal.NewFromInt(10)
	absorbPrice := decimal.NewFromInt(99)

	keep := createItem(t, db, &models.GiftItem{
		OwnerID:     &owner,
		Name:        "Coffee Grinder",
		URL:         strPtr("http://example.com/grinder"),
		Description: strPtr("burr grinder"),
		Price:       &keepPrice,
		ImageURL:    strPtr("http://example.com/keep.jpg"),
		Quantity:    2,
	})
	absorb := createItem(t, db, &models.GiftItem{
		OwnerID:     &owner,
		Name:        "Coffee Grinder",
		URL:         strPtr("http://example.com/other"),
		Description: strPtr("other description"),
		Price:       &absorbPrice,
		ImageURL:    strPtr("http://example.com/absorb.jpg"),
		Quantity:    1,
	})

	merged, err := merger.Merge(context.Background(), keep.ID, absorb.ID)
	require.NoError(t, err)

	assert.Equal(t, "http://example.com/grinder", *merged.URL)
	assert.Equal(t, "burr grinder", *merged.Description)
	assert.True(t, merged.Price.Equal(keepPrice))
	assert.Equal(t, "http://example.com/keep.jpg", *merged.ImageURL)
	assert.Equal(t, 2, merged.Quantity)
}
