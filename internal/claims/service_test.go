package claims

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hollydays/wishlist-backend/internal/identity"
	"github.com/hollydays/wishlist-backend/pkg/db/models"
	pkgerrors "github.com/hollydays/wishlist-backend/pkg/errors"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupClaimsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:claims_" + uuid.NewString() + "?mode=memory&cache=shared"
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

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), testTxRunner{db: db})
	require.NoError(t, err)
	return svc
}

func seedItem(t *testing.T, db *gorm.DB, owner *uuid.UUID, qty int) *models.GiftItem {
	t.Helper()
	item := &models.GiftItem{ID: uuid.New(), OwnerID: owner, Name: "Gift", Quantity: qty}
	require.NoError(t, db.Create(item).Error)
	return item
}

func TestCreateClaimHappyPath(t *testing.T) {
	db := setupClaimsTestDB(t)
	svc := newTestService(t, db)

	owner := uuid.New()
	buyer := uuid.New()
	item := seedItem(t, db, &owner, 3)

	claim, err := svc.Create(context.Background(), identity.Actor{ID: buyer}, item.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, buyer, claim.ClaimedByID)
	assert.Equal(t, 2, claim.Quantity)
	assert.False(t, claim.Purchased)
}

func TestCreateClaimRejectsSelfClaim(t *testing.T) {
	db := setupClaimsTestDB(t)
	svc := newTestService(t, db)

	owner := uuid.New()
	item := seedItem(t, db, &owner, 1)

	_, err := svc.Create(context.Background(), identity.Actor{ID: owner}, item.ID, 1)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
	assert.Equal(t, "not permitted", typed.Message())
}

func TestCreateClaimRecomputesRemainingAtRequestTime(t *testing.T) {
	db := setupClaimsTestDB(t)
	svc := newTestService(t, db)

	owner := uuid.New()
	item := seedItem(t, db, &owner, 2)

	_, err := svc.Create(context.Background(), identity.Actor{ID: uuid.New()}, item.ID, 2)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), identity.Actor{ID: uuid.New()}, item.ID, 1)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Contains(t, typed.Message(), "only 0 of 2 remaining")

	var count int64
	require.NoError(t, db.Model(&models.Claim{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateClaimValidatesQuantity(t *testing.T) {
	db := setupClaimsTestDB(t)
	svc := newTestService(t, db)

	owner := uuid.New()
	item := seedItem(t, db, &owner, 2)

	_, err := svc.Create(context.Background(), identity.Actor{ID: uuid.New()}, item.ID, 0)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestWithdrawOnlyByClaimantOrAdmin(t *testing.T) {
	db := setupClaimsTestDB(t)
	svc := newTestService(t, db)

	owner := uuid.New()
	buyer := uuid.New()
	item := seedItem(t, db, &owner, 1)

	claim, err := svc.Create(context.Background(), identity.Actor{ID: buyer}, item.ID, 1)
	require.NoError(t, err)

	err = svc.Withdraw(context.Background(), identity.Actor{ID: uuid.New()}, claim.ID)
	require.Error(t, err)

	require.NoError(t, svc.Withdraw(context.Background(), identity.Actor{ID: buyer}, claim.ID))

	var count int64
	require.NoError(t, db.Model(&models.Claim{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateProgressFlagsAreIndependent(t *testing.T) {
	db := setupClaimsTestDB(t)
	svc := newTestService(t, db)

	owner := uuid.New()
	buyer := uuid.New()
	item := seedItem(t, db, &owner, 1)

	claim, err := svc.Create(context.Background(), identity.Actor{ID: buyer}, item.ID, 1)
	require.NoError(t, err)

	tr := true
	updated, err := svc.UpdateProgress(context.Background(), identity.Actor{ID: buyer}, claim.ID, ProgressInput{Wrapped: &tr})
	require.NoError(t, err)
	assert.True(t, updated.Wrapped)
	assert.False(t, updated.Purchased)
	assert.False(t, updated.Received)
}

func TestWithdrawAfterMissingClaimIsNotFound(t *testing.T) {
	db := setupClaimsTestDB(t)
	svc := newTestService(t, db)

	err := svc.Withdraw(context.Background(), identity.Actor{ID: uuid.New()}, uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
