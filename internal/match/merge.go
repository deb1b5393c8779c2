package match

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	pkgerrors "github.com/hollydays/wishlist-backend/pkg/errors"
	"gorm.io/gorm"

	"github.com/hollydays/wishlist-backend/pkg/db/models"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type merger struct {
	repo Repository
	tx   txRunner
}

// NewMerger builds the merge service.
func NewMerger(repo Repository, tx txRunner) (Merger, error) {
	if repo == nil {
		return nil, fmt.Errorf("match repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &merger{repo: repo, tx: tx}, nil
}

// Merge folds absorb into keep: empty fields on keep are filled from absorb,
// quantity becomes the max of the two, every claim on absorb is re-pointed at
// keep, and absorb is deleted. The whole sequence runs in one transaction so
// a failure leaves both items and all claims untouched.
func (m *merger) Merge(ctx context.Context, keepID, absorbID uuid.UUID) (*models.GiftItem, error) {
	var merged *models.GiftItem
	err := m.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var txErr error
		merged, txErr = MergeInTx(ctx, m.repo.WithTx(tx), keepID, absorbID)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

// MergeTx runs the merge inside the provided transaction.
func (m *merger) MergeTx(ctx context.Context, tx *gorm.DB, keepID, absorbID uuid.UUID) (*models.GiftItem, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required")
	}
	return MergeInTx(ctx, m.repo.WithTx(tx), keepID, absorbID)
}

// MergeInTx performs the merge against a repository already bound to an open
// transaction. Callers that orchestrate larger transactions (proxy list
// conversion) use this directly; everyone else goes through Merger.Merge.
func MergeInTx(ctx context.Context, repo Repository, keepID, absorbID uuid.UUID) (*models.GiftItem, error) {
	if keepID == uuid.Nil || absorbID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "both item ids are required")
	}
	if keepID == absorbID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot merge an item with itself")
	}

	keep, err := repo.FindItem(ctx, keepID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load kept item")
	}

	absorb, err := repo.FindItem(ctx, absorbID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Deleted by a concurrent request. The caller may safely
			// retry after re-checking its candidates.
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "item to merge no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load absorbed item")
	}

	keepList, ok := keep.List()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item has no list reference")
	}
	absorbList, ok := absorb.List()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item has no list reference")
	}
	if !keepList.Equal(absorbList) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "items belong to different lists")
	}

	fillFields(keep, absorb)

	if err := repo.SaveItem(ctx, keep); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save merged item")
	}
	if err := repo.RepointClaims(ctx, absorb.ID, keep.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "repoint claims")
	}
	if err := repo.DeleteItem(ctx, absorb.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete absorbed item")
	}

	return keep, nil
}

// fillFields copies absorb's details onto keep wherever keep has nothing.
// Populated fields are never overwritten; quantity takes the larger of the
// two; image candidates not already present on keep are appended in order.
func fillFields(keep, absorb *models.GiftItem) {
	if isEmpty(keep.Description) {
		keep.Description = absorb.Description
	}
	if keep.Price == nil {
		keep.Price = absorb.Price
	}
	if isEmpty(keep.ImageURL) {
		keep.ImageURL = absorb.ImageURL
	}
	if isEmpty(keep.URL) {
		keep.URL = absorb.URL
	}
	if absorb.Quantity > keep.Quantity {
		keep.Quantity = absorb.Quantity
	}

	seen := make(map[string]struct{}, len(keep.ImageCandidates))
	for _, c := range keep.ImageCandidates {
		seen[c] = struct{}{}
	}
	for _, c := range absorb.ImageCandidates {
		if _, ok := seen[c]; !ok {
			keep.ImageCandidates = append(keep.ImageCandidates, c)
		}
	}
}

func isEmpty(s *string) bool {
	return s == nil || *s == ""
}
