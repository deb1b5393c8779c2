package claims

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hollydays/wishlist-backend/internal/identity"
	"github.com/hollydays/wishlist-backend/internal/visibility"
	"github.com/hollydays/wishlist-backend/pkg/db/models"
	pkgerrors "github.com/hollydays/wishlist-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds the claims service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("claims repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// Create records a purchase intent. The remaining quantity is recomputed from
// live claim rows inside the same transaction as the insert, so two
// concurrent claims for the last unit serialize through the store rather
// than both passing a stale check.
func (s *service) Create(ctx context.Context, actor identity.Actor, itemID uuid.UUID, quantity int) (*models.Claim, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "claim quantity must be at least 1")
	}

	var created *models.Claim
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		item, err := repo.FindItem(ctx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
		}

		if !visibility.CanClaim(actor, *item) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "not permitted")
		}

		claimed, err := repo.SumClaimQuantities(ctx, item.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum claims")
		}
		remaining := item.Quantity - claimed
		if quantity > remaining {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("only %d of %d remaining to claim", max(remaining, 0), item.Quantity))
		}

		claim := &models.Claim{
			ID:          uuid.New(),
			ItemID:      item.ID,
			ClaimedByID: actor.ID,
			Quantity:    quantity,
		}
		if err := repo.CreateClaim(ctx, claim); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create claim")
		}
		created = claim
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Withdraw(ctx context.Context, actor identity.Actor, claimID uuid.UUID) error {
	claim, err := s.loadClaim(ctx, claimID)
	if err != nil {
		return err
	}
	if claim.ClaimedByID != actor.ID && !actor.IsAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not permitted")
	}
	if err := s.repo.DeleteClaim(ctx, claim.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete claim")
	}
	return nil
}

func (s *service) UpdateProgress(ctx context.Context, actor identity.Actor, claimID uuid.UUID, input ProgressInput) (*models.Claim, error) {
	claim, err := s.loadClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim.ClaimedByID != actor.ID && !actor.IsAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not permitted")
	}

	if input.Purchased != nil {
		claim.Purchased = *input.Purchased
	}
	if input.Received != nil {
		claim.Received = *input.Received
	}
	if input.Wrapped != nil {
		claim.Wrapped = *input.Wrapped
	}

	if err := s.repo.SaveClaim(ctx, claim); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save claim")
	}
	return claim, nil
}

func (s *service) ListMine(ctx context.Context, actor identity.Actor) ([]models.Claim, error) {
	list, err := s.repo.ListClaimsByAccount(ctx, actor.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list claims")
	}
	return list, nil
}

func (s *service) loadClaim(ctx context.Context, claimID uuid.UUID) (*models.Claim, error) {
	if claimID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "claim id required")
	}
	claim, err := s.repo.FindClaim(ctx, claimID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "claim not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load claim")
	}
	return claim, nil
}
