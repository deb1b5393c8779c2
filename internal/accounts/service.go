package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hollydays/wishlist-backend/internal/identity"
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

// NewService builds the accounts service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) List(ctx context.Context) ([]models.Account, error) {
	accounts, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list accounts")
	}
	return accounts, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return s.load(ctx, id)
}

func (s *service) UpdateProfile(ctx context.Context, actor identity.Actor, id uuid.UUID, input UpdateProfileInput) (*models.Account, error) {
	if actor.ID != id && !actor.IsAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not permitted")
	}
	account, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
		}
		account.Name = name
	}

	if err := s.repo.Save(ctx, account); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save account")
	}
	return account, nil
}

// Delete removes the account and everything it owns in one explicit
// transaction: claims the account made, claims on its items, its items, its
// delegate grants, its change log, the proxy lists it created (cascading the
// same way), and finally the account row. Nothing here relies on database
// cascade rules.
func (s *service) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	if actor.ID != id && !actor.IsAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not permitted")
	}
	account, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.DeleteClaimsByAccount(ctx, account.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete account claims")
		}
		if err := repo.DeleteClaimsOnOwnedItems(ctx, account.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete claims on items")
		}
		if err := repo.DeleteOwnedItems(ctx, account.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete items")
		}
		if err := repo.DeleteGrantsForAccount(ctx, account.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete grants")
		}
		if err := repo.DeleteChangeLogForOwner(ctx, account.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete change log")
		}

		created, err := repo.ListProxyListsCreatedBy(ctx, account.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list proxy lists")
		}
		for _, list := range created {
			if err := repo.DeleteProxyListCascade(ctx, list.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete proxy list")
			}
		}

		if err := repo.Delete(ctx, account.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete account")
		}
		return nil
	})
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	return account, nil
}
