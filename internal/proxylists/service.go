package proxylists

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hollydays/wishlist-backend/internal/identity"
	"github.com/hollydays/wishlist-backend/internal/match"
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

// NewService builds the proxy list service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("proxylists repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, actor identity.Actor, input CreateInput) (*models.ProxyList, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "list name is required")
	}

	list := &models.ProxyList{
		ID:          uuid.New(),
		Name:        name,
		Email:       normalizeEmail(input.Email),
		CreatedByID: actor.ID,
	}
	if err := s.repo.CreateList(ctx, list); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create proxy list")
	}
	return list, nil
}

func (s *service) Get(ctx context.Context, listID uuid.UUID) (*models.ProxyList, error) {
	return s.loadList(ctx, listID)
}

func (s *service) List(ctx context.Context) ([]models.ProxyList, error) {
	lists, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list proxy lists")
	}
	return lists, nil
}

func (s *service) Update(ctx context.Context, actor identity.Actor, listID uuid.UUID, input UpdateInput) (*models.ProxyList, error) {
	list, err := s.loadList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if !s.canManage(actor, list) {
		if grant, ok := actor.GrantFor(list.ID); !ok || !grant.CanEdit {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not permitted")
		}
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "list name is required")
		}
		list.Name = name
	}
	if input.Email != nil {
		list.Email = normalizeEmail(input.Email)
	}

	if err := s.repo.SaveList(ctx, list); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save proxy list")
	}
	return list, nil
}

// Delete removes the list and everything hanging off it in one transaction:
// claims on its items, the items, delegate grants, pending change log
// entries, then the list row itself.
func (s *service) Delete(ctx context.Context, actor identity.Actor, listID uuid.UUID) error {
	list, err := s.loadList(ctx, listID)
	if err != nil {
		return err
	}
	if !s.canManage(actor, list) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not permitted")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteClaimsForList(ctx, list.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete claims")
		}
		if err := repo.DeleteItemsForList(ctx, list.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete items")
		}
		if err := repo.DeleteGrantsForList(ctx, list.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete grants")
		}
		if err := repo.DeleteChangeLogForList(ctx, list.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete change log")
		}
		if err := repo.DeleteList(ctx, list.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete proxy list")
		}
		return nil
	})
}

func (s *service) UpsertGrant(ctx context.Context, actor identity.Actor, listID uuid.UUID, input GrantInput) (*models.DelegateGrant, error) {
	list, err := s.loadList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if !s.canManage(actor, list) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not permitted")
	}
	if input.AccountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}

	grant := &models.DelegateGrant{
		ID:          uuid.New(),
		ProxyListID: list.ID,
		AccountID:   input.AccountID,
		CanAdd:      input.CanAdd,
		CanEdit:     input.CanEdit,
		CanRemove:   input.CanRemove,
	}
	if err := s.repo.UpsertGrant(ctx, grant); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert grant")
	}
	return grant, nil
}

func (s *service) RevokeGrant(ctx context.Context, actor identity.Actor, listID, accountID uuid.UUID) error {
	list, err := s.loadList(ctx, listID)
	if err != nil {
		return err
	}
	if !s.canManage(actor, list) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not permitted")
	}
	if err := s.repo.DeleteGrant(ctx, list.ID, accountID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete grant")
	}
	return nil
}

func (s *service) ListGrants(ctx context.Context, actor identity.Actor, listID uuid.UUID) ([]models.DelegateGrant, error) {
	list, err := s.loadList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if !s.canManage(actor, list) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not permitted")
	}
	grants, err := s.repo.ListGrantsForList(ctx, list.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list grants")
	}
	return grants, nil
}

func (s *service) GrantsForAccount(ctx context.Context, accountID uuid.UUID) ([]models.DelegateGrant, error) {
	grants, err := s.repo.ListGrantsForAccount(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list grants")
	}
	return grants, nil
}

// ConvertForAccount hands every proxy list whose contact email matches the
// new account over to it. Items move onto the account's own list, keeping
// their added_by attribution and claims; items that duplicate something the
// account already wanted are folded in under the strict conversion profile.
// Each list converts atomically with its grant and change log cleanup.
func (s *service) ConvertForAccount(ctx context.Context, account models.Account) (*ConversionResult, error) {
	if account.ID == uuid.Nil || account.Email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account with email required")
	}

	lists, err := s.repo.FindListsByEmail(ctx, account.Email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find proxy lists")
	}

	result := &ConversionResult{}
	for _, list := range lists {
		if err := s.convertOne(ctx, list, account, result); err != nil {
			return nil, err
		}
		result.ConvertedLists++
	}
	return result, nil
}

func (s *service) convertOne(ctx context.Context, list models.ProxyList, account models.Account, result *ConversionResult) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		matchRepo := match.NewRepository(tx)

		owned, err := repo.ListOwnedItems(ctx, account.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list owned items")
		}
		proxyItems, err := repo.ListItems(ctx, list.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list proxy items")
		}

		for i := range proxyItems {
			item := proxyItems[i]
			item.ProxyListID = nil
			ownerID := account.ID
			item.OwnerID = &ownerID
			if err := repo.SaveItem(ctx, &item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "migrate item")
			}

			var candidate *models.GiftItem
			for j := range owned {
				if match.Similar(item, owned[j], match.ConversionProfile()) {
					candidate = &owned[j]
					break
				}
			}

			if candidate != nil {
				if _, err := match.MergeInTx(ctx, matchRepo, candidate.ID, item.ID); err != nil {
					return err
				}
				result.MergedItems++
				continue
			}

			owned = append(owned, item)
			result.MigratedItems++
		}

		if err := repo.ReassignChangeLog(ctx, list.ID, account.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reassign change log")
		}
		if err := repo.DeleteGrantsForList(ctx, list.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete grants")
		}
		if err := repo.DeleteList(ctx, list.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete proxy list")
		}
		return nil
	})
}

func (s *service) canManage(actor identity.Actor, list *models.ProxyList) bool {
	return actor.IsAdmin || list.CreatedByID == actor.ID
}

func (s *service) loadList(ctx context.Context, listID uuid.UUID) (*models.ProxyList, error) {
	if listID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "list id required")
	}
	list, err := s.repo.FindList(ctx, listID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "proxy list not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load proxy list")
	}
	return list, nil
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	normalized := strings.ToLower(strings.TrimSpace(*email))
	if normalized == "" {
		return nil
	}
	return &normalized
}
