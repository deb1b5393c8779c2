package wishlist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hollydays/wishlist-backend/internal/identity"
	"github.com/hollydays/wishlist-backend/internal/match"
	"github.com/hollydays/wishlist-backend/internal/visibility"
	"github.com/hollydays/wishlist-backend/pkg/db/models"
	pkgerrors "github.com/hollydays/wishlist-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo   Repository
	tx     txRunner
	merger match.Merger
}

// NewService builds the wishlist service with its required dependencies.
func NewService(repo Repository, tx txRunner, merger match.Merger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wishlist repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if merger == nil {
		return nil, fmt.Errorf("merger required")
	}
	return &service{repo: repo, tx: tx, merger: merger}, nil
}

func (s *service) ListItems(ctx context.Context, actor identity.Actor, list models.ListRef) ([]ItemView, error) {
	items, err := s.repo.ListItems(ctx, list)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}

	items = visibility.VisibleItems(actor, items)

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	claims, err := s.repo.ClaimsForItems(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load claims")
	}

	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		views = append(views, buildItemView(actor, item, claims[item.ID]))
	}
	return views, nil
}

func (s *service) GetItem(ctx context.Context, actor identity.Actor, itemID uuid.UUID) (*ItemView, error) {
	item, err := s.loadItem(ctx, s.repo, itemID)
	if err != nil {
		return nil, err
	}

	// An owner asking for a custom gift on their own list gets a not-found,
	// not a denial, so probing reveals nothing.
	if visible := visibility.VisibleItems(actor, []models.GiftItem{*item}); len(visible) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}

	claims, err := s.repo.ClaimsForItems(ctx, []uuid.UUID{item.ID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load claims")
	}
	view := buildItemView(actor, *item, claims[item.ID])
	return &view, nil
}

func (s *service) AddItem(ctx context.Context, actor identity.Actor, list models.ListRef, input AddItemInput) (*AddItemResult, error) {
	if !visibility.CanAddTo(actor, list) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not permitted")
	}
	if err := validateAddInput(input); err != nil {
		return nil, err
	}

	item := newItemFromInput(actor, list, input)

	// The candidate scan, the insert, and any merge share one transaction: a
	// merge failure rolls the insert back instead of leaving a duplicate row.
	var result *AddItemResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.ListItems(ctx, list)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
		}

		var candidate *models.GiftItem
		for i := range existing {
			if match.Similar(*item, existing[i], match.AddFlowProfile()) {
				candidate = &existing[i]
				break
			}
		}

		if err := repo.CreateItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create item")
		}

		if candidate == nil {
			result = &AddItemResult{Item: item}
			return nil
		}

		// Duplicate found. When the existing item is a stranger's custom gift
		// the new item survives and absorbs it, so the contribution ends up
		// under the acting user's control; otherwise the pre-existing item
		// wins.
		keepID, absorbID := candidate.ID, item.ID
		if candidate.IsCustomGift() && (candidate.AddedByID == nil || *candidate.AddedByID != actor.ID) {
			keepID, absorbID = item.ID, candidate.ID
		}

		merged, err := s.merger.MergeTx(ctx, tx, keepID, absorbID)
		if err != nil {
			return err
		}
		result = &AddItemResult{Item: merged, Merged: true}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Merged {
		s.recordChange(ctx, list, models.ChangeTypeUpdated, result.Item.Name, &result.Item.ID)
	} else {
		s.recordChange(ctx, list, models.ChangeTypeAdded, result.Item.Name, &result.Item.ID)
	}
	return result, nil
}

func (s *service) UpdateItem(ctx context.Context, actor identity.Actor, itemID uuid.UUID, input UpdateItemInput) (*models.GiftItem, error) {
	item, err := s.loadItem(ctx, s.repo, itemID)
	if err != nil {
		return nil, err
	}
	if !visibility.CanModify(actor, *item, visibility.CapabilityEdit) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not permitted")
	}
	if err := applyUpdate(item, input); err != nil {
		return nil, err
	}
	if err := s.repo.SaveItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save item")
	}

	if list, ok := item.List(); ok {
		s.recordChange(ctx, list, models.ChangeTypeUpdated, item.Name, &item.ID)
	}
	return item, nil
}

func (s *service) DeleteItem(ctx context.Context, actor identity.Actor, itemID uuid.UUID) error {
	item, err := s.loadItem(ctx, s.repo, itemID)
	if err != nil {
		return err
	}
	if !visibility.CanModify(actor, *item, visibility.CapabilityRemove) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not permitted")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := tx.WithContext(ctx).Where("item_id = ?", item.ID).Delete(&models.Claim{}).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete claims")
		}
		if err := repo.DeleteItem(ctx, item.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete item")
		}
		return nil
	})
	if err != nil {
		return err
	}

	if list, ok := item.List(); ok {
		s.recordChange(ctx, list, models.ChangeTypeDeleted, item.Name, nil)
	}
	return nil
}

func (s *service) MergeItems(ctx context.Context, actor identity.Actor, keepID, absorbID uuid.UUID) (*models.GiftItem, error) {
	keep, err := s.loadItem(ctx, s.repo, keepID)
	if err != nil {
		return nil, err
	}
	absorb, err := s.loadItem(ctx, s.repo, absorbID)
	if err != nil {
		return nil, err
	}
	if !visibility.CanModify(actor, *keep, visibility.CapabilityEdit) ||
		!visibility.CanModify(actor, *absorb, visibility.CapabilityRemove) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not permitted")
	}

	merged, err := s.merger.Merge(ctx, keepID, absorbID)
	if err != nil {
		return nil, err
	}

	if list, ok := merged.List(); ok {
		s.recordChange(ctx, list, models.ChangeTypeUpdated, merged.Name, &merged.ID)
	}
	return merged, nil
}

func (s *service) RemainingQuantity(ctx context.Context, itemID uuid.UUID) (int, error) {
	item, err := s.loadItem(ctx, s.repo, itemID)
	if err != nil {
		return 0, err
	}
	claimed, err := s.repo.SumClaimQuantities(ctx, itemID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum claims")
	}
	remaining := item.Quantity - claimed
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (s *service) loadItem(ctx context.Context, repo Repository, itemID uuid.UUID) (*models.GiftItem, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	item, err := repo.FindItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	return item, nil
}

func (s *service) recordChange(ctx context.Context, list models.ListRef, changeType, itemName string, itemID *uuid.UUID) {
	entry := &models.ChangeLogEntry{ID: uuid.New(), ChangeType: changeType, ItemName: itemName, ItemID: itemID}
	if ownerID, owned := list.OwnerID(); owned {
		entry.OwnerID = &ownerID
	}
	if proxyID, isProxy := list.ProxyListID(); isProxy {
		entry.ProxyListID = &proxyID
	}
	// Digest bookkeeping must never fail the mutation it describes.
	_ = s.repo.RecordChange(ctx, entry)
}

func newItemFromInput(actor identity.Actor, list models.ListRef, input AddItemInput) *models.GiftItem {
	item := &models.GiftItem{
		ID:              uuid.New(),
		Name:            strings.TrimSpace(input.Name),
		URL:             input.URL,
		Description:     input.Description,
		Price:           input.Price,
		ImageURL:        input.ImageURL,
		ImageCandidates: input.ImageCandidates,
		Quantity:        input.Quantity,
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	if ownerID, owned := list.OwnerID(); owned {
		item.OwnerID = &ownerID
		if ownerID != actor.ID {
			actorID := actor.ID
			item.AddedByID = &actorID
		}
	}
	if proxyID, isProxy := list.ProxyListID(); isProxy {
		item.ProxyListID = &proxyID
		actorID := actor.ID
		item.AddedByID = &actorID
	}
	return item
}

func validateAddInput(input AddItemInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}
	if input.Quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if input.Price != nil && input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	return nil
}

func applyUpdate(item *models.GiftItem, input UpdateItemInput) error {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
		}
		item.Name = name
	}
	if input.URL != nil {
		item.URL = input.URL
	}
	if input.Description != nil {
		item.Description = input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		item.Price = input.Price
	}
	if input.ImageURL != nil {
		item.ImageURL = input.ImageURL
	}
	if input.ImageCandidates != nil {
		item.ImageCandidates = input.ImageCandidates
	}
	if input.Quantity != nil {
		if *input.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
		}
		// Existing claims are never capped retroactively when quantity drops.
		item.Quantity = *input.Quantity
	}
	return nil
}

func buildItemView(actor identity.Actor, item models.GiftItem, claims []models.Claim) ItemView {
	view := ItemView{
		Item:          item,
		IsCustomGift:  item.IsCustomGift(),
		ClaimsVisible: visibility.CanSeeClaimDetails(actor, item),
	}

	for _, claim := range claims {
		if claim.ClaimedByID == actor.ID {
			cv := claimView(claim)
			view.OwnClaim = &cv
		}
	}

	if !view.ClaimsVisible {
		return view
	}

	claimed := 0
	for _, claim := range claims {
		claimed += claim.Quantity
		view.Claims = append(view.Claims, claimView(claim))
	}
	view.ClaimedQuantity = claimed
	view.Remaining = item.Quantity - claimed
	if view.Remaining < 0 {
		view.Remaining = 0
	}
	return view
}

func claimView(claim models.Claim) ClaimView {
	return ClaimView{
		ID:          claim.ID,
		ClaimedByID: claim.ClaimedByID,
		Quantity:    claim.Quantity,
		Purchased:   claim.Purchased,
		Received:    claim.Received,
		Wrapped:     claim.Wrapped,
	}
}
