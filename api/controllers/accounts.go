package controllers

import (
	"net/http"

	"github.com/hollydays/wishlist-backend/api/middleware"
	"github.com/hollydays/wishlist-backend/api/responses"
	"github.com/hollydays/wishlist-backend/api/validators"
	"github.com/hollydays/wishlist-backend/internal/accounts"
	"github.com/hollydays/wishlist-backend/pkg/db/models"
	pkgerrors "github.com/hollydays/wishlist-backend/pkg/errors"
	"github.com/hollydays/wishlist-backend/pkg/logger"
)

type accountView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

type profileView struct {
	accountView
	Email string `json:"email"`
}

// AccountList returns every household member; this doubles as the list
// browser since each account implies a wishlist.
func AccountList(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		views := make([]accountView, 0, len(all))
		for _, a := range all {
			views = append(views, accountView{ID: a.ID.String(), Name: a.Name, IsAdmin: a.IsAdmin})
		}
		responses.WriteSuccess(w, views)
	}
}

func AccountMe(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		account, err := svc.Get(r.Context(), actor.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profileFromModel(account))
	}
}

type updateProfileRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1"`
}

func AccountUpdateMe(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		var req updateProfileRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		account, err := svc.UpdateProfile(r.Context(), actor, actor.ID, accounts.UpdateProfileInput{Name: req.Name})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profileFromModel(account))
	}
}

// AccountDeleteMe lets a member leave the household, taking their list,
// claims, and grants with them.
func AccountDeleteMe(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		if err := svc.Delete(r.Context(), actor, actor.ID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminAccountDelete removes an account and everything it owns.
func AdminAccountDelete(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		id, err := pathUUID(r, "accountId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), actor, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func profileFromModel(account *models.Account) profileView {
	return profileView{
		accountView: accountView{ID: account.ID.String(), Name: account.Name, IsAdmin: account.IsAdmin},
		Email:       account.Email,
	}
}
