package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/hollydays/wishlist-backend/api/responses"
	"github.com/hollydays/wishlist-backend/internal/identity"
	pkgAuth "github.com/hollydays/wishlist-backend/pkg/auth"
	"github.com/hollydays/wishlist-backend/pkg/auth/session"
	"github.com/hollydays/wishlist-backend/pkg/config"
	"github.com/hollydays/wishlist-backend/pkg/db/models"
	pkgerrors "github.com/hollydays/wishlist-backend/pkg/errors"
	"github.com/hollydays/wishlist-backend/pkg/logger"
)

// GrantLoader resolves the delegate grants held by an account. The grants
// ride on the actor so permission checks never touch the database twice.
type GrantLoader interface {
	GrantsForAccount(ctx context.Context, accountID uuid.UUID) ([]models.DelegateGrant, error)
}

// Auth validates a bearer token, checks the session is still live, and seeds
// the request context with a fully loaded actor.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, grants GrantLoader, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			if verifier != nil {
				ok, err := verifier.HasSession(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
					return
				}
			}

			actor := identity.Actor{
				ID:             claims.AccountID,
				IsAdmin:        claims.IsAdmin,
				ImpersonatedBy: claims.ImpersonatedBy,
			}
			if grants != nil {
				loaded, err := grants.GrantsForAccount(r.Context(), claims.AccountID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delegate grants"))
					return
				}
				actor.Grants = loaded
			}

			ctx := WithActor(r.Context(), actor)
			ctx = WithAccessID(ctx, claims.ID)

			if logg != nil {
				fields := map[string]any{"account_id": claims.AccountID.String()}
				if claims.ImpersonatedBy != nil {
					fields["impersonated_by"] = claims.ImpersonatedBy.String()
				}
				ctx = logg.WithFields(ctx, fields)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates a route subtree to admin actors.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok || !actor.IsAdmin {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "not permitted"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
