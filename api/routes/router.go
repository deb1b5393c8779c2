package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hollydays/wishlist-backend/api/controllers"
	"github.com/hollydays/wishlist-backend/api/middleware"
	"github.com/hollydays/wishlist-backend/internal/accounts"
	"github.com/hollydays/wishlist-backend/internal/auth"
	"github.com/hollydays/wishlist-backend/internal/claims"
	"github.com/hollydays/wishlist-backend/internal/proxylists"
	"github.com/hollydays/wishlist-backend/internal/wishlist"
	"github.com/hollydays/wishlist-backend/pkg/auth/session"
	"github.com/hollydays/wishlist-backend/pkg/config"
	"github.com/hollydays/wishlist-backend/pkg/db"
	"github.com/hollydays/wishlist-backend/pkg/logger"
	"github.com/hollydays/wishlist-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionChecker session.AccessSessionChecker,
	authService auth.Service,
	accountService accounts.Service,
	wishlistService wishlist.Service,
	claimService claims.Service,
	proxyListService proxylists.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	authn := middleware.Auth(cfg.JWT, sessionChecker, proxyListService, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(authService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/magic-link", controllers.AuthMagicLinkRequest(authService, logg))
		r.Post("/magic-link/redeem", controllers.AuthMagicLinkRedeem(authService, logg))
		r.With(authn).Post("/logout", controllers.AuthLogout(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authn)

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", controllers.AccountList(accountService, logg))
			r.Get("/me", controllers.AccountMe(accountService, logg))
			r.Patch("/me", controllers.AccountUpdateMe(accountService, logg))
			r.Delete("/me", controllers.AccountDeleteMe(accountService, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.MyWishlist(wishlistService, logg))
			r.Post("/items", controllers.AddToMyList(wishlistService, logg))
		})

		r.Route("/lists", func(r chi.Router) {
			r.Get("/{accountId}", controllers.ViewList(wishlistService, logg))
			r.Post("/{accountId}/items", controllers.AddToList(wishlistService, logg))
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/{itemId}", controllers.GetItem(wishlistService, logg))
			r.Patch("/{itemId}", controllers.UpdateItem(wishlistService, logg))
			r.Delete("/{itemId}", controllers.DeleteItem(wishlistService, logg))
			r.Post("/merge", controllers.MergeItems(wishlistService, logg))
		})

		r.Route("/claims", func(r chi.Router) {
			r.Get("/", controllers.ClaimListMine(claimService, logg))
			r.Post("/", controllers.ClaimCreate(claimService, logg))
			r.Delete("/{claimId}", controllers.ClaimWithdraw(claimService, logg))
			r.Patch("/{claimId}/progress", controllers.ClaimUpdateProgress(claimService, logg))
		})

		r.Route("/proxy-lists", func(r chi.Router) {
			r.Get("/", controllers.ProxyListIndex(proxyListService, logg))
			r.Post("/", controllers.ProxyListCreate(proxyListService, logg))
			r.Get("/{listId}", controllers.ProxyListGet(proxyListService, logg))
			r.Patch("/{listId}", controllers.ProxyListUpdate(proxyListService, logg))
			r.Delete("/{listId}", controllers.ProxyListDelete(proxyListService, logg))
			r.Get("/{listId}/items", controllers.ProxyListItems(wishlistService, logg))
			r.Post("/{listId}/items", controllers.AddToProxyList(wishlistService, logg))
			r.Get("/{listId}/grants", controllers.ProxyListGrants(proxyListService, logg))
			r.Put("/{listId}/grants", controllers.ProxyListUpsertGrant(proxyListService, logg))
			r.Delete("/{listId}/grants/{accountId}", controllers.ProxyListRevokeGrant(proxyListService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(authn)
		r.Use(middleware.RequireAdmin(logg))
		r.Post("/accounts/{accountId}/impersonate", controllers.AdminImpersonate(authService, logg))
		r.Delete("/accounts/{accountId}", controllers.AdminAccountDelete(accountService, logg))
	})

	return r
}
