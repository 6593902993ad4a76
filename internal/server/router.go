// Package server assembles the sandbox financial API: an OAuth2 token
// endpoint and bearer-protected resource listings backed by SQLite.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iudanet/finsync/internal/models"
	"github.com/iudanet/finsync/internal/server/handlers"
	"github.com/iudanet/finsync/internal/server/middleware"
	"github.com/iudanet/finsync/internal/server/storage/sqlite"
	"github.com/iudanet/finsync/pkg/api"
)

// Options configures the sandbox router
type Options struct {
	JWT             handlers.JWTConfig
	ClientID        string        // пустой - любой client_id
	TokenRateLimit  int           // запросов к /oauth/* в окне, 0 - без ограничения
	APIRateLimit    int           // запросов к ресурсам в окне, 0 - без ограничения
	RateLimitWindow time.Duration // окно rate limit
}

// Router is the sandbox HTTP handler. Stop releases rate limiter goroutines.
type Router struct {
	http.Handler
	limiters []*middleware.RateLimiter
}

// Stop останавливает фоновые goroutines rate limiter
func (r *Router) Stop() {
	for _, l := range r.limiters {
		l.Stop()
	}
}

// resourcePaths сопоставляет типы ресурсов и их пути
var resourcePaths = map[models.ResourceType]string{
	models.ResourceAccounts:     api.PathAccounts,
	models.ResourceTransactions: api.PathTransactions,
	models.ResourceGoals:        api.PathGoals,
	models.ResourceBills:        api.PathBills,
	models.ResourceCards:        api.PathCards,
	models.ResourceContacts:     api.PathContacts,
}

// deletable lists the types the API allows clients to delete
var deletable = map[models.ResourceType]bool{
	models.ResourceGoals:    true,
	models.ResourceContacts: true,
}

// NewRouter builds the sandbox API
func NewRouter(store *sqlite.Storage, logger *slog.Logger, opts Options) *Router {
	window := opts.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}
	tokenLimiter := middleware.NewRateLimiter(opts.TokenRateLimit, window, logger)
	apiLimiter := middleware.NewRateLimiter(opts.APIRateLimit, window, logger)

	tokenHandler := handlers.NewTokenHandler(logger, store, store, opts.JWT, opts.ClientID)
	resourceHandler := handlers.NewResourceHandler(logger, store)
	healthHandler := handlers.NewHealthHandler(logger, store)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.LoggingWithSkip(logger, []string{"/health"}))
	r.Use(middleware.RecoveryMiddleware(logger))

	r.Get("/health", healthHandler.Health)

	r.Route("/oauth", func(r chi.Router) {
		r.Use(tokenLimiter.Middleware)
		r.Post("/token", tokenHandler.Token)
		r.Post("/revoke", tokenHandler.Revoke)
	})

	// Protected routes
	r.With(apiLimiter.Middleware, middleware.AuthMiddleware(logger, opts.JWT)).Group(func(r chi.Router) {
		for rt, path := range resourcePaths {
			r.Get(path, resourceHandler.List(rt))
			r.Put(path+"/{id}", resourceHandler.Put(rt))
			if deletable[rt] {
				r.Delete(path+"/{id}", resourceHandler.Delete(rt))
			}
		}
	})

	return &Router{
		Handler:  r,
		limiters: []*middleware.RateLimiter{tokenLimiter, apiLimiter},
	}
}
