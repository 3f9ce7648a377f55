// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kardolabs/estatesync/internal/auth"
	"github.com/kardolabs/estatesync/internal/authz"
	"github.com/kardolabs/estatesync/internal/cache"
	"github.com/kardolabs/estatesync/internal/config"
	"github.com/kardolabs/estatesync/internal/database"
	"github.com/kardolabs/estatesync/internal/metrics"
	"github.com/kardolabs/estatesync/internal/middleware"
	"github.com/kardolabs/estatesync/internal/models"
	"github.com/kardolabs/estatesync/internal/quota"
	"github.com/kardolabs/estatesync/internal/stream"
)

// Router wires the HTTP handlers to their collaborators.
type Router struct {
	cfg      *config.Config
	db       *database.DB
	hub      *stream.Hub
	ledger   *quota.Ledger
	verifier *auth.Verifier
	authz    *authz.Service
	featured *cache.Cache
}

// NewRouter creates the API router. verifier may be nil only when auth
// is disabled in cfg.
func NewRouter(cfg *config.Config, db *database.DB, hub *stream.Hub, ledger *quota.Ledger, verifier *auth.Verifier, authzSvc *authz.Service) *Router {
	return &Router{
		cfg:      cfg,
		db:       db,
		hub:      hub,
		ledger:   ledger,
		verifier: verifier,
		authz:    authzSvc,
		featured: cache.New(featuredCacheTTL),
	}
}

// Handler builds the chi handler tree. Route groups carry their own
// rate-limit bucket so a search flood cannot starve admin operations and
// vice versa. Authentication runs before rate limiting so buckets key by
// account when a valid token is present.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.cfg.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "If-None-Match"},
		ExposedHeaders: []string{"ETag", "Retry-After", "X-Request-ID"},
		MaxAge:         86400,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		r.Use(auth.Middleware(rt.verifier, rt.cfg.Auth.Disabled))

		r.Route("/properties", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(rt.limit("search", rt.cfg.RateLimit.Search))
				r.Get("/", rt.handleSearchListings)
				r.Get("/featured", rt.handleFeaturedListings)
				r.Get("/stream", stream.NDJSONHandler(rt.hub, &rt.cfg.Stream))
				r.Get("/{id}", rt.handleGetListing)
				r.Get("/{id}/inquiries", rt.handleListInquiries)
			})

			r.Group(func(r chi.Router) {
				r.Use(rt.limit("upload", rt.cfg.RateLimit.Upload))
				r.Post("/", rt.handleCreateListing)
				r.Put("/{id}", rt.handleUpdateListing)
				r.Delete("/{id}", rt.handleDeleteListing)
				r.Post("/{id}/inquiries", rt.handleCreateInquiry)
			})

			r.Group(func(r chi.Router) {
				r.Use(rt.limit("heavy", rt.cfg.RateLimit.Heavy))
				r.Delete("/", rt.handleClearListings)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(rt.limit("search", rt.cfg.RateLimit.Search))
			r.Get("/ws", stream.WebsocketHandler(rt.hub, &rt.cfg.Stream))
			r.Get("/health", rt.handleHealth)
			r.Get("/favorites", rt.handleListFavorites)
		})

		r.Group(func(r chi.Router) {
			r.Use(rt.limit("upload", rt.cfg.RateLimit.Upload))
			r.Put("/favorites/{listingID}", rt.handleAddFavorite)
			r.Delete("/favorites/{listingID}", rt.handleRemoveFavorite)
			r.Put("/inquiries/{id}", rt.handleUpdateInquiry)
		})

		r.Route("/waves", func(r chi.Router) {
			r.Use(rt.limit("admin", rt.cfg.RateLimit.Admin))
			r.Get("/", rt.handleListWaves)
			r.Post("/", rt.handleCreateWave)
			r.Get("/{id}", rt.handleGetWave)
			r.Put("/{id}", rt.handleUpdateWave)
			r.Delete("/{id}", rt.handleDeleteWave)
			r.Post("/{id}/permissions", rt.handleGrantPermission)
			r.Put("/{id}/permissions/{accountID}", rt.handleUpdatePermission)
			r.Delete("/{id}/permissions/{accountID}", rt.handleRevokePermission)
		})

		r.Group(func(r chi.Router) {
			r.Use(rt.limit("admin", rt.cfg.RateLimit.Admin))
			r.Get("/accounts/{id}/permissions", rt.handleAccountPermissions)
		})
	})

	return r
}

// limit builds a rate-limit middleware for one bucket. Requests carrying
// a verified actor are keyed by account so a shared NAT does not pool
// authenticated clients into one bucket; everything else keys by client
// IP.
func (rt *Router) limit(bucket string, b config.Bucket) func(http.Handler) http.Handler {
	if rt.cfg.RateLimit.Disabled {
		return func(next http.Handler) http.Handler { return next }
	}

	retryAfter := strconv.Itoa(int(b.Window.Seconds()))

	return httprate.Limit(b.Requests, b.Window,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.APIRateLimitHits.WithLabelValues(bucket).Inc()
			w.Header().Set("Retry-After", retryAfter)
			respondError(w, http.StatusTooManyRequests, models.ErrCodeRateLimited, "rate limit exceeded", nil)
		}),
	)
}

// rateLimitKey keys by authenticated account when present, else by IP.
func rateLimitKey(r *http.Request) (string, error) {
	if actor, ok := auth.ActorFrom(r.Context()); ok {
		return actor.AccountID.String(), nil
	}
	return httprate.KeyByRealIP(r)
}

// requireActor fetches the authenticated actor or answers 401. Handlers
// that allow anonymous access read the context directly instead.
func requireActor(w http.ResponseWriter, r *http.Request) (*auth.Actor, bool) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		respondUnauthenticated(w)
		return nil, false
	}
	return actor, true
}

// requireCapability answers 403 unless the actor's role holds the
// (object, action) capability. Enforcer errors fail closed.
func (rt *Router) requireCapability(w http.ResponseWriter, actor *auth.Actor, object, action string) bool {
	allowed, err := rt.authz.Can(actor.Role, object, action)
	if err != nil || !allowed {
		respondRoleDenied(w)
		return false
	}
	return true
}
