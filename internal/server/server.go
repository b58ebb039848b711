package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/coperto/internal/api/ws"
	"github.com/gosuda/coperto/internal/auth"
	"github.com/gosuda/coperto/internal/booking"
	"github.com/gosuda/coperto/internal/config"
	"github.com/gosuda/coperto/internal/server/middleware"
	"github.com/gosuda/coperto/internal/store/postgres"
	redisstore "github.com/gosuda/coperto/internal/store/redis"
)

const apiVersion = "1.0.0"

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	store      *postgres.Store
	pubsub     *redisstore.PubSub
	wsHub      *ws.Hub
	cfg        *config.Config
}

// New creates a Server with all routes wired. ctx bounds the lifetime of the
// rate limiter janitors.
func New(
	ctx context.Context,
	cfg *config.Config,
	store *postgres.Store,
	pubsub *redisstore.PubSub,
	authSvc *auth.Service,
	bookingSvc *booking.Service,
	evaluator *booking.Evaluator,
) *Server {
	router := chi.NewRouter()

	// Global middleware stack.
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	hub := ws.NewHub(pubsub, cfg.Server.CORSOrigins)

	s := &Server{
		router: router,
		store:  store,
		pubsub: pubsub,
		wsHub:  hub,
		cfg:    cfg,
		httpServer: &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           router,
			ReadTimeout:       cfg.Server.ReadTimeout,
			ReadHeaderTimeout: cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
		},
	}

	// Mount API routes on /api/v1 with three sub-groups:
	// 1. Public booking page and auth endpoints, limited per client address.
	// 2. Staff endpoints, tenant taken from the access token.
	// 3. Platform administration.
	router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(ctx, cfg.RateLimit.PublicRPS, cfg.RateLimit.PublicBurst))

			api := humachi.New(r, apiConfig("Coperto Public API", ""))
			registerPublicRoutes(api, store, bookingSvc, evaluator)
			registerAuthRoutes(api, store, authSvc)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT.Secret))
			r.Use(middleware.RequireTenant())
			r.Use(middleware.RateLimit(ctx, cfg.RateLimit.TenantRPS, cfg.RateLimit.TenantBurst))
			r.Use(middleware.ReadOnlyForViewers())

			api := humachi.New(r, apiConfig("Coperto Staff API", "staff"))
			registerStaffRoutes(api, store, authSvc, bookingSvc)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT.Secret))
			r.Use(middleware.RequirePlatformAdmin(cfg.Platform.OperatorTenant))

			api := humachi.New(r, apiConfig("Coperto Admin API", "admin"))
			registerAdminRoutes(api, store, authSvc)
		})
	})

	// WebSocket routes.
	router.Route("/ws", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT.Secret))
		r.Use(middleware.RequireTenant())
		registerWSRoutes(r, hub)
	})

	// Health checks (unauthenticated).
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	router.Get("/readyz", s.ready)

	return s
}

// apiConfig builds the huma config for one route group. Groups share the
// /api/v1 mount, so each non-default group gets its own document paths.
func apiConfig(title, group string) huma.Config {
	c := huma.DefaultConfig(title, apiVersion)
	c.Servers = []*huma.Server{
		{URL: "/api/v1"},
	}
	if group != "" {
		c.OpenAPIPath = "/" + group + "/openapi"
		c.DocsPath = "/" + group + "/docs"
		c.SchemasPath = "/" + group + "/schemas"
	}
	return c
}

// ready reports 503 until both PostgreSQL and Redis answer a ping.
func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	if err := s.store.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("readiness: postgres ping failed")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"unavailable","component":"postgres"}`))
		return
	}
	if err := s.pubsub.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("readiness: redis ping failed")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"unavailable","component":"redis"}`))
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Handler exposes the root router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
