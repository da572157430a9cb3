package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/redis/go-redis/v9"

	"github.com/hongminglow/rta-portal/internal/auth"
	"github.com/hongminglow/rta-portal/internal/config"
	"github.com/hongminglow/rta-portal/internal/events"
	"github.com/hongminglow/rta-portal/internal/http/handlers"
	"github.com/hongminglow/rta-portal/internal/http/respond"
	"github.com/hongminglow/rta-portal/internal/metrics"
	"github.com/hongminglow/rta-portal/internal/middleware"
	"github.com/hongminglow/rta-portal/internal/portal"
	"github.com/hongminglow/rta-portal/internal/portfolio"
	"github.com/hongminglow/rta-portal/internal/session"
	"github.com/hongminglow/rta-portal/internal/storage"
)

// Deps are the long-lived clients the server is built on.
type Deps struct {
	Store     storage.Store
	Redis     *redis.Client
	Publisher events.Publisher
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	if deps.Publisher == nil {
		deps.Publisher = events.Noop{}
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	sessions := session.NewStore(deps.Redis)
	provider := session.NewResolver(tokens, sessions, deps.Store)
	svc := portfolio.NewService(deps.Store, deps.Publisher, portfolio.Limits{
		Min: cfg.MinTransactionAmount,
		Max: cfg.MaxTransactionAmount,
	})

	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now(), map[string]handlers.Check{
		"database": deps.Store.Ping,
		"redis":    func(ctx context.Context) error { return deps.Redis.Ping(ctx).Err() },
	}).Register(mux)
	mux.Handle("GET /metrics", metrics.Handler())

	handlers.NewAuthHandler(deps.Store, tokens, sessions, provider, cfg.AdminRegistrationSecret).Register(mux, loginLimiter(cfg.LoginRateLimit))
	handlers.NewInvestorHandler(svc, provider).Register(mux)
	handlers.NewAdminHandler(deps.Store, svc, sessions, deps.Publisher, provider).Register(mux)
	handlers.NewAreaHandler(svc, provider).Register(mux)
	portal.NewGate(provider).Register(mux)

	handler := middleware.Recover(middleware.RequestID(middleware.Logging(middleware.CORS(cfg.CORSOrigins, mux))))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

func loginLimiter(perMinute int) func(http.Handler) http.Handler {
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respond.Error(w, http.StatusTooManyRequests, "too many login attempts, try again later")
		}),
	)
}

// Handler exposes the full middleware chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.inner.Handler
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
