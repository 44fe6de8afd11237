// Package devserver is a local stand-in for the research dashboard backend.
// It serves the dashboard's HTTP API from a sqlite store, ingests papers
// from arXiv and computes the analytics views.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/abelbrown/minescope/internal/fetch"
	"github.com/abelbrown/minescope/internal/store"
)

// Default login seeded into an empty user table.
const (
	DefaultUsername = "default_user"
	DefaultPassword = "password123"
)

// Ingester fetches candidate papers for /trigger_arxiv_fetch.
type Ingester interface {
	Fetch(ctx context.Context, q fetch.Query) ([]store.Article, error)
}

// Options configures a Server.
type Options struct {
	Store    *store.Store
	Ingester Ingester
	Query    fetch.Query // passed to Ingester on every ingest
	Logger   *zap.Logger // nil means zap.NewNop()

	JWTSecret   string // empty means a random per-process secret
	TokenTTL    time.Duration
	RequireAuth bool // reject requests without a bearer token

	AllowedOrigins []string
	Now            func() time.Time
}

// Server serves the dashboard API.
type Server struct {
	store    *store.Store
	ingester Ingester
	query    fetch.Query
	logger   *zap.Logger
	validate *validator.Validate
	tokens   *tokenIssuer
	auth     bool
	origins  []string
	now      func() time.Time
}

// New creates a Server. Store is required.
func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.New("devserver: store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	tokens, err := newTokenIssuer(opts.JWTSecret, opts.TokenTTL, now)
	if err != nil {
		return nil, err
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{
		store:    opts.Store,
		ingester: opts.Ingester,
		query:    opts.Query,
		logger:   logger,
		validate: validator.New(),
		tokens:   tokens,
		auth:     opts.RequireAuth,
		origins:  origins,
		now:      now,
	}, nil
}

// SeedDefaultUser creates the default login if it does not exist yet.
func (s *Server) SeedDefaultUser() error {
	created, err := s.store.EnsureUser(DefaultUsername, DefaultPassword)
	if err != nil {
		return fmt.Errorf("seed default user: %w", err)
	}
	if created {
		s.logger.Info("Created default user", zap.String("username", DefaultUsername))
	}
	return nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	r.Post("/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Post("/search", s.handleSearch)
		r.Post("/trigger_arxiv_fetch", s.handleTriggerFetch)
		r.Get("/database_status", s.handleDatabaseStatus)
		r.Post("/populate_sample_data", s.handlePopulate)

		r.Route("/article", func(r chi.Router) {
			r.Get("/graph", s.handleGraph)
			r.Get("/count", s.handleCount)
			r.Get("/recommendations", s.handleArticleRecommendations)
			r.Post("/favorite", s.handleFavorite(true))
			r.Delete("/favorite", s.handleFavorite(false))
		})

		r.Route("/api", func(r chi.Router) {
			r.Get("/visualization-data", s.handleVisualization)
			r.Get("/ai-insights", s.handleInsights)
			r.Get("/recommendations", s.handleRecommendationFeed)
		})
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Serving", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("Shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

// requestLogger logs one line per request.
func requestLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("HTTP Request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestID", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}
