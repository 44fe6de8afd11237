// Command minescope-devserver runs a local research API backed by SQLite and
// the arXiv export API, for developing against the dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/abelbrown/minescope/internal/config"
	"github.com/abelbrown/minescope/internal/devserver"
	"github.com/abelbrown/minescope/internal/fetch"
	"github.com/abelbrown/minescope/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	addr := flag.String("addr", cfg.Dev.Addr, "listen address")
	dbPath := flag.String("db", cfg.Dev.DBPath, "SQLite database path")
	arxivURL := flag.String("arxiv", cfg.Dev.ArxivURL, "arXiv API endpoint")
	query := flag.String("query", cfg.Dev.ArxivQuery, "arXiv search_query for ingest")
	maxResults := flag.Int("max", cfg.Dev.ArxivMax, "papers requested per ingest")
	maxAge := flag.Duration("max-age", 30*24*time.Hour, "skip papers older than this (0 keeps all)")
	requireAuth := flag.Bool("require-auth", false, "reject requests without a bearer token")
	jsonLogs := flag.Bool("json-logs", false, "log JSON instead of console output")
	flag.Parse()

	var logger *zap.Logger
	if *jsonLogs {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger, options{
		addr:        *addr,
		dbPath:      *dbPath,
		arxivURL:    *arxivURL,
		query:       fetch.Query{Search: *query, MaxResults: *maxResults, MaxAge: *maxAge},
		jwtSecret:   cfg.Dev.JWTSecret,
		origins:     cfg.Dev.AllowedOrigins,
		requireAuth: *requireAuth,
	}); err != nil {
		logger.Fatal("devserver failed", zap.Error(err))
	}
}

type options struct {
	addr        string
	dbPath      string
	arxivURL    string
	query       fetch.Query
	jwtSecret   string
	origins     []string
	requireAuth bool
}

func run(logger *zap.Logger, opts options) error {
	st, err := store.Open(opts.dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	srv, err := devserver.New(devserver.Options{
		Store:          st,
		Ingester:       fetch.NewFetcher(opts.arxivURL, 30*time.Second),
		Query:          opts.query,
		Logger:         logger,
		JWTSecret:      opts.jwtSecret,
		RequireAuth:    opts.requireAuth,
		AllowedOrigins: opts.origins,
	})
	if err != nil {
		return err
	}
	if err := srv.SeedDefaultUser(); err != nil {
		return fmt.Errorf("seed user: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("devserver listening",
		zap.String("addr", opts.addr),
		zap.String("db", opts.dbPath),
		zap.Bool("require_auth", opts.requireAuth),
	)
	return srv.ListenAndServe(ctx, opts.addr)
}
