package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/msomdec/devconnector/internal/config"
	"github.com/msomdec/devconnector/internal/domain"
	"github.com/msomdec/devconnector/internal/enrichment"
	"github.com/msomdec/devconnector/internal/handler"
	"github.com/msomdec/devconnector/internal/repository"
	"github.com/msomdec/devconnector/internal/repository/mongodb"
	"github.com/msomdec/devconnector/internal/repository/sqlite"
	"github.com/msomdec/devconnector/internal/service"
)

// Login and registration: bursts of 10, then one attempt every 6 seconds per IP.
const (
	authRate  = 1.0 / 6
	authBurst = 10
)

func main() {
	logOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	cfg, err := config.FromEnvironment()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, docs, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open database", "driver", cfg.DatabaseDriver, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database migrations applied", "driver", cfg.DatabaseDriver)

	store := repository.WithTimeout(docs, cfg.StoreTimeout)

	var repos domain.RepoFetcher = enrichment.NewGitHubClient(cfg.GitHubAPIURL, cfg.GitHubToken, cfg.GitHubTimeout, logger)
	if cfg.MemcacheURL != "" {
		repos = enrichment.NewCachedFetcher(repos, memcache.New(cfg.MemcacheURL), cfg.GitHubCacheTTL, logger)
		logger.Info("github repo cache enabled", "memcache", cfg.MemcacheURL, "ttl", cfg.GitHubCacheTTL)
	}

	authService := service.NewAuthService(store, cfg.JWTSecret, cfg.BCryptCost, logger)
	profileService := service.NewProfileService(store, repos, logger)
	postService := service.NewPostService(store, logger)
	limiter := service.NewTokenBucket(ctx, authRate, authBurst)
	metrics := handler.NewMetrics()

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, authService, profileService, postService, db, limiter, metrics, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           metrics.Middleware(handler.SecurityHeaders(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// openStore connects to the configured backend.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (domain.Database, domain.DocumentStore, error) {
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		db, err := sqlite.New(cfg.DatabasePath, logger)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Documents(), nil
	case config.DriverMongo:
		db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Documents(), nil
	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.DatabaseDriver)
	}
}
