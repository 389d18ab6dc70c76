// Package main is the entry point of the shopapi backend.
//
// This file does the dependency injection wire-up:
//  1. load config
//  2. initialise the logger
//  3. open the database and apply migrations
//  4. build repositories, services, handlers (init_*.go)
//  5. register routes, wrap them in middleware and CORS
//  6. start the HTTP server
//  7. shut down gracefully on SIGINT/SIGTERM
//
// There are no globals beyond the logger; everything is created here and
// passed down.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/akinalp/shopapi/config"
	"github.com/akinalp/shopapi/database"
	"github.com/akinalp/shopapi/middleware"
	"github.com/akinalp/shopapi/pkg/logger"
)

func main() {
	// ─── 1. Config ───
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// ─── 2. Logger ───
	if err := logger.Init(&logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		ServiceName: serviceName,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	log := logger.Get().Named("main")
	log.Info("shopapi server starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("database", cfg.Database.Driver),
	)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	// ─── 3. Database ───
	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := openDatabase(startCtx, cfg)
	cancel()
	if err != nil {
		return err
	}
	defer db.Close()

	// ─── 4-5. Layers, routes, middleware ───
	handler, limiters, err := buildHandler(cfg, db)
	if err != nil {
		return err
	}
	defer limiters.Stop()

	// ─── 6. HTTP Server ───
	// WriteTimeout sits above the per-request deadline so a timed-out
	// request can still write its 503.
	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// ─── 7. Graceful Shutdown ───
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", cfg.Server.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-done:
	}

	log.Info("shutting down")

	// Stop accepting requests and let in-flight ones finish (5s budget).
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

// openDatabase connects to the configured driver and applies its migrations.
func openDatabase(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database.URL, database.PostgresMigrations())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		return db, nil
	default:
		db, err := database.New(cfg.Database.Path, database.SQLiteMigrations())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sqlite: %w", err)
		}
		return db, nil
	}
}

// buildHandler wires repositories, services and handlers onto a mux and wraps
// it in the middleware chain:
//
//	RequestID → Logger → Timeout → CORS → mux
//
// The caller owns the returned limiters and must Stop them.
func buildHandler(cfg *config.Config, db *database.DB) (http.Handler, *RateLimiters, error) {
	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	repos := initRepositories(db)

	svcs, limiters, err := initServices(repos, cfg)
	if err != nil {
		return nil, nil, err
	}

	h := initHandlers(svcs, limiters, db, cfg)

	mux := http.NewServeMux()
	initRoutes(mux, h, svcs.Tokens, repos.User, cfg.Upload.PublicPath)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader, "Retry-After"},
		AllowCredentials: true,
	})

	var handler http.Handler = corsHandler.Handler(mux)
	handler = middleware.Timeout(cfg.Server.RequestTimeout)(handler)
	handler = middleware.Logger(logger.Get().Named("http"), limiters.ClientIP)(handler)
	handler = middleware.RequestID(handler)

	return handler, limiters, nil
}
