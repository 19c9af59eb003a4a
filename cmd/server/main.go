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

	"github.com/cruxstack/oauth-waitlist/internal/config"
	"github.com/cruxstack/oauth-waitlist/internal/handler"
	appMiddleware "github.com/cruxstack/oauth-waitlist/internal/middleware"
	"github.com/cruxstack/oauth-waitlist/internal/provider"
	"github.com/cruxstack/oauth-waitlist/internal/service"
	"github.com/cruxstack/oauth-waitlist/internal/store"
	"github.com/cruxstack/oauth-waitlist/internal/waitlist"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	cfg.LogConfig(logger)

	// Identity provider client
	p, err := provider.NewTwitterProvider(provider.Config{
		ClientID:     cfg.ProviderClientID,
		ClientSecret: cfg.ProviderClientSecret,
		CallbackURL:  cfg.CallbackURL(),
		AuthURL:      cfg.ProviderAuthURL,
		TokenURL:     cfg.ProviderTokenURL,
		UserURL:      cfg.ProviderUserURL,
		Scopes:       cfg.ProviderScopes,
		PKCE:         cfg.PKCEEnabled,
	})
	if err != nil {
		return fmt.Errorf("creating provider: %w", err)
	}

	// Waitlist store (Postgres)
	ctx := context.Background()
	waitlistStore, err := waitlist.NewPostgresStore(ctx, &waitlist.PostgresConfig{
		URL:         cfg.DatabaseURL,
		InsecureTLS: cfg.Production(),
	})
	if err != nil {
		return fmt.Errorf("creating waitlist store: %w", err)
	}
	defer waitlistStore.Close()

	// Attempt store (Redis or in-memory)
	var attemptStore store.AttemptStore
	if cfg.AttemptRedisStoreEnabled && cfg.RedisEnabled {
		logger.Info("using Redis attempt store")
		redisStore, err := store.NewRedisAttemptStore(&store.RedisConfig{
			Host:   cfg.RedisHost,
			Port:   cfg.RedisPort,
			Proto:  cfg.RedisProto,
			Pass:   cfg.RedisPass,
			DB:     cfg.RedisDB,
			Prefix: cfg.AttemptRedisStorePrefix,
		})
		if err != nil {
			return fmt.Errorf("creating Redis attempt store: %w", err)
		}
		defer redisStore.Close()
		attemptStore = redisStore
	} else {
		logger.Info("using in-memory attempt store")
		memStore := store.NewMemoryAttemptStore()
		defer memStore.Close()
		attemptStore = memStore
	}

	// CSRF state signing
	stateService, err := service.NewStateService(cfg.SessionSecret, time.Duration(cfg.StateTTLSecs)*time.Second)
	if err != nil {
		return fmt.Errorf("creating state service: %w", err)
	}

	// Initialize handlers and router
	handlers := handler.NewHandlers(cfg, p, stateService, attemptStore, waitlistStore, logger)
	sessionStore := appMiddleware.NewSessionStore(cfg.SessionSecret, cfg.Production())
	r := handler.NewRouter(handlers, sessionStore, logger)

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}

		close(done)
	}()

	logger.Info("starting server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("server stopped")

	return nil
}
