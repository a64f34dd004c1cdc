package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eco_city/internal/api"
	"eco_city/internal/app/service"
	"eco_city/internal/common/security"
	"eco_city/internal/domain/repository"
	"eco_city/internal/platform/cache"
	"eco_city/internal/platform/config"
	"eco_city/internal/platform/database"
	"eco_city/internal/platform/logging"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	// 2. Initialize Database
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}
	logger.Info("database connected and migrated")

	// 3. Initialize Redis
	rdb, err := cache.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer rdb.Close()
	logger.Info("redis connected", "addr", cfg.RedisAddr)

	// 4. Initialize Repositories
	accountRepo := repository.NewPgAccountRepository(db)
	ideaRepo := repository.NewPgIdeaRepository(db)

	// 5. Initialize Services
	tokens := security.NewTokenIssuer(cfg.JWTKey, cfg.JWTExp)
	revoker := security.NewRevoker(rdb)
	statsCache := cache.NewStatsCache(rdb, cfg.StatsCacheTTL)

	authService := service.NewAuthService(accountRepo, tokens, revoker, cfg.DefaultCity, logger)
	ideaService := service.NewIdeaService(ideaRepo, statsCache, logger)
	statsService := service.NewStatsService(accountRepo, ideaRepo, statsCache, logger)

	// 6. Initialize Router & HTTP Server
	router := api.NewRouter(api.Dependencies{
		Config:       cfg,
		Logger:       logger,
		Tokens:       tokens,
		Revocations:  revoker,
		AuthService:  authService,
		IdeaService:  ideaService,
		StatsService: statsService,
	})

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 7. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-stop:
	}

	logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped gracefully")
	return nil
}
