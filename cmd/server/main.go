package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"wision/internal/catalog"
	"wision/internal/config"
	"wision/internal/handlers"
	"wision/internal/kvstore"
	"wision/internal/logging"
	"wision/internal/repository"
	"wision/internal/security"
	"wision/internal/service"
)

func main() {
	configPath := flag.String("config", os.Getenv("WISION_CONFIG"), "Path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Auth.JWTSecret == "change-me-in-production" {
		logger.Warn("auth.jwt_secret is the default value; set WISION_AUTH_JWT_SECRET")
	}

	store, closeStore, err := kvstore.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	data, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	challengeRepo := repository.NewChallengeRepository(store)

	catalogService := service.NewCatalogService(repository.NewCharacterRepository(store), data)
	characters, err := catalogService.Initialize(ctx)
	if err != nil {
		return err
	}
	logger.Info("catalog ready", zap.Int("characters", len(characters)))

	emailService, err := service.NewEmailService(ctx, service.EmailOptions{
		Region:     cfg.Email.Region,
		FromEmail:  cfg.Email.FromEmail,
		FromName:   cfg.Email.FromName,
		AppBaseURL: cfg.Email.AppBaseURL,
		Debug:      cfg.Email.Debug,
	}, logger.Named("email"))
	if err != nil {
		logger.Warn("email service unavailable, continuing without it", zap.Error(err))
		emailService = nil
	}

	challengeService := service.NewChallengeService(challengeRepo, catalogService)
	ledgerService := service.NewLedgerService(repository.NewProfileRepository(store))
	discoveryService := service.NewDiscoveryService(repository.NewDiscoveryRepository(store), catalogService, ledgerService)
	tokens := security.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := service.NewAuthService(repository.NewAccountRepository(store), ledgerService, tokens, emailService, logger.Named("auth"))

	limiter := security.NewRateLimiter(cfg.Auth.RateLimit, cfg.Auth.RateWindow)
	defer limiter.Stop()

	handler := handlers.NewRouter(cfg.Server.Prefix, handlers.Services{
		Catalog:     catalogService,
		Challenges:  challengeService,
		Ledger:      ledgerService,
		Submissions: service.NewSubmissionService(challengeRepo, challengeService, ledgerService),
		Discoveries: discoveryService,
		Leaderboard: service.NewLeaderboardService(ledgerService, discoveryService),
		Auth:        authService,
		StoreName:   store.Name(),
	}, handlers.NewMiddleware(authService, limiter, logger), logger.Named("http"))

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", server.Addr),
			zap.String("prefix", cfg.Server.Prefix),
			zap.String("store", store.Name()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
