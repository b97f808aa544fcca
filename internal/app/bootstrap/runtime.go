package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cacheadapter "github.com/kulltaa/masterCondo/internal/adapters/cache"
	httpadapter "github.com/kulltaa/masterCondo/internal/adapters/http"
	mailadapter "github.com/kulltaa/masterCondo/internal/adapters/mail"
	"github.com/kulltaa/masterCondo/internal/adapters/postgres"
	"github.com/kulltaa/masterCondo/internal/adapters/security"
	"github.com/kulltaa/masterCondo/internal/application"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	mailWorker *mailadapter.DeliveryWorker
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("bootstrapping user account service", "http_port", cfg.HTTPPort)

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := pool.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	sender, err := mailadapter.NewSESSender(ctx, mailadapter.SESConfig{
		Region:    cfg.MailerSESRegion,
		AccessKey: cfg.MailerSESAccessKey,
		SecretKey: cfg.MailerSESSecretKey,
		From:      cfg.MailerFrom,
	})
	if err != nil {
		_ = sqlDB.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init ses sender: %w", err)
	}

	repos := postgres.NewRepositories(pool)
	revocations := cacheadapter.NewRedisTokenRevocationStore(redisClient)

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			BaseURL:              cfg.BaseURL,
			AccessTokenTTL:       cfg.AccessTokenTTL,
			VerificationTokenTTL: cfg.VerificationTokenTTL,
			RecoveryTokenTTL:     cfg.RecoveryTokenTTL,
		},
		Accounts:           repos.Accounts,
		AccessTokens:       repos.AccessTokens,
		VerificationTokens: repos.VerificationTokens,
		RecoveryTokens:     repos.RecoveryTokens,
		Outbox:             repos.MailOutbox,
		Revocations:        revocations,
		Hasher:             security.NewBcryptHasher(cfg.BcryptCost),
	})

	handler := httpadapter.NewHandler(svc)
	router := httpadapter.NewRouter(handler)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	mailWorker := mailadapter.NewDeliveryWorker(
		logger,
		repos.MailOutbox,
		sender,
		cfg.OutboxPollInterval,
		cfg.OutboxBatchSize,
		cfg.OutboxClaimTTL,
		cfg.OutboxMaxRetries,
	)

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		mailWorker: mailWorker,
		cleanupFn: func(ctx context.Context) {
			_ = redisClient.Close()
			_ = sqlDB.Close()
		},
	}, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case err := <-errCh:
		r.logger.Error("server failure", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.cleanupFn(shutdownCtx)
	return nil
}

func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.logger.Info("mail delivery worker started")
	err := r.mailWorker.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.cleanupFn(shutdownCtx)
	return nil
}
