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

	cacheadapter "github.com/forgecloud/identity-service/internal/adapters/cache"
	httpadapter "github.com/forgecloud/identity-service/internal/adapters/http"
	mailadapter "github.com/forgecloud/identity-service/internal/adapters/mail"
	"github.com/forgecloud/identity-service/internal/adapters/postgres"
	"github.com/forgecloud/identity-service/internal/adapters/security"
	"github.com/forgecloud/identity-service/internal/application"
	"github.com/forgecloud/identity-service/internal/ports"
)

// Runtime owns the wired service and its HTTP server lifecycle.
type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	cleanupFn  func(context.Context)
}

// NewRuntime loads configuration, connects the stores, and wires the
// application service behind the HTTP adapter.
func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("bootstrapping identity service", "http_port", cfg.HTTPPort)

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, 20)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}

	if err := postgres.RunMigrations(ctx, db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	// Redis only backs endpoint rate limiting; without it the service still
	// runs, it just stops throttling signup and reset traffic.
	var limiter ports.RateLimitStore
	cleanup := func(context.Context) { _ = sqlDB.Close() }
	if cfg.RedisURL != "" {
		redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
		if err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		limiter = cacheadapter.NewRedisRateLimitStore(redisClient)
		cleanup = func(context.Context) {
			_ = redisClient.Close()
			_ = sqlDB.Close()
		}
	} else {
		logger.Warn("redis url not configured, endpoint rate limiting disabled")
	}

	tokens, err := security.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL, cfg.PurposeTokenTTL)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("init token issuer: %w", err)
	}

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			OTPTTL:                  cfg.OTPTTL,
			SessionTTL:              cfg.SessionTTL,
			PurposeTokenTTL:         cfg.PurposeTokenTTL,
			LockoutThreshold:        cfg.LockoutThreshold,
			LockoutDuration:         cfg.LockoutDuration,
			DefaultAPIRequestLimit:  cfg.DefaultAPIRequestLimit,
			SignupRateLimitPerIP:    cfg.SignupRateLimitPerIP,
			SignupRateLimitPerEmail: cfg.SignupRateLimitPerEmail,
			ResetRateLimitPerIP:     cfg.ResetRateLimitPerIP,
			ResetRateLimitPerEmail:  cfg.ResetRateLimitPerEmail,
			RateLimitWindow:         cfg.RateLimitWindow,
		},
		Accounts: postgres.NewAccountRepository(db),
		Attempts: postgres.NewLoginAttemptRepository(db),
		Limiter:  limiter,
		Mailer: mailadapter.NewSMTPDispatcher(mailadapter.Config{
			Addr:     cfg.SMTPAddr,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		}),
		Hasher: security.NewBcryptHasher(cfg.BcryptCost),
		Tokens: tokens,
	})

	handler := httpadapter.NewHandler(svc)
	router := httpadapter.NewRouter(handler)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		cleanupFn:  cleanup,
	}, nil
}

// Run serves HTTP until the context is cancelled or a signal arrives, then
// shuts down gracefully.
func (r *Runtime) Run(ctx context.Context) error {
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
