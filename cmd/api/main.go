// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Storefront HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis when configured.
//  5. Run database migrations (idempotent).
//  6. Wire token signing, delivery and domain services.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/storefront/internal/api"
	"github.com/taibuivan/storefront/internal/catalog/product"
	"github.com/taibuivan/storefront/internal/platform/config"
	"github.com/taibuivan/storefront/internal/platform/constants"
	"github.com/taibuivan/storefront/internal/platform/metrics"
	"github.com/taibuivan/storefront/internal/platform/migration"
	"github.com/taibuivan/storefront/internal/platform/notify"
	pgstore "github.com/taibuivan/storefront/internal/platform/postgres"
	redisstore "github.com/taibuivan/storefront/internal/platform/redis"
	"github.com/taibuivan/storefront/internal/platform/sec"
	"github.com/taibuivan/storefront/internal/users/account"
	"github.com/taibuivan/storefront/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("[Storefront] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("credential_store", cfg.CredentialStore),
		slog.String("notifier", cfg.Notifier),
	)

	// Root context for startup. A deadline surfaces misconfiguration quickly.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Lives until shutdown; stops the rate limiter sweepers.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis (optional) ───────────────────────────────────────────────
	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		rdb, err = redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()
	}

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Token Signing & Delivery ───────────────────────────────────────
	signer, err := newSigner(cfg)
	must(log, err, "initialize token signer")
	log.Info("token_signer_ready", slog.String("alg", signer.Algorithm()))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	healthDeps := api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
	}
	if rdb != nil {
		healthDeps.CheckCache = func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }
	}
	liveness, readiness := api.NewHealthHandlers(healthDeps, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)

	var credentials auth.CredentialStore = auth.NewCredentialStore(pool)
	if cfg.CredentialStore == config.CredentialStoreRedis {
		credentials = auth.NewRedisCredentialStore(rdb)
	}

	dispatcher, err := newDispatcher(cfg, log)
	must(log, err, "initialize notifier")

	authService := auth.NewService(
		userRepository,
		credentials,
		auth.NewIssuer(signer, credentials, tokenPolicy(cfg)),
		auth.NewVerifier(signer, credentials),
		dispatcher,
		log,
		auth.WithFlowRecorder(collector),
	)
	accountService := account.NewService(account.NewRepository(pool), log)
	productService := product.NewService(product.NewRepository(pool), log)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Metrics:   metrics.Handler(registry),
		Auth:      auth.NewHandler(authService),
		Account:   account.NewHandler(accountService),
		Product:   product.NewHandler(productService),
	}

	server := api.NewServer(appCtx, cfg, log, api.Dependencies{Verifier: authService, Recorder: collector}, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// newLogger builds the JSON logger tagged with the application name.
func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// newSigner picks RS256 when a key pair is configured, HS256 otherwise.
func newSigner(cfg *config.Config) (*sec.TokenService, error) {
	if cfg.UsesRSAKeys() {
		return sec.NewRSATokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, cfg.JWTIssuer)
	}
	return sec.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer)
}

func tokenPolicy(cfg *config.Config) auth.TokenPolicy {
	return auth.TokenPolicy{
		Access:                       cfg.AccessTTL(),
		Refresh:                      cfg.RefreshTTL(),
		VerifyMobileNumber:           cfg.VerifyMobileNumberTTL(),
		VerifyEmail:                  cfg.VerifyEmailTTL(),
		ResetPasswordViaMobileNumber: cfg.ResetPasswordViaMobileNumberTTL(),
		ResetPasswordViaEmail:        cfg.ResetPasswordViaEmailTTL(),
	}
}

// newDispatcher sends through Kavenegar and SMTP in live mode and writes
// messages to the log otherwise.
func newDispatcher(cfg *config.Config, log *slog.Logger) (*notify.Dispatcher, error) {
	if cfg.Notifier != config.NotifierLive {
		transport := notify.NewLogTransport(log)
		return notify.NewDispatcher(transport, transport, cfg.AppBaseURL), nil
	}

	sms, err := notify.NewKavenegarClient(cfg.KavenegarAPIKey, cfg.KavenegarVerifyTemplate)
	if err != nil {
		return nil, err
	}
	mailer := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     cfg.EmailHost,
		Port:     cfg.EmailPort,
		Username: cfg.EmailUsername,
		Password: cfg.EmailPassword,
		From:     cfg.EmailFrom,
	})
	return notify.NewDispatcher(sms, mailer, cfg.AppBaseURL), nil
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
