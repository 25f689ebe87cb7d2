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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/ourllet/internal/adapter/http"
	"github.com/iho/ourllet/internal/adapter/http/handler"
	"github.com/iho/ourllet/internal/adapter/http/middleware"
	memoryRepo "github.com/iho/ourllet/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/ourllet/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/ourllet/internal/adapter/repository/redis"
	"github.com/iho/ourllet/internal/infrastructure/auth"
	"github.com/iho/ourllet/internal/infrastructure/config"
	"github.com/iho/ourllet/internal/infrastructure/logger"
	"github.com/iho/ourllet/internal/infrastructure/mailer"
	"github.com/iho/ourllet/internal/infrastructure/metrics"
	"github.com/iho/ourllet/internal/infrastructure/postgres"
	"github.com/iho/ourllet/internal/infrastructure/redis"
	"github.com/iho/ourllet/internal/usecase"
)

const (
	ledgerCodeLength       = 6
	verificationCodeLength = 6
	rateLimitIdle          = 10 * time.Minute
)

func main() {
	// A missing .env file is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	zerolog.DefaultContextLogger = &log

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			return err
		}
	}

	// Connect to Redis when configured
	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")
	}

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	fixedRepo := postgresRepo.NewFixedEntryRepository(pool)
	retrier := postgresRepo.NewRetrier().WithLogger(log)
	idGen := postgresRepo.NewULIDGenerator()

	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration, cfg.SignupTokenExpiration)

	// Use cases
	ledgerUC := usecase.NewLedgerUseCase(txManager, ledgerRepo, postgresRepo.NewDigitCodeGenerator(ledgerCodeLength), retrier).
		WithMetrics(m)
	entryUC := usecase.NewEntryUseCase(entryRepo, ledgerUC, idGen).WithMetrics(m)
	fixedUC := usecase.NewFixedEntryUseCase(fixedRepo, ledgerUC, idGen)
	settlementUC := usecase.NewSettlementUseCase(entryRepo, fixedRepo).WithMetrics(m)
	authUC := usecase.NewAuthUseCase(usecase.AuthDeps{
		TxManager:       txManager,
		UserRepo:        userRepo,
		Ledgers:         ledgerUC,
		Store:           newVerificationStore(cfg, redisClient),
		Mailer:          newMailer(cfg, log),
		CodeGenerator:   postgresRepo.NewDigitCodeGenerator(verificationCodeLength),
		Tokens:          tokens,
		Google:          auth.NewGoogleVerifier(cfg.GoogleClientID),
		IDGenerator:     idGen,
		CodeTTL:         cfg.VerificationCodeTTL,
		MetricsRecorder: m,
	})

	// Handlers
	var (
		redisPinger      handler.Pinger
		idempotencyStore usecase.IdempotencyStore
	)
	if redisClient != nil {
		redisPinger = redis.NewPinger(redisClient)
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithHitCounter(m.RateLimitHits)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AuthHandler:        handler.NewAuthHandler(authUC, newGoogleOAuth(cfg), cfg.FrontendURL),
		EntryHandler:       handler.NewEntryHandler(entryUC),
		FixedEntryHandler:  handler.NewFixedEntryHandler(fixedUC),
		LedgerHandler:      handler.NewLedgerHandler(ledgerUC),
		SettlementHandler:  handler.NewSettlementHandler(settlementUC),
		HealthHandler:      handler.NewHealthHandler(pool, redisPinger),
		Sessions:           tokens,
		Users:              authUC,
		Membership:         ledgerUC,
		IdempotencyStore:   idempotencyStore,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		RateLimiter:        rateLimiter,
		Metrics:            m,
		MetricsGatherer:    registry,
		Logger:             log,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	server := &http.Server{
		Addr:         serverAddr(cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rateLimiter.RunCleanup(gctx, time.Minute, rateLimitIdle)
		return nil
	})

	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info().Msg("server stopped")
	return nil
}

func serverAddr(port string) string {
	return fmt.Sprintf(":%s", port)
}

func newVerificationStore(cfg *config.Config, client *goredis.Client) usecase.VerificationStore {
	if cfg.VerificationStore == config.VerificationStoreRedis && client != nil {
		return redisRepo.NewVerificationStore(client)
	}
	return memoryRepo.NewVerificationStore()
}

func newMailer(cfg *config.Config, log zerolog.Logger) usecase.Mailer {
	if !cfg.SMTPEnabled() {
		return mailer.NewLogMailer(log)
	}
	return mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.SMTPFrom,
		Secure:   cfg.SMTPSecure,
	}, cfg.VerificationCodeTTL)
}

// newGoogleOAuth returns nil when the redirect flow is not configured.
func newGoogleOAuth(cfg *config.Config) usecase.GoogleOAuth {
	if !cfg.GoogleEnabled() || cfg.GoogleClientSecret == "" || cfg.GoogleRedirectURL == "" {
		return nil
	}
	return auth.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
}
