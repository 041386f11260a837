package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/danielolamide0/WurldMarket-sub001/internal/core/port"
	"github.com/danielolamide0/WurldMarket-sub001/internal/infra/config"
	"github.com/danielolamide0/WurldMarket-sub001/internal/infra/database"
	kafkainfra "github.com/danielolamide0/WurldMarket-sub001/internal/infra/kafka"
	"github.com/danielolamide0/WurldMarket-sub001/internal/infra/logger"
	"github.com/danielolamide0/WurldMarket-sub001/internal/infra/notification"
	redisinfra "github.com/danielolamide0/WurldMarket-sub001/internal/infra/redis"
	"github.com/danielolamide0/WurldMarket-sub001/internal/infra/security"
	"github.com/danielolamide0/WurldMarket-sub001/internal/infra/telemetry"
	postgresrepo "github.com/danielolamide0/WurldMarket-sub001/internal/repository/postgres"
	redisrepo "github.com/danielolamide0/WurldMarket-sub001/internal/repository/redis"
	"github.com/danielolamide0/WurldMarket-sub001/internal/transport/http/middleware"
	"github.com/danielolamide0/WurldMarket-sub001/internal/transport/http/routes"
	"github.com/danielolamide0/WurldMarket-sub001/internal/usecase"
)

type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
	tracer   *telemetry.TracerProvider
	janitor  *usecase.VerificationJanitor
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	tracer, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	if cfg.Postgres.AutoMigrate {
		if err := database.Migrate(ctx, pool, log); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
	}

	argonCfg := security.Argon2ConfigFromParams(port.Argon2Params{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	})
	if err := security.ConfigureArgon2(argonCfg); err != nil {
		pool.Close()
		return nil, fmt.Errorf("configure argon2: %w", err)
	}

	hasher, err := security.NewCredentialHasher(
		security.WithAlgorithm(cfg.Password.Algorithm),
		security.WithBcryptCost(cfg.Password.BcryptCost),
	)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init credential hasher: %w", err)
	}

	passwordPolicy := security.NewPasswordPolicy(security.PasswordPolicyOptions{
		MinLength:           cfg.Password.MinLength,
		MinCharacterClasses: cfg.Password.MinCharacterClasses,
		MinStrengthScore:    cfg.Password.MinStrengthScore,
	})

	redisClient, err := redisinfra.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: cfg.Redis.RateLimitPrefix,
		TTL:       rateLimitWindow * 2,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	var (
		eventPublisher port.EventPublisher
		producer       *kafkainfra.Producer
	)
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	authMetrics, err := telemetry.NewAuthMetrics(telemetry.AuthMetricsOptions{Registerer: prometheus.DefaultRegisterer})
	if err != nil {
		_ = redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init auth metrics: %w", err)
	}
	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{Registerer: prometheus.DefaultRegisterer})
	if err != nil {
		_ = redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	store := postgresrepo.NewStore(pool, log)
	sender := notification.NewCodeSender(cfg.SMTP, log)

	ledger := usecase.NewVerificationLedger(store, sender, usecase.LedgerOptions{
		CodeTTL:        cfg.Verification.CodeTTL,
		ResendCooldown: cfg.Verification.ResendCooldown,
		RetentionGrace: cfg.Verification.RetentionGrace,
	})
	ledger.WithLogger(log)
	ledger.WithMetrics(authMetrics)

	resolver := usecase.NewAccountResolver(store, hasher)
	resolver.WithLogger(log)
	resolver.WithEvents(eventPublisher)
	resolver.WithMetrics(authMetrics)

	authService := usecase.NewAuthService(store, ledger, resolver, hasher, passwordPolicy)
	authService.WithLogger(log)
	authService.WithEvents(eventPublisher)

	accountService := usecase.NewAccountService(store, ledger, resolver, hasher, passwordPolicy)
	accountService.WithLogger(log)
	accountService.WithEvents(eventPublisher)

	deps := routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		HTTPMetrics: httpMetrics,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Auth:     authService,
			Accounts: accountService,
		},
	}
	if tracer != nil {
		deps.TracerProvider = tracer.Provider()
	}

	return &Application{
		cfg:      cfg,
		engine:   routes.Register(deps),
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		producer: producer,
		tracer:   tracer,
		janitor:  usecase.NewVerificationJanitor(ledger, cfg.Verification.JanitorInterval, log),
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.producer != nil {
			if err := a.producer.Close(); err != nil {
				a.logger.Warn("kafka producer close failed", zap.Error(err))
			}
		}
	}()
	defer func() {
		if err := a.tracer.Shutdown(context.Background()); err != nil {
			a.logger.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.janitor.Run(janitorCtx)
	}()
	defer func() {
		stopJanitor()
		wg.Wait()
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting marketplace auth API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
