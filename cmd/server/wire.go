package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/moazalc/autostacks-app-sub000/internal/adapter/http"
	"github.com/moazalc/autostacks-app-sub000/internal/adapter/http/handler"
	"github.com/moazalc/autostacks-app-sub000/internal/adapter/http/middleware"
	"github.com/moazalc/autostacks-app-sub000/internal/adapter/lock"
	memoryRepo "github.com/moazalc/autostacks-app-sub000/internal/adapter/repository/memory"
	postgresRepo "github.com/moazalc/autostacks-app-sub000/internal/adapter/repository/postgres"
	redisRepo "github.com/moazalc/autostacks-app-sub000/internal/adapter/repository/redis"
	"github.com/moazalc/autostacks-app-sub000/internal/infrastructure/config"
	"github.com/moazalc/autostacks-app-sub000/internal/infrastructure/eventpublisher"
	"github.com/moazalc/autostacks-app-sub000/internal/infrastructure/metrics"
	"github.com/moazalc/autostacks-app-sub000/internal/infrastructure/postgres"
	"github.com/moazalc/autostacks-app-sub000/internal/infrastructure/reconciler"
	"github.com/moazalc/autostacks-app-sub000/internal/infrastructure/redis"
	"github.com/moazalc/autostacks-app-sub000/internal/usecase"
)

// storage is the set of repositories behind one driver.
type storage struct {
	txManager   usecase.TransactionManager
	accountRepo usecase.AccountRepository
	carRepo     usecase.CarRepository
	entryRepo   usecase.EntryRepository
	balanceRepo usecase.BalanceRepository
	ledgerRepo  usecase.LedgerRepository
	outboxRepo  usecase.OutboxRepository
}

// app is the fully wired server.
type app struct {
	handler   http.Handler
	limiter   *middleware.RateLimiter
	publisher *eventpublisher.EventPublisher
	worker    *reconciler.Worker
	// outbox is the storage-backed event table, whether or not use cases write to it.
	outbox  usecase.OutboxRepository
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// buildApp connects to the configured backends and wires every component.
// reg receives the engine metrics; the HTTP metrics stay on the default registry.
func buildApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger, reg *prometheus.Registry) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	checks := map[string]handler.Pinger{}

	var store storage
	switch cfg.StorageDriver {
	case config.StorageMemory:
		store = newMemoryStorage()
		logger.Warn().Msg("using in-memory storage, data is lost on restart")
	default:
		if cfg.MigrateOnStart {
			if err := postgres.RunMigrations(cfg.DatabaseURL, logger); err != nil {
				return nil, err
			}
		}
		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConns:       cfg.DatabaseMaxConns,
			MinConns:       cfg.DatabaseMinConns,
			ConnectTimeout: cfg.DatabaseTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		logger.Info().Msg("connected to postgres")

		store = newPostgresStorage(pool)
		checks["postgres"] = handler.PingerFunc(pool.Ping)
	}

	var redisClient *goredis.Client
	if cfg.RedisEnabled {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = redisClient.Close() })
		logger.Info().Msg("connected to redis")
		checks["redis"] = handler.PingerFunc(redis.Pinger(redisClient))
	}

	var idempotencyStore usecase.IdempotencyStore = memoryRepo.NewIdempotencyStore()
	accountRepo := store.accountRepo
	if redisClient != nil {
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		accountRepo = redisRepo.NewCachedAccountRepository(accountRepo, redisRepo.NewCache(redisClient), cfg.AccountCacheTTL, logger)
	}

	var locker usecase.AccountLocker = usecase.NopLocker{}
	switch cfg.LockDriver {
	case config.LockLocal:
		locker = lock.NewLocalLocker()
	case config.LockRedis:
		if redisClient == nil {
			return nil, errors.New("redis lock driver requires redis")
		}
		opts := lock.DefaultOptions()
		opts.Expiry = cfg.LockExpiry
		opts.Tries = cfg.LockTries
		locker = lock.NewRedisLocker(redisClient, opts, logger)
	}

	m := metrics.New(reg)
	retrier := postgresRepo.NewRetrier(
		postgresRepo.WithMaxRetries(int(cfg.RetryMaxAttempts)-1),
		postgresRepo.WithRetryLogger(logger),
	)
	idGen := postgresRepo.NewULIDGenerator()

	a.outbox = store.outboxRepo
	events := store.outboxRepo
	if !cfg.OutboxEnabled {
		events = postgresRepo.NewNullOutboxRepository()
	}

	accountUC := usecase.NewAccountUseCase(store.txManager, accountRepo, store.balanceRepo, events, idGen)
	entryUC := usecase.NewEntryUseCase(
		store.txManager,
		store.entryRepo,
		accountRepo,
		store.carRepo,
		events,
		usecase.NewBalanceMaintainer(store.balanceRepo),
		idGen,
		usecase.WithRetrier(retrier),
		usecase.WithAccountLocker(locker),
		usecase.WithMetrics(m),
		usecase.WithLogger(logger),
	)
	ledgerUC := usecase.NewLedgerUseCase(accountRepo, store.entryRepo)
	reconcileUC := usecase.NewReconciliationUseCase(accountRepo, store.ledgerRepo, m, logger)

	if cfg.RateLimitRPS > 0 {
		a.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	a.handler = httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:        handler.NewAccountHandler(accountUC),
		EntryHandler:          handler.NewEntryHandler(entryUC),
		LedgerHandler:         handler.NewLedgerHandler(ledgerUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconcileUC),
		HealthHandler:         handler.NewHealthHandler(checks),
		IdempotencyStore:      idempotencyStore,
		IdempotencyTTL:        cfg.IdempotencyTTL,
		RateLimiter:           a.limiter,
		MetricsHandler: promhttp.HandlerFor(
			prometheus.Gatherers{reg, prometheus.DefaultGatherer},
			promhttp.HandlerOpts{},
		),
		Logger: &logger,
	})

	if cfg.OutboxEnabled {
		var pub eventpublisher.Publisher = eventpublisher.NewLogPublisher(logger)
		if len(cfg.KafkaBrokers) > 0 {
			kafkaPub := eventpublisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
			a.closers = append(a.closers, func() {
				if err := kafkaPub.Close(); err != nil {
					logger.Error().Err(err).Msg("failed to close kafka writer")
				}
			})
			pub = eventpublisher.NewBreakerPublisher(kafkaPub, eventpublisher.DefaultBreakerConfig(), logger)
		}
		a.publisher = eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: a.outbox,
			Publisher:  pub,
			Recorder:   m,
			Logger:     logger,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxInterval,
			Retention:  cfg.OutboxRetention,
		})
	}

	if cfg.ReconcileInterval > 0 {
		a.worker = reconciler.NewWorker(reconcileUC, cfg.ReconcileInterval, logger)
	}

	return a, nil
}

func newMemoryStorage() storage {
	s := memoryRepo.NewStore()
	return storage{
		txManager:   memoryRepo.NewTxManager(s),
		accountRepo: memoryRepo.NewAccountRepository(s),
		carRepo:     memoryRepo.NewCarRepository(s),
		entryRepo:   memoryRepo.NewEntryRepository(s),
		balanceRepo: memoryRepo.NewBalanceRepository(s),
		ledgerRepo:  memoryRepo.NewLedgerRepository(s),
		outboxRepo:  memoryRepo.NewOutboxRepository(s),
	}
}

func newPostgresStorage(pool *pgxpool.Pool) storage {
	return storage{
		txManager:   postgresRepo.NewTxManager(pool),
		accountRepo: postgresRepo.NewAccountRepository(pool),
		carRepo:     postgresRepo.NewCarRepository(pool),
		entryRepo:   postgresRepo.NewEntryRepository(pool),
		balanceRepo: postgresRepo.NewBalanceRepository(pool),
		ledgerRepo:  postgresRepo.NewLedgerRepository(pool),
		outboxRepo:  postgresRepo.NewOutboxRepository(pool),
	}
}
