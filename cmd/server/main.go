package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/creditledger/internal/adapter/http"
	"github.com/iho/creditledger/internal/adapter/http/handler"
	"github.com/iho/creditledger/internal/adapter/http/middleware"
	"github.com/iho/creditledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/creditledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/creditledger/internal/adapter/repository/redis"
	"github.com/iho/creditledger/internal/infrastructure/config"
	"github.com/iho/creditledger/internal/infrastructure/eventpublisher"
	"github.com/iho/creditledger/internal/infrastructure/logger"
	"github.com/iho/creditledger/internal/infrastructure/metrics"
	"github.com/iho/creditledger/internal/infrastructure/postgres"
	"github.com/iho/creditledger/internal/infrastructure/redis"
	"github.com/iho/creditledger/internal/usecase"
)

const rateLimitEvictInterval = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

// storage is one wired store driver.
type storage struct {
	txManager usecase.TransactionManager
	accounts  usecase.AccountRepository
	records   usecase.TransactionRepository
	outbox    usecase.OutboxRepository
	ledger    usecase.LedgerRepository
	pinger    handler.Pinger
	poolStats func() metrics.PoolStats
	close     func()
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return memoryStorage(memory.NewStore(memory.DefaultSeed()...)), nil
	case config.DriverPostgres:
		return postgresStorage(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func memoryStorage(store *memory.Store) *storage {
	return &storage{
		txManager: memory.NewTxManager(store),
		accounts:  memory.NewAccountRepository(store),
		records:   memory.NewTransactionRepository(store),
		outbox:    memory.NewOutboxRepository(store),
		ledger:    memory.NewLedgerRepository(store),
		pinger:    store,
		close:     func() {},
	}
}

func postgresStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	if cfg.MigrateOnStart {
		if err := postgres.RunMigrations(cfg.DatabaseURL, log); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseConnectTimeout,
		Logger:         log,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	log.Info().Int("max_conns", cfg.DatabaseMaxConns).Msg("connected to postgres")

	return &storage{
		txManager: postgresRepo.NewTxManager(pool, cfg.DatabaseLockTimeout),
		accounts:  postgresRepo.NewAccountRepository(pool),
		records:   postgresRepo.NewTransactionRepository(pool),
		outbox:    postgresRepo.NewOutboxRepository(pool),
		ledger:    postgresRepo.NewLedgerRepository(pool),
		pinger:    pool,
		poolStats: func() metrics.PoolStats {
			s := pool.Stat()
			return metrics.PoolStats{
				Acquired: s.AcquiredConns(),
				Idle:     s.IdleConns(),
				Max:      s.MaxConns(),
			}
		},
		close: pool.Close,
	}, nil
}

// newPublisher ships outbox events to Kafka when brokers are configured and
// to the log otherwise.
func newPublisher(cfg *config.Config, log zerolog.Logger) (eventpublisher.Publisher, func() error) {
	if !cfg.KafkaEnabled() {
		return eventpublisher.NewLogPublisher(log), func() error { return nil }
	}

	p := eventpublisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	return p, p.Close
}

func newServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      h,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	if store.poolStats != nil {
		m.RegisterPoolStats(store.poolStats)
	}

	idGen := postgresRepo.NewULIDGenerator()
	opts := []usecase.Option{
		usecase.WithLogger(log),
		usecase.WithMetrics(m),
		usecase.WithTimeout(cfg.LedgerScopeTimeout),
	}
	transactions := usecase.NewTransactionUseCase(store.txManager, store.accounts, store.records, store.outbox, idGen, opts...)
	statements := usecase.NewStatementUseCase(store.txManager, store.accounts, store.records, opts...)
	ledger := usecase.NewLedgerUseCase(store.ledger)

	deps := []handler.Dependency{{Name: cfg.StorageDriver, Pinger: store.pinger}}

	var idempotency *middleware.IdempotencyMiddleware
	if cfg.IdempotencyEnabled {
		client, err := redis.NewClient(ctx, cfg.RedisURL, cfg.DatabaseConnectTimeout)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer client.Close()
		log.Info().Msg("connected to redis")

		idemStore := redisRepo.NewIdempotencyStore(client)
		idempotency = middleware.NewIdempotencyMiddleware(idemStore, cfg.IdempotencyTTL, log).
			CountReplays(m.IdempotencyReplays)
		deps = append(deps, handler.Dependency{Name: "redis", Pinger: idemStore})
	}

	workers, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	var wg sync.WaitGroup

	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		wg.Add(1)
		go func() {
			defer wg.Done()
			limiter.Run(workers, rateLimitEvictInterval)
		}()
	}

	publisher, closePublisher := newPublisher(cfg, log)
	outbox := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: store.outbox,
		Publisher:  publisher,
		Logger:     log,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
		Published:  m.OutboxPublished,
		Failed:     m.OutboxErrors,
	})
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = outbox.Start(workers)
	}()

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler: handler.NewAccountHandler(transactions, statements),
		HealthHandler:  handler.NewHealthHandler(deps...),
		LedgerHandler:  handler.NewLedgerHandler(ledger),
		Logger:         log,
		Metrics:        middleware.NewHTTPMetrics(reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		RateLimiter:    limiter,
		Idempotency:    idempotency,
		Throttle: httpAdapter.ThrottleConfig{
			MaxInFlight:    cfg.HTTPMaxInFlight,
			MaxBacklog:     cfg.HTTPMaxBacklog,
			BacklogTimeout: cfg.HTTPBacklogTimeout,
		},
	})

	server := newServer(cfg, router)

	serveErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.HTTPPort).
			Str("storage", cfg.StorageDriver).
			Bool("idempotency", cfg.IdempotencyEnabled).
			Bool("kafka", cfg.KafkaEnabled()).
			Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	shutdownErr := server.Shutdown(shutdownCtx)

	// drain workers after the last request has committed
	cancelWorkers()
	wg.Wait()
	if err := closePublisher(); err != nil {
		log.Warn().Err(err).Msg("failed to close publisher")
	}

	if shutdownErr != nil {
		return fmt.Errorf("server forced to shutdown: %w", shutdownErr)
	}

	log.Info().Msg("server stopped")
	return nil
}
