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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iho/leaveledger/internal/adapter/directory"
	httpAdapter "github.com/iho/leaveledger/internal/adapter/http"
	"github.com/iho/leaveledger/internal/adapter/http/handler"
	"github.com/iho/leaveledger/internal/adapter/http/middleware"
	"github.com/iho/leaveledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/leaveledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/leaveledger/internal/adapter/repository/redis"
	"github.com/iho/leaveledger/internal/app"
	"github.com/iho/leaveledger/internal/infrastructure/auth"
	"github.com/iho/leaveledger/internal/infrastructure/config"
	"github.com/iho/leaveledger/internal/infrastructure/eventpublisher"
	"github.com/iho/leaveledger/internal/infrastructure/logger"
	"github.com/iho/leaveledger/internal/infrastructure/metrics"
	"github.com/iho/leaveledger/internal/infrastructure/postgres"
	"github.com/iho/leaveledger/internal/infrastructure/redis"
	"github.com/iho/leaveledger/internal/infrastructure/seed"
	"github.com/iho/leaveledger/internal/infrastructure/sweeper"
	"github.com/iho/leaveledger/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	// logger.FromContext falls back to this outside request scope.
	zerolog.DefaultContextLogger = &log

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

// storage is an opened storage backend.
type storage struct {
	repos  app.Repositories
	writer seed.Writer
	pool   *pgxpool.Pool
	close  func()
}

// openStorage connects to the configured backend. Postgres is migrated
// before use.
func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	if cfg.StorageDriver == config.StorageMemory {
		store := memory.NewStore()
		log.Warn().Msg("using in-memory storage; data is lost on restart")
		return &storage{repos: app.NewMemoryRepositories(store), writer: store, close: func() {}}, nil
	}

	if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, log).Up(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,

		StatementTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	log.Info().Msg("connected to postgres")

	return &storage{
		repos:  app.NewPostgresRepositories(pool, postgresRepo.WithLockTimeout(cfg.DatabaseLockTimeout)),
		writer: postgresRepo.NewConfigWriter(pool),
		pool:   pool,
		close:  pool.Close,
	}, nil
}

// seedFrom loads the configuration document at path, if any.
func seedFrom(ctx context.Context, path string, w seed.Writer, log zerolog.Logger) error {
	if path == "" {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	if err := seed.Load(ctx, f, w); err != nil {
		return fmt.Errorf("seed %s: %w", path, err)
	}
	log.Info().Str("file", path).Msg("configuration seeded")
	return nil
}

// connectRedis returns nil when Redis is not configured or unreachable; the
// server then runs without idempotency, caching and pub/sub.
func connectRedis(ctx context.Context, url string, log zerolog.Logger) *goredis.Client {
	if url == "" {
		return nil
	}

	client, err := redis.NewClient(ctx, url)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable; idempotency, caching and pub/sub disabled")
		return nil
	}
	log.Info().Msg("connected to redis")
	return client
}

// employeeDirectory picks the external directory when one is configured,
// fronted by the Redis cache when available.
func employeeDirectory(cfg *config.Config, fallback usecase.EmployeeDirectory, client *goredis.Client, log zerolog.Logger) usecase.EmployeeDirectory {
	if cfg.EmployeeDirectoryURL == "" {
		return fallback
	}

	var dir usecase.EmployeeDirectory = directory.NewHTTPDirectory(cfg.EmployeeDirectoryURL, log)
	if client != nil && cfg.EmployeeCacheTTL > 0 {
		dir = directory.NewCachedDirectory(dir, redisRepo.NewCache(client, "directory:"), cfg.EmployeeCacheTTL, log)
	}
	return dir
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	m := metrics.New()

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.close()

	if err := seedFrom(ctx, cfg.SeedFile, store.writer, log); err != nil {
		return err
	}

	redisClient := connectRedis(ctx, cfg.RedisURL, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	repos := store.repos
	repos.Directory = employeeDirectory(cfg, repos.Directory, redisClient, log)

	opts := app.Options{Logger: log, Metrics: m}
	if store.pool != nil {
		opts.Retrier = postgresRepo.NewRetrier(log)
	}
	svc := app.NewServices(repos, opts)

	healthChecks := map[string]handler.PingFunc{}
	if store.pool != nil {
		healthChecks["postgres"] = store.pool.Ping
	}

	routerCfg := httpAdapter.RouterConfig{
		RequestHandler: handler.NewRequestHandler(svc.Requests, svc.Audit),
		BalanceHandler: handler.NewBalanceHandler(svc.Ledger),
		AccrualHandler: handler.NewAccrualHandler(svc.Accrual),
		AdminHandler:   handler.NewAdminHandler(svc.Requests, svc.Reconciliation),
		IdempotencyTTL: cfg.IdempotencyTTL,
		MetricsHandler: promhttp.Handler(),
		Logger:         log,
	}
	if redisClient != nil {
		routerCfg.IdempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		healthChecks["redis"] = redis.Ping(redisClient)
	}
	routerCfg.HealthHandler = handler.NewHealthHandler(healthChecks)
	if cfg.AuthEnabled {
		routerCfg.JWTManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	} else {
		log.Warn().Msg("token authentication disabled; trusting X-Actor-* headers")
	}
	if cfg.RateLimitRPS > 0 {
		routerCfg.RateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      httpAdapter.NewRouter(routerCfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Str("storage", cfg.StorageDriver).Msg("starting server")
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

	if cfg.OutboxPollInterval > 0 {
		publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: svc.Outbox,
			Publisher:  eventSink(redisClient, cfg.EventChannel, log),
			Logger:     log,
			Metrics:    m,
			Interval:   cfg.OutboxPollInterval,
			Retention:  cfg.OutboxRetention,
		})
		g.Go(func() error { return ignoreCancel(publisher.Start(gctx)) })
	}

	g.Go(func() error {
		return ignoreCancel(sweeper.New(svc.Requests, cfg.AutoApprovalInterval, log).Start(gctx))
	})

	g.Go(func() error {
		return ignoreCancel(sweeper.NewReconciler(svc.Reconciliation, cfg.ReconcileInterval, log).Start(gctx))
	})

	if routerCfg.RateLimiter != nil {
		g.Go(func() error {
			routerCfg.RateLimiter.RunCleanup(gctx, time.Hour)
			return nil
		})
	}

	return g.Wait()
}

// eventSink publishes to Redis when connected and to the log otherwise.
func eventSink(client *goredis.Client, channel string, log zerolog.Logger) eventpublisher.Publisher {
	if client != nil {
		return eventpublisher.NewRedisPublisher(client, channel)
	}
	return eventpublisher.NewLogPublisher(log)
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
