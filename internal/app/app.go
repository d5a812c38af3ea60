package app

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

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/matchday/internal/auth"
	"github.com/kirinyoku/matchday/internal/config"
	"github.com/kirinyoku/matchday/internal/postgres"
	"github.com/kirinyoku/matchday/internal/redis"
	"github.com/kirinyoku/matchday/internal/repository"
	"github.com/kirinyoku/matchday/internal/repository/memory"
	postgresrepo "github.com/kirinyoku/matchday/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/matchday/internal/repository/redis"
	"github.com/kirinyoku/matchday/internal/service"
	"github.com/kirinyoku/matchday/internal/service/orders"
	"github.com/kirinyoku/matchday/internal/service/query"
	httpgin "github.com/kirinyoku/matchday/internal/transport/http/gin"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	pool       *pgxpool.Pool
	rdb        *goredis.Client
	cache      *redisrepo.Cache
	pubsub     *redisrepo.FixturesPubSub
	Services   *service.Services
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx := context.Background()
	a := &App{cfg: cfg, logger: logger}

	// Initialize the store
	var (
		store     repository.Store
		retryable func(error) bool
	)

	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		logger.Warn("using in-memory store, data is lost on exit")
		store = memory.NewStore()
	default:
		pool, err := postgres.New(ctx, postgres.Config{DSN: cfg.Postgres.DSN(), MaxConns: cfg.Postgres.MaxConns})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to migrate postgres: %w", err)
		}
		a.pool = pool
		store = postgresrepo.NewStore(pool)
		retryable = postgresrepo.IsRetryable
	}

	deps := httpgin.Deps{
		Issuer:      auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		IdemLockTTL: cfg.Redis.IdemLockTTL,
		Logger:      logger,
	}

	// Initialize redis backed pieces
	if cfg.Redis.Enabled {
		rdb, err := redis.New(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		a.rdb = rdb
		a.cache = redisrepo.New(rdb)
		a.pubsub = redisrepo.NewFixturesPubSub(rdb)

		deps.Idem = redisrepo.NewIdempotencyStore(rdb, cfg.Redis.IdemTTL)
		deps.Limiter = redisrepo.NewSlidingWindowLimiter(rdb, "orders", cfg.RateLimit.OrdersPerWindow, cfg.RateLimit.Window)
	}

	// Initialize services
	a.Services = service.NewServices(
		store,
		a.cache,
		redisrepo.NewNotifier(a.cache, a.pubsub, logger),
		retryable,
		logger,
		service.Config{
			Orders:        orders.Config{EnforceCapacity: cfg.Orders.EnforceZoneCapacity},
			Query:         query.Config{FixturesTTL: cfg.Redis.FixturesTTL},
			TxMaxAttempts: cfg.Tx.MaxAttempts,
		},
	)
	deps.Services = a.Services

	// Initialize Gin router
	router := httpgin.NewRouter(deps)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return a, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	defer a.Close()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Drop cached listings when another instance changes a fixture
	if a.pubsub != nil {
		g.Go(func() error {
			err := a.pubsub.Subscribe(gCtx, func(ctx context.Context, fixtureID uuid.UUID) {
				if err := a.cache.InvalidateFixtures(ctx); err != nil {
					a.logger.Warn("invalidate fixture cache", slog.String("fixture_id", fixtureID.String()), slog.Any("err", err))
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("fixture subscription: %w", err)
			}
			return nil
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}

// Close releases the database pool and redis client. Run calls it on exit;
// callers that never Run must call it themselves.
func (a *App) Close() {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Warn("close redis", slog.Any("err", err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
