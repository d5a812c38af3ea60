package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/kirinyoku/matchday/internal/metrics"
	"github.com/kirinyoku/matchday/internal/repository"
	redis "github.com/kirinyoku/matchday/internal/repository/redis"
	"github.com/kirinyoku/matchday/internal/service/catalog"
	"github.com/kirinyoku/matchday/internal/service/fixtures"
	"github.com/kirinyoku/matchday/internal/service/orders"
	"github.com/kirinyoku/matchday/internal/service/query"
	"github.com/kirinyoku/matchday/internal/service/users"
	"github.com/kirinyoku/matchday/internal/uow"
)

// Notifier receives fixture changes after commit.
type Notifier interface {
	FixtureChanged(ctx context.Context, fixtureID uuid.UUID)
}

type Services struct {
	Orders   *orders.Service
	Fixtures *fixtures.Service
	Catalog  *catalog.Service
	Users    *users.Service
	Query    *query.Service
}

type Config struct {
	Orders orders.Config
	Query  query.Config
	// TxMaxAttempts bounds how often a unit of work runs when retryable
	// reports its failure as transient.
	TxMaxAttempts int
}

// NewServices wires the services around one store. cache may be nil.
// retryable classifies store errors worth re-running a transaction for.
func NewServices(
	store repository.Store,
	cache *redis.Cache,
	notifier Notifier,
	retryable func(error) bool,
	logger *slog.Logger,
	cfg Config,
) *Services {
	u := uow.NewUoW(store,
		uow.WithRetry(cfg.TxMaxAttempts, retryable),
		uow.OnRetry(func(attempt int, err error) {
			metrics.TxRetry()
			logger.Debug("retrying transaction", slog.Int("attempt", attempt), slog.Any("err", err))
		}),
	)

	orderSvc := orders.New(store, u, notifier, logger, cfg.Orders)

	return &Services{
		Orders:   orderSvc,
		Fixtures: fixtures.New(store, u, orderSvc, notifier, logger),
		Catalog:  catalog.New(store, u, notifier, logger),
		Users:    users.New(store, logger),
		Query:    query.New(store, cache, cfg.Query),
	}
}
