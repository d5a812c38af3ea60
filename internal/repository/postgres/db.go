package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/matchday/internal/repository"
)

type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool: pool,
	}
}

// RunTx runs fn in a SERIALIZABLE read-write transaction. Concurrent seat
// allocations on the same fixture and zone therefore either serialize or
// fail with a retryable error (see IsRetryable).
func (s *Store) RunTx(
	ctx context.Context,
	fn func(ctx context.Context, tx repository.Tx) error,
) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return err
	}

	defer tx.Rollback(ctx)

	if err := fn(ctx, &txHandle{store: s, db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

func (s *Store) Teams() repository.TeamRepo       { return &TeamRepo{pool: s.pool} }
func (s *Store) Stadiums() repository.StadiumRepo { return &StadiumRepo{pool: s.pool} }
func (s *Store) Zones() repository.ZoneRepo       { return &ZoneRepo{pool: s.pool} }
func (s *Store) Fixtures() repository.FixtureRepo { return &FixtureRepo{pool: s.pool} }
func (s *Store) Orders() repository.OrderRepo     { return &OrderRepo{pool: s.pool} }
func (s *Store) Tickets() repository.TicketRepo   { return &TicketRepo{pool: s.pool} }
func (s *Store) Payments() repository.PaymentRepo { return &PaymentRepo{pool: s.pool} }
func (s *Store) Users() repository.UserRepo       { return &UserRepo{pool: s.pool} }

// txHandle binds every repository to one open transaction.
type txHandle struct {
	store *Store
	db    DB
}

func (t *txHandle) Teams() repository.TeamRepo {
	return (&TeamRepo{pool: t.store.pool}).With(t.db)
}

func (t *txHandle) Stadiums() repository.StadiumRepo {
	return (&StadiumRepo{pool: t.store.pool}).With(t.db)
}

func (t *txHandle) Zones() repository.ZoneRepo {
	return (&ZoneRepo{pool: t.store.pool}).With(t.db)
}

func (t *txHandle) Fixtures() repository.FixtureRepo {
	return (&FixtureRepo{pool: t.store.pool}).With(t.db)
}

func (t *txHandle) Orders() repository.OrderRepo {
	return (&OrderRepo{pool: t.store.pool}).With(t.db)
}

func (t *txHandle) Tickets() repository.TicketRepo {
	return (&TicketRepo{pool: t.store.pool}).With(t.db)
}

func (t *txHandle) Payments() repository.PaymentRepo {
	return (&PaymentRepo{pool: t.store.pool}).With(t.db)
}

func (t *txHandle) Users() repository.UserRepo {
	return (&UserRepo{pool: t.store.pool}).With(t.db)
}
