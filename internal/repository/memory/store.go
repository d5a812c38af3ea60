// Package memory is an in-process implementation of repository.Store.
// Transactions are serialized by a store-wide mutex and run against a copy of
// the data that replaces the committed state only when fn succeeds.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/google/uuid"
	"github.com/kirinyoku/matchday/internal/domain"
	"github.com/kirinyoku/matchday/internal/repository"
)

type state struct {
	teams    map[uuid.UUID]domain.Team
	stadiums map[uuid.UUID]domain.Stadium
	zones    map[uuid.UUID]domain.Zone
	fixtures map[uuid.UUID]domain.Fixture
	orders   map[uuid.UUID]domain.Order
	tickets  map[uuid.UUID]domain.Ticket
	payments map[uuid.UUID]domain.Payment
	users    map[uuid.UUID]domain.User
}

func newState() *state {
	return &state{
		teams:    map[uuid.UUID]domain.Team{},
		stadiums: map[uuid.UUID]domain.Stadium{},
		zones:    map[uuid.UUID]domain.Zone{},
		fixtures: map[uuid.UUID]domain.Fixture{},
		orders:   map[uuid.UUID]domain.Order{},
		tickets:  map[uuid.UUID]domain.Ticket{},
		payments: map[uuid.UUID]domain.Payment{},
		users:    map[uuid.UUID]domain.User{},
	}
}

// clone copies every map. Stored values never carry slices or pointers
// (zones, tickets and payments are kept in their own maps), so a shallow
// copy of each map is a full snapshot.
func (s *state) clone() *state {
	return &state{
		teams:    maps.Clone(s.teams),
		stadiums: maps.Clone(s.stadiums),
		zones:    maps.Clone(s.zones),
		fixtures: maps.Clone(s.fixtures),
		orders:   maps.Clone(s.orders),
		tickets:  maps.Clone(s.tickets),
		payments: maps.Clone(s.payments),
		users:    maps.Clone(s.users),
	}
}

type Store struct {
	mu     sync.Mutex
	data   *state
	faults map[string]error
}

func NewStore() *Store {
	return &Store{
		data:   newState(),
		faults: map[string]error{},
	}
}

// InjectFault makes the named write ("tickets.create", "payments.create",
// "orders.set_status", ...) fail with err until cleared with a nil err.
func (s *Store) InjectFault(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

func (s *Store) RunTx(
	ctx context.Context,
	fn func(ctx context.Context, tx repository.Tx) error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(ctx, &handle{st: work, faults: s.faults}); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	s.data = work
	return nil
}

// autocommit runs a single accessor call in its own transaction.
func (s *Store) autocommit() *handle {
	return &handle{store: s}
}

func (s *Store) Teams() repository.TeamRepo       { return s.autocommit().Teams() }
func (s *Store) Stadiums() repository.StadiumRepo { return s.autocommit().Stadiums() }
func (s *Store) Zones() repository.ZoneRepo       { return s.autocommit().Zones() }
func (s *Store) Fixtures() repository.FixtureRepo { return s.autocommit().Fixtures() }
func (s *Store) Orders() repository.OrderRepo     { return s.autocommit().Orders() }
func (s *Store) Tickets() repository.TicketRepo   { return s.autocommit().Tickets() }
func (s *Store) Payments() repository.PaymentRepo { return s.autocommit().Payments() }
func (s *Store) Users() repository.UserRepo       { return s.autocommit().Users() }

// handle is either bound to a transaction (st set) or to the store itself,
// in which case every call opens its own transaction.
type handle struct {
	store  *Store
	st     *state
	faults map[string]error
}

func (h *handle) do(ctx context.Context, fn func(tx *handle) error) error {
	if h.st != nil {
		return fn(h)
	}
	return h.store.RunTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		return fn(tx.(*handle))
	})
}

func (h *handle) fault(op string) error {
	if h.faults == nil {
		return nil
	}
	return h.faults[op]
}

func (h *handle) Teams() repository.TeamRepo       { return &teamRepo{h} }
func (h *handle) Stadiums() repository.StadiumRepo { return &stadiumRepo{h} }
func (h *handle) Zones() repository.ZoneRepo       { return &zoneRepo{h} }
func (h *handle) Fixtures() repository.FixtureRepo { return &fixtureRepo{h} }
func (h *handle) Orders() repository.OrderRepo     { return &orderRepo{h} }
func (h *handle) Tickets() repository.TicketRepo   { return &ticketRepo{h} }
func (h *handle) Payments() repository.PaymentRepo { return &paymentRepo{h} }
func (h *handle) Users() repository.UserRepo       { return &userRepo{h} }
