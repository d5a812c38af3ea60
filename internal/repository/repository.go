package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/matchday/internal/domain"
)

// Store is the transactional record store. Its embedded Tx accessors run
// outside of any transaction; RunTx hands fn a handle whose writes commit
// together when fn returns nil and roll back otherwise.
type Store interface {
	Tx
	RunTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx exposes the entity repositories bound to one transaction.
type Tx interface {
	Teams() TeamRepo
	Stadiums() StadiumRepo
	Zones() ZoneRepo
	Fixtures() FixtureRepo
	Orders() OrderRepo
	Tickets() TicketRepo
	Payments() PaymentRepo
	Users() UserRepo
}

type TeamRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Team, error)
	List(ctx context.Context) ([]domain.Team, error)
	Create(ctx context.Context, t *domain.Team) error
	Update(ctx context.Context, t *domain.Team) error
}

// StadiumRepo loads stadiums together with their zones.
type StadiumRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Stadium, error)
	List(ctx context.Context) ([]domain.Stadium, error)
	Create(ctx context.Context, s *domain.Stadium) error
	Update(ctx context.Context, s *domain.Stadium) error
}

type ZoneRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Zone, error)
	Create(ctx context.Context, z *domain.Zone) error
	Update(ctx context.Context, z *domain.Zone) error
}

// FixtureFilter narrows List. Zero values match everything.
type FixtureFilter struct {
	Status domain.FixtureStatus
	Date   time.Time
}

type FixtureRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Fixture, error)
	// List orders by status descending, then time slot date descending.
	List(ctx context.Context, f FixtureFilter) ([]domain.Fixture, error)
	// Create inserts the fixture and its owned time slot.
	Create(ctx context.Context, f *domain.Fixture) error
	// Update rewrites teams, stadium and the owned time slot in place.
	Update(ctx context.Context, f *domain.Fixture) error
	SetStatus(ctx context.Context, id uuid.UUID, status domain.FixtureStatus) error
}

// OrderFilter narrows List. Zero values match everything.
type OrderFilter struct {
	AudienceID uuid.UUID
	FixtureID  uuid.UUID
	Status     domain.OrderStatus
}

// OrderRepo loads orders together with their tickets and payment.
type OrderRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	// List orders by status descending, then creation time descending.
	List(ctx context.Context, f OrderFilter) ([]domain.Order, error)
	Create(ctx context.Context, o *domain.Order) error
	SetStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
	// SeatLabels returns the seat numbers held by SUCCESS orders for the
	// fixture and zone.
	SeatLabels(ctx context.Context, fixtureID, zoneID uuid.UUID) ([]string, error)
	// SeatIndexes returns the numeric seat indexes held by SUCCESS orders for
	// the fixture and zone.
	SeatIndexes(ctx context.Context, fixtureID, zoneID uuid.UUID) ([]int, error)
}

type TicketRepo interface {
	CreateBatch(ctx context.Context, tickets []domain.Ticket) error
	DeleteByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)
}

type PaymentRepo interface {
	Create(ctx context.Context, p *domain.Payment) error
	SetStatusByOrder(ctx context.Context, orderID uuid.UUID, status domain.PaymentStatus) error
	ListByAudience(ctx context.Context, audienceID uuid.UUID) ([]domain.Payment, error)
}

type UserRepo interface {
	Get(ctx context.Context, role domain.Role, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, role domain.Role, email string) (*domain.User, error)
	List(ctx context.Context, role domain.Role) ([]domain.User, error)
	Create(ctx context.Context, u *domain.User) error
}
