package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"github.com/kirinyoku/matchday/internal/domain"
	"github.com/kirinyoku/matchday/internal/metrics"
	"github.com/kirinyoku/matchday/internal/repository"
	"github.com/kirinyoku/matchday/internal/uow"
	"github.com/shopspring/decimal"
)

// Notifier is told about fixtures whose orders changed, after commit.
type Notifier interface {
	FixtureChanged(ctx context.Context, fixtureID uuid.UUID)
}

type Config struct {
	// EnforceCapacity rejects orders that would allocate seats beyond the
	// zone size. Off by default: seat labels keep counting up past it.
	EnforceCapacity bool
}

type Service struct {
	store    repository.Store
	uow      *uow.UoW
	notifier Notifier
	log      *slog.Logger
	cfg      Config
	now      func() time.Time
}

func New(
	store repository.Store,
	u *uow.UoW,
	notifier Notifier,
	log *slog.Logger,
	cfg Config,
) *Service {
	if u == nil {
		u = uow.NewUoW(store)
	}

	return &Service{
		store:    store,
		uow:      u,
		notifier: notifier,
		log:      log,
		cfg:      cfg,
		now:      time.Now,
	}
}

type CreateOrderInput struct {
	AudienceID  uuid.UUID
	FixtureID   uuid.UUID
	ZoneID      uuid.UUID
	NoOfTickets int
}

func (in CreateOrderInput) Validate() error {
	return domain.Invalid(validation.ValidateStruct(&in,
		validation.Field(&in.AudienceID, domain.RequiredID),
		validation.Field(&in.FixtureID, domain.RequiredID),
		validation.Field(&in.ZoneID, domain.RequiredID),
		validation.Field(&in.NoOfTickets, validation.Required, validation.Min(1)),
	))
}

// CreateOrder places an order for NoOfTickets seats in a zone of a fixture.
// The order, its tickets and its PAID payment are written in one
// transaction; if any write fails none of them persist.
//
// Seat labels continue from the highest index already held by SUCCESS
// orders of the same fixture and zone, so released seats are not reused.
//
// Returns:
//   - *domain.Order: the created order with tickets and payment.
//   - error: domain.ErrValidation for bad input.
//   - error: orders.ErrFixtureNotFound, orders.ErrFixtureCancelled.
//   - error: orders.ErrZoneNotFound, orders.ErrZoneNotInStadium.
//   - error: orders.ErrCapacityExceeded when capacity is enforced.
//   - error: domain.ErrInvalidSeatLabel if a held seat has no index.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	const op = "service.orders.CreateOrder"

	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var order *domain.Order
	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Tx,
		after func(uow.AfterCommit),
	) error {
		fixture, err := tx.Fixtures().Get(ctx, in.FixtureID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, ErrFixtureNotFound)
			}
			return fmt.Errorf("%s: %w", op, err)
		}
		if fixture.Status == domain.FixtureCancelled {
			return fmt.Errorf("%s: %w", op, ErrFixtureCancelled)
		}

		zone, err := tx.Zones().Get(ctx, in.ZoneID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, ErrZoneNotFound)
			}
			return fmt.Errorf("%s: %w", op, err)
		}
		if zone.StadiumID != fixture.StadiumID {
			return fmt.Errorf("%s: %w", op, ErrZoneNotInStadium)
		}

		held, err := tx.Orders().SeatIndexes(ctx, fixture.ID, zone.ID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		priorMax, err := domain.MaxSeatIndex(held)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if s.cfg.EnforceCapacity && len(held)+in.NoOfTickets > zone.Size {
			return fmt.Errorf("%s: %w: %d of %d left", op, ErrCapacityExceeded, max(zone.Size-len(held), 0), zone.Size)
		}

		seats, err := domain.AllocateSeats(zone.Name, in.NoOfTickets, priorMax)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		now := s.now().UTC()
		o := &domain.Order{
			ID:          uuid.New(),
			AudienceID:  in.AudienceID,
			FixtureID:   fixture.ID,
			ZoneID:      zone.ID,
			NoOfTickets: in.NoOfTickets,
			Status:      domain.OrderSuccess,
			CreatedAt:   now,
		}
		if err := tx.Orders().Create(ctx, o); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		tickets := make([]domain.Ticket, 0, len(seats))
		for i, seat := range seats {
			tickets = append(tickets, domain.Ticket{
				ID:        uuid.New(),
				OrderID:   o.ID,
				FixtureID: fixture.ID,
				ZoneID:    zone.ID,
				SeatNo:    seat,
				SeatIndex: priorMax + i + 1,
				CreatedAt: now,
			})
		}
		if err := tx.Tickets().CreateBatch(ctx, tickets); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s: %w", op, ErrSeatAlreadyIssued)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		payment := &domain.Payment{
			ID:         uuid.New(),
			AudienceID: in.AudienceID,
			OrderID:    o.ID,
			Amount:     zone.PricePerSeat.Mul(decimal.NewFromInt(int64(in.NoOfTickets))),
			Method:     domain.PaymentCreditCard,
			Status:     domain.PaymentPaid,
			CreatedAt:  now,
		}
		if err := tx.Payments().Create(ctx, payment); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		o.Tickets = tickets
		o.Payment = payment
		order = o

		after(func(ctx context.Context) {
			metrics.OrderCreated(len(tickets))
			s.notify(ctx, fixture.ID)
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order created",
		slog.String("order_id", order.ID.String()),
		slog.String("fixture_id", order.FixtureID.String()),
		slog.Int("tickets", order.NoOfTickets),
	)

	return order, nil
}

// CancelOrder cancels an order in its own transaction. An empty reason means
// CANCELLED_BY_ADMIN. Cancelling an already cancelled order applies the new
// status again; tickets are already gone and the payment stays REFUNDED.
func (s *Service) CancelOrder(ctx context.Context, orderID uuid.UUID, reason domain.OrderStatus) (*domain.Order, error) {
	const op = "service.orders.CancelOrder"

	var order *domain.Order
	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Tx,
		after func(uow.AfterCommit),
	) error {
		o, err := s.CancelOrderTx(ctx, tx, orderID, reason)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		order = o

		after(func(ctx context.Context) {
			metrics.OrderCancelled(string(o.Status))
			s.notify(ctx, o.FixtureID)
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order cancelled",
		slog.String("order_id", order.ID.String()),
		slog.String("status", string(order.Status)),
	)

	return order, nil
}

// CancelOrderTx runs the cancellation steps on the caller's transaction:
// set the status, delete the tickets, refund the payment.
//
// Returns:
//   - *domain.Order: the order as it stands after cancellation.
//   - error: orders.ErrInvalidReason if reason is not a cancellation status.
//   - error: orders.ErrOrderNotFound if the order does not exist.
func (s *Service) CancelOrderTx(
	ctx context.Context,
	tx repository.Tx,
	orderID uuid.UUID,
	reason domain.OrderStatus,
) (*domain.Order, error) {
	const op = "service.orders.CancelOrderTx"

	if reason == "" {
		reason = domain.OrderCancelledByAdmin
	}
	if !reason.IsCancellation() {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrInvalidReason, reason)
	}

	o, err := tx.Orders().Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrOrderNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Orders().SetStatus(ctx, o.ID, reason); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tx.Tickets().DeleteByOrder(ctx, o.ID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Payments().SetStatusByOrder(ctx, o.ID, domain.PaymentRefunded); err != nil {
		// an order always carries its payment; a missing one is left as is
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	o.Status = reason
	o.Tickets = nil
	if o.Payment != nil {
		o.Payment.Status = domain.PaymentRefunded
	}

	return o, nil
}

// CancelAudienceOrder lets an audience cancel one of their own orders.
// Orders of other audiences are reported as not found.
func (s *Service) CancelAudienceOrder(ctx context.Context, audienceID, orderID uuid.UUID) (*domain.Order, error) {
	const op = "service.orders.CancelAudienceOrder"

	o, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if o.AudienceID != audienceID {
		return nil, fmt.Errorf("%s: %w", op, ErrOrderNotFound)
	}

	return s.CancelOrder(ctx, orderID, domain.OrderCancelledByUser)
}

func (s *Service) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	const op = "service.orders.GetOrder"

	o, err := s.store.Orders().Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrOrderNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return o, nil
}

func (s *Service) notify(ctx context.Context, fixtureID uuid.UUID) {
	if s.notifier != nil {
		s.notifier.FixtureChanged(ctx, fixtureID)
	}
}
