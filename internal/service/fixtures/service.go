package fixtures

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
)

// OrderCanceller cancels one order on a transaction owned by the caller.
type OrderCanceller interface {
	CancelOrderTx(ctx context.Context, tx repository.Tx, orderID uuid.UUID, reason domain.OrderStatus) (*domain.Order, error)
}

type Notifier interface {
	FixtureChanged(ctx context.Context, fixtureID uuid.UUID)
}

// Fields describe where and when a fixture is played.
type Fields struct {
	TeamOneID uuid.UUID
	TeamTwoID uuid.UUID
	StadiumID uuid.UUID
	// Date is the calendar day of the match. When zero, the day of Start is
	// used.
	Date  time.Time
	Start time.Time
	End   time.Time
}

func (f Fields) Validate() error {
	err := domain.Invalid(validation.ValidateStruct(&f,
		validation.Field(&f.TeamOneID, domain.RequiredID),
		validation.Field(&f.TeamTwoID, domain.RequiredID),
		validation.Field(&f.StadiumID, domain.RequiredID),
	))
	if err != nil {
		return err
	}

	if f.TeamOneID == f.TeamTwoID {
		return fmt.Errorf("%w: %w", domain.ErrValidation, ErrSameTeam)
	}

	return domain.ValidateSlot(f.Start, f.End)
}

func (f Fields) day() time.Time {
	if f.Date.IsZero() {
		return domain.Day(f.Start)
	}
	return domain.Day(f.Date)
}

func (f Fields) candidate() domain.Candidate {
	return domain.Candidate{
		StadiumID: f.StadiumID,
		TeamOneID: f.TeamOneID,
		TeamTwoID: f.TeamTwoID,
		Date:      f.day(),
		Start:     f.Start,
		End:       f.End,
	}
}

// Command is either Create or Update.
type Command interface {
	fields() Fields
}

// Create schedules a new CONFIRMED fixture.
type Create struct {
	Fields
}

// Update moves an existing fixture, keeping its id and time slot id.
type Update struct {
	ID uuid.UUID
	Fields
}

func (c Create) fields() Fields { return c.Fields }
func (c Update) fields() Fields { return c.Fields }

type Service struct {
	store    repository.Store
	uow      *uow.UoW
	orders   OrderCanceller
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

func New(
	store repository.Store,
	u *uow.UoW,
	orders OrderCanceller,
	notifier Notifier,
	log *slog.Logger,
) *Service {
	if u == nil {
		u = uow.NewUoW(store)
	}

	return &Service{
		store:    store,
		uow:      u,
		orders:   orders,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// Check runs the conflict detector against the fixtures scheduled on the
// same day without writing anything. excludeID is skipped so a fixture can
// be checked against its own current placement.
//
// Returns:
//   - *domain.ConflictError: the first clash found, nil when the slot is free.
//   - error: domain.ErrValidation for malformed fields.
func (s *Service) Check(ctx context.Context, f Fields, excludeID uuid.UUID) (*domain.ConflictError, error) {
	const op = "service.fixtures.Check"

	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sameDay, err := s.store.Fixtures().List(ctx, repository.FixtureFilter{Date: f.day()})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conflict := domain.FindConflict(f.candidate(), sameDay, excludeID)
	if conflict != nil {
		metrics.ScheduleConflict(string(conflict.Kind))
	}

	return conflict, nil
}

// Save creates or updates a fixture. The conflict detector runs again inside
// the write transaction, so two admins booking the same slot concurrently
// cannot both succeed.
//
// Parameters:
//   - ctx: request-scoped context.
//   - cmd: Create or Update.
//
// Returns:
//   - *domain.Fixture: the stored fixture.
//   - error: fixtures.ErrConflict wrapping *domain.ConflictError on a clash.
//   - error: fixtures.ErrTeamNotFound, fixtures.ErrStadiumNotFound.
//   - error: fixtures.ErrFixtureNotFound, fixtures.ErrFixtureCancelled on update.
func (s *Service) Save(ctx context.Context, cmd Command) (*domain.Fixture, error) {
	const op = "service.fixtures.Save"

	f := cmd.fields()
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		saved  *domain.Fixture
		action string
	)
	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Tx,
		after func(uow.AfterCommit),
	) error {
		if err := checkRefs(ctx, tx, f); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		var excludeID uuid.UUID
		fixture := &domain.Fixture{}

		switch c := cmd.(type) {
		case Create:
			action = "create"
			fixture.ID = uuid.New()
			fixture.Status = domain.FixtureConfirmed
			fixture.CreatedAt = s.now().UTC()
			fixture.TimeSlot.ID = uuid.New()
		case Update:
			action = "update"
			cur, err := tx.Fixtures().Get(ctx, c.ID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return fmt.Errorf("%s: %w", op, ErrFixtureNotFound)
				}
				return fmt.Errorf("%s: %w", op, err)
			}
			if cur.Status == domain.FixtureCancelled {
				return fmt.Errorf("%s: %w", op, ErrFixtureCancelled)
			}
			fixture = cur
			excludeID = cur.ID
		default:
			return fmt.Errorf("%s: unknown command %T", op, cmd)
		}

		sameDay, err := tx.Fixtures().List(ctx, repository.FixtureFilter{Date: f.day()})
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if conflict := domain.FindConflict(f.candidate(), sameDay, excludeID); conflict != nil {
			metrics.ScheduleConflict(string(conflict.Kind))
			return fmt.Errorf("%s: %w: %w", op, ErrConflict, conflict)
		}

		fixture.TeamOneID = f.TeamOneID
		fixture.TeamTwoID = f.TeamTwoID
		fixture.StadiumID = f.StadiumID
		fixture.TimeSlot.Date = f.day()
		fixture.TimeSlot.Start = f.Start.UTC()
		fixture.TimeSlot.End = f.End.UTC()

		if action == "create" {
			err = tx.Fixtures().Create(ctx, fixture)
		} else {
			err = tx.Fixtures().Update(ctx, fixture)
		}
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, ErrFixtureNotFound)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		saved = fixture

		after(func(ctx context.Context) {
			metrics.FixtureSaved(action)
			s.notify(ctx, fixture.ID)
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("fixture saved",
		slog.String("fixture_id", saved.ID.String()),
		slog.String("action", action),
	)

	return saved, nil
}

func checkRefs(ctx context.Context, tx repository.Tx, f Fields) error {
	for _, id := range []uuid.UUID{f.TeamOneID, f.TeamTwoID} {
		if _, err := tx.Teams().Get(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrTeamNotFound, id)
			}
			return err
		}
	}

	if _, err := tx.Stadiums().Get(ctx, f.StadiumID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrStadiumNotFound
		}
		return err
	}

	return nil
}

// Cancel marks the fixture CANCELLED and cancels every order placed for it
// with MATCH_CANCELLED: tickets are deleted and payments refunded. Either
// all of it commits or none of it does.
//
// Returns:
//   - *domain.Fixture: the cancelled fixture.
//   - int: the number of orders cancelled.
//   - error: fixtures.ErrFixtureNotFound if the fixture does not exist.
func (s *Service) Cancel(ctx context.Context, fixtureID uuid.UUID) (*domain.Fixture, int, error) {
	const op = "service.fixtures.Cancel"

	var (
		fixture   *domain.Fixture
		cancelled int
	)
	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Tx,
		after func(uow.AfterCommit),
	) error {
		f, err := tx.Fixtures().Get(ctx, fixtureID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, ErrFixtureNotFound)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		if err := tx.Fixtures().SetStatus(ctx, f.ID, domain.FixtureCancelled); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		f.Status = domain.FixtureCancelled

		orders, err := tx.Orders().List(ctx, repository.OrderFilter{FixtureID: f.ID})
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		for _, o := range orders {
			if _, err := s.orders.CancelOrderTx(ctx, tx, o.ID, domain.OrderMatchCancelled); err != nil {
				return fmt.Errorf("%s: order %s: %w", op, o.ID, err)
			}
		}

		fixture = f
		cancelled = len(orders)

		after(func(ctx context.Context) {
			metrics.FixtureCancelled()
			for range orders {
				metrics.OrderCancelled(string(domain.OrderMatchCancelled))
			}
			s.notify(ctx, f.ID)
		})

		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	s.log.Info("fixture cancelled",
		slog.String("fixture_id", fixture.ID.String()),
		slog.Int("orders", cancelled),
	)

	return fixture, cancelled, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Fixture, error) {
	const op = "service.fixtures.Get"

	f, err := s.store.Fixtures().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrFixtureNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return f, nil
}

func (s *Service) notify(ctx context.Context, fixtureID uuid.UUID) {
	if s.notifier != nil {
		s.notifier.FixtureChanged(ctx, fixtureID)
	}
}
