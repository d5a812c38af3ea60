// Package catalog administers teams, stadiums and their seating zones.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/kirinyoku/matchday/internal/domain"
	"github.com/kirinyoku/matchday/internal/repository"
	"github.com/kirinyoku/matchday/internal/uow"
	"github.com/shopspring/decimal"
)

// Notifier is told after commit that cached fixture listings, which embed
// teams and stadiums, are stale. The fixture id is uuid.Nil.
type Notifier interface {
	FixtureChanged(ctx context.Context, fixtureID uuid.UUID)
}

type Service struct {
	store    repository.Store
	uow      *uow.UoW
	notifier Notifier
	log      *slog.Logger
}

func New(store repository.Store, u *uow.UoW, notifier Notifier, log *slog.Logger) *Service {
	if u == nil {
		u = uow.NewUoW(store)
	}

	return &Service{
		store:    store,
		uow:      u,
		notifier: notifier,
		log:      log,
	}
}

type TeamInput struct {
	Name string
	Abbr string
}

type StadiumInput struct {
	Name string
	Abbr string
}

type ZoneInput struct {
	Name         string
	PricePerSeat decimal.Decimal
	Size         int
}

func (s *Service) ListTeams(ctx context.Context) ([]domain.Team, error) {
	const op = "service.catalog.ListTeams"

	teams, err := s.store.Teams().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return teams, nil
}

// CreateTeam stores a new team. The abbreviation is upper-cased with
// whitespace removed before the uniqueness check.
//
// Returns:
//   - *domain.Team: the created team.
//   - error: domain.ErrValidation for a blank name or abbreviation.
//   - error: catalog.ErrTeamConflict if the abbreviation is taken.
func (s *Service) CreateTeam(ctx context.Context, in TeamInput) (*domain.Team, error) {
	const op = "service.catalog.CreateTeam"

	team := &domain.Team{ID: uuid.New(), Name: in.Name, Abbr: domain.NormalizeTeamAbbr(in.Abbr)}
	if err := team.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err := s.uow.Do(ctx, func(ctx context.Context, tx repository.Tx, after func(uow.AfterCommit)) error {
		if err := tx.Teams().Create(ctx, team); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s: %w", op, ErrTeamConflict)
			}
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("team created", slog.String("team_id", team.ID.String()), slog.String("abbr", team.Abbr))

	return team, nil
}

func (s *Service) UpdateTeam(ctx context.Context, id uuid.UUID, in TeamInput) (*domain.Team, error) {
	const op = "service.catalog.UpdateTeam"

	team := &domain.Team{ID: id, Name: in.Name, Abbr: domain.NormalizeTeamAbbr(in.Abbr)}
	if err := team.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err := s.uow.Do(ctx, func(ctx context.Context, tx repository.Tx, after func(uow.AfterCommit)) error {
		if err := tx.Teams().Update(ctx, team); err != nil {
			switch {
			case errors.Is(err, repository.ErrNotFound):
				return fmt.Errorf("%s: %w", op, ErrTeamNotFound)
			case errors.Is(err, repository.ErrConflict):
				return fmt.Errorf("%s: %w", op, ErrTeamConflict)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		after(s.invalidate)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return team, nil
}

func (s *Service) ListStadiums(ctx context.Context) ([]domain.Stadium, error) {
	const op = "service.catalog.ListStadiums"

	stadiums, err := s.store.Stadiums().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return stadiums, nil
}

func (s *Service) GetStadium(ctx context.Context, id uuid.UUID) (*domain.Stadium, error) {
	const op = "service.catalog.GetStadium"

	st, err := s.store.Stadiums().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrStadiumNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return st, nil
}

// CreateStadium stores a new stadium without zones. The abbreviation is
// reduced to a lower-case slug.
func (s *Service) CreateStadium(ctx context.Context, in StadiumInput) (*domain.Stadium, error) {
	const op = "service.catalog.CreateStadium"

	st := &domain.Stadium{ID: uuid.New(), Name: in.Name, Abbr: domain.NormalizeStadiumAbbr(in.Abbr)}
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err := s.uow.Do(ctx, func(ctx context.Context, tx repository.Tx, after func(uow.AfterCommit)) error {
		if err := tx.Stadiums().Create(ctx, st); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s: %w", op, ErrStadiumConflict)
			}
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("stadium created", slog.String("stadium_id", st.ID.String()), slog.String("abbr", st.Abbr))

	st.Zones = []domain.Zone{}
	return st, nil
}

func (s *Service) UpdateStadium(ctx context.Context, id uuid.UUID, in StadiumInput) (*domain.Stadium, error) {
	const op = "service.catalog.UpdateStadium"

	st := &domain.Stadium{ID: id, Name: in.Name, Abbr: domain.NormalizeStadiumAbbr(in.Abbr)}
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var out *domain.Stadium
	err := s.uow.Do(ctx, func(ctx context.Context, tx repository.Tx, after func(uow.AfterCommit)) error {
		if err := tx.Stadiums().Update(ctx, st); err != nil {
			switch {
			case errors.Is(err, repository.ErrNotFound):
				return fmt.Errorf("%s: %w", op, ErrStadiumNotFound)
			case errors.Is(err, repository.ErrConflict):
				return fmt.Errorf("%s: %w", op, ErrStadiumConflict)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		var err error
		out, err = tx.Stadiums().Get(ctx, id)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		after(s.invalidate)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// CreateZone adds a pricing zone to a stadium. The zone name drives the
// seat label prefix ("Zone A" seats are ZA1, ZA2, ...).
//
// Returns:
//   - *domain.Zone: the created zone.
//   - error: domain.ErrValidation if price is negative or size below 1.
//   - error: catalog.ErrStadiumNotFound if the stadium does not exist.
func (s *Service) CreateZone(ctx context.Context, stadiumID uuid.UUID, in ZoneInput) (*domain.Zone, error) {
	const op = "service.catalog.CreateZone"

	zone := &domain.Zone{
		ID:           uuid.New(),
		StadiumID:    stadiumID,
		Name:         in.Name,
		PricePerSeat: in.PricePerSeat,
		Size:         in.Size,
	}
	if err := zone.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err := s.uow.Do(ctx, func(ctx context.Context, tx repository.Tx, after func(uow.AfterCommit)) error {
		if err := tx.Zones().Create(ctx, zone); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, ErrStadiumNotFound)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		after(s.invalidate)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return zone, nil
}

// UpdateZone changes name, price and size of a zone. Seats already issued
// keep their labels and orders keep the amount they paid.
func (s *Service) UpdateZone(ctx context.Context, zoneID uuid.UUID, in ZoneInput) (*domain.Zone, error) {
	const op = "service.catalog.UpdateZone"

	var zone *domain.Zone
	err := s.uow.Do(ctx, func(ctx context.Context, tx repository.Tx, after func(uow.AfterCommit)) error {
		cur, err := tx.Zones().Get(ctx, zoneID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, ErrZoneNotFound)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		cur.Name = in.Name
		cur.PricePerSeat = in.PricePerSeat
		cur.Size = in.Size
		if err := cur.Validate(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if err := tx.Zones().Update(ctx, cur); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		zone = cur

		after(s.invalidate)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return zone, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.notifier != nil {
		s.notifier.FixtureChanged(ctx, uuid.Nil)
	}
}
