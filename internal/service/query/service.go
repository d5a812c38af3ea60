package query

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/matchday/internal/domain"
	"github.com/kirinyoku/matchday/internal/eticket"
	"github.com/kirinyoku/matchday/internal/repository"
	redisrepo "github.com/kirinyoku/matchday/internal/repository/redis"
)

type Config struct {
	FixturesTTL time.Duration
}

type Service struct {
	store repository.Store
	cache *redisrepo.Cache
	cfg   Config
	now   func() time.Time
}

// New builds the read side. cache may be nil, in which case every call
// reads the store.
func New(store repository.Store, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.FixturesTTL <= 0 {
		cfg.FixturesTTL = 30 * time.Second
	}

	return &Service{
		store: store,
		cache: cache,
		cfg:   cfg,
		now:   time.Now,
	}
}

func cached[T any](
	ctx context.Context,
	s *Service,
	key string,
	loader func(ctx context.Context) (T, error),
) (T, error) {
	if s.cache == nil {
		return loader(ctx)
	}
	return redisrepo.GetOrSetJSON(ctx, s.cache, key, s.cfg.FixturesTTL, loader)
}

// ListFixtures returns every fixture, CONFIRMED before CANCELLED and latest
// date first, with teams, stadium and the orders placed for it.
//
// Parameters:
//   - ctx: request-scoped context.
//
// Returns:
//   - []domain.FixtureView: the fixtures, empty when there are none.
//   - error: store or cache failures.
func (s *Service) ListFixtures(ctx context.Context) ([]domain.FixtureView, error) {
	const op = "service.query.ListFixtures"

	views, err := cached(ctx, s, redisrepo.KeyFixtures(), func(ctx context.Context) ([]domain.FixtureView, error) {
		return s.fixtureViews(ctx, repository.FixtureFilter{}, false)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return views, nil
}

// ListUpcomingFixtures returns CONFIRMED fixtures that have not started yet,
// with stadium zones and the number of seats sold per zone id. The cached
// listing holds every CONFIRMED fixture; the start filter runs on each call.
func (s *Service) ListUpcomingFixtures(ctx context.Context) ([]domain.FixtureView, error) {
	const op = "service.query.ListUpcomingFixtures"

	views, err := cached(ctx, s, redisrepo.KeyUpcomingFixtures(), func(ctx context.Context) ([]domain.FixtureView, error) {
		return s.fixtureViews(ctx, repository.FixtureFilter{Status: domain.FixtureConfirmed}, true)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	out := make([]domain.FixtureView, 0, len(views))
	for _, v := range views {
		if v.TimeSlot.Start.After(now) {
			out = append(out, v)
		}
	}

	return out, nil
}

func (s *Service) fixtureViews(ctx context.Context, filter repository.FixtureFilter, withSold bool) ([]domain.FixtureView, error) {
	fixtures, err := s.store.Fixtures().List(ctx, filter)
	if err != nil {
		return nil, err
	}

	cat, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	orders, err := s.store.Orders().List(ctx, repository.OrderFilter{})
	if err != nil {
		return nil, err
	}
	byFixture := make(map[uuid.UUID][]domain.Order)
	for _, o := range orders {
		byFixture[o.FixtureID] = append(byFixture[o.FixtureID], o)
	}

	views := make([]domain.FixtureView, 0, len(fixtures))
	for _, f := range fixtures {
		v := domain.FixtureView{
			Fixture: f,
			TeamOne: cat.teams[f.TeamOneID],
			TeamTwo: cat.teams[f.TeamTwoID],
			Stadium: cat.stadiums[f.StadiumID],
			Orders:  byFixture[f.ID],
		}
		if v.Orders == nil {
			v.Orders = []domain.Order{}
		}

		if withSold {
			v.Sold = make(map[string]int, len(v.Stadium.Zones))
			for _, z := range v.Stadium.Zones {
				v.Sold[z.ID.String()] = 0
			}
			for _, o := range v.Orders {
				if o.Status == domain.OrderSuccess {
					v.Sold[o.ZoneID.String()] += len(o.Tickets)
				}
			}
		}

		views = append(views, v)
	}

	return views, nil
}

type catalog struct {
	teams    map[uuid.UUID]domain.Team
	stadiums map[uuid.UUID]domain.Stadium
}

func (s *Service) loadCatalog(ctx context.Context) (*catalog, error) {
	teams, err := s.store.Teams().List(ctx)
	if err != nil {
		return nil, err
	}

	stadiums, err := s.store.Stadiums().List(ctx)
	if err != nil {
		return nil, err
	}

	c := &catalog{
		teams:    make(map[uuid.UUID]domain.Team, len(teams)),
		stadiums: make(map[uuid.UUID]domain.Stadium, len(stadiums)),
	}
	for _, t := range teams {
		c.teams[t.ID] = t
	}
	for _, st := range stadiums {
		c.stadiums[st.ID] = st
	}

	return c, nil
}

func (c *catalog) summary(f domain.Fixture) domain.FixtureSummary {
	return domain.FixtureSummary{
		ID:      f.ID,
		TeamOne: c.teams[f.TeamOneID],
		TeamTwo: c.teams[f.TeamTwoID],
		Stadium: c.stadiums[f.StadiumID],
		Slot:    f.TimeSlot,
		Status:  f.Status,
	}
}

// ListOrders returns every order with its audience and fixture, for admins.
func (s *Service) ListOrders(ctx context.Context) ([]domain.OrderView, error) {
	const op = "service.query.ListOrders"

	views, err := s.orderViews(ctx, repository.OrderFilter{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return views, nil
}

// ListAudienceOrders returns the audience's orders, status descending then
// newest first.
func (s *Service) ListAudienceOrders(ctx context.Context, audienceID uuid.UUID) ([]domain.OrderView, error) {
	const op = "service.query.ListAudienceOrders"

	views, err := s.orderViews(ctx, repository.OrderFilter{AudienceID: audienceID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return views, nil
}

func (s *Service) orderViews(ctx context.Context, filter repository.OrderFilter) ([]domain.OrderView, error) {
	orders, err := s.store.Orders().List(ctx, filter)
	if err != nil {
		return nil, err
	}

	fixtures, err := s.fixtureIndex(ctx)
	if err != nil {
		return nil, err
	}

	cat, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	audiences, err := s.store.Users().List(ctx, domain.RoleAudience)
	if err != nil {
		return nil, err
	}
	people := make(map[uuid.UUID]domain.User, len(audiences))
	for _, u := range audiences {
		people[u.ID] = u
	}

	views := make([]domain.OrderView, 0, len(orders))
	for _, o := range orders {
		if o.Tickets == nil {
			o.Tickets = []domain.Ticket{}
		}
		u := people[o.AudienceID]
		views = append(views, domain.OrderView{
			Order:         o,
			AudienceName:  u.Name,
			AudienceEmail: u.Email,
			Fixture:       cat.summary(fixtures[o.FixtureID]),
		})
	}

	return views, nil
}

func (s *Service) fixtureIndex(ctx context.Context) (map[uuid.UUID]domain.Fixture, error) {
	fixtures, err := s.store.Fixtures().List(ctx, repository.FixtureFilter{})
	if err != nil {
		return nil, err
	}

	idx := make(map[uuid.UUID]domain.Fixture, len(fixtures))
	for _, f := range fixtures {
		idx[f.ID] = f
	}

	return idx, nil
}

// ListAudiencePayments returns the audience's payments, newest first, each
// with its order and fixture.
func (s *Service) ListAudiencePayments(ctx context.Context, audienceID uuid.UUID) ([]domain.PaymentView, error) {
	const op = "service.query.ListAudiencePayments"

	payments, err := s.store.Payments().ListByAudience(ctx, audienceID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	orders, err := s.store.Orders().List(ctx, repository.OrderFilter{AudienceID: audienceID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	byID := make(map[uuid.UUID]domain.Order, len(orders))
	for _, o := range orders {
		o.Payment = nil
		byID[o.ID] = o
	}

	fixtures, err := s.fixtureIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cat, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	views := make([]domain.PaymentView, 0, len(payments))
	for _, p := range payments {
		o := byID[p.OrderID]
		views = append(views, domain.PaymentView{
			Payment: p,
			Order:   o,
			Fixture: cat.summary(fixtures[o.FixtureID]),
		})
	}

	slices.SortStableFunc(views, func(a, b domain.PaymentView) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})

	return views, nil
}

// ETicket renders the PDF ticket of one of the audience's orders.
//
// Returns:
//   - []byte: the PDF document.
//   - error: query.ErrOrderNotFound if the order does not exist or belongs
//     to another audience.
//   - error: eticket.ErrNotPrintable if the order is cancelled.
func (s *Service) ETicket(ctx context.Context, audienceID, orderID uuid.UUID) ([]byte, error) {
	const op = "service.query.ETicket"

	o, err := s.store.Orders().Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrOrderNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if o.AudienceID != audienceID {
		return nil, fmt.Errorf("%s: %w", op, ErrOrderNotFound)
	}

	f, err := s.store.Fixtures().Get(ctx, o.FixtureID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cat, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	in := eticket.Input{Order: *o, Fixture: cat.summary(*f)}
	for _, z := range cat.stadiums[f.StadiumID].Zones {
		if z.ID == o.ZoneID {
			in.ZoneName = z.Name
		}
	}
	if u, err := s.store.Users().Get(ctx, domain.RoleAudience, audienceID); err == nil {
		in.AudienceName = u.Name
	}

	pdf, err := eticket.Render(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return pdf, nil
}
