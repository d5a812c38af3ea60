package query

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/kirinyoku/matchday/internal/domain"
	"github.com/kirinyoku/matchday/internal/eticket"
	"github.com/kirinyoku/matchday/internal/repository/memory"
	redisrepo "github.com/kirinyoku/matchday/internal/repository/redis"
	"github.com/kirinyoku/matchday/internal/service/fixtures"
	"github.com/kirinyoku/matchday/internal/service/orders"
	"github.com/kirinyoku/matchday/internal/service/users"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type world struct {
	svc      *Service
	orders   *orders.Service
	fixtures *fixtures.Service
	ann      *domain.User
	bob      *domain.User
	zone     domain.Zone
	past     *domain.Fixture
	future   *domain.Fixture
	later    *domain.Fixture
}

func newWorld(t *testing.T) *world {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	w := &world{}

	userSvc := users.New(store, logger)
	var err error
	w.ann, err = userSvc.Register(ctx, users.RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "password1"})
	require.NoError(t, err)
	w.bob, err = userSvc.Register(ctx, users.RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "password2"})
	require.NoError(t, err)

	home := domain.Team{ID: uuid.New(), Name: "Brazil", Abbr: "BRA"}
	away := domain.Team{ID: uuid.New(), Name: "Argentina", Abbr: "ARG"}
	require.NoError(t, store.Teams().Create(ctx, &home))
	require.NoError(t, store.Teams().Create(ctx, &away))
	stadium := domain.Stadium{ID: uuid.New(), Name: "Maracana", Abbr: "maracana"}
	require.NoError(t, store.Stadiums().Create(ctx, &stadium))
	w.zone = domain.Zone{ID: uuid.New(), StadiumID: stadium.ID, Name: "Zone A", PricePerSeat: decimal.NewFromInt(100), Size: 100}
	require.NoError(t, store.Zones().Create(ctx, &w.zone))

	w.orders = orders.New(store, nil, nil, logger, orders.Config{})
	w.fixtures = fixtures.New(store, nil, w.orders, nil, logger)

	save := func(start time.Time) *domain.Fixture {
		f, err := w.fixtures.Save(ctx, fixtures.Create{Fields: fixtures.Fields{
			TeamOneID: home.ID,
			TeamTwoID: away.ID,
			StadiumID: stadium.ID,
			Start:     start,
			End:       start.Add(2 * time.Hour),
		}})
		require.NoError(t, err)
		return f
	}
	w.past = save(now.AddDate(0, 0, -7))
	w.future = save(now.AddDate(0, 0, 7))
	w.later = save(now.AddDate(0, 0, 14))

	w.svc = New(store, nil, Config{})
	w.svc.now = func() time.Time { return now }

	return w
}

func (w *world) order(t *testing.T, audience *domain.User, fixture *domain.Fixture, n int) *domain.Order {
	t.Helper()
	o, err := w.orders.CreateOrder(context.Background(), orders.CreateOrderInput{
		AudienceID:  audience.ID,
		FixtureID:   fixture.ID,
		ZoneID:      w.zone.ID,
		NoOfTickets: n,
	})
	require.NoError(t, err)
	return o
}

func TestListFixtures(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	w.order(t, w.ann, w.future, 2)
	_, _, err := w.fixtures.Cancel(ctx, w.later.ID)
	require.NoError(t, err)

	views, err := w.svc.ListFixtures(ctx)
	require.NoError(t, err)
	require.Len(t, views, 3)

	// CONFIRMED sorts before CANCELLED, then latest date first
	assert.Equal(t, w.future.ID, views[0].ID)
	assert.Equal(t, w.past.ID, views[1].ID)
	assert.Equal(t, w.later.ID, views[2].ID)
	assert.Equal(t, domain.FixtureCancelled, views[2].Status)

	assert.Equal(t, "BRA", views[0].TeamOne.Abbr)
	assert.Equal(t, "ARG", views[0].TeamTwo.Abbr)
	assert.Equal(t, "Maracana", views[0].Stadium.Name)
	require.Len(t, views[0].Orders, 1)
	assert.Empty(t, views[1].Orders)
}

func TestListUpcomingFixtures(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	w.order(t, w.ann, w.future, 2)
	w.order(t, w.bob, w.future, 3)
	cancelled := w.order(t, w.bob, w.future, 4)
	_, err := w.orders.CancelOrder(ctx, cancelled.ID, domain.OrderCancelledByUser)
	require.NoError(t, err)

	views, err := w.svc.ListUpcomingFixtures(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, w.later.ID, views[0].ID)
	assert.Equal(t, w.future.ID, views[1].ID)

	assert.Equal(t, 5, views[1].Sold[w.zone.ID.String()])
	assert.Equal(t, 0, views[0].Sold[w.zone.ID.String()])
	require.Len(t, views[1].Stadium.Zones, 1)
}

func TestListUpcomingFixtures_FromCache(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	start := now.Add(48 * time.Hour)
	cachedViews := []domain.FixtureView{
		{Fixture: domain.Fixture{ID: uuid.New(), Status: domain.FixtureConfirmed, TimeSlot: domain.TimeSlot{Start: start, End: start.Add(time.Hour)}}},
		{Fixture: domain.Fixture{ID: uuid.New(), Status: domain.FixtureConfirmed, TimeSlot: domain.TimeSlot{Start: now.Add(-time.Hour), End: now.Add(time.Hour)}}},
	}
	b, err := json.Marshal(cachedViews)
	require.NoError(t, err)

	mock.ExpectGet(redisrepo.KeyUpcomingFixtures()).SetVal(string(b))

	// an empty store proves the listing came from redis
	svc := New(memory.NewStore(), redisrepo.New(db), Config{})
	svc.now = func() time.Time { return now }

	views, err := svc.ListUpcomingFixtures(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, cachedViews[0].ID, views[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAudienceOrdersAndPayments(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	first := w.order(t, w.ann, w.future, 1)
	second := w.order(t, w.ann, w.later, 2)
	w.order(t, w.bob, w.future, 1)

	_, err := w.orders.CancelOrder(ctx, second.ID, domain.OrderCancelledByUser)
	require.NoError(t, err)

	mine, err := w.svc.ListAudienceOrders(ctx, w.ann.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	// status descending puts SUCCESS ahead of CANCELLED_BY_USER
	assert.Equal(t, first.ID, mine[0].ID)
	assert.Equal(t, second.ID, mine[1].ID)
	assert.Equal(t, "Ann", mine[0].AudienceName)
	assert.Equal(t, "ann@example.com", mine[0].AudienceEmail)
	assert.Equal(t, w.future.ID, mine[0].Fixture.ID)
	assert.Equal(t, "BRA", mine[0].Fixture.TeamOne.Abbr)
	assert.Empty(t, mine[1].Tickets)

	all, err := w.svc.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	payments, err := w.svc.ListAudiencePayments(ctx, w.ann.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	for _, p := range payments {
		assert.Equal(t, w.ann.ID, p.AudienceID)
		assert.Equal(t, p.OrderID, p.Order.ID)
		assert.Equal(t, p.Order.FixtureID, p.Fixture.ID)
	}
}

func TestETicket(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	o := w.order(t, w.ann, w.future, 2)

	pdf, err := w.svc.ETicket(ctx, w.ann.ID, o.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	_, err = w.svc.ETicket(ctx, w.bob.ID, o.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = w.svc.ETicket(ctx, w.ann.ID, uuid.New())
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = w.orders.CancelOrder(ctx, o.ID, "")
	require.NoError(t, err)

	_, err = w.svc.ETicket(ctx, w.ann.ID, o.ID)
	assert.ErrorIs(t, err, eticket.ErrNotPrintable)
}
