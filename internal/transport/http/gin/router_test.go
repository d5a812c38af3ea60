package httpgin

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/kirinyoku/matchday/internal/auth"
	"github.com/kirinyoku/matchday/internal/domain"
	"github.com/kirinyoku/matchday/internal/repository/memory"
	redisrepo "github.com/kirinyoku/matchday/internal/repository/redis"
	"github.com/kirinyoku/matchday/internal/service"
	"github.com/kirinyoku/matchday/internal/service/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// kickoff is far enough ahead to count as upcoming.
var kickoff = time.Date(2030, time.June, 14, 18, 0, 0, 0, time.UTC)

type nopNotifier struct{}

func (nopNotifier) FixtureChanged(context.Context, uuid.UUID) {}

type denyLimiter struct{}

func (denyLimiter) Allow(context.Context, string) (bool, int64, time.Duration, error) {
	return false, 11, 1500 * time.Millisecond, nil
}

type testServer struct {
	t          *testing.T
	engine     *gin.Engine
	svcs       *service.Services
	issuer     *auth.Issuer
	adminToken string
}

func newTestServer(t *testing.T, limiter RateLimiter) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svcs := service.NewServices(memory.NewStore(), nil, nopNotifier{}, nil, logger, service.Config{})
	issuer := auth.NewIssuer("test-secret", time.Hour)

	admin, err := svcs.Users.CreateAdmin(context.Background(), users.RegisterInput{
		Name:     "Root",
		Email:    "root@example.com",
		Password: "admin-password",
	})
	require.NoError(t, err)
	adminToken, err := issuer.Issue(admin)
	require.NoError(t, err)

	return &testServer{
		t:          t,
		engine:     NewRouter(Deps{Services: svcs, Issuer: issuer, Limiter: limiter, Logger: logger}),
		svcs:       svcs,
		issuer:     issuer,
		adminToken: adminToken,
	}
}

func (s *testServer) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		r = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (s *testServer) register(email string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/auth/register", "", RegisterRequest{Name: "Fan", Email: email, Password: "supporter-pass"})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[AuthResponse](s.t, w).Token
}

type catalogIDs struct {
	home, away, stadium, zone uuid.UUID
}

func (s *testServer) seedCatalog() catalogIDs {
	s.t.Helper()

	w := s.do(http.MethodPost, "/admin/teams", s.adminToken, TeamRequest{Name: "Japan", Abbr: "jpn"})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	home := decode[domain.Team](s.t, w)
	assert.Equal(s.t, "JPN", home.Abbr)

	w = s.do(http.MethodPost, "/admin/teams", s.adminToken, TeamRequest{Name: "Korea Republic", Abbr: "KOR"})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	away := decode[domain.Team](s.t, w)

	w = s.do(http.MethodPost, "/admin/stadiums", s.adminToken, StadiumRequest{Name: "Saitama Stadium", Abbr: "Saitama 2002"})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	stadium := decode[domain.Stadium](s.t, w)
	assert.Equal(s.t, "saitama-2002", stadium.Abbr)

	w = s.do(http.MethodPost, "/admin/stadiums/"+stadium.ID.String()+"/zones", s.adminToken,
		map[string]any{"name": "Lower Bowl", "price_per_seat": "45.50", "size": 100})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	zone := decode[domain.Zone](s.t, w)

	return catalogIDs{home: home.ID, away: away.ID, stadium: stadium.ID, zone: zone.ID}
}

func (s *testServer) createFixture(ids catalogIDs, start time.Time) domain.Fixture {
	s.t.Helper()
	w := s.do(http.MethodPost, "/admin/fixtures", s.adminToken, FixtureRequest{
		TeamOneID: ids.home,
		TeamTwoID: ids.away,
		StadiumID: ids.stadium,
		Start:     start,
		End:       start.Add(2 * time.Hour),
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[domain.Fixture](s.t, w)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAuth(t *testing.T) {
	s := newTestServer(t, nil)

	s.register("Fan@Example.com")

	w := s.do(http.MethodPost, "/auth/register", "", RegisterRequest{Name: "Other", Email: "fan@example.com", Password: "another-pass"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/auth/register", "", RegisterRequest{Name: "Short", Email: "short@example.com", Password: "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/auth/login", "", LoginRequest{Email: "fan@example.com", Password: "supporter-pass"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[AuthResponse](t, w)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, domain.RoleAudience, resp.User.Role)

	w = s.do(http.MethodPost, "/auth/login", "", LoginRequest{Email: "fan@example.com", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// an audience account cannot sign in as admin
	w = s.do(http.MethodPost, "/auth/login", "", LoginRequest{Email: "fan@example.com", Password: "supporter-pass", Role: domain.RoleAdmin})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/auth/login", "", LoginRequest{Email: "root@example.com", Password: "admin-password", Role: domain.RoleAdmin})
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/auth/login", "", LoginRequest{Email: "root@example.com", Password: "admin-password", Role: "OWNER"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoleGuards(t *testing.T) {
	s := newTestServer(t, nil)
	fan := s.register("fan@example.com")

	w := s.do(http.MethodGet, "/admin/teams", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/admin/teams", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/admin/teams", fan, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/me/orders", s.adminToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/admin/teams", s.adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFixtureScheduling(t *testing.T) {
	s := newTestServer(t, nil)
	ids := s.seedCatalog()

	start := kickoff
	fixture := s.createFixture(ids, start)
	assert.Equal(t, domain.FixtureConfirmed, fixture.Status)

	w := s.do(http.MethodPost, "/admin/teams", s.adminToken, TeamRequest{Name: "Iran", Abbr: "IRN"})
	require.Equal(t, http.StatusCreated, w.Code)
	third := decode[domain.Team](t, w)
	w = s.do(http.MethodPost, "/admin/teams", s.adminToken, TeamRequest{Name: "Qatar", Abbr: "QAT"})
	require.Equal(t, http.StatusCreated, w.Code)
	fourth := decode[domain.Team](t, w)

	// other teams, same stadium, overlapping hour
	overlap := FixtureRequest{
		TeamOneID: third.ID,
		TeamTwoID: fourth.ID,
		StadiumID: ids.stadium,
		Start:     start.Add(time.Hour),
		End:       start.Add(3 * time.Hour),
	}

	w = s.do(http.MethodPost, "/admin/fixtures/check", s.adminToken, CheckFixtureRequest{FixtureRequest: overlap})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	check := decode[CheckFixtureResponse](t, w)
	assert.True(t, check.Conflict)
	assert.Equal(t, domain.ConflictStadium, check.Kind)
	require.NotNil(t, check.FixtureID)
	assert.Equal(t, fixture.ID, *check.FixtureID)

	w = s.do(http.MethodPost, "/admin/fixtures", s.adminToken, overlap)
	require.Equal(t, http.StatusConflict, w.Code)
	conflict := decode[ConflictResponse](t, w)
	assert.Equal(t, domain.ConflictStadium, conflict.Kind)
	assert.Equal(t, fixture.ID, conflict.FixtureID)

	// moving the existing fixture within its own slot is not a clash
	w = s.do(http.MethodPut, "/admin/fixtures/"+fixture.ID.String(), s.adminToken, FixtureRequest{
		TeamOneID: ids.home,
		TeamTwoID: ids.away,
		StadiumID: ids.stadium,
		Start:     start.Add(30 * time.Minute),
		End:       start.Add(150 * time.Minute),
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/admin/fixtures", s.adminToken, FixtureRequest{
		TeamOneID: ids.home,
		TeamTwoID: ids.home,
		StadiumID: ids.stadium,
		Start:     start.Add(72 * time.Hour),
		End:       start.Add(74 * time.Hour),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/admin/fixtures/not-a-uuid", s.adminToken, overlap)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/admin/fixtures/"+uuid.NewString()+"/cancel", s.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingFlow(t *testing.T) {
	s := newTestServer(t, nil)
	ids := s.seedCatalog()
	fixture := s.createFixture(ids, kickoff)
	fan := s.register("fan@example.com")

	w := s.do(http.MethodPost, "/orders", fan, CreateOrderRequest{FixtureID: fixture.ID, ZoneID: ids.zone, NoOfTickets: 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode[domain.Order](t, w)
	assert.Equal(t, []string{"LB1", "LB2"}, order.SeatLabels())
	require.NotNil(t, order.Payment)
	assert.Equal(t, "91", order.Payment.Amount.String())

	w = s.do(http.MethodPost, "/orders", fan, CreateOrderRequest{FixtureID: fixture.ID, ZoneID: ids.zone, NoOfTickets: 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/me/orders", fan, nil)
	require.Equal(t, http.StatusOK, w.Code)
	mine := decode[[]domain.OrderView](t, w)
	require.Len(t, mine, 1)
	assert.Equal(t, "Fan", mine[0].AudienceName)

	w = s.do(http.MethodGet, "/me/payments", fan, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.PaymentView](t, w), 1)

	w = s.do(http.MethodGet, "/me/orders/"+order.ID.String()+"/eticket", fan, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	// another audience member cannot see the order
	other := s.register("other@example.com")
	w = s.do(http.MethodGet, "/me/orders/"+order.ID.String()+"/eticket", other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodPost, "/me/orders/"+order.ID.String()+"/cancel", other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/admin/fixtures/"+fixture.ID.String()+"/cancel", s.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cancelled := decode[CancelFixtureResponse](t, w)
	assert.Equal(t, 1, cancelled.CancelledOrders)
	assert.Equal(t, domain.FixtureCancelled, cancelled.Fixture.Status)

	w = s.do(http.MethodGet, "/me/orders/"+order.ID.String()+"/eticket", fan, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/orders", fan, CreateOrderRequest{FixtureID: fixture.ID, ZoneID: ids.zone, NoOfTickets: 1})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodGet, "/admin/orders", s.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[[]domain.OrderView](t, w)
	require.Len(t, all, 1)
	assert.Equal(t, domain.OrderMatchCancelled, all[0].Status)
}

func TestAdminCancelOrder(t *testing.T) {
	s := newTestServer(t, nil)
	ids := s.seedCatalog()
	fixture := s.createFixture(ids, kickoff)
	fan := s.register("fan@example.com")

	w := s.do(http.MethodPost, "/orders", fan, CreateOrderRequest{FixtureID: fixture.ID, ZoneID: ids.zone, NoOfTickets: 1})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode[domain.Order](t, w)
	path := "/admin/orders/" + order.ID.String() + "/cancel"

	w = s.do(http.MethodPost, path, s.adminToken, CancelOrderRequest{Reason: domain.OrderSuccess})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, path, s.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.OrderCancelledByAdmin, decode[domain.Order](t, w).Status)

	w = s.do(http.MethodPost, path, s.adminToken, CancelOrderRequest{Reason: domain.OrderMatchPostponed})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.OrderMatchPostponed, decode[domain.Order](t, w).Status)

	w = s.do(http.MethodPost, "/admin/orders/"+uuid.NewString()+"/cancel", s.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListFixtures_ETag(t *testing.T) {
	s := newTestServer(t, nil)
	ids := s.seedCatalog()
	s.createFixture(ids, kickoff)

	w := s.do(http.MethodGet, "/fixtures/upcoming", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	views := decode[[]domain.FixtureView](t, w)
	require.Len(t, views, 1)
	assert.Equal(t, "Japan", views[0].TeamOne.Name)

	tag := w.Header().Get("ETag")
	require.NotEmpty(t, tag)

	w = s.do(http.MethodGet, "/fixtures/upcoming", "", nil, "If-None-Match", tag)
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.Bytes())

	w = s.do(http.MethodGet, "/fixtures", "", nil, "If-None-Match", `W/"stale"`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateOrder_RateLimited(t *testing.T) {
	s := newTestServer(t, denyLimiter{})
	fan := s.register("fan@example.com")

	w := s.do(http.MethodPost, "/orders", fan, CreateOrderRequest{FixtureID: uuid.New(), ZoneID: uuid.New(), NoOfTickets: 1})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
}

func TestETagMatches(t *testing.T) {
	tag := `W/"abc"`

	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{`W/"abc"`, true},
		{`"abc"`, true},
		{`W/"old", W/"abc"`, true},
		{`W/"old"`, false},
		{"*", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, etagMatches(tt.header, tag), tt.header)
	}
}

func TestCreateOrder_IdempotencyKey(t *testing.T) {
	s := newTestServer(t, nil)
	ids := s.seedCatalog()
	fixture := s.createFixture(ids, kickoff)

	w := s.do(http.MethodPost, "/auth/register", "", RegisterRequest{Name: "Fan", Email: "fan@example.com", Password: "supporter-pass"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	fan := decode[AuthResponse](t, w)

	rdb, mock := redismock.NewClientMock()
	s.engine = NewRouter(Deps{
		Services: s.svcs,
		Issuer:   s.issuer,
		Idem:     redisrepo.NewIdempotencyStore(rdb, time.Hour),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	key := redisrepo.KeyIdemOrder(fan.User.ID, "order-1")
	req := CreateOrderRequest{FixtureID: fixture.ID, ZoneID: ids.zone, NoOfTickets: 2}

	t.Run("replays the stored order", func(t *testing.T) {
		mock.ExpectGet(key).SetVal("RES:" + requestFingerprint(req) + `:{"id":"stored"}`)

		w := s.do(http.MethodPost, "/orders", fan.Token, req, "Idempotency-Key", "order-1")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.JSONEq(t, `{"id":"stored"}`, w.Body.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects the key for a different order", func(t *testing.T) {
		other := req
		other.NoOfTickets = 5
		mock.ExpectGet(key).SetVal("RES:" + requestFingerprint(req) + `:{"id":"stored"}`)

		w := s.do(http.MethodPost, "/orders", fan.Token, other, "Idempotency-Key", "order-1")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	views, err := s.svcs.Query.ListAudienceOrders(context.Background(), fan.User.ID)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestRequestFingerprint(t *testing.T) {
	req := CreateOrderRequest{FixtureID: uuid.New(), ZoneID: uuid.New(), NoOfTickets: 2}

	assert.Equal(t, requestFingerprint(req), requestFingerprint(req))

	other := req
	other.NoOfTickets = 3
	assert.NotEqual(t, requestFingerprint(req), requestFingerprint(other))
}
