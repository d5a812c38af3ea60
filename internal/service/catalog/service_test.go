package catalog

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/kirinyoku/matchday/internal/domain"
	"github.com/kirinyoku/matchday/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct{ calls int }

func (c *counter) FixtureChanged(ctx context.Context, fixtureID uuid.UUID) { c.calls++ }

func newService(t *testing.T) (*Service, *counter) {
	t.Helper()
	n := &counter{}
	return New(memory.NewStore(), nil, n, slog.New(slog.NewTextHandler(io.Discard, nil))), n
}

func TestTeams(t *testing.T) {
	svc, n := newService(t)
	ctx := context.Background()

	bra, err := svc.CreateTeam(ctx, TeamInput{Name: "Brazil", Abbr: " b r a "})
	require.NoError(t, err)
	assert.Equal(t, "BRA", bra.Abbr)

	_, err = svc.CreateTeam(ctx, TeamInput{Name: "Brasil", Abbr: "bra"})
	assert.ErrorIs(t, err, ErrTeamConflict)

	_, err = svc.CreateTeam(ctx, TeamInput{Name: "", Abbr: "XYZ"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	arg, err := svc.CreateTeam(ctx, TeamInput{Name: "Argentina", Abbr: "ARG"})
	require.NoError(t, err)

	_, err = svc.UpdateTeam(ctx, arg.ID, TeamInput{Name: "Argentina", Abbr: "BRA"})
	assert.ErrorIs(t, err, ErrTeamConflict)

	_, err = svc.UpdateTeam(ctx, uuid.New(), TeamInput{Name: "Chile", Abbr: "CHI"})
	assert.ErrorIs(t, err, ErrTeamNotFound)

	renamed, err := svc.UpdateTeam(ctx, arg.ID, TeamInput{Name: "Argentina FC", Abbr: "arg"})
	require.NoError(t, err)
	assert.Equal(t, "ARG", renamed.Abbr)
	assert.Equal(t, 1, n.calls)

	teams, err := svc.ListTeams(ctx)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "Argentina FC", teams[0].Name)
}

func TestStadiumsAndZones(t *testing.T) {
	svc, n := newService(t)
	ctx := context.Background()

	st, err := svc.CreateStadium(ctx, StadiumInput{Name: "Estadio Azteca", Abbr: "Estadio Azteca!"})
	require.NoError(t, err)
	assert.Equal(t, "estadio-azteca", st.Abbr)
	assert.Empty(t, st.Zones)

	_, err = svc.CreateStadium(ctx, StadiumInput{Name: "Azteca", Abbr: "estadio-azteca"})
	assert.ErrorIs(t, err, ErrStadiumConflict)

	zone, err := svc.CreateZone(ctx, st.ID, ZoneInput{Name: "Upper Ring", PricePerSeat: decimal.RequireFromString("45.50"), Size: 200})
	require.NoError(t, err)

	_, err = svc.CreateZone(ctx, st.ID, ZoneInput{Name: "Pit", PricePerSeat: decimal.NewFromInt(-1), Size: 10})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.CreateZone(ctx, st.ID, ZoneInput{Name: "Pit", PricePerSeat: decimal.Zero, Size: 0})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.CreateZone(ctx, uuid.New(), ZoneInput{Name: "Pit", PricePerSeat: decimal.Zero, Size: 10})
	assert.ErrorIs(t, err, ErrStadiumNotFound)

	updated, err := svc.UpdateZone(ctx, zone.ID, ZoneInput{Name: "Upper Ring", PricePerSeat: decimal.NewFromInt(50), Size: 250})
	require.NoError(t, err)
	assert.Equal(t, st.ID, updated.StadiumID)
	assert.Equal(t, 250, updated.Size)

	_, err = svc.UpdateZone(ctx, uuid.New(), ZoneInput{Name: "X", Size: 1})
	assert.ErrorIs(t, err, ErrZoneNotFound)

	got, err := svc.GetStadium(ctx, st.ID)
	require.NoError(t, err)
	require.Len(t, got.Zones, 1)
	assert.True(t, decimal.NewFromInt(50).Equal(got.Zones[0].PricePerSeat))

	renamed, err := svc.UpdateStadium(ctx, st.ID, StadiumInput{Name: "Azteca", Abbr: "azteca"})
	require.NoError(t, err)
	assert.Equal(t, "azteca", renamed.Abbr)
	assert.Len(t, renamed.Zones, 1)

	_, err = svc.GetStadium(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrStadiumNotFound)

	assert.Equal(t, 3, n.calls)
}
