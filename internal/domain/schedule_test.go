package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(day time.Time, hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func TestOverlaps(t *testing.T) {
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		s1, e1 time.Time
		s2, e2 time.Time
		want   bool
	}{
		{"inside", at(base, 15, 0), at(base, 16, 0), at(base, 14, 0), at(base, 17, 0), true},
		{"containing", at(base, 13, 0), at(base, 18, 0), at(base, 14, 0), at(base, 17, 0), true},
		{"left edge", at(base, 13, 0), at(base, 15, 0), at(base, 14, 0), at(base, 17, 0), true},
		{"right edge", at(base, 16, 0), at(base, 19, 0), at(base, 14, 0), at(base, 17, 0), true},
		{"identical", at(base, 14, 0), at(base, 17, 0), at(base, 14, 0), at(base, 17, 0), true},
		{"touching end", at(base, 17, 0), at(base, 19, 0), at(base, 14, 0), at(base, 17, 0), false},
		{"touching start", at(base, 12, 0), at(base, 14, 0), at(base, 14, 0), at(base, 17, 0), false},
		{"disjoint", at(base, 9, 0), at(base, 11, 0), at(base, 14, 0), at(base, 17, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.s1, tt.e1, tt.s2, tt.e2))
			assert.Equal(t, tt.want, Overlaps(tt.s2, tt.e2, tt.s1, tt.e1))
		})
	}
}

type calendar struct {
	day       time.Time
	stadium   uuid.UUID
	otherPark uuid.UUID
	home      uuid.UUID
	away      uuid.UUID
	third     uuid.UUID
	fourth    uuid.UUID
	existing  Fixture
}

func newCalendar() calendar {
	c := calendar{
		day:       time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		stadium:   uuid.New(),
		otherPark: uuid.New(),
		home:      uuid.New(),
		away:      uuid.New(),
		third:     uuid.New(),
		fourth:    uuid.New(),
	}
	c.existing = Fixture{
		ID:        uuid.New(),
		TeamOneID: c.home,
		TeamTwoID: c.away,
		StadiumID: c.stadium,
		Status:    FixtureConfirmed,
		TimeSlot: TimeSlot{
			Date:  c.day,
			Start: at(c.day, 14, 0),
			End:   at(c.day, 17, 0),
		},
	}
	return c
}

func TestFindConflict_TimeShapes(t *testing.T) {
	c := newCalendar()

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"fully inside", at(c.day, 15, 0), at(c.day, 16, 0), true},
		{"fully containing", at(c.day, 12, 0), at(c.day, 19, 0), true},
		{"overlapping start", at(c.day, 13, 0), at(c.day, 15, 0), true},
		{"overlapping end", at(c.day, 16, 30), at(c.day, 18, 0), true},
		{"disjoint same day", at(c.day, 18, 0), at(c.day, 20, 0), false},
		{"back to back", at(c.day, 17, 0), at(c.day, 19, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cand := Candidate{
				StadiumID: c.stadium,
				TeamOneID: c.third,
				TeamTwoID: c.fourth,
				Date:      c.day,
				Start:     tt.start,
				End:       tt.end,
			}
			assert.Equal(t, tt.want, HasConflict(cand, []Fixture{c.existing}, uuid.Nil))
		})
	}
}

func TestFindConflict_DifferentDay(t *testing.T) {
	c := newCalendar()
	next := c.day.AddDate(0, 0, 1)

	// same clock range and same stadium/teams, but the stored date differs
	cand := Candidate{
		StadiumID: c.stadium,
		TeamOneID: c.home,
		TeamTwoID: c.away,
		Date:      next,
		Start:     at(c.day, 14, 0),
		End:       at(c.day, 17, 0),
	}

	assert.False(t, HasConflict(cand, []Fixture{c.existing}, uuid.Nil))
}

func TestFindConflict_Kinds(t *testing.T) {
	c := newCalendar()
	start, end := at(c.day, 15, 0), at(c.day, 16, 0)

	t.Run("stadium wins over teams", func(t *testing.T) {
		got := FindConflict(Candidate{StadiumID: c.stadium, TeamOneID: c.home, TeamTwoID: c.third, Date: c.day, Start: start, End: end}, []Fixture{c.existing}, uuid.Nil)
		require.NotNil(t, got)
		assert.Equal(t, ConflictStadium, got.Kind)
		assert.Equal(t, c.existing.ID, got.FixtureID)
		assert.ErrorIs(t, got, ErrScheduleConflict)
	})

	t.Run("team one plays elsewhere", func(t *testing.T) {
		got := FindConflict(Candidate{StadiumID: c.otherPark, TeamOneID: c.away, TeamTwoID: c.third, Date: c.day, Start: start, End: end}, []Fixture{c.existing}, uuid.Nil)
		require.NotNil(t, got)
		assert.Equal(t, ConflictTeamOne, got.Kind)
	})

	t.Run("team two plays elsewhere", func(t *testing.T) {
		got := FindConflict(Candidate{StadiumID: c.otherPark, TeamOneID: c.third, TeamTwoID: c.home, Date: c.day, Start: start, End: end}, []Fixture{c.existing}, uuid.Nil)
		require.NotNil(t, got)
		assert.Equal(t, ConflictTeamTwo, got.Kind)
	})

	t.Run("unrelated teams and stadium", func(t *testing.T) {
		got := FindConflict(Candidate{StadiumID: c.otherPark, TeamOneID: c.third, TeamTwoID: c.fourth, Date: c.day, Start: start, End: end}, []Fixture{c.existing}, uuid.Nil)
		assert.Nil(t, got)
	})
}

func TestFindConflict_IgnoresCancelledAndExcluded(t *testing.T) {
	c := newCalendar()
	cand := Candidate{StadiumID: c.stadium, TeamOneID: c.home, TeamTwoID: c.away, Date: c.day, Start: at(c.day, 14, 0), End: at(c.day, 17, 0)}

	assert.False(t, HasConflict(cand, []Fixture{c.existing}, c.existing.ID))

	cancelled := c.existing
	cancelled.Status = FixtureCancelled
	assert.False(t, HasConflict(cand, []Fixture{cancelled}, uuid.Nil))
}

func TestDay(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	got := Day(time.Date(2026, 5, 2, 1, 30, 0, 0, loc))
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), got)
}
