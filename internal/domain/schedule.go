package domain

import (
	"time"

	"github.com/google/uuid"
)

// Candidate is a proposed fixture placement checked against the calendar.
type Candidate struct {
	StadiumID uuid.UUID
	TeamOneID uuid.UUID
	TeamTwoID uuid.UUID
	Date      time.Time
	Start     time.Time
	End       time.Time
}

// Day truncates t to its calendar day in UTC. Time slot dates are stored in
// this form so equality on the stored value is calendar-day equality.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Overlaps reports whether the half-open ranges [s1,e1) and [s2,e2) intersect.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

func (f Fixture) involves(teamID uuid.UUID) bool {
	return f.TeamOneID == teamID || f.TeamTwoID == teamID
}

// FindConflict returns the first clash between c and the existing fixtures,
// checking the stadium first, then team one, then team two. Cancelled
// fixtures, fixtures on another day and excludeID are ignored.
func FindConflict(c Candidate, existing []Fixture, excludeID uuid.UUID) *ConflictError {
	day := Day(c.Date)

	var live []Fixture
	for _, f := range existing {
		if f.Status == FixtureCancelled || f.ID == excludeID {
			continue
		}
		if !Day(f.TimeSlot.Date).Equal(day) {
			continue
		}
		if !Overlaps(c.Start, c.End, f.TimeSlot.Start, f.TimeSlot.End) {
			continue
		}
		live = append(live, f)
	}

	for _, f := range live {
		if f.StadiumID == c.StadiumID {
			return &ConflictError{Kind: ConflictStadium, FixtureID: f.ID}
		}
	}
	for _, f := range live {
		if f.involves(c.TeamOneID) {
			return &ConflictError{Kind: ConflictTeamOne, FixtureID: f.ID}
		}
	}
	for _, f := range live {
		if f.involves(c.TeamTwoID) {
			return &ConflictError{Kind: ConflictTeamTwo, FixtureID: f.ID}
		}
	}

	return nil
}

// HasConflict is FindConflict reduced to a yes/no answer.
func HasConflict(c Candidate, existing []Fixture, excludeID uuid.UUID) bool {
	return FindConflict(c, existing, excludeID) != nil
}
