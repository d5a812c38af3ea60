package fixtures

import (
	"errors"
)

var (
	ErrConflict         = errors.New("fixture clashes with the schedule")
	ErrFixtureNotFound  = errors.New("fixture not found")
	ErrFixtureCancelled = errors.New("fixture is cancelled")
	ErrTeamNotFound     = errors.New("team not found")
	ErrStadiumNotFound  = errors.New("stadium not found")
	ErrSameTeam         = errors.New("a team cannot play itself")
)
