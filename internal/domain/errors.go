package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrInvalidTimeRange = errors.New("start must be before end")
	ErrInvalidSeatLabel = errors.New("seat label has no numeric suffix")
	ErrScheduleConflict = errors.New("schedule conflict")
)

type ConflictKind string

const (
	ConflictStadium ConflictKind = "stadium"
	ConflictTeamOne ConflictKind = "team_one"
	ConflictTeamTwo ConflictKind = "team_two"
)

// ConflictError describes the first existing fixture that clashes with a
// candidate.
type ConflictError struct {
	Kind      ConflictKind
	FixtureID uuid.UUID
}

func (e *ConflictError) Error() string {
	switch e.Kind {
	case ConflictStadium:
		return fmt.Sprintf("stadium has a fixture at the same time (%s)", e.FixtureID)
	case ConflictTeamOne:
		return fmt.Sprintf("team one has another fixture on the same date and time (%s)", e.FixtureID)
	case ConflictTeamTwo:
		return fmt.Sprintf("team two has another fixture on the same date and time (%s)", e.FixtureID)
	}
	return fmt.Sprintf("fixture conflict (%s)", e.FixtureID)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrScheduleConflict
}
