package catalog

import (
	"errors"
)

var (
	ErrTeamConflict    = errors.New("team abbreviation already in use")
	ErrStadiumConflict = errors.New("stadium abbreviation already in use")
	ErrTeamNotFound    = errors.New("team not found")
	ErrStadiumNotFound = errors.New("stadium not found")
	ErrZoneNotFound    = errors.New("zone not found")
)
