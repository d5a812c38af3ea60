package orders

import (
	"errors"
)

var (
	ErrFixtureNotFound   = errors.New("fixture not found")
	ErrFixtureCancelled  = errors.New("fixture is cancelled")
	ErrZoneNotFound      = errors.New("zone not found")
	ErrZoneNotInStadium  = errors.New("zone does not belong to the fixture's stadium")
	ErrCapacityExceeded  = errors.New("not enough seats left in zone")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidReason     = errors.New("reason is not a cancellation status")
	ErrSeatAlreadyIssued = errors.New("seat already issued")
)
