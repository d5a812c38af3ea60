package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invalid wraps a validation failure so callers can match ErrValidation.
func Invalid(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// RequiredID rejects uuid.Nil. validation.Required cannot, since a UUID is a
// fixed-size array and never reports empty.
var RequiredID = validation.By(func(value interface{}) error {
	id, ok := value.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return errors.New("cannot be blank")
	}
	return nil
})

// NonNegative rejects negative decimal amounts.
var NonNegative = validation.By(func(value interface{}) error {
	d, ok := value.(decimal.Decimal)
	if !ok {
		return errors.New("must be a decimal")
	}
	if d.IsNegative() {
		return errors.New("must be at least 0")
	}
	return nil
})

func (t Team) Validate() error {
	return Invalid(validation.ValidateStruct(&t,
		validation.Field(&t.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&t.Abbr, validation.Required, validation.Length(1, 16)),
	))
}

func (s Stadium) Validate() error {
	return Invalid(validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&s.Abbr, validation.Required, validation.Length(1, 64)),
	))
}

func (z Zone) Validate() error {
	return Invalid(validation.ValidateStruct(&z,
		validation.Field(&z.StadiumID, RequiredID),
		validation.Field(&z.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&z.PricePerSeat, NonNegative),
		validation.Field(&z.Size, validation.Required, validation.Min(1)),
	))
}

// ValidateSlot checks the ordering invariant of a time slot.
func ValidateSlot(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return Invalid(errors.New("start and end are required"))
	}
	if !start.Before(end) {
		return fmt.Errorf("%w: %w", ErrValidation, ErrInvalidTimeRange)
	}
	return nil
}

// NormalizeTeamAbbr upper-cases the abbreviation and drops whitespace.
func NormalizeTeamAbbr(abbr string) string {
	return strings.ToUpper(strings.Join(strings.Fields(abbr), ""))
}

// NormalizeStadiumAbbr turns the abbreviation into a lower-case slug:
// whitespace runs become a single dash, anything but letters, digits and
// dashes is dropped.
func NormalizeStadiumAbbr(abbr string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.Join(strings.Fields(abbr), "-")) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}
