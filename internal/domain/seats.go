package domain

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SeatPrefix builds the seat-label prefix of a zone from the upper-cased
// initial of every whitespace-separated word: "Zone A" -> "ZA".
func SeatPrefix(zoneName string) string {
	var b strings.Builder
	for _, word := range strings.Fields(zoneName) {
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// AllocateSeats returns count consecutive seat labels for the zone, starting
// right after priorMax. It is pure: persisting the labels is up to the caller.
func AllocateSeats(zoneName string, count, priorMax int) ([]string, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: seat count must be at least 1, got %d", ErrValidation, count)
	}
	if priorMax < 0 {
		return nil, fmt.Errorf("%w: prior seat index must not be negative, got %d", ErrValidation, priorMax)
	}

	prefix := SeatPrefix(zoneName)
	seats := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		seats = append(seats, prefix+strconv.Itoa(priorMax+i))
	}

	return seats, nil
}

// MaxSeatIndex returns the highest of the stored seat indexes, 0 when there
// are none. Indexes are kept next to the labels because a prefix may itself
// end in a digit ("Stand 1" -> "S1"), so a label alone cannot be split. An
// index below 1 marks a seat whose label never had a numeric suffix and
// fails the whole computation.
func MaxSeatIndex(indexes []int) (int, error) {
	highest := 0
	for _, n := range indexes {
		if n < 1 {
			return 0, fmt.Errorf("%w: stored index %d", ErrInvalidSeatLabel, n)
		}
		highest = max(highest, n)
	}
	return highest, nil
}
