package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatPrefix(t *testing.T) {
	tests := []struct {
		name string
		zone string
		want string
	}{
		{name: "two words", zone: "Zone A", want: "ZA"},
		{name: "lower case", zone: "north stand upper", want: "NSU"},
		{name: "extra whitespace", zone: "  East   Wing ", want: "EW"},
		{name: "single word", zone: "Pavilion", want: "P"},
		{name: "empty", zone: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SeatPrefix(tt.zone))
		})
	}
}

func TestAllocateSeats(t *testing.T) {
	seats, err := AllocateSeats("Zone A", 3, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"ZA1", "ZA2", "ZA3"}, seats)

	seats, err = AllocateSeats("Zone A", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"ZA4", "ZA5"}, seats)
}

func TestAllocateSeats_RejectsBadInput(t *testing.T) {
	_, err := AllocateSeats("Zone A", 0, 0)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = AllocateSeats("Zone A", 1, -1)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMaxSeatIndex(t *testing.T) {
	n, err := MaxSeatIndex(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = MaxSeatIndex([]int{2, 10, 9})
	require.NoError(t, err)
	assert.Equal(t, 10, n)
}

func TestMaxSeatIndex_InvalidIndex(t *testing.T) {
	_, err := MaxSeatIndex([]int{1, 0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidSeatLabel))
}

func TestAllocateAfterHistory(t *testing.T) {
	var (
		history []string
		indexes []int
	)
	for _, n := range []int{3, 1, 4} {
		prior, err := MaxSeatIndex(indexes)
		require.NoError(t, err)

		seats, err := AllocateSeats("Zone B", n, prior)
		require.NoError(t, err)
		history = append(history, seats...)
		for i := range seats {
			indexes = append(indexes, prior+i+1)
		}
	}

	assert.Equal(t, []string{"ZB1", "ZB2", "ZB3", "ZB4", "ZB5", "ZB6", "ZB7", "ZB8"}, history)
}

func TestAllocateSeats_ZoneNameEndingInDigit(t *testing.T) {
	assert.Equal(t, "S1", SeatPrefix("Stand 1"))

	var indexes []int
	var last []string
	for range 20 {
		prior, err := MaxSeatIndex(indexes)
		require.NoError(t, err)

		seats, err := AllocateSeats("Stand 1", 1, prior)
		require.NoError(t, err)
		indexes = append(indexes, prior+1)
		last = seats
	}

	assert.Equal(t, []string{"S120"}, last)
}
