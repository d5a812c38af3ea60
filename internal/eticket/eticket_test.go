package eticket

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/matchday/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInput() Input {
	day := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	orderID := uuid.New()
	return Input{
		Order: domain.Order{
			ID:     orderID,
			Status: domain.OrderSuccess,
			Tickets: []domain.Ticket{
				{SeatNo: "ZA1"},
				{SeatNo: "ZA2"},
			},
			Payment: &domain.Payment{Amount: decimal.NewFromInt(200), Method: domain.PaymentCreditCard},
		},
		Fixture: domain.FixtureSummary{
			TeamOne: domain.Team{Name: "Brazil"},
			TeamTwo: domain.Team{Name: "Argentina"},
			Stadium: domain.Stadium{Name: "Maracana"},
			Slot:    domain.TimeSlot{Date: day, Start: day.Add(18 * time.Hour), End: day.Add(20 * time.Hour)},
		},
		ZoneName:     "Zone A",
		AudienceName: "Ann",
	}
}

func TestRender(t *testing.T) {
	b, err := Render(sampleInput())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF-")))
}

func TestRender_RejectsCancelledOrder(t *testing.T) {
	in := sampleInput()
	in.Order.Status = domain.OrderCancelledByUser

	_, err := Render(in)
	assert.ErrorIs(t, err, ErrNotPrintable)
}

func TestVerifyPayload(t *testing.T) {
	in := sampleInput()
	assert.Equal(t, "matchday:order:"+in.Order.ID.String()+":ZA1,ZA2", VerifyPayload(in.Order))
}
