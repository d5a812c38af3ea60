package httpgin

import (
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/matchday/internal/domain"
	"github.com/kirinyoku/matchday/internal/service/fixtures"
	"github.com/shopspring/decimal"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	// Role is AUDIENCE when empty.
	Role domain.Role `json:"role"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type CreateOrderRequest struct {
	FixtureID   uuid.UUID `json:"fixture_id"`
	ZoneID      uuid.UUID `json:"zone_id"`
	NoOfTickets int       `json:"no_of_tickets"`
}

type CancelOrderRequest struct {
	// Reason is one of the cancellation statuses, CANCELLED_BY_ADMIN when
	// empty.
	Reason domain.OrderStatus `json:"reason"`
}

type TeamRequest struct {
	Name string `json:"name" binding:"required"`
	Abbr string `json:"abbr" binding:"required"`
}

type StadiumRequest struct {
	Name string `json:"name" binding:"required"`
	Abbr string `json:"abbr" binding:"required"`
}

type ZoneRequest struct {
	Name         string          `json:"name" binding:"required"`
	PricePerSeat decimal.Decimal `json:"price_per_seat"`
	Size         int             `json:"size"`
}

type FixtureRequest struct {
	TeamOneID uuid.UUID `json:"team_one_id"`
	TeamTwoID uuid.UUID `json:"team_two_id"`
	StadiumID uuid.UUID `json:"stadium_id"`
	// Date is YYYY-MM-DD; the day of Start when empty.
	Date  string    `json:"date"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (r FixtureRequest) fields() (fixtures.Fields, error) {
	f := fixtures.Fields{
		TeamOneID: r.TeamOneID,
		TeamTwoID: r.TeamTwoID,
		StadiumID: r.StadiumID,
		Start:     r.Start,
		End:       r.End,
	}

	if r.Date != "" {
		d, err := time.Parse(time.DateOnly, r.Date)
		if err != nil {
			return fixtures.Fields{}, err
		}
		f.Date = d
	}

	return f, nil
}

type CheckFixtureRequest struct {
	FixtureRequest
	// ExcludeID skips the fixture being edited.
	ExcludeID uuid.UUID `json:"exclude_id"`
}

type CheckFixtureResponse struct {
	Conflict  bool                `json:"conflict"`
	Kind      domain.ConflictKind `json:"kind,omitempty"`
	FixtureID *uuid.UUID          `json:"fixture_id,omitempty"`
	Message   string              `json:"message,omitempty"`
}

func checkResponse(ce *domain.ConflictError) CheckFixtureResponse {
	if ce == nil {
		return CheckFixtureResponse{}
	}

	id := ce.FixtureID
	return CheckFixtureResponse{
		Conflict:  true,
		Kind:      ce.Kind,
		FixtureID: &id,
		Message:   ce.Error(),
	}
}

type CancelFixtureResponse struct {
	Fixture         *domain.Fixture `json:"fixture"`
	CancelledOrders int             `json:"cancelled_orders"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ConflictResponse struct {
	Error     string              `json:"error"`
	Kind      domain.ConflictKind `json:"kind"`
	FixtureID uuid.UUID           `json:"fixture_id"`
}
