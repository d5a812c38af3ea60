package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type FixtureStatus string

const (
	FixtureConfirmed FixtureStatus = "CONFIRMED"
	FixtureCancelled FixtureStatus = "CANCELLED"
)

type OrderStatus string

const (
	OrderSuccess          OrderStatus = "SUCCESS"
	OrderMatchPostponed   OrderStatus = "MATCH_POSTPONED"
	OrderMatchCancelled   OrderStatus = "MATCH_CANCELLED"
	OrderCancelledByAdmin OrderStatus = "CANCELLED_BY_ADMIN"
	OrderCancelledByUser  OrderStatus = "CANCELLED_BY_USER"
)

// IsCancellation reports whether s is one of the terminal cancellation
// statuses an order can move to from SUCCESS.
func (s OrderStatus) IsCancellation() bool {
	switch s {
	case OrderMatchPostponed, OrderMatchCancelled, OrderCancelledByAdmin, OrderCancelledByUser:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "CREDIT_CARD"
)

type Role string

const (
	RoleAudience Role = "AUDIENCE"
	RoleAdmin    Role = "ADMIN"
)

type Team struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Abbr string    `json:"abbr"`
}

type Stadium struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Abbr  string    `json:"abbr"`
	Zones []Zone    `json:"zones"`
}

type Zone struct {
	ID           uuid.UUID       `json:"id"`
	StadiumID    uuid.UUID       `json:"stadium_id"`
	Name         string          `json:"name"`
	PricePerSeat decimal.Decimal `json:"price_per_seat"`
	Size         int             `json:"size"`
}

type TimeSlot struct {
	ID    uuid.UUID `json:"id"`
	Date  time.Time `json:"date"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type Fixture struct {
	ID        uuid.UUID     `json:"id"`
	TeamOneID uuid.UUID     `json:"team_one_id"`
	TeamTwoID uuid.UUID     `json:"team_two_id"`
	StadiumID uuid.UUID     `json:"stadium_id"`
	TimeSlot  TimeSlot      `json:"time_slot"`
	Status    FixtureStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

type Order struct {
	ID          uuid.UUID   `json:"id"`
	AudienceID  uuid.UUID   `json:"audience_id"`
	FixtureID   uuid.UUID   `json:"fixture_id"`
	ZoneID      uuid.UUID   `json:"zone_id"`
	NoOfTickets int         `json:"no_of_tickets"`
	Status      OrderStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	Tickets     []Ticket    `json:"tickets"`
	Payment     *Payment    `json:"payment,omitempty"`
}

// SeatLabels returns the seat numbers of the order's tickets in ticket order.
func (o Order) SeatLabels() []string {
	out := make([]string, 0, len(o.Tickets))
	for _, t := range o.Tickets {
		out = append(out, t.SeatNo)
	}
	return out
}

type Ticket struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	FixtureID uuid.UUID `json:"fixture_id"`
	ZoneID    uuid.UUID `json:"zone_id"`
	SeatNo    string    `json:"seat_no"`
	SeatIndex int       `json:"seat_index"`
	CreatedAt time.Time `json:"created_at"`
}

type Payment struct {
	ID         uuid.UUID       `json:"id"`
	AudienceID uuid.UUID       `json:"audience_id"`
	OrderID    uuid.UUID       `json:"order_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     PaymentMethod   `json:"method"`
	Status     PaymentStatus   `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Role         Role      `json:"role"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Projections served by the read side.

type FixtureView struct {
	Fixture
	TeamOne Team           `json:"team_one"`
	TeamTwo Team           `json:"team_two"`
	Stadium Stadium        `json:"stadium"`
	Orders  []Order        `json:"orders"`
	Sold    map[string]int `json:"sold_by_zone,omitempty"`
}

type FixtureSummary struct {
	ID      uuid.UUID     `json:"id"`
	TeamOne Team          `json:"team_one"`
	TeamTwo Team          `json:"team_two"`
	Stadium Stadium       `json:"stadium"`
	Slot    TimeSlot      `json:"time_slot"`
	Status  FixtureStatus `json:"status"`
}

type OrderView struct {
	Order
	AudienceName  string         `json:"audience_name"`
	AudienceEmail string         `json:"audience_email"`
	Fixture       FixtureSummary `json:"fixture"`
}

type PaymentView struct {
	Payment
	Order   Order          `json:"order"`
	Fixture FixtureSummary `json:"fixture"`
}
