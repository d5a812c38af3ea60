package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/kirinyoku/matchday/internal/domain"
	"github.com/kirinyoku/matchday/internal/repository"
)

type orderRepo struct{ h *handle }

// assemble attaches tickets (by seat index, then label) and the payment.
func assemble(st *state, o domain.Order) domain.Order {
	o.Tickets = nil
	for _, t := range st.tickets {
		if t.OrderID == o.ID {
			o.Tickets = append(o.Tickets, t)
		}
	}
	slices.SortFunc(o.Tickets, func(a, b domain.Ticket) int {
		if c := cmp.Compare(a.SeatIndex, b.SeatIndex); c != 0 {
			return c
		}
		return cmp.Compare(a.SeatNo, b.SeatNo)
	})

	o.Payment = nil
	for _, p := range st.payments {
		if p.OrderID == o.ID {
			o.Payment = &p
			break
		}
	}
	return o
}

func (r *orderRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	const op = "memory.OrderRepo.Get"

	var out domain.Order
	err := r.h.do(ctx, func(tx *handle) error {
		o, ok := tx.st.orders[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = assemble(tx.st, o)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &out, nil
}

func (r *orderRepo) List(ctx context.Context, f repository.OrderFilter) ([]domain.Order, error) {
	var out []domain.Order
	err := r.h.do(ctx, func(tx *handle) error {
		for _, o := range tx.st.orders {
			if f.AudienceID != uuid.Nil && o.AudienceID != f.AudienceID {
				continue
			}
			if f.FixtureID != uuid.Nil && o.FixtureID != f.FixtureID {
				continue
			}
			if f.Status != "" && o.Status != f.Status {
				continue
			}
			out = append(out, assemble(tx.st, o))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(out, func(a, b domain.Order) int {
		if c := cmp.Compare(b.Status, a.Status); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return out, nil
}

func (r *orderRepo) Create(ctx context.Context, o *domain.Order) error {
	const op = "memory.OrderRepo.Create"

	err := r.h.do(ctx, func(tx *handle) error {
		if err := tx.fault("orders.create"); err != nil {
			return err
		}
		if _, exists := tx.st.orders[o.ID]; exists {
			return repository.ErrConflict
		}
		if _, ok := tx.st.fixtures[o.FixtureID]; !ok {
			return repository.ErrNotFound
		}
		if _, ok := tx.st.zones[o.ZoneID]; !ok {
			return repository.ErrNotFound
		}
		row := *o
		row.Tickets = nil
		row.Payment = nil
		tx.st.orders[o.ID] = row
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (r *orderRepo) SetStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	const op = "memory.OrderRepo.SetStatus"

	err := r.h.do(ctx, func(tx *handle) error {
		if err := tx.fault("orders.set_status"); err != nil {
			return err
		}
		cur, ok := tx.st.orders[id]
		if !ok {
			return repository.ErrNotFound
		}
		cur.Status = status
		tx.st.orders[id] = cur
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

// heldSeats collects the tickets of SUCCESS orders for the fixture and zone.
func (r *orderRepo) heldSeats(ctx context.Context, fixtureID, zoneID uuid.UUID) ([]domain.Ticket, error) {
	var out []domain.Ticket
	err := r.h.do(ctx, func(tx *handle) error {
		for _, t := range tx.st.tickets {
			if t.FixtureID != fixtureID || t.ZoneID != zoneID {
				continue
			}
			if o, ok := tx.st.orders[t.OrderID]; !ok || o.Status != domain.OrderSuccess {
				continue
			}
			out = append(out, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *orderRepo) SeatLabels(ctx context.Context, fixtureID, zoneID uuid.UUID) ([]string, error) {
	held, err := r.heldSeats(ctx, fixtureID, zoneID)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(held))
	for _, t := range held {
		out = append(out, t.SeatNo)
	}
	return out, nil
}

func (r *orderRepo) SeatIndexes(ctx context.Context, fixtureID, zoneID uuid.UUID) ([]int, error) {
	held, err := r.heldSeats(ctx, fixtureID, zoneID)
	if err != nil {
		return nil, err
	}

	out := make([]int, 0, len(held))
	for _, t := range held {
		out = append(out, t.SeatIndex)
	}
	return out, nil
}

type ticketRepo struct{ h *handle }

func (r *ticketRepo) CreateBatch(ctx context.Context, tickets []domain.Ticket) error {
	const op = "memory.TicketRepo.CreateBatch"

	err := r.h.do(ctx, func(tx *handle) error {
		if err := tx.fault("tickets.create"); err != nil {
			return err
		}
		for _, t := range tickets {
			if _, ok := tx.st.orders[t.OrderID]; !ok {
				return repository.ErrNotFound
			}
			if _, exists := tx.st.tickets[t.ID]; exists {
				return repository.ErrConflict
			}
			for _, other := range tx.st.tickets {
				if other.FixtureID == t.FixtureID && other.ZoneID == t.ZoneID && other.SeatNo == t.SeatNo {
					return repository.ErrConflict
				}
			}
			tx.st.tickets[t.ID] = t
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (r *ticketRepo) DeleteByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	const op = "memory.TicketRepo.DeleteByOrder"

	var n int64
	err := r.h.do(ctx, func(tx *handle) error {
		if err := tx.fault("tickets.delete"); err != nil {
			return err
		}
		for id, t := range tx.st.tickets {
			if t.OrderID == orderID {
				delete(tx.st.tickets, id)
				n++
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, err)
	}

	return n, nil
}

type paymentRepo struct{ h *handle }

func (r *paymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	const op = "memory.PaymentRepo.Create"

	err := r.h.do(ctx, func(tx *handle) error {
		if err := tx.fault("payments.create"); err != nil {
			return err
		}
		if _, ok := tx.st.orders[p.OrderID]; !ok {
			return repository.ErrNotFound
		}
		for _, other := range tx.st.payments {
			if other.ID == p.ID || other.OrderID == p.OrderID {
				return repository.ErrConflict
			}
		}
		tx.st.payments[p.ID] = *p
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (r *paymentRepo) SetStatusByOrder(ctx context.Context, orderID uuid.UUID, status domain.PaymentStatus) error {
	const op = "memory.PaymentRepo.SetStatusByOrder"

	err := r.h.do(ctx, func(tx *handle) error {
		if err := tx.fault("payments.set_status"); err != nil {
			return err
		}
		for id, p := range tx.st.payments {
			if p.OrderID == orderID {
				p.Status = status
				tx.st.payments[id] = p
				return nil
			}
		}
		return repository.ErrNotFound
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (r *paymentRepo) ListByAudience(ctx context.Context, audienceID uuid.UUID) ([]domain.Payment, error) {
	var out []domain.Payment
	err := r.h.do(ctx, func(tx *handle) error {
		for _, p := range tx.st.payments {
			if p.AudienceID == audienceID {
				out = append(out, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(out, func(a, b domain.Payment) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return out, nil
}
