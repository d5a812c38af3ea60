package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/matchday/internal/domain"
	"github.com/kirinyoku/matchday/internal/repository"
)

type OrderRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *OrderRepo) With(db DB) *OrderRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *OrderRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const orderColumns = `id, audience_id, fixture_id, zone_id, no_of_tickets, status, created_at`

func scanOrder(row interface{ Scan(...any) error }) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.AudienceID, &o.FixtureID, &o.ZoneID, &o.NoOfTickets, &o.Status, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Get loads the order with its tickets and payment.
func (r *OrderRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	const op = "postgres.OrderRepo.Get"

	db := r.handle()

	o, err := scanOrder(db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	orders := []domain.Order{*o}
	if err := attachDetails(ctx, db, orders); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &orders[0], nil
}

func (r *OrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]domain.Order, error) {
	const op = "postgres.OrderRepo.List"

	db := r.handle()

	var status *string
	if f.Status != "" {
		s := string(f.Status)
		status = &s
	}

	rows, err := db.Query(ctx,
		`SELECT `+orderColumns+`
		 FROM orders
		 WHERE ($1::uuid IS NULL OR audience_id = $1)
		   AND ($2::uuid IS NULL OR fixture_id = $2)
		   AND ($3::text IS NULL OR status = $3)
		 ORDER BY status DESC, created_at DESC`,
		nullID(f.AudienceID), nullID(f.FixtureID), status,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}

		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	rows.Close()

	if err := attachDetails(ctx, db, out); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

func nullID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

// attachDetails loads tickets and payments of all orders in two queries sent
// as one batch.
func attachDetails(ctx context.Context, db DB, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(orders))
	idx := make(map[uuid.UUID]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		idx[o.ID] = i
	}

	batch := &pgx.Batch{}
	batch.Queue(
		`SELECT id, order_id, fixture_id, zone_id, seat_no, seat_index, created_at
		 FROM tickets
		 WHERE order_id = ANY($1)
		 ORDER BY order_id, seat_index, seat_no`,
		ids,
	)
	batch.Queue(
		`SELECT id, audience_id, order_id, amount, method, status, created_at
		 FROM payments
		 WHERE order_id = ANY($1)`,
		ids,
	)

	br := db.SendBatch(ctx, batch)
	defer br.Close()

	rows, err := br.Query()
	if err != nil {
		return translateDBErr(err)
	}
	for rows.Next() {
		var t domain.Ticket
		if err := rows.Scan(&t.ID, &t.OrderID, &t.FixtureID, &t.ZoneID, &t.SeatNo, &t.SeatIndex, &t.CreatedAt); err != nil {
			rows.Close()
			return translateDBErr(err)
		}
		o := &orders[idx[t.OrderID]]
		o.Tickets = append(o.Tickets, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return translateDBErr(err)
	}

	rows, err = br.Query()
	if err != nil {
		return translateDBErr(err)
	}
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.AudienceID, &p.OrderID, &p.Amount, &p.Method, &p.Status, &p.CreatedAt); err != nil {
			rows.Close()
			return translateDBErr(err)
		}
		orders[idx[p.OrderID]].Payment = &p
	}
	rows.Close()

	return translateDBErr(rows.Err())
}

func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	const op = "postgres.OrderRepo.Create"

	db := r.handle()

	_, err := db.Exec(ctx,
		`INSERT INTO orders(id, audience_id, fixture_id, zone_id, no_of_tickets, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID, o.AudienceID, o.FixtureID, o.ZoneID, o.NoOfTickets, o.Status, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (r *OrderRepo) SetStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	const op = "postgres.OrderRepo.SetStatus"

	db := r.handle()

	tag, err := db.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

// SeatLabels reads the seats held by SUCCESS orders of the fixture and zone.
func (r *OrderRepo) SeatLabels(ctx context.Context, fixtureID, zoneID uuid.UUID) ([]string, error) {
	const op = "postgres.OrderRepo.SeatLabels"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT t.seat_no
		 FROM tickets t
		 JOIN orders o ON o.id = t.order_id
		 WHERE o.fixture_id = $1 AND o.zone_id = $2 AND o.status = $3`,
		fixtureID, zoneID, domain.OrderSuccess,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []string
	for rows.Next() {
		var seat string
		if err := rows.Scan(&seat); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}

		out = append(out, seat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// SeatIndexes reads the numeric indexes of the seats held by SUCCESS orders
// of the fixture and zone. Under SERIALIZABLE this read is what makes two
// concurrent allocations on the same zone conflict.
func (r *OrderRepo) SeatIndexes(ctx context.Context, fixtureID, zoneID uuid.UUID) ([]int, error) {
	const op = "postgres.OrderRepo.SeatIndexes"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT t.seat_index
		 FROM tickets t
		 JOIN orders o ON o.id = t.order_id
		 WHERE o.fixture_id = $1 AND o.zone_id = $2 AND o.status = $3`,
		fixtureID, zoneID, domain.OrderSuccess,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	out, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return out, nil
}

type TicketRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *TicketRepo) With(db DB) *TicketRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *TicketRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func (r *TicketRepo) CreateBatch(ctx context.Context, tickets []domain.Ticket) error {
	const op = "postgres.TicketRepo.CreateBatch"

	db := r.handle()

	batch := &pgx.Batch{}
	for _, t := range tickets {
		batch.Queue(
			`INSERT INTO tickets(id, order_id, fixture_id, zone_id, seat_no, seat_index, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			t.ID, t.OrderID, t.FixtureID, t.ZoneID, t.SeatNo, t.SeatIndex, t.CreatedAt,
		)
	}
	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (r *TicketRepo) DeleteByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	const op = "postgres.TicketRepo.DeleteByOrder"

	db := r.handle()

	tag, err := db.Exec(ctx, `DELETE FROM tickets WHERE order_id = $1`, orderID)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return tag.RowsAffected(), nil
}

type PaymentRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *PaymentRepo) With(db DB) *PaymentRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *PaymentRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func (r *PaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	const op = "postgres.PaymentRepo.Create"

	db := r.handle()

	_, err := db.Exec(ctx,
		`INSERT INTO payments(id, audience_id, order_id, amount, method, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.AudienceID, p.OrderID, p.Amount, p.Method, p.Status, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (r *PaymentRepo) SetStatusByOrder(ctx context.Context, orderID uuid.UUID, status domain.PaymentStatus) error {
	const op = "postgres.PaymentRepo.SetStatusByOrder"

	db := r.handle()

	tag, err := db.Exec(ctx, `UPDATE payments SET status = $2 WHERE order_id = $1`, orderID, status)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

func (r *PaymentRepo) ListByAudience(ctx context.Context, audienceID uuid.UUID) ([]domain.Payment, error) {
	const op = "postgres.PaymentRepo.ListByAudience"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT id, audience_id, order_id, amount, method, status, created_at
		 FROM payments
		 WHERE audience_id = $1
		 ORDER BY created_at DESC`,
		audienceID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.AudienceID, &p.OrderID, &p.Amount, &p.Method, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}

		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}
