package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/matchday/internal/domain"
	"github.com/kirinyoku/matchday/internal/repository"
)

type FixtureRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *FixtureRepo) With(db DB) *FixtureRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *FixtureRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const fixtureSelect = `
	SELECT f.id, f.team_one_id, f.team_two_id, f.stadium_id, f.status, f.created_at,
	       s.id, s.slot_date, s.start_at, s.end_at
	FROM fixtures f
	JOIN time_slots s ON s.fixture_id = f.id`

func scanFixture(row interface{ Scan(...any) error }) (*domain.Fixture, error) {
	var f domain.Fixture
	err := row.Scan(
		&f.ID, &f.TeamOneID, &f.TeamTwoID, &f.StadiumID, &f.Status, &f.CreatedAt,
		&f.TimeSlot.ID, &f.TimeSlot.Date, &f.TimeSlot.Start, &f.TimeSlot.End,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FixtureRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Fixture, error) {
	const op = "postgres.FixtureRepo.Get"

	db := r.handle()

	f, err := scanFixture(db.QueryRow(ctx, fixtureSelect+` WHERE f.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return f, nil
}

// List returns fixtures ordered by status descending, then date descending.
// Within a transaction the rows it reads join the serializable read set, so
// a concurrent insert on the same day aborts one of the two writers.
func (r *FixtureRepo) List(ctx context.Context, filter repository.FixtureFilter) ([]domain.Fixture, error) {
	const op = "postgres.FixtureRepo.List"

	db := r.handle()

	var status *string
	if filter.Status != "" {
		s := string(filter.Status)
		status = &s
	}
	var day any
	if !filter.Date.IsZero() {
		day = domain.Day(filter.Date)
	}

	rows, err := db.Query(ctx,
		fixtureSelect+`
		 WHERE ($1::text IS NULL OR f.status = $1)
		   AND ($2::date IS NULL OR s.slot_date = $2)
		 ORDER BY f.status DESC, s.slot_date DESC, s.start_at`,
		status, day,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Fixture
	for rows.Next() {
		f, err := scanFixture(rows)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}

		out = append(out, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

func (r *FixtureRepo) Create(ctx context.Context, f *domain.Fixture) error {
	const op = "postgres.FixtureRepo.Create"

	db := r.handle()

	err := db.QueryRow(ctx,
		`INSERT INTO fixtures(id, team_one_id, team_two_id, stadium_id, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		f.ID, f.TeamOneID, f.TeamTwoID, f.StadiumID, f.Status,
	).Scan(&f.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	_, err = db.Exec(ctx,
		`INSERT INTO time_slots(id, fixture_id, slot_date, start_at, end_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		f.TimeSlot.ID, f.ID, domain.Day(f.TimeSlot.Date), f.TimeSlot.Start, f.TimeSlot.End,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (r *FixtureRepo) Update(ctx context.Context, f *domain.Fixture) error {
	const op = "postgres.FixtureRepo.Update"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE fixtures SET team_one_id = $2, team_two_id = $3, stadium_id = $4 WHERE id = $1`,
		f.ID, f.TeamOneID, f.TeamTwoID, f.StadiumID,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	err = db.QueryRow(ctx,
		`UPDATE time_slots SET slot_date = $2, start_at = $3, end_at = $4
		 WHERE fixture_id = $1
		 RETURNING id`,
		f.ID, domain.Day(f.TimeSlot.Date), f.TimeSlot.Start, f.TimeSlot.End,
	).Scan(&f.TimeSlot.ID)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (r *FixtureRepo) SetStatus(ctx context.Context, id uuid.UUID, status domain.FixtureStatus) error {
	const op = "postgres.FixtureRepo.SetStatus"

	db := r.handle()

	tag, err := db.Exec(ctx, `UPDATE fixtures SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}
