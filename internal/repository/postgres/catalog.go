package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/matchday/internal/domain"
	"github.com/kirinyoku/matchday/internal/repository"
)

type TeamRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *TeamRepo) With(db DB) *TeamRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *TeamRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func (r *TeamRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Team, error) {
	const op = "postgres.TeamRepo.Get"

	db := r.handle()

	var t domain.Team
	err := db.QueryRow(ctx,
		`SELECT id, name, abbr FROM teams WHERE id = $1`,
		id,
	).Scan(&t.ID, &t.Name, &t.Abbr)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &t, nil
}

func (r *TeamRepo) List(ctx context.Context) ([]domain.Team, error) {
	const op = "postgres.TeamRepo.List"

	db := r.handle()

	rows, err := db.Query(ctx, `SELECT id, name, abbr FROM teams ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Team
	for rows.Next() {
		var t domain.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Abbr); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}

		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

func (r *TeamRepo) Create(ctx context.Context, t *domain.Team) error {
	const op = "postgres.TeamRepo.Create"

	db := r.handle()

	_, err := db.Exec(ctx,
		`INSERT INTO teams(id, name, abbr) VALUES ($1, $2, $3)`,
		t.ID, t.Name, t.Abbr,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (r *TeamRepo) Update(ctx context.Context, t *domain.Team) error {
	const op = "postgres.TeamRepo.Update"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE teams SET name = $2, abbr = $3 WHERE id = $1`,
		t.ID, t.Name, t.Abbr,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

type StadiumRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *StadiumRepo) With(db DB) *StadiumRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *StadiumRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Get loads the stadium and its zones ordered by name.
func (r *StadiumRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Stadium, error) {
	const op = "postgres.StadiumRepo.Get"

	db := r.handle()

	var s domain.Stadium
	err := db.QueryRow(ctx,
		`SELECT id, name, abbr FROM stadiums WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.Name, &s.Abbr)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	zones, err := listZones(ctx, db, []uuid.UUID{s.ID})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	s.Zones = zones[s.ID]

	return &s, nil
}

func (r *StadiumRepo) List(ctx context.Context) ([]domain.Stadium, error) {
	const op = "postgres.StadiumRepo.List"

	db := r.handle()

	rows, err := db.Query(ctx, `SELECT id, name, abbr FROM stadiums ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var (
		out []domain.Stadium
		ids []uuid.UUID
	)
	for rows.Next() {
		var s domain.Stadium
		if err := rows.Scan(&s.ID, &s.Name, &s.Abbr); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}

		out = append(out, s)
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	rows.Close()

	zones, err := listZones(ctx, db, ids)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	for i := range out {
		out[i].Zones = zones[out[i].ID]
	}

	return out, nil
}

func listZones(ctx context.Context, db DB, stadiumIDs []uuid.UUID) (map[uuid.UUID][]domain.Zone, error) {
	out := make(map[uuid.UUID][]domain.Zone, len(stadiumIDs))
	if len(stadiumIDs) == 0 {
		return out, nil
	}

	rows, err := db.Query(ctx,
		`SELECT id, stadium_id, name, price_per_seat, size
		 FROM zones
		 WHERE stadium_id = ANY($1)
		 ORDER BY name`,
		stadiumIDs,
	)
	if err != nil {
		return nil, translateDBErr(err)
	}

	defer rows.Close()

	for rows.Next() {
		var z domain.Zone
		if err := rows.Scan(&z.ID, &z.StadiumID, &z.Name, &z.PricePerSeat, &z.Size); err != nil {
			return nil, translateDBErr(err)
		}

		out[z.StadiumID] = append(out[z.StadiumID], z)
	}

	return out, rows.Err()
}

func (r *StadiumRepo) Create(ctx context.Context, s *domain.Stadium) error {
	const op = "postgres.StadiumRepo.Create"

	db := r.handle()

	_, err := db.Exec(ctx,
		`INSERT INTO stadiums(id, name, abbr) VALUES ($1, $2, $3)`,
		s.ID, s.Name, s.Abbr,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (r *StadiumRepo) Update(ctx context.Context, s *domain.Stadium) error {
	const op = "postgres.StadiumRepo.Update"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE stadiums SET name = $2, abbr = $3 WHERE id = $1`,
		s.ID, s.Name, s.Abbr,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

type ZoneRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *ZoneRepo) With(db DB) *ZoneRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *ZoneRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func (r *ZoneRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Zone, error) {
	const op = "postgres.ZoneRepo.Get"

	db := r.handle()

	var z domain.Zone
	err := db.QueryRow(ctx,
		`SELECT id, stadium_id, name, price_per_seat, size FROM zones WHERE id = $1`,
		id,
	).Scan(&z.ID, &z.StadiumID, &z.Name, &z.PricePerSeat, &z.Size)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &z, nil
}

func (r *ZoneRepo) Create(ctx context.Context, z *domain.Zone) error {
	const op = "postgres.ZoneRepo.Create"

	db := r.handle()

	_, err := db.Exec(ctx,
		`INSERT INTO zones(id, stadium_id, name, price_per_seat, size)
		 VALUES ($1, $2, $3, $4, $5)`,
		z.ID, z.StadiumID, z.Name, z.PricePerSeat, z.Size,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (r *ZoneRepo) Update(ctx context.Context, z *domain.Zone) error {
	const op = "postgres.ZoneRepo.Update"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE zones SET name = $2, price_per_seat = $3, size = $4 WHERE id = $1`,
		z.ID, z.Name, z.PricePerSeat, z.Size,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

type UserRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *UserRepo) With(db DB) *UserRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *UserRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const userColumns = `id, role, name, email, password_hash, created_at`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Role, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Get(ctx context.Context, role domain.Role, id uuid.UUID) (*domain.User, error) {
	const op = "postgres.UserRepo.Get"

	db := r.handle()

	u, err := scanUser(db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 AND role = $2`,
		id, role,
	))
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, role domain.Role, email string) (*domain.User, error) {
	const op = "postgres.UserRepo.GetByEmail"

	db := r.handle()

	u, err := scanUser(db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1) AND role = $2`,
		email, role,
	))
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return u, nil
}

func (r *UserRepo) List(ctx context.Context, role domain.Role) ([]domain.User, error) {
	const op = "postgres.UserRepo.List"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY email`,
		role,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}

		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	const op = "postgres.UserRepo.Create"

	db := r.handle()

	_, err := db.Exec(ctx,
		`INSERT INTO users(id, role, name, email, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Role, u.Name, u.Email, u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}
