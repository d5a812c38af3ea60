package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/kirinyoku/matchday/internal/domain"
	"github.com/kirinyoku/matchday/internal/repository"
)

type teamRepo struct{ h *handle }

func (r *teamRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Team, error) {
	const op = "memory.TeamRepo.Get"

	var out domain.Team
	err := r.h.do(ctx, func(tx *handle) error {
		t, ok := tx.st.teams[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &out, nil
}

func (r *teamRepo) List(ctx context.Context) ([]domain.Team, error) {
	var out []domain.Team
	err := r.h.do(ctx, func(tx *handle) error {
		for _, t := range tx.st.teams {
			out = append(out, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(out, func(a, b domain.Team) int {
		return strings.Compare(a.Name, b.Name)
	})

	return out, nil
}

func (r *teamRepo) Create(ctx context.Context, t *domain.Team) error {
	return r.save(ctx, "memory.TeamRepo.Create", t, false)
}

func (r *teamRepo) Update(ctx context.Context, t *domain.Team) error {
	return r.save(ctx, "memory.TeamRepo.Update", t, true)
}

func (r *teamRepo) save(ctx context.Context, op string, t *domain.Team, mustExist bool) error {
	err := r.h.do(ctx, func(tx *handle) error {
		_, exists := tx.st.teams[t.ID]
		if mustExist != exists {
			if mustExist {
				return repository.ErrNotFound
			}
			return repository.ErrConflict
		}
		for id, other := range tx.st.teams {
			if id != t.ID && other.Abbr == t.Abbr {
				return repository.ErrConflict
			}
		}
		tx.st.teams[t.ID] = *t
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

type stadiumRepo struct{ h *handle }

func withZones(st *state, s domain.Stadium) domain.Stadium {
	s.Zones = nil
	for _, z := range st.zones {
		if z.StadiumID == s.ID {
			s.Zones = append(s.Zones, z)
		}
	}
	slices.SortFunc(s.Zones, func(a, b domain.Zone) int {
		return strings.Compare(a.Name, b.Name)
	})
	return s
}

func (r *stadiumRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Stadium, error) {
	const op = "memory.StadiumRepo.Get"

	var out domain.Stadium
	err := r.h.do(ctx, func(tx *handle) error {
		s, ok := tx.st.stadiums[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = withZones(tx.st, s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &out, nil
}

func (r *stadiumRepo) List(ctx context.Context) ([]domain.Stadium, error) {
	var out []domain.Stadium
	err := r.h.do(ctx, func(tx *handle) error {
		for _, s := range tx.st.stadiums {
			out = append(out, withZones(tx.st, s))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(out, func(a, b domain.Stadium) int {
		return strings.Compare(a.Name, b.Name)
	})

	return out, nil
}

func (r *stadiumRepo) Create(ctx context.Context, s *domain.Stadium) error {
	return r.save(ctx, "memory.StadiumRepo.Create", s, false)
}

func (r *stadiumRepo) Update(ctx context.Context, s *domain.Stadium) error {
	return r.save(ctx, "memory.StadiumRepo.Update", s, true)
}

func (r *stadiumRepo) save(ctx context.Context, op string, s *domain.Stadium, mustExist bool) error {
	err := r.h.do(ctx, func(tx *handle) error {
		_, exists := tx.st.stadiums[s.ID]
		if mustExist != exists {
			if mustExist {
				return repository.ErrNotFound
			}
			return repository.ErrConflict
		}
		for id, other := range tx.st.stadiums {
			if id != s.ID && other.Abbr == s.Abbr {
				return repository.ErrConflict
			}
		}
		row := *s
		row.Zones = nil
		tx.st.stadiums[s.ID] = row
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

type zoneRepo struct{ h *handle }

func (r *zoneRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Zone, error) {
	const op = "memory.ZoneRepo.Get"

	var out domain.Zone
	err := r.h.do(ctx, func(tx *handle) error {
		z, ok := tx.st.zones[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = z
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &out, nil
}

func (r *zoneRepo) Create(ctx context.Context, z *domain.Zone) error {
	return r.save(ctx, "memory.ZoneRepo.Create", z, false)
}

func (r *zoneRepo) Update(ctx context.Context, z *domain.Zone) error {
	return r.save(ctx, "memory.ZoneRepo.Update", z, true)
}

func (r *zoneRepo) save(ctx context.Context, op string, z *domain.Zone, mustExist bool) error {
	err := r.h.do(ctx, func(tx *handle) error {
		_, exists := tx.st.zones[z.ID]
		if mustExist != exists {
			if mustExist {
				return repository.ErrNotFound
			}
			return repository.ErrConflict
		}
		if _, ok := tx.st.stadiums[z.StadiumID]; !ok {
			return repository.ErrNotFound
		}
		tx.st.zones[z.ID] = *z
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

type userRepo struct{ h *handle }

func (r *userRepo) Get(ctx context.Context, role domain.Role, id uuid.UUID) (*domain.User, error) {
	const op = "memory.UserRepo.Get"

	var out domain.User
	err := r.h.do(ctx, func(tx *handle) error {
		u, ok := tx.st.users[id]
		if !ok || u.Role != role {
			return repository.ErrNotFound
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &out, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, role domain.Role, email string) (*domain.User, error) {
	const op = "memory.UserRepo.GetByEmail"

	var out domain.User
	err := r.h.do(ctx, func(tx *handle) error {
		for _, u := range tx.st.users {
			if u.Role == role && strings.EqualFold(u.Email, email) {
				out = u
				return nil
			}
		}
		return repository.ErrNotFound
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &out, nil
}

func (r *userRepo) List(ctx context.Context, role domain.Role) ([]domain.User, error) {
	var out []domain.User
	err := r.h.do(ctx, func(tx *handle) error {
		for _, u := range tx.st.users {
			if u.Role == role {
				out = append(out, u)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(out, func(a, b domain.User) int {
		return strings.Compare(a.Email, b.Email)
	})

	return out, nil
}

func (r *userRepo) Create(ctx context.Context, u *domain.User) error {
	const op = "memory.UserRepo.Create"

	err := r.h.do(ctx, func(tx *handle) error {
		if _, exists := tx.st.users[u.ID]; exists {
			return repository.ErrConflict
		}
		for _, other := range tx.st.users {
			if other.Role == u.Role && strings.EqualFold(other.Email, u.Email) {
				return repository.ErrConflict
			}
		}
		tx.st.users[u.ID] = *u
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}
