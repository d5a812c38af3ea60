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

type fixtureRepo struct{ h *handle }

func (r *fixtureRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Fixture, error) {
	const op = "memory.FixtureRepo.Get"

	var out domain.Fixture
	err := r.h.do(ctx, func(tx *handle) error {
		f, ok := tx.st.fixtures[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = f
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &out, nil
}

func (r *fixtureRepo) List(ctx context.Context, f repository.FixtureFilter) ([]domain.Fixture, error) {
	var out []domain.Fixture
	err := r.h.do(ctx, func(tx *handle) error {
		for _, fx := range tx.st.fixtures {
			if f.Status != "" && fx.Status != f.Status {
				continue
			}
			if !f.Date.IsZero() && !domain.Day(fx.TimeSlot.Date).Equal(domain.Day(f.Date)) {
				continue
			}
			out = append(out, fx)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(out, func(a, b domain.Fixture) int {
		if c := cmp.Compare(b.Status, a.Status); c != 0 {
			return c
		}
		if c := b.TimeSlot.Date.Compare(a.TimeSlot.Date); c != 0 {
			return c
		}
		return a.TimeSlot.Start.Compare(b.TimeSlot.Start)
	})

	return out, nil
}

func (r *fixtureRepo) Create(ctx context.Context, f *domain.Fixture) error {
	const op = "memory.FixtureRepo.Create"

	err := r.h.do(ctx, func(tx *handle) error {
		if err := tx.fault("fixtures.create"); err != nil {
			return err
		}
		if _, exists := tx.st.fixtures[f.ID]; exists {
			return repository.ErrConflict
		}
		if err := checkFixtureRefs(tx.st, f); err != nil {
			return err
		}
		tx.st.fixtures[f.ID] = *f
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (r *fixtureRepo) Update(ctx context.Context, f *domain.Fixture) error {
	const op = "memory.FixtureRepo.Update"

	err := r.h.do(ctx, func(tx *handle) error {
		if err := tx.fault("fixtures.update"); err != nil {
			return err
		}
		cur, ok := tx.st.fixtures[f.ID]
		if !ok {
			return repository.ErrNotFound
		}
		if err := checkFixtureRefs(tx.st, f); err != nil {
			return err
		}
		cur.TeamOneID = f.TeamOneID
		cur.TeamTwoID = f.TeamTwoID
		cur.StadiumID = f.StadiumID
		slotID := cur.TimeSlot.ID
		cur.TimeSlot = f.TimeSlot
		cur.TimeSlot.ID = slotID
		tx.st.fixtures[f.ID] = cur
		*f = cur
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (r *fixtureRepo) SetStatus(ctx context.Context, id uuid.UUID, status domain.FixtureStatus) error {
	const op = "memory.FixtureRepo.SetStatus"

	err := r.h.do(ctx, func(tx *handle) error {
		if err := tx.fault("fixtures.set_status"); err != nil {
			return err
		}
		cur, ok := tx.st.fixtures[id]
		if !ok {
			return repository.ErrNotFound
		}
		cur.Status = status
		tx.st.fixtures[id] = cur
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

// checkFixtureRefs mirrors the foreign keys of the relational schema.
func checkFixtureRefs(st *state, f *domain.Fixture) error {
	if _, ok := st.teams[f.TeamOneID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := st.teams[f.TeamTwoID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := st.stadiums[f.StadiumID]; !ok {
		return repository.ErrNotFound
	}
	return nil
}
