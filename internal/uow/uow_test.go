package uow

import (
	"context"
	"errors"
	"testing"

	"github.com/kirinyoku/matchday/internal/repository"
	"github.com/kirinyoku/matchday/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func isTransient(err error) bool { return errors.Is(err, errTransient) }

func TestDo_RunsHooksAfterCommit(t *testing.T) {
	u := NewUoW(memory.NewStore())

	var ran []string
	err := u.Do(context.Background(), func(ctx context.Context, tx repository.Tx, after func(AfterCommit)) error {
		after(func(context.Context) { ran = append(ran, "first") })
		after(func(context.Context) { ran = append(ran, "second") })
		assert.Empty(t, ran)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, ran)
}

func TestDo_SkipsHooksOnFailure(t *testing.T) {
	u := NewUoW(memory.NewStore())
	boom := errors.New("boom")

	called := false
	err := u.Do(context.Background(), func(ctx context.Context, tx repository.Tx, after func(AfterCommit)) error {
		after(func(context.Context) { called = true })
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.False(t, called)
}

func TestDo_RetriesRetryableErrors(t *testing.T) {
	var retries []int
	u := NewUoW(memory.NewStore(),
		WithRetry(3, isTransient),
		OnRetry(func(attempt int, err error) { retries = append(retries, attempt) }),
	)

	attempts, hooks := 0, 0
	err := u.Do(context.Background(), func(ctx context.Context, tx repository.Tx, after func(AfterCommit)) error {
		attempts++
		after(func(context.Context) { hooks++ })
		if attempts < 3 {
			return errTransient
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 1, hooks)
	assert.Equal(t, []int{1, 2}, retries)
}

func TestDo_GivesUpAfterMaxAttempts(t *testing.T) {
	u := NewUoW(memory.NewStore(), WithRetry(2, isTransient))

	attempts := 0
	err := u.Do(context.Background(), func(ctx context.Context, tx repository.Tx, after func(AfterCommit)) error {
		attempts++
		return errTransient
	})

	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 2, attempts)
}

func TestDo_DoesNotRetryOtherErrors(t *testing.T) {
	u := NewUoW(memory.NewStore(), WithRetry(5, isTransient))
	boom := errors.New("boom")

	attempts := 0
	err := u.Do(context.Background(), func(ctx context.Context, tx repository.Tx, after func(AfterCommit)) error {
		attempts++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, attempts)
}
