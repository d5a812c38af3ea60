package uow

import (
	"context"

	"github.com/kirinyoku/matchday/internal/repository"
)

// AfterCommit is a function that runs after a successful transaction commit.
type AfterCommit func(ctx context.Context)

// UoW represents a unit of work.
type UoW struct {
	store       repository.Store
	maxAttempts int
	retryable   func(error) bool
	onRetry     func(attempt int, err error)
}

type Option func(*UoW)

// WithRetry re-runs the whole unit when it fails with an error retryable
// reports true for, up to maxAttempts runs in total.
func WithRetry(maxAttempts int, retryable func(error) bool) Option {
	return func(u *UoW) {
		if maxAttempts > 0 {
			u.maxAttempts = maxAttempts
		}
		u.retryable = retryable
	}
}

// OnRetry registers a callback invoked before every retry.
func OnRetry(fn func(attempt int, err error)) Option {
	return func(u *UoW) { u.onRetry = fn }
}

func NewUoW(store repository.Store, opts ...Option) *UoW {
	u := &UoW{store: store, maxAttempts: 1}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Do runs fn inside the transaction. After a successful commit,
// it executes all after-commit hooks. Hooks registered by failed attempts
// are discarded.
func (u *UoW) Do(
	ctx context.Context,
	fn func(ctx context.Context, tx repository.Tx, after func(AfterCommit)) error,
) error {
	var (
		hooks []AfterCommit
		err   error
	)

	for attempt := 1; ; attempt++ {
		hooks = hooks[:0]

		err = u.store.RunTx(ctx, func(ctx context.Context, tx repository.Tx) error {
			return fn(ctx, tx, func(h AfterCommit) {
				hooks = append(hooks, h)
			})
		})
		if err == nil {
			break
		}

		if attempt >= u.maxAttempts || u.retryable == nil || !u.retryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
		if u.onRetry != nil {
			u.onRetry(attempt, err)
		}
	}

	for _, h := range hooks {
		h(ctx)
	}

	return nil
}
