package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kirinyoku/matchday/internal/repository"
	"github.com/stretchr/testify/assert"
)

func TestTranslateDBErr(t *testing.T) {
	assert.NoError(t, translateDBErr(nil))
	assert.ErrorIs(t, translateDBErr(pgx.ErrNoRows), repository.ErrNotFound)
	assert.ErrorIs(t, translateDBErr(&pgconn.PgError{Code: pgerrcode.UniqueViolation}), repository.ErrConflict)
	assert.ErrorIs(t, translateDBErr(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}), repository.ErrNotFound)

	other := errors.New("boom")
	assert.Equal(t, other, translateDBErr(other))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&pgconn.PgError{Code: pgerrcode.SerializationFailure}))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: pgerrcode.DeadlockDetected})))
	assert.False(t, IsRetryable(&pgconn.PgError{Code: pgerrcode.UniqueViolation}))
	assert.False(t, IsRetryable(errors.New("boom")))
}
