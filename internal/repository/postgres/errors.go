package postgres

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kirinyoku/matchday/internal/repository"
)

// IsRetryable reports whether err is a serialization failure or deadlock
// that a fresh run of the whole transaction may resolve.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
			return true
		}
	}

	return false
}

func translateDBErr(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}

	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		switch pge.Code {
		case pgerrcode.UniqueViolation, pgerrcode.ExclusionViolation:
			return repository.ErrConflict
		case pgerrcode.ForeignKeyViolation:
			return repository.ErrNotFound
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
			// kept as is so IsRetryable still sees the code
			return err
		}
	}

	return err
}
