package checkin

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/sharath018/workshop-checkin-backend/internal/apperr"
)

const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

var ErrUserNotFound = errors.New("user not found")

// translateStorageError maps races that slipped past the in-transaction checks
// onto engine outcomes. Anything unrecognised is returned as is.
func translateStorageError(err error) error {
	if err == nil || apperr.IsOutcome(err) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperr.ErrAlreadyCheckedIn
		case pgSerializationFailure, pgDeadlockDetected:
			return apperr.ErrConflict
		}
		return err
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch {
		case liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey,
			liteErr.ExtendedCode == sqlite3.ErrConstraintUnique:
			return apperr.ErrAlreadyCheckedIn
		case liteErr.Code == sqlite3.ErrBusy, liteErr.Code == sqlite3.ErrLocked:
			return apperr.ErrConflict
		}
	}
	return err
}
