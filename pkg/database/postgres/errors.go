package pg

import (
	"database/sql"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/pkg/errors"
)

// CheckNoRows maps sql.ErrNoRows onto outErr.
func CheckNoRows(inErr, outErr error) error {
	if errors.Is(inErr, sql.ErrNoRows) {
		return outErr
	}
	return inErr
}

// CheckUniqueViolation maps any unique constraint violation onto outErr.
func CheckUniqueViolation(inErr, outErr error) error {
	if _, ok := uniqueViolation(inErr); ok {
		return outErr
	}
	return inErr
}

// CheckUniqueViolationOnConstraint maps a violation of the named unique
// constraint or index onto outErr.
func CheckUniqueViolationOnConstraint(inErr error, constraint string, outErr error) error {
	if pgErr, ok := uniqueViolation(inErr); ok && pgErr.ConstraintName == constraint {
		return outErr
	}
	return inErr
}

func uniqueViolation(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return pgErr, true
	}
	return nil, false
}
