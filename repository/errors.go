package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/akinalp/shopapi/pkg"
)

// pgUniqueViolationCode is the SQLSTATE PostgreSQL reports for UNIQUE violations.
const pgUniqueViolationCode = "23505"

// isSQLiteUniqueViolation reports whether err is a SQLite UNIQUE failure.
// modernc.org/sqlite formats it as "UNIQUE constraint failed: users.email".
func isSQLiteUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isPgUniqueViolation reports whether err is a PostgreSQL UNIQUE failure and
// returns the violated constraint name.
func isPgUniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// userConflict turns a unique violation into the conflict error for the field
// named in detail (column or index name).
func userConflict(detail string) error {
	if strings.Contains(detail, "email") {
		return fmt.Errorf("%w: email already in use", pkg.ErrConflict)
	}
	if strings.Contains(detail, "username") {
		return fmt.Errorf("%w: username already taken", pkg.ErrConflict)
	}
	return fmt.Errorf("%w: user already exists", pkg.ErrConflict)
}

// storageError wraps a driver error as pkg.ErrStorage. The cause stays in the
// chain, so errors.Is still sees context.DeadlineExceeded.
func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", pkg.ErrStorage, op, err)
}
