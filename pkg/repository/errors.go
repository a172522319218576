package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes MapError recognizes.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// MapError translates database errors to domain errors. sql.ErrNoRows and
// foreign key violations (a referenced row is gone) map to notFoundErr;
// unique violations map to duplicateErr. Other errors pass through.
func MapError(err error, notFoundErr, duplicateErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return notFoundErr
		case pgUniqueViolation:
			return duplicateErr
		}
	}

	return err
}
