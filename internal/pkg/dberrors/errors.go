package dberrors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/unigate/admissions/internal/pkg/apperrors"
)

// PostgreSQL error codes the service reacts to
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeCheckViolation      = "23514"
	CodeNotNullViolation    = "23502"
)

// IsDuplicateConstraintError checks if the error is a unique violation of the named constraint.
// An empty constraint name matches any unique violation.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != CodeUniqueViolation {
		return false
	}
	return constraintName == "" || pgErr.ConstraintName == constraintName
}

// IsNoRows reports whether err is pgx.ErrNoRows
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// Translate maps driver errors onto apperrors sentinels. The database message is
// kept as the error text so it reaches the client unchanged.
func Translate(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewResourceNotFoundError(fmt.Sprintf("%s not found", resource))
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	msg := pgErr.Message
	if pgErr.Detail != "" {
		msg = msg + ": " + pgErr.Detail
	}

	switch pgErr.Code {
	case CodeUniqueViolation:
		return apperrors.NewCustomError(apperrors.ErrConflict, msg).
			WithDetails(map[string]interface{}{"constraint": pgErr.ConstraintName})
	case CodeForeignKeyViolation:
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, "referenced record does not exist: "+msg).
			WithDetails(map[string]interface{}{"constraint": pgErr.ConstraintName})
	case CodeCheckViolation, CodeNotNullViolation:
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, msg)
	}
	return err
}
