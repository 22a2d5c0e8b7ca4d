package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/unigate/admissions/internal/pkg/apperrors"
)

func TestIsDuplicateConstraintError(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: CodeUniqueViolation, ConstraintName: "users_email_key"})

	assert.True(t, IsDuplicateConstraintError(err, "users_email_key"))
	assert.True(t, IsDuplicateConstraintError(err, ""))
	assert.False(t, IsDuplicateConstraintError(err, "term_term_name_key"))
	assert.False(t, IsDuplicateConstraintError(errors.New("boom"), ""))
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, Translate(nil, "term"))

	err := Translate(pgx.ErrNoRows, "term")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	assert.Equal(t, "term not found", err.Error())

	err = Translate(&pgconn.PgError{
		Code:           CodeUniqueViolation,
		Message:        `duplicate key value violates unique constraint "term_term_name_key"`,
		Detail:         "Key (term_name)=(FALL) already exists.",
		ConstraintName: "term_term_name_key",
	}, "term")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Contains(t, err.Error(), "Key (term_name)=(FALL) already exists.")
	var custom *apperrors.CustomError
	if assert.ErrorAs(t, err, &custom) {
		assert.Equal(t, "term_term_name_key", custom.Details["constraint"])
	}

	err = Translate(&pgconn.PgError{Code: CodeForeignKeyViolation, Message: "fk"}, "degree program")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	err = Translate(&pgconn.PgError{Code: CodeNotNullViolation, Message: "null value"}, "term")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	plain := errors.New("connection reset")
	assert.Same(t, plain, Translate(plain, "term"))
}
