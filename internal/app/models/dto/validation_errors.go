package dto

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/unigate/admissions/internal/pkg/validation"
)

// HandleValidationError converts binding errors into a VAL_001 error detail.
// validator errors become one entry per field; anything else (malformed JSON,
// wrong types) is reported as a single message.
func HandleValidationError(err error) *ErrorDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewErrorDetail(ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: lowerFirst(fe.Field()), Message: FormatFieldError(fe)})
	}
	return NewErrorDetail(ErrorCodeValidationFailed, "Validation failed").WithDetails(fields)
}

// FormatFieldError creates a human-readable validation error message
func FormatFieldError(e validator.FieldError) string {
	field := lowerFirst(e.Field())
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + e.Param()
	case "max":
		return field + " must be at most " + e.Param()
	case "email":
		return field + " must be a valid email address"
	case "oneof":
		return field + " must be one of: " + e.Param()
	case "uuid", "uuid4":
		return field + " must be a valid UUID"
	case "iso2", "iso3", "lookupcode":
		return validation.Describe(e)
	case "phone":
		return field + " must be a valid phone number"
	case "datetime":
		return field + " must be a date formatted as " + e.Param()
	default:
		return field + " validation failed: " + e.Tag()
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
