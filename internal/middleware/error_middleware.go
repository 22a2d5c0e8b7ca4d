package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unigate/admissions/internal/app/models/dto"
	"github.com/unigate/admissions/internal/pkg/apperrors"
	"github.com/unigate/admissions/internal/pkg/errreport"
	"github.com/unigate/admissions/internal/pkg/logger"
)

// errorMapping is the HTTP status and code an error sentinel is reported with
type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// errorMappings is checked in order; the first sentinel matched by errors.Is wins
var errorMappings = []errorMapping{
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Token revoked"},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required"},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"},
	{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Conflict"},
	{apperrors.ErrWizardOrder, http.StatusConflict, dto.ErrorCodeWizardOrder, "Application step is not available yet"},
	{apperrors.ErrAlreadySubmitted, http.StatusConflict, dto.ErrorCodeAlreadySubmitted, "Application has already been submitted"},
	{apperrors.ErrApplicationLocked, http.StatusConflict, dto.ErrorCodeAlreadySubmitted, "Application can no longer be changed"},
	{apperrors.ErrUnsupportedFile, http.StatusUnsupportedMediaType, dto.ErrorCodeUnsupportedFile, "Unsupported file type"},
	{apperrors.ErrFileTooLarge, http.StatusRequestEntityTooLarge, dto.ErrorCodeFileTooLarge, "File too large"},
}

// HandleAPIError writes the error response for err. The message of the error
// itself is returned to the client; server errors are logged and reported.
func HandleAPIError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		detail := dto.NewErrorDetail(m.code, messageFor(err, m))
		var custom *apperrors.CustomError
		if errors.As(err, &custom) && custom.Details != nil {
			detail = detail.WithDetails(custom.Details)
		}
		if m.status < http.StatusInternalServerError {
			detail = detail.WithSeverity(dto.ErrorSeverityWarning)
		}
		c.AbortWithStatusJSON(m.status, dto.NewErrorResponse(detail))
		return
	}

	logger.Error().
		Err(err).
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Msg("Unhandled error")
	errreport.Error(c.Request, err, map[string]interface{}{"route": c.FullPath()})

	detail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, err.Error())
	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(detail))
}

// messageFor prefers the error's own text over the generic message of its sentinel
func messageFor(err error, m errorMapping) string {
	if err.Error() != "" && err != m.target {
		return err.Error()
	}
	return m.message
}
