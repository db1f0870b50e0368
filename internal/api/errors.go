package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/tasklist-api/internal/api/shared"
	"github.com/phrazzld/tasklist-api/internal/domain"
	"github.com/phrazzld/tasklist-api/internal/service"
	"github.com/phrazzld/tasklist-api/internal/service/auth"
)

// Client-facing messages
const (
	MessageInvalidCredentials = "Invalid credentials"
	MessageDuplicateEmail     = "Email is already registered"
	MessageTaskNotFound       = "Task not found"
	MessageTaskDeleted        = "Task deleted successfully"
	MessageInvalidBody        = "Invalid request format"
	MessageInternal           = "An unexpected error occurred"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. Unknown errors are 500.
func MapErrorToStatusCode(err error) int {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrTaskNotFound):
		return http.StatusNotFound

	// Registration conflicts are reported as bad input, not 409.
	case errors.Is(err, auth.ErrDuplicateEmail),
		errors.Is(err, domain.ErrValidation),
		errors.As(err, &validationErrs),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. Internal details never reach the client.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return MessageInternal
	}

	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return "Please authenticate"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return MessageInvalidCredentials

	case errors.Is(err, auth.ErrDuplicateEmail):
		return MessageDuplicateEmail

	case errors.Is(err, service.ErrTaskNotFound):
		return MessageTaskNotFound

	case errors.As(err, &validationErrs):
		return SanitizeValidationError(validationErrs)

	case errors.Is(err, shared.ErrEmptyBody):
		return MessageInvalidBody

	case errors.Is(err, domain.ErrValidation):
		return domainValidationMessage(err)

	default:
		return MessageInternal
	}
}

// domainValidationMessage turns a domain validation error into a sentence.
// Domain errors are built from fixed strings, so they are safe to expose.
func domainValidationMessage(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return capitalize(ve.Error())
	}
	msg := strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")
	return capitalize(msg)
}

// SanitizeValidationError describes the first failed field of a validator
// error without exposing struct names.
func SanitizeValidationError(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return "Validation error"
	}
	fe := errs[0]
	return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag()))
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	default:
		return "validation failed"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// HandleAPIError writes the error response for err. A non-empty message
// overrides the derived client message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
