package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/account-api/internal/api/shared"
	"github.com/phrazzld/account-api/internal/domain"
	"github.com/phrazzld/account-api/internal/service"
	"github.com/phrazzld/account-api/internal/service/auth"
	"github.com/phrazzld/account-api/internal/store"
)

// errInvalidCredentials replaces the login failure reason so clients cannot
// tell an unknown email from a wrong password.
var errInvalidCredentials = errors.New("invalid credentials")

// MapErrorToStatusCode maps internal errors to HTTP status codes.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, errInvalidCredentials),
		errors.Is(err, service.ErrPasswordMismatch),
		errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, service.ErrTooManyAttempts):
		return http.StatusTooManyRequests

	case errors.Is(err, store.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrDuplicateEmail),
		errors.Is(err, service.ErrDuplicateNickname),
		errors.Is(err, service.ErrDuplicatePhoneNumber),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidFormat),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err that never
// includes the underlying error text.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErr *domain.ValidationError
	switch {
	case errors.Is(err, errInvalidCredentials),
		errors.Is(err, service.ErrPasswordMismatch):
		return "Invalid credentials"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"
	case errors.Is(err, auth.ErrMissingToken):
		return "Authorization header required"
	case errors.Is(err, domain.ErrUnauthorized):
		return "Authentication required"
	case errors.Is(err, domain.ErrForbidden):
		return "You may only modify your own account"
	case errors.Is(err, service.ErrTooManyAttempts):
		return "Too many login attempts, try again later"
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, service.ErrDuplicateEmail):
		return "Email already exists"
	case errors.Is(err, service.ErrDuplicateNickname):
		return "Nickname already exists"
	case errors.Is(err, service.ErrDuplicatePhoneNumber):
		return "Phone number already exists"
	case errors.As(err, &validationErr):
		return fmt.Sprintf("Invalid %s", validationErr.Field)
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request"
	case errors.Is(err, service.ErrUpdateFailed):
		return "Failed to update user"
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns a validator error into a message naming the
// first failing field, without the struct names validator puts in its errors.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "Validation error"
	}
	fe := fieldErrs[0]
	return fmt.Sprintf("Invalid %s: %s", toSnakeCase(fe.Field()), getValidationTagMessage(fe.Tag()))
}

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
	case "oneof":
		return "invalid value"
	case "e164", "numeric":
		return "invalid phone number"
	default:
		return "validation failed"
	}
}

// toSnakeCase converts a Go field name such as PhoneNumber to phone_number
// so messages match the JSON field names.
func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// HandleAPIError writes the error response for err. fallback, when
// non-empty, replaces the message for 500 responses.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	var throttled *service.TooManyAttemptsError
	if errors.As(err, &throttled) {
		w.Header().Set("Retry-After", retryAfterSeconds(throttled))
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		opts = append(opts, shared.WithElevatedLogLevel())
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

func retryAfterSeconds(e *service.TooManyAttemptsError) string {
	secs := int64(math.Ceil(e.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}
