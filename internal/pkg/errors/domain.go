package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
)

// Business-rule failures. Anything that does not match one of these is
// treated as an internal failure at the API boundary.
var (
	ErrUnauthenticated        = stderrors.New("authentication required")
	ErrInvalidToken           = stderrors.New("invalid or expired token")
	ErrForbidden              = stderrors.New("forbidden")
	ErrNotFound               = stderrors.New("not found")
	ErrAlreadyMember          = stderrors.New("user already a member of this organization")
	ErrAlreadyAsked           = stderrors.New("only one question per user is allowed in this organization")
	ErrMessagingDisabled      = stderrors.New("messaging is currently disabled for this organization")
	ErrCooldownActive         = stderrors.New("cooldown active")
	ErrValidation             = stderrors.New("validation failed")
	ErrDuplicateUser          = stderrors.New("user already exists")
	ErrInvalidCredentials     = stderrors.New("invalid credentials")
	ErrInvalidOrganizationURL = stderrors.New("invalid organization URL")
)

// CooldownError carries the whole seconds left before the next question is admitted.
type CooldownError struct {
	RemainingSeconds int64
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("please wait %d seconds before asking another question", e.RemainingSeconds)
}

func (e *CooldownError) Is(target error) bool {
	return target == ErrCooldownActive
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFound wraps ErrNotFound with the missing resource name.
func NotFound(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}

// Forbidden wraps ErrForbidden with a caller-facing reason.
func Forbidden(reason string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, reason)
}

type mapping struct {
	target error
	status int
	code   string
}

var mappings = []mapping{
	{ErrUnauthenticated, http.StatusUnauthorized, ErrCodeUnauthorized},
	{ErrInvalidToken, http.StatusUnauthorized, ErrCodeInvalidToken},
	{ErrForbidden, http.StatusForbidden, ErrCodeForbidden},
	{ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
	{ErrAlreadyMember, http.StatusBadRequest, ErrCodeAlreadyMember},
	{ErrAlreadyAsked, http.StatusForbidden, ErrCodeAlreadyAsked},
	{ErrMessagingDisabled, http.StatusForbidden, ErrCodeMessagingDisabled},
	{ErrCooldownActive, http.StatusTooManyRequests, ErrCodeCooldownActive},
	{ErrValidation, http.StatusBadRequest, ErrCodeInvalidInput},
	{ErrDuplicateUser, http.StatusBadRequest, ErrCodeConflict},
	{ErrInvalidCredentials, http.StatusBadRequest, ErrCodeInvalidCredentials},
	{ErrInvalidOrganizationURL, http.StatusBadRequest, ErrCodeInvalidInput},
}

// Classify returns the HTTP status and code for err. ok is false for errors
// outside the business taxonomy.
func Classify(err error) (status int, code string, ok bool) {
	for _, m := range mappings {
		if stderrors.Is(err, m.target) {
			return m.status, m.code, true
		}
	}
	return http.StatusInternalServerError, ErrCodeInternal, false
}

// WriteDomainError renders err for the caller. Business-rule failures are
// surfaced verbatim; everything else is logged and answered with a generic 500.
func WriteDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, ok := Classify(err)
	if !ok {
		log.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		WriteError(w, status, code, "Server Error", nil)
		return
	}

	var details interface{}
	var cooldown *CooldownError
	if stderrors.As(err, &cooldown) {
		w.Header().Set("Retry-After", strconv.FormatInt(cooldown.RemainingSeconds, 10))
		details = map[string]int64{"retryAfterSeconds": cooldown.RemainingSeconds}
	}

	WriteError(w, status, code, err.Error(), details)
}
