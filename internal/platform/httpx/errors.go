// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUpstream     = errors.New("upstream failure")
)

// Error carries a client-facing message together with one of the sentinel
// kinds above. errors.Is matches against the kind.
type Error struct {
	Kind    error
	Message string
	Details string
}

func (e *Error) Error() string {
	if e.Message == "" && e.Kind != nil {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Kind }

// Errorf builds an *Error of the given kind with a formatted message.
func Errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation is shorthand for Errorf(ErrValidation, ...).
func Validation(format string, args ...any) error {
	return Errorf(ErrValidation, format, args...)
}

// Upstream wraps a collaborator failure, keeping its message for the client.
func Upstream(err error) error {
	if err == nil {
		return nil
	}
	var he *Error
	if errors.As(err, &he) {
		return err
	}
	return &Error{Kind: ErrUpstream, Message: err.Error()}
}

// StatusFor maps an error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// RespondError maps domain errors to the {"error": ...} envelope.
func RespondError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	var he *Error
	if errors.As(err, &he) {
		JSON(w, status, ErrorBody{Error: he.Error(), Details: he.Details})
		return
	}
	if status == http.StatusInternalServerError {
		Fail(w, status, "Internal Server Error")
		return
	}
	Fail(w, status, err.Error())
}

// RespondErrorLogged is RespondError that also logs server-side failures.
func RespondErrorLogged(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if StatusFor(err) >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed", slog.Any("error", err), slog.String("method", r.Method), slog.String("path", r.URL.Path))
	}
	RespondError(w, err)
}
