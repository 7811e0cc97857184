package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Sentinel errors for the billing engine. Callers match with errors.Is via the
// helpers below; producers attach one with Mark at the end of a builder chain.
var (
	ErrNotFound          = newError(ErrCodeNotFound, "resource not found")
	ErrValidation        = newError(ErrCodeValidation, "validation failed")
	ErrInvalidTransition = newError(ErrCodeInvalidTransition, "invalid status transition")
	ErrSequenceConflict  = newError(ErrCodeSequenceConflict, "invoice number allocation contention")
	ErrBackend           = newError(ErrCodeBackend, "billing backend error")
	ErrRender            = newError(ErrCodeRender, "document render error")
	ErrHTTPClient        = newError(ErrCodeHTTPClient, "http client error")
	ErrDatabase          = newError(ErrCodeDatabase, "database error")

	statusCodeMap = map[error]int{
		ErrNotFound:          http.StatusNotFound,
		ErrValidation:        http.StatusBadRequest,
		ErrInvalidTransition: http.StatusConflict,
		ErrSequenceConflict:  http.StatusConflict,
		ErrBackend:           http.StatusBadGateway,
		ErrRender:            http.StatusUnprocessableEntity,
		ErrHTTPClient:        http.StatusInternalServerError,
		ErrDatabase:          http.StatusInternalServerError,
	}
)

const (
	ErrCodeNotFound          = "not_found"
	ErrCodeValidation        = "validation_error"
	ErrCodeInvalidTransition = "invalid_transition"
	ErrCodeSequenceConflict  = "sequence_conflict"
	ErrCodeBackend           = "backend_error"
	ErrCodeRender            = "render_error"
	ErrCodeHTTPClient        = "http_client_error"
	ErrCodeDatabase          = "database_error"
)

// InternalError is the concrete error type carried by all sentinels.
type InternalError struct {
	Code    string // machine-readable error code
	Message string // human-readable error message
	Err     error  // underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is matches on code so wrapped errors compare equal to their sentinel.
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}
	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}
	return e.Code == t.Code
}

func newError(code, message string) *InternalError {
	return &InternalError{Code: code, Message: message}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsInvalidTransition checks if an error is an illegal state machine transition
func IsInvalidTransition(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}

// IsSequenceConflict checks if an error is an exhausted allocation retry budget
func IsSequenceConflict(err error) bool {
	return errors.Is(err, ErrSequenceConflict)
}

// IsBackend checks if an error came from an online billing backend
func IsBackend(err error) bool {
	return errors.Is(err, ErrBackend)
}

// IsRender checks if an error is a compliance export render error
func IsRender(err error) bool {
	return errors.Is(err, ErrRender)
}

// IsHTTPClient checks if an error is an http client error
func IsHTTPClient(err error) bool {
	return errors.Is(err, ErrHTTPClient)
}

// HTTPStatusFromErr maps a marked error to an HTTP status code for the API layer.
func HTTPStatusFromErr(err error) int {
	for e, status := range statusCodeMap {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}
