package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the machine-readable tag attached to every application error.
type Kind string

const (
	KindUnauthorized      Kind = "UNAUTHORIZED"
	KindValidation        Kind = "VALIDATION_ERROR"
	KindInvalidSchedule   Kind = "INVALID_SCHEDULE"
	KindScheduleConflict  Kind = "SCHEDULE_CONFLICT"
	KindNotFound          Kind = "NOT_FOUND"
	KindForbidden         Kind = "FORBIDDEN"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindUnknownAction     Kind = "UNKNOWN_ACTION"
	KindInternal          Kind = "INTERNAL_ERROR"
)

// AppError represents an application error
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

func NewInvalidScheduleError(message string) *AppError {
	return &AppError{Kind: KindInvalidSchedule, Message: message}
}

// NewScheduleConflictError wraps err (which may be nil) so the underlying
// cause, a lock miss or a unique violation, stays inspectable.
func NewScheduleConflictError(message string, err error) *AppError {
	return &AppError{Kind: KindScheduleConflict, Message: message, Err: err}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

func NewInvalidTransitionError(message string) *AppError {
	return &AppError{Kind: KindInvalidTransition, Message: message}
}

func NewUnknownActionError(message string) *AppError {
	return &AppError{Kind: KindUnknownAction, Message: message}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

// KindOf reports the kind of err. Errors that are not AppErrors are internal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a kind to its response status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindValidation, KindUnknownAction:
		return http.StatusBadRequest
	case KindInvalidSchedule, KindInvalidTransition:
		return http.StatusUnprocessableEntity
	case KindScheduleConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
