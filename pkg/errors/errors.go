package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError provides a structured error that can be rendered to API consumers.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}

	return e.Message
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// WithInternal returns a copy of the AppError with an attached internal error.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Internal = err
	return &cpy
}

// Is matches AppErrors by code so sentinel comparisons survive WithInternal copies.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return e != nil && other != nil && e.Code == other.Code
}

// Error codes used across the analysis worker core.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeValidation      = "VALIDATION_ERROR"
	CodeInvalidOp       = "INVALID_OPERATION"
	CodeUpstream        = "UPSTREAM_ERROR"
	CodeInitialization  = "INITIALIZATION_ERROR"
	CodeVersionNotFound = "VERSION_NOT_FOUND"
)

// Common errors exposed to the rest of the application.
var (
	ErrNotFound = &AppError{
		Code:       CodeNotFound,
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: http.StatusBadRequest,
	}

	ErrInternalServer = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}
)

// New builds a new application error with the provided metadata.
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// NewNotFound reports an absent analysis, team, folder, or tree item.
func NewNotFound(format string, args ...any) *AppError {
	return New(CodeNotFound, fmt.Sprintf(format, args...), http.StatusNotFound)
}

// NewConflict reports a uniqueness violation such as a duplicate team name.
func NewConflict(format string, args ...any) *AppError {
	return New(CodeConflict, fmt.Sprintf(format, args...), http.StatusConflict)
}

// NewValidation reports malformed or empty input.
func NewValidation(format string, args ...any) *AppError {
	return New(CodeValidation, fmt.Sprintf(format, args...), http.StatusBadRequest)
}

// NewInvalidOperation reports a structural violation such as moving a folder
// into itself or into one of its own descendants.
func NewInvalidOperation(format string, args ...any) *AppError {
	return New(CodeInvalidOp, fmt.Sprintf(format, args...), http.StatusBadRequest)
}

// NewUpstream reports a failed call to the external team-membership authority.
func NewUpstream(format string, args ...any) *AppError {
	return New(CodeUpstream, fmt.Sprintf(format, args...), http.StatusBadGateway)
}

// NewInitialization reports use of a service before it was initialised.
func NewInitialization(format string, args ...any) *AppError {
	return New(CodeInitialization, fmt.Sprintf(format, args...), http.StatusInternalServerError)
}

// NewVersionNotFound reports a missing version snapshot.
func NewVersionNotFound(format string, args ...any) *AppError {
	return New(CodeVersionNotFound, fmt.Sprintf(format, args...), http.StatusNotFound)
}

// IsCode reports whether err is an AppError carrying the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code == code
}

// IsNotFound reports whether err represents an absent resource of any kind.
func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound) || IsCode(err, CodeVersionNotFound)
}

// Wrap turns any error into an AppError while keeping the original error for logging.
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   err,
	}
}

// FromError converts a generic error into an AppError, defaulting to ErrInternalServer.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return ErrInternalServer.WithInternal(err)
}

// NewBadRequest wraps validation errors with a helpful message.
func NewBadRequest(message string) *AppError {
	return &AppError{
		Code:       ErrBadRequest.Code,
		Message:    message,
		StatusCode: ErrBadRequest.StatusCode,
	}
}
