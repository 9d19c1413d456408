package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	ErrCodeLoad         = "LOAD_ERROR"
	ErrCodePersist      = "PERSIST_ERROR"
	ErrCodeResume       = "RESUME_ERROR"
	ErrCodeEmptyRun     = "EMPTY_RUN"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeInvalidState = "INVALID_STATE"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// AppError represents an application error with an error code
type AppError struct {
	Code    string // Error code (e.g., "PERSIST_ERROR", "EMPTY_RUN")
	Message string // Human-readable error message
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewLoadError reports a missing or malformed question bank.
func NewLoadError(source string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeLoad,
		Message: fmt.Sprintf("failed to load question bank %s", source),
		Err:     err,
	}
}

// NewPersistError reports a failed stats or session read/write.
func NewPersistError(op string, err error) *AppError {
	return &AppError{
		Code:    ErrCodePersist,
		Message: fmt.Sprintf("%s failed", op),
		Err:     err,
	}
}

// NewResumeError reports that there is no resumable session.
func NewResumeError(reason string) *AppError {
	return &AppError{
		Code:    ErrCodeResume,
		Message: reason,
	}
}

// NewEmptyRunError rejects a run with no questions.
func NewEmptyRunError() *AppError {
	return &AppError{
		Code:    ErrCodeEmptyRun,
		Message: "no questions selected for the run",
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
	}
}

// NewInvalidStateError rejects an operation the current phase does not allow.
func NewInvalidStateError(op, phase string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidState,
		Message: fmt.Sprintf("%s is not allowed while %s", op, phase),
	}
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal error",
		Err:     err,
	}
}

// Is reports whether err carries an AppError with the given code.
func Is(err error, code string) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Code returns the AppError code of err, or ErrCodeInternal.
func Code(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// Recoverable reports whether the program can continue after err.
// Only question bank load failures are fatal.
func Recoverable(err error) bool {
	return err == nil || !Is(err, ErrCodeLoad)
}
