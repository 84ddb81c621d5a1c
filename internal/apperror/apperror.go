// Package apperror defines the domain errors shared by every layer.
//
// Each error kind is a sentinel (ErrNotFound, ErrInvalidURL, ...) wrapped in an
// *AppError that carries a human-readable message. Callers test the kind with
// errors.Is and read the message with errors.As:
//
//	if errors.Is(err, apperror.ErrInvalidURL) { ... }
//
// HTTP handlers translate the kinds into status codes; the CLI prints Message.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrInvalidURL      = errors.New("invalid url")
	ErrInvalidBackup   = errors.New("invalid backup")
	ErrStorageCorrupt  = errors.New("storage corrupt")
)

type AppError struct {
	Err     error  // sentinel kind
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Cause   error  // Optional: lower-level error that triggered this one
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes both the sentinel and the underlying cause, so errors.Is
// matches either one.
func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// IndexOutOfRange reports a sequence index outside [0, length).
func IndexOutOfRange(index, length int) *AppError {
	return &AppError{
		Err:     ErrIndexOutOfRange,
		Message: fmt.Sprintf("index %d out of range for sequence of length %d", index, length),
		Field:   "index",
	}
}

// InvalidURL reports a URL that is not http(s).
func InvalidURL(url string) *AppError {
	return &AppError{
		Err:     ErrInvalidURL,
		Message: fmt.Sprintf("url %q must start with http:// or https://", url),
		Field:   "url",
	}
}

// InvalidBackup reports an import payload that failed validation.
// cause may be nil.
func InvalidBackup(reason string, cause error) *AppError {
	return &AppError{
		Err:     ErrInvalidBackup,
		Message: "invalid backup: " + reason,
		Cause:   cause,
	}
}

// StorageCorrupt reports an unreadable durable slot. It is logged, never
// returned to users: loading falls back to defaults.
func StorageCorrupt(key string, cause error) *AppError {
	return &AppError{
		Err:     ErrStorageCorrupt,
		Message: fmt.Sprintf("storage slot %s is corrupt", key),
		Field:   key,
		Cause:   cause,
	}
}
