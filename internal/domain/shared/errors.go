package shared

import (
	"errors"
	"sort"
	"strings"
)

// Error codes shared by every bounded context
const (
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeValidation         = "VALIDATION_FAILED"
	CodeRenderingFailure   = "RENDER_FAILED"
	CodeDeviceAccess       = "DEVICE_ACCESS_FAILED"
	CodePersistenceFailure = "PERSISTENCE_FAILED"
	CodeStorageFailure     = "STORAGE_FAILED"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	Cause   error             `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DomainError with the same code, so that
// errors.Is(err, shared.ErrNotFound) matches any not-found error.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a recoverable validation error. details maps
// field names to a human readable reason.
func NewValidationError(message string, details map[string]string) *DomainError {
	return &DomainError{
		Code:    CodeValidation,
		Message: message,
		Details: details,
	}
}

// NewRenderingFailure wraps an error raised while rendering a document.
func NewRenderingFailure(message string, cause error) *DomainError {
	return &DomainError{Code: CodeRenderingFailure, Message: message, Cause: cause}
}

// NewDeviceAccessFailure wraps an error raised while acquiring an image.
func NewDeviceAccessFailure(message string, cause error) *DomainError {
	return &DomainError{Code: CodeDeviceAccess, Message: message, Cause: cause}
}

// NewPersistenceError wraps a snapshot load/save failure.
func NewPersistenceError(message string, cause error) *DomainError {
	return &DomainError{Code: CodePersistenceFailure, Message: message, Cause: cause}
}

// NewStorageFailure wraps an error raised by exported document storage.
func NewStorageFailure(message string, cause error) *DomainError {
	return &DomainError{Code: CodeStorageFailure, Message: message, Cause: cause}
}

// Common domain errors
var (
	ErrNotFound     = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrValidation   = NewDomainError(CodeValidation, "Validation failed")
)

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	return hasCode(err, CodeValidation)
}

// IsRetryable reports whether err came from an external collaborator
// (rendering, image acquisition, storage) and may succeed when re-invoked.
func IsRetryable(err error) bool {
	return hasCode(err, CodeRenderingFailure) ||
		hasCode(err, CodeDeviceAccess) ||
		hasCode(err, CodePersistenceFailure) ||
		hasCode(err, CodeStorageFailure)
}

func hasCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// FieldErrors accumulates per-field validation messages.
type FieldErrors map[string]string

// Add records a message for field, keeping the first one reported.
func (f FieldErrors) Add(field, message string) {
	if _, ok := f[field]; !ok {
		f[field] = message
	}
}

// Err returns a ValidationError when any field failed, nil otherwise.
func (f FieldErrors) Err(message string) error {
	if len(f) == 0 {
		return nil
	}
	if message == "" {
		fields := make([]string, 0, len(f))
		for k := range f {
			fields = append(fields, k)
		}
		sort.Strings(fields)
		message = "invalid " + strings.Join(fields, ", ")
	}
	return NewValidationError(message, map[string]string(f))
}
