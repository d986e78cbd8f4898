package dto

import (
	"net/http"

	"github.com/zantech/instantorder/internal/domain/shared"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	// ErrCodeValidation is used when a request or draft fails validation
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for requests the current state rejects
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Resource error codes
const (
	ErrCodeNotFound = "ERR_NOT_FOUND"
)

// Collaborator error codes. Requests failing with these may succeed when
// repeated.
const (
	// ErrCodeRenderFailed is used when the invoice could not be rendered
	ErrCodeRenderFailed = "ERR_RENDER_FAILED"
	// ErrCodeDeviceAccess is used when a captured image is unusable
	ErrCodeDeviceAccess = "ERR_DEVICE_ACCESS"
	// ErrCodePersistenceFailed is used when the catalog snapshot could not be written
	ErrCodePersistenceFailed = "ERR_PERSISTENCE_FAILED"
	// ErrCodeStorageFailed is used when an exported document could not be stored
	ErrCodeStorageFailed = "ERR_STORAGE_FAILED"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeNotFound: http.StatusNotFound,

	ErrCodeRenderFailed:      http.StatusServiceUnavailable,
	ErrCodeDeviceAccess:      http.StatusUnprocessableEntity,
	ErrCodePersistenceFailed: http.StatusServiceUnavailable,
	ErrCodeStorageFailed:     http.StatusServiceUnavailable,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps shared.DomainError codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	shared.CodeNotFound:           ErrCodeNotFound,
	shared.CodeInvalidInput:       ErrCodeInvalidInput,
	shared.CodeValidation:         ErrCodeValidation,
	shared.CodeRenderingFailure:   ErrCodeRenderFailed,
	shared.CodeDeviceAccess:       ErrCodeDeviceAccess,
	shared.CodePersistenceFailure: ErrCodePersistenceFailed,
	shared.CodeStorageFailure:     ErrCodeStorageFailed,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Unknown codes are returned as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
