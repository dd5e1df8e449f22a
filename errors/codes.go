package errors

// ErrorCode is a machine-readable error category.
type ErrorCode string

const (
	// Availability; retrying may succeed.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeConnectionFailed   ErrorCode = "CONNECTION_FAILED"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"
	ErrCodeExternalService    ErrorCode = "EXTERNAL_SERVICE_ERROR"

	// Lookups.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// Input, configuration and file contents.
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField  ErrorCode = "MISSING_FIELD"
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Retryable reports whether failures with this code are worth retrying.
func (c ErrorCode) Retryable() bool {
	switch c {
	case ErrCodeServiceUnavailable, ErrCodeConnectionFailed, ErrCodeTimeout, ErrCodeExternalService:
		return true
	default:
		return false
	}
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool { return code.Retryable() }
