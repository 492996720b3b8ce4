package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates the upstream is unavailable or was simulated as failing.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeConnectionFailed indicates the transport could not complete the exchange.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeTimeout indicates the call exceeded its deadline.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeExternalService indicates the upstream answered with a failure.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

// Input errors
const (
	// ErrCodeInvalidInput indicates the request could not be formed from its description.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeInvalidFormat indicates a payload could not be encoded or decoded.
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"
)

// ErrCodeInternal indicates a broken setup or an unexpected failure.
const ErrCodeInternal ErrorCode = "INTERNAL_ERROR"

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeConnectionFailed:   true,
	ErrCodeTimeout:            true,
	ErrCodeExternalService:    true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
