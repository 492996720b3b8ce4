// Package errors provides the structured AppError used when API-client
// failures cross a service boundary. It carries machine-readable codes,
// an HTTP status hint, and retryable detection.
package errors
