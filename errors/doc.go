// Package errors provides the service's structured error type.
//
// AppError carries a machine-readable code, an HTTP status, a retryable
// flag and optional details. Handlers return it and the server package
// renders it as {"error": {...}}.
package errors
