// Package errors provides structured application errors.
//
// AppError carries a machine-readable code, a human-readable message,
// retryable detection, free-form details, and an optional cause that stays
// visible to errors.Is and errors.As.
package errors
