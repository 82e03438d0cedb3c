// Package errors defines AppError, the error type every clinicq handler
// returns to clients. An AppError carries a machine-readable code, a message
// safe to show to users, the HTTP status to answer with and whether retrying
// can succeed.
package errors
