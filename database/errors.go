package database

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/kbukum/clinicq/errors"
)

var connectionPatterns = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"i/o timeout",
	"no route to host",
	"network is unreachable",
	"connection closed",
	"driver: bad connection",
	"sql: database is closed",
}

var retryablePatterns = []string{
	"deadlock",
	"lock timeout",
	"database is locked",
	"too many connections",
}

func containsAny(err error, patterns []string) bool {
	msg := strings.ToLower(err.Error())
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsConnectionError reports whether err looks like a lost or refused connection.
func IsConnectionError(err error) bool {
	return err != nil && containsAny(err, connectionPatterns)
}

// IsRetryableError reports whether err may succeed on retry.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	return IsConnectionError(err) || containsAny(err, retryablePatterns)
}

// IsNotFoundError reports whether err is gorm.ErrRecordNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// FromDatabase converts a database error to an AppError for resource. An
// existing AppError passes through untouched.
func FromDatabase(err error, resource string) *apperrors.AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NotFound(resource, "")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.AlreadyExists(resource).WithCause(err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperrors.Conflict("The " + resource + " references a record that does not exist or is still in use.").
			WithCause(err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.New(apperrors.ErrCodeTimeout, "The database did not answer in time.", http.StatusGatewayTimeout).
			WithCause(err)
	case IsConnectionError(err):
		return apperrors.ServiceUnavailable("database").WithCause(err)
	case IsRetryableError(err):
		return (&apperrors.AppError{
			Code:       apperrors.ErrCodeDatabaseError,
			Message:    "Database operation failed. Please try again.",
			HTTPStatus: http.StatusServiceUnavailable,
			Retryable:  true,
		}).WithCause(err)
	}
	return apperrors.DatabaseError(err)
}
