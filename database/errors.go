package database

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/TestimonyAdegoke/montessa-sub006/errors"
)

var connectionErrorPatterns = []string{
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

var retryableErrorPatterns = []string{
	"deadlock",
	"lock timeout",
	"database is locked",
	"too many connections",
}

// IsConnectionError reports whether err means the database is unreachable.
func IsConnectionError(err error) bool {
	return matchesAny(err, connectionErrorPatterns)
}

// IsRetryableError reports whether retrying the operation may succeed.
func IsRetryableError(err error) bool {
	return IsConnectionError(err) || matchesAny(err, retryableErrorPatterns)
}

func matchesAny(err error, patterns []string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// FromDatabase converts a database error to an AppError for resource.
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
	case IsConnectionError(err):
		return apperrors.New(apperrors.ErrCodeDatabaseError,
			"Database is temporarily unavailable. Please try again.",
			http.StatusServiceUnavailable).WithCause(err)
	case IsRetryableError(err):
		return apperrors.New(apperrors.ErrCodeDatabaseError,
			"Database operation failed. Please try again.",
			http.StatusServiceUnavailable).WithCause(err)
	default:
		return apperrors.DatabaseError(err)
	}
}
