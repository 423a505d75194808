package utils

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"gorm.io/gorm"
)

var (
	ErrorRecordNotFound = errors.New("record not found")

	// ErrorValidation covers malformed input, out-of-range paging and
	// references to undeclared sort/search fields.
	ErrorValidation = errors.New("validation error")

	// ErrorConflict is returned when an optimistic update collided with a
	// concurrent modification (or a delete) since the last read.
	ErrorConflict = errors.New("concurrent modification conflict")

	// ErrorStoreUnavailable means the database could not be reached at all.
	// Callers map this to a retryable 503, never a 404.
	ErrorStoreUnavailable = errors.New("record store unavailable")

	// ErrorNotificationFailed marks a publish failure after a successful
	// commit. It is logged and surfaced as degraded success, never as a
	// request failure.
	ErrorNotificationFailed = errors.New("notification publish failed")
)

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}

// Classify maps storage-layer errors into the local taxonomy so handlers can
// choose between 404 and retry semantics. Unknown errors pass through.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrorRecordNotFound
	case errors.Is(err, ErrorRecordNotFound),
		errors.Is(err, ErrorValidation),
		errors.Is(err, ErrorConflict),
		errors.Is(err, ErrorStoreUnavailable):
		return err
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, context.DeadlineExceeded):
		return ErrorStoreUnavailable
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrorStoreUnavailable
	}
	return err
}
