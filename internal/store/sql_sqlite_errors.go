package store

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// isUnavailable reports whether err means the store itself cannot be used,
// as opposed to a problem with the statement or the data.
func isUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrStoreUnavailable) {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrCantOpen,
			sqlite3.ErrBusy,
			sqlite3.ErrLocked,
			sqlite3.ErrIoErr,
			sqlite3.ErrReadonly,
			sqlite3.ErrFull,
			sqlite3.ErrNotADB,
			sqlite3.ErrCorrupt,
			sqlite3.ErrPerm:
			return true
		}
		return false
	}

	// database/sql reports a closed pool with an unexported error value
	return strings.Contains(err.Error(), "sql: database is closed")
}

// wrapErr joins kind and err, adding [ErrStoreUnavailable] when err comes
// from an unusable store.
func wrapErr(kind, err error) error {
	if isUnavailable(err) {
		return fmt.Errorf("%w: %w: %w", ErrStoreUnavailable, kind, err)
	}
	return fmt.Errorf("%w: %w", kind, err)
}
