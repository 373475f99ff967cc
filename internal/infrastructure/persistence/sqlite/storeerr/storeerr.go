// Package storeerr maps SQLite and database/sql failures onto the
// processing store sentinels.
package storeerr

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"

	sqlitedriver "github.com/glebarez/go-sqlite"
	"gorm.io/gorm"
	sqlite3lib "modernc.org/sqlite/lib"

	"procissue/internal/domain/processing"
	"procissue/internal/errs"
)

// Wrap is the root-cause boundary for driver errors: it captures a stack and
// tags classifiable errors with the matching processing sentinel.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errs.WithStack(errs.WrapKind(err, Classify(err), msg))
}

// Classify returns the sentinel err belongs to, or nil when err is already
// classified or is not a store condition.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, processing.ErrConstraintViolation), errors.Is(err, processing.ErrStoreUnavailable):
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return processing.ErrConstraintViolation
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, driver.ErrBadConn), errors.Is(err, sql.ErrConnDone):
		return processing.ErrStoreUnavailable
	}

	var sqliteErr *sqlitedriver.Error
	if errors.As(err, &sqliteErr) {
		// Extended result codes keep the primary code in the low byte.
		switch sqliteErr.Code() & 0xff {
		case sqlite3lib.SQLITE_CONSTRAINT:
			return processing.ErrConstraintViolation
		case sqlite3lib.SQLITE_BUSY,
			sqlite3lib.SQLITE_LOCKED,
			sqlite3lib.SQLITE_CANTOPEN,
			sqlite3lib.SQLITE_IOERR,
			sqlite3lib.SQLITE_FULL,
			sqlite3lib.SQLITE_READONLY:
			return processing.ErrStoreUnavailable
		}
		return nil
	}

	// database/sql does not export its closed-pool error.
	if strings.Contains(err.Error(), "sql: database is closed") {
		return processing.ErrStoreUnavailable
	}
	return nil
}
