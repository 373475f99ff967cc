package storeerr

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"procissue/internal/domain/processing"
)

func openSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "storeerr.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if _, err := sqlDB.Exec("CREATE TABLE kv (k TEXT NOT NULL UNIQUE)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return sqlDB
}

func TestWrapClassifiesKnownErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want error
	}{
		{name: "duplicated key", err: gorm.ErrDuplicatedKey, want: processing.ErrConstraintViolation},
		{name: "foreign key", err: gorm.ErrForeignKeyViolated, want: processing.ErrConstraintViolation},
		{name: "deadline", err: context.DeadlineExceeded, want: processing.ErrStoreUnavailable},
		{name: "bad conn", err: driver.ErrBadConn, want: processing.ErrStoreUnavailable},
		{name: "conn done", err: sql.ErrConnDone, want: processing.ErrStoreUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := Wrap(tc.err, "op")
			if !errors.Is(err, tc.want) {
				t.Fatalf("Wrap(%v) = %v, want %v", tc.err, err, tc.want)
			}
			if !errors.Is(err, tc.err) {
				t.Fatalf("Wrap(%v) lost the driver error", tc.err)
			}
		})
	}
}

func TestWrapLeavesUnknownErrorsUnclassified(t *testing.T) {
	t.Parallel()

	err := Wrap(errors.New("database is locked"), "op")
	if Classify(err) != nil || errors.Is(err, processing.ErrStoreUnavailable) {
		t.Fatalf("Wrap() classified a plain text error: %v", err)
	}
	if Wrap(nil, "op") != nil {
		t.Fatalf("Wrap(nil) expected nil")
	}

	tagged := Wrap(gorm.ErrDuplicatedKey, "insert")
	if Classify(tagged) != nil {
		t.Fatalf("Classify() re-tagged an already classified error")
	}
}

func TestClassifyDriverConstraintError(t *testing.T) {
	sqlDB := openSQLDB(t)

	if _, err := sqlDB.Exec("INSERT INTO kv (k) VALUES ('a')"); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	_, err := sqlDB.Exec("INSERT INTO kv (k) VALUES ('a')")
	if err == nil {
		t.Fatalf("second insert expected unique violation")
	}
	if got := Classify(err); got != processing.ErrConstraintViolation {
		t.Fatalf("Classify(%v) = %v, want constraint violation", err, got)
	}
}

func TestClassifyDriverBusyError(t *testing.T) {
	sqlDB := openSQLDB(t)
	ctx := context.Background()

	holder, err := sqlDB.Conn(ctx)
	if err != nil {
		t.Fatalf("holder conn: %v", err)
	}
	defer holder.Close()
	waiter, err := sqlDB.Conn(ctx)
	if err != nil {
		t.Fatalf("waiter conn: %v", err)
	}
	defer waiter.Close()

	if _, err := holder.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		t.Fatalf("begin immediate: %v", err)
	}
	defer func() {
		_, _ = holder.ExecContext(ctx, "ROLLBACK")
	}()

	_, err = waiter.ExecContext(ctx, "INSERT INTO kv (k) VALUES ('b')")
	if err == nil {
		t.Fatalf("insert under a held write lock expected busy")
	}
	if got := Classify(err); got != processing.ErrStoreUnavailable {
		t.Fatalf("Classify(%v) = %v, want store unavailable", err, got)
	}
}

func TestClassifyClosedPool(t *testing.T) {
	sqlDB := openSQLDB(t)
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	_, err := sqlDB.Exec("SELECT 1")
	if got := Classify(err); got != processing.ErrStoreUnavailable {
		t.Fatalf("Classify(%v) = %v, want store unavailable", err, got)
	}
}
