package database

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/gorm"

	"procissue/internal/bootstrap/config"
	"procissue/internal/bootstrap/logging"
)

func TestSQLiteDSNAddsBusyTimeoutAndTxLock(t *testing.T) {
	t.Parallel()

	cases := []struct {
		dsn     string
		timeout int
		want    string
	}{
		{dsn: "state/p.sqlite", timeout: 5000, want: "state/p.sqlite?_pragma=busy_timeout(5000)&_txlock=immediate"},
		{dsn: "file:p.sqlite?cache=shared", timeout: 100, want: "file:p.sqlite?cache=shared&_pragma=busy_timeout(100)&_txlock=immediate"},
		{dsn: "p.sqlite?_pragma=busy_timeout(1)", timeout: 5000, want: "p.sqlite?_pragma=busy_timeout(1)&_txlock=immediate"},
		{dsn: "p.sqlite", timeout: 0, want: "p.sqlite?_txlock=immediate"},
		{dsn: "p.sqlite?_txlock=exclusive", timeout: 0, want: "p.sqlite?_txlock=exclusive"},
	}
	for _, tc := range cases {
		if got := sqliteDSN(tc.dsn, tc.timeout); got != tc.want {
			t.Fatalf("sqliteDSN(%q, %d) = %q, want %q", tc.dsn, tc.timeout, got, tc.want)
		}
	}
}

func TestOpenCreatesDirectoryAndLimitsPool(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	db, err := Open(context.Background(), config.DatabaseConfig{
		Driver:        "sqlite",
		DSN:           filepath.Join(dir, "p.sqlite"),
		MaxOpenConns:  1,
		BusyTimeoutMS: 1000,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("sqlite directory not created: %v", err)
	}
	if got := sqlDB.Stats().MaxOpenConnections; got != 1 {
		t.Fatalf("MaxOpenConnections = %d, want 1", got)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), config.DatabaseConfig{Driver: "oracle", DSN: "x"}); err == nil {
		t.Fatalf("Open() expected error for unsupported driver")
	}
}

type metaRow struct {
	ID  uint
	Key string
}

func openWithLogger(t *testing.T, level string) (*gorm.DB, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	ctx := logging.WithLogger(context.Background(), logging.New(&buf, level, "text"))
	db, err := Open(ctx, config.DatabaseConfig{
		Driver:        "sqlite",
		DSN:           filepath.Join(t.TempDir(), "p.sqlite"),
		MaxOpenConns:  1,
		BusyTimeoutMS: 1000,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&metaRow{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	buf.Reset()
	return db, &buf
}

func TestOpenKeepsNotFoundOutOfLogs(t *testing.T) {
	db, buf := openWithLogger(t, "info")

	var row metaRow
	if err := db.Where("key = ?", "missing").Take(&row).Error; !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("Take() error = %v, want record not found", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("gorm logged at info level: %q", buf.String())
	}
}

func TestOpenTracesSQLThroughContextLoggerAtDebug(t *testing.T) {
	db, buf := openWithLogger(t, "debug")

	var row metaRow
	_ = db.Where("key = ?", "missing").Take(&row).Error

	out := buf.String()
	if !strings.Contains(out, "meta_rows") || !strings.Contains(out, "component=gorm") {
		t.Fatalf("debug log missing SQL trace: %q", out)
	}
	if strings.Contains(out, "record not found") {
		t.Fatalf("debug log reported record not found: %q", out)
	}
}
