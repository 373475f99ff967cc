package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"procissue/internal/bootstrap/config"
	"procissue/internal/bootstrap/logging"
	"procissue/internal/errs"
)

func Open(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.database"))

	switch strings.ToLower(cfg.Driver) {
	case "sqlite", "sqlite3":
		if err := ensureSQLiteDirectory(logCtx, cfg.DSN); err != nil {
			return nil, errs.Wrap(err, "ensure sqlite directory")
		}

		dsn := sqliteDSN(cfg.DSN, cfg.BusyTimeoutMS)
		db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{
			TranslateError: true,
			Logger:         gormLogger(logCtx),
		})
		if err != nil {
			return nil, errs.Wrap(err, "open sqlite db")
		}

		sqlDB, err := db.DB()
		if err != nil {
			return nil, errs.Wrap(err, "get sql db")
		}
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}

		logging.Info(
			logCtx,
			"database opened",
			slog.String("driver", "sqlite"),
			slog.String("dsn", dsn),
			slog.Int("max_open_conns", cfg.MaxOpenConns),
		)
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// sqliteDSN appends the busy_timeout pragma and an immediate transaction
// lock unless the DSN already sets them. Immediate BEGIN takes the write
// lock up front so concurrent writers wait on busy_timeout instead of
// failing a lock upgrade with SQLITE_BUSY.
func sqliteDSN(dsn string, busyTimeoutMS int) string {
	out := strings.TrimSpace(dsn)
	params := make([]string, 0, 2)
	if busyTimeoutMS > 0 && !strings.Contains(out, "busy_timeout") {
		params = append(params, fmt.Sprintf("_pragma=busy_timeout(%d)", busyTimeoutMS))
	}
	if !strings.Contains(out, "_txlock=") {
		params = append(params, "_txlock=immediate")
	}
	if len(params) == 0 {
		return out
	}

	sep := "?"
	if strings.Contains(out, "?") {
		sep = "&"
	}
	return out + sep + strings.Join(params, "&")
}

// gormLogger routes gorm through the context slog logger. SQL tracing is
// only on at debug level; otherwise gorm stays quiet and callers log failures.
func gormLogger(ctx context.Context) gormlogger.Interface {
	logger := logging.Logger(ctx).With(slog.String("component", "gorm"))
	level := gormlogger.Silent
	if logger.Enabled(ctx, slog.LevelDebug) {
		level = gormlogger.Info
	}
	return gormlogger.NewSlogLogger(logger, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      true,
		LogLevel:                  level,
	})
}

func ensureSQLiteDirectory(ctx context.Context, dsn string) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	candidate := strings.TrimSpace(dsn)
	if candidate == "" || strings.Contains(candidate, ":memory:") || strings.Contains(candidate, "mode=memory") {
		return nil
	}

	if strings.HasPrefix(strings.ToLower(candidate), "file:") {
		candidate = candidate[len("file:"):]
	}
	if idx := strings.Index(candidate, "?"); idx >= 0 {
		candidate = candidate[:idx]
	}

	dir := filepath.Dir(candidate)
	if dir == "" || dir == "." {
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrapf(err, "create sqlite directory %q", dir)
	}

	logging.Info(logging.WithAttrs(ctx, slog.String("component", "bootstrap.database")), "sqlite directory ensured", slog.String("dir", dir))
	return nil
}
