package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"procissue/internal/infrastructure/persistence/sqlite/model"
)

func setupSQLiteCache(t *testing.T) *SQLiteCache {
	t.Helper()

	db, err := gorm.Open(gormsqlite.Open(filepath.Join(t.TempDir(), "cache.sqlite")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(&model.ProcessingKV{}); err != nil {
		t.Fatalf("auto migrate processing_kv: %v", err)
	}

	return NewSQLiteCache(db)
}

func TestSQLiteCacheSetGetDelete(t *testing.T) {
	cache := setupSQLiteCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "resolved:1:ffc19b10c56ee2bcb4473df8e61de8e2fe7298fb", "2026-10-15T08:00:00Z", 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, found, err := cache.Get(ctx, "resolved:1:ffc19b10c56ee2bcb4473df8e61de8e2fe7298fb")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatalf("Get() expected found=true")
	}
	if value != "2026-10-15T08:00:00Z" {
		t.Fatalf("Get() value = %q", value)
	}

	if err := cache.Set(ctx, "resolved:1:ffc19b10c56ee2bcb4473df8e61de8e2fe7298fb", "2026-10-15T09:30:00Z", 0); err != nil {
		t.Fatalf("Set(update) error = %v", err)
	}

	value, found, err = cache.Get(ctx, "resolved:1:ffc19b10c56ee2bcb4473df8e61de8e2fe7298fb")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found || value != "2026-10-15T09:30:00Z" {
		t.Fatalf("Get() after update = %q, found=%v", value, found)
	}

	if err := cache.Delete(ctx, "resolved:1:ffc19b10c56ee2bcb4473df8e61de8e2fe7298fb"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, found, err = cache.Get(ctx, "resolved:1:ffc19b10c56ee2bcb4473df8e61de8e2fe7298fb")
	if err != nil {
		t.Fatalf("Get() after delete error = %v", err)
	}
	if found {
		t.Fatalf("Get() expected found=false after delete")
	}
}

func TestSQLiteCacheRejectsEmptyKey(t *testing.T) {
	cache := setupSQLiteCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "", "v", 0); err == nil {
		t.Fatalf("Set() expected error for empty key")
	}
	if _, _, err := cache.Get(ctx, ""); err == nil {
		t.Fatalf("Get() expected error for empty key")
	}
	if err := cache.Delete(ctx, ""); err == nil {
		t.Fatalf("Delete() expected error for empty key")
	}
}

func TestSQLiteCacheHonorsTTL(t *testing.T) {
	cache := setupSQLiteCache(t)
	ctx := context.Background()

	now := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	if err := cache.Set(ctx, "resolved:2:abc", "2026-10-15T08:00:00Z", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, found, err := cache.Get(ctx, "resolved:2:abc"); err != nil || !found {
		t.Fatalf("Get() before expiry found=%v err=%v", found, err)
	}

	now = now.Add(2 * time.Minute)
	if _, found, err := cache.Get(ctx, "resolved:2:abc"); err != nil || found {
		t.Fatalf("Get() after expiry found=%v err=%v", found, err)
	}

	// Overwriting without a ttl clears the expiry.
	if err := cache.Set(ctx, "resolved:2:abc", "2026-10-15T08:02:00Z", 0); err != nil {
		t.Fatalf("Set(no ttl) error = %v", err)
	}
	value, found, err := cache.Get(ctx, "resolved:2:abc")
	if err != nil || !found || value != "2026-10-15T08:02:00Z" {
		t.Fatalf("Get() after reset = %q found=%v err=%v", value, found, err)
	}
}
