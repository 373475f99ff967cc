package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"procissue/internal/usecase/processing"
)

func writeConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "database:\n  dsn: " + filepath.Join(dir, "state", "p.sqlite") + "\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestInitSchemaStampsVersion(t *testing.T) {
	ctx := context.Background()
	app, err := New(ctx, writeConfig(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = app.Close(ctx)
	})

	for i := 0; i < 2; i++ {
		if err := app.InitSchema(ctx); err != nil {
			t.Fatalf("InitSchema() #%d error = %v", i, err)
		}
	}

	version, err := app.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if version != SchemaVersion {
		t.Fatalf("SchemaVersion() = %q, want %q", version, SchemaVersion)
	}
}

func TestModuleProvidesProcessingService(t *testing.T) {
	ctx := context.Background()
	configFile := writeConfig(t)

	var (
		svc *processing.Service
		db  *gorm.DB
	)
	app := fx.New(
		Module,
		fx.NopLogger,
		fx.Provide(func() context.Context { return ctx }),
		fx.Provide(
			fx.Annotate(
				func() string { return configFile },
				fx.ResultTags(`name:"configFile"`),
			),
		),
		fx.Populate(&svc, &db),
	)
	if err := app.Err(); err != nil {
		t.Fatalf("fx.New() error = %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if svc == nil {
		t.Fatalf("processing service not populated")
	}
	if !svc.Taxonomy().IsKnown("native_missing_dsym") {
		t.Fatalf("taxonomy missing built-in types")
	}
}
