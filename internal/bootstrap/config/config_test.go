package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadUsesDefaultsWithoutConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("database.driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Database.MaxOpenConns != 1 {
		t.Fatalf("database.max_open_conns = %d, want 1", cfg.Database.MaxOpenConns)
	}
	if cfg.Processing.BatchWorkers != 4 {
		t.Fatalf("processing.batch_workers = %d, want 4", cfg.Processing.BatchWorkers)
	}
}

func TestLoadReadsFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "database:\n  dsn: " + filepath.Join(dir, "p.sqlite") + "\nprocessing:\n  taxonomy_file: taxonomy.toml\n  batch_workers: 8\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PI_APP_ENV", "ci")

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.App.Env != "ci" {
		t.Fatalf("app.env = %q, want ci", cfg.App.Env)
	}
	if cfg.Processing.TaxonomyFile != "taxonomy.toml" || cfg.Processing.BatchWorkers != 8 {
		t.Fatalf("processing = %+v", cfg.Processing)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("processing:\n  batch_workers: 0\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(context.Background(), path); err == nil {
		t.Fatalf("Load() expected error for batch_workers = 0")
	}
	if _, err := Load(context.Background(), filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("Load() expected error for explicit missing file")
	}
}
