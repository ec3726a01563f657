package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.Store.Driver != "sanity" || cfg.Sanity.APIVersion != "2024-01-01" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Revalidate != time.Minute {
		t.Errorf("revalidate = %v", cfg.Revalidate)
	}
	if cfg.File != "" {
		t.Errorf("file = %q", cfg.File)
	}
	if cfg.IsDevelopment() {
		t.Error("default env should not be development")
	}
}

func TestLoadEnvAliases(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("NEXT_PUBLIC_SANITY_PROJECT_ID", "public-id")
	t.Setenv("NEXT_PUBLIC_SANITY_DATASET", "production")
	t.Setenv("SANITY_DATASET", "staging")
	t.Setenv("APP_ENV", "development")
	t.Setenv("CONTENT_REVALIDATE", "15s")
	t.Setenv("FRONTEND_URL2", "https://radit.dev")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Sanity.ProjectID != "public-id" {
		t.Errorf("project id = %q", cfg.Sanity.ProjectID)
	}
	if cfg.Sanity.Dataset != "staging" {
		t.Errorf("dataset = %q, want the first bound variable", cfg.Sanity.Dataset)
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development")
	}
	if cfg.Revalidate != 15*time.Second {
		t.Errorf("revalidate = %v", cfg.Revalidate)
	}
	if got := cfg.FrontendOrigins(); len(got) != 2 || got[1] != "https://radit.dev" {
		t.Errorf("origins = %v", got)
	}
}

func TestLoadNodeEnvAndPlainSeconds(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("NODE_ENV", "development")
	t.Setenv("CONTENT_REVALIDATE", "60")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.IsDevelopment() {
		t.Errorf("env = %q, want development from NODE_ENV", cfg.Env)
	}
	if cfg.Revalidate != time.Minute {
		t.Errorf("revalidate = %v", cfg.Revalidate)
	}

	t.Setenv("APP_ENV", "production")
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IsDevelopment() {
		t.Error("APP_ENV should win over NODE_ENV")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yaml")
	data := "port: \"9000\"\nstudio:\n  user: admin\n  pass: secret\nstore:\n  driver: sqlite\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "7000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "7000" {
		t.Errorf("env should override file, port = %q", cfg.Port)
	}
	if !cfg.StudioAuthConfigured() || cfg.Store.Driver != "sqlite" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.File != path {
		t.Errorf("file = %q", cfg.File)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for explicit missing file")
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}
