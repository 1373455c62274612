package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/scifair/fairjudge/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8081 {
		t.Errorf("default port = %d, want 8081", cfg.Port)
	}
	if cfg.DBPath != "fairjudge.db" {
		t.Errorf("default db = %q", cfg.DBPath)
	}
	if cfg.VarianceThreshold != 5 {
		t.Errorf("default variance threshold = %v, want 5", cfg.VarianceThreshold)
	}
	if got := cfg.PointsByRank[1]; got != 10 {
		t.Errorf("points for rank 1 = %v, want 10", got)
	}
	if cfg.Addr() != ":8081" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fairjudge.yaml")
	data := []byte("port: 9090\ndb: /tmp/fair.db\nloglevel: debug\nvariance-threshold: 3.5\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Port)
	}
	if cfg.DBPath != "/tmp/fair.db" {
		t.Errorf("db = %q", cfg.DBPath)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("loglevel = %q", cfg.LogLevel)
	}
	if cfg.VarianceThreshold != 3.5 {
		t.Errorf("variance threshold = %v", cfg.VarianceThreshold)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("FAIRJUDGE_PORT", "7000")
	t.Setenv("FAIRJUDGE_UPSTREAM_URL", "https://ksef.example.org")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 7000 {
		t.Errorf("port = %d, want 7000 from env", cfg.Port)
	}
	if cfg.UpstreamURL != "https://ksef.example.org" {
		t.Errorf("upstream url = %q", cfg.UpstreamURL)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("port: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected error for port 0")
	}
}
