package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
env: "dev"
storage_path: "data/students.json"
http_server:
  address: "localhost:8082"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.StorageDriver != DriverFile {
		t.Errorf("StorageDriver = %q, want %q", cfg.StorageDriver, DriverFile)
	}
	if cfg.StrictWrites {
		t.Error("StrictWrites should default to false")
	}
	if cfg.Addr != "localhost:8082" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.ReadTimeout != 10*time.Second || cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("unexpected timeouts: read=%s shutdown=%s", cfg.ReadTimeout, cfg.ShutdownTimeout)
	}
	if cfg.RateLimit.RPS != 20 || cfg.RateLimit.Burst != 40 {
		t.Errorf("unexpected rate limit: %+v", cfg.RateLimit)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
env: "dev"
storage_path: "data/students.json"
http_server:
  address: "localhost:8082"
`)
	t.Setenv("STORAGE_PATH", "/tmp/other.json")
	t.Setenv("STORAGE_DRIVER", DriverSQLite)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StoragePath != "/tmp/other.json" {
		t.Errorf("StoragePath = %q, want env override", cfg.StoragePath)
	}
	if cfg.StorageDriver != DriverSQLite {
		t.Errorf("StorageDriver = %q, want %q", cfg.StorageDriver, DriverSQLite)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Fatal("expected error for missing file")
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		path := writeConfig(t, `
env: "dev"
storage_driver: "postgres"
storage_path: "data/students.json"
http_server:
  address: "localhost:8082"
`)
		if _, err := Load(path); err == nil {
			t.Fatal("expected error for unknown driver")
		}
	})
}
