package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != ":9090" || cfg.StorageDriver != "bolt" || cfg.SessionTTL != 30*time.Minute || cfg.ClearOnPaymentSuccess {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("EMPOWER_ADDR", ":8080")
	t.Setenv("EMPOWER_STORAGE_DRIVER", "MEMORY")
	t.Setenv("EMPOWER_SESSION_TTL", "5m")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != ":8080" || cfg.StorageDriver != "memory" || cfg.SessionTTL != 5*time.Minute {
		t.Errorf("Load() = %+v", cfg)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("EMPOWER_STORAGE_PATH=/tmp/x.db\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("EMPOWER_STORAGE_PATH") })

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.StoragePath != "/tmp/x.db" {
		t.Errorf("StoragePath = %q, want /tmp/x.db", cfg.StoragePath)
	}
}

func TestLoad_BadDriver(t *testing.T) {
	t.Setenv("EMPOWER_STORAGE_DRIVER", "postgres")
	if _, err := Load(""); err == nil {
		t.Error("Load() accepted an unknown storage driver")
	}
}
