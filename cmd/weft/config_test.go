package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("WEFT_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := loadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StoreRoot == "" {
		t.Error("no default store root")
	}
	if cfg.DownloadAttempts != 3 {
		t.Errorf("got %d download attempts, want 3", cfg.DownloadAttempts)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "store_root = \"/var/lib/weft\"\ndownload_attempts = 7\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WEFT_CONFIG", path)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StoreRoot != "/var/lib/weft" {
		t.Errorf("got store root %q", cfg.StoreRoot)
	}
	if cfg.DownloadAttempts != 7 {
		t.Errorf("got %d download attempts, want 7", cfg.DownloadAttempts)
	}
}

func TestLoadConfigPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("download_attempts = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WEFT_CONFIG", path)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StoreRoot == "" {
		t.Error("missing field should keep its default")
	}
	if cfg.DownloadAttempts != 1 {
		t.Errorf("got %d download attempts, want 1", cfg.DownloadAttempts)
	}
}

func TestLoadConfigRejectsBadToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("store_root = [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WEFT_CONFIG", path)

	if _, err := loadConfig(); err == nil {
		t.Error("want error for malformed config")
	}
}
