package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/weftbuild/weft/pkg/store"
)

// Config holds user settings, read from $WEFT_CONFIG or
// ~/.config/weft/config.toml.
type Config struct {
	// StoreRoot is the object store's root directory.
	StoreRoot string `toml:"store_root"`

	// DownloadAttempts is the maximum number of attempts per download.
	DownloadAttempts int `toml:"download_attempts"`
}

func defaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home directory: %w", err)
	}
	return Config{
		StoreRoot:        filepath.Join(home, ".local", "share", "weft"),
		DownloadAttempts: 3,
	}, nil
}

// loadConfig reads the config file if present, falling back to defaults
// for missing fields. A missing file is not an error.
func loadConfig() (Config, error) {
	cfg, err := defaultConfig()
	if err != nil {
		return Config{}, err
	}

	path := os.Getenv("WEFT_CONFIG")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, ".config", "weft", "config.toml")
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if cfg.DownloadAttempts < 1 {
		cfg.DownloadAttempts = 1
	}
	return cfg, nil
}

// openStore resolves the store root (flag beats config) and opens it.
func openStore(cmd *cobra.Command) (*store.Store, Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, Config{}, err
	}
	if flagRoot, _ := cmd.Flags().GetString("store"); flagRoot != "" {
		cfg.StoreRoot = flagRoot
	}
	return store.NewStore(cfg.StoreRoot), cfg, nil
}
