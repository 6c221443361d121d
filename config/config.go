// ABOUTME: Runtime configuration loaded from environment variables
// ABOUTME: Handles .env bootstrap, SALESDESK_* overrides, and XDG data-dir defaults
package config

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// DataDir holds the overlay database, users file, templates, and
	// exports unless the individual paths override it.
	DataDir string `env:"SALESDESK_DATA_DIR"`
	// SnapshotPath is a snapshot CSV or a directory to scan for the
	// newest FinalDataForDashboard file.
	SnapshotPath  string `env:"SALESDESK_SNAPSHOT_PATH"`
	DBPath        string `env:"SALESDESK_DB_PATH"`
	UsersPath     string `env:"SALESDESK_USERS_PATH"`
	TemplatesPath string `env:"SALESDESK_TEMPLATES_PATH"`
	ExportDir     string `env:"SALESDESK_EXPORT_DIR"`

	ListenAddr string `env:"SALESDESK_LISTEN_ADDR" envDefault:":8080"`
	// SessionSecret signs the session cookie; generated ephemerally when
	// unset, which invalidates sessions across restarts.
	SessionSecret string `env:"SALESDESK_SESSION_SECRET"`

	JustCallKey    string `env:"JUSTCALL_API_KEY"`
	JustCallSecret string `env:"JUSTCALL_API_SECRET"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; a missing file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(xdg.DataHome, "salesdesk")
	}
	if cfg.SnapshotPath == "" {
		cfg.SnapshotPath = filepath.Join(cfg.DataDir, "snapshots")
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "state.db")
	}
	if cfg.UsersPath == "" {
		cfg.UsersPath = filepath.Join(cfg.DataDir, "users.json")
	}
	if cfg.TemplatesPath == "" {
		cfg.TemplatesPath = filepath.Join(cfg.DataDir, "templates.json")
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = filepath.Join(cfg.DataDir, "exports")
	}
	return cfg, nil
}
