package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds all resolved aide state file paths.
// Use ResolvePaths() to populate this struct with defaults + env overrides.
type Paths struct {
	AideHome   string // ~/.aide or AIDE_HOME
	DBPath     string // assistant.db or AIDE_DB_PATH
	NotesDir   string // notes/ or AIDE_NOTES_DIR
	ExportDir  string // exports/ or AIDE_EXPORT_DIR
	ConfigPath string // config.toml or AIDE_CONFIG_PATH
}

// ResolvePaths returns all aide paths, respecting env var overrides.
// Environment variables:
//   - AIDE_HOME: base directory for all aide state (default: ~/.aide)
//   - AIDE_DB_PATH: assistant database (default: $AIDE_HOME/assistant.db)
//   - AIDE_NOTES_DIR: markdown note mirrors (default: $AIDE_HOME/notes)
//   - AIDE_EXPORT_DIR: JSON backups (default: $AIDE_HOME/exports)
//   - AIDE_CONFIG_PATH: config file (default: $AIDE_HOME/config.toml)
//
// If AIDE_HOME is set, it becomes the base for all default paths.
// Specific env vars (AIDE_DB_PATH, etc.) override both the default and
// the AIDE_HOME base.
func ResolvePaths() (*Paths, error) {
	home, err := resolveAideHome()
	if err != nil {
		return nil, err
	}

	return &Paths{
		AideHome:   home,
		DBPath:     resolvePathWithEnv("AIDE_DB_PATH", home, "assistant.db"),
		NotesDir:   resolvePathWithEnv("AIDE_NOTES_DIR", home, "notes"),
		ExportDir:  resolvePathWithEnv("AIDE_EXPORT_DIR", home, "exports"),
		ConfigPath: resolvePathWithEnv("AIDE_CONFIG_PATH", home, "config.toml"),
	}, nil
}

// resolveAideHome returns the aide home directory from AIDE_HOME or ~/.aide.
func resolveAideHome() (string, error) {
	if v := os.Getenv("AIDE_HOME"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".aide"), nil
}

// resolvePathWithEnv returns the path from envKey if set, otherwise joins base + suffix.
func resolvePathWithEnv(envKey, base, suffix string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return filepath.Join(base, suffix)
}

// ensureDir creates dir if it does not exist yet.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	return nil
}
