package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolvePaths_Defaults(t *testing.T) {
	// Clear all env overrides.
	t.Setenv("AIDE_HOME", "")
	t.Setenv("AIDE_DB_PATH", "")
	t.Setenv("AIDE_NOTES_DIR", "")
	t.Setenv("AIDE_EXPORT_DIR", "")
	t.Setenv("AIDE_CONFIG_PATH", "")

	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("get home dir: %v", err)
	}

	paths, err := ResolvePaths()
	if err != nil {
		t.Fatalf("ResolvePaths() error: %v", err)
	}

	expectedBase := filepath.Join(home, ".aide")

	if paths.AideHome != expectedBase {
		t.Errorf("AideHome = %q, want %q", paths.AideHome, expectedBase)
	}
	if paths.DBPath != filepath.Join(expectedBase, "assistant.db") {
		t.Errorf("DBPath = %q", paths.DBPath)
	}
	if paths.NotesDir != filepath.Join(expectedBase, "notes") {
		t.Errorf("NotesDir = %q", paths.NotesDir)
	}
	if paths.ExportDir != filepath.Join(expectedBase, "exports") {
		t.Errorf("ExportDir = %q", paths.ExportDir)
	}
	if paths.ConfigPath != filepath.Join(expectedBase, "config.toml") {
		t.Errorf("ConfigPath = %q", paths.ConfigPath)
	}
}

func TestResolvePaths_HomeOverride(t *testing.T) {
	base := t.TempDir()
	t.Setenv("AIDE_HOME", base)
	t.Setenv("AIDE_DB_PATH", "")
	t.Setenv("AIDE_NOTES_DIR", "")
	t.Setenv("AIDE_EXPORT_DIR", "")
	t.Setenv("AIDE_CONFIG_PATH", "")

	paths, err := ResolvePaths()
	if err != nil {
		t.Fatalf("ResolvePaths() error: %v", err)
	}

	if paths.AideHome != base {
		t.Errorf("AideHome = %q, want %q", paths.AideHome, base)
	}
	if paths.DBPath != filepath.Join(base, "assistant.db") {
		t.Errorf("DBPath = %q, want under AIDE_HOME", paths.DBPath)
	}
}

func TestResolvePaths_SpecificOverridesBeatHome(t *testing.T) {
	base := t.TempDir()
	dbPath := filepath.Join(t.TempDir(), "elsewhere.db")
	t.Setenv("AIDE_HOME", base)
	t.Setenv("AIDE_DB_PATH", dbPath)
	t.Setenv("AIDE_NOTES_DIR", "")
	t.Setenv("AIDE_EXPORT_DIR", "")
	t.Setenv("AIDE_CONFIG_PATH", "")

	paths, err := ResolvePaths()
	if err != nil {
		t.Fatalf("ResolvePaths() error: %v", err)
	}

	if paths.DBPath != dbPath {
		t.Errorf("DBPath = %q, want %q", paths.DBPath, dbPath)
	}
	if paths.NotesDir != filepath.Join(base, "notes") {
		t.Errorf("NotesDir = %q, want under AIDE_HOME", paths.NotesDir)
	}
}
