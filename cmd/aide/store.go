package main

import (
	"context"
	"database/sql"
	"fmt"

	"aide/internal/config"
	"aide/pkg/archive"
)

// openStore opens (or creates) the default SQLite database at
// ~/.aide/assistant.db and ensures the schema is applied. Every CLI
// command reads and writes the same database as the chat loop.
func openStore() (*sql.DB, *Paths, error) {
	paths, err := ResolvePaths()
	if err != nil {
		return nil, nil, fmt.Errorf("resolve paths: %w", err)
	}
	if err := ensureHome(paths); err != nil {
		return nil, nil, err
	}

	db, err := openDB(paths.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open assistant db: %w", err)
	}

	if _, err := db.ExecContext(context.Background(), archive.SchemaDDL); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("apply schema: %w", err)
	}

	return db, paths, nil
}

// ensureHome creates the aide home and its subdirectories.
func ensureHome(paths *Paths) error {
	for _, dir := range []string{paths.AideHome, paths.NotesDir, paths.ExportDir} {
		if err := ensureDir(dir); err != nil {
			return err
		}
	}
	return nil
}

// loadConfig reads the config file named by paths. A missing file
// yields defaults.
func loadConfig(paths *Paths) (config.Config, error) {
	return config.Load(paths.ConfigPath)
}
