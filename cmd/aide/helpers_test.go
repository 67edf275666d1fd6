package main

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"aide/pkg/archive"
)

// newTestDB creates an in-memory SQLite database with the full schema
// applied. Uses t.Cleanup to close it.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(archive.SchemaDDL); err != nil {
		t.Fatalf("exec schema: %v", err)
	}
	return db
}
