package docs_test

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"aide/pkg/archive"
	"aide/pkg/docs"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := db.Exec(archive.SchemaDDL); err != nil {
		t.Fatalf("exec schema DDL: %v", err)
	}
	return db
}

func TestRegisterCarriesSessionID(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	store := docs.NewStore(db, "sess-3")

	id, err := store.Register(context.Background(), "budget.xlsx", "xlsx", "/tmp/budget.xlsx", "monthly budget")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	var sessID string
	if err := db.QueryRow("SELECT session_id FROM documents WHERE id = ?", id).Scan(&sessID); err != nil {
		t.Fatalf("read back: %v", err)
	}
	if sessID != "sess-3" {
		t.Errorf("document must carry the active session id, got %q", sessID)
	}
}

func TestListFilters(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()

	a := docs.NewStore(db, "sess-a")
	b := docs.NewStore(db, "sess-b")
	seed := []struct {
		store    *docs.Store
		name, ft string
	}{
		{a, "report.pdf", "pdf"},
		{a, "budget.xlsx", "xlsx"},
		{b, "notes.pdf", "pdf"},
	}
	for _, d := range seed {
		if _, err := d.store.Register(ctx, d.name, d.ft, "/tmp/"+d.name, ""); err != nil {
			t.Fatalf("register %s: %v", d.name, err)
		}
	}

	pdfs, err := a.List(ctx, docs.ListOpts{FileType: "pdf"})
	if err != nil {
		t.Fatalf("list pdfs: %v", err)
	}
	if len(pdfs) != 2 {
		t.Errorf("expected 2 pdfs, got %d", len(pdfs))
	}

	onlyA, err := a.List(ctx, docs.ListOpts{SessionID: "sess-a"})
	if err != nil {
		t.Fatalf("list sess-a: %v", err)
	}
	if len(onlyA) != 2 {
		t.Errorf("expected 2 sess-a documents, got %d", len(onlyA))
	}

	both, err := a.List(ctx, docs.ListOpts{FileType: "pdf", SessionID: "sess-a"})
	if err != nil {
		t.Fatalf("list combined: %v", err)
	}
	if len(both) != 1 || both[0].Filename != "report.pdf" {
		t.Errorf("expected only sess-a pdf, got %+v", both)
	}
}
