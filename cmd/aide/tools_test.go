package main

import (
	"context"
	"strings"
	"testing"

	"aide/internal/config"
	"aide/pkg/agent"
)

func newTestToolset(t *testing.T, sessionID string) *toolset {
	t.Helper()
	db := newTestDB(t)
	paths := &Paths{
		NotesDir:  t.TempDir(),
		ExportDir: t.TempDir(),
	}
	ts := newToolset(db, paths, config.Default(), sessionID)
	t.Cleanup(ts.Close)
	return ts
}

func findTool(t *testing.T, ts *toolset, name string) agent.Tool {
	t.Helper()
	for _, tool := range ts.Tools() {
		if tool.Def.Name == name {
			return tool
		}
	}
	t.Fatalf("tool %q not registered", name)
	return agent.Tool{}
}

func TestToolsetNames(t *testing.T) {
	ts := newTestToolset(t, "sess-1")

	want := []string{
		"create_note", "search_notes", "list_recent_notes",
		"fetch_url", "save_research", "register_document",
		"list_documents", "export_data", "import_data", "list_exports",
	}
	names := ts.Names()
	if len(names) != len(want) {
		t.Fatalf("got %d tools, want %d: %v", len(names), len(want), names)
	}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("names[%d] = %q, want %q", i, names[i], n)
		}
	}
}

func TestCreateNoteThenSearch(t *testing.T) {
	ts := newTestToolset(t, "sess-1")
	ctx := context.Background()

	create := findTool(t, ts, "create_note")
	out, err := create.Invoke(ctx, `{"title":"Groceries","content":"oat milk and bread","tags":["shopping"]}`)
	if err != nil {
		t.Fatalf("create_note: %v", err)
	}
	if !strings.Contains(out, "Groceries") {
		t.Errorf("unexpected result: %q", out)
	}

	search := findTool(t, ts, "search_notes")
	out, err = search.Invoke(ctx, `{"query":"oat"}`)
	if err != nil {
		t.Fatalf("search_notes: %v", err)
	}
	if !strings.Contains(out, "Groceries") || !strings.Contains(out, "shopping") {
		t.Errorf("search missed the note: %q", out)
	}
}

func TestSaveResearchAndListDocuments(t *testing.T) {
	ts := newTestToolset(t, "sess-1")
	ctx := context.Background()

	save := findTool(t, ts, "save_research")
	if _, err := save.Invoke(ctx, `{"query":"best oat milk","sources":["https://example.com"],"analysis":"brand A wins"}`); err != nil {
		t.Fatalf("save_research: %v", err)
	}

	register := findTool(t, ts, "register_document")
	if _, err := register.Invoke(ctx, `{"filename":"report.pdf","file_type":"pdf","file_path":"/tmp/report.pdf"}`); err != nil {
		t.Fatalf("register_document: %v", err)
	}

	list := findTool(t, ts, "list_documents")
	out, err := list.Invoke(ctx, `{}`)
	if err != nil {
		t.Fatalf("list_documents: %v", err)
	}
	if !strings.Contains(out, "report.pdf") {
		t.Errorf("listing missed the document: %q", out)
	}
}

func TestExportImportTools(t *testing.T) {
	ts := newTestToolset(t, "sess-1")
	ctx := context.Background()

	create := findTool(t, ts, "create_note")
	if _, err := create.Invoke(ctx, `{"title":"keep","content":"me"}`); err != nil {
		t.Fatalf("create_note: %v", err)
	}

	exportTool := findTool(t, ts, "export_data")
	out, err := exportTool.Invoke(ctx, `{"filename":"toolcheck"}`)
	if err != nil {
		t.Fatalf("export_data: %v", err)
	}
	if !strings.Contains(out, "exported") {
		t.Errorf("unexpected export result: %q", out)
	}

	importTool := findTool(t, ts, "import_data")
	out, err = importTool.Invoke(ctx, `{"path":"toolcheck.json"}`)
	if err != nil {
		t.Fatalf("import_data: %v", err)
	}
	if !strings.Contains(out, "imported 0 new rows") {
		t.Errorf("re-import into same db should add nothing: %q", out)
	}

	listTool := findTool(t, ts, "list_exports")
	out, err = listTool.Invoke(ctx, `{}`)
	if err != nil {
		t.Fatalf("list_exports: %v", err)
	}
	if !strings.Contains(out, "toolcheck.json") {
		t.Errorf("backup missing from listing: %q", out)
	}
}

func TestToolRejectsMalformedArgs(t *testing.T) {
	ts := newTestToolset(t, "sess-1")

	create := findTool(t, ts, "create_note")
	if _, err := create.Invoke(context.Background(), "{broken"); err == nil {
		t.Fatal("expected args error")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate("a\nb", 10); got != "a b" {
		t.Errorf("newlines must flatten, got %q", got)
	}
	if got := truncate("abcdefghij", 4); got != "abcd..." {
		t.Errorf("truncate = %q", got)
	}
}
