package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"aide/internal/config"
	"aide/pkg/agent"
	"aide/pkg/archive"
	"aide/pkg/docs"
	"aide/pkg/export"
	"aide/pkg/notes"
	"aide/pkg/research"
)

// objectSchema builds a JSON Schema object for a tool's parameters.
func objectSchema(props map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func stringArrayProp(desc string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": desc,
	}
}

// toolset wires every assistant tool to the stores for one session.
type toolset struct {
	notes    *notes.Store
	research *research.Store
	docs     *docs.Store
	exports  *export.Manager
	fetcher  *research.Fetcher
}

// newToolset builds the session-scoped stores backing the tools. Rows
// the tools create carry the active session's id.
func newToolset(db *sql.DB, paths *Paths, cfg config.Config, sessionID string) *toolset {
	return &toolset{
		notes:    notes.NewStore(db, paths.NotesDir, sessionID),
		research: research.NewStore(db, sessionID),
		docs:     docs.NewStore(db, sessionID),
		exports:  export.NewManager(db, paths.ExportDir),
		fetcher:  research.NewFetcher(time.Duration(cfg.HTTPTimeoutSecs) * time.Second),
	}
}

// Close releases resources held by the toolset.
func (ts *toolset) Close() {
	ts.fetcher.Close()
}

// Tools returns the full registered tool list for the agent runtime.
func (ts *toolset) Tools() []agent.Tool {
	return []agent.Tool{
		ts.createNote(),
		ts.searchNotes(),
		ts.listRecentNotes(),
		ts.fetchURL(),
		ts.saveResearch(),
		ts.registerDocument(),
		ts.listDocuments(),
		ts.exportData(),
		ts.importData(),
		ts.listExports(),
	}
}

// Names returns the registered tool names, for gate auto-approval.
func (ts *toolset) Names() []string {
	tools := ts.Tools()
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Def.Name)
	}
	return names
}

func (ts *toolset) createNote() agent.Tool {
	return agent.Tool{
		Def: agent.ToolDef{
			Name:        "create_note",
			Description: "Save a note with a title, content, and optional tags. The note is stored in the database and mirrored as a markdown file.",
			Parameters: objectSchema(map[string]any{
				"title":   stringProp("short note title"),
				"content": stringProp("note body, markdown allowed"),
				"tags":    stringArrayProp("optional tags for later filtering"),
			}, "title", "content"),
		},
		Invoke: func(ctx context.Context, args string) (string, error) {
			var p struct {
				Title   string   `json:"title"`
				Content string   `json:"content"`
				Tags    []string `json:"tags"`
			}
			if err := json.Unmarshal([]byte(args), &p); err != nil {
				return "", fmt.Errorf("create_note args: %w", err)
			}
			n, err := ts.notes.Add(ctx, p.Title, p.Content, p.Tags)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("note %d saved: %s (%s)", n.ID, n.Title, n.FilePath), nil
		},
	}
}

func (ts *toolset) searchNotes() agent.Tool {
	return agent.Tool{
		Def: agent.ToolDef{
			Name:        "search_notes",
			Description: "Full-text search over saved notes, optionally filtered by tags.",
			Parameters: objectSchema(map[string]any{
				"query": stringProp("search terms"),
				"tags":  stringArrayProp("only notes carrying at least one of these tags"),
			}),
		},
		Invoke: func(ctx context.Context, args string) (string, error) {
			var p struct {
				Query string   `json:"query"`
				Tags  []string `json:"tags"`
			}
			if err := json.Unmarshal([]byte(args), &p); err != nil {
				return "", fmt.Errorf("search_notes args: %w", err)
			}
			found, err := ts.notes.Search(ctx, p.Query, p.Tags, 10)
			if err != nil {
				return "", err
			}
			return formatNoteResults(found), nil
		},
	}
}

func (ts *toolset) listRecentNotes() agent.Tool {
	return agent.Tool{
		Def: agent.ToolDef{
			Name:        "list_recent_notes",
			Description: "List the most recently created notes.",
			Parameters: objectSchema(map[string]any{
				"limit": map[string]any{"type": "integer", "description": "maximum notes to return, default 10"},
			}),
		},
		Invoke: func(ctx context.Context, args string) (string, error) {
			var p struct {
				Limit int `json:"limit"`
			}
			if err := json.Unmarshal([]byte(args), &p); err != nil {
				return "", fmt.Errorf("list_recent_notes args: %w", err)
			}
			if p.Limit <= 0 {
				p.Limit = 10
			}
			found, err := ts.notes.Recent(ctx, p.Limit)
			if err != nil {
				return "", err
			}
			return formatNoteResults(found), nil
		},
	}
}

func (ts *toolset) fetchURL() agent.Tool {
	return agent.Tool{
		Def: agent.ToolDef{
			Name:        "fetch_url",
			Description: "Fetch a web page and return its readable text content.",
			Parameters: objectSchema(map[string]any{
				"url": stringProp("the http(s) URL to fetch"),
			}, "url"),
		},
		Invoke: func(ctx context.Context, args string) (string, error) {
			var p struct {
				URL string `json:"url"`
			}
			if err := json.Unmarshal([]byte(args), &p); err != nil {
				return "", fmt.Errorf("fetch_url args: %w", err)
			}
			page, err := ts.fetcher.Fetch(ctx, p.URL)
			if err != nil {
				return "", err
			}
			var b strings.Builder
			if page.Title != "" {
				fmt.Fprintf(&b, "Title: %s\n\n", page.Title)
			}
			b.WriteString(page.Text)
			return b.String(), nil
		},
	}
}

func (ts *toolset) saveResearch() agent.Tool {
	return agent.Tool{
		Def: agent.ToolDef{
			Name:        "save_research",
			Description: "Persist a research finding: the question asked, the sources consulted, and the analysis.",
			Parameters: objectSchema(map[string]any{
				"query":    stringProp("the research question"),
				"sources":  stringArrayProp("URLs or references consulted"),
				"analysis": stringProp("the conclusions drawn"),
			}, "query", "analysis"),
		},
		Invoke: func(ctx context.Context, args string) (string, error) {
			var p struct {
				Query    string   `json:"query"`
				Sources  []string `json:"sources"`
				Analysis string   `json:"analysis"`
			}
			if err := json.Unmarshal([]byte(args), &p); err != nil {
				return "", fmt.Errorf("save_research args: %w", err)
			}
			id, err := ts.research.Save(ctx, p.Query, p.Sources, p.Analysis)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("research %d saved", id), nil
		},
	}
}

func (ts *toolset) registerDocument() agent.Tool {
	return agent.Tool{
		Def: agent.ToolDef{
			Name:        "register_document",
			Description: "Record a document the assistant produced or read, by path and type.",
			Parameters: objectSchema(map[string]any{
				"filename":    stringProp("document file name"),
				"file_type":   stringProp("file type, e.g. pdf, md, xlsx"),
				"file_path":   stringProp("absolute path on disk"),
				"description": stringProp("what the document is"),
			}, "filename", "file_type", "file_path"),
		},
		Invoke: func(ctx context.Context, args string) (string, error) {
			var p struct {
				Filename    string `json:"filename"`
				FileType    string `json:"file_type"`
				FilePath    string `json:"file_path"`
				Description string `json:"description"`
			}
			if err := json.Unmarshal([]byte(args), &p); err != nil {
				return "", fmt.Errorf("register_document args: %w", err)
			}
			id, err := ts.docs.Register(ctx, p.Filename, p.FileType, p.FilePath, p.Description)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("document %d registered: %s", id, p.Filename), nil
		},
	}
}

func (ts *toolset) listDocuments() agent.Tool {
	return agent.Tool{
		Def: agent.ToolDef{
			Name:        "list_documents",
			Description: "List tracked documents, optionally filtered by file type.",
			Parameters: objectSchema(map[string]any{
				"file_type": stringProp("only documents of this type"),
			}),
		},
		Invoke: func(ctx context.Context, args string) (string, error) {
			var p struct {
				FileType string `json:"file_type"`
			}
			if err := json.Unmarshal([]byte(args), &p); err != nil {
				return "", fmt.Errorf("list_documents args: %w", err)
			}
			found, err := ts.docs.List(ctx, docs.ListOpts{FileType: p.FileType})
			if err != nil {
				return "", err
			}
			if len(found) == 0 {
				return "no documents found", nil
			}
			var b strings.Builder
			for _, d := range found {
				fmt.Fprintf(&b, "%d: %s [%s] %s\n", d.ID, d.Filename, d.FileType, d.FilePath)
			}
			return b.String(), nil
		},
	}
}

func (ts *toolset) exportData() agent.Tool {
	return agent.Tool{
		Def: agent.ToolDef{
			Name:        "export_data",
			Description: "Export the whole assistant database to a JSON backup file.",
			Parameters: objectSchema(map[string]any{
				"filename": stringProp("backup filename, timestamped when omitted"),
			}),
		},
		Invoke: func(ctx context.Context, args string) (string, error) {
			var p struct {
				Filename string `json:"filename"`
			}
			if err := json.Unmarshal([]byte(args), &p); err != nil {
				return "", fmt.Errorf("export_data args: %w", err)
			}
			path, counts, err := ts.exports.Export(ctx, p.Filename)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("exported %d rows to %s", counts.Total(), path), nil
		},
	}
}

func (ts *toolset) importData() agent.Tool {
	return agent.Tool{
		Def: agent.ToolDef{
			Name:        "import_data",
			Description: "Import a JSON backup file, merging rows that are not already present.",
			Parameters: objectSchema(map[string]any{
				"path": stringProp("backup file path or bare filename in the export directory"),
			}, "path"),
		},
		Invoke: func(ctx context.Context, args string) (string, error) {
			var p struct {
				Path string `json:"path"`
			}
			if err := json.Unmarshal([]byte(args), &p); err != nil {
				return "", fmt.Errorf("import_data args: %w", err)
			}
			counts, err := ts.exports.Import(ctx, p.Path)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("imported %d new rows", counts.Total()), nil
		},
	}
}

func (ts *toolset) listExports() agent.Tool {
	return agent.Tool{
		Def: agent.ToolDef{
			Name:        "list_exports",
			Description: "List available JSON backup files, newest first.",
			Parameters:  objectSchema(map[string]any{}),
		},
		Invoke: func(_ context.Context, _ string) (string, error) {
			files, err := ts.exports.List()
			if err != nil {
				return "", err
			}
			if len(files) == 0 {
				return "no backups found", nil
			}
			var b strings.Builder
			for _, f := range files {
				fmt.Fprintf(&b, "%s (%d bytes, %s)\n", f.Name, f.Size, f.Modified.Format(time.RFC3339))
			}
			return b.String(), nil
		},
	}
}

// formatNoteResults renders notes for the model as a compact list.
func formatNoteResults(found []archive.Note) string {
	if len(found) == 0 {
		return "no notes found"
	}
	var b strings.Builder
	for _, n := range found {
		tags := notes.TagsFromJSON(n.Tags)
		line := fmt.Sprintf("%d: %s", n.ID, n.Title)
		if len(tags) > 0 {
			line += " [" + strings.Join(tags, ", ") + "]"
		}
		b.WriteString(line + "\n")
		b.WriteString("  " + truncate(n.Content, 120) + "\n")
	}
	return b.String()
}

// truncate shortens s to max characters, appending "..." if cut.
func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
