// Package export implements JSON backup and restore of the assistant
// database. Export covers every table the schema defines, and import is
// its exact inverse, so a dump can always be restored without loss.
package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"aide/pkg/archive"
)

// FormatVersion identifies the dump layout.
const FormatVersion = "1.0"

// Dump is the on-disk backup format: one slice per schema table.
type Dump struct {
	ExportedAt string             `json:"exported_at"`
	Version    string             `json:"version"`
	Sessions   []archive.Session  `json:"sessions"`
	Messages   []archive.Message  `json:"messages"`
	Notes      []archive.Note     `json:"notes"`
	Research   []archive.Research `json:"research"`
	Documents  []archive.Document `json:"documents"`
}

// Counts reports per-table row counts for one export or import.
type Counts struct {
	Sessions  int
	Messages  int
	Notes     int
	Research  int
	Documents int
}

// Total returns the sum across tables.
func (c Counts) Total() int {
	return c.Sessions + c.Messages + c.Notes + c.Research + c.Documents
}

// Manager reads and writes backups in the export directory.
type Manager struct {
	db  *sql.DB
	dir string
}

// NewManager creates a Manager writing backups under dir.
func NewManager(db *sql.DB, dir string) *Manager {
	return &Manager{db: db, dir: dir}
}

// Export dumps every table to a JSON file. An empty filename generates
// a timestamped backup name. Returns the written path and row counts.
func (m *Manager) Export(ctx context.Context, filename string) (string, Counts, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", Counts{}, fmt.Errorf("create export dir: %w", err)
	}

	if filename == "" {
		filename = "backup_" + time.Now().Format("20060102_150405") + ".json"
	} else if !strings.HasSuffix(filename, ".json") {
		filename += ".json"
	}
	path := filepath.Join(m.dir, filename)

	dump, counts, err := m.read(ctx)
	if err != nil {
		return "", Counts{}, err
	}

	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return "", Counts{}, fmt.Errorf("encode dump: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", Counts{}, fmt.Errorf("write dump: %w", err)
	}
	return path, counts, nil
}

// read collects every table into a Dump.
func (m *Manager) read(ctx context.Context) (*Dump, Counts, error) {
	dump := &Dump{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Version:    FormatVersion,
	}
	var counts Counts

	err := m.readSessions(ctx, dump, &counts)
	if err == nil {
		err = m.readMessages(ctx, dump, &counts)
	}
	if err == nil {
		err = m.readNotes(ctx, dump, &counts)
	}
	if err == nil {
		err = m.readResearch(ctx, dump, &counts)
	}
	if err == nil {
		err = m.readDocuments(ctx, dump, &counts)
	}
	if err != nil {
		return nil, Counts{}, err
	}
	return dump, counts, nil
}

func (m *Manager) readSessions(ctx context.Context, dump *Dump, counts *Counts) error {
	rows, err := m.db.QueryContext(ctx,
		"SELECT id, started_at, last_active_at, total_cost_usd, message_count FROM sessions ORDER BY started_at")
	if err != nil {
		return fmt.Errorf("export sessions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s archive.Session
		if err := rows.Scan(&s.ID, &s.StartedAt, &s.LastActiveAt, &s.TotalCostUSD, &s.MessageCount); err != nil {
			return fmt.Errorf("scan session: %w", err)
		}
		dump.Sessions = append(dump.Sessions, s)
		counts.Sessions++
	}
	return rows.Err()
}

func (m *Manager) readMessages(ctx context.Context, dump *Dump, counts *Counts) error {
	rows, err := m.db.QueryContext(ctx,
		"SELECT id, session_id, timestamp, role, content FROM messages ORDER BY id")
	if err != nil {
		return fmt.Errorf("export messages: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var msg archive.Message
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Timestamp, &msg.Role, &msg.Content); err != nil {
			return fmt.Errorf("scan message: %w", err)
		}
		dump.Messages = append(dump.Messages, msg)
		counts.Messages++
	}
	return rows.Err()
}

func (m *Manager) readNotes(ctx context.Context, dump *Dump, counts *Counts) error {
	rows, err := m.db.QueryContext(ctx,
		`SELECT id, title, content, tags, COALESCE(file_path, ''), created_at, COALESCE(session_id, '')
		 FROM notes ORDER BY id`)
	if err != nil {
		return fmt.Errorf("export notes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var n archive.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.Tags, &n.FilePath, &n.CreatedAt, &n.SessionID); err != nil {
			return fmt.Errorf("scan note: %w", err)
		}
		dump.Notes = append(dump.Notes, n)
		counts.Notes++
	}
	return rows.Err()
}

func (m *Manager) readResearch(ctx context.Context, dump *Dump, counts *Counts) error {
	rows, err := m.db.QueryContext(ctx,
		`SELECT id, query, sources, COALESCE(analysis, ''), created_at, COALESCE(session_id, '')
		 FROM research ORDER BY id`)
	if err != nil {
		return fmt.Errorf("export research: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var r archive.Research
		if err := rows.Scan(&r.ID, &r.Query, &r.Sources, &r.Analysis, &r.CreatedAt, &r.SessionID); err != nil {
			return fmt.Errorf("scan research: %w", err)
		}
		dump.Research = append(dump.Research, r)
		counts.Research++
	}
	return rows.Err()
}

func (m *Manager) readDocuments(ctx context.Context, dump *Dump, counts *Counts) error {
	rows, err := m.db.QueryContext(ctx,
		`SELECT id, filename, file_type, file_path, COALESCE(description, ''), created_at, COALESCE(session_id, '')
		 FROM documents ORDER BY id`)
	if err != nil {
		return fmt.Errorf("export documents: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d archive.Document
		if err := rows.Scan(&d.ID, &d.Filename, &d.FileType, &d.FilePath, &d.Description, &d.CreatedAt, &d.SessionID); err != nil {
			return fmt.Errorf("scan document: %w", err)
		}
		dump.Documents = append(dump.Documents, d)
		counts.Documents++
	}
	return rows.Err()
}

// Import restores a dump, merging with existing data: rows whose
// primary key already exists are skipped, so importing the same backup
// twice is safe. The whole import runs in one transaction, so a
// malformed dump leaves the database untouched.
func (m *Manager) Import(ctx context.Context, path string) (Counts, error) {
	if _, err := os.Stat(path); err != nil {
		// Fall back to the export directory for bare filenames.
		alt := filepath.Join(m.dir, filepath.Base(path))
		if _, altErr := os.Stat(alt); altErr != nil {
			return Counts{}, fmt.Errorf("import file not found: %s", path)
		}
		path = alt
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Counts{}, fmt.Errorf("read dump: %w", err)
	}
	var dump Dump
	if err := json.Unmarshal(data, &dump); err != nil {
		return Counts{}, fmt.Errorf("decode dump %s: %w", path, err)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return Counts{}, fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	counts, err := importAll(ctx, tx, &dump)
	if err != nil {
		return Counts{}, err
	}
	if err := tx.Commit(); err != nil {
		return Counts{}, fmt.Errorf("commit import: %w", err)
	}
	return counts, nil
}

func importAll(ctx context.Context, tx *sql.Tx, dump *Dump) (Counts, error) {
	var counts Counts

	for _, s := range dump.Sessions {
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO sessions (id, started_at, last_active_at, total_cost_usd, message_count)
			 VALUES (?, ?, ?, ?, ?)`,
			s.ID, s.StartedAt, s.LastActiveAt, s.TotalCostUSD, s.MessageCount)
		if err != nil {
			return counts, fmt.Errorf("import session %s: %w", s.ID, err)
		}
		counts.Sessions += affected(res)
	}

	for _, msg := range dump.Messages {
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO messages (id, session_id, timestamp, role, content)
			 VALUES (?, ?, ?, ?, ?)`,
			msg.ID, msg.SessionID, msg.Timestamp, msg.Role, msg.Content)
		if err != nil {
			return counts, fmt.Errorf("import message %d: %w", msg.ID, err)
		}
		counts.Messages += affected(res)
	}

	for _, n := range dump.Notes {
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO notes (id, title, content, tags, file_path, created_at, session_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			n.ID, n.Title, n.Content, n.Tags, emptyNull(n.FilePath), n.CreatedAt, emptyNull(n.SessionID))
		if err != nil {
			return counts, fmt.Errorf("import note %d: %w", n.ID, err)
		}
		counts.Notes += affected(res)
	}

	for _, r := range dump.Research {
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO research (id, query, sources, analysis, created_at, session_id)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			r.ID, r.Query, r.Sources, r.Analysis, r.CreatedAt, emptyNull(r.SessionID))
		if err != nil {
			return counts, fmt.Errorf("import research %d: %w", r.ID, err)
		}
		counts.Research += affected(res)
	}

	for _, d := range dump.Documents {
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO documents (id, filename, file_type, file_path, description, created_at, session_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			d.ID, d.Filename, d.FileType, d.FilePath, emptyNull(d.Description), d.CreatedAt, emptyNull(d.SessionID))
		if err != nil {
			return counts, fmt.Errorf("import document %d: %w", d.ID, err)
		}
		counts.Documents += affected(res)
	}

	return counts, nil
}

func affected(res sql.Result) int {
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return int(n)
}

func emptyNull(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// FileInfo describes one backup file.
type FileInfo struct {
	Name     string
	Path     string
	Size     int64
	Modified time.Time
}

// List returns the backup files in the export directory, newest first.
func (m *Manager) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read export dir: %w", err)
	}

	var out []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, FileInfo{
			Name:     entry.Name(),
			Path:     filepath.Join(m.dir, entry.Name()),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Modified.After(out[j].Modified) })
	return out, nil
}
