// Package notes manages assistant notes: rows in the notes table with
// markdown mirrors on disk, FTS5 search, and a directory sync path for
// notes edited outside the assistant.
package notes

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"aide/pkg/archive"
)

// Store manages the notes table and the markdown notes directory.
// The session id is fixed at construction: every note created while a
// session is active carries that session's id, never a null left for
// the caller to fill in later.
type Store struct {
	db        *sql.DB
	dir       string
	sessionID string
}

// NewStore creates a Store. sessionID may be empty only when no session
// is active (standalone CLI use); rows then carry a null session id.
func NewStore(db *sql.DB, dir, sessionID string) *Store {
	return &Store{db: db, dir: dir, sessionID: sessionID}
}

// SessionID returns the session id this store stamps on new notes.
func (s *Store) SessionID() string {
	return s.sessionID
}

// tagsToJSON converts a tag slice to a JSON array string.
func tagsToJSON(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// TagsFromJSON parses a JSON array string into a tag slice.
func TagsFromJSON(s string) []string {
	if s == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil
	}
	return tags
}

// nullable maps "" to a SQL NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Add creates a note: a markdown file in the notes directory plus a
// database row linked to the active session. Returns the stored note.
func (s *Store) Add(ctx context.Context, title, content string, tags []string) (archive.Note, error) {
	createdAt := time.Now().UTC().Format(time.RFC3339)

	filePath, err := writeMarkdown(s.dir, title, content, tags, createdAt)
	if err != nil {
		return archive.Note{}, err
	}

	return s.insert(ctx, archive.Note{
		Title:     title,
		Content:   content,
		Tags:      tagsToJSON(tags),
		FilePath:  filePath,
		CreatedAt: createdAt,
		SessionID: s.sessionID,
	})
}

// archiveNote builds a row for a note imported from disk.
func archiveNote(title, content, path, sessionID string) archive.Note {
	return archive.Note{
		Title:     title,
		Content:   content,
		Tags:      "[]",
		FilePath:  path,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		SessionID: sessionID,
	}
}

// insert writes one note row and returns it with the assigned id.
func (s *Store) insert(ctx context.Context, n archive.Note) (archive.Note, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (title, content, tags, file_path, created_at, session_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		n.Title, n.Content, n.Tags, nullable(n.FilePath), n.CreatedAt, nullable(n.SessionID),
	)
	if err != nil {
		return archive.Note{}, fmt.Errorf("insert note: %w", err)
	}
	n.ID, err = res.LastInsertId()
	if err != nil {
		return archive.Note{}, fmt.Errorf("note insert id: %w", err)
	}
	return n, nil
}

// Search finds notes by FTS query and/or tags. With an empty query and
// no tags it behaves like Recent.
func (s *Store) Search(ctx context.Context, query string, tags []string, limit int) ([]archive.Note, error) {
	if limit <= 0 {
		limit = 20
	}
	if query == "" && len(tags) == 0 {
		return s.Recent(ctx, limit)
	}

	var (
		q    string
		args []any
	)
	if query != "" {
		q = `SELECT n.id, n.title, n.content, n.tags,
		            COALESCE(n.file_path, ''), n.created_at, COALESCE(n.session_id, '')
		     FROM notes_fts f
		     JOIN notes n ON n.id = f.rowid
		     WHERE notes_fts MATCH ?
		     ORDER BY bm25(notes_fts)
		     LIMIT ?`
		args = []any{archive.SanitizeFTS5Query(query), limit}
	} else {
		q = `SELECT id, title, content, tags,
		            COALESCE(file_path, ''), created_at, COALESCE(session_id, '')
		     FROM notes
		     ORDER BY created_at DESC
		     LIMIT ?`
		args = []any{limit}
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}
	defer rows.Close()

	found, err := scanNotes(rows)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return found, nil
	}

	// Tag filter: any requested tag matches.
	var out []archive.Note
	for _, n := range found {
		if hasAnyTag(TagsFromJSON(n.Tags), tags) {
			out = append(out, n)
		}
	}
	return out, nil
}

// Recent returns the newest notes, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]archive.Note, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, content, tags,
		        COALESCE(file_path, ''), created_at, COALESCE(session_id, '')
		 FROM notes
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent notes: %w", err)
	}
	defer rows.Close()
	return scanNotes(rows)
}

func scanNotes(rows *sql.Rows) ([]archive.Note, error) {
	var out []archive.Note
	for rows.Next() {
		var n archive.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.Tags, &n.FilePath, &n.CreatedAt, &n.SessionID); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return out, nil
}

func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}
