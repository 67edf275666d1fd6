// Package docs tracks documents the assistant produced or read:
// metadata rows pointing at files on disk, attributable to the session
// that created them.
package docs

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"aide/pkg/archive"
)

// Store manages the documents table. The session id is fixed at
// construction so registrations made during a session carry it.
type Store struct {
	db        *sql.DB
	sessionID string
}

// NewStore creates a Store. sessionID may be empty only when no session
// is active.
func NewStore(db *sql.DB, sessionID string) *Store {
	return &Store{db: db, sessionID: sessionID}
}

// Register records one document. Returns the inserted row id.
func (s *Store) Register(ctx context.Context, filename, fileType, filePath, description string) (int64, error) {
	sessID := sql.NullString{String: s.sessionID, Valid: s.sessionID != ""}
	desc := sql.NullString{String: description, Valid: description != ""}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (filename, file_type, file_path, description, created_at, session_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		filename, fileType, filePath, desc, time.Now().UTC().Format(time.RFC3339), sessID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert document: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("document insert id: %w", err)
	}
	return id, nil
}

// ListOpts filters a document listing.
type ListOpts struct {
	FileType  string
	SessionID string
	Limit     int
}

// List returns documents newest-first, optionally filtered by file type
// and/or session.
func (s *Store) List(ctx context.Context, opts ListOpts) ([]archive.Document, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}

	q := `SELECT id, filename, file_type, file_path, COALESCE(description, ''), created_at, COALESCE(session_id, '')
	      FROM documents WHERE 1=1`
	var args []any
	if opts.FileType != "" {
		q += " AND file_type = ?"
		args = append(args, opts.FileType)
	}
	if opts.SessionID != "" {
		q += " AND session_id = ?"
		args = append(args, opts.SessionID)
	}
	q += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []archive.Document
	for rows.Next() {
		var d archive.Document
		if err := rows.Scan(&d.ID, &d.Filename, &d.FileType, &d.FilePath, &d.Description, &d.CreatedAt, &d.SessionID); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}
