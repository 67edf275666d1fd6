// Package research persists web-research findings and provides the
// page fetcher the research tools are built on.
package research

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"aide/pkg/archive"
)

// Store manages the research table. The session id is fixed at
// construction so every finding saved during a session is attributable
// to it.
type Store struct {
	db        *sql.DB
	sessionID string
}

// NewStore creates a Store. sessionID may be empty only when no session
// is active.
func NewStore(db *sql.DB, sessionID string) *Store {
	return &Store{db: db, sessionID: sessionID}
}

// Save persists one research finding: the query, its source URLs and
// the analysis text. Returns the inserted row id.
func (s *Store) Save(ctx context.Context, query string, sources []string, analysis string) (int64, error) {
	sourcesJSON, err := json.Marshal(sources)
	if err != nil {
		return 0, fmt.Errorf("encode sources: %w", err)
	}

	sessID := sql.NullString{String: s.sessionID, Valid: s.sessionID != ""}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO research (query, sources, analysis, created_at, session_id)
		 VALUES (?, ?, ?, ?, ?)`,
		query, string(sourcesJSON), analysis, time.Now().UTC().Format(time.RFC3339), sessID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert research: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("research insert id: %w", err)
	}
	return id, nil
}

// Recent returns the newest research rows, newest first. When sessionID
// is non-empty, only that session's findings are returned.
func (s *Store) Recent(ctx context.Context, sessionID string, limit int) ([]archive.Research, error) {
	if limit <= 0 {
		limit = 20
	}

	q := `SELECT id, query, sources, COALESCE(analysis, ''), created_at, COALESCE(session_id, '')
	      FROM research`
	var args []any
	if sessionID != "" {
		q += " WHERE session_id = ?"
		args = append(args, sessionID)
	}
	q += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list research: %w", err)
	}
	defer rows.Close()

	var out []archive.Research
	for rows.Next() {
		var r archive.Research
		if err := rows.Scan(&r.ID, &r.Query, &r.Sources, &r.Analysis, &r.CreatedAt, &r.SessionID); err != nil {
			return nil, fmt.Errorf("scan research: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate research: %w", err)
	}
	return out, nil
}
