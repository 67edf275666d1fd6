// Package session provides session lifecycle management and the
// conversation message archive over the aide SQLite database.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"aide/pkg/archive"
)

// Store manages the sessions and messages tables. It owns all reads and
// writes for both; no other component touches these tables directly.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store backed by the given SQLite database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// now returns the current UTC time in the canonical timestamp format.
// Nanosecond precision keeps timestamp order aligned with insertion
// order even for fragments archived in the same millisecond.
func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// StartOrResume returns the active session for this process. Resume is
// honored only when resume is true AND sessionID is non-empty; in every
// other case a brand-new session is created, so a stale id can never
// silently resume the wrong conversation. The second return value
// reports whether an existing session was resumed.
//
// A resume request for an unknown id fails with SessionNotFoundError;
// the caller decides whether to fall back to Create.
func (s *Store) StartOrResume(ctx context.Context, resume bool, sessionID string) (archive.Session, bool, error) {
	if resume && sessionID != "" {
		sess, err := s.Resume(ctx, sessionID)
		return sess, err == nil, err
	}
	sess, err := s.Create(ctx)
	return sess, false, err
}

// Create inserts a new session with a fresh opaque id, both timestamps
// set to now, zero cost and zero message count.
func (s *Store) Create(ctx context.Context) (archive.Session, error) {
	sess := archive.Session{
		ID:           uuid.NewString(),
		StartedAt:    now(),
		LastActiveAt: now(),
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (id, started_at, last_active_at) VALUES (?, ?, ?)",
		sess.ID, sess.StartedAt, sess.LastActiveAt,
	)
	if err != nil {
		return archive.Session{}, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// Resume looks up an existing session by id and refreshes its
// last-active timestamp. Returns SessionNotFoundError if no row matches.
func (s *Store) Resume(ctx context.Context, sessionID string) (archive.Session, error) {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return archive.Session{}, err
	}

	sess.LastActiveAt = now()
	_, err = s.db.ExecContext(ctx,
		"UPDATE sessions SET last_active_at = ? WHERE id = ?",
		sess.LastActiveAt, sess.ID,
	)
	if err != nil {
		return archive.Session{}, fmt.Errorf("refresh session %s: %w", sessionID, err)
	}
	return sess, nil
}

// Get returns the session row for id, or SessionNotFoundError.
func (s *Store) Get(ctx context.Context, sessionID string) (archive.Session, error) {
	var sess archive.Session
	err := s.db.QueryRowContext(ctx,
		"SELECT id, started_at, last_active_at, total_cost_usd, message_count FROM sessions WHERE id = ?",
		sessionID,
	).Scan(&sess.ID, &sess.StartedAt, &sess.LastActiveAt, &sess.TotalCostUSD, &sess.MessageCount)
	if errors.Is(err, sql.ErrNoRows) {
		return archive.Session{}, &archive.SessionNotFoundError{SessionID: sessionID}
	}
	if err != nil {
		return archive.Session{}, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	return sess, nil
}

// LastSessionID returns the id of the most recently active session, or
// "" if the database holds no sessions yet.
func (s *Store) LastSessionID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM sessions ORDER BY last_active_at DESC LIMIT 1",
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("last session id: %w", err)
	}
	return id, nil
}

// TouchAndIncrement atomically adds costDelta to the session's
// cumulative cost and messageDelta to its message count, refreshing the
// last-active timestamp. Negative cost deltas are rejected with
// NegativeCostDeltaError before any write happens: cumulative cost must
// never decrease.
func (s *Store) TouchAndIncrement(ctx context.Context, sessionID string, costDelta float64, messageDelta int) error {
	if costDelta < 0 {
		return &archive.NegativeCostDeltaError{SessionID: sessionID, Delta: costDelta}
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions
		 SET last_active_at = ?,
		     total_cost_usd = total_cost_usd + ?,
		     message_count = message_count + ?
		 WHERE id = ?`,
		now(), costDelta, messageDelta, sessionID,
	)
	if err != nil {
		return fmt.Errorf("touch session %s: %w", sessionID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("touch session %s: %w", sessionID, err)
	}
	if n == 0 {
		return &archive.SessionNotFoundError{SessionID: sessionID}
	}
	return nil
}

// Append persists one message row for the session. Messages are
// append-only; there is no edit or delete path. The role must belong to
// the closed {user, assistant, tool} set.
func (s *Store) Append(ctx context.Context, sessionID, role, content string) (int64, error) {
	if !archive.ValidRole(role) {
		return 0, &archive.InvalidRoleError{Role: role}
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO messages (session_id, timestamp, role, content) VALUES (?, ?, ?, ?)",
		sessionID, now(), role, content,
	)
	if err != nil {
		return 0, fmt.Errorf("append message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append message id: %w", err)
	}
	return id, nil
}

// History returns the most recent limit messages for the session in
// chronological order (oldest of the returned window first). Ordering is
// by rowid, which by the append-only contract agrees with timestamp
// order.
func (s *Store) History(ctx context.Context, sessionID string, limit int) ([]archive.Message, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, timestamp, role, content
		 FROM messages
		 WHERE session_id = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var msgs []archive.Message
	for rows.Next() {
		var m archive.Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Timestamp, &m.Role, &m.Content); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	// Newest-first from the query; reverse to chronological order.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// List returns all sessions ordered by last activity, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]archive.Session, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, last_active_at, total_cost_usd, message_count
		 FROM sessions
		 ORDER BY last_active_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []archive.Session
	for rows.Next() {
		var sess archive.Session
		if err := rows.Scan(&sess.ID, &sess.StartedAt, &sess.LastActiveAt, &sess.TotalCostUSD, &sess.MessageCount); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}
