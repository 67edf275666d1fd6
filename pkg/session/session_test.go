package session_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"

	"aide/pkg/archive"
	"aide/pkg/session"
)

// openTestStore creates an in-memory SQLite database with schema applied
// and returns a session store over it.
func openTestStore(t *testing.T) *session.Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(archive.SchemaDDL); err != nil {
		t.Fatalf("exec schema DDL: %v", err)
	}
	return session.NewStore(db)
}

func TestCreateSessionStartsEmpty(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("expected non-empty session id")
	}
	if sess.TotalCostUSD != 0 || sess.MessageCount != 0 {
		t.Errorf("new session should have zero cost and count, got %.4f / %d", sess.TotalCostUSD, sess.MessageCount)
	}
	if sess.StartedAt == "" || sess.LastActiveAt == "" {
		t.Error("timestamps must be set on create")
	}
}

func TestStartOrResumeGuard(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	ctx := context.Background()

	existing, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// resume=false with a known id must create a new session, never
	// resume the old conversation.
	sess, resumed, err := store.StartOrResume(ctx, false, existing.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if resumed {
		t.Error("resume=false must not resume")
	}
	if sess.ID == existing.ID {
		t.Error("resume=false with stale id must create a fresh session")
	}

	// resume=true with an empty id also creates.
	sess2, resumed, err := store.StartOrResume(ctx, true, "")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if resumed || sess2.ID == existing.ID {
		t.Error("resume=true without an id must create a fresh session")
	}

	// Only resume=true with a known id resumes.
	sess3, resumed, err := store.StartOrResume(ctx, true, existing.ID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !resumed || sess3.ID != existing.ID {
		t.Errorf("expected resume of %s, got %s (resumed=%v)", existing.ID, sess3.ID, resumed)
	}
}

func TestResumeUnknownSessionFails(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)

	_, _, err := store.StartOrResume(context.Background(), true, "no-such-session")
	var nf *archive.SessionNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected SessionNotFoundError, got %v", err)
	}
	if nf.SessionID != "no-such-session" {
		t.Errorf("expected the missing id in the error, got %q", nf.SessionID)
	}
}

func TestTouchAndIncrementAccumulates(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	deltas := []float64{0.10, 0.0, 0.25}
	for _, d := range deltas {
		if err := store.TouchAndIncrement(ctx, sess.ID, d, 2); err != nil {
			t.Fatalf("touch delta %.2f: %v", d, err)
		}
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TotalCostUSD < 0.3499 || got.TotalCostUSD > 0.3501 {
		t.Errorf("expected cumulative cost 0.35, got %.4f", got.TotalCostUSD)
	}
	if got.MessageCount != 6 {
		t.Errorf("expected message count 6, got %d", got.MessageCount)
	}
}

func TestTouchAndIncrementRejectsNegativeDelta(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.TouchAndIncrement(ctx, sess.ID, 0.30, 2); err != nil {
		t.Fatalf("touch: %v", err)
	}

	err = store.TouchAndIncrement(ctx, sess.ID, -0.05, 2)
	var neg *archive.NegativeCostDeltaError
	if !errors.As(err, &neg) {
		t.Fatalf("expected NegativeCostDeltaError, got %v", err)
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TotalCostUSD < 0.2999 {
		t.Errorf("cumulative cost must not decrease, got %.4f", got.TotalCostUSD)
	}
	if got.MessageCount != 2 {
		t.Errorf("rejected delta must not bump message count, got %d", got.MessageCount)
	}
}

func TestTouchUnknownSession(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)

	err := store.TouchAndIncrement(context.Background(), "ghost", 0.1, 2)
	var nf *archive.SessionNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected SessionNotFoundError, got %v", err)
	}
}

func TestAppendAndHistoryOrdering(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	seq := []struct{ role, content string }{
		{archive.RoleUser, "plan my week"},
		{archive.RoleAssistant, "Here is a draft plan"},
		{archive.RoleTool, `{"type":"tool_use","name":"create_note","input":{"title":"week plan"}}`},
		{archive.RoleTool, `{"type":"tool_result","content":"note created"}`},
		{archive.RoleAssistant, "I saved the plan as a note."},
	}
	for _, m := range seq {
		if _, err := store.Append(ctx, sess.ID, m.role, m.content); err != nil {
			t.Fatalf("append %s: %v", m.role, err)
		}
	}

	msgs, err := store.History(ctx, sess.ID, 50)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(msgs) != len(seq) {
		t.Fatalf("expected %d messages, got %d", len(seq), len(msgs))
	}
	for i, m := range msgs {
		if m.Role != seq[i].role || m.Content != seq[i].content {
			t.Errorf("message %d out of order: got (%s, %q)", i, m.Role, m.Content)
		}
	}

	// A limited window returns the most recent rows, oldest first.
	tail, err := store.History(ctx, sess.ID, 2)
	if err != nil {
		t.Fatalf("history limit 2: %v", err)
	}
	if len(tail) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(tail))
	}
	if tail[0].Content != seq[3].content || tail[1].Content != seq[4].content {
		t.Errorf("expected last two messages oldest-first, got %q then %q", tail[0].Content, tail[1].Content)
	}
}

func TestAppendRejectsUnknownRole(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = store.Append(ctx, sess.ID, "system", "nope")
	var bad *archive.InvalidRoleError
	if !errors.As(err, &bad) {
		t.Fatalf("expected InvalidRoleError, got %v", err)
	}
}

func TestLastSessionID(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.LastSessionID(ctx)
	if err != nil {
		t.Fatalf("last session id on empty db: %v", err)
	}
	if id != "" {
		t.Errorf("expected empty id on empty db, got %q", id)
	}

	first, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Resuming the first session makes it the most recently active.
	if _, err := store.Resume(ctx, first.ID); err != nil {
		t.Fatalf("resume: %v", err)
	}
	id, err = store.LastSessionID(ctx)
	if err != nil {
		t.Fatalf("last session id: %v", err)
	}
	if id != first.ID {
		t.Errorf("expected %s, got %s (second created: %s)", first.ID, id, second.ID)
	}
}
