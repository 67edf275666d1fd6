package archive

// SchemaDDL defines the SQLite schema for the aide assistant database.
// Tables: sessions, messages, notes, research, documents, notes_fts (FTS5).
// Every table read by the export, search, and history paths is created
// here; read paths must never reference a table this constant omits.
// Execute against a SQLite database with: db.Exec(SchemaDDL)
const SchemaDDL = `
-- Conversation sessions: one row per resumable conversation
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    started_at TEXT NOT NULL,
    last_active_at TEXT NOT NULL,
    total_cost_usd REAL NOT NULL DEFAULT 0.0,
    message_count INTEGER NOT NULL DEFAULT 0
);

-- Conversation transcript: one row per user input or assistant fragment
CREATE TABLE IF NOT EXISTS messages (
    id INTEGER PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES sessions(id),
    timestamp TEXT NOT NULL,
    role TEXT NOT NULL,
    content TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS messages_session_idx ON messages(session_id, id);

-- Notes: markdown files on disk mirrored as rows for search and export
CREATE TABLE IF NOT EXISTS notes (
    id INTEGER PRIMARY KEY,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    tags TEXT NOT NULL DEFAULT '[]',
    file_path TEXT,
    created_at TEXT NOT NULL,
    session_id TEXT REFERENCES sessions(id)
);

-- Research findings: query, JSON source list, analysis text
CREATE TABLE IF NOT EXISTS research (
    id INTEGER PRIMARY KEY,
    query TEXT NOT NULL,
    sources TEXT NOT NULL,
    analysis TEXT,
    created_at TEXT NOT NULL,
    session_id TEXT REFERENCES sessions(id)
);

-- Registered documents: metadata for files the assistant produced or read
CREATE TABLE IF NOT EXISTS documents (
    id INTEGER PRIMARY KEY,
    filename TEXT NOT NULL,
    file_type TEXT NOT NULL,
    file_path TEXT NOT NULL,
    description TEXT,
    created_at TEXT NOT NULL,
    session_id TEXT REFERENCES sessions(id)
);

-- FTS5 full-text index over notes for BM25-ranked search
CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts5(
    title,
    content,
    tags,
    content=notes,
    content_rowid=id
);

-- Triggers to keep FTS index in sync with notes table
CREATE TRIGGER IF NOT EXISTS notes_ai AFTER INSERT ON notes BEGIN
    INSERT INTO notes_fts(rowid, title, content, tags) VALUES (new.id, new.title, new.content, new.tags);
END;

CREATE TRIGGER IF NOT EXISTS notes_ad AFTER DELETE ON notes BEGIN
    INSERT INTO notes_fts(notes_fts, rowid, title, content, tags) VALUES ('delete', old.id, old.title, old.content, old.tags);
END;

CREATE TRIGGER IF NOT EXISTS notes_au AFTER UPDATE ON notes BEGIN
    INSERT INTO notes_fts(notes_fts, rowid, title, content, tags) VALUES ('delete', old.id, old.title, old.content, old.tags);
    INSERT INTO notes_fts(rowid, title, content, tags) VALUES (new.id, new.title, new.content, new.tags);
END;
`

// Tables lists every table and virtual table SchemaDDL creates, in
// creation order. Export and startup verification iterate this list so a
// read path can never depend on a table the initializer skipped.
var Tables = []string{"sessions", "messages", "notes", "research", "documents", "notes_fts"}
