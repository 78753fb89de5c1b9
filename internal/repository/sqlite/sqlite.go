// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY SQLITE FOR A DIARY?
// SQLite is an embedded database — it lives inside the Go binary as a single
// file. A personal diary is a single-server app with modest write volume; a
// separate database server would be pure operational overhead. ":memory:"
// databases also make the repository tests fast and fully isolated.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go translation of
// the SQLite sources — works everywhere Go works.
package sqlite

import (
	"database/sql"
	"fmt"

	// Blank import: the driver registers itself with database/sql under the
	// name "sqlite" in its init(). We never reference the package directly.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
//
// One struct implements all three repository interfaces (users, entries,
// media) — they share a schema and a connection pool, and splitting them
// into separate types would only add wiring noise.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/diary.db" → file-based, persistent
//   - ":memory:"      → in-memory, gone on close (used by tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// sql.Open doesn't actually connect — Ping forces the first connection
	// so a bad path or permission problem surfaces here, not on first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is in progress —
	// important once multiple HTTP requests share this pool.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. The cascade chain
	// users → entries → {todos, expenses, media} depends on them.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool. Call it on server shutdown so
// the WAL is flushed and the file lock released.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it idempotent
// — safe to run on every startup against an existing database.
//
// THE OWNERSHIP CHAIN:
// users exclusively own entries (UNIQUE(user_id, date) — one entry per user
// per calendar date), entries exclusively own todos/expenses/media. Every
// child table declares ON DELETE CASCADE so removing a user or an entry
// removes everything underneath it in one statement.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			name          TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS entries (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			date           TEXT NOT NULL,
			insight        TEXT NOT NULL DEFAULT '',
			my_day_summary TEXT NOT NULL DEFAULT '',
			created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, date)
		);

		CREATE TABLE IF NOT EXISTS todos (
			id         TEXT PRIMARY KEY,
			entry_id   TEXT NOT NULL REFERENCES entries(id) ON DELETE CASCADE,
			text       TEXT NOT NULL,
			completed  INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS expenses (
			id         TEXT PRIMARY KEY,
			entry_id   TEXT NOT NULL REFERENCES entries(id) ON DELETE CASCADE,
			item       TEXT NOT NULL,
			amount     REAL NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS media (
			id         TEXT PRIMARY KEY,
			entry_id   TEXT NOT NULL REFERENCES entries(id) ON DELETE CASCADE,
			type       TEXT NOT NULL CHECK(type IN ('image', 'video', 'audio')),
			url        TEXT NOT NULL,
			name       TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_entries_user_date ON entries(user_id, date);
		CREATE INDEX IF NOT EXISTS idx_todos_entry       ON todos(entry_id);
		CREATE INDEX IF NOT EXISTS idx_expenses_entry    ON expenses(entry_id);
		CREATE INDEX IF NOT EXISTS idx_media_entry       ON media(entry_id);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return nil
}
