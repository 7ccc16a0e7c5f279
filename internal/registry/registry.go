// Package registry keeps a small SQLite catalog of boards the user has
// opened, so launchers can show a recent-boards list without loading any
// board. Titles come from the best-effort header scan and may be stale;
// display always has the directory name as fallback.
package registry

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/dagaz/internal/board"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS boards (
	path        TEXT PRIMARY KEY,
	title       TEXT NOT NULL DEFAULT '',
	last_opened DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_boards_last_opened ON boards(last_opened);
`

// BoardRow is one known board.
type BoardRow struct {
	Path       string    `json:"path"`
	Title      string    `json:"title"`
	LastOpened time.Time `json:"last_opened"`
}

// DB wraps a sql.DB with registry operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("registry: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("registry: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("registry: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Touch records that the board at path was opened now, refreshing its
// title from the configuration header when readable.
func (db *DB) Touch(path string) error {
	title, _ := board.ReadTitle(path)
	_, err := db.conn.Exec(`
		INSERT INTO boards (path, title, last_opened)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title       = CASE WHEN excluded.title != '' THEN excluded.title ELSE boards.title END,
			last_opened = excluded.last_opened
	`, path, title, time.Now())
	if err != nil {
		return fmt.Errorf("registry: touch %s: %w", path, err)
	}
	return nil
}

// Recent returns known boards, most recently opened first.
func (db *DB) Recent(limit int) ([]BoardRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT path, title, last_opened FROM boards
		ORDER BY last_opened DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("registry: recent: %w", err)
	}
	defer rows.Close()

	var out []BoardRow
	for rows.Next() {
		var r BoardRow
		if err := rows.Scan(&r.Path, &r.Title, &r.LastOpened); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Remove forgets a board, for example after its directory disappeared.
func (db *DB) Remove(path string) error {
	if _, err := db.conn.Exec(`DELETE FROM boards WHERE path = ?`, path); err != nil {
		return fmt.Errorf("registry: remove %s: %w", path, err)
	}
	return nil
}
