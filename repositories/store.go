package repositories

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

var tables = []string{
	`CREATE TABLE IF NOT EXISTS users (
		phone TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL)`,

	`CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sender TEXT NOT NULL,
		receiver TEXT NOT NULL,
		text TEXT NOT NULL,
		created_on INTEGER NOT NULL)`,

	`CREATE INDEX IF NOT EXISTS idx_messages_pair
		ON messages (sender, receiver, created_on)`,
}

// OpenStore opens (or creates) the SQLite store and runs the schema.
// The returned handle is long-lived and shared by all repositories.
// SQLite has a single writer; capping the pool at one connection
// serializes concurrent inserts instead of surfacing SQLITE_BUSY.
func OpenStore(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	for _, table := range tables {
		if _, err := db.Exec(table); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}
	return db, nil
}
