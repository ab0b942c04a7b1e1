// Package vectorstore keeps portfolio entries as embedded documents in a
// local SQLite database and answers nearest-neighbour queries over them.
package vectorstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/amishk599/coldreach/internal/model"

	_ "modernc.org/sqlite"
)

// DBFile is the database file created inside the store directory.
const DBFile = "collections.db"

const schema = `
CREATE TABLE IF NOT EXISTS collections (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL UNIQUE,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS embeddings (
	seq           INTEGER PRIMARY KEY AUTOINCREMENT,
	id            TEXT NOT NULL,
	collection_id INTEGER NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
	document      TEXT NOT NULL,
	metadata      TEXT NOT NULL DEFAULT '{}',
	embedding     BLOB NOT NULL,
	UNIQUE (collection_id, id)
);`

// Store is a directory-backed set of named collections.
type Store struct {
	db       *sql.DB
	embedder model.Embedder
}

// Open opens (or creates) the store under dir. Every document added to or
// queried from its collections is embedded with embedder.
func Open(dir string, embedder model.Embedder) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating vectorstore dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, DBFile))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// One writer at a time; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating vectorstore tables: %w", err)
	}

	return &Store{db: db, embedder: embedder}, nil
}

// GetOrCreateCollection returns the named collection, creating it on first use.
func (s *Store) GetOrCreateCollection(ctx context.Context, name string) (*Collection, error) {
	if _, err := s.db.ExecContext(ctx, "INSERT OR IGNORE INTO collections (name) VALUES (?)", name); err != nil {
		return nil, fmt.Errorf("creating collection %s: %w", name, err)
	}

	var id int64
	if err := s.db.QueryRowContext(ctx, "SELECT id FROM collections WHERE name = ?", name).Scan(&id); err != nil {
		return nil, fmt.Errorf("looking up collection %s: %w", name, err)
	}

	return &Collection{db: s.db, embedder: s.embedder, id: id, name: name}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
