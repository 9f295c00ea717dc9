package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/kraig-tester/Simple-blog-website/internal/log"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicateEmail  = errors.New("email already exists")
	ErrDuplicateTitle  = errors.New("a post with this title already exists")
	ErrSessionNotFound = errors.New("session not found")
)

const schema = `
CREATE TABLE IF NOT EXISTS users(
	id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
	email VARCHAR(100) NOT NULL UNIQUE,
	password VARCHAR(100) NOT NULL,
	name VARCHAR(1000) NOT NULL,
	is_admin BOOLEAN NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS posts(
	id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
	title VARCHAR(250) NOT NULL UNIQUE,
	subtitle VARCHAR(250) NOT NULL,
	date VARCHAR(250) NOT NULL,
	body TEXT NOT NULL,
	img_url VARCHAR(250) NOT NULL,
	author_id INTEGER NOT NULL,
	FOREIGN KEY(author_id) REFERENCES users(id)
);
CREATE TABLE IF NOT EXISTS comments(
	id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
	text TEXT NOT NULL,
	author_id INTEGER NOT NULL,
	post_id INTEGER NOT NULL,
	FOREIGN KEY(author_id) REFERENCES users(id),
	FOREIGN KEY(post_id) REFERENCES posts(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS comments_post_id ON comments(post_id);
CREATE TABLE IF NOT EXISTS sessions(
	id TEXT NOT NULL PRIMARY KEY,
	user_id INTEGER NOT NULL,
	expires_at INTEGER NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id)
);
`

// Store is the blog's relational storage. Every exported method is atomic.
type Store struct {
	DB *sql.DB
}

// Open connects to the SQLite file at path, creating it and the schema if needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	conn, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	log.Info.Printf("Connected to %s", path)
	return &Store{DB: conn}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// uniqueViolation reports whether err is a UNIQUE constraint failure on column
// ("table.column").
func uniqueViolation(err error, column string) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) || se.ExtendedCode != sqlite3.ErrConstraintUnique {
		return false
	}
	return strings.Contains(se.Error(), column)
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		log.Warn.Printf("rollback: %v", err)
	}
}
