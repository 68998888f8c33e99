// Package sqlite implements the repository interfaces on SQLite via the
// pure-Go modernc.org/sqlite driver — no CGo, so the binary cross-compiles
// anywhere Go runs. Use ":memory:" as the path for tests.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"

	"github.com/jdogcodey/blog-api-backend/internal/apperror"
)

// DB wraps a sql.DB connection pool and implements the repository
// interfaces. The server owns it and closes it on shutdown.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath, applies the pragmas a web server
// needs (WAL for concurrent reads during writes, foreign keys on), and
// runs migrations.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// SQLite allows one writer at a time, and the pragmas below are
	// per-connection (an in-memory database is per-connection too). A
	// single pooled connection keeps all of that coherent.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

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

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Users returns the user repository backed by this connection.
func (db *DB) Users() *UserRepo {
	return &UserRepo{conn: db.conn}
}

// Posts returns the post repository backed by this connection.
func (db *DB) Posts() *PostRepo {
	return &PostRepo{conn: db.conn}
}

// Comments returns the comment repository backed by this connection.
func (db *DB) Comments() *CommentRepo {
	return &CommentRepo{conn: db.conn}
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it
// idempotent, so it's safe on every startup.
//
// The UNIQUE constraints on users.username and users.email are the final
// backstop for the signup duplicate check: two racing signups can both
// pass the application-level pre-check, but only one insert wins here.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			first_name    TEXT NOT NULL,
			last_name     TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS posts (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			content    TEXT NOT NULL,
			user_id    TEXT NOT NULL REFERENCES users(id),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating posts table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS comments (
			id         TEXT PRIMARY KEY,
			content    TEXT NOT NULL,
			post_id    TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			user_id    TEXT NOT NULL REFERENCES users(id),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments(post_id);
	`)
	if err != nil {
		return fmt.Errorf("creating comments table: %w", err)
	}

	return nil
}

// conflictField inspects a driver error for a UNIQUE constraint violation
// and returns the offending column, or "" if the error is something else.
// The driver reports these as "UNIQUE constraint failed: users.email".
func conflictField(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	idx := strings.Index(msg, "UNIQUE constraint failed: ")
	if idx < 0 {
		return ""
	}
	constraint := msg[idx+len("UNIQUE constraint failed: "):]
	if dot := strings.IndexByte(constraint, '.'); dot >= 0 {
		constraint = constraint[dot+1:]
	}
	if end := strings.IndexAny(constraint, " ,("); end >= 0 {
		constraint = constraint[:end]
	}
	return strings.TrimSpace(constraint)
}

// asConflict converts a UNIQUE violation into apperror.ErrConflict,
// leaving other errors untouched.
func asConflict(err error) error {
	if field := conflictField(err); field != "" {
		return apperror.Conflict(field)
	}
	return err
}
