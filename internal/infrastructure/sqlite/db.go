// Package sqlite is the SQLite-backed library store.
package sqlite

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/folio/internal/library"
	"github.com/zjrosen/folio/internal/log"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DB owns the SQLite connection.
type DB struct {
	conn   *sql.DB
	tracer trace.Tracer
}

// Option configures NewDB.
type Option func(*DB)

// WithTracer records store spans on t.
func WithTracer(t trace.Tracer) Option {
	return func(db *DB) { db.tracer = t }
}

// NewDB opens the database at path, creating its directory (0700) when
// missing. An existing database is copied to path+".bak" before migrations
// run.
func NewDB(path string, opts ...Option) (*DB, error) {
	memory := path == MemoryPath
	if !memory {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		if err := backup(path); err != nil {
			return nil, fmt.Errorf("failed to back up database: %w", err)
		}
	}

	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	if !memory {
		dsn += "&_pragma=journal_mode(wal)"
	}
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if memory {
		// Every pooled connection would otherwise see its own empty database.
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := runMigrations(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	for _, opt := range opts {
		opt(db)
	}
	log.Debug(log.CatDB, "database opened", "path", path)
	return db, nil
}

// Connection returns the underlying *sql.DB.
func (db *DB) Connection() *sql.DB {
	return db.conn
}

// ItemStore returns the library.Store backed by this database.
func (db *DB) ItemStore() library.Store {
	return newItemRepository(db.conn, db.tracer)
}

// Close closes the connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func backup(path string) error {
	src, err := os.Open(path) //nolint:gosec // G304: path comes from config
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	info, err := src.Stat()
	if err != nil || info.Size() == 0 {
		return err
	}

	dst, err := os.OpenFile(path+".bak", os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600) //nolint:gosec // G304: derived from config path
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}
