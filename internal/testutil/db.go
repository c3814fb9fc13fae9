// Package testutil provides fixtures shared by package tests: item
// builders, an in-memory store and a migrated in-memory SQLite database.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/folio/internal/infrastructure/sqlite"
	"github.com/zjrosen/folio/internal/library"
)

// NewTestDB opens a migrated in-memory database closed at test cleanup.
func NewTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.NewDB(sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// NewSQLiteStore returns a store over a fresh in-memory database.
func NewSQLiteStore(t *testing.T) library.Store {
	t.Helper()
	return NewTestDB(t).ItemStore()
}
