package testutil

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/vytor/mnemoflash/internal/db"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The database is configured with foreign keys enabled.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	// every connection to :memory: is its own database
	sqlDB.SetMaxOpenConns(1)

	_, err = db.Migrate(context.Background(), sqlDB)
	require.NoError(t, err, "failed to apply migrations")

	return sqlDB
}

// NewProfile inserts a profile and returns its id.
func NewProfile(t *testing.T, sqlDB *sql.DB, username string) int64 {
	t.Helper()

	res, err := sqlDB.Exec(`INSERT INTO profiles (username) VALUES (?)`, username)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}
