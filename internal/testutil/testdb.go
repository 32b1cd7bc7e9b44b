package testutil

import (
	"database/sql"
	"testing"

	"github.com/alexanderramin/taskquest/internal/db"
	"github.com/stretchr/testify/require"
)

// NewTestDB opens a migrated in-memory record store database that is closed
// with the test.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.OpenDB(db.MemoryPath)
	require.NoError(t, err, "opening test database")
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}
