package db

import (
	"database/sql"
	"testing"
)

// NewTestDB returns a migrated private in-memory catalog database that is
// closed when tb finishes.
func NewTestDB(tb testing.TB) *sql.DB {
	tb.Helper()

	database, err := Open(":memory:")
	if err != nil {
		tb.Fatalf("open catalog test db: %v", err)
	}
	tb.Cleanup(func() { _ = database.Close() })

	if err := Migrate(database); err != nil {
		tb.Fatalf("migrate catalog test db: %v", err)
	}
	return database
}
