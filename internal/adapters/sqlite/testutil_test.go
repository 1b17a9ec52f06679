// Package sqlite_test contains integration tests for SQLite repositories.
//
// All test setup goes through db.GetSchemaSQL() so tests always run
// against the authoritative schema. Do not hardcode CREATE TABLE
// statements in test files.
package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/todochain/internal/adapters/sqlite"
	"github.com/example/todochain/internal/db"
	"github.com/example/todochain/internal/ports/secondary"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedTask inserts a test task via the repository and returns its ID.
func seedTask(t *testing.T, repo *sqlite.TaskRepository, title string) string {
	t.Helper()

	id, err := repo.GetNextID(context.Background())
	if err != nil {
		t.Fatalf("failed to get next task id: %v", err)
	}

	err = repo.Create(context.Background(), &secondary.TaskRecord{
		ID:        id,
		Title:     title,
		Category:  "General",
		Priority:  "medium",
		Version:   1,
		SyncState: "local_only",
	})
	if err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}
	return id
}
