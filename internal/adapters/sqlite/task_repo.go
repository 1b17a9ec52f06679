// Package sqlite contains SQLite implementations of the local repository
// interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/todochain/internal/ports/secondary"
)

// TaskRepository implements secondary.TaskRepository with SQLite.
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new SQLite task repository.
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskSelectCols = "id, remote_id, title, description, category, priority, due, completed, bounty_base, fingerprint, version, sync_state, last_fault, created_at, updated_at"

// scanTask scans a task row into a TaskRecord.
func scanTask(scanner interface {
	Scan(dest ...any) error
}) (*secondary.TaskRecord, error) {
	var (
		remoteID    sql.NullString
		desc        sql.NullString
		due         sql.NullString
		fingerprint sql.NullString
		lastFault   sql.NullString
		createdAt   time.Time
		updatedAt   time.Time
	)

	record := &secondary.TaskRecord{}
	err := scanner.Scan(
		&record.ID, &remoteID, &record.Title, &desc, &record.Category, &record.Priority,
		&due, &record.Completed, &record.BountyBase, &fingerprint, &record.Version,
		&record.SyncState, &lastFault, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.RemoteID = remoteID.String
	record.Description = desc.String
	record.Due = due.String
	record.Fingerprint = fingerprint.String
	record.LastFault = lastFault.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)

	return record, nil
}

func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// Create persists a new task.
func (r *TaskRepository) Create(ctx context.Context, task *secondary.TaskRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, remote_id, title, description, category, priority, due, completed, bounty_base, fingerprint, version, sync_state, last_fault)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, nullable(task.RemoteID), task.Title, nullable(task.Description),
		task.Category, task.Priority, nullable(task.Due), task.Completed,
		task.BountyBase, nullable(task.Fingerprint), task.Version,
		task.SyncState, nullable(task.LastFault),
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// GetByID retrieves a task by its session-local ID.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*secondary.TaskRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+taskSelectCols+" FROM tasks WHERE id = ?", id)

	record, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return record, nil
}

// Update replaces a task's mutable fields.
func (r *TaskRepository) Update(ctx context.Context, task *secondary.TaskRecord) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET remote_id = ?, title = ?, description = ?, category = ?, priority = ?,
		 due = ?, completed = ?, bounty_base = ?, fingerprint = ?, version = ?,
		 sync_state = ?, last_fault = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		nullable(task.RemoteID), task.Title, nullable(task.Description), task.Category,
		task.Priority, nullable(task.Due), task.Completed, task.BountyBase,
		nullable(task.Fingerprint), task.Version, task.SyncState,
		nullable(task.LastFault), task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("task %s not found", task.ID)
	}
	return nil
}

// Delete removes a task from the local store.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("task %s not found", id)
	}
	return nil
}

// List retrieves tasks matching the given filters, newest first.
func (r *TaskRepository) List(ctx context.Context, filters secondary.TaskFilters) ([]*secondary.TaskRecord, error) {
	query := "SELECT " + taskSelectCols + " FROM tasks WHERE 1=1"
	var args []any

	if filters.Category != "" {
		query += " AND category = ?"
		args = append(args, filters.Category)
	}
	if filters.Priority != "" {
		query += " AND priority = ?"
		args = append(args, filters.Priority)
	}
	if filters.Completed != nil {
		query += " AND completed = ?"
		args = append(args, *filters.Completed)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var records []*secondary.TaskRecord
	for rows.Next() {
		record, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// FindByTitle retrieves tasks whose title contains the query,
// case-insensitively.
func (r *TaskRepository) FindByTitle(ctx context.Context, query string) ([]*secondary.TaskRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+taskSelectCols+" FROM tasks WHERE title LIKE ? COLLATE NOCASE ORDER BY id",
		"%"+query+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find tasks by title: %w", err)
	}
	defer rows.Close()

	var records []*secondary.TaskRecord
	for rows.Next() {
		record, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// GetNextID returns the next available task ID. The counter only moves
// forward, so an ID is never reused within a session even after deletes.
func (r *TaskRepository) GetNextID(ctx context.Context) (string, error) {
	var next int
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO counters (name, value) VALUES ('task', 1)
		 ON CONFLICT(name) DO UPDATE SET value = value + 1
		 RETURNING value`,
	).Scan(&next)
	if err != nil {
		return "", fmt.Errorf("failed to get next task ID: %w", err)
	}

	return fmt.Sprintf("TASK-%03d", next), nil
}
