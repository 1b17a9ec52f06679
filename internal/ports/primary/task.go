// Package primary defines the primary ports (driving interfaces) of the
// engine: the task repository facade, the session service, the wallet
// service and the chat resolver.
package primary

import (
	"context"

	"github.com/example/todochain/internal/models"
)

// TaskService is the public facade over the reconciliation coordinator.
//
// All operations are safe to call again after a reported failure:
// semantics are at-least-once, never exactly-once. Re-invoking CreateTask
// with the same fields produces a second, independent task with its own
// fingerprint. Leg failures never surface as errors; they are attached to
// the returned TaskResult so callers can render status inline. The
// returned error is non-nil only for validation failures, rejected before
// any leg is attempted.
type TaskService interface {
	// CreateTask creates a new task, escrowing its bounty when positive.
	CreateTask(ctx context.Context, req CreateTaskRequest) (*TaskResult, error)

	// UpdateTask edits a task. Substantive edits (title, category,
	// priority) mint a new fingerprint and restart its escrow lifecycle.
	UpdateTask(ctx context.Context, req UpdateTaskRequest) (*TaskResult, error)

	// DeleteTask removes a task locally and remotely. No ledger call is
	// made: an open escrow for a deleted task stays open on the ledger.
	DeleteTask(ctx context.Context, taskID string) (*TaskResult, error)

	// SetCompleted toggles completion. Completing a task with an
	// escrowed bounty also attempts the claim; a failed claim never
	// reverts the completion.
	SetCompleted(ctx context.Context, taskID string, completed bool) (*TaskResult, error)

	// RetryClaim retries the bounty claim for a completed task whose
	// earlier claim failed. It re-queries the ledger first and never
	// re-submits against a record that already reports completed.
	RetryClaim(ctx context.Context, taskID string) (*TaskResult, error)

	// GetTask retrieves a single task view.
	GetTask(ctx context.Context, taskID string) (*Task, error)

	// ListTasks lists task views with optional filters.
	ListTasks(ctx context.Context, filters TaskFilters) ([]*Task, error)

	// VerifyEscrow probes the ledger for a task's escrow record, for
	// verification badges.
	VerifyEscrow(ctx context.Context, taskID string) (*EscrowStatus, error)
}

// Task is the caller-facing task view.
type Task struct {
	ID          string
	RemoteID    string
	Title       string
	Description string
	Category    string
	Priority    string
	Due         string
	Completed   bool
	Bounty      string // decimal token amount, "0.00" when no escrow
	Fingerprint string
	Version     int
	EscrowState string
	SyncState   string
	LastFault   string
}

// TaskResult is the outcome of a facade operation: the resulting view plus
// what each leg actually committed.
type TaskResult struct {
	Task            *Task
	AppliedLocally  bool
	CommittedRemote bool
	EscrowState     string
	Faults          []*models.Fault
}

// Ok reports whether every attempted leg committed.
func (r *TaskResult) Ok() bool {
	return len(r.Faults) == 0
}

// CreateTaskRequest contains parameters for creating a task.
type CreateTaskRequest struct {
	Title    string
	Category string // defaults to General
	Priority string // defaults to medium
	Due      string // defaults to today
	Bounty   string // decimal amount, empty or "0" skips the ledger legs
}

// UpdateTaskRequest contains parameters for updating a task. Empty fields
// are left unchanged.
type UpdateTaskRequest struct {
	TaskID   string
	Title    string
	Category string
	Priority string
	Due      string
	Bounty   string
}

// TaskFilters contains filter options for listing tasks.
type TaskFilters struct {
	Category  string
	Priority  string
	Completed *bool
}

// EscrowStatus is the result of a ledger verification probe.
type EscrowStatus struct {
	TaskID      string
	Fingerprint string
	LocalState  string
	OnLedger    *models.EscrowRecord // nil when no fingerprint exists yet
}
