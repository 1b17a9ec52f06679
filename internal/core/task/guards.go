// Package task contains the pure business logic for task operations.
// Guards are pure functions that evaluate preconditions without side effects.
package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/todochain/internal/models"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// CreateTaskContext provides context for task creation guards.
type CreateTaskContext struct {
	Title    string
	Priority string // optional, defaulted upstream when empty
	Due      string // optional calendar date
}

// CanCreateTask evaluates whether a task can be created.
// Rules:
// - Title must be non-empty
// - Priority must be a known level when provided
// - Due date must be a calendar date when provided
func CanCreateTask(ctx CreateTaskContext) GuardResult {
	if strings.TrimSpace(ctx.Title) == "" {
		return GuardResult{
			Allowed: false,
			Reason:  "task title must not be empty",
		}
	}

	if ctx.Priority != "" && !models.ValidPriority(ctx.Priority) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("unknown priority %q (expected high, medium or low)", ctx.Priority),
		}
	}

	if ctx.Due != "" {
		if _, err := time.Parse("2006-01-02", ctx.Due); err != nil {
			return GuardResult{
				Allowed: false,
				Reason:  fmt.Sprintf("invalid due date %q (expected YYYY-MM-DD)", ctx.Due),
			}
		}
	}

	return GuardResult{Allowed: true}
}

// UpdateTaskContext provides context for task update guards.
type UpdateTaskContext struct {
	TaskExists bool
	TaskID     string
	Title      string // empty means unchanged
	Priority   string // empty means unchanged
	Due        string // empty means unchanged
}

// CanUpdateTask evaluates whether a task can be updated.
func CanUpdateTask(ctx UpdateTaskContext) GuardResult {
	if !ctx.TaskExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("task %s not found", ctx.TaskID),
		}
	}

	if ctx.Priority != "" && !models.ValidPriority(ctx.Priority) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("unknown priority %q (expected high, medium or low)", ctx.Priority),
		}
	}

	if ctx.Due != "" {
		if _, err := time.Parse("2006-01-02", ctx.Due); err != nil {
			return GuardResult{
				Allowed: false,
				Reason:  fmt.Sprintf("invalid due date %q (expected YYYY-MM-DD)", ctx.Due),
			}
		}
	}

	return GuardResult{Allowed: true}
}

// SubstantiveEdit reports whether an edit changes the task's semantic
// content enough to mint a new fingerprint. Completion toggles and
// due-date-only changes keep the existing fingerprint.
func SubstantiveEdit(titleChanged, categoryChanged, priorityChanged bool) bool {
	return titleChanged || categoryChanged || priorityChanged
}
