// Package models contains domain types for todochain entities.
// Persistence lives behind the repository interfaces in ports/secondary.
package models

import (
	"time"

	"github.com/example/todochain/internal/core/money"
)

// Task represents a task entity owned by the active session.
type Task struct {
	ID          string // session-local TASK-### identifier
	RemoteID    string // durable id from the task API, empty until first sync
	Title       string
	Description string
	Category    string
	Priority    string
	Due         string // calendar date, YYYY-MM-DD
	Completed   bool
	Bounty      money.Amount
	Fingerprint string // empty until the ledger leg has been attempted
	Version     int    // bumped on every substantive edit
	SyncState   string
	LastFault   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Task priority constants
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// ValidPriority reports whether p is a known priority level.
func ValidPriority(p string) bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Sync state constants. The local store is the most trusted layer: a task
// is never silently dropped because the remote leg failed, it is parked in
// pending instead.
const (
	SyncStateSynced    = "synced"
	SyncStatePending   = "pending"
	SyncStateLocalOnly = "local_only"
)

// DefaultCategory is assigned when the caller leaves the category blank.
const DefaultCategory = "General"
