// Package secondary defines the secondary ports (driven adapters) for the
// application: the local session store, the remote task API, the ledger and
// the description service.
package secondary

import "context"

// TaskRepository defines the secondary port for the local task store.
// The local store is the optimistic leg: every operation applies here
// first, and this layer is never silently lost to a failure elsewhere.
type TaskRepository interface {
	// Create persists a new task.
	Create(ctx context.Context, task *TaskRecord) error

	// GetByID retrieves a task by its session-local ID.
	GetByID(ctx context.Context, id string) (*TaskRecord, error)

	// Update replaces a task's mutable fields.
	Update(ctx context.Context, task *TaskRecord) error

	// Delete removes a task from the local store.
	Delete(ctx context.Context, id string) error

	// List retrieves tasks matching the given filters.
	List(ctx context.Context, filters TaskFilters) ([]*TaskRecord, error)

	// FindByTitle retrieves tasks whose title contains the query,
	// case-insensitively. Used by the chat resolver.
	FindByTitle(ctx context.Context, query string) ([]*TaskRecord, error)

	// GetNextID returns the next available session-local task ID.
	GetNextID(ctx context.Context) (string, error)
}

// TaskRecord represents a task as stored in the local session store.
type TaskRecord struct {
	ID          string
	RemoteID    string
	Title       string
	Description string
	Category    string
	Priority    string
	Due         string
	Completed   bool
	BountyBase  int64
	Fingerprint string
	Version     int
	SyncState   string
	LastFault   string
	CreatedAt   string
	UpdatedAt   string
}

// TaskFilters contains filter options for querying tasks.
type TaskFilters struct {
	Category  string
	Priority  string
	Completed *bool // nil means both
}

// EscrowStateRepository persists the escrow state machine per fingerprint,
// so that a retried operation resumes from the correct state instead of
// restarting the lifecycle.
type EscrowStateRepository interface {
	// Upsert inserts or replaces the state row for a fingerprint.
	Upsert(ctx context.Context, rec *EscrowStateRecord) error

	// GetByFingerprint retrieves the state row for a fingerprint.
	GetByFingerprint(ctx context.Context, fingerprint string) (*EscrowStateRecord, error)

	// ListByTask retrieves all escrow rows ever minted for a task,
	// newest version first. Superseded rows are kept: their ledger
	// records stay open and remain inspectable.
	ListByTask(ctx context.Context, taskID string) ([]*EscrowStateRecord, error)

	// ListActive retrieves the escrow rows that are not yet claimed.
	ListActive(ctx context.Context) ([]*EscrowStateRecord, error)

	// SetState updates the state and transaction reference for a
	// fingerprint.
	SetState(ctx context.Context, fingerprint, state, txRef string) error
}

// EscrowStateRecord represents the locally tracked escrow lifecycle for one
// fingerprint.
type EscrowStateRecord struct {
	Fingerprint string
	TaskID      string
	Version     int
	AmountBase  int64
	State       string
	TxRef       string
	CreatedAt   string
	UpdatedAt   string
}

// SessionRepository persists the single active session (auth token and
// user identity). Created at login, cleared at logout, never shared.
type SessionRepository interface {
	// Get retrieves the active session, or nil when logged out.
	Get(ctx context.Context) (*SessionRecord, error)

	// Save replaces the active session.
	Save(ctx context.Context, session *SessionRecord) error

	// Clear removes the active session.
	Clear(ctx context.Context) error
}

// SessionRecord represents the active session.
type SessionRecord struct {
	ID            string
	UserID        string
	Email         string
	DisplayName   string
	WalletAddress string
	Token         string
	CreatedAt     string
}
