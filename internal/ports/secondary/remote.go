package secondary

import "context"

// Remote task status values. The remote service uses a three-state enum
// where the engine keeps a completed flag; done maps to completed=true and
// the other two to completed=false.
const (
	RemoteStatusTodo       = "todo"
	RemoteStatusInProgress = "in-progress"
	RemoteStatusDone       = "done"
)

// RemoteTaskStore defines the secondary port for the durable task API.
// All methods require the session's bearer credential; a missing
// credential is a precondition failure, not a retryable error. Failures
// are reported as *models.Fault values with remote_* kinds.
type RemoteTaskStore interface {
	// Create persists a new task remotely and returns the stored record
	// including its durable id.
	Create(ctx context.Context, task *RemoteTaskRecord) (*RemoteTaskRecord, error)

	// Update replaces a task by its durable id.
	Update(ctx context.Context, remoteID string, task *RemoteTaskRecord) (*RemoteTaskRecord, error)

	// Delete removes a task by its durable id.
	Delete(ctx context.Context, remoteID string) error

	// Get retrieves a task by its durable id.
	Get(ctx context.Context, remoteID string) (*RemoteTaskRecord, error)

	// List retrieves all of the session user's tasks.
	List(ctx context.Context) ([]*RemoteTaskRecord, error)
}

// RemoteTaskRecord represents a task as carried by the remote API. The
// bounty never travels to the remote service: it lives on the ledger.
type RemoteTaskRecord struct {
	TaskID         string
	Name           string
	Description    string
	Status         string
	Priority       string
	Category       string
	DueDate        string
	BlockchainHash string
	CreatedAt      string
	UpdatedAt      string
}

// RemoteAuthenticator defines the secondary port for the remote auth
// endpoints. These are the only calls made without a bearer credential.
type RemoteAuthenticator interface {
	// Register creates an account and returns the authenticated identity.
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)

	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

// RegisterRequest contains parameters for account registration.
type RegisterRequest struct {
	Email         string
	Password      string
	DisplayName   string
	WalletAddress string
}

// AuthResult is the authenticated identity plus bearer token.
type AuthResult struct {
	UserID        string
	Email         string
	DisplayName   string
	WalletAddress string
	Token         string
}
