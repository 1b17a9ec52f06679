package primary

import "context"

// SessionService manages the single active session. The session carries
// the bearer credential for the remote leg and the wallet identity for the
// ledger leg; it is created at login and cleared at logout.
type SessionService interface {
	// Register creates an account and opens a session.
	Register(ctx context.Context, req RegisterRequest) (*Session, error)

	// Login opens a session for existing credentials.
	Login(ctx context.Context, email, password string) (*Session, error)

	// Logout clears the active session.
	Logout(ctx context.Context) error

	// Current returns the active session, or nil when logged out.
	Current(ctx context.Context) (*Session, error)
}

// RegisterRequest contains parameters for account registration.
type RegisterRequest struct {
	Email         string
	Password      string
	DisplayName   string
	WalletAddress string
}

// Session is the caller-facing session view. The bearer token stays in the
// store and is not exposed here.
type Session struct {
	ID            string
	UserID        string
	Email         string
	DisplayName   string
	WalletAddress string
}
