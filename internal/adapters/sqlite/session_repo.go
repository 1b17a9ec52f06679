package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/todochain/internal/ports/secondary"
)

// SessionRepository implements secondary.SessionRepository with SQLite.
// At most one session row exists at a time.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Get retrieves the active session, or nil when logged out.
func (r *SessionRepository) Get(ctx context.Context) (*secondary.SessionRecord, error) {
	var (
		record      secondary.SessionRecord
		displayName sql.NullString
		wallet      sql.NullString
		createdAt   time.Time
	)

	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, email, display_name, wallet_address, token, created_at FROM session LIMIT 1",
	).Scan(&record.ID, &record.UserID, &record.Email, &displayName, &wallet, &record.Token, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	record.DisplayName = displayName.String
	record.WalletAddress = wallet.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	return &record, nil
}

// Save replaces the active session.
func (r *SessionRepository) Save(ctx context.Context, session *secondary.SessionRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin session save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM session"); err != nil {
		return fmt.Errorf("failed to clear previous session: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO session (id, user_id, email, display_name, wallet_address, token) VALUES (?, ?, ?, ?, ?, ?)",
		session.ID, session.UserID, session.Email,
		nullable(session.DisplayName), nullable(session.WalletAddress), session.Token,
	); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return tx.Commit()
}

// Clear removes the active session.
func (r *SessionRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM session"); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
