package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/todochain/internal/core/escrow"
	"github.com/example/todochain/internal/ports/secondary"
)

// EscrowStateRepository implements secondary.EscrowStateRepository with
// SQLite. One row per fingerprint; superseded versions are kept.
type EscrowStateRepository struct {
	db *sql.DB
}

// NewEscrowStateRepository creates a new SQLite escrow state repository.
func NewEscrowStateRepository(db *sql.DB) *EscrowStateRepository {
	return &EscrowStateRepository{db: db}
}

const escrowSelectCols = "fingerprint, task_id, version, amount_base, state, tx_ref, created_at, updated_at"

func scanEscrow(scanner interface {
	Scan(dest ...any) error
}) (*secondary.EscrowStateRecord, error) {
	var (
		txRef     sql.NullString
		createdAt time.Time
		updatedAt time.Time
	)

	record := &secondary.EscrowStateRecord{}
	err := scanner.Scan(
		&record.Fingerprint, &record.TaskID, &record.Version, &record.AmountBase,
		&record.State, &txRef, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.TxRef = txRef.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)

	return record, nil
}

// Upsert inserts or replaces the state row for a fingerprint.
func (r *EscrowStateRepository) Upsert(ctx context.Context, rec *secondary.EscrowStateRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO escrows (fingerprint, task_id, version, amount_base, state, tx_ref)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(fingerprint) DO UPDATE SET
		 task_id = excluded.task_id, version = excluded.version,
		 amount_base = excluded.amount_base, state = excluded.state,
		 tx_ref = excluded.tx_ref, updated_at = CURRENT_TIMESTAMP`,
		rec.Fingerprint, rec.TaskID, rec.Version, rec.AmountBase,
		rec.State, nullable(rec.TxRef),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert escrow state: %w", err)
	}
	return nil
}

// GetByFingerprint retrieves the state row for a fingerprint.
func (r *EscrowStateRepository) GetByFingerprint(ctx context.Context, fingerprint string) (*secondary.EscrowStateRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+escrowSelectCols+" FROM escrows WHERE fingerprint = ?", fingerprint)

	record, err := scanEscrow(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no escrow tracked for fingerprint %s", fingerprint)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get escrow state: %w", err)
	}
	return record, nil
}

// ListByTask retrieves all escrow rows minted for a task, newest version
// first.
func (r *EscrowStateRepository) ListByTask(ctx context.Context, taskID string) ([]*secondary.EscrowStateRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+escrowSelectCols+" FROM escrows WHERE task_id = ? ORDER BY version DESC", taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list escrows for task: %w", err)
	}
	defer rows.Close()

	return collectEscrows(rows)
}

// ListActive retrieves the escrow rows that are not yet claimed.
func (r *EscrowStateRepository) ListActive(ctx context.Context) ([]*secondary.EscrowStateRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+escrowSelectCols+" FROM escrows WHERE state != ? ORDER BY task_id, version DESC",
		string(escrow.StateClaimed),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list active escrows: %w", err)
	}
	defer rows.Close()

	return collectEscrows(rows)
}

func collectEscrows(rows *sql.Rows) ([]*secondary.EscrowStateRecord, error) {
	var records []*secondary.EscrowStateRecord
	for rows.Next() {
		record, err := scanEscrow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan escrow state: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// SetState updates the state and transaction reference for a fingerprint.
func (r *EscrowStateRepository) SetState(ctx context.Context, fingerprint, state, txRef string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE escrows SET state = ?, tx_ref = COALESCE(NULLIF(?, ''), tx_ref), updated_at = CURRENT_TIMESTAMP
		 WHERE fingerprint = ?`,
		state, txRef, fingerprint,
	)
	if err != nil {
		return fmt.Errorf("failed to set escrow state: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check escrow update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("no escrow tracked for fingerprint %s", fingerprint)
	}
	return nil
}
