package secondary

import (
	"context"

	"github.com/example/todochain/internal/core/money"
	"github.com/example/todochain/internal/models"
)

// TxRef identifies a submitted ledger transaction.
type TxRef string

// Ledger defines the secondary port for the distributed ledger, addressed
// through two fixed contract endpoints: the escrow registry and the
// fungible token that denominates bounties. The ledger is an opaque
// transactional service; no signing happens here.
//
// Failures are reported as *models.Fault values:
//   - ledger_unavailable: no wallet/signing capability reachable
//   - ledger_timeout: submitted but confirmation not observed in time
//   - ledger_rejected: the ledger refused (insufficient funds/allowance,
//     unknown or completed escrow record)
type Ledger interface {
	// Owner returns the session's ledger identity (wallet address).
	Owner(ctx context.Context) (string, error)

	// Balance returns the owner's token balance.
	Balance(ctx context.Context) (money.Amount, error)

	// CheckAuthorization returns the allowance currently granted to the
	// escrow registry. Read-only, no side effect.
	CheckAuthorization(ctx context.Context) (money.Amount, error)

	// GrantAuthorization submits an allowance increase for the registry.
	// The caller polls CheckAuthorization afterwards; submission alone
	// does not mean the allowance is observable yet.
	GrantAuthorization(ctx context.Context, amount money.Amount) (TxRef, error)

	// OpenEscrow locks the bounty under the fingerprint. The adapter
	// re-reads allowance immediately before submitting and fails fast
	// with ledger_rejected when insufficient; the ledger re-checks
	// atomically either way.
	OpenEscrow(ctx context.Context, fingerprint string, amount money.Amount) (TxRef, error)

	// CloseEscrow claims an existing, not-yet-completed escrow record.
	CloseEscrow(ctx context.Context, fingerprint string) (TxRef, error)

	// QueryEscrow probes the registry for a fingerprint's record.
	// Unknown fingerprints return a record with Exists=false, not an
	// error.
	QueryEscrow(ctx context.Context, fingerprint string) (*models.EscrowRecord, error)
}
