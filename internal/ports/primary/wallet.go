package primary

import "context"

// WalletService exposes the ledger-side operations that are not tied to a
// single task: balance and allowance inspection, authorization grants, and
// bulk escrow verification.
type WalletService interface {
	// Balance returns the owner's token balance as a decimal string.
	Balance(ctx context.Context) (string, error)

	// Allowance returns the amount the escrow registry may currently
	// move on the owner's behalf.
	Allowance(ctx context.Context) (string, error)

	// Approve grants the registry an allowance and polls until the new
	// allowance is observed or the bounded attempts run out. A timeout
	// is reported in the result, not as an error: the grant may still
	// confirm later.
	Approve(ctx context.Context, amount string) (*ApproveResult, error)

	// VerifyAll probes the ledger for every locally tracked escrow.
	VerifyAll(ctx context.Context) ([]*EscrowStatus, error)
}

// ApproveResult reports the outcome of an authorization grant.
type ApproveResult struct {
	TxRef     string
	Observed  string // allowance seen on the last poll
	Confirmed bool   // observed allowance covered the requested amount
}
