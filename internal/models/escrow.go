package models

import "github.com/example/todochain/internal/core/money"

// EscrowRecord is the ledger-resident record for a fingerprint, as returned
// by the registry's detail query. At most one live record exists per
// fingerprint; Completed=true is terminal.
type EscrowRecord struct {
	Owner     string
	Amount    money.Amount
	Completed bool
	Exists    bool
}
