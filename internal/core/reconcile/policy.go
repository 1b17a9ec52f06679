// Package reconcile holds the pure rollback policy for multi-leg
// operations. The coordinator feeds in what each leg actually did and the
// policy decides what gets reverted, keeping the decision testable without
// any network mocking.
package reconcile

import (
	"github.com/example/todochain/internal/core/escrow"
	"github.com/example/todochain/internal/models"
)

// Op identifies the logical operation being reconciled.
type Op string

const (
	OpCreate   Op = "create"
	OpUpdate   Op = "update"
	OpDelete   Op = "delete"
	OpComplete Op = "complete"
)

// Legs records what each leg of an operation committed.
type Legs struct {
	AppliedLocally  bool
	CommittedRemote bool
	LedgerState     escrow.State
	LedgerFault     models.FaultKind // "" when the ledger leg succeeded or was skipped
}

// Decision is the reconciliation outcome.
type Decision struct {
	// RevertLocal undoes the optimistic local mutation. Only deletes are
	// ever reverted: un-deleting loses nothing, while reverting a create
	// or update would discard state the user (or the ledger) already owns.
	RevertLocal bool

	// ResetBounty strips the bounty from a created task whose ledger leg
	// was rejected before an escrow was opened. The create still proceeds
	// to the remote leg without escrow involvement.
	ResetBounty bool

	// SyncState is the resulting local sync marker.
	SyncState string
}

// Decide maps leg outcomes to a reconciliation decision.
//
// Policy: local state is the most trusted layer (never silently lost), the
// ledger is the least reversible (never silently retried against a
// rejection), and the remote service degrades to pending sync in between.
func Decide(op Op, legs Legs) Decision {
	d := Decision{SyncState: models.SyncStateSynced}

	if !legs.CommittedRemote {
		if op == OpDelete {
			// The one safe rollback: restoring a local view loses no
			// escrow state.
			d.RevertLocal = legs.AppliedLocally
			d.SyncState = models.SyncStateSynced
			return d
		}
		d.SyncState = models.SyncStatePending
	}

	if op == OpCreate && legs.LedgerFault == models.FaultLedgerRejected && legs.LedgerState != escrow.StateEscrowed {
		d.ResetBounty = true
	}

	return d
}
