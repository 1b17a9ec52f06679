package reconcile

import (
	"testing"

	"github.com/example/todochain/internal/core/escrow"
	"github.com/example/todochain/internal/models"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name string
		op   Op
		legs Legs
		want Decision
	}{
		{
			name: "clean create",
			op:   OpCreate,
			legs: Legs{AppliedLocally: true, CommittedRemote: true, LedgerState: escrow.StateEscrowed},
			want: Decision{SyncState: models.SyncStateSynced},
		},
		{
			name: "create with remote failure keeps local and escrow progress",
			op:   OpCreate,
			legs: Legs{AppliedLocally: true, CommittedRemote: false, LedgerState: escrow.StateEscrowed},
			want: Decision{SyncState: models.SyncStatePending},
		},
		{
			name: "create with ledger rejection before escrow resets bounty",
			op:   OpCreate,
			legs: Legs{AppliedLocally: true, CommittedRemote: true, LedgerState: escrow.StateAuthorized, LedgerFault: models.FaultLedgerRejected},
			want: Decision{ResetBounty: true, SyncState: models.SyncStateSynced},
		},
		{
			name: "create with ledger timeout keeps bounty for retry",
			op:   OpCreate,
			legs: Legs{AppliedLocally: true, CommittedRemote: true, LedgerState: escrow.StateAuthorizationRequired, LedgerFault: models.FaultLedgerTimeout},
			want: Decision{SyncState: models.SyncStateSynced},
		},
		{
			name: "update remote failure keeps the edit",
			op:   OpUpdate,
			legs: Legs{AppliedLocally: true, CommittedRemote: false},
			want: Decision{SyncState: models.SyncStatePending},
		},
		{
			name: "delete remote failure restores the task",
			op:   OpDelete,
			legs: Legs{AppliedLocally: true, CommittedRemote: false},
			want: Decision{RevertLocal: true, SyncState: models.SyncStateSynced},
		},
		{
			name: "clean delete",
			op:   OpDelete,
			legs: Legs{AppliedLocally: true, CommittedRemote: true},
			want: Decision{SyncState: models.SyncStateSynced},
		},
		{
			name: "complete with remote failure goes pending, never reverted",
			op:   OpComplete,
			legs: Legs{AppliedLocally: true, CommittedRemote: false, LedgerState: escrow.StateEscrowed, LedgerFault: models.FaultLedgerUnavailable},
			want: Decision{SyncState: models.SyncStatePending},
		},
		{
			name: "complete with claim rejection never resets bounty",
			op:   OpComplete,
			legs: Legs{AppliedLocally: true, CommittedRemote: true, LedgerState: escrow.StateEscrowed, LedgerFault: models.FaultLedgerRejected},
			want: Decision{SyncState: models.SyncStateSynced},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.op, tt.legs)
			if got != tt.want {
				t.Errorf("Decide(%s, %+v) = %+v, want %+v", tt.op, tt.legs, got, tt.want)
			}
		})
	}
}
