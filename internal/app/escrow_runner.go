package app

import (
	"context"
	"time"

	"github.com/example/todochain/internal/core/escrow"
	"github.com/example/todochain/internal/core/money"
	"github.com/example/todochain/internal/models"
	"github.com/example/todochain/internal/ports/secondary"
)

// SleepFunc waits for d or until the context is done. Injectable so tests
// run without real delays.
type SleepFunc func(ctx context.Context, d time.Duration) error

func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// EscrowRunner drives the escrow state machine against the ledger and
// persists every observed transition, so a retried operation resumes from
// where the lifecycle actually is instead of restarting it.
type EscrowRunner struct {
	escrows      secondary.EscrowStateRepository
	ledger       secondary.Ledger
	pollAttempts int
	pollDelay    time.Duration
	sleep        SleepFunc
}

// NewEscrowRunner creates a runner. pollAttempts and pollDelay bound the
// allowance observation loop after a grant.
func NewEscrowRunner(escrows secondary.EscrowStateRepository, ledger secondary.Ledger, pollAttempts int, pollDelay time.Duration) *EscrowRunner {
	if pollAttempts <= 0 {
		pollAttempts = 3
	}
	if pollDelay <= 0 {
		pollDelay = 2 * time.Second
	}
	return &EscrowRunner{
		escrows:      escrows,
		ledger:       ledger,
		pollAttempts: pollAttempts,
		pollDelay:    pollDelay,
		sleep:        defaultSleep,
	}
}

// Begin registers a fresh lifecycle for a fingerprint. Zero bounties never
// enter the machine.
func (r *EscrowRunner) Begin(ctx context.Context, taskID string, version int, fp string, bounty money.Amount) (escrow.State, error) {
	state := escrow.Initial(bounty)
	if state == escrow.StateNone {
		return state, nil
	}

	err := r.escrows.Upsert(ctx, &secondary.EscrowStateRecord{
		Fingerprint: fp,
		TaskID:      taskID,
		Version:     version,
		AmountBase:  bounty.Base(),
		State:       string(state),
	})
	if err != nil {
		return state, models.WrapFault(models.FaultLocalStorage, "escrow begin", err, "failed to track escrow state")
	}
	return state, nil
}

// Advance pushes a lifecycle as far toward escrowed as the ledger allows
// in one pass: authorization_required → authorized (granting and polling
// allowance when needed), then authorized → escrowed. It returns the state
// actually reached plus the fault that stopped progress, if any. The
// persisted state always reflects what the ledger confirmed; transient
// faults leave it unchanged so a retry resumes here.
func (r *EscrowRunner) Advance(ctx context.Context, fp string) (escrow.State, *models.Fault) {
	rec, err := r.escrows.GetByFingerprint(ctx, fp)
	if err != nil {
		return escrow.StateNone, models.WrapFault(models.FaultValidation, "escrow advance", err, "unknown escrow lifecycle")
	}
	state := escrow.State(rec.State)
	bounty := money.FromBase(rec.AmountBase)

	if state == escrow.StateAuthorizationRequired {
		next, fault := r.authorize(ctx, bounty)
		if fault != nil {
			return state, fault
		}
		state = next
		if err := r.escrows.SetState(ctx, fp, string(state), ""); err != nil {
			return state, models.WrapFault(models.FaultLocalStorage, "escrow advance", err, "failed to persist state")
		}
	}

	if state == escrow.StateAuthorized {
		if guard := escrow.CanOpen(escrow.OpenContext{State: state, Bounty: bounty}); !guard.Allowed {
			return state, models.NewFault(models.FaultLedgerRejected, "openEscrow", "%s", guard.Reason)
		}
		ref, err := r.ledger.OpenEscrow(ctx, fp, bounty)
		if err != nil {
			return state, asFault(err, "openEscrow")
		}
		state = escrow.StateEscrowed
		if err := r.escrows.SetState(ctx, fp, string(state), string(ref)); err != nil {
			return state, models.WrapFault(models.FaultLocalStorage, "escrow advance", err, "failed to persist state")
		}
	}

	return state, nil
}

// authorize confirms the registry's allowance covers the bounty, granting
// and polling when it does not yet.
func (r *EscrowRunner) authorize(ctx context.Context, bounty money.Amount) (escrow.State, *models.Fault) {
	allowance, err := r.ledger.CheckAuthorization(ctx)
	if err != nil {
		return escrow.StateAuthorizationRequired, asFault(err, "allowance")
	}
	if escrow.Covered(allowance, bounty) {
		return escrow.StateAuthorized, nil
	}

	if _, err := r.ledger.GrantAuthorization(ctx, bounty); err != nil {
		return escrow.StateAuthorizationRequired, asFault(err, "approve")
	}

	// The grant is submitted; the allowance becomes observable only once
	// the transaction lands. Poll a bounded number of times.
	for attempt := 1; attempt <= r.pollAttempts; attempt++ {
		if err := r.sleep(ctx, r.pollDelay); err != nil {
			return escrow.StateAuthorizationRequired,
				models.WrapFault(models.FaultLedgerTimeout, "approve", err, "allowance wait interrupted")
		}
		allowance, err := r.ledger.CheckAuthorization(ctx)
		if err != nil {
			return escrow.StateAuthorizationRequired, asFault(err, "allowance")
		}
		if escrow.Covered(allowance, bounty) {
			return escrow.StateAuthorized, nil
		}
	}
	return escrow.StateAuthorizationRequired,
		models.NewFault(models.FaultLedgerTimeout, "approve",
			"allowance not observed after %d polls, the grant may still confirm", r.pollAttempts)
}

// Claim closes an escrowed record for a completed task. Before submitting
// it re-queries the ledger: a record that already reports completed is
// reconciled to claimed locally without a second submission.
func (r *EscrowRunner) Claim(ctx context.Context, fp string, taskCompleted bool) (escrow.State, *models.Fault) {
	rec, err := r.escrows.GetByFingerprint(ctx, fp)
	if err != nil {
		return escrow.StateNone, models.WrapFault(models.FaultValidation, "claim", err, "unknown escrow lifecycle")
	}
	state := escrow.State(rec.State)

	if guard := escrow.CanClaim(escrow.ClaimContext{State: state, TaskCompleted: taskCompleted}); !guard.Allowed {
		return state, models.NewFault(models.FaultLedgerRejected, "claim", "%s", guard.Reason)
	}

	onLedger, err := r.ledger.QueryEscrow(ctx, fp)
	if err != nil {
		return state, asFault(err, "claim")
	}
	if !onLedger.Exists {
		return state, models.NewFault(models.FaultLedgerRejected, "claim", "no escrow record on ledger for this task")
	}
	if onLedger.Completed {
		// An earlier claim landed after its confirmation timed out.
		if err := r.escrows.SetState(ctx, fp, string(escrow.StateClaimed), ""); err != nil {
			return state, models.WrapFault(models.FaultLocalStorage, "claim", err, "failed to persist state")
		}
		return escrow.StateClaimed, nil
	}

	ref, err := r.ledger.CloseEscrow(ctx, fp)
	if err != nil {
		return state, asFault(err, "claim")
	}
	if err := r.escrows.SetState(ctx, fp, string(escrow.StateClaimed), string(ref)); err != nil {
		return escrow.StateClaimed, models.WrapFault(models.FaultLocalStorage, "claim", err, "failed to persist state")
	}
	return escrow.StateClaimed, nil
}

// State reads the persisted lifecycle state for a fingerprint.
func (r *EscrowRunner) State(ctx context.Context, fp string) escrow.State {
	rec, err := r.escrows.GetByFingerprint(ctx, fp)
	if err != nil {
		return escrow.StateNone
	}
	return escrow.State(rec.State)
}

// asFault keeps ledger adapter faults as they are and wraps anything else
// as ledger_unavailable.
func asFault(err error, op string) *models.Fault {
	if f, ok := err.(*models.Fault); ok {
		return f
	}
	return models.WrapFault(models.FaultLedgerUnavailable, op, err, "ledger call failed")
}
