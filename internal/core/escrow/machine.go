// Package escrow contains the pure state machine for a task's bounty
// lifecycle. Guards evaluate preconditions without side effects; the
// driver that actually talks to the ledger lives in internal/app.
package escrow

import (
	"fmt"

	"github.com/example/todochain/internal/core/money"
)

// State is the escrow lifecycle state for one fingerprint.
type State string

const (
	// StateNone means no escrow lifecycle exists. Terminal for
	// zero-bounty tasks: the machine is never entered.
	StateNone State = "no_escrow"

	// StateAuthorizationRequired means a bounty exists but the registry
	// is not yet permitted to move that amount of the owner's funds.
	StateAuthorizationRequired State = "authorization_required"

	// StateAuthorized means the observed allowance covers the bounty.
	StateAuthorized State = "authorized"

	// StateEscrowed means the bounty is locked on the ledger under this
	// fingerprint.
	StateEscrowed State = "escrowed"

	// StateClaimed means the escrow was closed and funds released.
	// Terminal: no transition leaves it. A later edit mints a new
	// fingerprint that starts over at StateNone.
	StateClaimed State = "claimed"
)

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	switch s {
	case StateNone, StateAuthorizationRequired, StateAuthorized, StateEscrowed, StateClaimed:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateClaimed
}

// transitions is the legal transition table.
var transitions = map[State][]State{
	StateNone:                  {StateAuthorizationRequired},
	StateAuthorizationRequired: {StateAuthorized},
	StateAuthorized:            {StateEscrowed},
	StateEscrowed:              {StateClaimed},
	StateClaimed:               {},
}

// CanTransition reports whether from → to is a legal transition.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// Initial returns the entry state for a bounty amount. Zero-bounty tasks
// never enter the machine.
func Initial(bounty money.Amount) State {
	if bounty.IsPositive() {
		return StateAuthorizationRequired
	}
	return StateNone
}

// Covered reports whether an observed allowance covers the bounty. This
// check is advisory: the ledger re-checks atomically at submission time
// and is the only gate that can be trusted.
func Covered(allowance, bounty money.Amount) bool {
	return allowance.Cmp(bounty) >= 0
}

// OpenContext provides context for the open-escrow guard.
type OpenContext struct {
	State  State
	Bounty money.Amount
}

// CanOpen evaluates whether an escrow may be submitted for opening.
// Rules:
// - Lifecycle must be at authorized
// - Bounty must be positive
func CanOpen(ctx OpenContext) GuardResult {
	if !ctx.Bounty.IsPositive() {
		return GuardResult{
			Allowed: false,
			Reason:  "no bounty attached, nothing to escrow",
		}
	}
	if ctx.State != StateAuthorized {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot open escrow from state %s (allowance not confirmed)", ctx.State),
		}
	}
	return GuardResult{Allowed: true}
}

// ClaimContext provides context for the close-escrow guard.
type ClaimContext struct {
	State         State
	TaskCompleted bool
}

// CanClaim evaluates whether a claim may be submitted.
// Rules:
// - Task must be marked completed
// - Escrow must currently be escrowed (claimed is terminal)
func CanClaim(ctx ClaimContext) GuardResult {
	if ctx.State == StateClaimed {
		return GuardResult{
			Allowed: false,
			Reason:  "escrow already claimed, claiming is a one-way action",
		}
	}
	if !ctx.TaskCompleted {
		return GuardResult{
			Allowed: false,
			Reason:  "task is not completed, bounty cannot be claimed yet",
		}
	}
	if ctx.State != StateEscrowed {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot claim from state %s", ctx.State),
		}
	}
	return GuardResult{Allowed: true}
}
