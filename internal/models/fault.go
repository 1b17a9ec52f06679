package models

import (
	"errors"
	"fmt"
)

// FaultKind classifies a leg-local failure. Every failure crossing a leg
// boundary is one of these kinds; the coordinator converts them into view
// data so nothing escapes the facade as an untyped error.
type FaultKind string

const (
	// FaultValidation means caller-supplied data was malformed. Rejected
	// before any leg is attempted.
	FaultValidation FaultKind = "validation"

	// FaultLocalStorage means the local store failed an I/O operation.
	// Not a caller error; the same operation may succeed on retry.
	FaultLocalStorage FaultKind = "local_storage"

	// FaultRemoteUnavailable means the task API could not be reached or
	// answered with a server error. Non-fatal: local state is retained and
	// the task is parked in pending sync.
	FaultRemoteUnavailable FaultKind = "remote_unavailable"

	// FaultRemoteRejected means the task API refused the request
	// (bad credential, unknown id). Non-fatal, not retried blindly.
	FaultRemoteRejected FaultKind = "remote_rejected"

	// FaultLedgerUnavailable means no wallet/signing capability was
	// reachable. Retryable; escrow state is unchanged.
	FaultLedgerUnavailable FaultKind = "ledger_unavailable"

	// FaultLedgerTimeout means a submission went out but confirmation was
	// not observed within the bounded wait. Retryable; the transaction may
	// still land.
	FaultLedgerTimeout FaultKind = "ledger_timeout"

	// FaultLedgerRejected means the ledger itself refused (insufficient
	// funds or allowance, unknown or completed escrow record). Never
	// auto-retried with identical parameters.
	FaultLedgerRejected FaultKind = "ledger_rejected"
)

// Fault is a classified failure from one leg of an operation.
type Fault struct {
	Kind    FaultKind
	Op      string // the leg operation, e.g. "openEscrow", "remote create"
	Message string
	Err     error
}

// Error implements the error interface.
func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Op, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Op, f.Message)
}

// Unwrap exposes the underlying cause.
func (f *Fault) Unwrap() error {
	return f.Err
}

// NewFault builds a fault with a formatted message.
func NewFault(kind FaultKind, op string, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// WrapFault builds a fault around an underlying error.
func WrapFault(kind FaultKind, op string, err error, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the fault kind of err, or "" when err is not a Fault.
func KindOf(err error) FaultKind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

// Retryable reports whether err represents a transient condition that is
// safe to retry without changing parameters.
func Retryable(err error) bool {
	switch KindOf(err) {
	case FaultLocalStorage, FaultRemoteUnavailable, FaultLedgerUnavailable, FaultLedgerTimeout:
		return true
	default:
		return false
	}
}
