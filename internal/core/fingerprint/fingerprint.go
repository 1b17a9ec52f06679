// Package fingerprint derives the content identifier that keys a task's
// escrow record on the ledger. The fingerprint is deliberately NOT stable
// across edits: the derivation timestamp is part of the input, so each
// substantive edit mints a fresh identifier and the prior escrow record is
// left behind under its old key.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Zero is the null fingerprint used by the remote API for tasks that never
// touched the ledger.
const Zero = "0x0000000000000000000000000000000000000000000000000000000000000000"

// Input is the semantic content that a fingerprint is derived from.
// Timestamp is supplied by the caller (unix nanoseconds) rather than read
// from a clock here, so derivation stays a pure function.
type Input struct {
	TaskID    string `json:"id"`
	Version   int    `json:"version"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	Priority  string `json:"priority"`
	Due       string `json:"due"`
	Timestamp int64  `json:"timestamp"`
}

// Derive returns a 0x-prefixed 64-hex-char digest of the input.
func Derive(in Input) string {
	payload, err := json.Marshal(in)
	if err != nil {
		// Input contains only scalars; Marshal cannot fail on it.
		panic(err)
	}
	sum := sha256.Sum256(payload)
	return "0x" + hex.EncodeToString(sum[:])
}

// IsZero reports whether fp is empty or the null fingerprint.
func IsZero(fp string) bool {
	return fp == "" || fp == Zero
}

// Valid reports whether fp looks like a derived fingerprint.
func Valid(fp string) bool {
	if len(fp) != 66 || fp[:2] != "0x" {
		return false
	}
	if fp == Zero {
		return false
	}
	_, err := hex.DecodeString(fp[2:])
	return err == nil
}
