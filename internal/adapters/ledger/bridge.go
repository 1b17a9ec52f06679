// Package ledger contains the wallet-bridge adapter for the distributed
// ledger. The bridge is a local signing service: reads go through a call
// endpoint, writes are submitted as transactions and confirmed by polling
// the bridge's transaction status endpoint. The engine never holds keys.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/todochain/internal/core/money"
	"github.com/example/todochain/internal/models"
	"github.com/example/todochain/internal/ports/secondary"
)

// Registry contract method names.
const (
	methodCreateTask     = "createTask"
	methodCompleteTask   = "completeTask"
	methodGetTaskDetails = "getTaskDetails"
)

// Token contract method names.
const (
	methodApprove   = "approve"
	methodAllowance = "allowance"
	methodBalanceOf = "balanceOf"
)

const zeroAddress = "0x0000000000000000000000000000000000000000"

// Sleeper abstracts delay between confirmation polls so tests run fast.
type Sleeper func(ctx context.Context, d time.Duration) error

// DefaultSleeper waits for d or until the context is done.
func DefaultSleeper(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Options configure the bridge client.
type Options struct {
	BridgeURL       string
	RegistryAddress string
	TokenAddress    string
	ConfirmAttempts int
	ConfirmDelay    time.Duration
	Sleep           Sleeper
}

// Bridge implements secondary.Ledger against a wallet-bridge HTTP service.
type Bridge struct {
	baseURL         string
	registryAddress string
	tokenAddress    string
	confirmAttempts int
	confirmDelay    time.Duration
	sleep           Sleeper
	httpClient      *http.Client
}

// NewBridge creates a ledger client. An empty bridge URL is legal and
// yields a client whose every call reports ledger_unavailable; the rest of
// the engine keeps working without the ledger leg.
func NewBridge(opts Options) *Bridge {
	if opts.ConfirmAttempts <= 0 {
		opts.ConfirmAttempts = 3
	}
	if opts.ConfirmDelay <= 0 {
		opts.ConfirmDelay = 2 * time.Second
	}
	if opts.Sleep == nil {
		opts.Sleep = DefaultSleeper
	}
	return &Bridge{
		baseURL:         strings.TrimRight(opts.BridgeURL, "/"),
		registryAddress: opts.RegistryAddress,
		tokenAddress:    opts.TokenAddress,
		confirmAttempts: opts.ConfirmAttempts,
		confirmDelay:    opts.ConfirmDelay,
		sleep:           opts.Sleep,
		httpClient:      &http.Client{Timeout: 20 * time.Second},
	}
}

type callRequest struct {
	To     string   `json:"to"`
	Method string   `json:"method"`
	Args   []string `json:"args"`
}

type submitResponse struct {
	TxRef string `json:"tx_ref"`
}

type txStatusResponse struct {
	Status string `json:"status"` // pending, confirmed, failed
	Reason string `json:"reason,omitempty"`
}

type accountResponse struct {
	Address string `json:"address"`
}

type bridgeError struct {
	Message string `json:"message"`
}

func (b *Bridge) post(ctx context.Context, op, path string, body, out any) error {
	if b.baseURL == "" {
		return models.NewFault(models.FaultLedgerUnavailable, op, "no wallet bridge configured")
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return models.WrapFault(models.FaultLedgerRejected, op, err, "failed to encode request")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return models.WrapFault(models.FaultLedgerRejected, op, err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	return b.roundTrip(op, req, out)
}

func (b *Bridge) get(ctx context.Context, op, path string, out any) error {
	if b.baseURL == "" {
		return models.NewFault(models.FaultLedgerUnavailable, op, "no wallet bridge configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+path, nil)
	if err != nil {
		return models.WrapFault(models.FaultLedgerRejected, op, err, "failed to build request")
	}
	return b.roundTrip(op, req, out)
}

func (b *Bridge) roundTrip(op string, req *http.Request, out any) error {
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return models.WrapFault(models.FaultLedgerUnavailable, op, err, "wallet bridge unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return models.NewFault(models.FaultLedgerUnavailable, op, "wallet bridge returned %s", resp.Status)
	}
	if resp.StatusCode >= 400 {
		var bridgeErr bridgeError
		msg := resp.Status
		if err := json.NewDecoder(resp.Body).Decode(&bridgeErr); err == nil && bridgeErr.Message != "" {
			msg = bridgeErr.Message
		}
		return models.NewFault(models.FaultLedgerRejected, op, "%s", msg)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return models.WrapFault(models.FaultLedgerUnavailable, op, err, "invalid bridge response")
		}
	}
	return nil
}

// call runs a read-only contract call and returns the raw result values.
func (b *Bridge) call(ctx context.Context, op, to, method string, args ...string) ([]string, error) {
	var out struct {
		Result []string `json:"result"`
	}
	err := b.post(ctx, op, "/v1/call", callRequest{To: to, Method: method, Args: args}, &out)
	if err != nil {
		return nil, err
	}
	return out.Result, nil
}

// submit sends a state-changing transaction and returns its reference
// without waiting for confirmation.
func (b *Bridge) submit(ctx context.Context, op, to, method string, args ...string) (secondary.TxRef, error) {
	var out submitResponse
	err := b.post(ctx, op, "/v1/transactions", callRequest{To: to, Method: method, Args: args}, &out)
	if err != nil {
		return "", err
	}
	if out.TxRef == "" {
		return "", models.NewFault(models.FaultLedgerUnavailable, op, "bridge accepted transaction without a reference")
	}
	return secondary.TxRef(out.TxRef), nil
}

// awaitConfirmation polls the transaction status a bounded number of times.
// A transaction still pending after the last poll reports ledger_timeout;
// it may yet land, so the caller must not treat this as a rollback signal.
func (b *Bridge) awaitConfirmation(ctx context.Context, op string, ref secondary.TxRef) error {
	for attempt := 1; attempt <= b.confirmAttempts; attempt++ {
		if err := b.sleep(ctx, b.confirmDelay); err != nil {
			return models.WrapFault(models.FaultLedgerTimeout, op, err, "confirmation wait interrupted")
		}

		var status txStatusResponse
		if err := b.get(ctx, op, "/v1/transactions/"+string(ref), &status); err != nil {
			return err
		}
		switch status.Status {
		case "confirmed":
			return nil
		case "failed":
			reason := status.Reason
			if reason == "" {
				reason = "transaction reverted"
			}
			return models.NewFault(models.FaultLedgerRejected, op, "%s", reason)
		}
	}
	return models.NewFault(models.FaultLedgerTimeout, op,
		"transaction %s not confirmed after %d polls", ref, b.confirmAttempts)
}

func parseAmount(op, raw string) (money.Amount, error) {
	base, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, models.WrapFault(models.FaultLedgerUnavailable, op, err, "bridge returned malformed amount %q", raw)
	}
	return money.FromBase(base), nil
}

// Owner returns the bridge account's address.
func (b *Bridge) Owner(ctx context.Context) (string, error) {
	var out accountResponse
	if err := b.get(ctx, "owner", "/v1/account", &out); err != nil {
		return "", err
	}
	if out.Address == "" {
		return "", models.NewFault(models.FaultLedgerUnavailable, "owner", "bridge has no account")
	}
	return out.Address, nil
}

// Balance returns the owner's token balance.
func (b *Bridge) Balance(ctx context.Context) (money.Amount, error) {
	const op = "balanceOf"
	owner, err := b.Owner(ctx)
	if err != nil {
		return 0, err
	}
	result, err := b.call(ctx, op, b.tokenAddress, methodBalanceOf, owner)
	if err != nil {
		return 0, err
	}
	if len(result) < 1 {
		return 0, models.NewFault(models.FaultLedgerUnavailable, op, "empty balance result")
	}
	return parseAmount(op, result[0])
}

// CheckAuthorization returns the allowance granted to the escrow registry.
func (b *Bridge) CheckAuthorization(ctx context.Context) (money.Amount, error) {
	const op = "allowance"
	owner, err := b.Owner(ctx)
	if err != nil {
		return 0, err
	}
	result, err := b.call(ctx, op, b.tokenAddress, methodAllowance, owner, b.registryAddress)
	if err != nil {
		return 0, err
	}
	if len(result) < 1 {
		return 0, models.NewFault(models.FaultLedgerUnavailable, op, "empty allowance result")
	}
	return parseAmount(op, result[0])
}

// GrantAuthorization submits an approve for the registry. Submission only:
// the caller polls CheckAuthorization to observe the new allowance.
func (b *Bridge) GrantAuthorization(ctx context.Context, amount money.Amount) (secondary.TxRef, error) {
	return b.submit(ctx, "approve", b.tokenAddress, methodApprove,
		b.registryAddress, strconv.FormatInt(amount.Base(), 10))
}

// OpenEscrow locks the bounty under the fingerprint and waits for the
// transaction to confirm. Allowance is re-read first so an obviously
// doomed submission fails fast as ledger_rejected.
func (b *Bridge) OpenEscrow(ctx context.Context, fingerprint string, amount money.Amount) (secondary.TxRef, error) {
	const op = "openEscrow"

	allowance, err := b.CheckAuthorization(ctx)
	if err != nil {
		return "", err
	}
	if allowance.Cmp(amount) < 0 {
		return "", models.NewFault(models.FaultLedgerRejected, op,
			"allowance %s below bounty %s", allowance, amount)
	}

	ref, err := b.submit(ctx, op, b.registryAddress, methodCreateTask,
		fingerprint, strconv.FormatInt(amount.Base(), 10))
	if err != nil {
		return "", err
	}
	if err := b.awaitConfirmation(ctx, op, ref); err != nil {
		return ref, err
	}
	return ref, nil
}

// CloseEscrow claims an escrow record and waits for confirmation.
func (b *Bridge) CloseEscrow(ctx context.Context, fingerprint string) (secondary.TxRef, error) {
	const op = "closeEscrow"

	ref, err := b.submit(ctx, op, b.registryAddress, methodCompleteTask, fingerprint)
	if err != nil {
		return "", err
	}
	if err := b.awaitConfirmation(ctx, op, ref); err != nil {
		return ref, err
	}
	return ref, nil
}

// QueryEscrow probes the registry for a fingerprint. A zero owner address
// means no record exists; that is a normal answer, not an error.
func (b *Bridge) QueryEscrow(ctx context.Context, fingerprint string) (*models.EscrowRecord, error) {
	const op = "queryEscrow"

	result, err := b.call(ctx, op, b.registryAddress, methodGetTaskDetails, fingerprint)
	if err != nil {
		return nil, err
	}
	if len(result) < 3 {
		return nil, models.NewFault(models.FaultLedgerUnavailable, op,
			"short escrow record, got %d values", len(result))
	}

	owner := result[0]
	if owner == "" || owner == zeroAddress {
		return &models.EscrowRecord{}, nil
	}

	amount, err := parseAmount(op, result[1])
	if err != nil {
		return nil, err
	}
	completed, err := strconv.ParseBool(result[2])
	if err != nil {
		return nil, models.WrapFault(models.FaultLedgerUnavailable, op, err,
			"bridge returned malformed completed flag %q", result[2])
	}

	return &models.EscrowRecord{
		Owner:     owner,
		Amount:    amount,
		Completed: completed,
		Exists:    true,
	}, nil
}

var _ secondary.Ledger = (*Bridge)(nil)
