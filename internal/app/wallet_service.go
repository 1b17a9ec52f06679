package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/example/todochain/internal/core/escrow"
	"github.com/example/todochain/internal/core/money"
	"github.com/example/todochain/internal/models"
	"github.com/example/todochain/internal/ports/primary"
	"github.com/example/todochain/internal/ports/secondary"
)

// WalletService exposes ledger operations not tied to a single task.
type WalletService struct {
	ledger       secondary.Ledger
	escrows      secondary.EscrowStateRepository
	pollAttempts int
	pollDelay    time.Duration
	sleep        SleepFunc
}

// NewWalletService creates the wallet service.
func NewWalletService(ledger secondary.Ledger, escrows secondary.EscrowStateRepository, pollAttempts int, pollDelay time.Duration) *WalletService {
	if pollAttempts <= 0 {
		pollAttempts = 3
	}
	if pollDelay <= 0 {
		pollDelay = 2 * time.Second
	}
	return &WalletService{
		ledger:       ledger,
		escrows:      escrows,
		pollAttempts: pollAttempts,
		pollDelay:    pollDelay,
		sleep:        defaultSleep,
	}
}

// Balance returns the owner's token balance as a decimal string.
func (s *WalletService) Balance(ctx context.Context) (string, error) {
	balance, err := s.ledger.Balance(ctx)
	if err != nil {
		return "", err
	}
	return balance.String(), nil
}

// Allowance returns the registry's current allowance as a decimal string.
func (s *WalletService) Allowance(ctx context.Context) (string, error) {
	allowance, err := s.ledger.CheckAuthorization(ctx)
	if err != nil {
		return "", err
	}
	return allowance.String(), nil
}

// Approve grants the registry an allowance and polls until the new
// allowance is observed or the bounded attempts run out. An unobserved
// grant is reported in the result, not as an error.
func (s *WalletService) Approve(ctx context.Context, amount string) (*primary.ApproveResult, error) {
	parsed, err := money.Parse(amount)
	if err != nil {
		return nil, models.WrapFault(models.FaultValidation, "approve", err, "invalid amount")
	}
	if !parsed.IsPositive() {
		return nil, models.NewFault(models.FaultValidation, "approve", "amount must be positive")
	}

	ref, err := s.ledger.GrantAuthorization(ctx, parsed)
	if err != nil {
		return nil, err
	}

	result := &primary.ApproveResult{TxRef: string(ref)}
	var observed money.Amount
	for attempt := 1; attempt <= s.pollAttempts; attempt++ {
		if err := s.sleep(ctx, s.pollDelay); err != nil {
			return result, nil
		}
		observed, err = s.ledger.CheckAuthorization(ctx)
		if err != nil {
			continue
		}
		result.Observed = observed.String()
		if escrow.Covered(observed, parsed) {
			result.Confirmed = true
			break
		}
	}
	return result, nil
}

// VerifyAll probes the ledger for every locally tracked escrow that is not
// yet claimed. Probes run concurrently; an unreachable ledger fails the
// whole verification.
func (s *WalletService) VerifyAll(ctx context.Context) ([]*primary.EscrowStatus, error) {
	active, err := s.escrows.ListActive(ctx)
	if err != nil {
		return nil, models.WrapFault(models.FaultLocalStorage, "verify", err, "failed to list escrows")
	}

	var (
		mu       sync.Mutex
		statuses []*primary.EscrowStatus
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, rec := range active {
		rec := rec
		g.Go(func() error {
			onLedger, err := s.ledger.QueryEscrow(gctx, rec.Fingerprint)
			if err != nil {
				return err
			}
			mu.Lock()
			statuses = append(statuses, &primary.EscrowStatus{
				TaskID:      rec.TaskID,
				Fingerprint: rec.Fingerprint,
				LocalState:  rec.State,
				OnLedger:    onLedger,
			})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].TaskID < statuses[j].TaskID
	})
	return statuses, nil
}

var _ primary.WalletService = (*WalletService)(nil)
