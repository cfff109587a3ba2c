// Package ledger keeps the energy-token balance stored on each profile record.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"CareerPortal_ResultsProject/internal/metrics"
	"CareerPortal_ResultsProject/internal/storage"

	"go.uber.org/zap"
)

var (
	ErrInsufficientBalance = errors.New("insufficient token balance")
	ErrInvalidAmount       = errors.New("amount must be a positive number of tokens")
)

// Settings is the part of the runtime settings the ledger reads.
type Settings interface {
	TestMode() bool
}

// Receipt describes the outcome of a deduction.
type Receipt struct {
	Balance int  `json:"balance"`
	Charged int  `json:"charged"`
	Skipped bool `json:"skipped,omitempty"`
}

type Ledger struct {
	store    storage.ProfileStore
	locker   Locker
	settings Settings
	log      *zap.Logger
}

func New(store storage.ProfileStore, locker Locker, settings Settings, log *zap.Logger) *Ledger {
	if locker == nil {
		locker = NewKeyedMutex()
	}
	return &Ledger{store: store, locker: locker, settings: settings, log: log}
}

func (l *Ledger) Balance(ctx context.Context, recordID string) (int, error) {
	p, err := l.store.Get(ctx, recordID)
	if err != nil {
		return 0, err
	}
	return p.TokenBalance, nil
}

// Deduct removes amount tokens. The balance is left untouched when it is lower than
// amount. In test mode nothing is deducted and Receipt.Skipped is set.
func (l *Ledger) Deduct(ctx context.Context, recordID string, amount int) (Receipt, error) {
	if amount <= 0 {
		return Receipt{}, ErrInvalidAmount
	}

	unlock, err := l.locker.Lock(ctx, recordID)
	if err != nil {
		return Receipt{}, fmt.Errorf("deduct: %w", err)
	}
	defer unlock()

	p, err := l.store.Get(ctx, recordID)
	if err != nil {
		return Receipt{}, err
	}

	if l.settings != nil && l.settings.TestMode() {
		l.log.Info("Ledger.Deduct(): test mode, deduction skipped",
			zap.String("record_id", recordID), zap.Int("amount", amount), zap.Int("balance", p.TokenBalance))
		metrics.LedgerOps.WithLabelValues("deduct", "skipped").Inc()
		return Receipt{Balance: p.TokenBalance, Skipped: true}, nil
	}

	if p.TokenBalance < amount {
		metrics.LedgerOps.WithLabelValues("deduct", "insufficient").Inc()
		return Receipt{Balance: p.TokenBalance}, ErrInsufficientBalance
	}

	balance := p.TokenBalance - amount
	if _, err := l.store.Update(ctx, recordID, storage.ProfilePatch{TokenBalance: &balance}); err != nil {
		metrics.LedgerOps.WithLabelValues("deduct", "error").Inc()
		return Receipt{}, fmt.Errorf("deduct: %w", err)
	}
	metrics.LedgerOps.WithLabelValues("deduct", "ok").Inc()
	l.log.Debug("Ledger.Deduct(): balance updated",
		zap.String("record_id", recordID), zap.Int("amount", amount), zap.Int("balance", balance))
	return Receipt{Balance: balance, Charged: amount}, nil
}

// Add credits amount tokens and returns the new balance.
func (l *Ledger) Add(ctx context.Context, recordID string, amount int) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	unlock, err := l.locker.Lock(ctx, recordID)
	if err != nil {
		return 0, fmt.Errorf("add: %w", err)
	}
	defer unlock()

	p, err := l.store.Get(ctx, recordID)
	if err != nil {
		return 0, err
	}
	balance := p.TokenBalance + amount
	if _, err := l.store.Update(ctx, recordID, storage.ProfilePatch{TokenBalance: &balance}); err != nil {
		metrics.LedgerOps.WithLabelValues("add", "error").Inc()
		return 0, fmt.Errorf("add: %w", err)
	}
	metrics.LedgerOps.WithLabelValues("add", "ok").Inc()
	l.log.Debug("Ledger.Add(): balance updated",
		zap.String("record_id", recordID), zap.Int("amount", amount), zap.Int("balance", balance))
	return balance, nil
}

// Refund returns tokens taken by a deduction whose action failed.
func (l *Ledger) Refund(ctx context.Context, recordID string, r Receipt) (int, error) {
	if r.Skipped || r.Charged == 0 {
		return r.Balance, nil
	}
	balance, err := l.Add(ctx, recordID, r.Charged)
	if err != nil {
		l.log.Error("Ledger.Refund(): refund failed",
			zap.String("record_id", recordID), zap.Int("amount", r.Charged), zap.Error(err))
		return r.Balance, err
	}
	metrics.LedgerOps.WithLabelValues("refund", "ok").Inc()
	return balance, nil
}
