// Package payment sells energy-token packages through Stripe and credits them exactly once.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"CareerPortal_ResultsProject/internal/metrics"
	"CareerPortal_ResultsProject/internal/models"
	"CareerPortal_ResultsProject/internal/storage"

	"go.uber.org/zap"
)

var (
	ErrForeignPayment = errors.New("payment belongs to another record")
	ErrUnknownIntent  = errors.New("payment intent is not known")
)

// Store persists payment state transitions.
type Store interface {
	CreatePayment(ctx context.Context, p models.Payment) error
	GetPayment(ctx context.Context, intentID string) (models.Payment, error)
	SettlePayment(ctx context.Context, intentID, status string) (bool, error)
	ReopenPayment(ctx context.Context, intentID string) error
}

// Crediter adds tokens to a record.
type Crediter interface {
	Add(ctx context.Context, recordID string, amount int) (int, error)
}

type CheckoutIntent struct {
	IntentID     string      `json:"intentId"`
	ClientSecret string      `json:"clientSecret"`
	Package      PackageView `json:"package"`
}

// Resolution reports what a confirmation or webhook did.
type Resolution struct {
	IntentID string `json:"intentId"`
	Status   string `json:"status"`
	Credited bool   `json:"credited"`
	Tokens   int    `json:"tokens,omitempty"`
	Balance  *int   `json:"balance,omitempty"`
}

type Service struct {
	provider Provider
	store    Store
	ledger   Crediter
	currency string
	log      *zap.Logger
}

func NewService(provider Provider, store Store, ledger Crediter, currency string, log *zap.Logger) *Service {
	return &Service{provider: provider, store: store, ledger: ledger, currency: currency, log: log}
}

func (s *Service) Packages() []PackageView {
	out := make([]PackageView, 0, len(packages))
	for _, p := range Packages() {
		out = append(out, p.View(s.currency))
	}
	return out
}

// CreateIntent opens a provider intent for a package and records it as pending.
func (s *Service) CreateIntent(ctx context.Context, recordID, packageID string) (CheckoutIntent, error) {
	pkg, err := FindPackage(packageID)
	if err != nil {
		return CheckoutIntent{}, err
	}

	intent, err := s.provider.CreateIntent(ctx, pkg.MinorUnits(), s.currency, map[string]string{
		metaRecordID: recordID,
		metaPackage:  pkg.ID,
		metaTokens:   strconv.Itoa(pkg.Tokens),
	})
	if err != nil {
		return CheckoutIntent{}, err
	}

	err = s.store.CreatePayment(ctx, models.Payment{
		IntentID: intent.ID,
		RecordID: recordID,
		Package:  pkg.ID,
		Tokens:   pkg.Tokens,
		Amount:   pkg.Price.StringFixed(2),
		Currency: s.currency,
		Status:   models.PaymentPending,
	})
	if err != nil {
		return CheckoutIntent{}, fmt.Errorf("record payment %s: %w", intent.ID, err)
	}

	s.log.Info("Service.CreateIntent(): intent created",
		zap.String("record_id", recordID), zap.String("intent_id", intent.ID), zap.String("package", pkg.ID))
	return CheckoutIntent{IntentID: intent.ID, ClientSecret: intent.ClientSecret, Package: pkg.View(s.currency)}, nil
}

// Confirm asks the provider for the intent state and credits the tokens when it succeeded.
func (s *Service) Confirm(ctx context.Context, recordID, intentID string) (Resolution, error) {
	p, err := s.store.GetPayment(ctx, intentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Resolution{}, fmt.Errorf("%w: %s", ErrUnknownIntent, intentID)
		}
		return Resolution{}, err
	}
	if p.RecordID != recordID {
		return Resolution{}, ErrForeignPayment
	}

	intent, err := s.provider.GetIntent(ctx, intentID)
	if err != nil {
		return Resolution{}, err
	}
	switch intent.Status {
	case "succeeded":
		return s.succeed(ctx, p)
	case "canceled":
		return s.fail(ctx, p)
	default:
		return Resolution{IntentID: intentID, Status: p.Status}, nil
	}
}

// HandleWebhook verifies a signed provider event and resolves the intent it names.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) (Resolution, error) {
	event, err := s.provider.ParseWebhook(payload, signature)
	if err != nil {
		return Resolution{}, err
	}
	if event.Type != EventSucceeded && event.Type != EventFailed {
		s.log.Debug("Service.HandleWebhook(): ignoring event", zap.String("type", event.Type))
		return Resolution{}, nil
	}

	p, err := s.paymentFor(ctx, event.Intent)
	if err != nil {
		return Resolution{}, err
	}
	if event.Type == EventSucceeded {
		return s.succeed(ctx, p)
	}
	return s.fail(ctx, p)
}

// paymentFor loads the stored payment, recreating it from intent metadata when the
// intent was created before the row was written.
func (s *Service) paymentFor(ctx context.Context, intent Intent) (models.Payment, error) {
	p, err := s.store.GetPayment(ctx, intent.ID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return p, err
	}

	recordID := intent.Metadata[metaRecordID]
	pkg, pkgErr := FindPackage(intent.Metadata[metaPackage])
	if recordID == "" || pkgErr != nil {
		return p, fmt.Errorf("%w: %s", ErrUnknownIntent, intent.ID)
	}
	p = models.Payment{
		IntentID: intent.ID,
		RecordID: recordID,
		Package:  pkg.ID,
		Tokens:   pkg.Tokens,
		Amount:   pkg.Price.StringFixed(2),
		Currency: intent.Currency,
		Status:   models.PaymentPending,
	}
	if err := s.store.CreatePayment(ctx, p); err != nil && !errors.Is(err, storage.ErrDuplicate) {
		return p, err
	}
	return s.store.GetPayment(ctx, intent.ID)
}

func (s *Service) succeed(ctx context.Context, p models.Payment) (Resolution, error) {
	res := Resolution{IntentID: p.IntentID, Status: models.PaymentSucceeded, Tokens: p.Tokens}

	changed, err := s.store.SettlePayment(ctx, p.IntentID, models.PaymentSucceeded)
	if err != nil {
		return Resolution{}, err
	}
	if !changed {
		current, err := s.store.GetPayment(ctx, p.IntentID)
		if err != nil {
			return Resolution{}, err
		}
		res.Status = current.Status
		s.log.Info("Service.succeed(): payment already settled", zap.String("intent_id", p.IntentID), zap.String("status", current.Status))
		return res, nil
	}

	balance, err := s.ledger.Add(ctx, p.RecordID, p.Tokens)
	if err != nil {
		if reopenErr := s.store.ReopenPayment(ctx, p.IntentID); reopenErr != nil {
			s.log.Error("Service.succeed(): failed to reopen payment", zap.String("intent_id", p.IntentID), zap.Error(reopenErr))
		}
		return Resolution{}, fmt.Errorf("credit %d tokens: %w", p.Tokens, err)
	}

	metrics.Payments.WithLabelValues(p.Package, models.PaymentSucceeded).Inc()
	s.log.Info("Service.succeed(): tokens credited",
		zap.String("record_id", p.RecordID), zap.String("intent_id", p.IntentID),
		zap.Int("tokens", p.Tokens), zap.Int("balance", balance))
	res.Credited = true
	res.Balance = &balance
	return res, nil
}

func (s *Service) fail(ctx context.Context, p models.Payment) (Resolution, error) {
	changed, err := s.store.SettlePayment(ctx, p.IntentID, models.PaymentFailed)
	if err != nil {
		return Resolution{}, err
	}
	status := models.PaymentFailed
	if !changed {
		current, err := s.store.GetPayment(ctx, p.IntentID)
		if err != nil {
			return Resolution{}, err
		}
		status = current.Status
	} else {
		metrics.Payments.WithLabelValues(p.Package, models.PaymentFailed).Inc()
		s.log.Warn("Service.fail(): payment failed", zap.String("record_id", p.RecordID), zap.String("intent_id", p.IntentID))
	}
	return Resolution{IntentID: p.IntentID, Status: status}, nil
}
