// Package payout drives the withdrawal request state machine:
// pending -> processing -> completed, or pending -> rejected.
//
// Creation never checks the balance and the admin decision never touches
// the wallet; only completion debits, inside one storage transaction with
// the status flip, so a crash cannot leave a debited wallet with a
// non-completed request. Completed and rejected are terminal.
package payout

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	errs "vendra/internal/errors"
	"vendra/internal/models"
	"vendra/internal/repositories"
	"vendra/internal/services/ledger"
)

// Config holds payout tunables, passed in explicitly.
type Config struct {
	// MinAmount is the creation-time floor for requested withdrawals.
	// Zero disables the check.
	MinAmount decimal.Decimal
	// MaxRetries bounds completion retries on version conflicts.
	MaxRetries int
}

type Service interface {
	// Create records a withdrawal request in pending. The balance is not
	// checked here; it may fluctuate before the admin acts.
	Create(ctx context.Context, vendorID uint, amount decimal.Decimal, bankDetails models.JSON) (*models.PayoutRequest, error)

	// Approve flips pending to processing. No debit happens yet; this
	// models the gap between "approved" and "money actually sent".
	Approve(ctx context.Context, id uint, adminNotes string) (*models.PayoutRequest, error)

	// Reject flips pending to rejected.
	Reject(ctx context.Context, id uint, adminNotes string) (*models.PayoutRequest, error)

	// Complete debits the wallet and flips processing to completed as one
	// atomic unit. On insufficient funds the request stays processing for
	// an operator to retry or reject.
	Complete(ctx context.Context, id uint, referenceNumber string) (*models.PayoutRequest, error)

	Get(ctx context.Context, id uint) (*models.PayoutRequest, error)
	List(ctx context.Context, filter repositories.PayoutFilter) ([]models.PayoutRequest, int64, error)
}

type service struct {
	store  repositories.LedgerStore
	cache  ledger.Cache
	config Config
}

// NewService creates the payout service. cache may be nil.
func NewService(store repositories.LedgerStore, cache ledger.Cache, config Config) Service {
	if store == nil {
		panic("store is required")
	}
	if cache == nil {
		cache = ledger.NoopCache{}
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = ledger.DefaultMaxRetries
	}
	return &service{
		store:  store,
		cache:  cache,
		config: config,
	}
}

func (s *service) Create(ctx context.Context, vendorID uint, amount decimal.Decimal, bankDetails models.JSON) (*models.PayoutRequest, error) {
	if !amount.IsPositive() {
		return nil, errs.ErrInvalidAmount
	}
	if !s.config.MinAmount.IsZero() && amount.LessThan(s.config.MinAmount) {
		return nil, errs.ErrPayoutBelowMinimum
	}

	payout := &models.PayoutRequest{
		VendorID:    vendorID,
		Amount:      amount,
		Status:      models.PayoutStatusPending,
		BankDetails: bankDetails,
		RequestedAt: time.Now(),
	}
	if err := s.store.CreatePayout(ctx, payout); err != nil {
		return nil, err
	}
	return payout, nil
}

func (s *service) Approve(ctx context.Context, id uint, adminNotes string) (*models.PayoutRequest, error) {
	return s.decide(ctx, id, models.PayoutStatusProcessing, adminNotes)
}

func (s *service) Reject(ctx context.Context, id uint, adminNotes string) (*models.PayoutRequest, error) {
	return s.decide(ctx, id, models.PayoutStatusRejected, adminNotes)
}

// decide handles the two admin transitions out of pending. Neither touches
// the wallet, so only the payout row is locked and the lock is never held
// across the human approval step.
func (s *service) decide(ctx context.Context, id uint, target, adminNotes string) (*models.PayoutRequest, error) {
	var payout *models.PayoutRequest
	err := s.store.InTransaction(ctx, func(tx repositories.LedgerStore) error {
		var err error
		payout, err = tx.GetPayoutForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if payout.Status != models.PayoutStatusPending {
			return errs.ErrInvalidStateTransition
		}

		payout.Status = target
		if adminNotes != "" {
			payout.AdminNotes = adminNotes
		}
		if target == models.PayoutStatusRejected {
			now := time.Now()
			payout.ProcessedAt = &now
		}
		return tx.SavePayout(ctx, payout)
	})
	if err != nil {
		return nil, err
	}
	return payout, nil
}

func (s *service) Complete(ctx context.Context, id uint, referenceNumber string) (*models.PayoutRequest, error) {
	if referenceNumber == "" {
		referenceNumber = uuid.NewString()
	}

	var payout *models.PayoutRequest
	var lastErr error
	for attempt := 0; attempt < s.config.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepJittered(ctx, attempt); err != nil {
				return nil, err
			}
		}

		err := s.store.InTransaction(ctx, func(tx repositories.LedgerStore) error {
			var err error
			payout, err = tx.GetPayoutForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if payout.Status != models.PayoutStatusProcessing {
				// Completing an already-completed request must fail
				// loudly, never re-debit.
				return errs.ErrInvalidStateTransition
			}

			// Debit and status flip share this transaction.
			_, err = ledger.Apply(ctx, tx, ledger.Operation{
				VendorID:        payout.VendorID,
				Type:            models.TransactionTypeWithdrawal,
				Status:          models.TransactionStatusCompleted,
				Amount:          payout.Amount.Neg(),
				ReferenceNumber: referenceNumber,
				Description:     "payout completed",
			})
			if err != nil {
				return err
			}

			now := time.Now()
			payout.Status = models.PayoutStatusCompleted
			payout.ProcessedAt = &now
			return tx.SavePayout(ctx, payout)
		})
		if err == nil {
			if err := s.cache.InvalidateWallet(ctx, payout.VendorID); err != nil {
				log.Printf("wallet cache invalidation failed for vendor %d: %v", payout.VendorID, err)
			}
			return payout, nil
		}
		if !errors.Is(err, errs.ErrConcurrentModification) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (s *service) Get(ctx context.Context, id uint) (*models.PayoutRequest, error) {
	return s.store.GetPayout(ctx, id)
}

func (s *service) List(ctx context.Context, filter repositories.PayoutFilter) ([]models.PayoutRequest, int64, error) {
	return s.store.ListPayouts(ctx, filter)
}

func sleepJittered(ctx context.Context, attempt int) error {
	d := ledger.DefaultRetryBackoff << (attempt - 1)
	d += time.Duration(rand.Int63n(int64(d) + 1))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
