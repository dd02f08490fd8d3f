package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	errs "vendra/internal/errors"
	"vendra/internal/models"
	"vendra/internal/repositories"
)

type service struct {
	store   repositories.LedgerStore
	cache   Cache
	config  Config
	metrics MetricsCollector
}

// NewService creates the ledger service. cache and metrics may be nil.
func NewService(store repositories.LedgerStore, cache Cache, config Config, metrics MetricsCollector) Service {
	if store == nil {
		panic("store is required")
	}
	if cache == nil {
		cache = NoopCache{}
	}
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = DefaultRetryBackoff
	}
	return &service{
		store:   store,
		cache:   cache,
		config:  config,
		metrics: metrics,
	}
}

func (s *service) Credit(ctx context.Context, vendorID uint, amount decimal.Decimal, orderID *uint, description string) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, errs.ErrInvalidAmount
	}
	return s.run(ctx, "credit", vendorID, func(tx repositories.LedgerStore) (*models.Transaction, error) {
		return Apply(ctx, tx, Operation{
			VendorID:    vendorID,
			Type:        models.TransactionTypeEarning,
			Status:      models.TransactionStatusCompleted,
			Amount:      amount,
			OrderID:     orderID,
			Description: description,
		})
	})
}

func (s *service) CreditPending(ctx context.Context, vendorID uint, amount decimal.Decimal, orderID *uint, description string) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, errs.ErrInvalidAmount
	}
	return s.run(ctx, "credit_pending", vendorID, func(tx repositories.LedgerStore) (*models.Transaction, error) {
		return Apply(ctx, tx, Operation{
			VendorID:    vendorID,
			Type:        models.TransactionTypeEarning,
			Status:      models.TransactionStatusPending,
			Amount:      amount,
			OrderID:     orderID,
			Description: description,
		})
	})
}

func (s *service) ReleasePending(ctx context.Context, vendorID uint, amount decimal.Decimal, orderID *uint, description string) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, errs.ErrInvalidAmount
	}
	return s.run(ctx, "release_pending", vendorID, func(tx repositories.LedgerStore) (*models.Transaction, error) {
		// Both rows commit together: drain the hold, then make the
		// earning spendable.
		_, err := Apply(ctx, tx, Operation{
			VendorID:    vendorID,
			Type:        models.TransactionTypeReversal,
			Status:      models.TransactionStatusPending,
			Amount:      amount.Neg(),
			OrderID:     orderID,
			Description: "release hold",
		})
		if err != nil {
			return nil, err
		}
		return Apply(ctx, tx, Operation{
			VendorID:    vendorID,
			Type:        models.TransactionTypeEarning,
			Status:      models.TransactionStatusCompleted,
			Amount:      amount,
			OrderID:     orderID,
			Description: description,
		})
	})
}

func (s *service) Debit(ctx context.Context, vendorID uint, amount decimal.Decimal, description, referenceNumber string) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, errs.ErrInvalidAmount
	}
	return s.run(ctx, "debit", vendorID, func(tx repositories.LedgerStore) (*models.Transaction, error) {
		return Apply(ctx, tx, Operation{
			VendorID:        vendorID,
			Type:            models.TransactionTypeWithdrawal,
			Status:          models.TransactionStatusCompleted,
			Amount:          amount.Neg(),
			ReferenceNumber: referenceNumber,
			Description:     description,
		})
	})
}

func (s *service) Adjust(ctx context.Context, vendorID uint, amount decimal.Decimal, description, referenceNumber string) (*models.Transaction, error) {
	if amount.IsZero() {
		return nil, errs.ErrInvalidAmount
	}
	return s.run(ctx, "adjust", vendorID, func(tx repositories.LedgerStore) (*models.Transaction, error) {
		return Apply(ctx, tx, Operation{
			VendorID:        vendorID,
			Type:            models.TransactionTypeAdjustment,
			Status:          models.TransactionStatusCompleted,
			Amount:          amount,
			ReferenceNumber: referenceNumber,
			Description:     description,
		})
	})
}

func (s *service) Reverse(ctx context.Context, vendorID, transactionID uint, description string) (*models.Transaction, error) {
	return s.run(ctx, "reverse", vendorID, func(tx repositories.LedgerStore) (*models.Transaction, error) {
		original, err := tx.GetTransaction(ctx, transactionID)
		if err != nil {
			return nil, err
		}
		wallet, err := tx.GetWalletByVendor(ctx, vendorID)
		if err != nil {
			return nil, err
		}
		if original.WalletID != wallet.ID {
			return nil, errs.ErrTransactionNotFound
		}
		return Apply(ctx, tx, Operation{
			VendorID:        vendorID,
			Type:            models.TransactionTypeReversal,
			Status:          original.Status,
			Amount:          original.Amount.Neg(),
			OrderID:         original.OrderID,
			ReferenceNumber: fmt.Sprintf("reverses:%d", original.ID),
			Description:     description,
		})
	})
}

// Reconcile refolds the full log under the wallet lock so nothing moves
// while comparing. Diagnostic only, never on the hot path.
func (s *service) Reconcile(ctx context.Context, vendorID uint) (bool, error) {
	ok := false
	err := s.store.InTransaction(ctx, func(tx repositories.LedgerStore) error {
		wallet, err := tx.GetWalletByVendorForUpdate(ctx, vendorID)
		if err != nil {
			return err
		}
		completedSum, err := tx.SumTransactions(ctx, wallet.ID, models.TransactionStatusCompleted)
		if err != nil {
			return err
		}
		pendingSum, err := tx.SumTransactions(ctx, wallet.ID, models.TransactionStatusPending)
		if err != nil {
			return err
		}
		last, err := tx.LastTransaction(ctx, wallet.ID, models.TransactionStatusCompleted)
		if err != nil {
			return err
		}

		ok = completedSum.Equal(wallet.Balance) && pendingSum.Equal(wallet.PendingBalance)
		if ok && last != nil {
			ok = last.BalanceAfter.Equal(wallet.Balance)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	s.metrics.RecordOperationResult("reconcile", fmt.Sprintf("%t", ok))
	return ok, nil
}

func (s *service) GetWallet(ctx context.Context, vendorID uint) (*models.Wallet, error) {
	if wallet, err := s.cache.GetWallet(ctx, vendorID); err == nil {
		return wallet, nil
	}
	wallet, err := s.store.GetWalletByVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	s.cache.SetWallet(ctx, wallet)
	return wallet, nil
}

func (s *service) ListWallets(ctx context.Context, filter repositories.WalletFilter) ([]models.Wallet, int64, error) {
	return s.store.ListWallets(ctx, filter)
}

func (s *service) ListTransactions(ctx context.Context, filter repositories.TransactionFilter) ([]models.Transaction, string, error) {
	return s.store.ListTransactions(ctx, filter)
}

func (s *service) SetWalletHidden(ctx context.Context, vendorID uint, hidden bool) error {
	if err := s.store.SetWalletHidden(ctx, vendorID, hidden); err != nil {
		return err
	}
	if err := s.cache.InvalidateWallet(ctx, vendorID); err != nil {
		log.Printf("wallet cache invalidation failed for vendor %d: %v", vendorID, err)
	}
	return nil
}

// run executes one mutation with the bounded retry policy: version
// conflicts retry with jittered backoff, everything else surfaces
// unchanged on the first attempt.
func (s *service) run(ctx context.Context, operation string, vendorID uint, fn func(tx repositories.LedgerStore) (*models.Transaction, error)) (*models.Transaction, error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(operation, time.Since(start))
	}()

	var lastErr error
	for attempt := 0; attempt < s.config.MaxRetries; attempt++ {
		if attempt > 0 {
			s.metrics.RecordRetry(operation, attempt)
			if err := s.backoff(ctx, attempt); err != nil {
				return nil, err
			}
		}

		var txn *models.Transaction
		err := s.store.InTransaction(ctx, func(tx repositories.LedgerStore) error {
			var err error
			txn, err = fn(tx)
			return err
		})
		if err == nil {
			// A failed delete only means stale reads until the TTL
			// expires; the ledger itself never reads the cache.
			if err := s.cache.InvalidateWallet(ctx, vendorID); err != nil {
				log.Printf("wallet cache invalidation failed for vendor %d: %v", vendorID, err)
			}
			s.metrics.RecordOperationResult(operation, "ok")
			s.metrics.RecordBalanceChange(vendorID, txn.BalanceAfter.Sub(txn.Amount), txn.BalanceAfter)
			return txn, nil
		}
		if !errors.Is(err, errs.ErrConcurrentModification) {
			s.recordError(operation, err)
			return nil, err
		}
		lastErr = err
	}

	s.recordError(operation, lastErr)
	return nil, lastErr
}

func (s *service) backoff(ctx context.Context, attempt int) error {
	d := s.config.RetryBackoff << (attempt - 1)
	d += time.Duration(rand.Int63n(int64(d) + 1))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func (s *service) recordError(operation string, err error) {
	var domainErr *errs.DomainError
	if errors.As(err, &domainErr) {
		s.metrics.RecordError(operation, domainErr.Code)
		return
	}
	s.metrics.RecordError(operation, "unknown")
}
