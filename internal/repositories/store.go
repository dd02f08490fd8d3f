// Package repositories provides the data access layer. LedgerStore is the
// single storage interface the ledger and payout services run against; the
// Postgres implementation enforces row locks and version checks, the
// in-memory implementation backs unit tests.
package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"vendra/internal/models"
)

// TransactionFilter narrows ListTransactions. Cursor is the opaque keyset
// cursor returned by a previous page; zero-value fields are ignored.
type TransactionFilter struct {
	WalletID uint
	VendorID uint
	Type     string
	Status   string
	From     *time.Time
	To       *time.Time
	Cursor   string
	Limit    int
}

type WalletFilter struct {
	VendorID      uint
	IncludeHidden bool
	Offset        int
	Limit         int
}

type PayoutFilter struct {
	VendorID uint
	Status   string
	Offset   int
	Limit    int
}

// LedgerStore is the storage contract for wallets, the append-only
// transaction log, and payout requests.
//
// InTransaction runs fn against a store view whose mutations commit or roll
// back as one unit. The two atomicity pairs, {balance write, log append}
// and {payout debit, status flip}, must each run inside a single call.
// ForUpdate reads take an exclusive per-row lock held until the enclosing
// transaction ends; callers must only use them inside InTransaction.
type LedgerStore interface {
	InTransaction(ctx context.Context, fn func(tx LedgerStore) error) error

	GetWalletByVendor(ctx context.Context, vendorID uint) (*models.Wallet, error)
	GetWalletByVendorForUpdate(ctx context.Context, vendorID uint) (*models.Wallet, error)
	CreateWallet(ctx context.Context, wallet *models.Wallet) error
	// UpdateWallet persists the wallet's balance fields conditioned on
	// expectedVersion and bumps Version by one. Returns
	// ErrConcurrentModification when the row moved underneath the caller.
	UpdateWallet(ctx context.Context, wallet *models.Wallet, expectedVersion int64) error
	SetWalletHidden(ctx context.Context, vendorID uint, hidden bool) error
	ListWallets(ctx context.Context, filter WalletFilter) ([]models.Wallet, int64, error)

	AppendTransaction(ctx context.Context, txn *models.Transaction) error
	GetTransaction(ctx context.Context, id uint) (*models.Transaction, error)
	// ListTransactions returns rows newest first plus the cursor for the
	// next page ("" when exhausted).
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]models.Transaction, string, error)
	SumTransactions(ctx context.Context, walletID uint, status string) (decimal.Decimal, error)
	LastTransaction(ctx context.Context, walletID uint, status string) (*models.Transaction, error)

	CreatePayout(ctx context.Context, payout *models.PayoutRequest) error
	GetPayout(ctx context.Context, id uint) (*models.PayoutRequest, error)
	GetPayoutForUpdate(ctx context.Context, id uint) (*models.PayoutRequest, error)
	SavePayout(ctx context.Context, payout *models.PayoutRequest) error
	ListPayouts(ctx context.Context, filter PayoutFilter) ([]models.PayoutRequest, int64, error)
}
