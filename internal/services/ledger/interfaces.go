package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"vendra/internal/models"
	"vendra/internal/repositories"
)

// Service defines the ledger operations. All mutations are atomic with
// their log append and retried internally on version conflicts.
type Service interface {
	// Credit records an order earning as immediately spendable. The
	// wallet is created lazily on first use.
	Credit(ctx context.Context, vendorID uint, amount decimal.Decimal, orderID *uint, description string) (*models.Transaction, error)

	// CreditPending records an earning held during a return window; it
	// raises the pending balance, not the spendable one.
	CreditPending(ctx context.Context, vendorID uint, amount decimal.Decimal, orderID *uint, description string) (*models.Transaction, error)

	// ReleasePending moves held funds into the spendable balance. Appends
	// a pending-bucket reversal and a completed earning as one unit.
	ReleasePending(ctx context.Context, vendorID uint, amount decimal.Decimal, orderID *uint, description string) (*models.Transaction, error)

	// Debit withdraws amount (> 0) from the spendable balance.
	Debit(ctx context.Context, vendorID uint, amount decimal.Decimal, description, referenceNumber string) (*models.Transaction, error)

	// Adjust applies a signed administrative correction.
	Adjust(ctx context.Context, vendorID uint, amount decimal.Decimal, description, referenceNumber string) (*models.Transaction, error)

	// Reverse appends a compensating transaction for a prior row.
	Reverse(ctx context.Context, vendorID, transactionID uint, description string) (*models.Transaction, error)

	// Reconcile refolds the transaction log and reports whether it
	// reproduces the cached wallet balances.
	Reconcile(ctx context.Context, vendorID uint) (bool, error)

	GetWallet(ctx context.Context, vendorID uint) (*models.Wallet, error)
	ListWallets(ctx context.Context, filter repositories.WalletFilter) ([]models.Wallet, int64, error)
	ListTransactions(ctx context.Context, filter repositories.TransactionFilter) ([]models.Transaction, string, error)
	SetWalletHidden(ctx context.Context, vendorID uint, hidden bool) error
}
