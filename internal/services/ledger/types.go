package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"vendra/internal/models"
)

// Config holds the ledger service tunables. It is passed in explicitly so
// nothing in the core reads ambient settings.
type Config struct {
	// MaxRetries bounds how many times a version conflict is retried
	// before ErrConcurrentModification surfaces to the caller.
	MaxRetries int
	// RetryBackoff is the base for the jittered exponential backoff
	// between attempts.
	RetryBackoff time.Duration
}

const (
	DefaultMaxRetries   = 3
	DefaultRetryBackoff = 5 * time.Millisecond
)

// Operation describes one balance mutation to apply atomically with its
// log append. Amount is signed: positive credits, negative debits.
type Operation struct {
	VendorID        uint
	Type            string
	Status          string
	Amount          decimal.Decimal
	OrderID         *uint
	ReferenceNumber string
	Description     string
}

// Cache is the read-cache hook the service invalidates after mutations.
type Cache interface {
	GetWallet(ctx context.Context, vendorID uint) (*models.Wallet, error)
	SetWallet(ctx context.Context, wallet *models.Wallet) error
	InvalidateWallet(ctx context.Context, vendorID uint) error
}
