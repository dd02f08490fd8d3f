package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types
const (
	TransactionTypeEarning    = "earning"
	TransactionTypeWithdrawal = "withdrawal"
	TransactionTypeAdjustment = "adjustment"
	TransactionTypeReversal   = "reversal"
)

// Transaction buckets. Completed rows fold into Wallet.Balance, pending rows
// into Wallet.PendingBalance (earnings held during a return window).
const (
	TransactionStatusCompleted = "completed"
	TransactionStatusPending   = "pending"
)

// Transaction is one immutable row of the append-only ledger. Rows are never
// updated or deleted; corrections append a compensating reversal.
// BalanceAfter snapshots the affected bucket immediately after the row was
// applied, so the balance can be audited independently of the wallet row.
type Transaction struct {
	ID              uint            `gorm:"primarykey" json:"id"`
	WalletID        uint            `gorm:"index;not null" json:"wallet_id"`
	Type            string          `gorm:"not null" json:"type"`
	Status          string          `gorm:"not null;default:'completed'" json:"status"`
	Amount          decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	BalanceAfter    decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"balance_after"`
	OrderID         *uint           `gorm:"index" json:"order_id,omitempty"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	Description     string          `json:"description"`
	CreatedAt       time.Time       `json:"created_at"`
}

func IsValidTransactionType(t string) bool {
	switch t {
	case TransactionTypeEarning, TransactionTypeWithdrawal, TransactionTypeAdjustment, TransactionTypeReversal:
		return true
	default:
		return false
	}
}
