package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet caches the current balances for a vendor. It is derived from the
// transaction log and is only ever mutated by the ledger service; Version is
// the optimistic-concurrency token bumped on every mutation.
type Wallet struct {
	ID             uint            `gorm:"primarykey" json:"id"`
	VendorID       uint            `gorm:"uniqueIndex;not null" json:"vendor_id"`
	Balance        decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"balance"`
	PendingBalance decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"pending_balance"`
	TotalEarnings  decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"total_earnings"`
	TotalWithdrawn decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"total_withdrawn"`
	Version        int64           `gorm:"not null;default:0" json:"-"`
	Hidden         bool            `gorm:"not null;default:false" json:"-"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
