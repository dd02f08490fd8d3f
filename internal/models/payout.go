package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payout statuses. Pending and processing are live; completed and rejected
// are terminal.
const (
	PayoutStatusPending    = "pending"
	PayoutStatusProcessing = "processing"
	PayoutStatusCompleted  = "completed"
	PayoutStatusRejected   = "rejected"
)

// PayoutRequest is a vendor's withdrawal request. It references the wallet by
// VendorID but holds no balance itself; the ledger re-reads the wallet at
// completion time. BankDetails is stored opaquely and never validated here.
type PayoutRequest struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	VendorID    uint            `gorm:"index;not null" json:"vendor_id"`
	Amount      decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	Status      string          `gorm:"not null;default:'pending'" json:"status"`
	BankDetails JSON            `gorm:"type:jsonb" json:"bank_details,omitempty"`
	AdminNotes  string          `json:"admin_notes,omitempty"`
	RequestedAt time.Time       `gorm:"not null" json:"requested_at"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
	CreatedAt   time.Time       `json:"-"`
	UpdatedAt   time.Time       `json:"-"`
}

func IsValidPayoutStatus(status string) bool {
	switch status {
	case PayoutStatusPending, PayoutStatusProcessing, PayoutStatusCompleted, PayoutStatusRejected:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition may leave this status.
func (p *PayoutRequest) Terminal() bool {
	return p.Status == PayoutStatusCompleted || p.Status == PayoutStatusRejected
}
