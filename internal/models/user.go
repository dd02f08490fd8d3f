package models

import "time"

// User roles
const (
	RoleVendor = "vendor"
	RoleAdmin  = "admin"
)

// User is a vendor or administrator account. A vendor's User.ID doubles as
// the VendorID the ledger keys wallets by. The ledger core never reads this
// table; authorization happens in middleware before handlers call in.
type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	ShopName  string    `json:"shop_name,omitempty"`
	Role      string    `gorm:"not null;default:'vendor'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
