package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseInvoice records that an order's goods were removed from stock at a
// given amount. At most one per order (unique order_id); created atomically
// with the matching TaxInvoice.
type ExpenseInvoice struct {
	ID          uint      `gorm:"primaryKey"`
	ExpenseDate time.Time `gorm:"not null"`
	Amount      int       `gorm:"not null"`
	OrderID     uint      `gorm:"not null;uniqueIndex"`
	Order       Order     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaxInvoice records the 10% commission on the order's invoice amount.
type TaxInvoice struct {
	ID        uint            `gorm:"primaryKey"`
	TaxDate   time.Time       `gorm:"not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	OrderID   uint            `gorm:"not null;uniqueIndex"`
	Order     Order           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
