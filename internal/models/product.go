package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a purchasable good. Amount is the quantity currently on hand;
// it only decreases when expense/tax invoices are issued for an order.
type Product struct {
	ID             uint            `gorm:"primaryKey"`
	Title          string          `gorm:"size:255;not null;unique"`
	Price          decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Amount         int             `gorm:"not null;default:0"`
	ProductionDate *time.Time
	EndDate        time.Time `gorm:"index"`
	Orders         []Order   `gorm:"foreignKey:ProductID"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
