package models

import "time"

// Order doubles as an inventory batch: Amount starts as the ordered quantity
// and is drawn down by the allocator, with ProductionDate as the FIFO key.
// Completed marks a batch whose amount has reached zero.
type Order struct {
	ID             uint      `gorm:"primaryKey"`
	OrderNumber    int       `gorm:"not null;unique"`
	Amount         int       `gorm:"not null"`
	ProductionDate time.Time `gorm:"not null;index"`
	OrderDate      time.Time `gorm:"autoCreateTime"`
	Completed      bool      `gorm:"not null;default:false"`
	ProductID      uint      `gorm:"not null;index"`
	Product        Product   `gorm:"foreignKey:ProductID"`
	Invoice        Invoice   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Invoice is created together with its order and mirrors the order amount.
// One invoice per order, enforced by the unique order_id.
type Invoice struct {
	ID          uint      `gorm:"primaryKey"`
	InvoiceDate time.Time `gorm:"autoCreateTime"`
	Amount      int       `gorm:"not null"`
	OrderID     uint      `gorm:"not null;uniqueIndex"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
