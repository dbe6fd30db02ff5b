package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/VyacheslavShrot/interview-task/internal/models"
)

// commissionRate is the fixed tax commission applied to the invoice amount.
var commissionRate = decimal.NewFromFloat(0.10)

// Issuer creates the expense/tax invoice pair for an order exactly once and
// removes the invoiced amount from product stock. All three writes commit
// together or not at all.
type Issuer struct{ DB *gorm.DB }

func NewIssuer(db *gorm.DB) *Issuer { return &Issuer{DB: db} }

func (s *Issuer) Issue(orderID uint) (*models.ExpenseInvoice, *models.TaxInvoice, error) {
	var order models.Order
	if err := s.DB.Preload("Invoice").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrOrderNotFound
		}
		return nil, nil, err
	}

	var issued int64
	if err := s.DB.Model(&models.ExpenseInvoice{}).Where("order_id = ?", order.ID).Count(&issued).Error; err != nil {
		return nil, nil, err
	}
	if issued == 0 {
		if err := s.DB.Model(&models.TaxInvoice{}).Where("order_id = ?", order.ID).Count(&issued).Error; err != nil {
			return nil, nil, err
		}
	}
	if issued > 0 {
		return nil, nil, ErrAlreadyIssued
	}

	var product models.Product
	if err := s.DB.First(&product, order.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrProductNotFound
		}
		return nil, nil, err
	}

	now := time.Now().UTC()
	expense := models.ExpenseInvoice{ExpenseDate: now, Amount: order.Invoice.Amount, OrderID: order.ID}
	tax := models.TaxInvoice{
		TaxDate: now,
		Amount:  decimal.NewFromInt(int64(order.Invoice.Amount)).Mul(commissionRate),
		OrderID: order.ID,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&expense).Error; err != nil {
			return err
		}
		if err := tx.Create(&tax).Error; err != nil {
			return err
		}
		return tx.Model(&models.Product{}).Where("id = ?", product.ID).
			Update("amount", gorm.Expr("amount - ?", order.Invoice.Amount)).Error
	})
	if err != nil {
		if IsUniqueViolation(err) {
			// lost a race with another issuance attempt
			return nil, nil, ErrAlreadyIssued
		}
		return nil, nil, err
	}
	return &expense, &tax, nil
}
