package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/VyacheslavShrot/interview-task/internal/models"
)

type CreateOrderInput struct {
	OrderNumber    int
	Amount         int
	ProductID      uint
	ProductionDate time.Time
}

// OrderService owns the order lifecycle. Orders and their invoices live and
// die together: created in one transaction, deleted in one transaction.
type OrderService struct{ DB *gorm.DB }

func NewOrderService(db *gorm.DB) *OrderService { return &OrderService{DB: db} }

func (s *OrderService) Create(in CreateOrderInput) (*models.Order, error) {
	var product models.Product
	if err := s.DB.First(&product, in.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	order := models.Order{
		OrderNumber:    in.OrderNumber,
		Amount:         in.Amount,
		ProductionDate: in.ProductionDate,
		ProductID:      product.ID,
		Invoice:        models.Invoice{Amount: in.Amount},
	}
	// Create persists the order and its nested invoice in one transaction;
	// a duplicate order_number rolls both back.
	if err := s.DB.Create(&order).Error; err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrDuplicateOrderNumber
		}
		return nil, err
	}
	return &order, nil
}

// Update changes the order number and amount, mirroring the amount onto the
// order's invoice the way creation does.
func (s *OrderService) Update(id uint, orderNumber, amount int) (*models.Order, error) {
	var order models.Order
	if err := s.DB.Preload("Invoice").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).
			Updates(map[string]any{"order_number": orderNumber, "amount": amount}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Invoice{}).Where("order_id = ?", order.ID).
			Update("amount", amount).Error
	})
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrDuplicateOrderNumber
		}
		return nil, err
	}
	order.OrderNumber = orderNumber
	order.Amount = amount
	order.Invoice.Amount = amount
	return &order, nil
}

// Delete removes the order together with everything it owns.
func (s *OrderService) Delete(id uint) error {
	var order models.Order
	if err := s.DB.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		for _, owned := range []any{&models.Invoice{}, &models.ExpenseInvoice{}, &models.TaxInvoice{}} {
			if err := tx.Where("order_id = ?", order.ID).Delete(owned).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&order).Error
	})
}

// List returns all orders, or only those matching the given order number.
func (s *OrderService) List(orderNumber *int) ([]models.Order, error) {
	q := s.DB.Preload("Invoice").Preload("Product").Order("id asc")
	if orderNumber != nil {
		q = q.Where("order_number = ?", *orderNumber)
	}
	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
