package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/VyacheslavShrot/interview-task/internal/models"
)

type ProfitReport struct {
	TotalProfit decimal.Decimal         `json:"total_profit"`
	Invoices    []models.ExpenseInvoice `json:"invoices"`
}

// Reports aggregates over issued expense invoices.
type Reports struct{ DB *gorm.DB }

func NewReports(db *gorm.DB) *Reports { return &Reports{DB: db} }

// Profit sums product price times expended amount over expense invoices,
// optionally restricted to an expense-date range (inclusive).
func (s *Reports) Profit(start, end *time.Time) (*ProfitReport, error) {
	q := s.DB.Preload("Order").Preload("Order.Product").Order("expense_date asc")
	if start != nil && end != nil {
		q = q.Where("expense_date BETWEEN ? AND ?", *start, *end)
	}
	var invoices []models.ExpenseInvoice
	if err := q.Find(&invoices).Error; err != nil {
		return nil, err
	}
	report := &ProfitReport{TotalProfit: decimal.Zero, Invoices: invoices}
	for _, inv := range invoices {
		line := inv.Order.Product.Price.Mul(decimal.NewFromInt(int64(inv.Amount)))
		report.TotalProfit = report.TotalProfit.Add(line)
	}
	return report, nil
}
