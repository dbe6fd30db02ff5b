package services

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/VyacheslavShrot/interview-task/internal/models"
)

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", model, err)
	}
	return n
}

func TestIssueCreatesPairAndDecrementsStock(t *testing.T) {
	db := setupTestDB(t)
	product := createProduct(t, db, "Flour", 10, 200)
	order := createBatch(t, db, product.ID, 1001, 100, "2023-01-01")
	issuer := NewIssuer(db)

	expense, tax, err := issuer.Issue(order.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if expense.Amount != 100 {
		t.Fatalf("expected expense amount 100 got %d", expense.Amount)
	}
	if !tax.Amount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected commission 10 got %s", tax.Amount)
	}
	var got models.Product
	if err := db.First(&got, product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if got.Amount != 100 {
		t.Fatalf("expected stock 100 after issuance got %d", got.Amount)
	}
}

func TestIssueCommissionIsExactTenPercent(t *testing.T) {
	db := setupTestDB(t)
	product := createProduct(t, db, "Sugar", 7, 100)
	order := createBatch(t, db, product.ID, 2001, 33, "2023-01-01")
	issuer := NewIssuer(db)

	_, tax, err := issuer.Issue(order.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if want := decimal.RequireFromString("3.3"); !tax.Amount.Equal(want) {
		t.Fatalf("expected commission 3.3 got %s", tax.Amount)
	}
}

func TestIssueTwiceRejected(t *testing.T) {
	db := setupTestDB(t)
	product := createProduct(t, db, "Salt", 5, 300)
	order := createBatch(t, db, product.ID, 3001, 100, "2023-01-01")
	issuer := NewIssuer(db)

	if _, _, err := issuer.Issue(order.ID); err != nil {
		t.Fatalf("first issue: %v", err)
	}
	if _, _, err := issuer.Issue(order.ID); !errors.Is(err, ErrAlreadyIssued) {
		t.Fatalf("expected ErrAlreadyIssued got %v", err)
	}
	if n := countRows(t, db, &models.ExpenseInvoice{}); n != 1 {
		t.Fatalf("expected exactly one expense invoice, got %d", n)
	}
	if n := countRows(t, db, &models.TaxInvoice{}); n != 1 {
		t.Fatalf("expected exactly one tax invoice, got %d", n)
	}
	var got models.Product
	if err := db.First(&got, product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	// decremented exactly once
	if got.Amount != 200 {
		t.Fatalf("expected stock 200 got %d", got.Amount)
	}
}

func TestIssueOrderNotFound(t *testing.T) {
	db := setupTestDB(t)
	issuer := NewIssuer(db)
	if _, _, err := issuer.Issue(404); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound got %v", err)
	}
}
