package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/VyacheslavShrot/interview-task/internal/models"
	"github.com/VyacheslavShrot/interview-task/internal/services"
)

func newOrderHandler(db *gorm.DB) *OrderHandler {
	return NewOrderHandler(services.NewOrderService(db), services.NewAllocator(db))
}

func seedOrder(t *testing.T, db *gorm.DB, productID uint, orderNumber, amount int, productionDate string) models.Order {
	t.Helper()
	d, err := time.Parse("2006-01-02", productionDate)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	o := models.Order{OrderNumber: orderNumber, Amount: amount, ProductionDate: d, ProductID: productID}
	if err := db.Create(&o).Error; err != nil {
		t.Fatalf("order: %v", err)
	}
	if err := db.Create(&models.Invoice{Amount: amount, OrderID: o.ID}).Error; err != nil {
		t.Fatalf("invoice: %v", err)
	}
	return o
}

func TestOrderCreateAndListJSON(t *testing.T) {
	db := setupTestDB(t)
	product := seedProduct(t, db, "Flour", 10, 200, "2024-12-31")
	h := newOrderHandler(db)

	body := fmt.Sprintf(`{"order_number":1001,"amount":100,"product_id":%d,"production_date":"2023-01-01"}`, product.ID)
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	listReq := httptest.NewRequest(http.MethodGet, "/orders?order_number=1001", nil)
	listW := httptest.NewRecorder()
	h.List(listW, listReq)
	if listW.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", listW.Code)
	}
	var list struct {
		Items []models.Order `json:"items"`
		Total int            `json:"total"`
	}
	if err := json.Unmarshal(listW.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Total != 1 || list.Items[0].OrderNumber != 1001 {
		t.Fatalf("unexpected list: %+v", list)
	}
	if list.Items[0].Invoice.Amount != 100 {
		t.Fatalf("expected mirrored invoice amount 100, got %d", list.Items[0].Invoice.Amount)
	}
}

func TestOrderCreateDuplicateNumber(t *testing.T) {
	db := setupTestDB(t)
	product := seedProduct(t, db, "Sugar", 7, 100, "2024-12-31")
	seedOrder(t, db, product.ID, 2001, 50, "2023-01-01")
	h := newOrderHandler(db)

	body := fmt.Sprintf(`{"order_number":2001,"amount":20,"product_id":%d,"production_date":"2023-02-01"}`, product.ID)
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestOrderSellReturnsAllocation(t *testing.T) {
	db := setupTestDB(t)
	product := seedProduct(t, db, "Flour", 10, 200, "2024-12-31")
	a := seedOrder(t, db, product.ID, 3001, 100, "2023-01-01")
	seedOrder(t, db, product.ID, 3002, 100, "2023-02-01")
	h := newOrderHandler(db)

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/orders/sell?id=%d", a.ID), strings.NewReader(`{"quantity":150}`))
	w := httptest.NewRecorder()
	h.Sell(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var res struct {
		TotalCost string `json:"total_cost"`
		Requested int    `json:"requested"`
		Allocated int    `json:"allocated"`
		Shortfall int    `json:"shortfall"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.TotalCost != "1500" || res.Allocated != 150 || res.Shortfall != 0 {
		t.Fatalf("unexpected allocation: %+v", res)
	}
}

func TestOrderSellValidation(t *testing.T) {
	db := setupTestDB(t)
	product := seedProduct(t, db, "Sugar", 7, 100, "2024-12-31")
	order := seedOrder(t, db, product.ID, 4001, 50, "2023-01-01")
	h := newOrderHandler(db)

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/orders/sell?id=%d", order.ID), strings.NewReader(`{"quantity":0}`))
	w := httptest.NewRecorder()
	h.Sell(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}

	missing := httptest.NewRequest(http.MethodPost, "/orders/sell?id=999", strings.NewReader(`{"quantity":5}`))
	missingW := httptest.NewRecorder()
	h.Sell(missingW, missing)
	if missingW.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", missingW.Code)
	}
}

func TestOrderUpdateAndDelete(t *testing.T) {
	db := setupTestDB(t)
	product := seedProduct(t, db, "Salt", 5, 100, "2024-12-31")
	order := seedOrder(t, db, product.ID, 5001, 40, "2023-01-01")
	h := newOrderHandler(db)

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/orders/update?id=%d", order.ID), strings.NewReader(`{"order_number":5002,"amount":70}`))
	w := httptest.NewRecorder()
	h.Update(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("update expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var invoice models.Invoice
	if err := db.Where("order_id = ?", order.ID).First(&invoice).Error; err != nil {
		t.Fatalf("invoice: %v", err)
	}
	if invoice.Amount != 70 {
		t.Fatalf("expected invoice amount 70 got %d", invoice.Amount)
	}

	delReq := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/orders/delete?id=%d", order.ID), nil)
	delW := httptest.NewRecorder()
	h.Delete(delW, delReq)
	if delW.Code != http.StatusOK {
		t.Fatalf("delete expected 200 got %d", delW.Code)
	}
	var n int64
	db.Model(&models.Invoice{}).Count(&n)
	if n != 0 {
		t.Fatalf("invoice should be deleted with the order, got %d rows", n)
	}
}

func TestIssueAndDocumentViews(t *testing.T) {
	db := setupTestDB(t)
	product := seedProduct(t, db, "Flour", 10, 200, "2024-12-31")
	order := seedOrder(t, db, product.ID, 6001, 100, "2023-01-01")
	ih := NewInvoiceHandler(db, services.NewIssuer(db))

	issueReq := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/orders/issue?id=%d", order.ID), nil)
	issueW := httptest.NewRecorder()
	ih.Issue(issueW, issueReq)
	if issueW.Code != http.StatusCreated {
		t.Fatalf("issue expected 201 got %d body=%s", issueW.Code, issueW.Body.String())
	}

	// second issuance is rejected
	againW := httptest.NewRecorder()
	ih.Issue(againW, httptest.NewRequest(http.MethodPost, fmt.Sprintf("/orders/issue?id=%d", order.ID), nil))
	if againW.Code != http.StatusConflict {
		t.Fatalf("expected 409 on reissue got %d", againW.Code)
	}

	expW := httptest.NewRecorder()
	ih.ExpenseInvoice(expW, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/orders/expense-invoice?id=%d", order.ID), nil))
	if expW.Code != http.StatusOK {
		t.Fatalf("expense view expected 200 got %d", expW.Code)
	}
	var expPayload struct {
		ExpenseInvoice models.ExpenseInvoice `json:"expense_invoice"`
		TaxInvoice     *models.TaxInvoice    `json:"tax_invoice"`
	}
	if err := json.Unmarshal(expW.Body.Bytes(), &expPayload); err != nil {
		t.Fatalf("decode expense view: %v", err)
	}
	if expPayload.ExpenseInvoice.Amount != 100 || expPayload.TaxInvoice == nil {
		t.Fatalf("unexpected expense view: %+v", expPayload)
	}

	taxW := httptest.NewRecorder()
	ih.TaxInvoice(taxW, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/orders/tax-invoice?id=%d", order.ID), nil))
	if taxW.Code != http.StatusOK {
		t.Fatalf("tax view expected 200 got %d", taxW.Code)
	}
	var tax models.TaxInvoice
	if err := json.Unmarshal(taxW.Body.Bytes(), &tax); err != nil {
		t.Fatalf("decode tax view: %v", err)
	}
	if !tax.Amount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected commission 10 got %s", tax.Amount)
	}
}

func TestDocumentViewsNotFound(t *testing.T) {
	db := setupTestDB(t)
	ih := NewInvoiceHandler(db, services.NewIssuer(db))

	w := httptest.NewRecorder()
	ih.ExpenseInvoice(w, httptest.NewRequest(http.MethodGet, "/orders/expense-invoice?id=1", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}
