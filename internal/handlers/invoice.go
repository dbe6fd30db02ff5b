package handlers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/VyacheslavShrot/interview-task/internal/httpx"
	"github.com/VyacheslavShrot/interview-task/internal/models"
	"github.com/VyacheslavShrot/interview-task/internal/services"
)

// InvoiceHandler exposes document issuance and the issued-document views.
type InvoiceHandler struct {
	DB     *gorm.DB
	Issuer *services.Issuer
}

func NewInvoiceHandler(db *gorm.DB, issuer *services.Issuer) *InvoiceHandler {
	return &InvoiceHandler{DB: db, Issuer: issuer}
}

// Issue: POST /orders/issue?id=... – create the expense/tax invoice pair once.
func (h *InvoiceHandler) Issue(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	expense, tax, err := h.Issuer.Issue(id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			httpx.JSONError(w, http.StatusNotFound, services.ErrOrderNotFound.Error(), nil)
		case errors.Is(err, services.ErrProductNotFound):
			httpx.JSONError(w, http.StatusNotFound, services.ErrProductNotFound.Error(), nil)
		case errors.Is(err, services.ErrAlreadyIssued):
			httpx.JSONError(w, http.StatusConflict, services.ErrAlreadyIssued.Error(), nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_issue_documents", nil)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"expense_invoice": expense, "tax_invoice": tax})
}

// ExpenseInvoice: GET /orders/expense-invoice?id=<order id>
func (h *InvoiceHandler) ExpenseInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var expense models.ExpenseInvoice
	if err := h.DB.Where("order_id = ?", id).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_expense_invoice", nil)
		return
	}
	// tax invoice is issued together with the expense invoice, so it should
	// exist; tolerate its absence to keep the view read-only
	payload := map[string]any{"expense_invoice": expense}
	var tax models.TaxInvoice
	if err := h.DB.Where("order_id = ?", id).First(&tax).Error; err == nil {
		payload["tax_invoice"] = tax
	}
	httpx.JSON(w, http.StatusOK, payload)
}

// TaxInvoice: GET /orders/tax-invoice?id=<order id>
func (h *InvoiceHandler) TaxInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var tax models.TaxInvoice
	if err := h.DB.Where("order_id = ?", id).First(&tax).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_tax_invoice", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, tax)
}
