package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/VyacheslavShrot/interview-task/internal/httpx"
	"github.com/VyacheslavShrot/interview-task/internal/models"
	"github.com/VyacheslavShrot/interview-task/internal/services"
	"github.com/VyacheslavShrot/interview-task/internal/validation"
)

const dateLayout = "2006-01-02"

type ProductHandler struct {
	DB *gorm.DB
}

func NewProductHandler(db *gorm.DB) *ProductHandler { return &ProductHandler{DB: db} }

type productInput struct {
	Title   string          `json:"title"`
	Price   decimal.Decimal `json:"price"`
	Amount  int             `json:"amount"`
	EndDate string          `json:"end_date"`
}

// List: GET /products – optionally filtered to products still valid at end_date.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	dbq := h.DB.Order("id asc")
	if v := r.URL.Query().Get("end_date"); v != "" {
		endDate, err := time.Parse(dateLayout, v)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_end_date", nil)
			return
		}
		dbq = dbq.Where("end_date >= ?", endDate)
	}
	var products []models.Product
	if err := dbq.Find(&products).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_products", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": products, "total": len(products)})
}

// Create: POST /products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input productInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("title", input.Title, v)
	validation.PositiveDecimal("price", input.Price, v)
	validation.Required("end_date", input.EndDate, v)
	if input.Amount < 0 {
		v["amount"] = "must_not_be_negative"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	endDate, err := time.Parse(dateLayout, input.EndDate)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_end_date", nil)
		return
	}
	product := models.Product{Title: input.Title, Price: input.Price, Amount: input.Amount, EndDate: endDate}
	if err := h.DB.Create(&product).Error; err != nil {
		if services.IsUniqueViolation(err) {
			httpx.JSONError(w, http.StatusConflict, "title_already_exists", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_product", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

// Update: POST /products/update?id=...
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_product", nil)
		return
	}
	var input productInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("title", input.Title, v)
	validation.PositiveDecimal("price", input.Price, v)
	validation.Required("end_date", input.EndDate, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	endDate, err := time.Parse(dateLayout, input.EndDate)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_end_date", nil)
		return
	}
	product.Title = input.Title
	product.Price = input.Price
	product.Amount = input.Amount
	product.EndDate = endDate
	if err := h.DB.Save(&product).Error; err != nil {
		if services.IsUniqueViolation(err) {
			httpx.JSONError(w, http.StatusConflict, "title_already_exists", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_product", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

// Delete: POST /products/delete?id=...
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_product", nil)
		return
	}
	if err := h.DB.Delete(&product).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_product", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// idParam parses the id query parameter shared by the update/delete style
// endpoints; writes the error response itself when invalid.
func idParam(w http.ResponseWriter, r *http.Request) (uint, bool) {
	idStr := r.URL.Query().Get("id")
	if idStr == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return 0, false
	}
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return 0, false
	}
	return uint(id), true
}
