package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/VyacheslavShrot/interview-task/internal/httpx"
	"github.com/VyacheslavShrot/interview-task/internal/services"
	"github.com/VyacheslavShrot/interview-task/internal/validation"
)

type OrderHandler struct {
	Svc       *services.OrderService
	Allocator *services.Allocator
}

func NewOrderHandler(svc *services.OrderService, alloc *services.Allocator) *OrderHandler {
	return &OrderHandler{Svc: svc, Allocator: alloc}
}

// List: GET /orders – all orders or filtered by order_number.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	var orderNumber *int
	if v := r.URL.Query().Get("order_number"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_order_number", nil)
			return
		}
		orderNumber = &n
	}
	orders, err := h.Svc.List(orderNumber)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_orders", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": orders, "total": len(orders)})
}

// Create: POST /orders – order and its invoice in one shot.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		OrderNumber    int    `json:"order_number"`
		Amount         int    `json:"amount"`
		ProductID      uint   `json:"product_id"`
		ProductionDate string `json:"production_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.PositiveInt("order_number", input.OrderNumber, v)
	validation.PositiveInt("amount", input.Amount, v)
	validation.RequiredID("product_id", input.ProductID, v)
	validation.Required("production_date", input.ProductionDate, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	productionDate, err := time.Parse(dateLayout, input.ProductionDate)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_production_date", nil)
		return
	}
	order, err := h.Svc.Create(services.CreateOrderInput{
		OrderNumber:    input.OrderNumber,
		Amount:         input.Amount,
		ProductID:      input.ProductID,
		ProductionDate: productionDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateOrderNumber):
			httpx.JSONError(w, http.StatusConflict, services.ErrDuplicateOrderNumber.Error(), nil)
		case errors.Is(err, services.ErrProductNotFound):
			httpx.JSONError(w, http.StatusNotFound, services.ErrProductNotFound.Error(), nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_order", nil)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

// Update: POST /orders/update?id=...
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var input struct {
		OrderNumber int `json:"order_number"`
		Amount      int `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.PositiveInt("order_number", input.OrderNumber, v)
	validation.PositiveInt("amount", input.Amount, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	order, err := h.Svc.Update(id, input.OrderNumber, input.Amount)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			httpx.JSONError(w, http.StatusNotFound, services.ErrOrderNotFound.Error(), nil)
		case errors.Is(err, services.ErrDuplicateOrderNumber):
			httpx.JSONError(w, http.StatusConflict, services.ErrDuplicateOrderNumber.Error(), nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_order", nil)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

// Delete: POST /orders/delete?id=...
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.Svc.Delete(id); err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			httpx.JSONError(w, http.StatusNotFound, services.ErrOrderNotFound.Error(), nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_order", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Sell: POST /orders/sell?id=... – FIFO allocation against the order's product.
func (h *OrderHandler) Sell(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var input struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	result, err := h.Allocator.Sell(id, input.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidQuantity):
			httpx.JSONError(w, http.StatusBadRequest, services.ErrInvalidQuantity.Error(), nil)
		case errors.Is(err, services.ErrOrderNotFound):
			httpx.JSONError(w, http.StatusNotFound, services.ErrOrderNotFound.Error(), nil)
		case errors.Is(err, services.ErrProductNotFound):
			httpx.JSONError(w, http.StatusNotFound, services.ErrProductNotFound.Error(), nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_sell", nil)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}
