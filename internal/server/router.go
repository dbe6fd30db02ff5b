package server

import (
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/VyacheslavShrot/interview-task/internal/handlers"
	"github.com/VyacheslavShrot/interview-task/internal/httpx"
	"github.com/VyacheslavShrot/interview-task/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB) http.Handler {
	mux := http.NewServeMux()

	// --- Health endpoints ---
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		// Lightweight DB check (SELECT 1) – detailed errors stay out of the body
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Product endpoints. List/Create via /products; update/delete via
	// /products/update & /products/delete for simplicity.
	ph := handlers.NewProductHandler(db)
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ph.List(w, r)
		case http.MethodPost:
			ph.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})
	mux.HandleFunc("/products/update", requirePost(ph.Update))
	mux.HandleFunc("/products/delete", requirePost(ph.Delete))

	// Order endpoints
	orderSvc := services.NewOrderService(db)
	allocator := services.NewAllocator(db)
	oh := handlers.NewOrderHandler(orderSvc, allocator)
	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			oh.List(w, r)
		case http.MethodPost:
			oh.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})
	mux.HandleFunc("/orders/update", requirePost(oh.Update))
	mux.HandleFunc("/orders/delete", requirePost(oh.Delete))
	mux.HandleFunc("/orders/sell", requirePost(oh.Sell))

	// Issuance and issued-document views
	ih := handlers.NewInvoiceHandler(db, services.NewIssuer(db))
	mux.HandleFunc("/orders/issue", requirePost(ih.Issue))
	mux.HandleFunc("/orders/expense-invoice", requireGet(ih.ExpenseInvoice))
	mux.HandleFunc("/orders/tax-invoice", requireGet(ih.TaxInvoice))

	// Reports
	rh := handlers.NewReportHandler(services.NewReports(db))
	mux.HandleFunc("/reports/profit", requireGet(rh.Profit))

	return withRecover(withLogging(mux))
}

func requirePost(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
			return
		}
		next(w, r)
	}
}

func requireGet(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
			return
		}
		next(w, r)
	}
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
