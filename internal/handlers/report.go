package handlers

import (
	"net/http"
	"time"

	"github.com/VyacheslavShrot/interview-task/internal/httpx"
	"github.com/VyacheslavShrot/interview-task/internal/services"
)

type ReportHandler struct {
	Svc *services.Reports
}

func NewReportHandler(svc *services.Reports) *ReportHandler { return &ReportHandler{Svc: svc} }

// Profit: GET /reports/profit?start_date=&end_date= – profit over issued
// expense invoices; both dates or neither.
func (h *ReportHandler) Profit(w http.ResponseWriter, r *http.Request) {
	var start, end *time.Time
	startStr := r.URL.Query().Get("start_date")
	endStr := r.URL.Query().Get("end_date")
	if startStr != "" && endStr != "" {
		s, err := time.Parse(dateLayout, startStr)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_start_date", nil)
			return
		}
		// include the whole end day
		e, err := time.Parse(dateLayout, endStr)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_end_date", nil)
			return
		}
		e = e.AddDate(0, 0, 1).Add(-time.Nanosecond)
		start, end = &s, &e
	}
	report, err := h.Svc.Profit(start, end)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_build_report", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}
