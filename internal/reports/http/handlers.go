// Package reportshttp serves the financial dashboard JSON and CSV exports.
package reportshttp

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/spaceworks-id/spaceworks/internal/platform/httpx"
	"github.com/spaceworks-id/spaceworks/internal/reports"
	"github.com/spaceworks-id/spaceworks/internal/reports/export"
)

const requestTimeout = 5 * time.Second

// ReportService defines the dashboard data contract used by the handler.
type ReportService interface {
	GetSnapshot(ctx context.Context, filter reports.Filter) (reports.Snapshot, error)
}

// Handler coordinates HTTP requests for the finance dashboard.
type Handler struct {
	logger  *slog.Logger
	service ReportService
	now     func() time.Time
}

// NewHandler constructs the reports HTTP handler.
func NewHandler(logger *slog.Logger, service ReportService) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
		now:     time.Now,
	}
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.loadSnapshot(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, snapshot)
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.loadSnapshot(w, r)
	if !ok {
		return
	}

	view := r.URL.Query().Get("view")
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="finance-`+view+`.csv"`)

	var err error
	switch view {
	case "revenue", "":
		err = export.WriteRevenueCSV(w, snapshot)
	case "services":
		err = export.WriteDimensionCSV(w, "Service", snapshot.TopServices)
	case "cities":
		err = export.WriteDimensionCSV(w, "City", snapshot.TopCities)
	case "aging":
		err = export.WriteAgingCSV(w, snapshot.Aging)
	case "cashflow":
		err = export.WriteCashflowCSV(w, snapshot.Cashflow)
	case "tax":
		err = export.WriteTaxCSV(w, snapshot.Tax)
	default:
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "unknown view "+view)
		return
	}
	if err != nil {
		h.logger.Error("write csv", slog.String("view", view), slog.Any("error", err))
	}
}

func (h *Handler) loadSnapshot(w http.ResponseWriter, r *http.Request) (reports.Snapshot, bool) {
	asOf := h.now().UTC()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "as_of must be YYYY-MM-DD")
			return reports.Snapshot{}, false
		}
		asOf = parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	snapshot, err := h.service.GetSnapshot(ctx, reports.Filter{AsOf: asOf})
	if err != nil {
		h.logger.Error("load snapshot", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return reports.Snapshot{}, false
	}
	return snapshot, true
}
