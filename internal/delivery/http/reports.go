package http

import (
	"net/http"

	"github.com/egannguyen/sales-orders/internal/report"
)

func (h *Handler) handleTopClients(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.TopClients(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) handleTopSellers(w http.ResponseWriter, r *http.Request) {
	p, err := report.ParsePipeline(r.URL.Query().Get("pipeline"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := h.reports.TopSellers(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
