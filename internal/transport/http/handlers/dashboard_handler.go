package handlers

import (
	"net/http"

	statssvc "github.com/harborexpo/backend/internal/services/stats"
	httperrors "github.com/harborexpo/backend/internal/transport/http/errors"
)

type DashboardHandler struct {
	stats *statssvc.Service
}

func NewDashboardHandler(stats *statssvc.Service) *DashboardHandler {
	return &DashboardHandler{stats: stats}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		writeInternal(w, "STATS_SERVICE_UNAVAILABLE", "stats service is unavailable")
		return
	}

	dashboard, err := h.stats.Dashboard(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to build dashboard stats")
		return
	}

	httperrors.Write(w, http.StatusOK, dashboard)
}
