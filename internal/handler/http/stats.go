package http

import (
	"log/slog"
	"net/http"

	"github.com/yosefkovan/storefront/internal/service"
	"github.com/yosefkovan/storefront/pkg/httputil"
)

// StatsHandler serves the admin store dashboard numbers.
type StatsHandler struct {
	service *service.StatsService
	logger  *slog.Logger
}

// NewStatsHandler creates a new stats HTTP handler.
func NewStatsHandler(svc *service.StatsService, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		service: svc,
		logger:  logger,
	}
}

// GetStats handles GET /api/v1/admin/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: stats})
}
