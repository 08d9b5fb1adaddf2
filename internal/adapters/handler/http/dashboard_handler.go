package http

import (
	"context"
	"net/http"
	"time"

	"github.com/vncsmyrnk/clubvote/internal/core/ports"
)

type DashboardHandler struct {
	service ports.DashboardService
}

func NewDashboardHandler(service ports.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Stats godoc
// @Summary      Returns club-wide voting statistics
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  domain.DashboardStats
// @Failure      403  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/dashboard [get]
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HealthCheck reports whether the storage backend answers. A nil check is
// always healthy.
func HealthCheck(check func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				writeError(w, http.StatusServiceUnavailable, "storage unavailable")
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
