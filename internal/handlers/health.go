package handlers

import (
	"net/http"
	"time"

	"github.com/praticos/api/internal/platform/httpx"
	"github.com/praticos/api/internal/repositories"
)

// HealthHandlers exposes liveness and readiness endpoints.
type HealthHandlers struct {
	health  repositories.HealthRepository
	started time.Time
}

// NewHealthHandlers constructs the health endpoints. A nil repository degrades
// readiness to a liveness check.
func NewHealthHandlers(health repositories.HealthRepository) *HealthHandlers {
	return &HealthHandlers{
		health:  health,
		started: time.Now().UTC(),
	}
}

// Healthz reports process liveness.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	httpx.WriteData(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}

// Readyz reports readiness by probing the backing store.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.health != nil {
		if err := h.health.Ping(ctx); err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("store_unavailable", "dependencies unavailable", http.StatusServiceUnavailable))
			return
		}
	}
	httpx.WriteData(w, http.StatusOK, map[string]any{"status": "ready"})
}
