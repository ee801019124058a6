package handlers

import (
	"context"
	"log"
	"net/http"
	"time"
)

// HealthHandler reports liveness and, when Ping is set, storage readiness.
type HealthHandler struct {
	Ping func(ctx context.Context) error
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	res := map[string]string{"status": "ok", "storage": "ok"}
	if h.Ping == nil {
		res["storage"] = "memory"
		writeJSON(w, r, http.StatusOK, res)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.Ping(ctx); err != nil {
		log.Printf("health: storage ping failed: %v", err)
		res["status"] = "degraded"
		res["storage"] = "unavailable"
		writeJSON(w, r, http.StatusServiceUnavailable, res)
		return
	}

	writeJSON(w, r, http.StatusOK, res)
}
