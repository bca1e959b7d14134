package httptransport

import (
	"context"
	"net/http"
	"time"

	"github.com/felipebelchiorpro/sistema-de-pontos/internal/transport/http/shared"
)

type healthResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// handleHealth probes the backing store so operators can distinguish a
// misconfigured or unreachable backend from application errors.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.health == nil {
		shared.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.health(ctx); err != nil {
		shared.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{
			Status: "degraded",
			Detail: err.Error(),
		})
		return
	}
	shared.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
