package httptransport

import (
	"net/http"

	"github.com/felipebelchiorpro/sistema-de-pontos/internal/engine"
	"github.com/felipebelchiorpro/sistema-de-pontos/internal/transport/http/shared"
	"github.com/shopspring/decimal"
)

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reports.Summary(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleStatement(w http.ResponseWriter, r *http.Request) {
	partnerID, err := pathUUID(r, "id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	from, to, err := queryDateRange(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	statement, err := h.reports.Statement(r.Context(), partnerID, from, to)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, statement)
}

// handleQuote is the stateless calculator: it derives points and discounted
// value for a hypothetical sale without touching any balance.
func (h *Handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("saleValue")
	if raw == "" {
		shared.WriteError(w, badRequest("saleValue query parameter is required"))
		return
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		shared.WriteError(w, badRequest("saleValue must be a number"))
		return
	}
	if !value.IsPositive() {
		shared.WriteError(w, badRequest("saleValue must be positive"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, engine.ComputeQuote(value))
}
