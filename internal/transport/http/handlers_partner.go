package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/felipebelchiorpro/sistema-de-pontos/internal/transport/http/shared"
)

type addPartnerRequest struct {
	Name   string `json:"name"`
	Coupon string `json:"coupon"`
}

func (h *Handler) handleAddPartner(w http.ResponseWriter, r *http.Request) {
	var req addPartnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, badRequest("invalid JSON body"))
		return
	}

	p, err := h.partners.Add(r.Context(), req.Name, req.Coupon)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) handleListPartners(w http.ResponseWriter, r *http.Request) {
	partners, err := h.partners.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, partners)
}
