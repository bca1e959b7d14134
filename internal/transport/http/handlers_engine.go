package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/felipebelchiorpro/sistema-de-pontos/internal/ledger"
	"github.com/felipebelchiorpro/sistema-de-pontos/internal/transport/http/shared"
)

type registerSaleRequest struct {
	Coupon         string      `json:"coupon"`
	SaleValue      json.Number `json:"saleValue"`
	ExternalSaleID string      `json:"externalSaleId,omitempty"`
	SaleDate       string      `json:"saleDate,omitempty"`
}

func (h *Handler) handleRegisterSale(w http.ResponseWriter, r *http.Request) {
	var req registerSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, badRequest("invalid JSON body"))
		return
	}
	value, err := parseAmount(req.SaleValue, "saleValue")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	saleDate, err := parseOptionalDate(req.SaleDate, "saleDate")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	receipt, err := h.engine.RegisterSale(r.Context(), req.Coupon, value, req.ExternalSaleID, saleDate)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.summaryCache.Invalidate(r.Context())
	shared.WriteJSON(w, http.StatusCreated, receipt)
}

type redeemRequest struct {
	Coupon string      `json:"coupon"`
	Points json.Number `json:"points"`
}

func (h *Handler) handleRedeemPoints(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, badRequest("invalid JSON body"))
		return
	}
	points, err := parseAmount(req.Points, "points")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.engine.RedeemPoints(r.Context(), req.Coupon, points); err != nil {
		shared.WriteError(w, err)
		return
	}
	h.summaryCache.Invalidate(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.ledger.ListAll(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, txs)
}

type updateTransactionRequest struct {
	PartnerID      string      `json:"partnerId"`
	Amount         json.Number `json:"amount"`
	ExternalSaleID string      `json:"externalSaleId,omitempty"`
	Date           string      `json:"date,omitempty"`
}

// handleUpdateTransaction rewrites an existing transaction. The row's type is
// immutable; the amount carries the sale value for sales and the point count
// for redemptions.
func (h *Handler) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	txID, err := pathUUID(r, "id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req updateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, badRequest("invalid JSON body"))
		return
	}
	amount, err := parseAmount(req.Amount, "amount")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	date, err := parseOptionalDate(req.Date, "date")
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	existing, err := h.ledger.ByID(r.Context(), txID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	partnerID := existing.PartnerID
	if req.PartnerID != "" {
		partnerID, err = parseUUID(req.PartnerID, "partnerId")
		if err != nil {
			shared.WriteError(w, err)
			return
		}
	}
	if date.IsZero() {
		date = existing.Date
	}

	switch existing.Type {
	case ledger.TypeSale:
		externalSaleID := req.ExternalSaleID
		if externalSaleID == "" {
			externalSaleID = existing.ExternalSaleID
		}
		err = h.engine.UpdateSale(r.Context(), txID, partnerID, amount, externalSaleID, date)
	case ledger.TypeRedemption:
		err = h.engine.UpdateRedemption(r.Context(), txID, partnerID, amount, date)
	default:
		err = badRequest("unknown transaction type")
	}
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.summaryCache.Invalidate(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	txID, err := pathUUID(r, "id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.engine.DeleteTransaction(r.Context(), txID); err != nil {
		shared.WriteError(w, err)
		return
	}
	h.summaryCache.Invalidate(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
