// Package ledger holds the transaction log model: one row per applied sale
// or redemption. Rows are written only by the balance mutation engine; this
// package and its stores provide the read side.
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type discriminates ledger entries.
type Type string

const (
	TypeSale       Type = "SALE"
	TypeRedemption Type = "REDEMPTION"
)

// Transaction is a single ledger entry. Amount is the points delta magnitude
// and is always positive; Type carries the sign. Partner name and coupon are
// denormalized for display, as the dashboard tables render them inline.
type Transaction struct {
	ID                uuid.UUID        `json:"id"`
	PartnerID         uuid.UUID        `json:"partnerId"`
	PartnerName       string           `json:"partnerName,omitempty"`
	PartnerCoupon     string           `json:"partnerCoupon,omitempty"`
	Type              Type             `json:"type"`
	Amount            decimal.Decimal  `json:"amount"`
	OriginalSaleValue *decimal.Decimal `json:"originalSaleValue,omitempty"`
	DiscountedValue   *decimal.Decimal `json:"discountedValue,omitempty"`
	ExternalSaleID    string           `json:"externalSaleId,omitempty"`
	Date              time.Time        `json:"date"`
}

// IsSale reports whether the entry added points to the partner balance.
func (t Transaction) IsSale() bool { return t.Type == TypeSale }

// SignedAmount returns the entry's contribution to the partner balance.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.IsSale() {
		return t.Amount
	}
	return t.Amount.Neg()
}
