// Package report builds the read-side aggregates behind the dashboard and
// the individual partner report. Everything here is derived from the
// directory and the ledger; there are no invariants of its own.
package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/felipebelchiorpro/sistema-de-pontos/internal/ledger"
	"github.com/felipebelchiorpro/sistema-de-pontos/internal/partner"
)

// DaySales is one bucket of the sales-by-day chart.
type DaySales struct {
	Day       string          `json:"day"` // YYYY-MM-DD
	SaleCount int             `json:"saleCount"`
	Points    decimal.Decimal `json:"points"`
}

// PartnerTotal is one bar of the top-partners chart.
type PartnerTotal struct {
	PartnerID uuid.UUID       `json:"partnerId"`
	Name      string          `json:"name"`
	Coupon    string          `json:"coupon"`
	Points    decimal.Decimal `json:"points"`
}

// Summary aggregates the whole ledger for the dashboard.
type Summary struct {
	TotalGenerated    decimal.Decimal `json:"totalGenerated"`
	TotalRedeemed     decimal.Decimal `json:"totalRedeemed"`
	OutstandingPoints decimal.Decimal `json:"outstandingPoints"`
	SaleCount         int             `json:"saleCount"`
	RedemptionCount   int             `json:"redemptionCount"`
	PartnerCount      int             `json:"partnerCount"`
	SalesByDay        []DaySales      `json:"salesByDay"`
	TopPartners       []PartnerTotal  `json:"topPartners"`
	GeneratedAt       time.Time       `json:"generatedAt"`
}

// Statement is the individual partner report: the partner, their
// transactions in the requested range, and the range subtotals.
type Statement struct {
	Partner        *partner.Partner     `json:"partner"`
	Transactions   []ledger.Transaction `json:"transactions"`
	TotalGenerated decimal.Decimal      `json:"totalGenerated"`
	TotalRedeemed  decimal.Decimal      `json:"totalRedeemed"`
}
