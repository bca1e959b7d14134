// Package engine is the balance mutation engine: it computes point deltas
// for sales and redemptions and applies them atomically to partner balances
// while appending the matching ledger entry. It is the only writer of
// partner.Points and of ledger rows.
package engine

import "github.com/shopspring/decimal"

// DiscountRate is the fixed share of a gross sale converted into points.
var DiscountRate = decimal.RequireFromString("0.075")

// Round2 normalizes values to currency/points precision. It is applied
// before persisting, not merely for display.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Quote is the derived outcome of a sale: points granted to the partner and
// the discounted value charged to the customer.
type Quote struct {
	PointsGenerated decimal.Decimal `json:"pointsGenerated"`
	DiscountedValue decimal.Decimal `json:"discountedValue"`
}

// ComputeQuote derives the quote for a gross sale value. PointsGenerated and
// DiscountedValue always sum back to the sale value exactly, because the
// discounted value is computed from the already-rounded points.
func ComputeQuote(saleValue decimal.Decimal) Quote {
	points := Round2(saleValue.Mul(DiscountRate))
	return Quote{
		PointsGenerated: points,
		DiscountedValue: Round2(saleValue.Sub(points)),
	}
}
