// Package partner holds the partner directory domain model. Partners
// accumulate loyalty points from sales and spend them via redemptions; the
// points field is mutated only by the balance mutation engine.
package partner

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Partner is an entity identified by a unique coupon code.
type Partner struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Coupon    string          `json:"coupon"`
	Points    decimal.Decimal `json:"points"`
	CreatedAt time.Time       `json:"createdAt"`
}

// couponPattern mirrors the registration form contract: uppercase letters and
// digits only.
var couponPattern = regexp.MustCompile(`^[A-Z0-9]+$`)

// ValidCoupon reports whether a normalized coupon satisfies the format
// contract (uppercase alphanumeric, at least 3 characters).
func ValidCoupon(coupon string) bool {
	return len(coupon) >= 3 && couponPattern.MatchString(coupon)
}
