package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeQuote(t *testing.T) {
	cases := []struct {
		name       string
		saleValue  string
		points     string
		discounted string
	}{
		{"round hundred", "100", "7.5", "92.5"},
		{"typical sale", "1234.56", "92.59", "1141.97"},
		{"small sale rounds half up", "0.10", "0.01", "0.09"},
		{"one cent", "0.01", "0", "0.01"},
		{"large sale", "100000", "7500", "92500"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := ComputeQuote(decimal.RequireFromString(tc.saleValue))
			assert.True(t, q.PointsGenerated.Equal(decimal.RequireFromString(tc.points)),
				"points: want %s got %s", tc.points, q.PointsGenerated)
			assert.True(t, q.DiscountedValue.Equal(decimal.RequireFromString(tc.discounted)),
				"discounted: want %s got %s", tc.discounted, q.DiscountedValue)
		})
	}
}

// Points and discounted value must reconstruct the sale value exactly, since
// the discounted value is derived from the already-rounded points.
func TestComputeQuoteSumsToSaleValue(t *testing.T) {
	for _, raw := range []string{"0.01", "0.10", "1", "19.99", "333.33", "1234.56", "99999.99"} {
		value := decimal.RequireFromString(raw)
		q := ComputeQuote(value)
		assert.True(t, q.PointsGenerated.Add(q.DiscountedValue).Equal(Round2(value)),
			"sale %s: %s + %s != %s", raw, q.PointsGenerated, q.DiscountedValue, value)
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, "0.01", Round2(decimal.RequireFromString("0.0075")).String())
	assert.Equal(t, "1.23", Round2(decimal.RequireFromString("1.234")).String())
	assert.Equal(t, "1.24", Round2(decimal.RequireFromString("1.235")).String())
	assert.Equal(t, "-1.24", Round2(decimal.RequireFromString("-1.235")).String())
}
