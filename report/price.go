package report

import (
	"math"

	"github.com/shopspring/decimal"
)

// DefaultPlaces is the number of decimals quoted for most currency pairs.
const DefaultPlaces = 5

// Round rounds x half away from zero to places decimals. NaN and infinities
// are returned unchanged.
func Round(x float64, places int32) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	f, _ := decimal.NewFromFloat(x).Round(places).Float64()
	return f
}

// Price formats x with exactly places decimals, or "n/a" when x is not a
// finite number.
func Price(x float64, places int32) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return NA
	}
	return decimal.NewFromFloat(x).StringFixed(places)
}

// PricePtr formats an optional price level; nil renders as "-".
func PricePtr(x *float64, places int32) string {
	if x == nil {
		return "-"
	}
	return Price(*x, places)
}
