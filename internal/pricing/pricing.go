// Package pricing holds the money arithmetic shared by the catalog, checkout and
// storefront packages. All computations go through decimal to avoid float drift.
package pricing

import "github.com/shopspring/decimal"

var one = decimal.NewFromInt(1)

// DiscountedPrice returns round(price * (1 - discount)) when discount is present and
// positive, and nil otherwise.
func DiscountedPrice(price float64, discount *float64) *float64 {
	if discount == nil || *discount <= 0 {
		return nil
	}
	d := decimal.NewFromFloat(price).
		Mul(one.Sub(decimal.NewFromFloat(*discount))).
		Round(0)
	v := d.InexactFloat64()
	return &v
}

// UnitPrice is the price a buyer pays for one unit: the discounted price when one
// applies, the base price otherwise.
func UnitPrice(price float64, discount *float64) float64 {
	if dp := DiscountedPrice(price, discount); dp != nil {
		return *dp
	}
	return price
}

// LineTotal returns unit * quantity.
func LineTotal(unit float64, quantity int) float64 {
	return decimal.NewFromFloat(unit).Mul(decimal.NewFromInt(int64(quantity))).Round(2).InexactFloat64()
}

// Line is one priced quantity.
type Line struct {
	Unit     float64
	Quantity int
}

// Total sums unit * quantity over lines.
func Total(lines []Line) float64 {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(decimal.NewFromFloat(l.Unit).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum.Round(2).InexactFloat64()
}

// ValidDiscount reports whether d is a usable discount fraction.
func ValidDiscount(d float64) bool {
	return d >= 0 && d <= 1
}
