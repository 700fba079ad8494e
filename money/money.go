// Package money provides decimal arithmetic helpers for the position
// engine. All monetary values use shopspring/decimal, never float64
// for money. Share quantities are int64.
package money

import "github.com/shopspring/decimal"

// Zero is the zero money value.
var Zero = decimal.Zero

// FromFloat converts a float64 (config files, CLI flags) to money.
func FromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// Parse converts an operator-supplied string to money.
func Parse(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// Cost returns price × quantity.
func Cost(price decimal.Decimal, quantity int64) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(quantity))
}

// PerShare divides an amount across quantity shares. Quantity must be
// positive; callers guard the qty == 0 case.
func PerShare(amount decimal.Decimal, quantity int64) decimal.Decimal {
	return amount.Div(decimal.NewFromInt(quantity))
}

// WeightedAverage folds a new lot (price, quantity) into an existing
// average over held shares and returns the new average. held + quantity
// must be positive.
func WeightedAverage(avg decimal.Decimal, held int64, price decimal.Decimal, quantity int64) decimal.Decimal {
	total := Cost(avg, held).Add(Cost(price, quantity))
	return total.Div(decimal.NewFromInt(held + quantity))
}

// Percent returns part / whole, or zero when whole is not positive.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return part.Div(whole)
}

// RoundCents rounds to two decimal places for display.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ClampZero floors negative amounts to zero. Sizer inputs arrive from
// free-form fields and negatives are treated as zero, never rejected.
func ClampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
