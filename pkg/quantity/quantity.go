// Package quantity canonicalizes mass values as integer grams.
//
// Feed and biometry quantities arrive as decimal kilograms from user input
// but are stored and summed as integer grams, so repeated kg round-trips
// across views can never accumulate floating-point drift. Conversion back
// to kilograms happens only at calculator boundaries or for display.
package quantity

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Grams is the canonical mass unit for all stored quantities.
type Grams int64

// ErrNegativeQuantity rejects negative mass input at the boundary.
var ErrNegativeQuantity = fmt.Errorf("quantity must not be negative")

// FromKilograms parses a decimal-kilogram user input into canonical grams,
// rounding to the nearest gram.
func FromKilograms(kg float64) (Grams, error) {
	if kg < 0 {
		return 0, ErrNegativeQuantity
	}
	return Grams(math.Round(kg * 1000)), nil
}

// FromGrams validates a raw gram count (e.g. an average-weight sample).
func FromGrams(g float64) (Grams, error) {
	if g < 0 {
		return 0, ErrNegativeQuantity
	}
	return Grams(math.Round(g)), nil
}

// Kilograms converts back to float kilograms. Exact division by 1000; the
// result is for computation at a boundary, never re-parsed into grams.
func (g Grams) Kilograms() float64 {
	return float64(g) / 1000
}

// Decimal returns the mass in kilograms as an exact decimal (grams scaled
// by 10^-3), suitable for monetary arithmetic such as feed-cost sums.
func (g Grams) Decimal() decimal.Decimal {
	return decimal.New(int64(g), -3)
}

// FormatKg renders the mass in kilograms with a fixed number of decimal
// places for display.
func (g Grams) FormatKg(places int) string {
	return fmt.Sprintf("%.*f kg", places, g.Kilograms())
}
