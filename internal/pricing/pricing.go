// Package pricing derives the stored sale price of a product.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

var (
	hundred = decimal.NewFromInt(100)
	zero    = decimal.Zero
)

// ComputeSpecialPrice returns price - (discountPercent/100)*price rounded to
// cents. The discount range is not checked here; see ValidateDiscount.
func ComputeSpecialPrice(price, discountPercent decimal.Decimal) decimal.Decimal {
	off := discountPercent.Div(hundred).Mul(price)
	return price.Sub(off).Round(2)
}

// ValidateDiscount rejects a discount outside [0, 100].
func ValidateDiscount(discountPercent decimal.Decimal) error {
	if discountPercent.LessThan(zero) || discountPercent.GreaterThan(hundred) {
		return fmt.Errorf("discount %s must be between 0 and 100: %w", discountPercent, domain.ErrInvalidInput)
	}
	return nil
}

// ValidatePrice rejects negative prices.
func ValidatePrice(price decimal.Decimal) error {
	if price.LessThan(zero) {
		return fmt.Errorf("price %s must not be negative: %w", price, domain.ErrInvalidInput)
	}
	return nil
}
