// Package pricing turns a cart into authoritative totals. It is pure:
// no I/O, no clock, same inputs always produce the same outputs. The
// engine never trusts client-computed totals and always recomputes here.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/GodwinAdu/retail-pos-sub000/internal/models"
)

var (
	ErrNoItems          = errors.New("pricing: cart has no items")
	ErrNegativePrice    = errors.New("pricing: negative unit price")
	ErrInvalidQuantity  = errors.New("pricing: quantity must be at least 1")
	ErrNegativeTax      = errors.New("pricing: negative tax value")
	ErrNegativeDiscount = errors.New("pricing: negative discount value")
	ErrUnknownTaxMode   = errors.New("pricing: unknown tax mode")
	ErrUnknownDiscount  = errors.New("pricing: unknown discount mode")
)

// Line is a single cart line as priced. Quantity is a positive count,
// UnitPrice a non-negative amount.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Totals is the result of a pricing pass, all amounts rounded to cents.
type Totals struct {
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Compute derives subtotal, tax, discount and total for a cart.
//
// The discount is clamped to [0, subtotal]. Tax is computed on the
// subtotal, not on the discounted amount; that matches the established
// register behavior and must not be "fixed". The grand total is clamped
// at zero.
func Compute(items []Line, taxMode models.TaxMode, taxValue decimal.Decimal, discountMode models.DiscountMode, discountValue decimal.Decimal) (Totals, error) {
	if len(items) == 0 {
		return Totals{}, ErrNoItems
	}
	if taxValue.IsNegative() {
		return Totals{}, ErrNegativeTax
	}
	if discountValue.IsNegative() {
		return Totals{}, ErrNegativeDiscount
	}

	subtotal := decimal.Zero
	for i, line := range items {
		if line.UnitPrice.IsNegative() {
			return Totals{}, fmt.Errorf("%w (line %d)", ErrNegativePrice, i)
		}
		if line.Quantity < 1 {
			return Totals{}, fmt.Errorf("%w (line %d)", ErrInvalidQuantity, i)
		}
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	subtotal = subtotal.Round(2)

	var discount decimal.Decimal
	switch discountMode {
	case models.DiscountPercentage:
		discount = subtotal.Mul(discountValue).Div(hundred)
	case models.DiscountFixed:
		discount = discountValue
	default:
		return Totals{}, fmt.Errorf("%w %q", ErrUnknownDiscount, discountMode)
	}
	discount = discount.Round(2)
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	var tax decimal.Decimal
	switch taxMode {
	case models.TaxPercentage:
		tax = subtotal.Mul(taxValue).Div(hundred)
	case models.TaxFixed:
		tax = taxValue
	default:
		return Totals{}, fmt.Errorf("%w %q", ErrUnknownTaxMode, taxMode)
	}
	tax = tax.Round(2)

	total := subtotal.Sub(discount).Add(tax)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Totals{
		Subtotal:       subtotal,
		TaxAmount:      tax,
		DiscountAmount: discount,
		Total:          total,
	}, nil
}
