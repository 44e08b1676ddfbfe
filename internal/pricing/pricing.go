// Package pricing computes checkout totals from cart line items. It is a
// pure function of the item list: no store access, no side effects, and
// fixed-point arithmetic so totals reproduce bit-for-bit.
package pricing

import (
	"github.com/shopspring/decimal"

	"storefront-api/internal/domain"
)

var (
	freeShippingOver = decimal.NewFromInt(100)
	flatShipping     = decimal.NewFromInt(10)
	taxRate          = decimal.New(10, -2) // 10%
)

// ComputeTotals prices the given items using their snapshot prices.
// Shipping is a flat 10.00 waived above a 100.00 subtotal; tax is 10% of the
// subtotal rounded half-up at the cents boundary.
func ComputeTotals(items []domain.CartItem) domain.Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		price := decimal.New(it.PriceCents, -2)
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	shipping := flatShipping
	if subtotal.GreaterThan(freeShippingOver) {
		shipping = decimal.Zero
	}

	// decimal.Round is half away from zero, which is half-up for the
	// non-negative amounts handled here.
	tax := subtotal.Mul(taxRate).Round(2)
	grand := subtotal.Add(shipping).Add(tax).Round(2)

	return domain.Totals{
		SubtotalCents:   toCents(subtotal),
		ShippingCents:   toCents(shipping),
		TaxCents:        toCents(tax),
		GrandTotalCents: toCents(grand),
	}
}

func toCents(d decimal.Decimal) int64 {
	return d.Shift(2).IntPart()
}
