package pricing

import (
	"fmt"
	"math"
)

// LineItem is one product/variant/size entry of a cart or order snapshot.
type LineItem struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"price"`
	Quantity  uint    `json:"quantity"`
	Variant   string  `json:"variant,omitempty"`
	Size      string  `json:"size,omitempty"`
	Image     string  `json:"image,omitempty"`
}

// Key is the identity used to merge cart lines: same product, variant and
// size collapse into a single line.
func (li LineItem) Key() string {
	return fmt.Sprintf("%d|%s|%s", li.ProductID, li.Variant, li.Size)
}

// Coupon is the verified discount applied to a cart. MaxDiscount of 0 means
// the percentage is uncapped.
type Coupon struct {
	Code            string  `json:"code"`
	DiscountPercent float64 `json:"discount"`
	MaxDiscount     float64 `json:"max_amount"`
}

// Policy carries the configurable parts of total computation. Prices are
// tax-inclusive: the tax share is extracted from the subtotal, never added on
// top. Whether shipping contributes to the payable total is a setting, since
// the storefront historically both absorbed and charged it.
type Policy struct {
	TaxRate           float64
	FreeShippingAbove float64
	ShippingFee       float64
	ShippingInTotal   bool
	HomeState         string
}

func DefaultPolicy() Policy {
	return Policy{
		TaxRate:           0.18,
		FreeShippingAbove: 5000,
		ShippingFee:       0,
		ShippingInTotal:   true,
		HomeState:         "Maharashtra",
	}
}

type Totals struct {
	Subtotal    float64 `json:"subtotal"`
	TaxAmount   float64 `json:"tax_amount"`
	Shipping    float64 `json:"shipping_amount"`
	Discount    float64 `json:"discount_amount"`
	FinalAmount float64 `json:"final_amount"`
}

// Calculate computes cart totals from line items and an optional verified
// coupon. The final amount is rounded to the nearest currency unit and always
// satisfies final == round(subtotal [+ shipping] - discount).
func Calculate(items []LineItem, coupon *Coupon, p Policy) Totals {
	var t Totals
	for _, it := range items {
		t.Subtotal += it.UnitPrice * float64(it.Quantity)
	}
	if t.Subtotal == 0 {
		return t
	}

	if coupon != nil {
		raw := t.Subtotal * coupon.DiscountPercent / 100
		if coupon.MaxDiscount > 0 {
			t.Discount = math.Min(raw, coupon.MaxDiscount)
		} else {
			t.Discount = raw
		}
	}

	t.TaxAmount = t.Subtotal - t.Subtotal/(1+p.TaxRate)

	if t.Subtotal > p.FreeShippingAbove {
		t.Shipping = 0
	} else {
		t.Shipping = p.ShippingFee
	}

	final := t.Subtotal - t.Discount
	if p.ShippingInTotal {
		final += t.Shipping
	}
	t.FinalAmount = math.Round(final)
	return t
}

// TaxLine is one display row of the tax breakdown.
type TaxLine struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// SplitTax renders the jurisdiction breakdown for display. Intra-state
// shipments split the extracted tax into equal CGST/SGST halves; everything
// else shows a single IGST line. The split never changes the final amount.
func SplitTax(t Totals, shippingState string, p Policy) []TaxLine {
	if shippingState != "" && shippingState == p.HomeState {
		half := t.TaxAmount / 2
		return []TaxLine{
			{Label: "CGST", Amount: half},
			{Label: "SGST", Amount: half},
		}
	}
	return []TaxLine{{Label: "IGST", Amount: t.TaxAmount}}
}
