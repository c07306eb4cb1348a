package domain

import (
	"fmt"
	"strconv"
)

const PriceOnRequest = "Price on request"

// discount overrides base whenever it is present; the result never aliases p
func effective(base, discount *float64) *float64 {
	v := discount
	if v == nil {
		v = base
	}
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

// PerPoundPrice returns the per-unit price with its discount applied, or nil.
func (p Product) PerPoundPrice() *float64 {
	return effective(p.PricePerPound, p.PricePerPoundDiscount)
}

// TierPrice returns the legacy fixed-weight price for size, or nil.
func (p Product) TierPrice(size Size) *float64 {
	switch size {
	case Size500g:
		return effective(p.Price500g, p.Price500gDiscount)
	case Size1kg:
		return effective(p.Price1kg, p.Price1kgDiscount)
	case Size2kg:
		return effective(p.Price2kg, p.Price2kgDiscount)
	}
	return nil
}

// UnitPrice resolves the price pinned on a cart line. A per-unit price wins
// over every legacy tier; otherwise the tier matching size is used. Unknown
// sizes resolve to nil.
func (p Product) UnitPrice(size Size) *float64 {
	if v := p.PerPoundPrice(); v != nil {
		return v
	}
	return p.TierPrice(size)
}

// DisplayAmount is the price shown on the product card, and the size it
// belongs to. ok is false when the product has no price at all.
func (p Product) DisplayAmount() (amount float64, size Size, ok bool) {
	if v := p.PerPoundPrice(); v != nil {
		return *v, SizePerPound, true
	}
	for _, s := range []Size{Size500g, Size1kg, Size2kg} {
		if v := p.TierPrice(s); v != nil {
			return *v, s, true
		}
	}
	return 0, "", false
}

// DisplayPrice formats the card price, e.g. "₹250 / lb" or "₹450 / 500g".
func (p Product) DisplayPrice(currency string) string {
	amount, size, ok := p.DisplayAmount()
	if !ok {
		return PriceOnRequest
	}
	unit := string(size)
	if size == SizePerPound {
		unit = "lb"
	}
	return fmt.Sprintf("%s%s / %s", currency, FormatAmount(amount), unit)
}

// FormatAmount renders a price without trailing zeros.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
