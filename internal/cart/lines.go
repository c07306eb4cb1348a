package cart

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Lines renders the checkout hand-off: one line per item followed by the
// total, e.g.
//
//	Choco Cake (500g) × 2 = ₹900
//	Total: ₹900
func (c *Cart) Lines(currency string) []string {
	items := c.Items()
	out := make([]string, 0, len(items)+1)
	total := decimal.Zero
	for _, it := range items {
		lt := LineTotal(it)
		total = total.Add(lt)
		out = append(out, fmt.Sprintf("%s (%s) × %d = %s%s", it.Name, it.Size.Label(), it.Quantity, currency, lt.String()))
	}
	out = append(out, fmt.Sprintf("Total: %s%s", currency, total.String()))
	return out
}
