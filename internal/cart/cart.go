// Package cart holds the shopping-cart aggregator: line items keyed by
// (product, size), quantity bookkeeping and derived totals.
package cart

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"bakery/internal/domain"
)

// NoticeKind вид уведомления для покупателя
type NoticeKind string

const (
	NoticeAdded   NoticeKind = "added"
	NoticeUpdated NoticeKind = "updated"
	NoticeRemoved NoticeKind = "removed"
	NoticeCleared NoticeKind = "cleared"
)

// Notice user-facing confirmation emitted by cart mutations.
type Notice struct {
	Kind      NoticeKind  `json:"kind"`
	ProductID string      `json:"product_id,omitempty"`
	Size      domain.Size `json:"size,omitempty"`
	Message   string      `json:"message"`
}

type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Collector буферизует уведомления одной операции
type Collector struct {
	Notices []Notice
}

func (c *Collector) Notify(n Notice) { c.Notices = append(c.Notices, n) }

type lineKey struct {
	productID string
	size      domain.Size
}

// Cart агрегатор позиций корзины. Zero value is not usable, see New.
type Cart struct {
	mu       sync.Mutex
	items    []domain.CartItem
	notifier Notifier
}

type Option func(*Cart)

func WithNotifier(n Notifier) Option {
	return func(c *Cart) {
		if n != nil {
			c.notifier = n
		}
	}
}

func New(opts ...Option) *Cart {
	c := &Cart{notifier: NotifierFunc(func(Notice) {})}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Restore builds a cart from stored items. Rows with non-positive
// quantities are dropped and repeated keys are merged.
func Restore(items []domain.CartItem, opts ...Option) *Cart {
	c := New(opts...)
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		if i := c.indexOf(it.ProductID, it.Size); i >= 0 {
			c.items[i].Quantity += it.Quantity
			continue
		}
		c.items = append(c.items, copyItem(it))
	}
	return c
}

func (c *Cart) indexOf(productID string, size domain.Size) int {
	k := lineKey{productID, size}
	for i, it := range c.items {
		if (lineKey{it.ProductID, it.Size}) == k {
			return i
		}
	}
	return -1
}

// AddItem adds one unit of p in size. The unit price is resolved on the
// first add and stays pinned for the life of the line.
func (c *Cart) AddItem(p domain.Product, size domain.Size) {
	c.mu.Lock()
	key := p.Key()
	var n Notice
	if i := c.indexOf(key, size); i >= 0 {
		c.items[i].Quantity++
		n = Notice{Kind: NoticeUpdated, ProductID: key, Size: size, Message: fmt.Sprintf("%s quantity updated!", p.Name)}
	} else {
		c.items = append(c.items, domain.CartItem{
			ProductID: key,
			Name:      p.Name,
			Category:  p.Category,
			Size:      size,
			UnitPrice: p.UnitPrice(size),
			Quantity:  1,
		})
		n = Notice{Kind: NoticeAdded, ProductID: key, Size: size, Message: fmt.Sprintf("%s added to cart!", p.Name)}
	}
	c.mu.Unlock()
	c.notifier.Notify(n)
}

// RemoveItem deletes the line if present; absent keys leave the cart as is.
func (c *Cart) RemoveItem(productID string, size domain.Size) {
	c.mu.Lock()
	i := c.indexOf(productID, size)
	if i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
	c.mu.Unlock()
	if i >= 0 {
		c.notifier.Notify(Notice{Kind: NoticeRemoved, ProductID: productID, Size: size, Message: "Item removed from cart"})
	}
}

// UpdateQuantity sets the quantity, clamped at zero; zero removes the line.
func (c *Cart) UpdateQuantity(productID string, size domain.Size, quantity int) {
	if quantity < 0 {
		quantity = 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(productID, size)
	if i < 0 {
		return
	}
	if quantity == 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
		return
	}
	c.items[i].Quantity = quantity
}

func (c *Cart) Clear() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
	c.notifier.Notify(Notice{Kind: NoticeCleared, Message: "Cart cleared!"})
}

// Total sums unit price × quantity; unpriced lines count as zero.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(LineTotal(it))
	}
	return total
}

// Count is the number of units, not of distinct lines.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []domain.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.CartItem, len(c.items))
	for i, it := range c.items {
		out[i] = copyItem(it)
	}
	return out
}

func LineTotal(it domain.CartItem) decimal.Decimal {
	if it.UnitPrice == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*it.UnitPrice).Mul(decimal.NewFromInt(int64(it.Quantity)))
}

func copyItem(it domain.CartItem) domain.CartItem {
	if it.UnitPrice != nil {
		v := *it.UnitPrice
		it.UnitPrice = &v
	}
	return it
}
