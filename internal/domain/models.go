package domain

import (
	"strings"
	"time"
)

// Size выбранная фасовка позиции корзины
type Size string

const (
	Size500g     Size = "500g"
	Size1kg      Size = "1kg"
	Size2kg      Size = "2kg"
	SizePerPound Size = "pound"
)

// Label is the human form used in cart lines and the checkout message.
func (s Size) Label() string {
	if s == SizePerPound {
		return "per pound"
	}
	return string(s)
}

// Product представляет товар пекарни после нормализации строки таблицы
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`

	PricePerPound         *float64 `json:"price_per_pound"`
	PricePerPoundDiscount *float64 `json:"price_per_pound_discount"`

	Price500g         *float64 `json:"price_500g"`
	Price500gDiscount *float64 `json:"price_500g_discount"`
	Price1kg          *float64 `json:"price_1kg"`
	Price1kgDiscount  *float64 `json:"price_1kg_discount"`
	Price2kg          *float64 `json:"price_2kg"`
	Price2kgDiscount  *float64 `json:"price_2kg_discount"`

	FlavorType     bool `json:"flavor_type"`
	OccasionType   bool `json:"occasion_type"`
	IsCustomerCake bool `json:"is_customer_cake"`
	Available      bool `json:"available"`

	// Attributes holds boolean columns that have no dedicated field.
	Attributes map[string]bool `json:"attributes,omitempty"`
}

// Key identifies the product in a cart; an empty id falls back to the name.
func (p Product) Key() string {
	if p.ID != "" {
		return p.ID
	}
	return p.Name
}

// Clone returns a deep copy: price pointers and Attributes are not shared.
func (p Product) Clone() Product {
	for _, f := range []**float64{
		&p.PricePerPound, &p.PricePerPoundDiscount,
		&p.Price500g, &p.Price500gDiscount,
		&p.Price1kg, &p.Price1kgDiscount,
		&p.Price2kg, &p.Price2kgDiscount,
	} {
		if *f != nil {
			v := **f
			*f = &v
		}
	}
	if p.Attributes != nil {
		attrs := make(map[string]bool, len(p.Attributes))
		for k, v := range p.Attributes {
			attrs[k] = v
		}
		p.Attributes = attrs
	}
	return p
}

// HasFlag reports a named classification flag. Filter ids used by the
// storefront ("flavor-wise", "occasion-wise", "customer-cake") are accepted
// alongside the column names.
func (p Product) HasFlag(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "flavor_type", "flavor-wise":
		return p.FlavorType
	case "occasion_type", "occasion-wise":
		return p.OccasionType
	case "is_customer_cake", "customer-cake":
		return p.IsCustomerCake
	case "available":
		return p.Available
	}
	return p.Attributes[name]
}

// Testimonial отзыв покупателя
type Testimonial struct {
	Name   string  `json:"name"`
	Text   string  `json:"text"`
	Rating float64 `json:"rating"`
}

// CartItem позиция корзины, ключ (ProductID, Size)
type CartItem struct {
	ProductID string   `json:"product_id"`
	Name      string   `json:"name"`
	Category  string   `json:"category"`
	Size      Size     `json:"size"`
	UnitPrice *float64 `json:"unit_price"`
	Quantity  int      `json:"quantity"`
}

// CartSnapshot сохранённое состояние корзины сессии
type CartSnapshot struct {
	ID        string     `json:"id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
