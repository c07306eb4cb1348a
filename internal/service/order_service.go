package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"bakery/internal/cart"
	"bakery/internal/repository"
)

const (
	DefaultOrderNumber = "9932006049"
	DefaultCurrency    = "₹"
)

var ErrEmptyCart = errors.New("cart is empty")

// orderTemplate шаблон сообщения заказа, который покупатель дозаполняет
var orderTemplate = []string{
	"New order request:",
	"Name:",
	"Phone:",
	"Pickup or Delivery (choose one):",
	"Address (if delivery):",
	"Products chosen (name / size / qty / price):",
	"-",
	"CUSTOM order? Describe design/theme, size (500g/1kg/2kg), servings, and date/time needed.",
	"Total price:",
	"Notes:",
}

// Order сформированный заказ для отправки в мессенджер
type Order struct {
	CartID  string   `json:"cart_id"`
	Lines   []string `json:"lines"`
	Message string   `json:"message"`
	URL     string   `json:"url"`
}

// OrderService оформляет заказ из корзины: строки заказа и ссылка wa.me
type OrderService struct {
	carts    repository.CartRepository
	tx       repository.TxManager
	number   string
	currency string
	log      *zap.Logger
}

func NewOrderService(carts repository.CartRepository, tx repository.TxManager, number, currency string, log *zap.Logger) *OrderService {
	if currency == "" {
		currency = DefaultCurrency
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderService{carts: carts, tx: tx, number: SanitizeNumber(number), currency: currency, log: log}
}

// PlaceOrder формирует сообщение заказа и очищает корзину
func (s *OrderService) PlaceOrder(ctx context.Context, cartID string) (*Order, error) {
	if strings.TrimSpace(cartID) == "" {
		return nil, ErrInvalidInput
	}
	var placed *Order
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		snap, err := s.carts.GetByID(ctx, cartID)
		if err != nil {
			return err
		}
		c := cart.Restore(snap.Items)
		if c.Len() == 0 {
			return ErrEmptyCart
		}
		lines := c.Lines(s.currency)
		message := OrderMessage(lines)

		snap.Items = snap.Items[:0]
		if err := s.carts.Update(ctx, snap); err != nil {
			return err
		}
		placed = &Order{
			CartID:  cartID,
			Lines:   lines,
			Message: message,
			URL:     OrderURL(s.number, message),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("order placed", zap.String("cart_id", cartID), zap.Int("lines", len(placed.Lines)))
	return placed, nil
}

// OrderMessage appends preset lines to the fixed template.
func OrderMessage(preset []string) string {
	lines := append([]string{}, orderTemplate...)
	if len(preset) > 0 {
		lines = append(lines, "", "Preset:")
		lines = append(lines, preset...)
	}
	return strings.Join(lines, "\n")
}

// OrderURL builds the wa.me link with the message as the text parameter.
func OrderURL(number, message string) string {
	return "https://wa.me/" + SanitizeNumber(number) + "?text=" + escapeComponent(message)
}

// escapeComponent percent-encodes every UTF-8 byte except A-Z a-z 0-9 and
// - _ . ! ~ * ' ( ), the set browsers leave literal in a URI component.
func escapeComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
			b.WriteByte(c)
		case strings.IndexByte("-_.!~*'()", c) >= 0:
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&15])
		}
	}
	return b.String()
}

// SanitizeNumber keeps digits only, falling back to the default number.
func SanitizeNumber(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return DefaultOrderNumber
	}
	return b.String()
}
