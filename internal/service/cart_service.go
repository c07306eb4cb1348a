package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bakery/internal/cart"
	"bakery/internal/domain"
	"bakery/internal/repository"
)

var ErrInvalidInput = errors.New("invalid input")

// ProductFinder источник товаров для добавления в корзину
type ProductFinder interface {
	FindProduct(ctx context.Context, key string) (*domain.Product, error)
}

// CartView корзина с производными суммами
type CartView struct {
	ID      string            `json:"id"`
	Items   []domain.CartItem `json:"items"`
	Count   int               `json:"count"`
	Total   decimal.Decimal   `json:"total"`
	Notices []cart.Notice     `json:"notices,omitempty"`
}

// CartService хранит корзины сессий и применяет к ним операции агрегатора
type CartService struct {
	carts    repository.CartRepository
	tx       repository.TxManager
	products ProductFinder
	log      *zap.Logger
}

func NewCartService(carts repository.CartRepository, tx repository.TxManager, products ProductFinder, log *zap.Logger) *CartService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartService{carts: carts, tx: tx, products: products, log: log}
}

func (s *CartService) Create(ctx context.Context) (*CartView, error) {
	snap := domain.CartSnapshot{Items: []domain.CartItem{}}
	if err := s.carts.Create(ctx, &snap); err != nil {
		return nil, err
	}
	return view(snap.ID, cart.New(), nil), nil
}

func (s *CartService) Get(ctx context.Context, id string) (*CartView, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput
	}
	snap, err := s.carts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return view(snap.ID, cart.Restore(snap.Items), nil), nil
}

// AddItem resolves productKey against the catalog before touching the cart,
// so a catalog fetch never runs inside the cart transaction.
func (s *CartService) AddItem(ctx context.Context, id, productKey string, size domain.Size) (*CartView, error) {
	if strings.TrimSpace(id) == "" || size == "" {
		return nil, ErrInvalidInput
	}
	p, err := s.products.FindProduct(ctx, productKey)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(c *cart.Cart) { c.AddItem(*p, size) })
}

func (s *CartService) RemoveItem(ctx context.Context, id, productID string, size domain.Size) (*CartView, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput
	}
	return s.mutate(ctx, id, func(c *cart.Cart) { c.RemoveItem(productID, size) })
}

func (s *CartService) UpdateQuantity(ctx context.Context, id, productID string, size domain.Size, quantity int) (*CartView, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput
	}
	return s.mutate(ctx, id, func(c *cart.Cart) { c.UpdateQuantity(productID, size, quantity) })
}

func (s *CartService) Clear(ctx context.Context, id string) (*CartView, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput
	}
	return s.mutate(ctx, id, func(c *cart.Cart) { c.Clear() })
}

// mutate загружает корзину, применяет op и сохраняет её атомарно
func (s *CartService) mutate(ctx context.Context, id string, op func(c *cart.Cart)) (*CartView, error) {
	var out *CartView
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		snap, err := s.carts.GetByID(ctx, id)
		if err != nil {
			return err
		}
		notes := &cart.Collector{}
		c := cart.Restore(snap.Items, cart.WithNotifier(notes))
		op(c)
		snap.Items = c.Items()
		if err := s.carts.Update(ctx, snap); err != nil {
			return err
		}
		for _, n := range notes.Notices {
			s.log.Info("cart notice",
				zap.String("cart_id", id),
				zap.String("kind", string(n.Kind)),
				zap.String("product_id", n.ProductID),
				zap.String("size", string(n.Size)))
		}
		out = view(snap.ID, c, notes.Notices)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func view(id string, c *cart.Cart, notices []cart.Notice) *CartView {
	return &CartView{
		ID:      id,
		Items:   c.Items(),
		Count:   c.Count(),
		Total:   c.Total(),
		Notices: notices,
	}
}
