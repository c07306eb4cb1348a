package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"bakery/internal/domain"
	"bakery/internal/repository"
)

const DefaultCatalogTTL = 10 * time.Minute

var ErrProductNotFound = errors.New("product not found")

// cacheSlot последний нормализованный список и время его загрузки.
// Наружу отдаются только копии.
type cacheSlot[T any] struct {
	mu        sync.Mutex
	data      []T
	startedAt time.Time
	fetchedAt time.Time
	loaded    bool
	clone     func(T) T
}

func (s *cacheSlot[T]) copyOf(data []T) []T {
	out := make([]T, len(data))
	for i, v := range data {
		if s.clone != nil {
			v = s.clone(v)
		}
		out[i] = v
	}
	return out
}

func (s *cacheSlot[T]) fresh(now time.Time, ttl time.Duration) ([]T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded || now.Sub(s.fetchedAt) >= ttl {
		return nil, false
	}
	return s.copyOf(s.data), true
}

func (s *cacheSlot[T]) any() ([]T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, false
	}
	return s.copyOf(s.data), true
}

// store replaces the slot unless a fetch that started later already did.
func (s *cacheSlot[T]) store(data []T, startedAt, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded && startedAt.Before(s.startedAt) {
		return
	}
	s.data = data
	s.startedAt = startedAt
	s.fetchedAt = at
	s.loaded = true
}

// CatalogService загружает, нормализует и кэширует каталог и отзывы
type CatalogService struct {
	source     repository.RowSource
	ttl        time.Duration
	serveStale bool
	now        func() time.Time
	log        *zap.Logger

	group        singleflight.Group
	forced       atomic.Uint64
	products     cacheSlot[domain.Product]
	testimonials cacheSlot[domain.Testimonial]
}

type CatalogOption func(*CatalogService)

func WithTTL(ttl time.Duration) CatalogOption {
	return func(s *CatalogService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) CatalogOption {
	return func(s *CatalogService) { s.now = now }
}

// WithServeStale makes a failed refresh fall back to the last good list.
func WithServeStale(on bool) CatalogOption {
	return func(s *CatalogService) { s.serveStale = on }
}

func WithCatalogLogger(l *zap.Logger) CatalogOption {
	return func(s *CatalogService) {
		if l != nil {
			s.log = l
		}
	}
}

func NewCatalogService(source repository.RowSource, opts ...CatalogOption) *CatalogService {
	s := &CatalogService{
		source: source,
		ttl:    DefaultCatalogTTL,
		now:    time.Now,
		log:    zap.NewNop(),
	}
	s.products.clone = domain.Product.Clone
	for _, o := range opts {
		o(s)
	}
	return s
}

// Products returns the available products, served from cache while younger
// than the TTL unless forceRefresh is set.
func (s *CatalogService) Products(ctx context.Context, forceRefresh bool) ([]domain.Product, error) {
	if !forceRefresh {
		if cached, ok := s.products.fresh(s.now(), s.ttl); ok {
			return cached, nil
		}
	}
	return load(ctx, s, repository.SheetProducts, &s.products, NormalizeProducts, forceRefresh)
}

// Testimonials follows the same cache contract against its own slot.
func (s *CatalogService) Testimonials(ctx context.Context, forceRefresh bool) ([]domain.Testimonial, error) {
	if !forceRefresh {
		if cached, ok := s.testimonials.fresh(s.now(), s.ttl); ok {
			return cached, nil
		}
	}
	return load(ctx, s, repository.SheetTestimonials, &s.testimonials, NormalizeTestimonials, forceRefresh)
}

// load fetches sheet once per concurrent wave of callers and replaces the
// slot wholesale on success. The fetch is detached from the caller that
// started it; every caller waits on its own ctx. A forced refresh never joins
// a fetch already in flight.
func load[T any](ctx context.Context, s *CatalogService, sheet string, slot *cacheSlot[T], normalize func([]repository.Row) []T, forceRefresh bool) ([]T, error) {
	key := sheet
	if forceRefresh {
		key = sheet + "#" + strconv.FormatUint(s.forced.Add(1), 10)
	}
	fetchCtx := context.WithoutCancel(ctx)

	ch := s.group.DoChan(key, func() (any, error) {
		started := s.now()
		rows, err := s.source.Rows(fetchCtx, sheet)
		if errors.Is(err, repository.ErrMalformedResponse) {
			s.log.Warn("malformed sheet response, using empty list",
				zap.String("sheet", sheet), zap.Error(err))
			rows, err = nil, nil
		}
		if err != nil {
			return nil, err
		}
		data := normalize(rows)
		slot.store(data, started, s.now())
		s.log.Debug("catalog refreshed",
			zap.String("sheet", sheet),
			zap.Int("rows", len(rows)),
			zap.Int("kept", len(data)))
		return data, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if err := res.Err; err != nil {
		if s.serveStale && !errors.Is(err, repository.ErrMissingConfiguration) {
			if stale, ok := slot.any(); ok {
				s.log.Warn("refresh failed, serving stale list", zap.String("sheet", sheet), zap.Error(err))
				return stale, nil
			}
		}
		s.log.Error("catalog fetch failed", zap.String("sheet", sheet), zap.Bool("shared", res.Shared), zap.Error(err))
		return nil, err
	}
	return slot.copyOf(res.Val.([]T)), nil
}

// ListProducts applies f to the (possibly cached) catalog.
func (s *CatalogService) ListProducts(ctx context.Context, f repository.ProductFilter, forceRefresh bool) ([]domain.Product, error) {
	all, err := s.Products(ctx, forceRefresh)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Categories lists distinct categories in first-seen order.
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	all, err := s.Products(ctx, false)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range all {
		k := strings.ToLower(strings.TrimSpace(p.Category))
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, p.Category)
	}
	return out, nil
}

// FindProduct looks a product up by id, then by name for id-less rows.
func (s *CatalogService) FindProduct(ctx context.Context, key string) (*domain.Product, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrInvalidInput
	}
	all, err := s.Products(ctx, false)
	if err != nil {
		return nil, err
	}
	for _, p := range all {
		if p.ID == key {
			cp := p
			return &cp, nil
		}
	}
	for _, p := range all {
		if p.ID == "" && p.Name == key {
			cp := p
			return &cp, nil
		}
	}
	return nil, ErrProductNotFound
}
