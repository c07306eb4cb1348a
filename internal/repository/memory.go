package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"bakery/internal/domain"
)

// MemoryStore in-memory хранилище корзин; ID выдаётся через uuid
type MemoryStore struct {
	mu        sync.RWMutex
	cartsByID map[string]domain.CartSnapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cartsByID: make(map[string]domain.CartSnapshot),
	}
}

// transaction-aware locking helpers
type txKey struct{}

func isTx(ctx context.Context) bool {
	v := ctx.Value(txKey{})
	if v == nil {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RLock()
	}
}
func (m *MemoryStore) runlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RUnlock()
	}
}
func (m *MemoryStore) wlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Lock()
	}
}
func (m *MemoryStore) wunlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Unlock()
	}
}

// Ensure interfaces
var _ CartRepository = (*MemoryStore)(nil)

func (m *MemoryStore) Create(ctx context.Context, c *domain.CartSnapshot) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	m.cartsByID[c.ID] = cloneCart(*c)
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id string) (*domain.CartSnapshot, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	c, ok := m.cartsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	// return copy
	cp := cloneCart(c)
	return &cp, nil
}

func (m *MemoryStore) Update(ctx context.Context, c *domain.CartSnapshot) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.cartsByID[c.ID]; !ok {
		return ErrNotFound
	}
	c.UpdatedAt = time.Now().UTC()
	m.cartsByID[c.ID] = cloneCart(*c)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.cartsByID[id]; !ok {
		return ErrNotFound
	}
	delete(m.cartsByID, id)
	return nil
}

// items slice and price pointers are not shared with callers
func cloneCart(c domain.CartSnapshot) domain.CartSnapshot {
	items := make([]domain.CartItem, len(c.Items))
	for i, it := range c.Items {
		if it.UnitPrice != nil {
			v := *it.UnitPrice
			it.UnitPrice = &v
		}
		items[i] = it
	}
	c.Items = items
	return c
}

// Tx manager using write lock to emulate transaction boundary
type MemoryTx struct{ store *MemoryStore }

func NewMemoryTx(store *MemoryStore) *MemoryTx { return &MemoryTx{store: store} }

func (tx *MemoryTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// Для in-memory используем блокировку записи и помечаем контекст, чтобы репозитории пропускали внутренние локи
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	ctx = context.WithValue(ctx, txKey{}, true)
	return fn(ctx)
}
