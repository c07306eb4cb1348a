package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"bakery/internal/domain"
)

const cartKeyPrefix = "bakery:cart:"

// RedisCarts хранит корзину как JSON под ключом сессии с TTL
type RedisCarts struct {
	client *redis.Client
	ttl    time.Duration
}

var _ CartRepository = (*RedisCarts)(nil)

func NewRedisCarts(client *redis.Client, ttl time.Duration) *RedisCarts {
	return &RedisCarts{client: client, ttl: ttl}
}

// OpenRedis parses a redis:// URL and checks connectivity.
func OpenRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(c).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func (r *RedisCarts) key(id string) string { return cartKeyPrefix + id }

func (r *RedisCarts) Create(ctx context.Context, c *domain.CartSnapshot) error {
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	body, err := json.Marshal(c)
	if err != nil {
		return err
	}
	ok, err := r.client.SetNX(ctx, r.key(c.ID), body, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("create cart: %w", err)
	}
	if !ok {
		return fmt.Errorf("create cart: id collision %s", c.ID)
	}
	return nil
}

func (r *RedisCarts) GetByID(ctx context.Context, id string) (*domain.CartSnapshot, error) {
	body, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	var c domain.CartSnapshot
	if err := json.Unmarshal(body, &c); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", id, err)
	}
	return &c, nil
}

// Update rewrites an existing cart and refreshes its TTL.
func (r *RedisCarts) Update(ctx context.Context, c *domain.CartSnapshot) error {
	c.UpdatedAt = time.Now().UTC()
	body, err := json.Marshal(c)
	if err != nil {
		return err
	}
	ok, err := r.client.SetXX(ctx, r.key(c.ID), body, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("update cart: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (r *RedisCarts) Delete(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, r.key(id)).Result()
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// MutexTx сериализует read-modify-write в пределах процесса
type MutexTx struct{ mu sync.Mutex }

func NewMutexTx() *MutexTx { return &MutexTx{} }

func (tx *MutexTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	return fn(ctx)
}
