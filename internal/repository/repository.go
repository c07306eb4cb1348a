package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bakery/internal/domain"
)

var (
	// ErrNotFound возвращается, когда сущность не найдена
	ErrNotFound = errors.New("not found")

	ErrMissingConfiguration = errors.New("missing configuration")
	ErrSourceUnavailable    = errors.New("source unavailable")
	// ErrMalformedResponse тело ответа не является массивом строк таблицы
	ErrMalformedResponse = errors.New("malformed response")
	// ErrResponseTooLarge тело ответа превысило лимит и не читалось до конца
	ErrResponseTooLarge = errors.New("response too large")
)

// ConfigurationError обязательный параметр не задан; повтор не поможет
type ConfigurationError struct {
	Key string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing configuration: %s", e.Key)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrMissingConfiguration }

// SourceUnavailableError источник ответил неуспешным статусом или недоступен.
// StatusCode is 0 when no response was received.
type SourceUnavailableError struct {
	Sheet      string
	StatusCode int
	Err        error
}

func (e *SourceUnavailableError) Error() string {
	if e.StatusCode == 0 && e.Err != nil {
		return fmt.Sprintf("fetch %s: source unavailable: %v", e.Sheet, e.Err)
	}
	return fmt.Sprintf("fetch %s: source unavailable (status %d)", e.Sheet, e.StatusCode)
}

func (e *SourceUnavailableError) Is(target error) bool { return target == ErrSourceUnavailable }

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// Row строка таблицы с произвольными ключами
type Row map[string]any

// RowSource источник строк таблицы (Products, Testimonials)
type RowSource interface {
	Rows(ctx context.Context, sheet string) ([]Row, error)
}

// ProductFilter параметры фильтрации каталога
type ProductFilter struct {
	NameSubstring string
	Category      string
	Flag          string
	MinPrice      *float64
	MaxPrice      *float64
}

// Match reports whether p passes every set criterion. Price bounds compare
// against the display price; unpriced products never satisfy a bound.
func (f ProductFilter) Match(p domain.Product) bool {
	if !containsIgnoreCase(p.Name, f.NameSubstring) {
		return false
	}
	if f.Category != "" && !strings.EqualFold(strings.TrimSpace(p.Category), strings.TrimSpace(f.Category)) {
		return false
	}
	if f.Flag != "" && f.Flag != "all" && !p.HasFlag(f.Flag) {
		return false
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price, _, ok := p.DisplayAmount()
		if !ok {
			return false
		}
		if f.MinPrice != nil && price < *f.MinPrice {
			return false
		}
		if f.MaxPrice != nil && price > *f.MaxPrice {
			return false
		}
	}
	return true
}

// CartRepository хранилище корзин по идентификатору сессии
type CartRepository interface {
	Create(ctx context.Context, c *domain.CartSnapshot) error
	GetByID(ctx context.Context, id string) (*domain.CartSnapshot, error)
	Update(ctx context.Context, c *domain.CartSnapshot) error
	Delete(ctx context.Context, id string) error
}

// TxManager абстракция транзакции. Для in-memory — глобальная блокировка записи.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// helper: case-insensitive contains
func containsIgnoreCase(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
