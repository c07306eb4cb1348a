package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakery/internal/repository"
)

func TestNormalizeProduct_LegacyTier(t *testing.T) {
	p := NormalizeProduct(repository.Row{"id": "c1", "name": "Choco Cake", "price_500g": "450", "available": "true"})

	assert.Equal(t, "c1", p.ID)
	assert.Equal(t, "Choco Cake", p.Name)
	require.NotNil(t, p.Price500g)
	assert.Equal(t, 450.0, *p.Price500g)
	assert.Nil(t, p.Price1kg)
	assert.True(t, p.Available)
}

func TestNormalizeProduct_PerPoundWithDiscount(t *testing.T) {
	p := NormalizeProduct(repository.Row{"id": "c2", "price_per_pound": "300", "price_per_pound_discount": "250", "available": "true"})

	require.NotNil(t, p.PricePerPound)
	require.NotNil(t, p.PricePerPoundDiscount)
	got := p.UnitPrice("500g")
	require.NotNil(t, got)
	assert.Equal(t, 250.0, *got)
}

func TestNormalizeProduct_AliasPriority(t *testing.T) {
	row := repository.Row{
		"price_per_pound":      "n/a",
		"pricePerPound":        "320",
		"price_lb":             "999",
		"price_pound_discount": "280",
	}
	p := NormalizeProduct(row)
	require.NotNil(t, p.PricePerPound)
	assert.Equal(t, 320.0, *p.PricePerPound)
	require.NotNil(t, p.PricePerPoundDiscount)
	assert.Equal(t, 280.0, *p.PricePerPoundDiscount)
	assert.Empty(t, p.Attributes)
}

func TestNormalizeProduct_Defaults(t *testing.T) {
	p := NormalizeProduct(repository.Row{"name": "   ", "available": true})

	assert.Equal(t, "", p.ID)
	assert.Equal(t, defaultProductName, p.Name)
	assert.Equal(t, defaultCategory, p.Category)
	assert.Equal(t, "", p.Description)
	assert.Equal(t, "", p.ImageURL)
	assert.True(t, p.Available)
}

func TestNormalizeProduct_NumericID(t *testing.T) {
	p := NormalizeProduct(repository.Row{"id": float64(42)})
	assert.Equal(t, "42", p.ID)
}

func TestNormalizeProduct_Flags(t *testing.T) {
	p := NormalizeProduct(repository.Row{
		"flavor_type":      "TRUE",
		"occasion_type":    "yes",
		"is_customer_cake": true,
		"available":        "True",
		"eggless":          "true",
		"sugar_free":       false,
		"notes":            "fresh daily",
		"price_1kg":        "800",
	})

	assert.True(t, p.FlavorType)
	assert.False(t, p.OccasionType)
	assert.True(t, p.IsCustomerCake)
	assert.True(t, p.Available)
	assert.Equal(t, map[string]bool{"eggless": true, "sugar_free": false}, p.Attributes)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want *float64
	}{
		{"string", "450", ptr(450)},
		{"padded", " 12.5 ", ptr(12.5)},
		{"number", float64(99), ptr(99)},
		{"zero", "0", ptr(0)},
		{"empty", "", nil},
		{"text", "abc", nil},
		{"nil", nil, nil},
		{"bool", true, nil},
		{"nan string", "NaN", nil},
		{"inf string", "Inf", nil},
		{"inf", math.Inf(1), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseNumber(tt.in))
		})
	}
}

func TestParseBool(t *testing.T) {
	assert.True(t, parseBool(true))
	assert.True(t, parseBool("true"))
	assert.True(t, parseBool("TrUe"))
	assert.False(t, parseBool(false))
	assert.False(t, parseBool(""))
	assert.False(t, parseBool("1"))
	assert.False(t, parseBool("yes"))
	assert.False(t, parseBool(float64(1)))
	assert.False(t, parseBool(nil))
}

func TestNormalizeProducts_FiltersUnavailable(t *testing.T) {
	out := NormalizeProducts([]repository.Row{
		{"id": "c1", "price_500g": "450", "available": "true"},
		{"id": "c3", "price_500g": "100", "available": "false"},
		{"id": "c4", "price_500g": "100"},
		{"id": "c5", "available": "true", "price_500g": "garbage"},
	})

	ids := make([]string, 0, len(out))
	for _, p := range out {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"c1", "c5"}, ids)
	assert.Nil(t, out[1].Price500g)
}

func TestNormalizeTestimonials(t *testing.T) {
	out := NormalizeTestimonials([]repository.Row{
		{"name": "Asha", "text": "Lovely cake", "rating": "4"},
		{"text": "Great", "rating": "five"},
		{"name": "Ravi", "text": "   "},
		{"name": "Nina"},
		{"name": "Big", "text": "wow", "rating": "9"},
		{"name": "Zero", "text": "meh", "rating": "0"},
		{"name": "Half", "text": "good", "rating": "4.5"},
		{"name": "Neg", "text": "bad", "rating": -2},
	})

	require.Len(t, out, 6)
	assert.Equal(t, "Asha", out[0].Name)
	assert.Equal(t, 4.0, out[0].Rating)
	assert.Equal(t, defaultReviewerName, out[1].Name)
	assert.Equal(t, 5.0, out[1].Rating)
	assert.Equal(t, 9.0, out[2].Rating)
	assert.Equal(t, 5.0, out[3].Rating)
	// fractional and out-of-range values are kept as written in the sheet
	assert.Equal(t, 4.5, out[4].Rating)
	assert.Equal(t, -2.0, out[5].Rating)
}

func ptr(v float64) *float64 { return &v }
