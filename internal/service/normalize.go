package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"bakery/internal/domain"
	"bakery/internal/repository"
)

const (
	defaultProductName  = "Untitled"
	defaultCategory     = "Misc"
	defaultReviewerName = "Anonymous"
	defaultReviewRating = 5
)

// Spreadsheet authors spell the per-pound columns differently; the first
// alias holding a valid number wins.
var (
	perPoundPriceAliases = []string{
		"price_per_pound", "pricePerPound", "price_pound", "per_pound_price", "price_per_lb", "price_lb",
	}
	perPoundDiscountAliases = []string{
		"price_per_pound_discount", "pricePerPoundDiscount", "discount_price_per_pound",
		"discounted_price_per_pound", "price_pound_discount", "price_per_lb_discount",
	}
)

// columns with a dedicated Product field; everything else boolean-valued
// goes to Attributes
var knownProductColumns = func() map[string]struct{} {
	m := map[string]struct{}{
		"id": {}, "name": {}, "category": {}, "description": {}, "image_url": {},
		"price_500g": {}, "price_500g_discount": {},
		"price_1kg": {}, "price_1kg_discount": {},
		"price_2kg": {}, "price_2kg_discount": {},
		"flavor_type": {}, "occasion_type": {}, "is_customer_cake": {}, "available": {},
	}
	for _, k := range perPoundPriceAliases {
		m[k] = struct{}{}
	}
	for _, k := range perPoundDiscountAliases {
		m[k] = struct{}{}
	}
	return m
}()

// NormalizeProduct maps one loosely-typed row onto a Product. It never
// fails: missing or malformed cells fall back to defaults.
func NormalizeProduct(row repository.Row) domain.Product {
	p := domain.Product{
		ID:          textOr(row, "id", ""),
		Name:        textOr(row, "name", defaultProductName),
		Category:    textOr(row, "category", defaultCategory),
		Description: textOr(row, "description", ""),
		ImageURL:    textOr(row, "image_url", ""),

		PricePerPound:         firstNumber(row, perPoundPriceAliases),
		PricePerPoundDiscount: firstNumber(row, perPoundDiscountAliases),

		Price500g:         parseNumber(row["price_500g"]),
		Price500gDiscount: parseNumber(row["price_500g_discount"]),
		Price1kg:          parseNumber(row["price_1kg"]),
		Price1kgDiscount:  parseNumber(row["price_1kg_discount"]),
		Price2kg:          parseNumber(row["price_2kg"]),
		Price2kgDiscount:  parseNumber(row["price_2kg_discount"]),

		FlavorType:     parseBool(row["flavor_type"]),
		OccasionType:   parseBool(row["occasion_type"]),
		IsCustomerCake: parseBool(row["is_customer_cake"]),
		Available:      parseBool(row["available"]),
	}

	for k, v := range row {
		if _, ok := knownProductColumns[k]; ok {
			continue
		}
		if b, ok := boolValued(v); ok {
			if p.Attributes == nil {
				p.Attributes = make(map[string]bool)
			}
			p.Attributes[k] = b
		}
	}
	return p
}

// NormalizeProducts normalizes rows and keeps only available products.
func NormalizeProducts(rows []repository.Row) []domain.Product {
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		p := NormalizeProduct(row)
		if !p.Available {
			continue
		}
		out = append(out, p)
	}
	return out
}

// NormalizeTestimonials drops rows without text.
func NormalizeTestimonials(rows []repository.Row) []domain.Testimonial {
	out := make([]domain.Testimonial, 0, len(rows))
	for _, row := range rows {
		t := domain.Testimonial{
			Name:   textOr(row, "name", defaultReviewerName),
			Text:   textOr(row, "text", ""),
			Rating: parseRating(row["rating"]),
		}
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

// parseRating keeps the sheet value as is; absent, non-numeric or zero means 5.
func parseRating(v any) float64 {
	n := parseNumber(v)
	if n == nil || *n == 0 {
		return defaultReviewRating
	}
	return *n
}

func firstNumber(row repository.Row, keys []string) *float64 {
	for _, k := range keys {
		if n := parseNumber(row[k]); n != nil {
			return n
		}
	}
	return nil
}

// parseNumber returns nil for anything that is not a finite number, so an
// absent price is never confused with zero.
func parseNumber(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// parseBool: native bools pass through, strings must equal "true" ignoring
// case; everything else is false.
func parseBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return strings.EqualFold(strings.TrimSpace(x), "true")
	}
	return false
}

func boolValued(v any) (value, ok bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		s := strings.TrimSpace(x)
		if strings.EqualFold(s, "true") {
			return true, true
		}
		if strings.EqualFold(s, "false") {
			return false, true
		}
	}
	return false, false
}

// textOr stringifies scalars; missing, null or blank cells yield fallback.
func textOr(row repository.Row, key, fallback string) string {
	var s string
	switch x := row[key].(type) {
	case nil:
		return fallback
	case string:
		s = x
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(x)
	default:
		s = fmt.Sprint(x)
	}
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return strings.TrimSpace(s)
}
