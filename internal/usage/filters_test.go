package usage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for ExtractFilters:
// - Empty attributes yield a complete all-zero map
// - Each filter key flips to 1 on its own attribute, independently
// - Stock-status flags only a set mismatch against the default set
// - Non-map query values and junk shapes never panic
// - Unrecognized query attributes are silently ignored

var defaultStock = []string{"instock", "onbackorder"}

func query(q map[string]any) map[string]any {
	return map[string]any{"query": q}
}

func TestExtractFilters_EmptyAttrs(t *testing.T) {
	t.Parallel()

	got := ExtractFilters(map[string]any{}, defaultStock)
	require.Len(t, got, len(FilterNames))
	for _, name := range FilterNames {
		v, ok := got[name]
		require.True(t, ok, name)
		assert.Zero(t, v, name)
	}
}

func TestExtractFilters_IndividualFilters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		attrs map[string]any
		key   string
	}{
		{"on sale toggle", query(map[string]any{"onSale": true}), "on-sale"},
		{"handpicked products", query(map[string]any{"woocommerceHandPicked": []any{"41", "42"}}), "handpicked"},
		{"search keyword", query(map[string]any{"search": "hoodie"}), "keyword"},
		{"attribute filter", query(map[string]any{"woocommerceAttributes": []any{map[string]any{"taxonomy": "pa_color"}}}), "attributes"},
		{"category tax query", query(map[string]any{"taxQuery": map[string]any{"product_cat": []any{float64(9)}}}), "category"},
		{"tag tax query", query(map[string]any{"taxQuery": map[string]any{"product_tag": []any{float64(3)}}}), "tag"},
		{"featured toggle", query(map[string]any{"featured": true}), "featured"},
		{"time frame", query(map[string]any{"timeFrame": map[string]any{"operator": "in", "value": "last-7-days"}}), "created"},
		{"price range", query(map[string]any{"priceRange": map[string]any{"min": float64(10)}}), "price"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ExtractFilters(tt.attrs, defaultStock)
			for _, name := range FilterNames {
				want := 0
				if name == tt.key {
					want = 1
				}
				assert.Equal(t, want, got[name], name)
			}
		})
	}
}

func TestExtractFilters_StockStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		selected any
		want     int
	}{
		{"matches default set", []any{"instock", "onbackorder"}, 0},
		{"matches default in different order", []any{"onbackorder", "instock"}, 0},
		{"subset of default", []any{"instock"}, 1},
		{"superset of default", []any{"instock", "onbackorder", "outofstock"}, 1},
		{"empty selection", []any{}, 1},
		{"not a list", "instock", 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ExtractFilters(query(map[string]any{"woocommerceStockStatus": tt.selected}), defaultStock)
			assert.Equal(t, tt.want, got["stock-status"])
		})
	}
}

func TestExtractFilters_IgnoresJunkShapes(t *testing.T) {
	t.Parallel()

	attrs := map[string]any{
		"query": "not-a-map",
	}
	got := ExtractFilters(attrs, defaultStock)
	for _, name := range FilterNames {
		assert.Zero(t, got[name], name)
	}

	attrs = query(map[string]any{
		"onSale":                false,
		"search":                "",
		"woocommerceHandPicked": []any{},
		"taxQuery":              []any{"wrong", "shape"},
		"someFutureFilter":      true,
	})
	got = ExtractFilters(attrs, defaultStock)
	for _, name := range FilterNames {
		assert.Zero(t, got[name], name)
	}
}

func TestExtractFilters_CombinedFilters(t *testing.T) {
	t.Parallel()

	attrs := query(map[string]any{
		"onSale":   true,
		"featured": false, // present counts, even when false
		"taxQuery": map[string]any{
			"product_cat": []any{float64(12)},
			"product_tag": []any{},
		},
	})
	got := ExtractFilters(attrs, defaultStock)
	assert.Equal(t, 1, got["on-sale"])
	assert.Equal(t, 1, got["featured"])
	assert.Equal(t, 1, got["category"])
	assert.Equal(t, 0, got["tag"])
	assert.Equal(t, 0, got["stock-status"])
}
