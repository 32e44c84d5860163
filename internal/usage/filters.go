package usage

// FilterNames is the closed set of filter categories reported per instance.
// Every extraction result contains exactly these keys.
var FilterNames = []string{
	"on-sale",
	"stock-status",
	"handpicked",
	"keyword",
	"attributes",
	"category",
	"tag",
	"featured",
	"created",
	"price",
}

// ExtractFilters derives the filter-usage map from a product-collection
// block's attributes. Pure and total: any attribute shape, including an empty
// map, yields a complete all-keys map of 0/1 values.
//
// defaultStockStatuses is the store's effective default stock-status set; the
// stock-status filter only counts as used when the block's selection differs
// from it as a set.
func ExtractFilters(attrs map[string]any, defaultStockStatuses []string) map[string]int {
	filters := make(map[string]int, len(FilterNames))
	for _, name := range FilterNames {
		filters[name] = 0
	}

	query := asMap(attrs["query"])
	taxQuery := asMap(query["taxQuery"])

	if truthy(query["onSale"]) {
		filters["on-sale"] = 1
	}
	if selected, ok := stringSlice(query["woocommerceStockStatus"]); ok {
		if !sameSet(selected, defaultStockStatuses) {
			filters["stock-status"] = 1
		}
	}
	if len(asSlice(query["woocommerceHandPicked"])) > 0 {
		filters["handpicked"] = 1
	}
	if s, ok := query["search"].(string); ok && s != "" {
		filters["keyword"] = 1
	}
	if len(asSlice(query["woocommerceAttributes"])) > 0 {
		filters["attributes"] = 1
	}
	if len(asSlice(taxQuery["product_cat"])) > 0 {
		filters["category"] = 1
	}
	if len(asSlice(taxQuery["product_tag"])) > 0 {
		filters["tag"] = 1
	}
	if query["featured"] != nil {
		filters["featured"] = 1
	}
	if query["timeFrame"] != nil {
		filters["created"] = 1
	}
	if query["priceRange"] != nil {
		filters["price"] = 1
	}

	return filters
}

// asMap returns v as a string-keyed map, or an empty map. Lookups on the
// result are always safe.
func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// asSlice returns v as a slice, or nil.
func asSlice(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	return nil
}

// stringSlice returns v's string elements and whether v was a slice at all.
// Non-string elements are skipped; a present-but-empty slice still reports
// ok=true, which matters for the stock-status set comparison.
func stringSlice(v any) ([]string, bool) {
	raw, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out, true
}

// truthy mirrors loose boolean coercion over JSON attribute values.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != "" && t != "false" && t != "0"
	case float64:
		return t != 0
	default:
		return false
	}
}

func sameSet(a, b []string) bool {
	seen := make(map[string]bool, len(a))
	for _, s := range a {
		seen[s] = true
	}
	other := make(map[string]bool, len(b))
	for _, s := range b {
		other[s] = true
	}
	if len(seen) != len(other) {
		return false
	}
	for s := range seen {
		if !other[s] {
			return false
		}
	}
	return true
}
