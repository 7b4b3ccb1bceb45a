package catalog

import "strings"

// Filter is the transient category + free-text query state. Zero value
// matches everything.
type Filter struct {
	Category string
	Query    string
}

// Matches reports whether p passes both the category and the query test.
func (f Filter) Matches(p Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	haystack := strings.ToLower(p.Name + " " + p.Brand + " " + p.Category + " " + p.Description)
	return strings.Contains(haystack, q)
}

// Filtered returns the catalog-order subset of products matching f.
func Filtered(products []Product, f Filter) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}
