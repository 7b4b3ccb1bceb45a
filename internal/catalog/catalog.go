package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/pkg/errors"

	"routine-advisor/internal/types"
)

// LoadFailedMessage is shown in place of the product grid when the catalog
// cannot be loaded.
const LoadFailedMessage = "Could not load products. Please refresh."

// Product is an immutable catalog entry identified by ID.
type Product struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type document struct {
	Products []Product `json:"products"`
}

// Decode reads a {"products": [...]} document.
func Decode(r io.Reader) ([]Product, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}
	if doc.Products == nil {
		return []Product{}, nil
	}
	return doc.Products, nil
}

func LoadFile(path string) ([]Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open catalog")
	}
	defer f.Close()
	return Decode(f)
}

func LoadURL(ctx context.Context, client *http.Client, url string) ([]Product, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build catalog request")
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch catalog")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("fetch catalog: status %d", resp.StatusCode)
	}
	return Decode(resp.Body)
}

// Load reads the catalog from an http(s) URL or a local file path.
func Load(ctx context.Context, source string) ([]Product, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return LoadURL(ctx, nil, source)
	}
	return LoadFile(source)
}

// Categories lists the distinct categories in first-seen order.
func Categories(products []Product) []string {
	seen := make(map[string]bool, len(products))
	out := make([]string, 0)
	for _, p := range products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	return out
}

// Selected returns the products for which has reports true, in catalog order.
func Selected(products []Product, has func(id int) bool) []Product {
	out := make([]Product, 0)
	for _, p := range products {
		if has(p.ID) {
			out = append(out, p)
		}
	}
	return out
}

// Context projects p to the fields sent to the gateway.
func Context(p Product) types.ProductContext {
	return types.ProductContext{
		ID:          p.ID,
		Name:        p.Name,
		Brand:       p.Brand,
		Category:    p.Category,
		Description: p.Description,
	}
}

func Contexts(products []Product) []types.ProductContext {
	out := make([]types.ProductContext, 0, len(products))
	for _, p := range products {
		out = append(out, Context(p))
	}
	return out
}
