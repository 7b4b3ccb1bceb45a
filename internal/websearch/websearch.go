// Package websearch queries a Brave-compatible web search API for reference
// links that the gateway can hand to the model.
package websearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

const DefaultBaseURL = "https://api.search.brave.com/res/v1/web/search"

type Result struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Enabled reports whether a credential is configured.
func (c *Client) Enabled() bool {
	return c != nil && strings.TrimSpace(c.APIKey) != ""
}

// Search runs query and returns web.results in provider order.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, errors.Wrap(err, "parse search url")
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build search request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.APIKey)

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "search request failed")
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read search response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("search returned status %d", resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.New("search returned invalid JSON")
	}

	var results []Result
	gjson.GetBytes(body, "web.results").ForEach(func(_, v gjson.Result) bool {
		results = append(results, Result{
			Title: v.Get("title").String(),
			URL:   v.Get("url").String(),
		})
		return true
	})
	return results, nil
}

// FormatContext renders at most limit results as "- title — url" lines.
func FormatContext(results []Result, limit int) string {
	if limit >= 0 && len(results) > limit {
		results = results[:limit]
	}
	lines := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, fmt.Sprintf("- %s — %s", r.Title, r.URL))
	}
	return strings.Join(lines, "\n")
}
