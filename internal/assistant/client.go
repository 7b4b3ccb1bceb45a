package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"routine-advisor/internal/types"
)

var (
	ErrGatewayNotConfigured = errors.New("Worker URL not configured. Set ADVISOR_WORKER_URL or worker_url in secrets.yaml")
	ErrInvalidResponse      = errors.New("Invalid response from worker.")
)

// GatewayError is returned when the gateway answers with a non-2xx status.
type GatewayError struct {
	Status int
	Body   string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("Worker error: %d %s", e.Status, e.Body)
}

// Client builds gateway requests and posts them.
type Client struct {
	URL        string
	HTTPClient *http.Client
	// System is the instruction prepended to every request.
	System string
}

// BuildRequest assembles the gateway body: system instruction, prior history,
// then the new user message. selected travels in its own field.
func (c *Client) BuildRequest(userText string, selected []types.ProductContext, history []types.Message, webSearch bool) (types.GatewayRequest, error) {
	if strings.TrimSpace(c.URL) == "" {
		return types.GatewayRequest{}, ErrGatewayNotConfigured
	}
	messages := make([]types.Message, 0, len(history)+2)
	messages = append(messages, types.Message{Role: types.RoleSystem, Content: c.System})
	messages = append(messages, history...)
	messages = append(messages, types.Message{Role: types.RoleUser, Content: userText})

	if selected == nil {
		selected = []types.ProductContext{}
	}
	return types.GatewayRequest{
		Messages:        messages,
		Selected:        selected,
		EnableWebSearch: webSearch,
	}, nil
}

// Send posts req and returns choices[0].message.content of the reply.
func (c *Client) Send(ctx context.Context, req types.GatewayRequest) (string, error) {
	if strings.TrimSpace(c.URL) == "" {
		return "", ErrGatewayNotConfigured
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", errors.Wrap(err, "encode gateway request")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "build gateway request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(httpReq)
	if err != nil {
		return "", errors.Wrap(err, "gateway request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read gateway response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &GatewayError{Status: resp.StatusCode, Body: string(raw)}
	}
	if !gjson.ValidBytes(raw) {
		return "", ErrInvalidResponse
	}
	content := gjson.GetBytes(raw, "choices.0.message.content")
	if content.Type != gjson.String || content.String() == "" {
		return "", ErrInvalidResponse
	}
	return content.String(), nil
}

// Ask is BuildRequest followed by Send.
func (c *Client) Ask(ctx context.Context, userText string, selected []types.ProductContext, history []types.Message, webSearch bool) (string, error) {
	req, err := c.BuildRequest(userText, selected, history, webSearch)
	if err != nil {
		return "", err
	}
	return c.Send(ctx, req)
}
