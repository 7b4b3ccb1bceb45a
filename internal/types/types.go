package types

// Message is one conversation entry. Role is "user", "assistant" or "system".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ProductContext is the product projection sent to the gateway. The image is
// intentionally left out.
type ProductContext struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// GatewayRequest is the body POSTed by the client to the gateway.
type GatewayRequest struct {
	Messages        []Message        `json:"messages"`
	Selected        []ProductContext `json:"selected"`
	EnableWebSearch bool             `json:"enableWebSearch"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
