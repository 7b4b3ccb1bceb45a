package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
	"github.com/tidwall/gjson"

	"routine-advisor/internal/logging"
	"routine-advisor/internal/prompts"
	"routine-advisor/internal/websearch"
)

const (
	maxBodyBytes  = 1 << 20
	maxReferences = 3
)

// chatRequest is the outbound chat-completion body. Messages stay raw so
// caller history reaches the upstream byte for byte, and temperature is sent
// even when it is zero.
type chatRequest struct {
	Model       string            `json:"model"`
	Messages    []json.RawMessage `json:"messages"`
	Temperature float32           `json:"temperature"`
}

func setCORSHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
}

// handleRelay is the stateless gateway: it decorates the caller's messages
// with the preamble, product context and optional web references, forwards
// them upstream and relays the reply unchanged.
func (s *Server) handleRelay(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w.Header())
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodPost:
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	log := logging.FromContext(r.Context())
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil || !gjson.ValidBytes(body) {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	parsed := gjson.ParseBytes(body)
	history := parseMessages(parsed.Get("messages"))

	var selectedRaw string
	if sel := parsed.Get("selected"); sel.IsArray() {
		selectedRaw = sel.Raw
	}

	var webContext string
	if s.search.Enabled() && parsed.Get("enableWebSearch").Bool() {
		results, err := s.search.Search(r.Context(), s.prompts.SearchQuery)
		if err != nil {
			log.WithError(err).Warn("web search failed, continuing without references")
		} else {
			webContext = websearch.FormatContext(results, maxReferences)
		}
	}

	messages, err := BuildMessages(s.prompts, selectedRaw, history, webContext)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	log.WithField("messages", len(messages)).Debug("relaying chat completion")
	s.forward(w, r, messages)
}

func (s *Server) forward(w http.ResponseWriter, r *http.Request, messages []json.RawMessage) {
	log := logging.FromContext(r.Context())
	payload, err := json.Marshal(chatRequest{
		Model:       s.cfg.Model,
		Messages:    messages,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, s.cfg.ChatURL, bytes.NewReader(payload))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.upstream.Do(req)
	if err != nil {
		log.WithError(err).Error("upstream call failed")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.WithError(err).Error("reading upstream response failed")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !gjson.ValidBytes(data) {
		log.WithField("status", resp.StatusCode).Error("upstream returned a non-JSON body")
		s.writeError(w, http.StatusInternalServerError, "upstream returned invalid JSON")
		return
	}
	if resp.StatusCode >= 300 {
		log.WithField("status", resp.StatusCode).Warn("upstream returned an error")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(data)
}

// parseMessages returns every object in a JSON array as its raw text, so
// fields such as name or array content survive untouched. Anything that is
// not an array yields no messages.
func parseMessages(v gjson.Result) []json.RawMessage {
	if !v.IsArray() {
		return nil
	}
	var out []json.RawMessage
	v.ForEach(func(_, m gjson.Result) bool {
		if m.IsObject() {
			out = append(out, json.RawMessage(m.Raw))
		}
		return true
	})
	return out
}

func systemMessage(content string) (json.RawMessage, error) {
	return json.Marshal(openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: content,
	})
}

// BuildMessages assembles the outbound list: web references (if any), the
// preamble, the selected products (if the array is non-empty), then history.
func BuildMessages(p prompts.Prompts, selectedRaw string, history []json.RawMessage, webContext string) ([]json.RawMessage, error) {
	var system []string
	if webContext != "" {
		system = append(system, p.WebHeader+"\n"+webContext)
	}
	system = append(system, p.GatewaySystem)
	if sel := gjson.Parse(selectedRaw); sel.IsArray() && len(sel.Array()) > 0 {
		system = append(system, p.SelectionHeader+"\n"+indentJSON(selectedRaw))
	}

	out := make([]json.RawMessage, 0, len(system)+len(history))
	for _, content := range system {
		m, err := systemMessage(content)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return append(out, history...), nil
}

// indentJSON pretty-prints raw with two spaces, keeping key order.
func indentJSON(raw string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(raw), "", "  "); err != nil {
		return raw
	}
	return buf.String()
}
