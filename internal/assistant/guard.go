package assistant

import "strings"

// TopicGuard is a client-side pre-flight check for follow-up chat messages.
// It is not a security boundary; the gateway's system instruction is.
type TopicGuard struct {
	keywords []string
	redirect string
}

func NewTopicGuard(keywords []string, redirect string) *TopicGuard {
	lower := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			lower = append(lower, k)
		}
	}
	return &TopicGuard{keywords: lower, redirect: redirect}
}

// Allowed reports whether text mentions any topic keyword.
func (g *TopicGuard) Allowed(text string) bool {
	if len(g.keywords) == 0 {
		return true
	}
	return containsAny(strings.ToLower(text), g.keywords)
}

// Redirect is the fixed reply shown instead of sending an off-topic message.
func (g *TopicGuard) Redirect() string { return g.redirect }

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
