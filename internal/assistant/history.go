package assistant

import "routine-advisor/internal/types"

// History is the append-only conversation for one session. It is never
// persisted.
type History struct {
	entries []types.Message
}

func (h *History) Append(role, content string) {
	h.entries = append(h.entries, types.Message{Role: role, Content: content})
}

// Messages returns a copy of the entries in order.
func (h *History) Messages() []types.Message {
	out := make([]types.Message, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *History) Len() int { return len(h.entries) }
