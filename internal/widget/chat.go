package widget

import (
	"context"
	"strings"

	"routine-advisor/internal/catalog"
	"routine-advisor/internal/types"
)

// Pending is a gateway request prepared on the event loop and awaiting Send.
type Pending struct {
	Request types.GatewayRequest
	// prompt is what enters history as the user turn on success.
	prompt string
}

// StartRoutine begins the "generate routine" action. It returns nil when no
// request should be sent: a request is already in flight, nothing is
// selected, or the request could not be built. In the latter two cases an
// assistant bubble explains why.
func (w *Widget) StartRoutine() *Pending {
	if w.typing {
		return nil
	}
	items := w.SelectedProducts()
	if len(items) == 0 {
		w.appendBubble(types.RoleAssistant, w.prompts.EmptySelection)
		return nil
	}
	w.appendBubble(types.RoleUser, w.prompts.RoutineDisplay)
	return w.prepare(w.prompts.RoutinePrompt, items)
}

// StartChat begins a follow-up chat turn. Off-topic text is answered locally
// with the redirect message and never reaches the gateway.
func (w *Widget) StartChat(text string) *Pending {
	text = strings.TrimSpace(text)
	if text == "" || w.typing {
		return nil
	}
	w.appendBubble(types.RoleUser, text)
	if !w.guard.Allowed(text) {
		w.log.WithField("text", text).Debug("off-topic message redirected")
		redirect := w.guard.Redirect()
		w.history.Append(types.RoleAssistant, redirect)
		w.appendBubble(types.RoleAssistant, redirect)
		return nil
	}
	return w.prepare(text, w.SelectedProducts())
}

func (w *Widget) prepare(prompt string, items []catalog.Product) *Pending {
	req, err := w.client.BuildRequest(prompt, catalog.Contexts(items), w.history.Messages(), w.webSearch)
	if err != nil {
		w.appendBubble(types.RoleAssistant, err.Error())
		return nil
	}
	w.typing = true
	return &Pending{Request: req, prompt: prompt}
}

// Send performs the network call for p. It does not touch widget state and
// may run off the event loop.
func (w *Widget) Send(ctx context.Context, p *Pending) (string, error) {
	return w.client.Send(ctx, p.Request)
}

// Finish applies the outcome of Send. Success appends the user turn and the
// reply to history; failure shows the error text without touching history.
func (w *Widget) Finish(p *Pending, reply string, err error) {
	w.typing = false
	if err != nil {
		w.log.WithError(err).Warn("assistant request failed")
		w.appendBubble(types.RoleAssistant, err.Error())
		return
	}
	w.history.Append(types.RoleUser, p.prompt)
	w.history.Append(types.RoleAssistant, reply)
	w.appendBubble(types.RoleAssistant, reply)
}

// GenerateRoutine runs the whole routine action on the calling goroutine.
func (w *Widget) GenerateRoutine(ctx context.Context) {
	w.run(ctx, w.StartRoutine())
}

// Chat runs a whole follow-up chat turn on the calling goroutine.
func (w *Widget) Chat(ctx context.Context, text string) {
	w.run(ctx, w.StartChat(text))
}

func (w *Widget) run(ctx context.Context, p *Pending) {
	if p == nil {
		return
	}
	reply, err := w.Send(ctx, p)
	w.Finish(p, reply, err)
}

func (w *Widget) appendBubble(role, content string) {
	w.transcript = append(w.transcript, Bubble{Role: role, Content: content})
}
