package widget

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"

	"routine-advisor/internal/assistant"
	"routine-advisor/internal/catalog"
	"routine-advisor/internal/prompts"
	"routine-advisor/internal/selection"
	"routine-advisor/internal/store"
	"routine-advisor/internal/types"
)

var testCatalog = []catalog.Product{
	{ID: 1, Name: "Revitalift Serum", Brand: "L'Oréal Paris", Category: "skincare", Description: "Hyaluronic acid serum", Image: "1.png"},
	{ID: 2, Name: "Lash Sensational", Brand: "Maybelline", Category: "makeup", Description: "Volumizing mascara", Image: "2.png"},
	{ID: 3, Name: "Elvive Shampoo", Brand: "L'Oréal Paris", Category: "haircare", Description: "Repairing shampoo", Image: "3.png"},
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// gateway is a fake relay that counts calls and records the last request.
type gateway struct {
	calls int32
	last  types.GatewayRequest
	reply string
}

func (g *gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&g.calls, 1)
	b, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(b, &g.last)
	reply, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"message": map[string]string{"role": "assistant", "content": g.reply}}},
	})
	_, _ = w.Write(reply)
}

func newWidget(t *testing.T, url string, storage store.Storage) *Widget {
	t.Helper()
	if storage == nil {
		storage = store.NewMemoryStore()
	}
	w := New(Options{
		Storage: storage,
		Client:  &assistant.Client{URL: url},
		Prompts: prompts.Default(),
		Log:     quietLogger(),
	})
	w.Start(context.Background(), testCatalog)
	return w
}

func assistantBubbles(v View) []Bubble {
	var out []Bubble
	for _, b := range v.Transcript {
		if b.Role == types.RoleAssistant {
			out = append(out, b)
		}
	}
	return out
}

func TestCategoryFilter(t *testing.T) {
	w := newWidget(t, "", nil)
	w.SetCategory("skincare")
	v := w.Render()
	if len(v.Cards) != 1 || v.Cards[0].ID != 1 {
		t.Fatalf("expected only product 1, got %+v", v.Cards)
	}

	w.SetCategory("")
	if got := len(w.Render().Cards); got != len(testCatalog) {
		t.Fatalf("empty category should match everything, got %d", got)
	}

	w.SetQuery("  MASCARA ")
	v = w.Render()
	if len(v.Cards) != 1 || v.Cards[0].ID != 2 {
		t.Fatalf("query should match description case-insensitively, got %+v", v.Cards)
	}

	w.SetQuery("perfume")
	v = w.Render()
	if len(v.Cards) != 0 || v.ProductsPlaceholder != NoResultsPlaceholder {
		t.Fatalf("expected no-results placeholder, got %+v", v)
	}
}

func TestColdStartPlaceholder(t *testing.T) {
	w := newWidget(t, "", nil)
	v := w.Render()
	if v.ProductsPlaceholder != ColdStartPlaceholder || len(v.Cards) != 0 {
		t.Fatalf("expected cold start placeholder, got %+v", v)
	}
	if v.ProductsPlaceholder == NoResultsPlaceholder {
		t.Fatal("cold start and no-results placeholders must differ")
	}
	w.SetQuery("serum")
	if len(w.Render().Cards) != 1 {
		t.Fatal("a query shows results even before a category is chosen")
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	ctx := context.Background()
	w := newWidget(t, "", nil)
	w.SetCategory("")
	_ = w.Toggle(ctx, 2)
	w.ToggleDetails(1)
	first := w.Render()
	second := w.Render()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("render changed without events:\n%+v\n%+v", first, second)
	}
	first.Transcript = append(first.Transcript, Bubble{Role: "user", Content: "x"})
	if len(w.Render().Transcript) != 0 {
		t.Fatal("view must not alias widget state")
	}
}

func TestCardsReflectSelectionAndDetails(t *testing.T) {
	ctx := context.Background()
	w := newWidget(t, "", nil)
	w.SetCategory("")
	_ = w.Toggle(ctx, 2)
	w.ToggleDetails(3)

	v := w.Render()
	byID := map[int]Card{}
	for _, c := range v.Cards {
		byID[c.ID] = c
	}
	if !byID[2].Selected || byID[2].SelectLabel != "Unselect" || byID[2].AriaPressed != "true" {
		t.Fatalf("card 2 should be selected: %+v", byID[2])
	}
	if byID[1].Selected || byID[1].SelectLabel != "Select" || byID[1].AriaPressed != "false" {
		t.Fatalf("card 1 should not be selected: %+v", byID[1])
	}
	if !byID[3].Expanded || byID[3].DetailsLabel != "Hide Details" || byID[3].AriaExpanded != "true" {
		t.Fatalf("card 3 should be expanded: %+v", byID[3])
	}
	w.ToggleDetails(3)
	if w.Render().Cards[2].Expanded {
		t.Fatal("second toggle collapses details")
	}
}

func TestChipsFollowCatalogOrder(t *testing.T) {
	ctx := context.Background()
	w := newWidget(t, "", nil)
	if v := w.Render(); v.SelectedPlaceholder != NoSelectionMessage || len(v.Chips) != 0 {
		t.Fatalf("expected selection placeholder, got %+v", v)
	}
	_ = w.Toggle(ctx, 3)
	_ = w.Toggle(ctx, 1)
	_ = w.Toggle(ctx, 99) // not in catalog
	v := w.Render()
	if len(v.Chips) != 2 || v.Chips[0].ID != 1 || v.Chips[1].ID != 3 {
		t.Fatalf("chips should be catalog-ordered selected products, got %+v", v.Chips)
	}
	if v.Chips[0].RemoveLabel != "Remove Revitalift Serum" {
		t.Fatalf("unexpected remove label %q", v.Chips[0].RemoveLabel)
	}

	_ = w.Remove(ctx, 1)
	if v := w.Render(); len(v.Chips) != 1 || v.Chips[0].ID != 3 {
		t.Fatalf("remove should drop chip 1, got %+v", v.Chips)
	}
	_ = w.Clear(ctx)
	if v := w.Render(); len(v.Chips) != 0 {
		t.Fatalf("clear should drop all chips, got %+v", v.Chips)
	}
}

func TestSelectionSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	storage := store.NewMemoryStore()
	w := newWidget(t, "", storage)
	_ = w.Toggle(ctx, 2)
	_ = w.ToggleDirection(ctx)

	restarted := newWidget(t, "", storage)
	v := restarted.Render()
	if len(v.Chips) != 1 || v.Chips[0].ID != 2 {
		t.Fatalf("selection not restored: %+v", v.Chips)
	}
	if v.Direction != selection.RTL {
		t.Fatalf("direction not restored: %s", v.Direction)
	}
}

func TestRoutineSuccess(t *testing.T) {
	ctx := context.Background()
	gw := &gateway{reply: "AM: cleanse. PM: serum."}
	srv := httptest.NewServer(gw)
	defer srv.Close()

	w := newWidget(t, srv.URL, nil)
	w.SetWebSearch(true)
	_ = w.Toggle(ctx, 2)
	_ = w.Toggle(ctx, 1)
	w.GenerateRoutine(ctx)

	p := prompts.Default()
	if len(gw.last.Selected) != 2 || gw.last.Selected[0].ID != 1 || gw.last.Selected[1].ID != 2 {
		t.Fatalf("selected payload should be catalog-ordered projections, got %+v", gw.last.Selected)
	}
	if !gw.last.EnableWebSearch {
		t.Fatal("web search flag not forwarded")
	}
	last := gw.last.Messages[len(gw.last.Messages)-1]
	if last.Role != types.RoleUser || last.Content != p.RoutinePrompt {
		t.Fatalf("last message should be the routine prompt, got %+v", last)
	}

	v := w.Render()
	if len(v.Transcript) != 2 || v.Transcript[0].Content != p.RoutineDisplay || v.Transcript[1].Content != gw.reply {
		t.Fatalf("unexpected transcript %+v", v.Transcript)
	}
	h := w.History()
	if len(h) != 2 || h[0].Content != p.RoutinePrompt || h[1].Content != gw.reply {
		t.Fatalf("unexpected history %+v", h)
	}
	if v.Typing != "" {
		t.Fatal("typing indicator should be cleared")
	}
}

func TestRoutineGatewayFailure(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	w := newWidget(t, url, nil)
	_ = w.Toggle(ctx, 1)
	_ = w.Toggle(ctx, 2)
	before := len(w.History())
	w.GenerateRoutine(ctx)

	bubbles := assistantBubbles(w.Render())
	if len(bubbles) != 1 {
		t.Fatalf("expected exactly one assistant message, got %+v", bubbles)
	}
	if !strings.Contains(bubbles[0].Content, "gateway request failed") {
		t.Fatalf("expected error text, got %q", bubbles[0].Content)
	}
	if len(w.History()) != before {
		t.Fatal("errors must not enter history")
	}
	if w.Typing() {
		t.Fatal("typing must be cleared after failure")
	}
}

func TestRoutineEmptySelection(t *testing.T) {
	gw := &gateway{}
	srv := httptest.NewServer(gw)
	defer srv.Close()
	w := newWidget(t, srv.URL, nil)
	w.GenerateRoutine(context.Background())

	v := w.Render()
	if len(v.Transcript) != 1 || v.Transcript[0].Content != prompts.Default().EmptySelection {
		t.Fatalf("expected empty selection message, got %+v", v.Transcript)
	}
	if atomic.LoadInt32(&gw.calls) != 0 {
		t.Fatal("gateway must not be called")
	}
}

func TestRoutineWithoutGatewayURL(t *testing.T) {
	ctx := context.Background()
	w := newWidget(t, "", nil)
	_ = w.Toggle(ctx, 1)
	w.GenerateRoutine(ctx)
	bubbles := assistantBubbles(w.Render())
	if len(bubbles) != 1 || bubbles[0].Content != assistant.ErrGatewayNotConfigured.Error() {
		t.Fatalf("expected configuration error bubble, got %+v", bubbles)
	}
	if w.Typing() {
		t.Fatal("typing must not be left on")
	}
}

func TestChatOffTopicNeverReachesGateway(t *testing.T) {
	gw := &gateway{}
	srv := httptest.NewServer(gw)
	defer srv.Close()
	w := newWidget(t, srv.URL, nil)

	w.Chat(context.Background(), "What's the capital of France?")

	if atomic.LoadInt32(&gw.calls) != 0 {
		t.Fatal("off-topic message reached the gateway")
	}
	bubbles := assistantBubbles(w.Render())
	if len(bubbles) != 1 || bubbles[0].Content != prompts.Default().TopicRedirect {
		t.Fatalf("expected exactly one redirect, got %+v", bubbles)
	}
}

func TestChatCarriesHistory(t *testing.T) {
	ctx := context.Background()
	gw := &gateway{reply: "Use it at night."}
	srv := httptest.NewServer(gw)
	defer srv.Close()
	w := newWidget(t, srv.URL, nil)

	w.Chat(ctx, "Can I use retinol daily?")
	w.Chat(ctx, "And with vitamin C serum?")

	msgs := gw.last.Messages
	// system, user, assistant, user
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %+v", msgs)
	}
	if msgs[0].Role != types.RoleSystem || msgs[0].Content != prompts.Default().ClientSystem {
		t.Fatalf("first message should be the client instruction, got %+v", msgs[0])
	}
	if msgs[1].Content != "Can I use retinol daily?" || msgs[2].Content != "Use it at night." {
		t.Fatalf("history not carried: %+v", msgs)
	}
	if len(gw.last.Selected) != 0 || gw.last.Selected == nil {
		t.Fatalf("selected should be an empty array, got %#v", gw.last.Selected)
	}
	if w.StartChat("   ") != nil {
		t.Fatal("blank input is ignored")
	}
}

func TestStartIgnoredWhileTyping(t *testing.T) {
	ctx := context.Background()
	w := newWidget(t, "http://gateway.invalid", nil)
	_ = w.Toggle(ctx, 1)
	p := w.StartRoutine()
	if p == nil || !w.Typing() {
		t.Fatal("expected a pending request with typing shown")
	}
	if w.Render().Typing != TypingIndicator {
		t.Fatal("typing indicator not rendered")
	}
	if w.StartRoutine() != nil || w.StartChat("skin question") != nil {
		t.Fatal("new requests are ignored while one is in flight")
	}
	w.Finish(p, "done", nil)
	if w.Typing() {
		t.Fatal("finish clears typing")
	}
}

func TestInitCatalogFailure(t *testing.T) {
	ctx := context.Background()
	storage := store.NewMemoryStore()
	_ = storage.Set(ctx, selection.StorageKey, "[1]")
	w := New(Options{Storage: storage, Prompts: prompts.Default(), Log: quietLogger()})

	if err := w.Init(ctx, filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected load error")
	}
	v := w.Render()
	if v.ProductsPlaceholder != catalog.LoadFailedMessage {
		t.Fatalf("expected load failure placeholder, got %q", v.ProductsPlaceholder)
	}
	if err := w.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if raw, _, _ := storage.Get(ctx, selection.StorageKey); raw != "[1]" {
		t.Fatalf("persisted selection must be untouched before init completes, got %q", raw)
	}
}

func TestInitFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	b, _ := json.Marshal(map[string]any{"products": testCatalog})
	if err := os.WriteFile(path, b, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	w := New(Options{Storage: store.NewMemoryStore(), Prompts: prompts.Default(), Log: quietLogger()})
	if err := w.Init(context.Background(), path); err != nil {
		t.Fatalf("init: %v", err)
	}
	if len(w.Products()) != 3 || len(w.Render().Categories) != 3 {
		t.Fatalf("unexpected catalog %+v", w.Products())
	}
}
