// Package widget is the UI-independent product-selection widget: it owns the
// catalog, the selection, the filter and the conversation, reacts to UI
// events, and renders a View snapshot for whatever front end drives it.
package widget

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"routine-advisor/internal/assistant"
	"routine-advisor/internal/catalog"
	"routine-advisor/internal/prompts"
	"routine-advisor/internal/selection"
	"routine-advisor/internal/store"
	"routine-advisor/internal/types"
)

// Widget is driven by a single event loop and is not safe for concurrent use.
// Only Send may be called off the loop.
type Widget struct {
	storage store.Storage
	client  *assistant.Client
	guard   *assistant.TopicGuard
	prompts prompts.Prompts
	log     logrus.FieldLogger

	products       []catalog.Product
	ready          bool
	loadFailed     bool
	selection      *selection.Store
	filter         catalog.Filter
	categoryChosen bool
	expanded       map[int]bool
	dir            selection.Direction

	history    assistant.History
	transcript []Bubble
	typing     bool
	webSearch  bool
}

type Options struct {
	Storage   store.Storage
	Client    *assistant.Client
	Prompts   prompts.Prompts
	WebSearch bool
	Log       logrus.FieldLogger
}

func New(opts Options) *Widget {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	client := &assistant.Client{}
	if opts.Client != nil {
		c := *opts.Client
		client = &c
	}
	if client.System == "" {
		client.System = opts.Prompts.ClientSystem
	}
	return &Widget{
		storage:   opts.Storage,
		client:    client,
		guard:     assistant.NewTopicGuard(opts.Prompts.TopicKeywords, opts.Prompts.TopicRedirect),
		prompts:   opts.Prompts,
		log:       log,
		selection: selection.New(opts.Storage, log),
		expanded:  make(map[int]bool),
		dir:       selection.LTR,
		webSearch: opts.WebSearch,
	}
}

// Init restores the direction, loads the catalog from source, then restores
// the persisted selection. When the catalog cannot be loaded the widget shows
// catalog.LoadFailedMessage and initialization stops there.
func (w *Widget) Init(ctx context.Context, source string) error {
	w.dir = selection.LoadDirection(ctx, w.storage)
	products, err := catalog.Load(ctx, source)
	if err != nil {
		w.loadFailed = true
		w.log.WithError(err).WithField("source", source).Error("failed to load catalog")
		return errors.Wrap(err, "load catalog")
	}
	w.Start(ctx, products)
	return nil
}

// Start is Init with an already loaded catalog.
func (w *Widget) Start(ctx context.Context, products []catalog.Product) {
	w.products = products
	w.loadFailed = false
	w.selection.Load(ctx)
	w.dir = selection.LoadDirection(ctx, w.storage)
	w.ready = true
}

func (w *Widget) Products() []catalog.Product { return w.products }

// SelectedProducts returns the selected catalog entries in catalog order.
func (w *Widget) SelectedProducts() []catalog.Product {
	return catalog.Selected(w.products, w.selection.Has)
}

func (w *Widget) SetCategory(category string) {
	w.filter.Category = category
	w.categoryChosen = true
}

func (w *Widget) SetQuery(query string) { w.filter.Query = query }

func (w *Widget) Filter() catalog.Filter { return w.filter }

// Toggle flips selection of id. Selection events are ignored until the
// catalog is loaded.
func (w *Widget) Toggle(ctx context.Context, id int) error {
	if !w.ready {
		return nil
	}
	return w.selection.Toggle(ctx, id)
}

func (w *Widget) Remove(ctx context.Context, id int) error {
	if !w.ready {
		return nil
	}
	return w.selection.Remove(ctx, id)
}

func (w *Widget) Clear(ctx context.Context) error {
	if !w.ready {
		return nil
	}
	return w.selection.Clear(ctx)
}

func (w *Widget) ToggleDetails(id int) {
	if w.expanded[id] {
		delete(w.expanded, id)
		return
	}
	w.expanded[id] = true
}

func (w *Widget) ToggleDirection(ctx context.Context) error {
	next, err := selection.ToggleDirection(ctx, w.storage, w.dir)
	w.dir = next
	return err
}

func (w *Widget) SetWebSearch(on bool) { w.webSearch = on }

func (w *Widget) WebSearch() bool { return w.webSearch }

func (w *Widget) Typing() bool { return w.typing }

// History returns a copy of the conversation sent to the gateway.
func (w *Widget) History() []types.Message { return w.history.Messages() }
