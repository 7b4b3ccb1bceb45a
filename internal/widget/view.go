package widget

import (
	"routine-advisor/internal/catalog"
	"routine-advisor/internal/selection"
)

const (
	ColdStartPlaceholder = "Select a category to view products"
	NoResultsPlaceholder = "No products found."
	NoSelectionMessage   = "Your selected products will appear here."
	TypingIndicator      = "Assistant is typing…"
)

// View is a rendered snapshot. It shares no memory with the widget.
type View struct {
	Direction  selection.Direction
	Categories []string
	Filter     catalog.Filter
	WebSearch  bool

	// ProductsPlaceholder replaces Cards when non-empty.
	ProductsPlaceholder string
	Cards               []Card

	// SelectedPlaceholder replaces Chips when non-empty.
	SelectedPlaceholder string
	Chips               []Chip

	Transcript []Bubble
	Typing     string
}

type Card struct {
	ID          int
	Name        string
	Brand       string
	Category    string
	Description string
	Image       string
	Selected    bool
	Expanded    bool
	// Button labels and ARIA state as the page shows them.
	SelectLabel  string
	DetailsLabel string
	AriaPressed  string
	AriaExpanded string
}

type Chip struct {
	ID          int
	Name        string
	RemoveLabel string
}

type Bubble struct {
	Role    string
	Content string
}

// Render computes the view from current state. It has no side effects, so
// calling it twice without intervening events yields equal views.
func (w *Widget) Render() View {
	v := View{
		Direction:  w.dir,
		Categories: catalog.Categories(w.products),
		Filter:     w.filter,
		WebSearch:  w.webSearch,
		Transcript: append([]Bubble(nil), w.transcript...),
	}
	if w.typing {
		v.Typing = TypingIndicator
	}

	switch {
	case w.loadFailed:
		v.ProductsPlaceholder = catalog.LoadFailedMessage
	case !w.categoryChosen && w.filter.Query == "":
		v.ProductsPlaceholder = ColdStartPlaceholder
	default:
		for _, p := range catalog.Filtered(w.products, w.filter) {
			v.Cards = append(v.Cards, w.card(p))
		}
		if len(v.Cards) == 0 {
			v.ProductsPlaceholder = NoResultsPlaceholder
		}
	}

	for _, p := range w.SelectedProducts() {
		v.Chips = append(v.Chips, Chip{ID: p.ID, Name: p.Name, RemoveLabel: "Remove " + p.Name})
	}
	if len(v.Chips) == 0 {
		v.SelectedPlaceholder = NoSelectionMessage
	}
	return v
}

func (w *Widget) card(p catalog.Product) Card {
	c := Card{
		ID:           p.ID,
		Name:         p.Name,
		Brand:        p.Brand,
		Category:     p.Category,
		Description:  p.Description,
		Image:        p.Image,
		Selected:     w.selection.Has(p.ID),
		Expanded:     w.expanded[p.ID],
		SelectLabel:  "Select",
		DetailsLabel: "Details",
		AriaPressed:  "false",
		AriaExpanded: "false",
	}
	if c.Selected {
		c.SelectLabel = "Unselect"
		c.AriaPressed = "true"
	}
	if c.Expanded {
		c.DetailsLabel = "Hide Details"
		c.AriaExpanded = "true"
	}
	return c
}
