// Package tui is the terminal front end of the product-selection widget.
// Every state change happens in Update; network calls run as commands whose
// results come back as messages.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"routine-advisor/internal/selection"
	"routine-advisor/internal/types"
	"routine-advisor/internal/widget"
)

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeChat
)

const maxTranscript = 12

// replyMsg carries the outcome of a gateway call back to the event loop.
type replyMsg struct {
	pending *widget.Pending
	reply   string
	err     error
}

type Model struct {
	ctx     context.Context
	w       *widget.Widget
	log     logrus.FieldLogger
	timeout time.Duration

	mode     mode
	cursor   int
	category int // 0 is "all", i is Categories[i-1]
	input    string
	status   string
	width    int
	height   int
}

// New wraps an initialized widget. A zero timeout leaves requests unbounded.
func New(ctx context.Context, w *widget.Widget, log logrus.FieldLogger, timeout time.Duration) Model {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return Model{ctx: ctx, w: w, log: log, timeout: timeout, width: 80}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case replyMsg:
		m.w.Finish(msg.pending, msg.reply, msg.err)
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeChat:
			return m.updateChat(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	view := m.w.Render()
	m.status = ""
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(view.Cards)-1 {
			m.cursor++
		}
	case " ", "enter":
		if card, ok := m.current(view); ok {
			m.report(m.w.Toggle(m.ctx, card.ID), "save selection")
		}
	case "d":
		if card, ok := m.current(view); ok {
			m.w.ToggleDetails(card.ID)
		}
	case "tab", "c":
		m.cycleCategory(view.Categories, 1)
	case "shift+tab":
		m.cycleCategory(view.Categories, -1)
	case "/":
		m.mode = modeSearch
	case "x":
		m.report(m.w.Clear(m.ctx), "clear selection")
	case "g":
		return m, m.send(m.w.StartRoutine())
	case "i":
		m.mode = modeChat
		m.input = ""
	case "w":
		m.w.SetWebSearch(!m.w.WebSearch())
	case "t":
		m.report(m.w.ToggleDirection(m.ctx), "save direction")
	}
	m.clampCursor()
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	query := m.w.Filter().Query
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.mode = modeBrowse
	case tea.KeyBackspace:
		if r := []rune(query); len(r) > 0 {
			m.w.SetQuery(string(r[:len(r)-1]))
		}
	case tea.KeySpace:
		m.w.SetQuery(query + " ")
	case tea.KeyRunes:
		m.w.SetQuery(query + string(msg.Runes))
	}
	m.clampCursor()
	return m, nil
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.input = ""
	case tea.KeyEnter:
		text := m.input
		m.input = ""
		m.mode = modeBrowse
		return m, m.send(m.w.StartChat(text))
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m, nil
}

// send turns a pending request into a command. Only the network call runs
// off the event loop.
func (m Model) send(p *widget.Pending) tea.Cmd {
	if p == nil {
		return nil
	}
	ctx, w, timeout := m.ctx, m.w, m.timeout
	return func() tea.Msg {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		reply, err := w.Send(ctx, p)
		return replyMsg{pending: p, reply: reply, err: err}
	}
}

func (m *Model) report(err error, action string) {
	if err == nil {
		return
	}
	m.log.WithError(err).Warn(action + " failed")
	m.status = fmt.Sprintf("could not %s: %v", action, err)
}

func (m *Model) current(view widget.View) (widget.Card, bool) {
	if m.cursor < 0 || m.cursor >= len(view.Cards) {
		return widget.Card{}, false
	}
	return view.Cards[m.cursor], true
}

func (m *Model) cycleCategory(categories []string, step int) {
	n := len(categories) + 1
	m.category = ((m.category+step)%n + n) % n
	if m.category == 0 {
		m.w.SetCategory("")
	} else {
		m.w.SetCategory(categories[m.category-1])
	}
	m.cursor = 0
}

func (m *Model) clampCursor() {
	n := len(m.w.Render().Cards)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) View() string {
	v := m.w.Render()
	var b strings.Builder

	web := "off"
	if v.WebSearch {
		web = "on"
	}
	b.WriteString(titleStyle.Render("L'Oréal Routine Advisor"))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  dir:%s  web search:%s", v.Direction, web)))
	b.WriteString("\n\n")

	category := "All"
	if v.Filter.Category != "" {
		category = v.Filter.Category
	}
	search := v.Filter.Query
	if m.mode == modeSearch {
		search += "▏"
	}
	b.WriteString(textStyle.Render(fmt.Sprintf("Category: %s   Search: %s", category, search)))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Products"))
	b.WriteString("\n")
	if v.ProductsPlaceholder != "" {
		b.WriteString(mutedStyle.Render(v.ProductsPlaceholder))
		b.WriteString("\n")
	}
	for i, c := range v.Cards {
		b.WriteString(m.renderCard(i, c))
	}
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Selected"))
	b.WriteString("\n")
	if v.SelectedPlaceholder != "" {
		b.WriteString(mutedStyle.Render(v.SelectedPlaceholder))
	} else {
		chips := make([]string, 0, len(v.Chips))
		for _, c := range v.Chips {
			chips = append(chips, chipStyle.Render(c.Name))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, chips...))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderChat(v))

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(m.help()))

	out := b.String()
	if v.Direction == selection.RTL && m.width > 0 {
		out = lipgloss.NewStyle().Width(m.width).Align(lipgloss.Right).Render(out)
	}
	return out
}

func (m Model) renderCard(i int, c widget.Card) string {
	mark := "[ ]"
	if c.Selected {
		mark = "[x]"
	}
	line := fmt.Sprintf("%s %s — %s", mark, c.Name, c.Brand)
	switch {
	case i == m.cursor && m.mode == modeBrowse:
		line = cursorStyle.Render(line)
	case c.Selected:
		line = selectedStyle.Render(line)
	default:
		line = textStyle.Render(line)
	}
	out := line + "\n"
	if c.Expanded {
		out += mutedStyle.Render("    "+c.Description) + "\n"
	}
	return out
}

func (m Model) renderChat(v widget.View) string {
	var b strings.Builder
	transcript := v.Transcript
	if len(transcript) > maxTranscript {
		transcript = transcript[len(transcript)-maxTranscript:]
	}
	for _, bubble := range transcript {
		if bubble.Role == types.RoleUser {
			b.WriteString(userStyle.Render("you: "))
		} else {
			b.WriteString(assistantStyle.Render("advisor: "))
		}
		b.WriteString(assistantStyle.Render(bubble.Content))
		b.WriteString("\n")
	}
	if v.Typing != "" {
		b.WriteString(mutedStyle.Render(v.Typing))
		b.WriteString("\n")
	}
	if m.mode == modeChat {
		b.WriteString(boxStyle.Render("> " + m.input + "▏"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) help() string {
	switch m.mode {
	case modeSearch:
		return "type to filter · enter/esc done"
	case modeChat:
		return "enter send · esc cancel"
	default:
		return "↑/↓ move · space select · d details · tab category · / search · x clear · g routine · i ask · w web · t rtl · q quit"
	}
}
