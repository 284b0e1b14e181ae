package tui

import (
	"fmt"
	"strings"

	"easel/internal/store"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// summaries adapts a canvas list to fuzzy.Source.
type summaries []store.Summary

func (s summaries) String(i int) string { return s[i].Name }
func (s summaries) Len() int            { return len(s) }

type picker struct {
	items   summaries
	matches fuzzy.Matches
	cursor  int
	input   textinput.Model
}

func newPicker() picker {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "filter canvases"
	input.CharLimit = 128
	input.Width = 40
	input.Focus()
	return picker{input: input}
}

func (p *picker) setItems(list []store.Summary) {
	p.items = list
	p.filter()
}

// filter re-ranks items against the input. An empty filter keeps list order.
func (p *picker) filter() {
	query := p.input.Value()
	if strings.TrimSpace(query) == "" {
		p.matches = make(fuzzy.Matches, len(p.items))
		for i, item := range p.items {
			p.matches[i] = fuzzy.Match{Str: item.Name, Index: i}
		}
	} else {
		p.matches = fuzzy.FindFrom(query, p.items)
	}
	if p.cursor >= len(p.matches) {
		p.cursor = max(len(p.matches)-1, 0)
	}
}

func (p picker) selected() (store.Summary, bool) {
	if p.cursor < 0 || p.cursor >= len(p.matches) {
		return store.Summary{}, false
	}
	return p.items[p.matches[p.cursor].Index], true
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "up", "ctrl+p":
		if m.picker.cursor > 0 {
			m.picker.cursor--
		}
		return m, nil
	case "down", "ctrl+n":
		if m.picker.cursor < len(m.picker.matches)-1 {
			m.picker.cursor++
		}
		return m, nil
	case "enter":
		if sel, ok := m.picker.selected(); ok {
			m.mode = ModeLoading
			return m, loadCanvas(m.api, sel.ID)
		}
		return m, nil
	case "ctrl+o":
		return m.startPrompt(promptCanvasSize, fmt.Sprintf("%dx%d", defaultCanvasWidth, defaultCanvasHeight))
	}
	var cmd tea.Cmd
	m.picker.input, cmd = m.picker.input.Update(msg)
	m.picker.filter()
	return m, cmd
}

var (
	pickerCursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3b82f6")).Bold(true)
	pickerMatchStyle  = lipgloss.NewStyle().Underline(true)
)

func (p picker) view(width, height int, errMsg string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Open a canvas"))
	b.WriteString("\n\n")
	b.WriteString(p.input.View())
	b.WriteString("\n\n")

	rows := max(height-7, 1)
	start := 0
	if p.cursor >= rows {
		start = p.cursor - rows + 1
	}
	for i := start; i < len(p.matches) && i < start+rows; i++ {
		match := p.matches[i]
		line := highlight(match.Str, match.MatchedIndexes)
		if i == p.cursor {
			b.WriteString(pickerCursorStyle.Render("▸ ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	if len(p.matches) == 0 {
		b.WriteString(statusStyle.Render("  no canvases"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if errMsg != "" {
		b.WriteString(errorStyle.Render(errMsg))
	} else {
		b.WriteString(statusStyle.Render(fmt.Sprintf("%d canvases • enter open • ctrl+o new • esc quit", len(p.items))))
	}
	return lipgloss.NewStyle().MaxWidth(max(width, 1)).Render(b.String())
}

func highlight(s string, indexes []int) string {
	if len(indexes) == 0 {
		return s
	}
	matched := make(map[int]bool, len(indexes))
	for _, i := range indexes {
		matched[i] = true
	}
	var b strings.Builder
	for i, r := range s {
		if matched[i] {
			b.WriteString(pickerMatchStyle.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
