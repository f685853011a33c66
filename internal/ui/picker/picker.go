// Package picker provides a numbered option list component.
package picker

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sprs/sprs/internal/ui/styles"
)

// Option represents a picker option with label and value.
type Option struct {
	Label string
	Value string
}

// Model holds the picker state.
type Model struct {
	title    string
	options  []Option
	selected int
	width    int
}

// New creates a new picker with the given title and options.
func New(title string, options []Option) Model {
	return Model{title: title, options: options}
}

// SetWidth sets the rendered width. Zero means fit to content.
func (m Model) SetWidth(width int) Model {
	m.width = width
	return m
}

// SetSelected sets the selected index. Out of range indexes are ignored.
func (m Model) SetSelected(index int) Model {
	if index >= 0 && index < len(m.options) {
		m.selected = index
	}
	return m
}

// Selected returns the currently selected option.
func (m Model) Selected() Option {
	if m.selected >= 0 && m.selected < len(m.options) {
		return m.options[m.selected]
	}
	return Option{}
}

// Lookup returns the option whose Value is v.
func (m Model) Lookup(v string) (Option, bool) {
	for _, opt := range m.options {
		if opt.Value == v {
			return opt, true
		}
	}
	return Option{}, false
}

// Update moves the selection.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "j", "down", "ctrl+n":
			if m.selected < len(m.options)-1 {
				m.selected++
			}
		case "k", "up", "ctrl+p":
			if m.selected > 0 {
				m.selected--
			}
		case "home", "g":
			m.selected = 0
		case "end", "G":
			m.selected = max(len(m.options)-1, 0)
		}
	}
	return m, nil
}

// View renders the title followed by one numbered line per option.
func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(styles.TitleStyle.Render(m.title))
	sb.WriteByte('\n')

	for i, opt := range m.options {
		label := fmt.Sprintf("%s. %s", opt.Value, opt.Label)
		if i == m.selected {
			sb.WriteString(styles.SelectionIndicatorStyle.Render(">"))
			sb.WriteString(lipgloss.NewStyle().Bold(true).Render(label))
		} else {
			sb.WriteString(" " + label)
		}
		if i < len(m.options)-1 {
			sb.WriteByte('\n')
		}
	}

	style := lipgloss.NewStyle()
	if m.width > 0 {
		style = style.Width(m.width)
	}
	return style.Render(sb.String())
}
