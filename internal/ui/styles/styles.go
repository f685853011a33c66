// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	HighlightColor lipgloss.TerminalColor = lipgloss.Color("#7D56F4")
	SubtleColor    lipgloss.TerminalColor = lipgloss.Color("#666666")
	ErrorColor     lipgloss.TerminalColor = lipgloss.Color("#FF8787")
	SuccessColor   lipgloss.TerminalColor = lipgloss.Color("#73F59F")

	// SelectionIndicatorColor is used for the ">" prefix in lists.
	SelectionIndicatorColor = lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}

	TitleStyle              lipgloss.Style
	SubtleStyle             lipgloss.Style
	ErrorStyle              lipgloss.Style
	SuccessStyle            lipgloss.Style
	SelectionIndicatorStyle lipgloss.Style
	PanelStyle              lipgloss.Style
)

func init() {
	rebuild()
}

// Theme carries colour overrides. Empty fields keep the current colour.
type Theme struct {
	Highlight string
	Subtle    string
	Error     string
	Success   string
}

// ApplyTheme replaces the palette and rebuilds every style.
func ApplyTheme(t Theme) {
	set := func(dst *lipgloss.TerminalColor, hex string) {
		if hex != "" {
			*dst = lipgloss.Color(hex)
		}
	}
	set(&HighlightColor, t.Highlight)
	set(&SubtleColor, t.Subtle)
	set(&ErrorColor, t.Error)
	set(&SuccessColor, t.Success)
	rebuild()
}

func rebuild() {
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(HighlightColor)
	SubtleStyle = lipgloss.NewStyle().Foreground(SubtleColor)
	ErrorStyle = lipgloss.NewStyle().Foreground(ErrorColor)
	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	SelectionIndicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(SelectionIndicatorColor)
	PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(SubtleColor).
		Padding(0, 1)
}
