package output

import "github.com/charmbracelet/lipgloss"

// Styles is the style set for text-mode rendering. The palette sticks to
// ANSI 256 codes that stay readable on both dark and light terminals.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Success lipgloss.Style

	// ConfName styles config names in listings.
	ConfName lipgloss.Style
	// Label styles the right-aligned column labels of an entry listing.
	Label lipgloss.Style
	// Match styles keyword occurrences in search results.
	Match lipgloss.Style
}

func newStyles(lr *lipgloss.Renderer) *Styles {
	return &Styles{
		Header1:  lr.NewStyle().Bold(true).Underline(true),
		Header2:  lr.NewStyle().Bold(true),
		Bold:     lr.NewStyle().Bold(true),
		Muted:    lr.NewStyle().Foreground(lipgloss.Color("246")),
		Error:    lr.NewStyle().Bold(true).Foreground(lipgloss.Color("160")),
		Warning:  lr.NewStyle().Foreground(lipgloss.Color("130")),
		Info:     lr.NewStyle().Foreground(lipgloss.Color("27")),
		Success:  lr.NewStyle().Foreground(lipgloss.Color("28")),
		ConfName: lr.NewStyle().Bold(true).Foreground(lipgloss.Color("27")),
		Label:    lr.NewStyle().Bold(true).Foreground(lipgloss.Color("130")),
		Match:    lr.NewStyle().Bold(true).Italic(true).Foreground(lipgloss.Color("160")),
	}
}
