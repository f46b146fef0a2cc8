// Package tui implements the interactive browse mode: a filterable list of
// indexed configs with a detail pane for the selected entry.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/confex-labs/confex/internal/index"
)

const detailLabelWidth = 15

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	detailStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)
)

// Config configures a browse session.
type Config struct {
	// Entries are the configs to browse.
	Entries []*index.Entry
	// Title is shown above the list.
	Title string
}

// entryItem adapts an index entry to the bubbles list.
type entryItem struct {
	entry *index.Entry
}

func (i entryItem) Title() string { return i.entry.Name() }

func (i entryItem) Description() string {
	return i.entry.Family + "  " + i.entry.File
}

func (i entryItem) FilterValue() string { return i.entry.Name() }

// browseModel is the bubbletea model for the browse session.
type browseModel struct {
	list     list.Model
	detail   *index.Entry
	width    int
	quitting bool
}

func newBrowseModel(cfg Config) browseModel {
	items := make([]list.Item, len(cfg.Entries))
	for i, e := range cfg.Entries {
		items[i] = entryItem{entry: e}
	}

	title := cfg.Title
	if title == "" {
		title = "Configs"
	}

	l := list.New(items, list.NewDefaultDelegate(), 80, 24)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		}
	}

	return browseModel{list: l}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// The filter input owns the keyboard while it is active.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case "esc":
			if m.detail != nil {
				m.detail = nil
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit
		case "enter":
			if m.detail != nil {
				m.detail = nil
				return m, nil
			}
			if item, ok := m.list.SelectedItem().(entryItem); ok {
				m.detail = item.entry
			}
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.list.SetSize(msg.Width, msg.Height-1)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m browseModel) View() string {
	if m.quitting {
		return ""
	}
	if m.detail != nil {
		return m.detailView()
	}
	return m.list.View()
}

// detailView renders every indexed column of the selected entry.
func (m browseModel) detailView() string {
	e := m.detail

	var b strings.Builder
	b.WriteString(titleStyle.Render(e.Name()))
	b.WriteString("\n\n")
	writeDetailLine(&b, "family", e.Family)
	writeDetailLine(&b, "file", e.File)
	writeDetailLine(&b, "json_file", e.JSONFile)
	for _, col := range e.Columns() {
		writeDetailLine(&b, col, strings.Join(e.Strings(col), ", "))
	}

	body := detailStyle.Render(strings.TrimRight(b.String(), "\n"))
	help := helpStyle.Render("enter/esc back • q quit")
	return lipgloss.JoinVertical(lipgloss.Left, body, help)
}

func writeDetailLine(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-*s", detailLabelWidth, label)), value)
}

// Browse opens the interactive config browser and blocks until the user
// quits.
func Browse(cfg Config) error {
	if len(cfg.Entries) == 0 {
		return fmt.Errorf("no configs to browse")
	}

	p := tea.NewProgram(newBrowseModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
