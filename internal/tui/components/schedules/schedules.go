// Package schedules lists the stored schedules.
package schedules

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/rota/internal/models"
)

// OpenDayMsg asks the parent to show a day.
type OpenDayMsg struct {
	Day string
}

type Item struct {
	Summary models.ScheduleSummary
}

func (i Item) Title() string {
	title := fmt.Sprintf("%s r%d", i.Summary.Day, i.Summary.Revision)
	if i.Summary.Accepted {
		title += " ✓"
	}
	return title
}

func (i Item) Description() string {
	return fmt.Sprintf("%s | %d employees | %d violations | %s",
		i.Summary.Source, i.Summary.Employees, i.Summary.Violations, i.Summary.CreatedAt.Local().Format("2006-01-02 15:04"))
}

func (i Item) FilterValue() string { return i.Summary.Day }

type KeyMap struct {
	Open key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(summaries []models.ScheduleSummary, width, height int) Model {
	l := list.New(items(summaries), list.NewDefaultDelegate(), width, height)
	l.Title = "Schedules"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Open}
	}
	return Model{list: l, keys: keys}
}

func items(summaries []models.ScheduleSummary) []list.Item {
	out := make([]list.Item, len(summaries))
	for i, s := range summaries {
		out[i] = Item{Summary: s}
	}
	return out
}

func (m *Model) SetSchedules(summaries []models.ScheduleSummary) {
	m.list.SetItems(items(summaries))
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		if key.Matches(msg, m.keys.Open) {
			if i, ok := m.list.SelectedItem().(Item); ok {
				day := i.Summary.Day
				return m, func() tea.Msg { return OpenDayMsg{Day: day} }
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No schedules yet.\n  Press 'g' on the timeline to solve a day."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
