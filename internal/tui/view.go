package tui

import (
	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch {
	case m.state == StateConfirmAccept:
		content = lipgloss.Place(m.width, m.height-4,
			lipgloss.Center, lipgloss.Center,
			lipgloss.JoinVertical(lipgloss.Center,
				dangerStyle.Render("Validation failed"),
				"",
				m.form.View(),
			),
		)
	case m.tab == TabTimeline:
		content = docStyle.Render(m.timeline.View())
	case m.tab == TabReport:
		content = docStyle.Render(m.report.View())
	case m.tab == TabSchedules:
		content = docStyle.Render(m.schedules.View())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		statusStyle.Render(m.status),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range tabTitles {
		if m.tab == Tab(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	tabs = append(tabs, dayStyle.Render(m.day))
	if m.schedule != nil {
		label := "draft"
		if m.schedule.AcceptedAt != nil {
			label = "accepted"
		}
		tabs = append(tabs, statusStyle.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}
