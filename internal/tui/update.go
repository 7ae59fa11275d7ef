package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/rota/internal/tui/components/schedules"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == StateConfirmAccept {
		return m.updateConfirm(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case schedules.OpenDayMsg:
		m.day = msg.Day
		m.tab = TabTimeline
		m.status = ""
		m.loadDay()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.tab = (m.tab + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.tab = (m.tab - 1 + tabCount) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

		if m.tab != TabSchedules {
			switch {
			case key.Matches(msg, m.keys.PrevDay):
				m.shiftDay(-1)
				return m, nil
			case key.Matches(msg, m.keys.NextDay):
				m.shiftDay(1)
				return m, nil
			case key.Matches(msg, m.keys.Generate):
				m.solve()
				return m, nil
			case key.Matches(msg, m.keys.Accept):
				switch {
				case m.schedule == nil:
					m.status = "Nothing to accept for " + m.day
				case m.schedule.AcceptedAt != nil:
					m.status = m.day + " is already accepted"
				case !m.passed:
					return m, m.startConfirmAccept()
				default:
					m.accept()
				}
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	switch m.tab {
	case TabTimeline:
		m.timeline, cmd = m.timeline.Update(msg)
	case TabReport:
		m.report, cmd = m.report.Update(msg)
	case TabSchedules:
		m.schedules, cmd = m.schedules.Update(msg)
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = StateBrowse
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if *m.confirmed {
			m.accept()
		} else {
			m.status = "Accept cancelled"
		}
		m.state = StateBrowse
		m.form = nil
		return m, nil
	case huh.StateAborted:
		m.state = StateBrowse
		m.form = nil
		return m, nil
	}
	return m, cmd
}
