// Package tui is the interactive day viewer: the timeline, its validation
// report and the list of stored schedules.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/rota/internal/constants"
	"github.com/julianstephens/rota/internal/logger"
	"github.com/julianstephens/rota/internal/models"
	"github.com/julianstephens/rota/internal/planner"
	"github.com/julianstephens/rota/internal/storage"
	tl "github.com/julianstephens/rota/internal/timeline"
	"github.com/julianstephens/rota/internal/tui/components/schedules"
	"github.com/julianstephens/rota/internal/tui/components/timeline"
)

type Tab int

const (
	TabTimeline Tab = iota
	TabReport
	TabSchedules
	tabCount
)

var tabTitles = []string{"Timeline", "Report", "Schedules"}

type SessionState int

const (
	StateBrowse SessionState = iota
	StateConfirmAccept
)

type Model struct {
	planner   *planner.Planner
	days      []string
	day       string
	tab       Tab
	state     SessionState
	keys      KeyMap
	help      help.Model
	timeline  timeline.Model
	report    timeline.Model
	schedules schedules.Model
	schedule  *models.Schedule
	passed    bool
	form      *huh.Form
	confirmed *bool
	status    string
	quitting  bool
	width     int
	height    int
}

// NewModel opens the viewer on day.
func NewModel(p *planner.Planner, day string) Model {
	days := constants.Days
	if r, err := p.Roster(); err == nil && len(r.Days()) > 0 {
		days = r.Days()
	}

	m := Model{
		planner:   p,
		days:      days,
		day:       day,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		timeline:  timeline.New(0, 0, "No schedule for this day. Press 'g' to solve it."),
		report:    timeline.New(0, 0, "Nothing to validate."),
		schedules: schedules.New(nil, 0, 0),
	}
	m.loadDay()
	return m
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.tab {
	case TabTimeline, TabReport:
		keys = append(keys, m.keys.PrevDay, m.keys.NextDay, m.keys.Generate, m.keys.Accept)
	case TabSchedules:
		keys = append(keys, m.keys.Enter)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.PrevDay, m.keys.NextDay, m.keys.Enter}
	actions := []key.Binding{m.keys.Generate, m.keys.Accept}
	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Day returns the day being shown.
func (m Model) Day() string {
	return m.day
}

// loadDay shows the latest stored schedule of the current day.
func (m *Model) loadDay() {
	m.schedule = nil
	m.passed = false
	m.timeline.SetContent("")
	m.report.SetContent("")
	m.refreshSchedules()

	sched, err := m.planner.Store().GetLatestSchedule(m.day)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.status = fmt.Sprintf("Failed to load %s: %v", m.day, err)
			logger.Error("Failed to load schedule", "day", m.day, "error", err)
		}
		return
	}
	m.schedule = &sched

	m.timeline.SetContent(tl.Render(m.planner.Slots(), sched.Assignment) + "\n\n" + tl.Legend())

	report, err := m.planner.Validate(sched.Assignment)
	if err != nil {
		m.report.SetContent(failStyle.Render(err.Error()))
		return
	}
	m.passed = report.Passed()

	var b strings.Builder
	for _, c := range report.Checks {
		mark := passStyle.Render("PASS")
		if !c.Pass {
			mark = failStyle.Render("FAIL")
		}
		fmt.Fprintf(&b, "%s  %s\n", mark, c.Rule)
		if c.Details != "" {
			for _, line := range strings.Split(c.Details, "\n") {
				fmt.Fprintf(&b, "      %s\n", statusStyle.Render(line))
			}
		}
	}
	m.report.SetContent(b.String())
}

func (m *Model) refreshSchedules() {
	summaries, err := m.planner.Store().ListSchedules()
	if err != nil {
		logger.Warn("Failed to list schedules", "error", err)
		return
	}
	m.schedules.SetSchedules(summaries)
}

func (m *Model) solve() {
	sched, res, err := m.planner.Plan(m.day)
	if err != nil {
		m.status = fmt.Sprintf("Could not solve %s: %v", m.day, err)
		return
	}
	m.loadDay()
	m.status = fmt.Sprintf("Solved %s as revision %d with %d violations, %d idle slots",
		m.day, sched.Revision, len(res.Violations), len(res.Idle))
}

func (m *Model) accept() {
	if err := m.planner.Store().AcceptSchedule(m.day, m.schedule.Revision); err != nil {
		m.status = fmt.Sprintf("Could not accept %s: %v", m.day, err)
		return
	}
	rev := m.schedule.Revision
	m.loadDay()
	m.status = fmt.Sprintf("Accepted %s revision %d", m.day, rev)
}

func (m *Model) shiftDay(delta int) {
	idx := 0
	for i, d := range m.days {
		if d == m.day {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(m.days)) % len(m.days)
	m.day = m.days[idx]
	m.status = ""
	m.loadDay()
}

func (m *Model) startConfirmAccept() tea.Cmd {
	m.confirmed = new(bool)
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("%s revision %d does not pass validation. Accept anyway?", m.day, m.schedule.Revision)).
				Affirmative("Accept").
				Negative("Cancel").
				Value(m.confirmed),
		),
	)
	m.state = StateConfirmAccept
	return m.form.Init()
}

func (m *Model) resize() {
	// tabs, status and help lines plus the doc margins
	h := m.height - 4 - docStyle.GetVerticalFrameSize()
	if h < 1 {
		h = 1
	}
	w := m.width - docStyle.GetHorizontalFrameSize()
	m.timeline.SetSize(w, h)
	m.report.SetSize(w, h)
	m.schedules.SetSize(w, h)
}
