// Package timeline renders an assignment as an employee by slot grid for the terminal.
package timeline

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/rota/internal/constants"
	"github.com/julianstephens/rota/internal/models"
)

// Category groups tasks for colouring.
type Category string

const (
	CategoryFloor    Category = "Floor"
	CategoryOutdoor  Category = "Outdoor"
	CategoryRestroom Category = "Restroom"
	CategoryEgress   Category = "Egress"
	CategoryBOH      Category = "BOH"
	CategoryFloat    Category = "Float"
	CategoryBreak    Category = "Break"
	CategoryOther    Category = "Other"
)

// Categories lists the legend order.
var Categories = []Category{
	CategoryFloor, CategoryOutdoor, CategoryRestroom, CategoryEgress,
	CategoryBOH, CategoryFloat, CategoryBreak,
}

var categoryColors = map[Category]lipgloss.Color{
	CategoryFloor:    lipgloss.Color("#6C9BD2"),
	CategoryOutdoor:  lipgloss.Color("#7BC67E"),
	CategoryRestroom: lipgloss.Color("#E8A87C"),
	CategoryEgress:   lipgloss.Color("#D4A5D0"),
	CategoryBOH:      lipgloss.Color("#F0C75E"),
	CategoryFloat:    lipgloss.Color("#85E0E0"),
	CategoryBreak:    lipgloss.Color("#CCCCCC"),
	CategoryOther:    lipgloss.Color("#B0B0B0"),
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	nameStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#1E1E1E"))
	emptyStyle  = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("240"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// CategoryOf classifies a task label. BOH is checked first so "BOH-Restrooms" is not a restroom.
func CategoryOf(task string) Category {
	lower := strings.ToLower(task)
	switch {
	case strings.Contains(lower, "boh"):
		return CategoryBOH
	case strings.EqualFold(strings.TrimSpace(task), constants.BreakLabel):
		return CategoryBreak
	case strings.Contains(lower, "floor"):
		return CategoryFloor
	case strings.Contains(lower, "outdoor"):
		return CategoryOutdoor
	case strings.Contains(lower, "restroom"):
		return CategoryRestroom
	case strings.Contains(lower, "egress"):
		return CategoryEgress
	case strings.Contains(lower, "float"):
		return CategoryFloat
	default:
		return CategoryOther
	}
}

// Color returns the background colour of a task cell.
func Color(task string) lipgloss.Color {
	return categoryColors[CategoryOf(task)]
}

// Render draws the grid for the slots between the first and last assigned slot.
func Render(seq models.SlotSequence, a models.Assignment) string {
	slots := usedSlots(seq, a)
	if len(slots) == 0 {
		return "No assignments."
	}

	headers := []string{"Employee"}
	for _, ts := range slots {
		headers = append(headers, seq.Label(ts))
	}

	var rows [][]string
	for _, name := range byFirstSlot(seq, a) {
		row := []string{name}
		for _, ts := range slots {
			row = append(row, tasksAt(a, name, seq.Label(ts)))
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return nameStyle
			}
			if row < 0 || row >= len(rows) {
				return cellStyle
			}
			task := rows[row][col]
			if task == "" {
				return emptyStyle
			}
			return cellStyle.Background(Color(task))
		})
	return t.Render()
}

// Legend renders one swatch per category.
func Legend() string {
	var parts []string
	for _, c := range Categories {
		parts = append(parts, cellStyle.Background(categoryColors[c]).Render(string(c)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// byFirstSlot orders employees by their earliest assigned slot, keeping
// assignment order for ties. Employees without a valid slot go last.
func byFirstSlot(seq models.SlotSequence, a models.Assignment) []string {
	names := a.Employees()
	first := make(map[string]int, len(names))
	for _, row := range a.Rows {
		for _, e := range row.Entries {
			ts, ok := seq.Parse(e.Time)
			if !ok {
				continue
			}
			if cur, seen := first[row.Employee]; !seen || int(ts) < cur {
				first[row.Employee] = int(ts)
			}
		}
	}
	rank := func(name string) int {
		if ts, ok := first[name]; ok {
			return ts
		}
		return seq.Len()
	}
	sort.SliceStable(names, func(i, j int) bool { return rank(names[i]) < rank(names[j]) })
	return names
}

// tasksAt joins every task an employee holds at a slot, across rows, so
// double-bookings stay visible in the grid.
func tasksAt(a models.Assignment, name, label string) string {
	var tasks []string
	for _, row := range a.Rows {
		if row.Employee != name {
			continue
		}
		for _, e := range row.Entries {
			if e.Time == label {
				tasks = append(tasks, e.Task)
			}
		}
	}
	return strings.Join(tasks, " / ")
}

func usedSlots(seq models.SlotSequence, a models.Assignment) []models.TimeSlot {
	first, last := -1, -1
	for _, row := range a.Rows {
		for _, e := range row.Entries {
			ts, ok := seq.Parse(e.Time)
			if !ok {
				continue
			}
			if first < 0 || int(ts) < first {
				first = int(ts)
			}
			if int(ts) > last {
				last = int(ts)
			}
		}
	}
	if first < 0 {
		return nil
	}
	var out []models.TimeSlot
	for ts := first; ts <= last; ts++ {
		out = append(out, models.TimeSlot(ts))
	}
	return out
}
