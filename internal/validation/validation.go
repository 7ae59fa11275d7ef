package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/rota/internal/constants"
	"github.com/julianstephens/rota/internal/models"
	"github.com/julianstephens/rota/internal/rules"
)

// Names of the structural checks that open every report.
const (
	CheckDoubleBooking = "No double-booking"
	CheckOneBreak      = "Exactly one Break per employee"
)

// Check is the outcome of one named constraint.
type Check struct {
	Rule    string `json:"rule"`
	Pass    bool   `json:"pass"`
	Details string `json:"details"`
}

// Report lists every check in a stable order: double-booking, breaks,
// then the catalog rules in declaration order, then per-person limits.
type Report struct {
	Checks []Check `json:"checks"`
}

// Passed returns true if every check passed
func (r Report) Passed() bool {
	for _, c := range r.Checks {
		if !c.Pass {
			return false
		}
	}
	return true
}

// Failed returns the failing checks in report order
func (r Report) Failed() []Check {
	var out []Check
	for _, c := range r.Checks {
		if !c.Pass {
			out = append(out, c)
		}
	}
	return out
}

// Check returns the check with the given rule name.
func (r Report) Check(rule string) (Check, bool) {
	for _, c := range r.Checks {
		if c.Rule == rule {
			return c, true
		}
	}
	return Check{}, false
}

// FormatReport returns a human-readable report of all checks
func (r Report) FormatReport() string {
	var b strings.Builder
	for _, c := range r.Checks {
		mark := "PASS"
		if !c.Pass {
			mark = "FAIL"
		}
		fmt.Fprintf(&b, "[%s] %s", mark, c.Rule)
		if c.Details != "" {
			fmt.Fprintf(&b, ": %s", c.Details)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Validator checks an assignment against a rule catalog. It never modifies its input.
type Validator struct {
	catalog *rules.Catalog
}

// New creates a new Validator
func New(catalog *rules.Catalog) *Validator {
	return &Validator{catalog: catalog}
}

// Validate runs every check. Failing checks are part of the report; an error is
// returned only for structurally malformed assignments.
func (v *Validator) Validate(a models.Assignment) (Report, error) {
	seq := v.catalog.Slots()
	g, err := newGrid(seq, a)
	if err != nil {
		return Report{}, err
	}

	report := Report{Checks: []Check{
		g.checkDoubleBooking(),
		g.checkBreaks(),
	}}
	catalogRules := v.catalog.Rules()
	for _, rule := range catalogRules {
		report.Checks = append(report.Checks, g.checkRule(rule))
	}
	for _, rule := range catalogRules {
		if rule.MaxSlotsPerPerson > 0 {
			report.Checks = append(report.Checks, g.checkPerPerson(rule))
		}
	}
	return report, nil
}

type booking struct {
	employee string
	task     string
}

// grid is the flattened slot -> bookings view of an assignment.
type grid struct {
	seq       models.SlotSequence
	employees []string
	bySlot    [][]booking
}

func newGrid(seq models.SlotSequence, a models.Assignment) (*grid, error) {
	g := &grid{
		seq:       seq,
		employees: a.Employees(),
		bySlot:    make([][]booking, seq.Len()),
	}
	for _, row := range a.Rows {
		if strings.TrimSpace(row.Employee) == "" {
			return nil, &models.MalformedAssignmentError{Reason: "row without employee name"}
		}
		for _, e := range row.Entries {
			ts, ok := seq.Parse(e.Time)
			if !ok {
				return nil, &models.MalformedAssignmentError{Employee: row.Employee, Reason: fmt.Sprintf("time %q is not a slot of the day", e.Time)}
			}
			if strings.TrimSpace(e.Task) == "" {
				return nil, &models.MalformedAssignmentError{Employee: row.Employee, Reason: fmt.Sprintf("empty task at %s", e.Time)}
			}
			g.bySlot[ts] = append(g.bySlot[ts], booking{employee: row.Employee, task: e.Task})
		}
	}
	return g, nil
}

func (g *grid) active(ts models.TimeSlot) bool {
	return len(g.bySlot[ts]) > 0
}

func (g *grid) occupancy(ts models.TimeSlot, task string) int {
	n := 0
	for _, b := range g.bySlot[ts] {
		if b.task == task {
			n++
		}
	}
	return n
}

func (g *grid) checkDoubleBooking() Check {
	var problems []string
	for _, ts := range g.seq.All() {
		tasks := make(map[string][]string)
		var order []string
		for _, b := range g.bySlot[ts] {
			if _, ok := tasks[b.employee]; !ok {
				order = append(order, b.employee)
			}
			tasks[b.employee] = append(tasks[b.employee], b.task)
		}
		for _, name := range order {
			if len(tasks[name]) > 1 {
				problems = append(problems, fmt.Sprintf("%s at %s (%s)", name, g.seq.Label(ts), strings.Join(tasks[name], ", ")))
			}
		}
	}
	return result(CheckDoubleBooking, problems, "no employee holds two tasks at once")
}

func (g *grid) checkBreaks() Check {
	counts := make(map[string]int)
	for _, ts := range g.seq.All() {
		for _, b := range g.bySlot[ts] {
			if b.task == constants.BreakLabel {
				counts[b.employee]++
			}
		}
	}
	var problems []string
	for _, name := range g.employees {
		if n := counts[name]; n != 1 {
			problems = append(problems, fmt.Sprintf("%s has %d breaks", name, n))
		}
	}
	return result(CheckOneBreak, problems, fmt.Sprintf("%d employees with one break each", len(g.employees)))
}

func (g *grid) checkRule(rule rules.TaskRule) Check {
	var problems []string
	for _, ts := range g.seq.All() {
		got := g.occupancy(ts, rule.Task)
		lo, hi, ok := rule.Bounds(ts)
		if !ok {
			if got > 0 {
				problems = append(problems, fmt.Sprintf("%s: %d assigned outside the window", g.seq.Label(ts), got))
			}
			continue
		}
		if !g.active(ts) {
			continue
		}
		if got < lo || (hi >= 0 && got > hi) {
			problems = append(problems, fmt.Sprintf("%s: %d assigned, need %s", g.seq.Label(ts), got, describeBounds(lo, hi)))
		}
	}
	return result(rule.Name, problems, "")
}

func (g *grid) checkPerPerson(rule rules.TaskRule) Check {
	counts := make(map[string]int)
	for _, ts := range g.seq.All() {
		for _, b := range g.bySlot[ts] {
			if b.task == rule.Task {
				counts[b.employee]++
			}
		}
	}
	var problems []string
	for _, name := range g.employees {
		if n := counts[name]; n > rule.MaxSlotsPerPerson {
			problems = append(problems, fmt.Sprintf("%s: %d slots", name, n))
		}
	}
	limit := formatDuration(time.Duration(rule.MaxSlotsPerPerson) * g.seq.Step())
	return result(fmt.Sprintf("%s per-person limit (max %s)", rule.Task, limit), problems, "")
}

func result(rule string, problems []string, okDetails string) Check {
	if len(problems) > 0 {
		return Check{Rule: rule, Pass: false, Details: strings.Join(problems, "; ")}
	}
	return Check{Rule: rule, Pass: true, Details: okDetails}
}

func describeBounds(lo, hi int) string {
	switch {
	case lo == hi:
		return fmt.Sprintf("exactly %d", lo)
	case hi < 0:
		return fmt.Sprintf("at least %d", lo)
	case lo == 0:
		return fmt.Sprintf("at most %d", hi)
	default:
		return fmt.Sprintf("%d-%d", lo, hi)
	}
}

// formatDuration prints whole hours as "2h" and anything else in minutes.
func formatDuration(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%dh", int(d/time.Hour))
	}
	return fmt.Sprintf("%dm", int(d/time.Minute))
}
