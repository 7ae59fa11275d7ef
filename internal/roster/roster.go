// Package roster turns roster records into the per-day availability the solver consumes.
package roster

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/rota/internal/constants"
	"github.com/julianstephens/rota/internal/models"
)

// Record is one roster line: an employee working one shift on one day.
type Record struct {
	ID         string `json:"id,omitempty" yaml:"id,omitempty"`
	Name       string `json:"name" yaml:"name"`
	Day        string `json:"day" yaml:"day"`
	ShiftName  string `json:"shift_name,omitempty" yaml:"shift_name,omitempty"`
	ShiftStart string `json:"shift_start" yaml:"shift_start"`
	ShiftEnd   string `json:"shift_end" yaml:"shift_end"`
}

// ShiftDefinition describes a named shift and its break window.
type ShiftDefinition struct {
	Name      string   `yaml:"name"`
	Start     string   `yaml:"start"`
	End       string   `yaml:"end"`
	BreakFrom string   `yaml:"break_from"`
	BreakTo   string   `yaml:"break_to"`
	Aliases   []string `yaml:"aliases,omitempty"`
}

// BreakPolicy places the break window of a shift that has no definition.
type BreakPolicy struct {
	Offset time.Duration
	Length time.Duration
}

// DefaultShifts are the three gallery shifts with their roster spellings.
func DefaultShifts() []ShiftDefinition {
	return []ShiftDefinition{
		{Name: "shift_1", Start: "07:00", End: "15:00", BreakFrom: "11:00", BreakTo: "13:00", Aliases: []string{"7.00", "07", "shift 1"}},
		{Name: "shift_2", Start: "13:00", End: "21:00", BreakFrom: "17:00", BreakTo: "19:00", Aliases: []string{"13.00", "1.00", "shift 2"}},
		{Name: "shift_3", Start: "15:00", End: "23:00", BreakFrom: "19:00", BreakTo: "21:00", Aliases: []string{"15.00", "3.00", "shift 3"}},
	}
}

// DefaultBreakPolicy opens the break four hours into the shift for two hours.
func DefaultBreakPolicy() BreakPolicy {
	return BreakPolicy{Offset: 4 * time.Hour, Length: 2 * time.Hour}
}

// NormalizeShift maps a free-form roster cell to a shift name.
// Returns "" for days off and unrecognised cells.
func NormalizeShift(shifts []ShiftDefinition, cell string) string {
	value := strings.ToLower(strings.TrimSpace(cell))
	if value == "" || value == "off" || value == "nan" {
		return ""
	}
	for _, def := range shifts {
		if strings.EqualFold(value, def.Name) {
			return def.Name
		}
	}
	for _, def := range shifts {
		for _, alias := range def.Aliases {
			if strings.Contains(value, strings.ToLower(alias)) {
				return def.Name
			}
		}
	}
	return ""
}

// FindShift returns the definition with the given name.
func FindShift(shifts []ShiftDefinition, name string) (ShiftDefinition, bool) {
	for _, def := range shifts {
		if def.Name == name {
			return def, true
		}
	}
	return ShiftDefinition{}, false
}

// CanonicalDay maps a case-insensitive day name or three-letter prefix to its
// calendar spelling. Unknown names are returned trimmed, as rosters may use their own labels.
func CanonicalDay(s string) string {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	for _, d := range constants.Days {
		if strings.EqualFold(d, s) || (len(lower) >= 3 && strings.HasPrefix(strings.ToLower(d), lower)) {
			return d
		}
	}
	return s
}

// Roster is the validated availability of every day.
type Roster struct {
	days      []string
	employees map[string][]models.Employee
}

// New validates records and builds the roster. Bad records are returned individually
// and left out; they never fail the whole batch.
func New(seq models.SlotSequence, shifts []ShiftDefinition, policy BreakPolicy, records []Record) (*Roster, []*InvalidRosterRecordError) {
	r := &Roster{
		employees: make(map[string][]models.Employee),
	}
	seen := make(map[string]bool)
	var invalid []*InvalidRosterRecordError

	for i, rec := range records {
		rec.Day = CanonicalDay(rec.Day)
		emp, err := buildEmployee(seq, shifts, policy, rec)
		if err != nil {
			invalid = append(invalid, &InvalidRosterRecordError{Index: i, Name: rec.Name, Day: rec.Day, Reason: err.Error()})
			continue
		}
		key := rec.Day + "\x00" + rec.Name
		if seen[key] {
			invalid = append(invalid, &InvalidRosterRecordError{Index: i, Name: rec.Name, Day: rec.Day, Reason: "employee already rostered on this day"})
			continue
		}
		seen[key] = true
		if _, ok := r.employees[rec.Day]; !ok {
			r.days = append(r.days, rec.Day)
		}
		r.employees[rec.Day] = append(r.employees[rec.Day], emp)
	}
	return r, invalid
}

// Days returns the rostered days in first-seen order.
func (r *Roster) Days() []string {
	out := make([]string, len(r.days))
	copy(out, r.days)
	return out
}

// AvailableEmployees returns the employees working on day, in roster order.
func (r *Roster) AvailableEmployees(day string) ([]models.Employee, error) {
	day = CanonicalDay(day)
	emps := r.employees[day]
	if len(emps) == 0 {
		return nil, &EmptyRosterError{Day: day}
	}
	out := make([]models.Employee, len(emps))
	copy(out, emps)
	return out, nil
}

func buildEmployee(seq models.SlotSequence, shifts []ShiftDefinition, policy BreakPolicy, rec Record) (models.Employee, error) {
	switch {
	case strings.TrimSpace(rec.Name) == "":
		return models.Employee{}, fmt.Errorf("missing name")
	case strings.TrimSpace(rec.Day) == "":
		return models.Employee{}, fmt.Errorf("missing day")
	case rec.ShiftStart == "":
		return models.Employee{}, fmt.Errorf("missing shift start")
	case rec.ShiftEnd == "":
		return models.Employee{}, fmt.Errorf("missing shift end")
	}

	start, ok := seq.Parse(rec.ShiftStart)
	if !ok {
		return models.Employee{}, fmt.Errorf("shift start %q is not a slot of the day", rec.ShiftStart)
	}
	end, ok := seq.ParseBoundary(rec.ShiftEnd)
	if !ok {
		return models.Employee{}, fmt.Errorf("shift end %q is not a slot boundary of the day", rec.ShiftEnd)
	}
	shift := models.Window{Start: start, End: end}

	brk, err := breakWindow(seq, shifts, policy, rec, shift)
	if err != nil {
		return models.Employee{}, err
	}

	emp := models.Employee{Name: rec.Name, Shift: shift, Break: brk}
	if err := emp.Validate(seq); err != nil {
		return models.Employee{}, err
	}
	return emp, nil
}

// breakWindow uses the named shift's break when the record's times match it,
// otherwise the policy offset from the shift start.
func breakWindow(seq models.SlotSequence, shifts []ShiftDefinition, policy BreakPolicy, rec Record, shift models.Window) (models.Window, error) {
	if def, ok := FindShift(shifts, rec.ShiftName); ok && def.Start == rec.ShiftStart && def.End == rec.ShiftEnd {
		from, ok := seq.Parse(def.BreakFrom)
		if !ok {
			return models.Window{}, fmt.Errorf("shift %s break start %q is not a slot", def.Name, def.BreakFrom)
		}
		to, ok := seq.ParseBoundary(def.BreakTo)
		if !ok {
			return models.Window{}, fmt.Errorf("shift %s break end %q is not a slot boundary", def.Name, def.BreakTo)
		}
		return models.Window{Start: from, End: to}, nil
	}

	offset := models.TimeSlot(seq.SlotsFor(policy.Offset))
	length := models.TimeSlot(seq.SlotsFor(policy.Length))
	if length < 1 {
		length = 1
	}
	w := models.Window{Start: shift.Start + offset, End: shift.Start + offset + length}
	if w.End > shift.End {
		// Short shifts take the break in their last slots.
		w = models.Window{Start: shift.End - length, End: shift.End}
		if w.Start < shift.Start {
			w.Start = shift.Start
		}
	}
	return w, nil
}
