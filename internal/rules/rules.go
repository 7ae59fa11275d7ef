// Package rules holds the declarative staffing rules every task is checked against.
//
// A catalog is built once per run from records (see Load) and is read-only afterwards;
// both the solver and the validator consume it through Bounds and MaxSlotsPerPerson.
package rules

import (
	"errors"
	"fmt"

	"github.com/julianstephens/rota/internal/models"
)

// Shape selects how a rule bounds occupancy.
type Shape string

const (
	// ShapeExact requires exactly N employees at every slot of the window.
	ShapeExact Shape = "exact"
	// ShapeRange requires min..max employees, with optional step-ups of the minimum.
	ShapeRange Shape = "range"
	// ShapeCeiling allows 0..max employees.
	ShapeCeiling Shape = "ceiling"
)

// ErrRuleNotFound is returned for tasks the catalog does not constrain.
var ErrRuleNotFound = errors.New("no rule for task")

// Step raises the minimum occupancy from a threshold slot onward.
type Step struct {
	From models.TimeSlot
	Min  int
}

// TaskRule is the staffing requirement of one task.
type TaskRule struct {
	Task  string
	Name  string
	Shape Shape

	// Window is the set of slots at which the task may appear at all.
	Window map[models.TimeSlot]bool

	Min   int
	Max   int // 0 means no ceiling (range only)
	Exact int
	Steps []Step

	// MaxSlotsPerPerson caps how many slots one employee spends on the task; 0 is unlimited.
	MaxSlotsPerPerson int
}

// InWindow reports whether the task may be assigned at ts.
func (r TaskRule) InWindow(ts models.TimeSlot) bool {
	return r.Window[ts]
}

// Bounds returns the occupancy bounds at ts. ok is false outside the window, where
// the task must not appear. max < 0 means unbounded.
func (r TaskRule) Bounds(ts models.TimeSlot) (min, max int, ok bool) {
	if !r.InWindow(ts) {
		return 0, 0, false
	}
	switch r.Shape {
	case ShapeExact:
		return r.Exact, r.Exact, true
	case ShapeCeiling:
		return 0, r.Max, true
	default:
		min = r.Min
		for _, s := range r.Steps {
			if ts >= s.From && s.Min > min {
				min = s.Min
			}
		}
		max = r.Max
		if max == 0 {
			max = -1
		}
		return min, max, true
	}
}

// Demanding reports whether the rule requires staff somewhere, so the solver must place it.
func (r TaskRule) Demanding() bool {
	switch r.Shape {
	case ShapeExact:
		return r.Exact > 0
	case ShapeRange:
		if r.Min > 0 {
			return true
		}
		for _, s := range r.Steps {
			if s.Min > 0 {
				return true
			}
		}
	}
	return false
}

// WindowSlots returns the window in slot order.
func (r TaskRule) WindowSlots(seq models.SlotSequence) []models.TimeSlot {
	var out []models.TimeSlot
	for _, ts := range seq.All() {
		if r.Window[ts] {
			out = append(out, ts)
		}
	}
	return out
}

// Catalog is the ordered, immutable set of task rules for one run.
type Catalog struct {
	seq    models.SlotSequence
	rules  []TaskRule
	byTask map[string]int
}

// Slots returns the slot sequence the catalog was built against.
func (c *Catalog) Slots() models.SlotSequence { return c.seq }

// Rules returns the rules in declaration order.
func (c *Catalog) Rules() []TaskRule {
	out := make([]TaskRule, len(c.rules))
	copy(out, c.rules)
	return out
}

// RulesFor looks up the rule of a task. Tasks without a rule are unconstrained.
func (c *Catalog) RulesFor(task string) (TaskRule, error) {
	i, ok := c.byTask[task]
	if !ok {
		return TaskRule{}, fmt.Errorf("%w: %s", ErrRuleNotFound, task)
	}
	return c.rules[i], nil
}

// Len returns the number of rules.
func (c *Catalog) Len() int { return len(c.rules) }
