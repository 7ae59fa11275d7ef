package rules

import (
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/rota/internal/constants"
	"github.com/julianstephens/rota/internal/models"
)

// InvalidRuleError reports a rule record rejected at load time.
type InvalidRuleError struct {
	Index  int // position in the rule list, -1 when the document itself is bad
	Task   string
	Reason string
}

func (e *InvalidRuleError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid rule configuration: %s", e.Reason)
	}
	if e.Task == "" {
		return fmt.Sprintf("invalid rule #%d: %s", e.Index+1, e.Reason)
	}
	return fmt.Sprintf("invalid rule #%d (%s): %s", e.Index+1, e.Task, e.Reason)
}

// WindowRecord is a contiguous window, From inclusive and To exclusive.
type WindowRecord struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// StepRecord raises the minimum from a slot onward.
type StepRecord struct {
	From string `yaml:"from"`
	Min  int    `yaml:"min"`
}

// Record is the declarative form of a TaskRule as it appears in configuration.
type Record struct {
	Task         string        `yaml:"task"`
	Name         string        `yaml:"name,omitempty"`
	Shape        Shape         `yaml:"shape"`
	Exact        int           `yaml:"exact,omitempty"`
	Min          int           `yaml:"min,omitempty"`
	Max          int           `yaml:"max,omitempty"`
	Steps        []StepRecord  `yaml:"steps,omitempty"`
	Window       *WindowRecord `yaml:"window,omitempty"`
	Slots        []string      `yaml:"slots,omitempty"`
	MaxPerPerson string        `yaml:"max_per_person,omitempty"`
}

// ParseYAML decodes a `rules:` document. Unknown fields are rejected.
func ParseYAML(r io.Reader) ([]Record, error) {
	var doc struct {
		Rules []Record `yaml:"rules"`
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, &InvalidRuleError{Index: -1, Reason: err.Error()}
	}
	return doc.Rules, nil
}

// Load validates records against seq and builds the catalog. The first bad record aborts the load.
func Load(seq models.SlotSequence, records []Record) (*Catalog, error) {
	c := &Catalog{
		seq:    seq,
		byTask: make(map[string]int, len(records)),
	}
	for i, rec := range records {
		rule, err := buildRule(seq, rec)
		if err != nil {
			return nil, &InvalidRuleError{Index: i, Task: rec.Task, Reason: err.Error()}
		}
		if _, dup := c.byTask[rule.Task]; dup {
			return nil, &InvalidRuleError{Index: i, Task: rec.Task, Reason: "duplicate task"}
		}
		c.byTask[rule.Task] = len(c.rules)
		c.rules = append(c.rules, rule)
	}
	return c, nil
}

func buildRule(seq models.SlotSequence, rec Record) (TaskRule, error) {
	if rec.Task == "" {
		return TaskRule{}, fmt.Errorf("task is required")
	}
	if rec.Task == constants.BreakLabel {
		return TaskRule{}, fmt.Errorf("%q is reserved for breaks", constants.BreakLabel)
	}
	if rec.Min < 0 || rec.Max < 0 || rec.Exact < 0 {
		return TaskRule{}, fmt.Errorf("occupancy values must not be negative")
	}

	rule := TaskRule{
		Task:  rec.Task,
		Name:  rec.Name,
		Shape: rec.Shape,
		Min:   rec.Min,
		Max:   rec.Max,
		Exact: rec.Exact,
	}

	switch rec.Shape {
	case ShapeExact:
		if rec.Exact == 0 {
			return TaskRule{}, fmt.Errorf("exact shape needs exact > 0")
		}
		if rec.Min != 0 || rec.Max != 0 || len(rec.Steps) > 0 {
			return TaskRule{}, fmt.Errorf("exact shape does not take min, max or steps")
		}
	case ShapeRange:
		if rec.Exact != 0 {
			return TaskRule{}, fmt.Errorf("range shape does not take exact")
		}
		if rec.Max > 0 && rec.Min > rec.Max {
			return TaskRule{}, fmt.Errorf("min %d exceeds max %d", rec.Min, rec.Max)
		}
		for _, st := range rec.Steps {
			from, ok := seq.Parse(st.From)
			if !ok {
				return TaskRule{}, fmt.Errorf("step starts at unknown slot %q", st.From)
			}
			if st.Min < 0 || (rec.Max > 0 && st.Min > rec.Max) {
				return TaskRule{}, fmt.Errorf("step min %d at %s is outside 0..%d", st.Min, st.From, rec.Max)
			}
			rule.Steps = append(rule.Steps, Step{From: from, Min: st.Min})
		}
	case ShapeCeiling:
		if rec.Max == 0 {
			return TaskRule{}, fmt.Errorf("ceiling shape needs max > 0")
		}
		if rec.Min != 0 || rec.Exact != 0 || len(rec.Steps) > 0 {
			return TaskRule{}, fmt.Errorf("ceiling shape only takes max")
		}
	case "":
		return TaskRule{}, fmt.Errorf("shape is required (exact, range or ceiling)")
	default:
		return TaskRule{}, fmt.Errorf("unknown shape %q", rec.Shape)
	}

	window, err := buildWindow(seq, rec)
	if err != nil {
		return TaskRule{}, err
	}
	rule.Window = window

	if rec.MaxPerPerson != "" {
		d, err := time.ParseDuration(rec.MaxPerPerson)
		if err != nil {
			return TaskRule{}, fmt.Errorf("invalid max_per_person: %w", err)
		}
		n := seq.SlotsFor(d)
		if n < 1 {
			return TaskRule{}, fmt.Errorf("max_per_person %s is shorter than one slot (%s)", d, seq.Step())
		}
		rule.MaxSlotsPerPerson = n
	}

	if rule.Name == "" {
		rule.Name = defaultName(rule)
	}
	return rule, nil
}

func buildWindow(seq models.SlotSequence, rec Record) (map[models.TimeSlot]bool, error) {
	if rec.Window != nil && len(rec.Slots) > 0 {
		return nil, fmt.Errorf("use either window or slots, not both")
	}

	window := make(map[models.TimeSlot]bool)
	switch {
	case rec.Window != nil:
		from, ok := seq.Parse(rec.Window.From)
		if !ok {
			return nil, fmt.Errorf("window starts at unknown slot %q", rec.Window.From)
		}
		to, ok := seq.ParseBoundary(rec.Window.To)
		if !ok {
			return nil, fmt.Errorf("window ends at unknown slot %q", rec.Window.To)
		}
		if to <= from {
			return nil, fmt.Errorf("window %s-%s is empty", rec.Window.From, rec.Window.To)
		}
		for ts := from; ts < to; ts++ {
			window[ts] = true
		}
	case len(rec.Slots) > 0:
		for _, label := range rec.Slots {
			ts, ok := seq.Parse(label)
			if !ok {
				return nil, fmt.Errorf("unknown slot %q", label)
			}
			window[ts] = true
		}
	default:
		for _, ts := range seq.All() {
			window[ts] = true
		}
	}
	return window, nil
}

func defaultName(r TaskRule) string {
	switch r.Shape {
	case ShapeExact:
		return fmt.Sprintf("%s (exactly %d)", r.Task, r.Exact)
	case ShapeCeiling:
		return fmt.Sprintf("%s (at most %d)", r.Task, r.Max)
	default:
		if r.Max > 0 {
			return fmt.Sprintf("%s (%d-%d)", r.Task, r.Min, r.Max)
		}
		return fmt.Sprintf("%s (at least %d)", r.Task, r.Min)
	}
}
