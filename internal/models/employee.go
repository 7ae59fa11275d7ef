package models

import "fmt"

// Employee is one available staff member for a single day.
type Employee struct {
	Name  string `json:"name"`
	Shift Window `json:"shift"`
	Break Window `json:"break"`
}

// OnShift reports whether the employee works at ts.
func (e Employee) OnShift(ts TimeSlot) bool {
	return e.Shift.Contains(ts)
}

// Validate checks the shift and break window invariants against seq.
func (e Employee) Validate(seq SlotSequence) error {
	if e.Name == "" {
		return fmt.Errorf("employee name is empty")
	}
	if e.Shift.Start < 0 || int(e.Shift.End) > seq.Len() {
		return fmt.Errorf("employee %q: shift %d-%d outside the operating day", e.Name, e.Shift.Start, e.Shift.End)
	}
	if e.Shift.Empty() {
		return fmt.Errorf("employee %q: shift end %s is not after start %s",
			e.Name, seq.Label(e.Shift.End), seq.Label(e.Shift.Start))
	}
	if e.Break.Empty() {
		return fmt.Errorf("employee %q: break window %s is empty", e.Name, e.Break.Format(seq))
	}
	if !e.Break.Within(e.Shift) {
		return fmt.Errorf("employee %q: break window %s is outside shift %s",
			e.Name, e.Break.Format(seq), e.Shift.Format(seq))
	}
	return nil
}
