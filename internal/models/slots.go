package models

import (
	"fmt"
	"time"

	"github.com/julianstephens/rota/internal/constants"
)

// TimeSlot is the index of a slot in a SlotSequence.
type TimeSlot int

// SlotSequence is the fixed, ordered list of slot labels covering the operating day.
// The closing label (the day end) is a valid boundary but not a slot.
type SlotSequence struct {
	labels  []string
	closing string
	step    time.Duration
	index   map[string]TimeSlot
}

// NewSlotSequence builds the slots from dayStart (inclusive) to dayEnd (exclusive)
// in steps of stepMin minutes. Times are HH:MM.
func NewSlotSequence(dayStart, dayEnd string, stepMin int) (SlotSequence, error) {
	if stepMin <= 0 {
		return SlotSequence{}, fmt.Errorf("slot length must be positive, got %d minutes", stepMin)
	}
	start, err := parseMinutes(dayStart)
	if err != nil {
		return SlotSequence{}, fmt.Errorf("invalid day start %q: %w", dayStart, err)
	}
	end, err := parseMinutes(dayEnd)
	if err != nil {
		return SlotSequence{}, fmt.Errorf("invalid day end %q: %w", dayEnd, err)
	}
	if end <= start {
		return SlotSequence{}, fmt.Errorf("day end %s must be after day start %s", dayEnd, dayStart)
	}
	if (end-start)%stepMin != 0 {
		return SlotSequence{}, fmt.Errorf("day %s-%s is not a whole number of %d-minute slots", dayStart, dayEnd, stepMin)
	}

	seq := SlotSequence{
		closing: formatMinutes(end),
		step:    time.Duration(stepMin) * time.Minute,
		index:   make(map[string]TimeSlot),
	}
	for m := start; m < end; m += stepMin {
		label := formatMinutes(m)
		seq.index[label] = TimeSlot(len(seq.labels))
		seq.labels = append(seq.labels, label)
	}
	return seq, nil
}

// DefaultSlots returns the hourly 07:00-23:00 operating day.
func DefaultSlots() SlotSequence {
	seq, err := NewSlotSequence(constants.DefaultDayStart, constants.DefaultDayEnd, constants.DefaultSlotMin)
	if err != nil {
		panic(err)
	}
	return seq
}

// Len returns the number of slots.
func (s SlotSequence) Len() int { return len(s.labels) }

// Step returns the duration of one slot.
func (s SlotSequence) Step() time.Duration { return s.step }

// Label returns the label of a slot, or the closing label for Len().
func (s SlotSequence) Label(ts TimeSlot) string {
	if int(ts) == len(s.labels) {
		return s.closing
	}
	if ts < 0 || int(ts) > len(s.labels) {
		return fmt.Sprintf("slot(%d)", int(ts))
	}
	return s.labels[ts]
}

// Parse resolves a slot label. The closing label is not a slot.
func (s SlotSequence) Parse(label string) (TimeSlot, bool) {
	ts, ok := s.index[label]
	return ts, ok
}

// ParseBoundary resolves a label usable as a window edge, which includes the closing label.
func (s SlotSequence) ParseBoundary(label string) (TimeSlot, bool) {
	if label == s.closing {
		return TimeSlot(len(s.labels)), true
	}
	return s.Parse(label)
}

// All returns every slot in order.
func (s SlotSequence) All() []TimeSlot {
	out := make([]TimeSlot, len(s.labels))
	for i := range out {
		out[i] = TimeSlot(i)
	}
	return out
}

// SlotsFor converts a duration into a whole number of slots, rounding down.
func (s SlotSequence) SlotsFor(d time.Duration) int {
	if s.step <= 0 {
		return 0
	}
	return int(d / s.step)
}

// Window is a half-open range of slots [Start, End).
type Window struct {
	Start TimeSlot `json:"start"`
	End   TimeSlot `json:"end"`
}

// Contains reports whether ts lies within the window.
func (w Window) Contains(ts TimeSlot) bool {
	return ts >= w.Start && ts < w.End
}

// Empty reports whether the window holds no slot.
func (w Window) Empty() bool { return w.End <= w.Start }

// Within reports whether w is fully inside outer.
func (w Window) Within(outer Window) bool {
	return w.Start >= outer.Start && w.End <= outer.End
}

// Format renders the window as "HH:MM-HH:MM".
func (w Window) Format(seq SlotSequence) string {
	return seq.Label(w.Start) + "-" + seq.Label(w.End)
}

func parseMinutes(s string) (int, error) {
	t, err := time.Parse(constants.TimeFormat, s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
