package scheduler

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/rota/internal/constants"
	"github.com/julianstephens/rota/internal/models"
	"github.com/julianstephens/rota/internal/roster"
	"github.com/julianstephens/rota/internal/rules"
)

func mustCatalog(t *testing.T, records ...rules.Record) *rules.Catalog {
	t.Helper()
	cat, err := rules.Load(models.DefaultSlots(), records)
	if err != nil {
		t.Fatalf("rules.Load: %v", err)
	}
	return cat
}

func employee(t *testing.T, name, start, end, breakFrom, breakTo string) models.Employee {
	t.Helper()
	seq := models.DefaultSlots()
	parse := func(label string, boundary bool) models.TimeSlot {
		var ts models.TimeSlot
		var ok bool
		if boundary {
			ts, ok = seq.ParseBoundary(label)
		} else {
			ts, ok = seq.Parse(label)
		}
		if !ok {
			t.Fatalf("bad slot label %q", label)
		}
		return ts
	}
	return models.Employee{
		Name:  name,
		Shift: models.Window{Start: parse(start, false), End: parse(end, true)},
		Break: models.Window{Start: parse(breakFrom, false), End: parse(breakTo, true)},
	}
}

func earlyShift(t *testing.T, names ...string) []models.Employee {
	var out []models.Employee
	for _, n := range names {
		out = append(out, employee(t, n, "07:00", "15:00", "11:00", "13:00"))
	}
	return out
}

func gallery(t *testing.T) []models.Employee {
	var out []models.Employee
	for _, n := range []string{"A1", "A2", "A3", "A4", "A5"} {
		out = append(out, employee(t, n, "07:00", "15:00", "11:00", "13:00"))
	}
	for _, n := range []string{"B1", "B2", "B3", "B4"} {
		out = append(out, employee(t, n, "13:00", "21:00", "17:00", "19:00"))
	}
	for _, n := range []string{"C1", "C2", "C3"} {
		out = append(out, employee(t, n, "15:00", "23:00", "19:00", "21:00"))
	}
	return out
}

func taskAt(t *testing.T, a models.Assignment, name, label string) string {
	t.Helper()
	row, ok := a.Row(name)
	if !ok {
		t.Fatalf("no row for %s", name)
	}
	task, _ := row.Task(label)
	return task
}

func TestSolve_EgressAndRestroomCovered(t *testing.T) {
	// Setup
	cat := mustCatalog(t,
		rules.Record{Task: "Egress", Shape: rules.ShapeExact, Exact: 2, Window: &rules.WindowRecord{From: "10:00", To: "12:00"}},
		rules.Record{Task: "Restroom_4", Shape: rules.ShapeExact, Exact: 1, Window: &rules.WindowRecord{From: "10:00", To: "14:00"}},
	)
	emps := earlyShift(t, "A", "B", "C", "D")

	// Execute
	res, err := New(Options{}).Solve(emps, cat)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	// Assert
	if !res.Feasible() {
		t.Fatalf("expected feasible result, got violations %+v", res.Violations)
	}
	for _, label := range []string{"10:00", "11:00"} {
		egress := 0
		for _, name := range []string{"A", "B", "C", "D"} {
			if taskAt(t, res.Assignment, name, label) == "Egress" {
				egress++
			}
		}
		if egress != 2 {
			t.Errorf("Egress at %s = %d, want 2", label, egress)
		}
	}
	// Egress rotates to the staff who have not worked it yet.
	if got := taskAt(t, res.Assignment, "C", "11:00"); got != "Egress" {
		t.Errorf("C at 11:00 = %q, want Egress", got)
	}
}

func TestSolve_InfeasibleIsReportedNotReturned(t *testing.T) {
	// Setup
	cat := mustCatalog(t,
		rules.Record{Task: "Egress", Name: "Egress (exactly 2, 10-12)", Shape: rules.ShapeExact, Exact: 2,
			Window: &rules.WindowRecord{From: "10:00", To: "12:00"}},
	)

	// Execute
	res, err := New(Options{}).Solve(earlyShift(t, "Solo"), cat)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	// Assert
	want := []models.Violation{
		{Rule: "Egress (exactly 2, 10-12)", Task: "Egress", Time: "10:00", Assigned: 1, Required: 2},
		{Rule: "Egress (exactly 2, 10-12)", Task: "Egress", Time: "11:00", Assigned: 1, Required: 2},
	}
	if diff := cmp.Diff(want, res.Violations); diff != "" {
		t.Errorf("violations mismatch (-want +got):\n%s", diff)
	}
}

func TestSolve_OnlyActiveSlotsReported(t *testing.T) {
	// Setup: the rule runs until close but nobody works past 15:00
	cat := mustCatalog(t,
		rules.Record{Task: "Restroom_4", Shape: rules.ShapeExact, Exact: 1, Window: &rules.WindowRecord{From: "10:00", To: "23:00"}},
	)

	// Execute
	res, err := New(Options{}).Solve(earlyShift(t, "Solo"), cat)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	// Assert: only the forced break at 12:00 leaves the task empty
	if len(res.Violations) != 1 {
		t.Fatalf("got %d violations, want 1: %+v", len(res.Violations), res.Violations)
	}
	if v := res.Violations[0]; v.Time != "12:00" || v.Assigned != 0 || v.Required != 1 {
		t.Errorf("unexpected violation %+v", v)
	}
	if got := taskAt(t, res.Assignment, "Solo", "12:00"); got != constants.BreakLabel {
		t.Errorf("Solo at 12:00 = %q, want Break", got)
	}
}

func TestSolve_PerPersonCap(t *testing.T) {
	// Setup
	cat := mustCatalog(t,
		rules.Record{Task: "Restroom_4", Shape: rules.ShapeExact, Exact: 1,
			Window: &rules.WindowRecord{From: "10:00", To: "14:00"}, MaxPerPerson: "2h"},
	)

	// Execute
	res, err := New(Options{}).Solve(earlyShift(t, "Solo"), cat)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	// Assert
	row, _ := res.Assignment.Row("Solo")
	count := 0
	for _, e := range row.Entries {
		if e.Task == "Restroom_4" {
			count++
		}
	}
	if count != 2 {
		t.Errorf("Restroom_4 slots = %d, want 2", count)
	}
	if got := taskAt(t, res.Assignment, "Solo", "13:00"); got != "Float_ALL" {
		t.Errorf("Solo at 13:00 = %q, want Float_ALL", got)
	}

	var times []string
	for _, v := range res.Violations {
		times = append(times, v.Time)
	}
	if diff := cmp.Diff([]string{"12:00", "13:00"}, times); diff != "" {
		t.Errorf("violation times mismatch (-want +got):\n%s", diff)
	}
}

func TestSolve_IdleWhenNoFillTaskFits(t *testing.T) {
	// Setup
	cat := mustCatalog(t,
		rules.Record{Task: "Float_ALL", Shape: rules.ShapeCeiling, Max: 1, Window: &rules.WindowRecord{From: "07:00", To: "23:00"}},
	)
	emps := []models.Employee{
		employee(t, "A", "07:00", "09:00", "08:00", "09:00"),
		employee(t, "B", "07:00", "09:00", "08:00", "09:00"),
	}

	// Execute
	res, err := New(Options{FillTasks: []string{"Float_ALL"}}).Solve(emps, cat)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	// Assert
	if diff := cmp.Diff([]IdleSlot{{Employee: "B", Time: "07:00"}}, res.Idle); diff != "" {
		t.Errorf("idle mismatch (-want +got):\n%s", diff)
	}
	if got := taskAt(t, res.Assignment, "A", "07:00"); got != "Float_ALL" {
		t.Errorf("A at 07:00 = %q, want Float_ALL", got)
	}
}

func TestSolve_BreakStagger(t *testing.T) {
	cat := mustCatalog(t,
		rules.Record{Task: "Float", Shape: rules.ShapeCeiling, Max: 4, Window: &rules.WindowRecord{From: "07:00", To: "23:00"}},
	)
	tests := []struct {
		stagger float64
		want    map[string]int
	}{
		{0.25, map[string]int{"11:00": 1, "12:00": 3}},
		{0.5, map[string]int{"11:00": 2, "12:00": 2}},
		{1.0, map[string]int{"11:00": 4}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("stagger %.2f", tt.stagger), func(t *testing.T) {
			emps := earlyShift(t, "A1", "A2", "A3", "A4")
			res, err := New(Options{FillTasks: []string{"Float"}, BreakStagger: tt.stagger}).Solve(emps, cat)
			if err != nil {
				t.Fatalf("Solve failed: %v", err)
			}

			got := make(map[string]int)
			for _, row := range res.Assignment.Rows {
				for _, e := range row.Entries {
					if e.Task == constants.BreakLabel {
						got[e.Time]++
					}
				}
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("breaks per slot mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSolve_Invariants(t *testing.T) {
	// Setup
	seq := models.DefaultSlots()
	cat := mustCatalog(t, rules.DefaultRecords()...)
	emps := gallery(t)

	// Execute
	res, err := New(Options{}).Solve(emps, cat)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	// Assert
	occupancy := make(map[string]map[string]int)
	perPerson := make(map[string]map[string]int)
	for i, row := range res.Assignment.Rows {
		emp := emps[i]
		if row.Employee != emp.Name {
			t.Fatalf("row %d is %s, want %s", i, row.Employee, emp.Name)
		}
		seen := make(map[string]bool)
		breaks := 0
		perPerson[row.Employee] = make(map[string]int)
		for _, e := range row.Entries {
			if seen[e.Time] {
				t.Errorf("%s double-booked at %s", row.Employee, e.Time)
			}
			seen[e.Time] = true

			ts, ok := seq.Parse(e.Time)
			if !ok || !emp.OnShift(ts) {
				t.Errorf("%s assigned off shift at %s", row.Employee, e.Time)
			}
			if e.Task == constants.BreakLabel {
				breaks++
				if !emp.Break.Contains(ts) {
					t.Errorf("%s break at %s is outside %s", row.Employee, e.Time, emp.Break.Format(seq))
				}
			}
			if occupancy[e.Time] == nil {
				occupancy[e.Time] = make(map[string]int)
			}
			occupancy[e.Time][e.Task]++
			perPerson[row.Employee][e.Task]++
		}
		if breaks != 1 {
			t.Errorf("%s has %d breaks, want 1", row.Employee, breaks)
		}
	}

	for _, rule := range cat.Rules() {
		for _, ts := range seq.All() {
			label := seq.Label(ts)
			got := occupancy[label][rule.Task]
			_, hi, ok := rule.Bounds(ts)
			if !ok {
				if got != 0 {
					t.Errorf("%s staffed outside its window at %s", rule.Task, label)
				}
				continue
			}
			if hi >= 0 && got > hi {
				t.Errorf("%s at %s = %d, above max %d", rule.Task, label, got, hi)
			}
		}
		if rule.MaxSlotsPerPerson > 0 {
			for name, counts := range perPerson {
				if counts[rule.Task] > rule.MaxSlotsPerPerson {
					t.Errorf("%s worked %s for %d slots, cap %d", name, rule.Task, counts[rule.Task], rule.MaxSlotsPerPerson)
				}
			}
		}
	}
}

func TestSolve_Deterministic(t *testing.T) {
	cat := mustCatalog(t, rules.DefaultRecords()...)
	solver := New(Options{})

	first, err := solver.Solve(gallery(t), cat)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := solver.Solve(gallery(t), cat)
		if err != nil {
			t.Fatalf("Solve failed: %v", err)
		}
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
		}
	}
}

func TestSolve_EmptyRoster(t *testing.T) {
	_, err := New(Options{}).Solve(nil, mustCatalog(t, rules.DefaultRecords()...))

	var empty *roster.EmptyRosterError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyRosterError, got %v", err)
	}
}

func TestSolve_RejectsInvalidEmployees(t *testing.T) {
	cat := mustCatalog(t, rules.DefaultRecords()...)

	tests := []struct {
		name string
		emps []models.Employee
	}{
		{
			name: "break outside shift",
			emps: []models.Employee{employee(t, "A", "07:00", "11:00", "12:00", "13:00")},
		},
		{
			name: "duplicate name",
			emps: earlyShift(t, "A", "A"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(Options{}).Solve(tt.emps, cat); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestSolveDays(t *testing.T) {
	// Setup
	seq := models.DefaultSlots()
	r, invalid := roster.New(seq, roster.DefaultShifts(), roster.DefaultBreakPolicy(), []roster.Record{
		{Name: "A", Day: "Monday", ShiftName: "shift_1", ShiftStart: "07:00", ShiftEnd: "15:00"},
		{Name: "B", Day: "Monday", ShiftName: "shift_2", ShiftStart: "13:00", ShiftEnd: "21:00"},
		{Name: "C", Day: "Wednesday", ShiftName: "shift_3", ShiftStart: "15:00", ShiftEnd: "23:00"},
	})
	if len(invalid) != 0 {
		t.Fatalf("unexpected invalid records: %v", invalid)
	}
	cat := mustCatalog(t, rules.DefaultRecords()...)

	// Execute
	outcomes, err := New(Options{}).SolveDays(context.Background(), r, cat, []string{"Monday", "Tuesday", "Wednesday"})
	if err != nil {
		t.Fatalf("SolveDays failed: %v", err)
	}

	// Assert
	if len(outcomes) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(outcomes))
	}
	if outcomes[0].Err != nil || outcomes[2].Err != nil {
		t.Errorf("unexpected errors: %v, %v", outcomes[0].Err, outcomes[2].Err)
	}
	var empty *roster.EmptyRosterError
	if !errors.As(outcomes[1].Err, &empty) || empty.Day != "Tuesday" {
		t.Errorf("Tuesday outcome = %v, want EmptyRosterError", outcomes[1].Err)
	}
	if got := outcomes[2].Result.Assignment.Employees(); !cmp.Equal(got, []string{"C"}) {
		t.Errorf("Wednesday employees = %v, want [C]", got)
	}
}

func TestSolveDays_Cancelled(t *testing.T) {
	r, _ := roster.New(models.DefaultSlots(), roster.DefaultShifts(), roster.DefaultBreakPolicy(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Options{}).SolveDays(ctx, r, mustCatalog(t), []string{"Monday"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
