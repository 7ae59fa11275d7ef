package planner

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/rota/internal/config"
	"github.com/julianstephens/rota/internal/constants"
	"github.com/julianstephens/rota/internal/models"
	"github.com/julianstephens/rota/internal/roster"
	"github.com/julianstephens/rota/internal/storage/sqlite"
	"github.com/julianstephens/rota/internal/validation"
)

func setup(t *testing.T, records []roster.Record) *Planner {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "rota.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.ReplaceRoster(records); err != nil {
		t.Fatalf("ReplaceRoster: %v", err)
	}
	p, err := New(store, config.DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func week() []roster.Record {
	var records []roster.Record
	for _, day := range []string{"Monday", "Tuesday"} {
		for _, name := range []string{"A1", "A2", "A3", "A4"} {
			records = append(records, roster.Record{Name: name, Day: day, ShiftName: "shift_1", ShiftStart: "07:00", ShiftEnd: "15:00"})
		}
		for _, name := range []string{"B1", "B2", "B3"} {
			records = append(records, roster.Record{Name: name, Day: day, ShiftName: "shift_2", ShiftStart: "13:00", ShiftEnd: "21:00"})
		}
		for _, name := range []string{"C1", "C2", "C3"} {
			records = append(records, roster.Record{Name: name, Day: day, ShiftName: "shift_3", ShiftStart: "15:00", ShiftEnd: "23:00"})
		}
	}
	return records
}

func TestPlanStoresSchedule(t *testing.T) {
	p := setup(t, week())

	sched, res, err := p.Plan("Monday")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if sched.Revision != 1 || sched.Source != constants.SourceSolver {
		t.Errorf("unexpected schedule %+v", sched)
	}
	if len(sched.Assignment.Rows) != 10 {
		t.Errorf("expected 10 rows, got %d", len(sched.Assignment.Rows))
	}

	stored, err := p.Store().GetLatestSchedule("Monday")
	if err != nil {
		t.Fatalf("GetLatestSchedule: %v", err)
	}
	if len(stored.Violations) != len(res.Violations) {
		t.Errorf("stored %d violations, solver reported %d", len(stored.Violations), len(res.Violations))
	}

	report, err := p.Validate(stored.Assignment)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	for _, name := range []string{validation.CheckDoubleBooking, validation.CheckOneBreak} {
		if c, ok := report.Check(name); !ok || !c.Pass {
			t.Errorf("%s failed on a solved day: %+v", name, c)
		}
	}
}

func TestPlanReplansWorkingRevision(t *testing.T) {
	p := setup(t, week())

	if _, _, err := p.Plan("Monday"); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	again, _, err := p.Plan("Monday")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if again.Revision != 1 {
		t.Errorf("re-plan of unaccepted day created revision %d", again.Revision)
	}

	if err := p.Store().AcceptSchedule("Monday", 0); err != nil {
		t.Fatalf("AcceptSchedule: %v", err)
	}
	next, _, err := p.Plan("Monday")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if next.Revision != 2 {
		t.Errorf("re-plan of accepted day created revision %d, want 2", next.Revision)
	}
}

func TestPlanEmptyDay(t *testing.T) {
	p := setup(t, week())

	_, _, err := p.Plan("Sunday")
	var empty *roster.EmptyRosterError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyRosterError, got %v", err)
	}
	if empty.Day != "Sunday" {
		t.Errorf("EmptyRosterError.Day = %q", empty.Day)
	}
}

func TestPlanWeek(t *testing.T) {
	p := setup(t, week())

	outcomes, err := p.PlanWeek(context.Background())
	if err != nil {
		t.Fatalf("PlanWeek: %v", err)
	}
	if len(outcomes) != 2 || outcomes[0].Day != "Monday" || outcomes[1].Day != "Tuesday" {
		t.Fatalf("unexpected outcomes %+v", outcomes)
	}
	for _, out := range outcomes {
		if out.Err != nil {
			t.Errorf("%s: %v", out.Day, out.Err)
		}
	}

	summaries, err := p.Store().ListSchedules()
	if err != nil {
		t.Fatalf("ListSchedules: %v", err)
	}
	if len(summaries) != 2 {
		t.Errorf("expected 2 stored schedules, got %d", len(summaries))
	}
}

func TestImport(t *testing.T) {
	p := setup(t, nil)

	a := models.Assignment{Rows: []models.Row{
		{Employee: "Z", Entries: []models.Entry{{Time: "12:00", Task: "Float_0"}, {Time: "12:00", Task: "Float_1"}}},
	}}
	sched, report, err := p.Import("Friday", a)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if sched.Source != constants.SourceImport {
		t.Errorf("source = %q", sched.Source)
	}
	if c, _ := report.Check(validation.CheckDoubleBooking); c.Pass {
		t.Error("double booking should be reported for imported assignment")
	}

	stored, err := p.Store().GetLatestSchedule("Friday")
	if err != nil {
		t.Fatalf("GetLatestSchedule: %v", err)
	}
	failed := report.Failed()
	if len(failed) == 0 || len(stored.Violations) != len(failed) {
		t.Fatalf("stored %d violations for %d failed checks", len(stored.Violations), len(failed))
	}
	if stored.Violations[0].Rule != failed[0].Rule || stored.Violations[0].Details != failed[0].Details {
		t.Errorf("stored violation %+v does not match check %+v", stored.Violations[0], failed[0])
	}
	summaries, err := p.Store().ListSchedules()
	if err != nil {
		t.Fatalf("ListSchedules: %v", err)
	}
	if len(summaries) != 1 || summaries[0].Violations != len(failed) {
		t.Errorf("summaries = %+v, want %d violations", summaries, len(failed))
	}

	_, _, err = p.Import("Friday", models.Assignment{Rows: []models.Row{{Employee: ""}}})
	var malformed *models.MalformedAssignmentError
	if !errors.As(err, &malformed) {
		t.Errorf("expected MalformedAssignmentError, got %v", err)
	}
}

func TestPlanLowercaseRosterHeaders(t *testing.T) {
	records, err := roster.ParseCSV(strings.NewReader("Name,thursday\nAlice,7.00-15.00\nBen,13.00\n"), roster.DefaultShifts())
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	p := setup(t, records)

	sched, _, err := p.Plan("thu")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if sched.Day != "Thursday" || len(sched.Assignment.Rows) != 2 {
		t.Errorf("planned day %q with %d rows", sched.Day, len(sched.Assignment.Rows))
	}
	if _, err := p.Store().GetLatestSchedule("Thursday"); err != nil {
		t.Errorf("GetLatestSchedule(Thursday): %v", err)
	}
}

func TestUnderstaffed(t *testing.T) {
	if !Understaffed(constants.MinRecommendedStaff - 1) {
		t.Errorf("%d staff should be understaffed", constants.MinRecommendedStaff-1)
	}
	if Understaffed(constants.MinRecommendedStaff) {
		t.Errorf("%d staff should not be understaffed", constants.MinRecommendedStaff)
	}
}
