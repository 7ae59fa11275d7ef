// Package storagetest holds the behaviour every storage.Provider must share.
package storagetest

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/rota/internal/constants"
	"github.com/julianstephens/rota/internal/models"
	"github.com/julianstephens/rota/internal/roster"
	"github.com/julianstephens/rota/internal/storage"
)

// Run exercises p, which must be initialised and empty.
func Run(t *testing.T, p storage.Provider) {
	t.Run("Roster", func(t *testing.T) { testRoster(t, p) })
	t.Run("ScheduleRevisions", func(t *testing.T) { testScheduleRevisions(t, p) })
	t.Run("ScheduleRoundTrip", func(t *testing.T) { testScheduleRoundTrip(t, p) })
	t.Run("ListAndDelete", func(t *testing.T) { testListAndDelete(t, p) })
}

func testRoster(t *testing.T, p storage.Provider) {
	records := []roster.Record{
		{Name: "Ana", Day: "Monday", ShiftName: "shift_1", ShiftStart: "07:00", ShiftEnd: "15:00"},
		{Name: "Ben", Day: "Monday", ShiftName: "shift_2", ShiftStart: "13:00", ShiftEnd: "21:00"},
	}
	if err := p.ReplaceRoster(records); err != nil {
		t.Fatalf("ReplaceRoster: %v", err)
	}
	got, err := p.GetRoster()
	if err != nil {
		t.Fatalf("GetRoster: %v", err)
	}
	if len(got) != 2 || got[0].ID == "" {
		t.Fatalf("GetRoster returned %+v", got)
	}
	for i := range got {
		got[i].ID = ""
	}
	if diff := cmp.Diff(records, got); diff != "" {
		t.Errorf("roster mismatch (-want +got):\n%s", diff)
	}

	replacement := []roster.Record{{Name: "Cy", Day: "Tuesday", ShiftStart: "15:00", ShiftEnd: "23:00"}}
	if err := p.ReplaceRoster(replacement); err != nil {
		t.Fatalf("ReplaceRoster: %v", err)
	}
	got, _ = p.GetRoster()
	if len(got) != 1 || got[0].Name != "Cy" {
		t.Errorf("roster was not replaced: %+v", got)
	}
}

func schedule(day string, tasks ...string) *models.Schedule {
	row := models.Row{Employee: "Ana"}
	for i, task := range tasks {
		row.Entries = append(row.Entries, models.Entry{Time: models.DefaultSlots().Label(models.TimeSlot(i)), Task: task})
	}
	return &models.Schedule{Day: day, Assignment: models.Assignment{Rows: []models.Row{row}}}
}

func testScheduleRevisions(t *testing.T, p storage.Provider) {
	first := schedule("Wednesday", "Floor_0")
	if err := p.SaveSchedule(first); err != nil {
		t.Fatalf("SaveSchedule: %v", err)
	}
	if first.Revision != 1 || first.ID == "" || first.Source != constants.SourceSolver {
		t.Fatalf("unexpected saved schedule %+v", first)
	}

	// Unaccepted revisions are overwritten in place.
	second := schedule("Wednesday", "Floor_1")
	if err := p.SaveSchedule(second); err != nil {
		t.Fatalf("SaveSchedule: %v", err)
	}
	if second.Revision != 1 {
		t.Errorf("revision = %d, want 1", second.Revision)
	}
	latest, err := p.GetLatestSchedule("Wednesday")
	if err != nil {
		t.Fatalf("GetLatestSchedule: %v", err)
	}
	if task, _ := latest.Assignment.Rows[0].Task("07:00"); task != "Floor_1" {
		t.Errorf("latest task = %q, want Floor_1", task)
	}

	if err := p.AcceptSchedule("Wednesday", 0); err != nil {
		t.Fatalf("AcceptSchedule: %v", err)
	}
	if err := p.AcceptSchedule("Wednesday", 1); !errors.Is(err, storage.ErrAccepted) {
		t.Errorf("second accept: expected ErrAccepted, got %v", err)
	}

	// Accepted revisions are kept; a new one is created.
	third := schedule("Wednesday", "Floor_2")
	if err := p.SaveSchedule(third); err != nil {
		t.Fatalf("SaveSchedule: %v", err)
	}
	if third.Revision != 2 {
		t.Errorf("revision = %d, want 2", third.Revision)
	}

	overwrite := schedule("Wednesday", "Floor_4")
	overwrite.Revision = 1
	if err := p.SaveSchedule(overwrite); !errors.Is(err, storage.ErrAccepted) {
		t.Errorf("overwriting accepted revision: expected ErrAccepted, got %v", err)
	}

	rev1, err := p.GetScheduleRevision("Wednesday", 1)
	if err != nil {
		t.Fatalf("GetScheduleRevision: %v", err)
	}
	if rev1.AcceptedAt == nil {
		t.Error("revision 1 should be accepted")
	}
	if _, err := p.GetScheduleRevision("Wednesday", 9); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := p.GetLatestSchedule("Sunday"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func testScheduleRoundTrip(t *testing.T, p storage.Provider) {
	created := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	want := &models.Schedule{
		Day:       "Thursday",
		Source:    constants.SourceImport,
		CreatedAt: created,
		Assignment: models.Assignment{Rows: []models.Row{
			{Employee: "Zed", Entries: []models.Entry{{Time: "12:00", Task: "Break"}, {Time: "10:00", Task: "Egress"}}},
			{Employee: "Amy", Entries: []models.Entry{}},
			{Employee: "Zed", Entries: []models.Entry{{Time: "10:00", Task: "Float_0"}}},
		}},
		Violations: []models.Violation{{Rule: "Egress (exactly 2, 10-12)", Task: "Egress", Time: "11:00", Assigned: 0, Required: 2}},
	}
	if err := p.SaveSchedule(want); err != nil {
		t.Fatalf("SaveSchedule: %v", err)
	}

	got, err := p.GetLatestSchedule("Thursday")
	if err != nil {
		t.Fatalf("GetLatestSchedule: %v", err)
	}
	if diff := cmp.Diff(*want, got); diff != "" {
		t.Errorf("schedule mismatch (-want +got):\n%s", diff)
	}
}

func testListAndDelete(t *testing.T, p storage.Provider) {
	if err := p.SaveSchedule(schedule("Monday", "Egress")); err != nil {
		t.Fatalf("SaveSchedule: %v", err)
	}

	list, err := p.ListSchedules()
	if err != nil {
		t.Fatalf("ListSchedules: %v", err)
	}
	var days []string
	for _, s := range list {
		days = append(days, s.Day)
	}
	// Earlier subtests stored Wednesday r1 and r2 and Thursday r1.
	if diff := cmp.Diff([]string{"Monday", "Wednesday", "Wednesday", "Thursday"}, days); diff != "" {
		t.Errorf("list order mismatch (-want +got):\n%s", diff)
	}
	for _, s := range list {
		if s.Day == "Thursday" && (s.Employees != 2 || s.Violations != 1) {
			t.Errorf("Thursday summary = %+v", s)
		}
		if s.Day == "Wednesday" && s.Revision == 1 && !s.Accepted {
			t.Errorf("Wednesday r1 should be accepted")
		}
	}

	if err := p.DeleteSchedule("Monday", 0); err != nil {
		t.Fatalf("DeleteSchedule: %v", err)
	}
	if _, err := p.GetLatestSchedule("Monday"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := p.DeleteSchedule("Monday", 1); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}
