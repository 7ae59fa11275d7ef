package roster

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/julianstephens/rota/internal/models"
)

func TestNormalizeShift(t *testing.T) {
	shifts := DefaultShifts()
	tests := []struct {
		cell string
		want string
	}{
		{"7.00-3.00", "shift_1"},
		{"07:00", "shift_1"},
		{"13.00-9.00", "shift_2"},
		{"1.00pm", "shift_2"},
		{"15.00", "shift_3"},
		{"3.00", "shift_3"},
		{"Shift 2", "shift_2"},
		{"shift_3", "shift_3"},
		{"OFF", ""},
		{" off ", ""},
		{"", ""},
		{"vacation", ""},
	}
	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			if got := NormalizeShift(shifts, tt.cell); got != tt.want {
				t.Errorf("NormalizeShift(%q) = %q, want %q", tt.cell, got, tt.want)
			}
		})
	}
}

func TestNewUsesShiftBreakWindows(t *testing.T) {
	seq := models.DefaultSlots()
	records := []Record{
		{Name: "Ana", Day: "Monday", ShiftName: "shift_1", ShiftStart: "07:00", ShiftEnd: "15:00"},
		{Name: "Ben", Day: "Monday", ShiftName: "shift_3", ShiftStart: "15:00", ShiftEnd: "23:00"},
	}
	r, invalid := New(seq, DefaultShifts(), DefaultBreakPolicy(), records)
	if len(invalid) != 0 {
		t.Fatalf("unexpected invalid records: %v", invalid)
	}

	emps, err := r.AvailableEmployees("Monday")
	if err != nil {
		t.Fatalf("AvailableEmployees: %v", err)
	}
	if len(emps) != 2 {
		t.Fatalf("got %d employees, want 2", len(emps))
	}
	if got := emps[0].Break.Format(seq); got != "11:00-13:00" {
		t.Errorf("Ana break = %s, want 11:00-13:00", got)
	}
	if got := emps[1].Shift.Format(seq); got != "15:00-23:00" {
		t.Errorf("Ben shift = %s, want 15:00-23:00", got)
	}
	if got := emps[1].Break.Format(seq); got != "19:00-21:00" {
		t.Errorf("Ben break = %s, want 19:00-21:00", got)
	}
}

func TestNewBreakPolicyForCustomShift(t *testing.T) {
	seq := models.DefaultSlots()
	records := []Record{
		{Name: "Cy", Day: "Tuesday", ShiftStart: "09:00", ShiftEnd: "17:00"},
		{Name: "Di", Day: "Tuesday", ShiftStart: "20:00", ShiftEnd: "23:00"},
	}
	r, invalid := New(seq, DefaultShifts(), DefaultBreakPolicy(), records)
	if len(invalid) != 0 {
		t.Fatalf("unexpected invalid records: %v", invalid)
	}
	emps, _ := r.AvailableEmployees("Tuesday")
	if got := emps[0].Break.Format(seq); got != "13:00-15:00" {
		t.Errorf("Cy break = %s, want 13:00-15:00", got)
	}
	if got := emps[1].Break.Format(seq); got != "21:00-23:00" {
		t.Errorf("Di break = %s, want 21:00-23:00", got)
	}
}

func TestNewRejectsBadRecords(t *testing.T) {
	seq := models.DefaultSlots()
	records := []Record{
		{Name: "", Day: "Monday", ShiftStart: "07:00", ShiftEnd: "15:00"},
		{Name: "Ana", Day: "Monday", ShiftStart: "07:30", ShiftEnd: "15:00"},
		{Name: "Ben", Day: "Monday", ShiftStart: "15:00", ShiftEnd: "07:00"},
		{Name: "Cy", Day: "Monday", ShiftStart: "07:00", ShiftEnd: "15:00"},
		{Name: "Cy", Day: "Monday", ShiftStart: "13:00", ShiftEnd: "21:00"},
		{Name: "Di", Day: "", ShiftStart: "07:00", ShiftEnd: "15:00"},
	}
	r, invalid := New(seq, DefaultShifts(), DefaultBreakPolicy(), records)

	var idx []int
	for _, e := range invalid {
		idx = append(idx, e.Index)
	}
	if diff := cmp.Diff([]int{0, 1, 2, 4, 5}, idx); diff != "" {
		t.Errorf("invalid record indexes mismatch (-want +got):\n%s", diff)
	}

	emps, err := r.AvailableEmployees("Monday")
	if err != nil {
		t.Fatalf("AvailableEmployees: %v", err)
	}
	if len(emps) != 1 || emps[0].Name != "Cy" {
		t.Errorf("got %v, want only Cy", emps)
	}
	if !strings.Contains(invalid[0].Error(), "<unnamed>") {
		t.Errorf("error for unnamed record = %q", invalid[0].Error())
	}
}

func TestAvailableEmployeesEmptyDay(t *testing.T) {
	r, _ := New(models.DefaultSlots(), DefaultShifts(), DefaultBreakPolicy(), nil)
	_, err := r.AvailableEmployees("Sunday")

	var empty *EmptyRosterError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyRosterError, got %v", err)
	}
	if empty.Day != "Sunday" {
		t.Errorf("Day = %q, want Sunday", empty.Day)
	}
}

func TestDaysFirstSeenOrder(t *testing.T) {
	records := []Record{
		{Name: "Ana", Day: "Wednesday", ShiftStart: "07:00", ShiftEnd: "15:00"},
		{Name: "Ana", Day: "Monday", ShiftStart: "07:00", ShiftEnd: "15:00"},
		{Name: "Ben", Day: "Wednesday", ShiftStart: "13:00", ShiftEnd: "21:00"},
	}
	r, _ := New(models.DefaultSlots(), DefaultShifts(), DefaultBreakPolicy(), records)
	if diff := cmp.Diff([]string{"Wednesday", "Monday"}, r.Days()); diff != "" {
		t.Errorf("Days mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCSV(t *testing.T) {
	input := "Name, Monday ,Tuesday\nAna,7.00-3.00,off\nBen,OFF,shift 3\n,7.00,7.00\n"
	got, err := ParseCSV(strings.NewReader(input), DefaultShifts())
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	want := []Record{
		{Name: "Ana", Day: "Monday", ShiftName: "shift_1", ShiftStart: "07:00", ShiftEnd: "15:00"},
		{Name: "Ben", Day: "Tuesday", ShiftName: "shift_3", ShiftStart: "15:00", ShiftEnd: "23:00"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCSVCanonicalDayHeaders(t *testing.T) {
	input := "Name,thursday,FRI,Holiday\nAna,7.00-15.00,off,7.00\n"
	records, err := ParseCSV(strings.NewReader(input), DefaultShifts())
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	var days []string
	for _, rec := range records {
		days = append(days, rec.Day)
	}
	if diff := cmp.Diff([]string{"Thursday", "Holiday"}, days); diff != "" {
		t.Errorf("days mismatch (-want +got):\n%s", diff)
	}

	r, invalid := New(models.DefaultSlots(), DefaultShifts(), DefaultBreakPolicy(), records)
	if len(invalid) != 0 {
		t.Fatalf("unexpected invalid records: %v", invalid)
	}
	for _, day := range []string{"Thursday", "thu", "THURSDAY"} {
		if emps, err := r.AvailableEmployees(day); err != nil || len(emps) != 1 {
			t.Errorf("AvailableEmployees(%q) = %d, %v", day, len(emps), err)
		}
	}
}

func TestNewCanonicalizesStoredDays(t *testing.T) {
	records := []Record{
		{Name: "Ana", Day: "monday", ShiftStart: "07:00", ShiftEnd: "15:00"},
		{Name: "Ana", Day: "Mon", ShiftStart: "07:00", ShiftEnd: "15:00"},
	}
	r, invalid := New(models.DefaultSlots(), DefaultShifts(), DefaultBreakPolicy(), records)
	if len(invalid) != 1 || invalid[0].Index != 1 {
		t.Errorf("expected the second Monday record to be a duplicate, got %v", invalid)
	}
	if diff := cmp.Diff([]string{"Monday"}, r.Days()); diff != "" {
		t.Errorf("Days mismatch (-want +got):\n%s", diff)
	}
}

func TestCanonicalDay(t *testing.T) {
	tests := map[string]string{
		"monday":   "Monday",
		" TUE ":    "Tuesday",
		"wed":      "Wednesday",
		"Sunday":   "Sunday",
		"Holiday":  "Holiday",
		"m":        "m",
		"satURDAY": "Saturday",
		"":         "",
	}
	for in, want := range tests {
		if got := CanonicalDay(in); got != want {
			t.Errorf("CanonicalDay(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseCSVRequiresNameColumn(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("Employee,Monday\nAna,7.00\n"), DefaultShifts())
	if err == nil {
		t.Fatal("expected error for missing Name column")
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	cells := map[string]string{
		"A1": "Name", "B1": "Monday", "C1": "Friday",
		"A2": "Ana", "B2": "13.00-21.00", "C2": "off",
		"A3": "Ben", "B3": "7.00", "C3": "15.00",
	}
	for cell, v := range cells {
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			t.Fatalf("SetCellValue: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	got, err := ParseXLSX(buf, DefaultShifts())
	if err != nil {
		t.Fatalf("ParseXLSX: %v", err)
	}
	want := []Record{
		{Name: "Ana", Day: "Monday", ShiftName: "shift_2", ShiftStart: "13:00", ShiftEnd: "21:00"},
		{Name: "Ben", Day: "Monday", ShiftName: "shift_1", ShiftStart: "07:00", ShiftEnd: "15:00"},
		{Name: "Ben", Day: "Friday", ShiftName: "shift_3", ShiftStart: "15:00", ShiftEnd: "23:00"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFileRejectsUnknownExtension(t *testing.T) {
	if _, err := ParseFile("roster.ods", strings.NewReader(""), DefaultShifts()); err == nil {
		t.Fatal("expected error for .ods file")
	}
}
