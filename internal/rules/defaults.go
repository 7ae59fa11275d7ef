package rules

// DefaultFillTasks is the overflow priority list for staff with no required task.
// Outdoor-ALL has no rule and absorbs anyone the floats cannot take.
var DefaultFillTasks = []string{"Float_ALL", "Float_0", "Float_1", "Float_-1", "Outdoor-ALL"}

// DefaultRecords returns the gallery housekeeping catalog: opening floor duties,
// the outdoor sweep, egress and back-of-house rounds, restroom coverage and floats.
func DefaultRecords() []Record {
	openingFloors := &WindowRecord{From: "07:00", To: "09:00"}
	afterOpening := &WindowRecord{From: "10:00", To: "23:00"}
	floatHours := &WindowRecord{From: "11:00", To: "15:00"}

	return []Record{
		{Task: "Floor_-1", Shape: ShapeExact, Exact: 1, Slots: []string{"07:00"}, Name: "Floor_-1 (exactly 1, 07-08)"},
		{Task: "Floor_3", Shape: ShapeExact, Exact: 1, Slots: []string{"08:00"}, Name: "Floor_3 (exactly 1, 08-09)"},
		{Task: "Floor_0", Shape: ShapeRange, Min: 1, Max: 2, Window: openingFloors},
		{Task: "Floor_1", Shape: ShapeRange, Min: 1, Max: 2, Window: openingFloors},
		{Task: "Floor_2", Shape: ShapeExact, Exact: 2, Window: openingFloors, Name: "Floor_2 (exactly 2, 07-09)"},
		{Task: "Floor_4", Shape: ShapeRange, Min: 1, Max: 2, Window: openingFloors},
		{Task: "Outdoor - DP", Shape: ShapeRange, Min: 1, Slots: []string{"09:00"}},
		{Task: "Outdoor - Hallway", Shape: ShapeRange, Min: 1, Slots: []string{"09:00"}},
		{Task: "Outdoor - SideHallway", Shape: ShapeRange, Min: 1, Slots: []string{"09:00"}},
		{Task: "Outdoor - Main Gate", Shape: ShapeRange, Min: 1, Slots: []string{"09:00"}},
		{Task: "Egress", Shape: ShapeExact, Exact: 2, Window: &WindowRecord{From: "10:00", To: "12:00"}, Name: "Egress (exactly 2, 10-12)"},
		{Task: "BOH-Breakroom", Shape: ShapeExact, Exact: 1, Slots: []string{"10:00", "14:00"}, Name: "BOH-Breakroom (exactly 1)"},
		{Task: "BOH-Restrooms", Shape: ShapeExact, Exact: 1, Slots: []string{"10:00", "14:00"}, Name: "BOH-Restrooms (exactly 1)"},
		{
			Task:         "Restroom_2",
			Shape:        ShapeRange,
			Min:          1,
			Max:          2,
			Steps:        []StepRecord{{From: "14:00", Min: 2}},
			Window:       afterOpening,
			MaxPerPerson: "2h",
			Name:         "Restroom_2 staffing",
		},
		{Task: "Restroom_4", Shape: ShapeExact, Exact: 1, Window: afterOpening, MaxPerPerson: "2h", Name: "Restroom_4 staffing (exactly 1)"},
		{Task: "Float_ALL", Shape: ShapeCeiling, Max: 1, Window: floatHours},
		{Task: "Float_0", Shape: ShapeCeiling, Max: 1, Window: floatHours},
		{Task: "Float_1", Shape: ShapeCeiling, Max: 1, Window: floatHours},
		{Task: "Float_-1", Shape: ShapeCeiling, Max: 1, Window: floatHours},
	}
}
