package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// nameColumn is the header of the employee column in an uploaded roster.
const nameColumn = "Name"

// ParseCSV reads a wide roster: a Name column followed by one column per day
// whose cells hold shift spellings or "off".
func ParseCSV(r io.Reader, shifts []ShiftDefinition) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read roster csv: %w", err)
	}
	return parseTable(rows, shifts)
}

// ParseXLSX reads a wide roster from the first sheet of a workbook.
func ParseXLSX(r io.Reader, shifts []ShiftDefinition) ([]Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("roster workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return parseTable(rows, shifts)
}

// ParseFile picks the parser from the file extension.
func ParseFile(name string, r io.Reader, shifts []ShiftDefinition) ([]Record, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return ParseCSV(r, shifts)
	case strings.HasSuffix(lower, ".xlsx"), strings.HasSuffix(lower, ".xlsm"):
		return ParseXLSX(r, shifts)
	default:
		return nil, fmt.Errorf("unsupported roster file %q: expected .csv or .xlsx", name)
	}
}

func parseTable(rows [][]string, shifts []ShiftDefinition) ([]Record, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("roster is empty")
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	if len(header) == 0 || !strings.EqualFold(header[0], nameColumn) {
		return nil, fmt.Errorf("roster must start with a %q column", nameColumn)
	}

	var records []Record
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			continue
		}
		for col := 1; col < len(header) && col < len(row); col++ {
			day := CanonicalDay(header[col])
			if day == "" {
				continue
			}
			shiftName := NormalizeShift(shifts, row[col])
			if shiftName == "" {
				continue
			}
			def, _ := FindShift(shifts, shiftName)
			records = append(records, Record{
				Name:       name,
				Day:        day,
				ShiftName:  def.Name,
				ShiftStart: def.Start,
				ShiftEnd:   def.End,
			})
		}
	}
	return records, nil
}
