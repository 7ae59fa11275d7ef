// Package exchange reads and writes assignment documents: the JSON document
// external producers emit, and the flat CSV export.
package exchange

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/julianstephens/rota/internal/models"
)

var (
	thinkBlock    = regexp.MustCompile(`(?s)<think>.*?</think>`)
	responseBlock = regexp.MustCompile(`(?s)<response>(.*?)</response>`)
)

// csvHeader is the column layout of exported assignments.
var csvHeader = []string{"Employee", "Time", "Task"}

// ParseResponse extracts an assignment document from producer output. The text may be
// the bare JSON document or wrap it in <response> tags after a <think> block.
func ParseResponse(text string) (models.Assignment, error) {
	body := thinkBlock.ReplaceAllString(text, "")
	if m := responseBlock.FindStringSubmatch(body); m != nil {
		body = m[1]
	}
	body = strings.TrimSpace(body)

	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start < 0 || end < start {
		return models.Assignment{}, &models.MalformedAssignmentError{Reason: "no JSON object in response"}
	}

	var a models.Assignment
	if err := json.Unmarshal([]byte(body[start:end+1]), &a); err != nil {
		return models.Assignment{}, fmt.Errorf("failed to decode assignment: %w", err)
	}
	return a, nil
}

// ReadJSON reads a whole document from r; see ParseResponse.
func ReadJSON(r io.Reader) (models.Assignment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.Assignment{}, fmt.Errorf("failed to read assignment: %w", err)
	}
	return ParseResponse(string(data))
}

// WriteJSON writes the assignment document, indented, keeping slot order.
func WriteJSON(w io.Writer, a models.Assignment) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode assignment: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return fmt.Errorf("failed to indent assignment: %w", err)
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(w)
	return err
}

// WriteCSV writes one Employee,Time,Task line per entry.
func WriteCSV(w io.Writer, a models.Assignment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range a.Rows {
		for _, e := range row.Entries {
			if err := cw.Write([]string{row.Employee, e.Time, e.Task}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads an export written by WriteCSV. Lines of the same employee are
// grouped into one row in first-seen order.
func ReadCSV(r io.Reader) (models.Assignment, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)
	records, err := cr.ReadAll()
	if err != nil {
		return models.Assignment{}, fmt.Errorf("failed to read assignment csv: %w", err)
	}
	if len(records) == 0 {
		return models.Assignment{}, &models.MalformedAssignmentError{Reason: "empty csv"}
	}
	for i, h := range csvHeader {
		if !strings.EqualFold(strings.TrimSpace(records[0][i]), h) {
			return models.Assignment{}, &models.MalformedAssignmentError{
				Reason: fmt.Sprintf("csv header must be %s", strings.Join(csvHeader, ",")),
			}
		}
	}

	var a models.Assignment
	index := make(map[string]int)
	for _, rec := range records[1:] {
		name := strings.TrimSpace(rec[0])
		i, ok := index[name]
		if !ok {
			i = len(a.Rows)
			index[name] = i
			a.Rows = append(a.Rows, models.Row{Employee: name})
		}
		a.Rows[i].Entries = append(a.Rows[i].Entries, models.Entry{
			Time: strings.TrimSpace(rec[1]),
			Task: strings.TrimSpace(rec[2]),
		})
	}
	return a, nil
}
