package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Entry is one time-label to task-label pair of an employee's row.
type Entry struct {
	Time string `json:"time"`
	Task string `json:"task"`
}

// Row is one employee's slot assignments in producer order.
// Duplicate time keys are kept so that validation can see them.
type Row struct {
	Employee string
	Entries  []Entry
}

// Assignment maps employees to their per-slot tasks. Rows keep producer order and
// may repeat an employee when an external producer emits colliding rows.
type Assignment struct {
	Rows []Row
}

// MalformedAssignmentError reports an assignment that cannot be interpreted at all.
type MalformedAssignmentError struct {
	Employee string
	Reason   string
}

func (e *MalformedAssignmentError) Error() string {
	if e.Employee == "" {
		return fmt.Sprintf("malformed assignment: %s", e.Reason)
	}
	return fmt.Sprintf("malformed assignment for %q: %s", e.Employee, e.Reason)
}

// Task returns the first task recorded at the given time label.
func (r Row) Task(label string) (string, bool) {
	for _, e := range r.Entries {
		if e.Time == label {
			return e.Task, true
		}
	}
	return "", false
}

// Employees returns the distinct employee names in first-seen order.
func (a Assignment) Employees() []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range a.Rows {
		if !seen[r.Employee] {
			seen[r.Employee] = true
			names = append(names, r.Employee)
		}
	}
	return names
}

// Row returns the first row for the named employee.
func (a Assignment) Row(employee string) (Row, bool) {
	for _, r := range a.Rows {
		if r.Employee == employee {
			return r, true
		}
	}
	return Row{}, false
}

// MarshalJSON writes {"employee": ..., "tasks": {...}} with tasks in entry order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	name, err := json.Marshal(r.Employee)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`{"employee":`)
	buf.Write(name)
	buf.WriteString(`,"tasks":{`)
	for i, e := range r.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Time)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Task)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a row, preserving key order and duplicate keys in "tasks".
func (r *Row) UnmarshalJSON(data []byte) error {
	var raw struct {
		Employee string          `json:"employee"`
		Tasks    json.RawMessage `json:"tasks"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return &MalformedAssignmentError{Reason: err.Error()}
	}

	entries, err := decodeTasks(raw.Tasks)
	if err != nil {
		return &MalformedAssignmentError{Employee: raw.Employee, Reason: err.Error()}
	}
	r.Employee = raw.Employee
	r.Entries = entries
	return nil
}

func decodeTasks(raw json.RawMessage) ([]Entry, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, fmt.Errorf("tasks is missing")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("tasks must be an object of time to task")
	}

	entries := []Entry{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)

		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		task, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("task at %s must be a string, got %T", key, value)
		}
		entries = append(entries, Entry{Time: key, Task: task})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return entries, nil
}

type assignmentDocument struct {
	Assignments []Row `json:"assignments"`
}

// MarshalJSON writes the {"assignments": [...]} document.
func (a Assignment) MarshalJSON() ([]byte, error) {
	rows := a.Rows
	if rows == nil {
		rows = []Row{}
	}
	return json.Marshal(assignmentDocument{Assignments: rows})
}

// UnmarshalJSON reads the {"assignments": [...]} document.
func (a *Assignment) UnmarshalJSON(data []byte) error {
	var doc struct {
		Assignments *[]Row `json:"assignments"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		var malformed *MalformedAssignmentError
		if errors.As(err, &malformed) {
			return malformed
		}
		return &MalformedAssignmentError{Reason: err.Error()}
	}
	if doc.Assignments == nil {
		return &MalformedAssignmentError{Reason: `missing "assignments" list`}
	}
	a.Rows = *doc.Assignments
	return nil
}
