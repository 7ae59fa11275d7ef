package roster

import "fmt"

// EmptyRosterError means nobody is available on a day; scheduling must not proceed.
type EmptyRosterError struct {
	Day string
}

func (e *EmptyRosterError) Error() string {
	if e.Day == "" {
		return "no employees available"
	}
	return fmt.Sprintf("no employees available on %s", e.Day)
}

// InvalidRosterRecordError reports one roster record that could not be used.
type InvalidRosterRecordError struct {
	Index  int
	Name   string
	Day    string
	Reason string
}

func (e *InvalidRosterRecordError) Error() string {
	who := e.Name
	if who == "" {
		who = "<unnamed>"
	}
	return fmt.Sprintf("roster record %d (%s, %s): %s", e.Index+1, who, e.Day, e.Reason)
}
