package models

import "time"

// Violation is one unmet occupancy requirement at one slot. Imported
// schedules record failed validation checks, which carry Details instead of a slot.
type Violation struct {
	Rule     string `json:"rule"`
	Task     string `json:"task,omitempty"`
	Time     string `json:"time,omitempty"`
	Assigned int    `json:"assigned"`
	Required int    `json:"required"`
	Details  string `json:"details,omitempty"`
}

// Schedule is a stored assignment for one roster day.
type Schedule struct {
	ID         string      `json:"id"`
	Day        string      `json:"day"`
	Revision   int         `json:"revision"`
	Source     string      `json:"source"`
	CreatedAt  time.Time   `json:"created_at"`
	AcceptedAt *time.Time  `json:"accepted_at,omitempty"`
	Assignment Assignment  `json:"assignment"`
	Violations []Violation `json:"violations,omitempty"`
}

// ScheduleSummary is the listing view of a stored schedule.
type ScheduleSummary struct {
	ID         string
	Day        string
	Revision   int
	Source     string
	CreatedAt  time.Time
	Accepted   bool
	Employees  int
	Violations int
}
