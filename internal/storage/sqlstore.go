package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/rota/internal/constants"
	"github.com/julianstephens/rota/internal/migration"
	"github.com/julianstephens/rota/internal/models"
	"github.com/julianstephens/rota/internal/roster"
)

// SQLStore implements the roster and schedule operations of Provider over
// database/sql. The driver-specific stores embed it and add the lifecycle.
type SQLStore struct {
	db      *sql.DB
	dialect migration.Dialect
}

func NewSQLStore(db *sql.DB, dialect migration.Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// DB returns the underlying connection.
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

func (s *SQLStore) q(query string) string {
	return s.dialect.Rebind(query)
}

func (s *SQLStore) ReplaceRoster(records []roster.Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM roster_entries"); err != nil {
		return fmt.Errorf("failed to clear roster: %w", err)
	}
	for i, rec := range records {
		id := rec.ID
		if id == "" {
			id = uuid.New().String()
		}
		_, err := tx.Exec(s.q(`INSERT INTO roster_entries (id, position, name, day, shift_name, shift_start, shift_end)
			VALUES (?, ?, ?, ?, ?, ?, ?)`),
			id, i, rec.Name, rec.Day, rec.ShiftName, rec.ShiftStart, rec.ShiftEnd)
		if err != nil {
			return fmt.Errorf("failed to insert roster record %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}

func (s *SQLStore) GetRoster() ([]roster.Record, error) {
	rows, err := s.db.Query("SELECT id, name, day, shift_name, shift_start, shift_end FROM roster_entries ORDER BY position")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []roster.Record
	for rows.Next() {
		var rec roster.Record
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Day, &rec.ShiftName, &rec.ShiftStart, &rec.ShiftEnd); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SaveSchedule stores a schedule. With Revision 0 the latest revision of the day is
// overwritten unless it was accepted, in which case a new revision is created.
// ID, Revision and CreatedAt are filled in on the passed schedule.
func (s *SQLStore) SaveSchedule(sched *models.Schedule) error {
	if sched.Day == "" {
		return fmt.Errorf("schedule has no day")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var latest int
	var acceptedAt sql.NullString
	err = tx.QueryRow(s.q("SELECT revision, accepted_at FROM schedules WHERE day = ? ORDER BY revision DESC LIMIT 1"), sched.Day).
		Scan(&latest, &acceptedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		latest = 0
	case err != nil:
		return fmt.Errorf("failed to check existing schedule: %w", err)
	}

	if sched.Revision == 0 {
		switch {
		case latest == 0:
			sched.Revision = 1
		case acceptedAt.Valid:
			sched.Revision = latest + 1
		default:
			sched.Revision = latest
		}
	}

	var existingID string
	var existingAccepted sql.NullString
	err = tx.QueryRow(s.q("SELECT id, accepted_at FROM schedules WHERE day = ? AND revision = ?"), sched.Day, sched.Revision).
		Scan(&existingID, &existingAccepted)
	switch {
	case err == nil:
		if existingAccepted.Valid {
			return fmt.Errorf("%w: %s revision %d", ErrAccepted, sched.Day, sched.Revision)
		}
		if err := deleteSchedule(tx, s.q, existingID); err != nil {
			return err
		}
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("failed to check existing revision: %w", err)
	}

	if sched.ID == "" || sched.ID == existingID {
		sched.ID = uuid.New().String()
	}
	if sched.CreatedAt.IsZero() {
		sched.CreatedAt = time.Now().UTC()
	}
	if sched.Source == "" {
		sched.Source = constants.SourceSolver
	}
	violations := sched.Violations
	if violations == nil {
		violations = []models.Violation{}
	}
	violationsJSON, err := json.Marshal(violations)
	if err != nil {
		return fmt.Errorf("failed to encode violations: %w", err)
	}

	_, err = tx.Exec(s.q(`INSERT INTO schedules (id, day, revision, source, created_at, accepted_at, violations)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		sched.ID, sched.Day, sched.Revision, sched.Source, formatTime(sched.CreatedAt), nullTime(sched.AcceptedAt), string(violationsJSON))
	if err != nil {
		return fmt.Errorf("failed to insert schedule: %w", err)
	}

	for ri, row := range sched.Assignment.Rows {
		if _, err := tx.Exec(s.q("INSERT INTO schedule_rows (schedule_id, row_index, employee) VALUES (?, ?, ?)"),
			sched.ID, ri, row.Employee); err != nil {
			return fmt.Errorf("failed to insert row for %s: %w", row.Employee, err)
		}
		for pos, e := range row.Entries {
			if _, err := tx.Exec(s.q("INSERT INTO schedule_entries (schedule_id, row_index, position, slot, task) VALUES (?, ?, ?, ?, ?)"),
				sched.ID, ri, pos, e.Time, e.Task); err != nil {
				return fmt.Errorf("failed to insert entry for %s at %s: %w", row.Employee, e.Time, err)
			}
		}
	}

	return tx.Commit()
}

func (s *SQLStore) GetLatestSchedule(day string) (models.Schedule, error) {
	row := s.db.QueryRow(s.q(`SELECT id, day, revision, source, created_at, accepted_at, violations
		FROM schedules WHERE day = ? ORDER BY revision DESC LIMIT 1`), day)
	return s.loadSchedule(row, day, 0)
}

func (s *SQLStore) GetScheduleRevision(day string, revision int) (models.Schedule, error) {
	row := s.db.QueryRow(s.q(`SELECT id, day, revision, source, created_at, accepted_at, violations
		FROM schedules WHERE day = ? AND revision = ?`), day, revision)
	return s.loadSchedule(row, day, revision)
}

func (s *SQLStore) loadSchedule(row *sql.Row, day string, revision int) (models.Schedule, error) {
	var sched models.Schedule
	var createdAt string
	var acceptedAt sql.NullString
	var violations []byte
	err := row.Scan(&sched.ID, &sched.Day, &sched.Revision, &sched.Source, &createdAt, &acceptedAt, &violations)
	if errors.Is(err, sql.ErrNoRows) {
		if revision > 0 {
			return models.Schedule{}, fmt.Errorf("%w: schedule for %s revision %d", ErrNotFound, day, revision)
		}
		return models.Schedule{}, fmt.Errorf("%w: schedule for %s", ErrNotFound, day)
	}
	if err != nil {
		return models.Schedule{}, err
	}

	if sched.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Schedule{}, err
	}
	if acceptedAt.Valid {
		t, err := parseTime(acceptedAt.String)
		if err != nil {
			return models.Schedule{}, err
		}
		sched.AcceptedAt = &t
	}
	if err := json.Unmarshal(violations, &sched.Violations); err != nil {
		return models.Schedule{}, fmt.Errorf("failed to decode violations: %w", err)
	}
	if len(sched.Violations) == 0 {
		sched.Violations = nil
	}

	sched.Assignment, err = s.loadAssignment(sched.ID)
	if err != nil {
		return models.Schedule{}, err
	}
	return sched, nil
}

func (s *SQLStore) loadAssignment(scheduleID string) (models.Assignment, error) {
	var a models.Assignment

	rows, err := s.db.Query(s.q("SELECT employee FROM schedule_rows WHERE schedule_id = ? ORDER BY row_index"), scheduleID)
	if err != nil {
		return a, err
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return a, err
		}
		a.Rows = append(a.Rows, models.Row{Employee: name, Entries: []models.Entry{}})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return a, err
	}

	entries, err := s.db.Query(s.q("SELECT row_index, slot, task FROM schedule_entries WHERE schedule_id = ? ORDER BY row_index, position"), scheduleID)
	if err != nil {
		return a, err
	}
	defer entries.Close()
	for entries.Next() {
		var ri int
		var e models.Entry
		if err := entries.Scan(&ri, &e.Time, &e.Task); err != nil {
			return a, err
		}
		if ri < 0 || ri >= len(a.Rows) {
			return a, fmt.Errorf("schedule %s has an entry for missing row %d", scheduleID, ri)
		}
		a.Rows[ri].Entries = append(a.Rows[ri].Entries, e)
	}
	return a, entries.Err()
}

// ListSchedules returns every stored revision, days in week order.
func (s *SQLStore) ListSchedules() ([]models.ScheduleSummary, error) {
	rows, err := s.db.Query(`SELECT s.id, s.day, s.revision, s.source, s.created_at, s.accepted_at, s.violations,
		(SELECT COUNT(DISTINCT r.employee) FROM schedule_rows r WHERE r.schedule_id = s.id)
		FROM schedules s`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ScheduleSummary
	for rows.Next() {
		var sum models.ScheduleSummary
		var createdAt string
		var acceptedAt sql.NullString
		var violations []byte
		if err := rows.Scan(&sum.ID, &sum.Day, &sum.Revision, &sum.Source, &createdAt, &acceptedAt, &violations, &sum.Employees); err != nil {
			return nil, err
		}
		if sum.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		sum.Accepted = acceptedAt.Valid
		var vs []models.Violation
		if err := json.Unmarshal(violations, &vs); err != nil {
			return nil, fmt.Errorf("failed to decode violations: %w", err)
		}
		sum.Violations = len(vs)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		di, dj := dayOrder(out[i].Day), dayOrder(out[j].Day)
		if di != dj {
			return di < dj
		}
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		return out[i].Revision < out[j].Revision
	})
	return out, nil
}

// AcceptSchedule marks a revision as accepted. Revision 0 means the latest.
func (s *SQLStore) AcceptSchedule(day string, revision int) error {
	if revision == 0 {
		latest, err := s.GetLatestSchedule(day)
		if err != nil {
			return err
		}
		revision = latest.Revision
	}
	res, err := s.db.Exec(s.q("UPDATE schedules SET accepted_at = ? WHERE day = ? AND revision = ? AND accepted_at IS NULL"),
		formatTime(time.Now().UTC()), day, revision)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := s.GetScheduleRevision(day, revision); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s revision %d", ErrAccepted, day, revision)
	}
	return nil
}

// DeleteSchedule removes one revision. Revision 0 means the latest.
func (s *SQLStore) DeleteSchedule(day string, revision int) error {
	var sched models.Schedule
	var err error
	if revision == 0 {
		sched, err = s.GetLatestSchedule(day)
	} else {
		sched, err = s.GetScheduleRevision(day, revision)
	}
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := deleteSchedule(tx, s.q, sched.ID); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteSchedule(tx *sql.Tx, q func(string) string, id string) error {
	for _, stmt := range []string{
		"DELETE FROM schedule_entries WHERE schedule_id = ?",
		"DELETE FROM schedule_rows WHERE schedule_id = ?",
		"DELETE FROM schedules WHERE id = ?",
	} {
		if _, err := tx.Exec(q(stmt), id); err != nil {
			return fmt.Errorf("failed to delete schedule %s: %w", id, err)
		}
	}
	return nil
}

func dayOrder(day string) int {
	for i, d := range constants.Days {
		if d == day {
			return i
		}
	}
	return len(constants.Days)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
