package storage

import (
	"errors"

	"github.com/julianstephens/rota/internal/models"
	"github.com/julianstephens/rota/internal/roster"
)

var (
	// ErrNotFound is returned when a schedule or revision does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAccepted is returned when a write would overwrite an accepted schedule.
	ErrAccepted = errors.New("schedule already accepted")
)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Roster
	ReplaceRoster([]roster.Record) error
	GetRoster() ([]roster.Record, error)

	// Schedules
	SaveSchedule(*models.Schedule) error
	GetLatestSchedule(day string) (models.Schedule, error)
	GetScheduleRevision(day string, revision int) (models.Schedule, error)
	ListSchedules() ([]models.ScheduleSummary, error)
	AcceptSchedule(day string, revision int) error
	DeleteSchedule(day string, revision int) error

	// Utils
	GetConfigPath() string
}
