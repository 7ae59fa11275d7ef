// Package config loads the rota configuration file: the operating day, shift
// definitions, solver tuning and the rule catalog.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/rota/internal/constants"
	"github.com/julianstephens/rota/internal/models"
	"github.com/julianstephens/rota/internal/roster"
	"github.com/julianstephens/rota/internal/rules"
	"github.com/julianstephens/rota/internal/scheduler"
)

// Config is the root configuration.
type Config struct {
	Day     DayConfig                `yaml:"day"`
	Shifts  []roster.ShiftDefinition `yaml:"shifts"`
	Breaks  BreakConfig              `yaml:"breaks"`
	Solver  SolverConfig             `yaml:"solver"`
	Rules   []rules.Record           `yaml:"rules"`
	Logging LoggingConfig            `yaml:"logging"`
}

// DayConfig is the operating day grid.
type DayConfig struct {
	Start       string `yaml:"start"`
	End         string `yaml:"end"`
	SlotMinutes int    `yaml:"slot_minutes"`
}

// BreakConfig places breaks for shifts that have no definition.
type BreakConfig struct {
	Offset string `yaml:"offset"` // from shift start
	Length string `yaml:"length"`
}

// SolverConfig tunes the assignment solver.
type SolverConfig struct {
	FillTasks    []string `yaml:"fill_tasks"`
	BreakStagger float64  `yaml:"break_stagger"`
}

// LoggingConfig controls the log file.
type LoggingConfig struct {
	Debug bool `yaml:"debug"`
}

// DefaultConfig returns the built-in gallery configuration.
func DefaultConfig() *Config {
	return &Config{
		Day: DayConfig{
			Start:       constants.DefaultDayStart,
			End:         constants.DefaultDayEnd,
			SlotMinutes: constants.DefaultSlotMin,
		},
		Shifts: roster.DefaultShifts(),
		Breaks: BreakConfig{
			Offset: "4h",
			Length: "2h",
		},
		Solver: SolverConfig{
			FillTasks:    append([]string(nil), rules.DefaultFillTasks...),
			BreakStagger: constants.DefaultBreakStagger,
		},
		Rules: rules.DefaultRecords(),
	}
}

// Load loads configuration from a YAML file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse decodes a configuration over the defaults. Unknown keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks that every section can be built.
func (c *Config) Validate() error {
	seq, err := c.Slots()
	if err != nil {
		return err
	}
	if _, err := c.BreakPolicy(); err != nil {
		return err
	}
	if c.Solver.BreakStagger < 0 || c.Solver.BreakStagger > 1 {
		return fmt.Errorf("solver.break_stagger must be between 0 and 1, got %v", c.Solver.BreakStagger)
	}
	names := make(map[string]bool)
	for _, s := range c.Shifts {
		if s.Name == "" {
			return fmt.Errorf("shift definitions need a name")
		}
		if names[s.Name] {
			return fmt.Errorf("shift %q is defined twice", s.Name)
		}
		names[s.Name] = true
		for _, label := range []string{s.Start, s.BreakFrom} {
			if _, ok := seq.Parse(label); !ok {
				return fmt.Errorf("shift %s: %q is not a slot of the day", s.Name, label)
			}
		}
		for _, label := range []string{s.End, s.BreakTo} {
			if _, ok := seq.ParseBoundary(label); !ok {
				return fmt.Errorf("shift %s: %q is not a slot boundary of the day", s.Name, label)
			}
		}
	}
	if _, err := rules.Load(seq, c.Rules); err != nil {
		return err
	}
	return nil
}

// Slots builds the operating day.
func (c *Config) Slots() (models.SlotSequence, error) {
	seq, err := models.NewSlotSequence(c.Day.Start, c.Day.End, c.Day.SlotMinutes)
	if err != nil {
		return models.SlotSequence{}, fmt.Errorf("invalid day: %w", err)
	}
	return seq, nil
}

// Catalog builds the rule catalog against the configured day.
func (c *Config) Catalog() (*rules.Catalog, error) {
	seq, err := c.Slots()
	if err != nil {
		return nil, err
	}
	return rules.Load(seq, c.Rules)
}

// BreakPolicy parses the fallback break placement.
func (c *Config) BreakPolicy() (roster.BreakPolicy, error) {
	offset, err := time.ParseDuration(c.Breaks.Offset)
	if err != nil {
		return roster.BreakPolicy{}, fmt.Errorf("invalid breaks.offset: %w", err)
	}
	length, err := time.ParseDuration(c.Breaks.Length)
	if err != nil {
		return roster.BreakPolicy{}, fmt.Errorf("invalid breaks.length: %w", err)
	}
	if length <= 0 {
		return roster.BreakPolicy{}, fmt.Errorf("breaks.length must be positive")
	}
	return roster.BreakPolicy{Offset: offset, Length: length}, nil
}

// SolverOptions returns the solver tuning.
func (c *Config) SolverOptions() scheduler.Options {
	return scheduler.Options{
		FillTasks:    c.Solver.FillTasks,
		BreakStagger: c.Solver.BreakStagger,
	}
}

// BuildRoster validates roster records against the configured day and shifts.
func (c *Config) BuildRoster(records []roster.Record) (*roster.Roster, []*roster.InvalidRosterRecordError, error) {
	seq, err := c.Slots()
	if err != nil {
		return nil, nil, err
	}
	policy, err := c.BreakPolicy()
	if err != nil {
		return nil, nil, err
	}
	r, invalid := roster.New(seq, c.Shifts, policy, records)
	return r, invalid, nil
}
