// Package planner ties the stored roster, the configuration and the solver
// together for the CLI and the TUI.
package planner

import (
	"context"
	"fmt"

	"github.com/julianstephens/rota/internal/config"
	"github.com/julianstephens/rota/internal/constants"
	"github.com/julianstephens/rota/internal/logger"
	"github.com/julianstephens/rota/internal/models"
	"github.com/julianstephens/rota/internal/roster"
	"github.com/julianstephens/rota/internal/rules"
	"github.com/julianstephens/rota/internal/scheduler"
	"github.com/julianstephens/rota/internal/storage"
	"github.com/julianstephens/rota/internal/validation"
)

// Planner solves and validates days for one store and configuration.
type Planner struct {
	store   storage.Provider
	cfg     *config.Config
	seq     models.SlotSequence
	catalog *rules.Catalog
	solver  *scheduler.Solver
}

// New builds the rule catalog and solver from cfg.
func New(store storage.Provider, cfg *config.Config) (*Planner, error) {
	seq, err := cfg.Slots()
	if err != nil {
		return nil, err
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}
	return &Planner{
		store:   store,
		cfg:     cfg,
		seq:     seq,
		catalog: catalog,
		solver:  scheduler.New(cfg.SolverOptions()),
	}, nil
}

func (p *Planner) Slots() models.SlotSequence { return p.seq }

func (p *Planner) Catalog() *rules.Catalog { return p.catalog }

func (p *Planner) Store() storage.Provider { return p.store }

// Roster loads the stored roster. Invalid records are logged and skipped.
func (p *Planner) Roster() (*roster.Roster, error) {
	records, err := p.store.GetRoster()
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	r, invalid, err := p.cfg.BuildRoster(records)
	if err != nil {
		return nil, err
	}
	for _, e := range invalid {
		logger.Warn("Skipping roster record", "error", e)
	}
	return r, nil
}

// Solve solves one day without saving it.
func (p *Planner) Solve(day string) (scheduler.Result, error) {
	r, err := p.Roster()
	if err != nil {
		return scheduler.Result{}, err
	}
	employees, err := r.AvailableEmployees(day)
	if err != nil {
		return scheduler.Result{}, err
	}
	warnUnderstaffed(roster.CanonicalDay(day), len(employees))
	return p.solver.Solve(employees, p.catalog)
}

// Understaffed reports whether a day with n employees falls below the recommended head count.
func Understaffed(n int) bool {
	return n < constants.MinRecommendedStaff
}

func warnUnderstaffed(day string, n int) {
	if Understaffed(n) {
		logger.Warn("Fewer staff than recommended", "day", day, "available", n, "recommended", constants.MinRecommendedStaff)
	}
}

// Plan solves one day and stores it as the day's working revision.
func (p *Planner) Plan(day string) (*models.Schedule, scheduler.Result, error) {
	day = roster.CanonicalDay(day)
	res, err := p.Solve(day)
	if err != nil {
		return nil, res, err
	}
	sched := &models.Schedule{
		Day:        day,
		Source:     constants.SourceSolver,
		Assignment: res.Assignment,
		Violations: res.Violations,
	}
	if err := p.store.SaveSchedule(sched); err != nil {
		return nil, res, fmt.Errorf("failed to save schedule for %s: %w", day, err)
	}
	logger.Info("Planned day", "day", day, "revision", sched.Revision, "violations", len(res.Violations))
	return sched, res, nil
}

// PlanWeek solves every rostered day in parallel and stores each solvable day.
func (p *Planner) PlanWeek(ctx context.Context) ([]scheduler.DayOutcome, error) {
	r, err := p.Roster()
	if err != nil {
		return nil, err
	}
	outcomes, err := p.solver.SolveDays(ctx, r, p.catalog, r.Days())
	if err != nil {
		return nil, err
	}
	for i, out := range outcomes {
		if out.Err != nil {
			continue
		}
		warnUnderstaffed(out.Day, len(out.Result.Assignment.Rows))
		sched := &models.Schedule{
			Day:        out.Day,
			Source:     constants.SourceSolver,
			Assignment: out.Result.Assignment,
			Violations: out.Result.Violations,
		}
		if err := p.store.SaveSchedule(sched); err != nil {
			outcomes[i].Err = fmt.Errorf("failed to save schedule: %w", err)
		}
	}
	return outcomes, nil
}

// Import stores an externally produced assignment as the day's working revision.
func (p *Planner) Import(day string, a models.Assignment) (*models.Schedule, validation.Report, error) {
	report, err := p.Validate(a)
	if err != nil {
		return nil, report, err
	}
	sched := &models.Schedule{
		Day:        roster.CanonicalDay(day),
		Source:     constants.SourceImport,
		Assignment: a,
		Violations: failedChecks(report),
	}
	if err := p.store.SaveSchedule(sched); err != nil {
		return nil, report, fmt.Errorf("failed to save schedule for %s: %w", day, err)
	}
	logger.Info("Imported schedule", "day", sched.Day, "revision", sched.Revision, "failed_checks", len(sched.Violations))
	return sched, report, nil
}

func failedChecks(report validation.Report) []models.Violation {
	var out []models.Violation
	for _, c := range report.Failed() {
		out = append(out, models.Violation{Rule: c.Rule, Details: c.Details})
	}
	return out
}

// Validate checks an assignment against the catalog.
func (p *Planner) Validate(a models.Assignment) (validation.Report, error) {
	return validation.New(p.catalog).Validate(a)
}
