package scheduler

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/rota/internal/roster"
	"github.com/julianstephens/rota/internal/rules"
)

// DayOutcome is the result of solving one day. Err is set when the day could not
// be scheduled at all, e.g. nobody is rostered.
type DayOutcome struct {
	Day    string
	Result Result
	Err    error
}

// SolveDays solves independent days in parallel. A failing day does not cancel the
// others; only context cancellation aborts the batch. Outcomes follow the order of days.
func (s *Solver) SolveDays(ctx context.Context, r *roster.Roster, catalog *rules.Catalog, days []string) ([]DayOutcome, error) {
	outcomes := make([]DayOutcome, len(days))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())

	for i, day := range days {
		i, day := i, day
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			outcomes[i] = s.solveDay(r, catalog, day)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func (s *Solver) solveDay(r *roster.Roster, catalog *rules.Catalog, day string) DayOutcome {
	out := DayOutcome{Day: day}
	employees, err := r.AvailableEmployees(day)
	if err != nil {
		out.Err = err
		return out
	}
	out.Result, out.Err = s.Solve(employees, catalog)
	return out
}
