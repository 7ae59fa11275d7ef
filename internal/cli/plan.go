package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/julianstephens/rota/internal/constants"
	"github.com/julianstephens/rota/internal/models"
	"github.com/julianstephens/rota/internal/planner"
	"github.com/julianstephens/rota/internal/roster"
	"github.com/julianstephens/rota/internal/scheduler"
	"github.com/julianstephens/rota/internal/timeline"
)

type PlanCmd struct {
	Day    string `arg:"" help:"Roster day to plan (e.g. Monday or mon)."`
	Accept bool   `help:"Accept the plan without asking."`
}

func (c *PlanCmd) Run(ctx *Context) error {
	p, err := ctx.Planner()
	if err != nil {
		return err
	}
	day := roster.CanonicalDay(c.Day)

	ctx.PerformAutomaticBackup()
	sched, res, err := p.Plan(day)
	if err != nil {
		return err
	}

	fmt.Printf("Proposed schedule for %s (revision %d):\n\n", day, sched.Revision)
	printSchedule(p.Slots(), sched.Assignment)
	printViolations(res.Violations)
	printIdle(res.Idle)
	printStaffing(len(sched.Assignment.Rows))

	accept := c.Accept
	if !accept {
		title := "Accept this schedule?"
		if !res.Feasible() {
			title = fmt.Sprintf("Accept this schedule with %d violations?", len(res.Violations))
		}
		accept, err = ctx.Confirm(title, "Accepted schedules are kept; re-planning starts a new revision.")
		if err != nil {
			return err
		}
	}
	if !accept {
		fmt.Printf("Schedule kept as draft revision %d.\n", sched.Revision)
		return nil
	}
	if err := ctx.Store.AcceptSchedule(day, sched.Revision); err != nil {
		return err
	}
	fmt.Printf("✓ Accepted %s revision %d\n", day, sched.Revision)
	return nil
}

type WeekCmd struct{}

func (c *WeekCmd) Run(ctx *Context) error {
	p, err := ctx.Planner()
	if err != nil {
		return err
	}

	ctx.PerformAutomaticBackup()
	outcomes, err := p.PlanWeek(context.Background())
	if err != nil {
		return err
	}
	if len(outcomes) == 0 {
		fmt.Println("No rostered days. Import a roster with 'rota roster import <file>'.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DAY\tEMPLOYEES\tVIOLATIONS\tIDLE\tSTATUS")
	failed := 0
	for _, out := range outcomes {
		if out.Err != nil {
			failed++
			fmt.Fprintf(w, "%s\t-\t-\t-\t%v\n", out.Day, out.Err)
			continue
		}
		status := "ok"
		if !out.Result.Feasible() {
			status = "infeasible"
		}
		if planner.Understaffed(len(out.Result.Assignment.Rows)) {
			status += ", understaffed"
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n", out.Day, len(out.Result.Assignment.Rows),
			len(out.Result.Violations), len(out.Result.Idle), status)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d days could not be planned", failed, len(outcomes))
	}
	return nil
}

func printSchedule(seq models.SlotSequence, a models.Assignment) {
	fmt.Println(timeline.Render(seq, a))
	fmt.Println(timeline.Legend())
}

func printViolations(violations []models.Violation) {
	if len(violations) == 0 {
		return
	}
	fmt.Printf("\n%d unmet requirements:\n", len(violations))
	for _, v := range violations {
		if v.Details != "" {
			fmt.Printf("  %s: %s\n", v.Rule, v.Details)
			continue
		}
		fmt.Printf("  %s  %s: %d assigned, %d required\n", v.Time, v.Rule, v.Assigned, v.Required)
	}
}

func printStaffing(n int) {
	if planner.Understaffed(n) {
		fmt.Printf("\n⚠ Only %d staff available. Minimum %d recommended.\n", n, constants.MinRecommendedStaff)
	}
}

func printIdle(idle []scheduler.IdleSlot) {
	if len(idle) == 0 {
		return
	}
	fmt.Printf("\n%d idle slots:\n", len(idle))
	for _, s := range idle {
		fmt.Printf("  %s  %s\n", s.Time, s.Employee)
	}
}
