package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/julianstephens/rota/internal/constants"
	"github.com/julianstephens/rota/internal/exchange"
	"github.com/julianstephens/rota/internal/models"
	"github.com/julianstephens/rota/internal/roster"
	"github.com/julianstephens/rota/internal/storage"
)

func loadSchedule(store storage.Provider, day string, revision int) (models.Schedule, error) {
	var (
		sched models.Schedule
		err   error
	)
	if revision > 0 {
		sched, err = store.GetScheduleRevision(day, revision)
	} else {
		sched, err = store.GetLatestSchedule(day)
	}
	if errors.Is(err, storage.ErrNotFound) {
		return sched, fmt.Errorf("no schedule for %s, run '%s plan %s' first", day, constants.AppName, day)
	}
	return sched, err
}

type ShowCmd struct {
	Day      string `arg:"" help:"Roster day to show."`
	Revision int    `help:"Revision to show (default latest)." short:"r"`
}

func (c *ShowCmd) Run(ctx *Context) error {
	p, err := ctx.Planner()
	if err != nil {
		return err
	}
	day := roster.CanonicalDay(c.Day)
	sched, err := loadSchedule(ctx.Store, day, c.Revision)
	if err != nil {
		return err
	}

	state := "draft"
	if sched.AcceptedAt != nil {
		state = "accepted " + sched.AcceptedAt.Local().Format("2006-01-02 15:04")
	}
	fmt.Printf("%s revision %d (%s, %s)\n\n", sched.Day, sched.Revision, sched.Source, state)
	printSchedule(p.Slots(), sched.Assignment)
	printViolations(sched.Violations)

	report, err := p.Validate(sched.Assignment)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Print(report.FormatReport())
	return nil
}

type ExportCmd struct {
	Day      string `arg:"" help:"Roster day to export."`
	Revision int    `help:"Revision to export (default latest)." short:"r"`
	Format   string `help:"Output format." enum:"csv,json" default:"json" short:"f"`
	Output   string `help:"Output file (default stdout)." short:"o" type:"path"`
}

func (c *ExportCmd) Run(ctx *Context) error {
	day := roster.CanonicalDay(c.Day)
	sched, err := loadSchedule(ctx.Store, day, c.Revision)
	if err != nil {
		return err
	}

	out := os.Stdout
	if c.Output != "" {
		if err := os.MkdirAll(filepath.Dir(c.Output), 0755); err != nil {
			return err
		}
		f, err := os.Create(c.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch c.Format {
	case "csv":
		err = exchange.WriteCSV(out, sched.Assignment)
	default:
		err = exchange.WriteJSON(out, sched.Assignment)
	}
	if err != nil {
		return fmt.Errorf("failed to export %s: %w", day, err)
	}
	if c.Output != "" {
		fmt.Fprintf(os.Stderr, "✓ Exported %s revision %d to %s\n", day, sched.Revision, c.Output)
	}
	return nil
}

type SchedulesListCmd struct{}

func (c *SchedulesListCmd) Run(ctx *Context) error {
	summaries, err := ctx.Store.ListSchedules()
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("No schedules stored.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DAY\tREV\tSOURCE\tEMPLOYEES\tVIOLATIONS\tACCEPTED\tCREATED")
	for _, s := range summaries {
		accepted := ""
		if s.Accepted {
			accepted = "yes"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%d\t%s\t%s\n", s.Day, s.Revision, s.Source, s.Employees, s.Violations,
			accepted, s.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

type SchedulesAcceptCmd struct {
	Day      string `arg:"" help:"Roster day."`
	Revision int    `help:"Revision to accept (default latest)." short:"r"`
}

func (c *SchedulesAcceptCmd) Run(ctx *Context) error {
	day := roster.CanonicalDay(c.Day)
	if err := ctx.Store.AcceptSchedule(day, c.Revision); err != nil {
		return err
	}
	fmt.Printf("✓ Accepted %s\n", day)
	return nil
}

type SchedulesDeleteCmd struct {
	Day      string `arg:"" help:"Roster day."`
	Revision int    `help:"Revision to delete (default latest)." short:"r"`
}

func (c *SchedulesDeleteCmd) Run(ctx *Context) error {
	day := roster.CanonicalDay(c.Day)
	target := "the latest revision"
	if c.Revision > 0 {
		target = fmt.Sprintf("revision %d", c.Revision)
	}
	ok, err := ctx.Confirm(fmt.Sprintf("Delete %s of %s?", target, day), "Deleted schedules can only be recovered from a backup.")
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Delete cancelled.")
		return nil
	}
	ctx.PerformAutomaticBackup()
	if err := ctx.Store.DeleteSchedule(day, c.Revision); err != nil {
		return err
	}
	fmt.Printf("✓ Deleted %s of %s\n", strings.TrimPrefix(target, "the "), day)
	return nil
}
