package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	apperrors "github.com/julianstephens/rota/internal/errors"
	"github.com/julianstephens/rota/internal/roster"
)

type RosterImportCmd struct {
	File string `arg:"" help:"Roster spreadsheet (.csv or .xlsx) with a Name column and one column per day." type:"existingfile"`
}

func (c *RosterImportCmd) Run(ctx *Context) error {
	f, err := os.Open(c.File)
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := roster.ParseFile(filepath.Base(c.File), f, ctx.Config.Shifts)
	if err != nil {
		return err
	}

	_, invalid, err := ctx.Config.BuildRoster(records)
	if err != nil {
		return err
	}
	if len(invalid) > 0 {
		errs := make([]error, len(invalid))
		for i, e := range invalid {
			errs[i] = e
		}
		fmt.Print(apperrors.FormatList("Invalid roster records", errs))
		return fmt.Errorf("roster not imported")
	}

	existing, err := ctx.Store.GetRoster()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		ok, err := ctx.Confirm("Replace the stored roster?",
			fmt.Sprintf("%d stored records will be replaced by %d from %s.", len(existing), len(records), filepath.Base(c.File)))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Import cancelled.")
			return nil
		}
	}

	ctx.PerformAutomaticBackup()
	if err := ctx.Store.ReplaceRoster(records); err != nil {
		return err
	}
	fmt.Printf("✓ Imported %d roster records\n", len(records))
	return nil
}

type RosterListCmd struct {
	Day string `arg:"" optional:"" help:"Only show this day."`
}

func (c *RosterListCmd) Run(ctx *Context) error {
	records, err := ctx.Store.GetRoster()
	if err != nil {
		return err
	}
	day := ""
	if c.Day != "" {
		day = roster.CanonicalDay(c.Day)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DAY\tNAME\tSHIFT\tHOURS")
	n := 0
	for _, r := range records {
		if day != "" && r.Day != day {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s-%s\n", r.Day, r.Name, r.ShiftName, r.ShiftStart, r.ShiftEnd)
		n++
	}
	if n == 0 {
		fmt.Println("No roster records. Import one with 'rota roster import <file>'.")
		return nil
	}
	return w.Flush()
}
