package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/rota/internal/exchange"
	"github.com/julianstephens/rota/internal/models"
	"github.com/julianstephens/rota/internal/roster"
)

type ValidateCmd struct {
	File   string `arg:"" help:"Assignment file: JSON document, Employee,Time,Task CSV, or model response text." type:"existingfile"`
	Format string `help:"Input format (default from extension)." enum:"auto,json,csv,response" default:"auto"`
	Save   string `help:"Store the assignment as this day's working schedule."`
}

func (c *ValidateCmd) Run(ctx *Context) error {
	p, err := ctx.Planner()
	if err != nil {
		return err
	}

	f, err := os.Open(c.File)
	if err != nil {
		return err
	}
	defer f.Close()

	a, err := readAssignment(f, c.format())
	if err != nil {
		return err
	}

	report, err := p.Validate(a)
	if err != nil {
		return err
	}
	fmt.Print(report.FormatReport())

	if c.Save != "" {
		day := roster.CanonicalDay(c.Save)
		ctx.PerformAutomaticBackup()
		sched, _, err := p.Import(day, a)
		if err != nil {
			return err
		}
		fmt.Printf("\n✓ Saved as %s revision %d\n", day, sched.Revision)
	}

	if failed := report.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d of %d checks failed", len(failed), len(report.Checks))
	}
	return nil
}

func (c *ValidateCmd) format() string {
	if c.Format != "" && c.Format != "auto" {
		return c.Format
	}
	switch strings.ToLower(filepath.Ext(c.File)) {
	case ".json":
		return "json"
	case ".csv":
		return "csv"
	default:
		return "response"
	}
}

func readAssignment(r io.Reader, format string) (models.Assignment, error) {
	switch format {
	case "json":
		return exchange.ReadJSON(r)
	case "csv":
		return exchange.ReadCSV(r)
	default:
		data, err := io.ReadAll(r)
		if err != nil {
			return models.Assignment{}, err
		}
		return exchange.ParseResponse(string(data))
	}
}
