package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/julianstephens/rota/internal/rules"
)

type RulesListCmd struct{}

func (c *RulesListCmd) Run(ctx *Context) error {
	catalog, err := ctx.Config.Catalog()
	if err != nil {
		return err
	}
	seq := catalog.Slots()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RULE\tTASK\tSHAPE\tSLOTS\tPER PERSON")
	for _, r := range catalog.Rules() {
		var labels []string
		for _, ts := range r.WindowSlots(seq) {
			labels = append(labels, seq.Label(ts))
		}
		perPerson := "-"
		if r.MaxSlotsPerPerson > 0 {
			perPerson = fmt.Sprintf("%d slots", r.MaxSlotsPerPerson)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Name, r.Task, r.Shape, strings.Join(labels, ","), perPerson)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d rules; fill order: %s\n", catalog.Len(), strings.Join(ctx.Config.Solver.FillTasks, ", "))
	return nil
}

type RulesCheckCmd struct {
	File string `arg:"" optional:"" help:"YAML file with a rules: list (default: the configured rules)." type:"existingfile"`
}

func (c *RulesCheckCmd) Run(ctx *Context) error {
	records := ctx.Config.Rules
	source := ctx.ConfigPath
	if c.File != "" {
		f, err := os.Open(c.File)
		if err != nil {
			return err
		}
		defer f.Close()
		records, err = rules.ParseYAML(f)
		if err != nil {
			return err
		}
		source = c.File
	}

	seq, err := ctx.Config.Slots()
	if err != nil {
		return err
	}
	catalog, err := rules.Load(seq, records)
	if err != nil {
		return err
	}
	fmt.Printf("✓ %d rules in %s are valid\n", catalog.Len(), source)
	return nil
}
