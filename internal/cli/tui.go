package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/rota/internal/roster"
	"github.com/julianstephens/rota/internal/tui"
)

type TuiCmd struct {
	Day string `arg:"" optional:"" help:"Day to open (default: first rostered day)."`
}

func (c *TuiCmd) Run(ctx *Context) error {
	p, err := ctx.Planner()
	if err != nil {
		return err
	}

	day := roster.CanonicalDay(c.Day)
	if day == "" {
		r, err := p.Roster()
		if err != nil {
			return err
		}
		if days := r.Days(); len(days) > 0 {
			day = days[0]
		} else {
			return fmt.Errorf("no rostered days, import a roster first")
		}
	}

	ctx.PerformAutomaticBackup()

	prog := tea.NewProgram(tui.NewModel(p, day), tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("tui failed: %w", err)
	}
	return nil
}
