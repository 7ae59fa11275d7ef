package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/rota/internal/backup"
	"github.com/julianstephens/rota/internal/config"
	"github.com/julianstephens/rota/internal/logger"
	"github.com/julianstephens/rota/internal/planner"
	"github.com/julianstephens/rota/internal/storage"
	"github.com/julianstephens/rota/internal/storage/sqlite"
)

type Context struct {
	Store      storage.Provider
	Config     *config.Config
	ConfigPath string
	// Yes answers every confirmation prompt with yes.
	Yes bool
}

// Planner builds a planner over the store and configuration.
func (c *Context) Planner() (*planner.Planner, error) {
	return planner.New(c.Store, c.Config)
}

// PerformAutomaticBackup backs up a SQLite store before a write. Failures are logged only.
func (c *Context) PerformAutomaticBackup() {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return
	}
	if _, err := os.Stat(c.Store.GetConfigPath()); err != nil {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// Confirm asks a yes/no question unless --yes was given.
func (c *Context) Confirm(title, description string) (bool, error) {
	if c.Yes {
		return true, nil
	}
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).Run()
	if err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return ok, nil
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
