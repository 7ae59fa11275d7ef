package main

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/rota/internal/cli"
	"github.com/julianstephens/rota/internal/config"
	"github.com/julianstephens/rota/internal/constants"
	"github.com/julianstephens/rota/internal/errors"
	"github.com/julianstephens/rota/internal/keyring"
	"github.com/julianstephens/rota/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	DB      string `help:"SQLite database path or PostgreSQL connection string. PostgreSQL passwords must not be embedded here; use the OS keyring, ROTA_DB_CONNECTION or .pgpass." name:"db"`
	Config  string `help:"Config file path." default:"${config_file}"`
	Debug   bool   `help:"Log debug output to stderr."`
	Yes     bool   `help:"Answer yes to every confirmation." short:"y"`

	Init   cli.InitCmd `cmd:"" help:"Initialize storage and write the default configuration."`
	Roster struct {
		Import cli.RosterImportCmd `cmd:"" help:"Import a roster spreadsheet, replacing the stored roster."`
		List   cli.RosterListCmd   `cmd:"" help:"List roster records."`
	} `cmd:"" help:"Manage the weekly roster."`
	Plan      cli.PlanCmd     `cmd:"" help:"Solve and store one day's schedule."`
	Week      cli.WeekCmd     `cmd:"" help:"Solve every rostered day."`
	Validate  cli.ValidateCmd `cmd:"" help:"Validate an assignment file against the rules."`
	Show      cli.ShowCmd     `cmd:"" help:"Show a stored schedule with its validation report."`
	Export    cli.ExportCmd   `cmd:"" help:"Export a stored schedule as JSON or CSV."`
	Schedules struct {
		List   cli.SchedulesListCmd   `cmd:"" help:"List stored schedules." default:"1"`
		Accept cli.SchedulesAcceptCmd `cmd:"" help:"Accept a schedule revision."`
		Delete cli.SchedulesDeleteCmd `cmd:"" help:"Delete a schedule revision."`
	} `cmd:"" help:"Manage stored schedules."`
	Rules struct {
		List  cli.RulesListCmd  `cmd:"" help:"List the configured rules." default:"1"`
		Check cli.RulesCheckCmd `cmd:"" help:"Check a rules file for errors."`
	} `cmd:"" help:"Inspect the rule catalog."`
	Backup struct {
		Create  cli.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    cli.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore cli.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Keyring struct {
		Set    cli.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Delete cli.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status cli.KeyringStatusCmd `cmd:"" help:"Show keyring availability."`
	} `cmd:"" help:"Manage database credentials in the OS keyring."`
	Tui cli.TuiCmd `cmd:"" help:"Launch the interactive day viewer."`
}

// storeless commands run without opening the database.
var storeless = map[string]bool{
	"init":           true,
	"keyring set":    true,
	"keyring delete": true,
	"keyring status": true,
	"rules list":     true,
	"rules check":    true,
}

// needsStore reports whether a command must open the database. validate only
// touches the store when it saves the assignment.
func needsStore(cmd, validateSave string) bool {
	path := commandPath(cmd)
	if path == "validate" {
		return validateSave != ""
	}
	return !storeless[path]
}

// commandPath strips positional placeholders from a kong command, "plan <day>" -> "plan".
func commandPath(cmd string) string {
	var parts []string
	for _, f := range strings.Fields(cmd) {
		if strings.HasPrefix(f, "<") {
			break
		}
		parts = append(parts, f)
	}
	return strings.Join(parts, " ")
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Constraint-checked staff rota planner"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_file": constants.DefaultConfigFile,
		},
	)

	configPath := cli.ExpandPath(CLI.Config)
	cfg, err := config.Load(configPath)
	if err != nil {
		errors.Fatal(err)
	}

	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug || cfg.Logging.Debug,
		ConfigDir: filepath.Dir(configPath),
	}); err != nil {
		errors.Fatal(err)
	}

	store, source, err := cli.ResolveStore(CLI.DB, keyring.Default)
	if err != nil {
		errors.Fatal(err)
	}
	logger.Debug("Resolved store", "source", source, "location", store.GetConfigPath())

	if needsStore(ctx.Command(), CLI.Validate.Save) {
		if err := store.Load(); err != nil {
			errors.Fatal(err)
		}
	}
	defer store.Close()

	appCtx := &cli.Context{
		Store:      store,
		Config:     cfg,
		ConfigPath: configPath,
		Yes:        CLI.Yes,
	}
	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		errors.Fatal(err)
	}
}
