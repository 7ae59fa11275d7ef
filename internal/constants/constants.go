package constants

const (
	AppName            = "rota"
	Version            = "v0.3.0"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/rota"
	DefaultDBPath      = "~/.config/rota/rota.db"
	DefaultConfigFile  = "~/.config/rota/rota.yaml"

	// EnvDBConnection overrides the --db flag with a PostgreSQL connection string
	EnvDBConnection = "ROTA_DB_CONNECTION"

	// TimeFormat is the slot label format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// BreakLabel is the reserved task label for an employee's break slot
	BreakLabel = "Break"

	// Default operating day
	DefaultDayStart = "07:00"
	DefaultDayEnd   = "23:00"
	DefaultSlotMin  = 60

	// Solver defaults
	DefaultBreakStagger = 0.5

	// MinRecommendedStaff is the head count below which a day is reported as understaffed
	MinRecommendedStaff = 6

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "rota-"
	BackupFileSuffix = ".db"

	// Schedule sources
	SourceSolver = "solver"
	SourceImport = "import"
)

// Days lists the roster day columns in calendar order.
var Days = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
