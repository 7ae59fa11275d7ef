package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/rota/internal/constants"
	"github.com/julianstephens/rota/internal/keyring"
	"github.com/julianstephens/rota/internal/logger"
	"github.com/julianstephens/rota/internal/storage"
	"github.com/julianstephens/rota/internal/storage/postgres"
	"github.com/julianstephens/rota/internal/storage/sqlite"
)

// StoreSource names where the database location came from.
type StoreSource string

const (
	SourceFlag    StoreSource = "flag"
	SourceEnv     StoreSource = "env"
	SourceKeyring StoreSource = "keyring"
	SourceDefault StoreSource = "default"
)

// ResolveStore picks the storage backend. An explicit --db wins, then the
// ROTA_DB_CONNECTION environment variable, then the OS keyring, then the default
// SQLite file. Only connection strings given on the command line must be free of passwords.
func ResolveStore(db string, creds keyring.Credentials) (storage.Provider, StoreSource, error) {
	if db != "" {
		if postgres.IsConnString(db) {
			if _, err := postgres.ValidateConnString(db); err != nil {
				if errors.Is(err, postgres.ErrEmbeddedCredentials) {
					return nil, SourceFlag, fmt.Errorf("%w; store it with '%s keyring set' or export %s instead",
						err, constants.AppName, constants.EnvDBConnection)
				}
				return nil, SourceFlag, err
			}
			return postgres.New(db), SourceFlag, nil
		}
		return sqlite.NewStore(ExpandPath(db)), SourceFlag, nil
	}

	if env := os.Getenv(constants.EnvDBConnection); env != "" {
		if !postgres.IsConnString(env) {
			return nil, SourceEnv, fmt.Errorf("%s is not a PostgreSQL connection string", constants.EnvDBConnection)
		}
		return postgres.New(env), SourceEnv, nil
	}

	connStr, err := creds.Get()
	switch {
	case err == nil:
		return postgres.New(connStr), SourceKeyring, nil
	case errors.Is(err, keyring.ErrNotFound):
	default:
		logger.Debug("Keyring lookup failed, using SQLite", "error", err)
	}

	return sqlite.NewStore(ExpandPath(constants.DefaultDBPath)), SourceDefault, nil
}
