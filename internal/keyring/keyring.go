// Package keyring keeps the PostgreSQL connection string for the schedule
// database in the OS credential store.
package keyring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/rota/internal/constants"
)

var (
	// ErrNotFound is returned when no connection string is stored
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring cannot be reached
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Credentials addresses one secret in the OS keyring.
type Credentials struct {
	Service string
	User    string
}

// Default is the entry the CLI reads when --db is not given.
var Default = Credentials{Service: constants.AppName, User: constants.DefaultKeyringUser}

// Get returns the stored connection string.
func (c Credentials) Get() (string, error) {
	connStr, err := keyring.Get(c.Service, c.User)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return connStr, nil
}

// Set stores connStr, replacing any previous value.
func (c Credentials) Set(connStr string) error {
	connStr = strings.TrimSpace(connStr)
	if connStr == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := keyring.Set(c.Service, c.User, connStr); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

// Delete removes the stored connection string.
func (c Credentials) Delete() error {
	if err := keyring.Delete(c.Service, c.User); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// Status reports whether the keyring is reachable and holds a connection string.
type Status struct {
	Available bool
	Stored    bool
}

// Status probes the keyring without returning the secret.
func (c Credentials) Status() Status {
	_, err := c.Get()
	switch {
	case err == nil:
		return Status{Available: true, Stored: true}
	case errors.Is(err, ErrNotFound):
		return Status{Available: true}
	default:
		return Status{}
	}
}

// GetConnectionString reads the default entry.
func GetConnectionString() (string, error) { return Default.Get() }

// SetConnectionString writes the default entry.
func SetConnectionString(connStr string) error { return Default.Set(connStr) }

// DeleteConnectionString removes the default entry.
func DeleteConnectionString() error { return Default.Delete() }
