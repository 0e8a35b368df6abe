// Package config loads the bridge's configuration from the environment.
// A .env file in the working directory is honored when present; explicit
// environment variables win over it.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds everything the process needs at startup. The core never sees
// this; it is consumed by main and the composition root only.
type Config struct {
	// DatabaseURL is the lib/pq connection string (postgres) or the database
	// file path (sqlite).
	DatabaseURL string
	// Driver selects the storage dialect: postgres (default) or sqlite.
	Driver string
	// HTTPAddr is the listen address for the HTTP transport.
	HTTPAddr string
	// AuthToken, when set, is required as a bearer token on HTTP requests.
	AuthToken string
	// NoteAuthor is recorded on notes when the caller names no author.
	NoteAuthor string
}

// Load reads configuration from the environment, applying defaults. A missing
// .env file is not an error; a missing CRM_DATABASE_URL is.
func Load() (Config, error) {
	// Best-effort: the .env file is a development convenience.
	_ = godotenv.Load()

	cfg := Config{
		DatabaseURL: os.Getenv("CRM_DATABASE_URL"),
		Driver:      DriverPostgres,
		HTTPAddr:    ":8080",
		AuthToken:   os.Getenv("CRM_AUTH_TOKEN"),
		NoteAuthor:  "mcp",
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("CRM_DATABASE_URL is required")
	}
	if driver := os.Getenv("CRM_DATABASE_DRIVER"); driver != "" {
		if driver != DriverPostgres && driver != DriverSQLite {
			return Config{}, fmt.Errorf("CRM_DATABASE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, driver)
		}
		cfg.Driver = driver
	}
	if addr := os.Getenv("CRM_HTTP_ADDR"); addr != "" {
		cfg.HTTPAddr = addr
	}
	if author := os.Getenv("CRM_NOTE_AUTHOR"); author != "" {
		cfg.NoteAuthor = author
	}
	return cfg, nil
}
