package helper

import (
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
)

// DatabaseConfiguration holds the connection parameters for the
// PostgreSQL instance backing all three stores.
type DatabaseConfiguration struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Schema   string
	SSLMode  string
}

// NewDatabaseConfiguration reads the configuration from the environment
// (NETREC_DB_HOST, NETREC_DB_PORT, NETREC_DB_DATABASE, NETREC_DB_USERNAME,
// NETREC_DB_PASSWORD, NETREC_DB_SCHEMA, NETREC_DB_SSLMODE).
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	config := &DatabaseConfiguration{
		Host:     os.Getenv("NETREC_DB_HOST"),
		Port:     os.Getenv("NETREC_DB_PORT"),
		Database: os.Getenv("NETREC_DB_DATABASE"),
		Username: os.Getenv("NETREC_DB_USERNAME"),
		Password: os.Getenv("NETREC_DB_PASSWORD"),
		Schema:   os.Getenv("NETREC_DB_SCHEMA"),
		SSLMode:  os.Getenv("NETREC_DB_SSLMODE"),
	}

	if config.Host == "" || config.Port == "" || config.Database == "" || config.Username == "" {
		return nil, fmt.Errorf("incomplete database configuration, need at least host, port, database and username")
	}
	if config.Schema == "" {
		config.Schema = "public"
	}
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	return config, nil
}

// SetTestDatabaseConfigEnvs sets the environment for a test database on the
// given local port. The values match MustStartPostgresContainer.
func SetTestDatabaseConfigEnvs(t *testing.T, port string) {
	t.Setenv("NETREC_DB_HOST", "localhost")
	t.Setenv("NETREC_DB_PORT", port)
	t.Setenv("NETREC_DB_DATABASE", "database")
	t.Setenv("NETREC_DB_USERNAME", "user")
	t.Setenv("NETREC_DB_PASSWORD", "password")
	t.Setenv("NETREC_DB_SCHEMA", "public")
	t.Setenv("NETREC_DB_SSLMODE", "disable")
}

// Database wraps the sql connection together with its logger.
type Database struct {
	Name     string
	Instance *sql.DB
	Logger   *slog.Logger
}

// NewDatabase opens a connection with the given configuration and verifies
// it with a ping. It panics when the database is unreachable; a missing
// store is unrecoverable for every caller in this module.
func NewDatabase(name string, config *DatabaseConfiguration, logger *slog.Logger) *Database {
	dsn := fmt.Sprintf(
		"host=%s port=%s dbname=%s user=%s password=%s search_path=%s sslmode=%s",
		config.Host,
		config.Port,
		config.Database,
		config.Username,
		config.Password,
		config.Schema,
		config.SSLMode,
	)

	instance, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Panicf("error opening database connection: %v", err)
	}

	instance.SetMaxOpenConns(10)
	instance.SetMaxIdleConns(5)
	instance.SetConnMaxLifetime(time.Hour)

	if err := instance.Ping(); err != nil {
		log.Panicf("error pinging database: %v", err)
	}

	logger.Info("Connected to database", slog.String("name", name), slog.String("host", config.Host), slog.String("port", config.Port))

	return &Database{
		Name:     name,
		Instance: instance,
		Logger:   logger,
	}
}

// NewTestDatabase opens a database for tests with a debug-level pretty logger.
func NewTestDatabase(config *DatabaseConfiguration) *Database {
	opts := PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}
	logger := slog.New(NewPrettyHandler(os.Stdout, opts))
	return NewDatabase("test", config, logger)
}
