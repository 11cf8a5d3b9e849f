package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/orris-inc/archy/internal/shared/config"
	appLogger "github.com/orris-inc/archy/internal/shared/logger"
)

// duplicateDatabase is the Postgres SQLSTATE for CREATE DATABASE on an existing name.
const duplicateDatabase pq.ErrorCode = "42P04"

// EnsureDatabase creates the configured database through the maintenance
// database when it does not exist yet.
func EnsureDatabase(cfg *config.DatabaseConfig) error {
	admin, err := sql.Open("postgres", cfg.GetAdminDSN())
	if err != nil {
		return fmt.Errorf("failed to open maintenance connection: %w", err)
	}
	defer admin.Close()

	var exists bool
	if err := admin.QueryRow(
		"SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", cfg.Database,
	).Scan(&exists); err != nil {
		return fmt.Errorf("failed to look up database %s: %w", cfg.Database, err)
	}
	if exists {
		return nil
	}

	if _, err := admin.Exec("CREATE DATABASE " + pq.QuoteIdentifier(cfg.Database)); err != nil {
		if isDuplicateDatabase(err) {
			return nil
		}
		return fmt.Errorf("failed to create database %s: %w", cfg.Database, err)
	}

	appLogger.Info("database created", "database", cfg.Database)
	return nil
}

func isDuplicateDatabase(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == duplicateDatabase
}
