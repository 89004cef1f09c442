package database

import (
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"fittrack/internal/logger"
)

// MigrationsSource returns the golang-migrate source URL for cfg.
func MigrationsSource(cfg *Config) string {
	return "file://" + filepath.ToSlash(cfg.MigrationsDir)
}

// OpenMigrator opens golang-migrate against a postgres database. Release
// it with CloseMigrator.
func OpenMigrator(cfg *Config) (*migrate.Migrate, error) {
	if cfg.Driver != DriverPostgres {
		return nil, fmt.Errorf("SQL migrations target postgres; %s databases are auto-migrated by the API on start", cfg.Driver)
	}
	m, err := migrate.New(MigrationsSource(cfg), cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = migrateLogger{}
	return m, nil
}

// CloseMigrator closes both ends of m, logging failures.
func CloseMigrator(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		logger.Get().Warnf("migrate source close error: %v", srcErr)
	}
	if dbErr != nil {
		logger.Get().Warnf("migrate database close error: %v", dbErr)
	}
}

// migrateLogger routes golang-migrate output through zap.
type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	logger.Get().Infof(format, v...)
}

func (migrateLogger) Verbose() bool { return false }
