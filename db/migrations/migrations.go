// Package migrations applies the embedded SQL schema migrations with goose.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"gitlab.com/testpaper/papergen/internal/logger"
)

//go:embed sql/*.sql
var embedded embed.FS

const (
	dir     = "sql"
	dialect = "sqlite3"
)

// goose keeps its dialect, filesystem and logger in package globals
var mu sync.Mutex

// MigrationStatus is the state of a single migration.
type MigrationStatus struct {
	Version   int64
	Name      string
	AppliedAt *time.Time
	Status    string // "pending", "applied"
}

// gooseLogger routes goose output through zap.
type gooseLogger struct {
	*zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.Infof(format, v...)
}

func prepare() error {
	goose.SetBaseFS(embedded)
	goose.SetLogger(gooseLogger{logger.New("migrations").Sugar()})
	return goose.SetDialect(dialect)
}

// Up applies every pending migration.
func Up(db *sql.DB) error {
	mu.Lock()
	defer mu.Unlock()

	if err := prepare(); err != nil {
		return err
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Down rolls back the most recent migration.
func Down(db *sql.DB) error {
	mu.Lock()
	defer mu.Unlock()

	if err := prepare(); err != nil {
		return err
	}
	if err := goose.Down(db, dir); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}
	return nil
}

// Version returns the current schema version, zero before the first migration.
func Version(db *sql.DB) (int64, error) {
	mu.Lock()
	defer mu.Unlock()

	if err := prepare(); err != nil {
		return 0, err
	}
	version, err := goose.GetDBVersion(db)
	if err != nil {
		return 0, fmt.Errorf("failed to get current version: %w", err)
	}
	return version, nil
}

// Status returns the state of every embedded migration.
func Status(db *sql.DB) ([]MigrationStatus, error) {
	mu.Lock()
	defer mu.Unlock()

	if err := prepare(); err != nil {
		return nil, err
	}

	migrations, err := goose.CollectMigrations(dir, 0, goose.MaxVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to collect migrations: %w", err)
	}

	currentVersion, err := goose.GetDBVersion(db)
	if err != nil {
		// no version table yet, so everything is pending
		currentVersion = 0
	}

	statuses := make([]MigrationStatus, 0, len(migrations))
	for _, migration := range migrations {
		status := MigrationStatus{
			Version: migration.Version,
			Name:    migration.Source,
			Status:  "pending",
		}

		if migration.Version <= currentVersion {
			var appliedAt time.Time
			err := db.QueryRow(
				"SELECT tstamp FROM goose_db_version WHERE version_id = ? AND is_applied = 1 ORDER BY id DESC LIMIT 1",
				migration.Version,
			).Scan(&appliedAt)
			if err == nil {
				status.AppliedAt = &appliedAt
				status.Status = "applied"
			}
		}

		statuses = append(statuses, status)
	}

	return statuses, nil
}
