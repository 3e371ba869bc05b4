package db

import (
	"context"
	"database/sql"
	"os"
	"strings"

	clover "github.com/ostafen/clover/v2"
	"github.com/pkg/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"gitlab.com/testpaper/papergen/db/migrations"
	"gitlab.com/testpaper/papergen/db/repositories"
	repositories_clover "gitlab.com/testpaper/papergen/db/repositories/clover"
	repositories_gorm "gitlab.com/testpaper/papergen/db/repositories/gorm"
	"gitlab.com/testpaper/papergen/internal/config"
	"gitlab.com/testpaper/papergen/models"
)

// Store holds the repositories of the configured backend.
type Store struct {
	Subjects repositories.SubjectRepository

	gormDB   *gorm.DB
	cloverDB *clover.DB
}

// Connect opens the database selected by cfg.Database and builds the repositories on it.
func Connect(ctx context.Context, cfg *config.Config) (*Store, error) {
	if err := cfg.Database.Validate(); err != nil {
		return nil, err
	}

	var opts []repositories.Option
	if cfg.Database.StrictDelete {
		opts = append(opts, repositories.WithStrictDelete())
	}

	switch cfg.Database.Driver {
	case config.DriverClover:
		return connectClover(cfg, opts)
	default:
		return connectSQLite(ctx, cfg, opts)
	}
}

func connectSQLite(ctx context.Context, cfg *config.Config, opts []repositories.Option) (*Store, error) {
	dsn := cfg.Database.SQLiteDSN(cfg.General.DataDir)
	if !strings.Contains(dsn, ":memory:") && !strings.Contains(dsn, "mode=memory") {
		if err := os.MkdirAll(cfg.General.DataDir, 0o755); err != nil {
			return nil, errors.Wrap(err, "unable to create data dir")
		}
	}

	logLevel := gormlogger.Warn
	if cfg.General.Debug {
		logLevel = gormlogger.Info
	}
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(logLevel)})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if err := gormDB.Use(otelgorm.NewPlugin(otelgorm.WithDBName("papergen"))); err != nil {
		closeGORM(gormDB)
		return nil, errors.Wrap(err, "unable to install tracing plugin")
	}

	if cfg.Database.AutoMigrate {
		sqlDB, err := gormDB.WithContext(ctx).DB()
		if err != nil {
			closeGORM(gormDB)
			return nil, errors.Wrap(err, "unable to get sql.DB")
		}
		if err := migrations.Up(sqlDB); err != nil {
			closeGORM(gormDB)
			return nil, errors.Wrap(err, "unable to migrate database")
		}
	}

	zlog.Info("database connected", zap.String("driver", config.DriverSQLite), zap.String("dsn", dsn))
	return &Store{
		Subjects: repositories_gorm.NewSubjectRepository(gormDB, opts...),
		gormDB:   gormDB,
	}, nil
}

func connectClover(cfg *config.Config, opts []repositories.Option) (*Store, error) {
	path := cfg.Database.CloverPath(cfg.General.DataDir)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, errors.Wrap(err, "unable to create clover dir")
	}

	cloverDB, err := clover.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if err := repositories_clover.CreateCollections(
		cloverDB,
		repositories_clover.CollectionName[models.Subject](),
	); err != nil {
		cloverDB.Close()
		return nil, errors.Wrap(err, "unable to create collections")
	}

	zlog.Info("database connected", zap.String("driver", config.DriverClover), zap.String("path", path))
	return &Store{
		Subjects: repositories_clover.NewSubjectRepository(cloverDB, opts...),
		cloverDB: cloverDB,
	}, nil
}

// SQL returns the underlying *sql.DB of a relational store.
func (s *Store) SQL() (*sql.DB, error) {
	if s.gormDB == nil {
		return nil, errors.New("store has no SQL database")
	}
	return s.gormDB.DB()
}

// Close releases the database handles.
func (s *Store) Close() error {
	var err error
	if s.gormDB != nil {
		if sqlDB, dbErr := s.gormDB.DB(); dbErr != nil {
			err = multierr.Append(err, dbErr)
		} else {
			err = multierr.Append(err, sqlDB.Close())
		}
	}
	if s.cloverDB != nil {
		err = multierr.Append(err, s.cloverDB.Close())
	}
	return err
}

func closeGORM(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
