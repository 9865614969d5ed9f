// Package bootstrap wires configuration into the database, the workbook source and the import service.
// Both binaries start here.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"cybershield/internal/config"
	"cybershield/internal/importer"
	"cybershield/internal/metrics"
	"cybershield/internal/repository"
	"cybershield/internal/service"
	"cybershield/internal/workbook"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type App struct {
	Config   *config.Config
	Log      *logrus.Logger
	DB       *gorm.DB
	Repo     *repository.Repository
	Importer *importer.Importer
	Imports  *service.ImportService
}

// OpenDB connects with the configured driver and routes gorm's log through logrus.
func OpenDB(cfg config.DatabaseOptions, log *logrus.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	level := logger.Warn
	if log.IsLevelEnabled(logrus.DebugLevel) {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(log, logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// SQLite allows one writer; a single connection keeps the import transaction from locking itself out.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Source builds the workbook source named by IMPORT_SOURCE.
func Source(ctx context.Context, cfg *config.Config) (workbook.Source, error) {
	switch cfg.Import.Source {
	case "dir":
		return workbook.NewDirSource(cfg.Import.Root), nil
	case "s3":
		return workbook.NewS3Source(ctx, workbook.S3Config{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.Bucket,
			Prefix:    cfg.S3.Prefix,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
		})
	case "gsheets":
		return workbook.NewSheetsSource(ctx, cfg.Sheets.CredentialsFile, cfg.Sheets.Files)
	default:
		return nil, fmt.Errorf("unsupported import source %q", cfg.Import.Source)
	}
}

// ImportOptions turns the import settings into importer options, loading the city-country map.
func ImportOptions(cfg config.ImportOptions) (importer.Options, error) {
	opts := importer.DefaultOptions()
	policy, err := importer.ParsePolicy(cfg.Policy)
	if err != nil {
		return opts, err
	}
	opts.Policy = policy
	opts.LegacyCityCountry = cfg.LegacyCityCountry
	if !cfg.LegacyCityCountry {
		mapping, err := config.LoadCityCountryMap(cfg.CityCountryMap)
		if err != nil {
			return opts, err
		}
		opts.CityCountries = mapping
	}
	return opts, nil
}

// New opens the database, migrates it and builds the import service.
func New(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*App, error) {
	log := cfg.Logger()

	opts, err := ImportOptions(cfg.Import)
	if err != nil {
		return nil, err
	}
	source, err := Source(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("workbook source: %w", err)
	}

	db, err := OpenDB(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	repo := repository.NewRepository(db)
	if err := repo.Migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	im := importer.New(repo, source, opts, log.WithField("component", "importer"))
	return &App{
		Config:   cfg,
		Log:      log,
		DB:       db,
		Repo:     repo,
		Importer: im,
		Imports:  service.NewImportService(repo, im, m, log.WithField("component", "imports")),
	}, nil
}

// Close releases the database connection pool.
func (a *App) Close() error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
