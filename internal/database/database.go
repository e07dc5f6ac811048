package database

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"todoapp/internal/config"
	"todoapp/internal/database/migrations"
	"todoapp/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects to the configured store and brings its schema up to date.
func Open(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: NewLogger(cfg.LogLevel)}

	switch strings.ToLower(cfg.DBDriver) {
	case DriverPostgres:
		db, err := gorm.Open(postgres.Open(cfg.PostgresDSN()), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to DB: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		if err := migrations.Up(sqlDB); err != nil {
			return nil, err
		}
		return db, nil
	case DriverSQLite:
		return OpenSQLite(cfg.SQLitePath, gormCfg)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// OpenSQLite opens a SQLite store and auto-migrates the models. The path
// ":memory:" yields a private in-memory database pinned to one connection.
func OpenSQLite(path string, gormCfg *gorm.Config) (*gorm.DB, error) {
	if gormCfg == nil {
		gormCfg = &gorm.Config{Logger: logger.Discard}
	}
	db, err := gorm.Open(sqlite.Open(path), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}
	if path == ":memory:" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// AutoMigrate creates the tables from the gorm models. Postgres deployments
// use the SQL migrations instead.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Role{}, &model.User{}, &model.Task{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// NewLogger maps LOG_LEVEL onto gorm's logger.
func NewLogger(level string) logger.Interface {
	lvl := logger.Warn
	switch strings.ToLower(level) {
	case "debug":
		lvl = logger.Info
	case "error":
		lvl = logger.Error
	case "silent":
		lvl = logger.Silent
	}
	return logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  lvl,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
