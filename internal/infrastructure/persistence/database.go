package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zantech/instantorder/internal/infrastructure/config"
	"github.com/zantech/instantorder/internal/infrastructure/logger"
	"github.com/zantech/instantorder/internal/infrastructure/persistence/models"
	"github.com/zantech/instantorder/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database holds the database connection and provides methods for database operations
type Database struct {
	DB     *gorm.DB
	system string
}

// Options controls how a Database is opened
type Options struct {
	Logger        *zap.Logger
	LogLevel      gormlogger.LogLevel
	SlowThreshold time.Duration
	Tracing       bool
}

// OpenPostgres connects to postgres using the pool settings of cfg.
func OpenPostgres(cfg *config.DatabaseConfig, opts Options) (*Database, error) {
	d, err := open(postgres.Open(cfg.DSN()), "postgresql", opts)
	if err != nil {
		return nil, err
	}

	sqlDB, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return d, nil
}

// OpenSQLite opens (creating if needed) a sqlite database file and migrates
// the catalog table. path ":memory:" gives a private in-memory database.
func OpenSQLite(path string, opts Options) (*Database, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	d, err := open(sqlite.Open(path), "sqlite", opts)
	if err != nil {
		return nil, err
	}

	// sqlite allows a single writer; in-memory databases are per connection.
	sqlDB, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := d.AutoMigrate(); err != nil {
		return nil, err
	}
	return d, nil
}

// NewDatabase wraps an already opened gorm connection.
func NewDatabase(db *gorm.DB, system string) *Database {
	return &Database{DB: db, system: system}
}

func open(dialector gorm.Dialector, system string, opts Options) (*Database, error) {
	zapLogger := opts.Logger
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	level := opts.LogLevel
	if level == 0 {
		level = gormlogger.Warn
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.NewGormLogger(zapLogger, level, opts.SlowThreshold),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := telemetry.RegisterDBTracing(db, telemetry.DBTracingConfig{
		Enabled:         opts.Tracing,
		DBSystem:        system,
		SlowQueryThresh: opts.SlowThreshold,
	}, zapLogger); err != nil {
		return nil, fmt.Errorf("failed to register database tracing: %w", err)
	}

	return &Database{DB: db, system: system}, nil
}

// AutoMigrate creates or updates the catalog table. Postgres deployments
// use the SQL migrations under migrations/ instead.
func (d *Database) AutoMigrate() error {
	if err := d.DB.AutoMigrate(&models.CatalogProductModel{}); err != nil {
		return fmt.Errorf("failed to migrate catalog table: %w", err)
	}
	return nil
}

// System returns the database system name ("postgresql" or "sqlite")
func (d *Database) System() string {
	return d.system
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Ping()
}

// Transaction executes a function within a database transaction
func (d *Database) Transaction(fn func(tx *gorm.DB) error) error {
	return d.DB.Transaction(fn)
}
