package snapshot

import (
	"fmt"
	"io"

	"github.com/zantech/instantorder/internal/domain/catalog"
	"github.com/zantech/instantorder/internal/infrastructure/config"
	"github.com/zantech/instantorder/internal/infrastructure/logger"
	"github.com/zantech/instantorder/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

// Store names accepted by catalog.store
const (
	StoreFile     = "file"
	StoreBolt     = "bolt"
	StoreRedis    = "redis"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Factory creates the snapshot store selected by configuration
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// NewFactory creates a new factory
func NewFactory(cfg *config.Config, opts ...FactoryOption) *Factory {
	f := &Factory{
		cfg:    cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create opens the configured store. The returned closer releases its
// connection or file lock and is never nil.
func (f *Factory) Create() (catalog.SnapshotStore, io.Closer, error) {
	store := f.cfg.Catalog.Store
	log := f.logger.With(zap.String("store", store))

	switch store {
	case StoreFile, "":
		s := NewFileStore(f.cfg.Catalog.Path)
		log.Info("Using file snapshot store", zap.String("path", s.Path()))
		return s, nopCloser{}, nil

	case StoreBolt:
		s, err := OpenBoltStore(f.cfg.Catalog.Path)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Using bolt snapshot store", zap.String("path", f.cfg.Catalog.Path))
		return s, s, nil

	case StoreRedis:
		s, err := NewRedisStore(f.cfg.Redis, f.cfg.Catalog.RedisKey)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Using redis snapshot store",
			zap.String("addr", f.cfg.Redis.Addr()),
			zap.String("key", f.cfg.Catalog.RedisKey),
		)
		return s, s, nil

	case StoreSQLite:
		db, err := persistence.OpenSQLite(f.cfg.Catalog.Path, f.dbOptions())
		if err != nil {
			return nil, nil, err
		}
		log.Info("Using sqlite snapshot store", zap.String("path", f.cfg.Catalog.Path))
		return persistence.NewGormSnapshotStore(db.DB), db, nil

	case StorePostgres:
		db, err := persistence.OpenPostgres(&f.cfg.Database, f.dbOptions())
		if err != nil {
			return nil, nil, err
		}
		log.Info("Using postgres snapshot store",
			zap.String("host", f.cfg.Database.Host),
			zap.String("database", f.cfg.Database.DBName),
		)
		return persistence.NewGormSnapshotStore(db.DB), db, nil
	}

	return nil, nil, fmt.Errorf("unknown catalog store %q", store)
}

func (f *Factory) dbOptions() persistence.Options {
	return persistence.Options{
		Logger:        f.logger,
		LogLevel:      logger.MapGormLogLevel(f.cfg.Log.Level),
		SlowThreshold: f.cfg.Telemetry.DBSlowQueryThresh,
		Tracing:       f.cfg.Telemetry.Enabled && f.cfg.Telemetry.DBTraceEnabled,
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
