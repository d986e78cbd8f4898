package telemetry

import (
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	DBSystem        string        // "postgresql" or "sqlite"
	SlowQueryThresh time.Duration // queries slower than this get a db.slow_query span attribute
}

// RegisterDBTracing installs the otelgorm plugin on db, plus a callback
// tagging slow snapshot writes. It is a no-op when tracing is disabled.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	if err := db.Use(otelgorm.NewPlugin(
		otelgorm.WithDBName(cfg.DBSystem),
		otelgorm.WithoutQueryVariables(),
	)); err != nil {
		return err
	}

	if cfg.SlowQueryThresh > 0 {
		before := func(tx *gorm.DB) {
			tx.InstanceSet(queryStartKey, time.Now())
		}
		after := func(tx *gorm.DB) {
			v, ok := tx.InstanceGet(queryStartKey)
			if !ok {
				return
			}
			start, ok := v.(time.Time)
			if !ok {
				return
			}
			if elapsed := time.Since(start); elapsed >= cfg.SlowQueryThresh {
				trace.SpanFromContext(tx.Statement.Context).SetAttributes(
					attribute.Bool("db.slow_query", true),
					attribute.Int64("db.duration_ms", elapsed.Milliseconds()),
				)
			}
		}
		if err := db.Callback().Create().Before("gorm:create").Register("otel_timing:before_create", before); err != nil {
			return err
		}
		if err := db.Callback().Create().After("gorm:create").Register("otel_timing:after_create", after); err != nil {
			return err
		}
		if err := db.Callback().Query().Before("gorm:query").Register("otel_timing:before_query", before); err != nil {
			return err
		}
		if err := db.Callback().Query().After("gorm:query").Register("otel_timing:after_query", after); err != nil {
			return err
		}
	}

	logger.Info("Database tracing enabled",
		zap.String("db_system", cfg.DBSystem),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

const queryStartKey = "telemetry:query_start"
