package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/dentalshop/backend/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // include bind variables in spans, never in production
	SlowQueryThresh time.Duration // queries slower than this are flagged on the span
	DBSystem        string        // postgresql or sqlite
}

// DefaultDBTracingConfig returns the secure defaults
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "postgresql",
	}
}

// DBTracingConfigFrom maps the application config
func DBTracingConfigFrom(tel config.TelemetryConfig, db config.DatabaseConfig) DBTracingConfig {
	cfg := DefaultDBTracingConfig()
	cfg.Enabled = tel.Enabled && tel.DBTraceEnabled
	cfg.LogFullSQL = tel.DBLogFullSQL
	if tel.DBSlowQueryThresh > 0 {
		cfg.SlowQueryThresh = tel.DBSlowQueryThresh
	}
	if db.Driver == config.DriverSQLite {
		cfg.DBSystem = "sqlite"
	}
	return cfg
}

type queryStartKey struct{}

// DBTracingPlugin installs otelgorm plus slow query flagging
type DBTracingPlugin struct {
	config   DBTracingConfig
	logger   *zap.Logger
	provider trace.TracerProvider
}

// NewDBTracingPlugin creates a new database tracing plugin.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

// WithTracerProvider overrides the global provider for query spans
func (p *DBTracingPlugin) WithTracerProvider(tp trace.TracerProvider) *DBTracingPlugin {
	p.provider = tp
	return p
}

// Register installs the plugin on db. It is a no-op when disabled.
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled")
		return nil
	}

	// registered ahead of otelgorm so annotate runs before its span ends
	if err := p.registerCallbacks(db); err != nil {
		return err
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if p.provider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(p.provider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem))
	return nil
}

type registerFunc func(name string, fn func(*gorm.DB)) error

func (p *DBTracingPlugin) registerCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	ops := []struct {
		name   string
		before registerFunc
		after  registerFunc
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}
	for _, op := range ops {
		if err := op.before("dentalshop_timing:before_"+op.name, markQueryStart); err != nil {
			return err
		}
		if err := op.after("dentalshop_timing:after_"+op.name, p.annotate); err != nil {
			return err
		}
	}
	return nil
}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

// annotate adds table, row count, error and slow query details to the active span
func (p *DBTracingPlugin) annotate(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > p.config.SlowQueryThresh {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()))
		span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds())))
	}
}
