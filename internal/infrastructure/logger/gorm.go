package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// GormConfig tunes the SQL logger
type GormConfig struct {
	// Level is a log level name; see GormLevel
	Level string
	// SlowThreshold marks statements as slow; zero disables the check
	SlowThreshold time.Duration
	// MaxSQLLength truncates logged statements (seed batches get long); zero keeps them whole
	MaxSQLLength int
}

// GormLogger writes gorm's statements through zap, tagged with the request id
type GormLogger struct {
	log   *zap.Logger
	level gormlogger.LogLevel
	cfg   GormConfig
}

var _ gormlogger.Interface = (*GormLogger)(nil)

func NewGormLogger(l *zap.Logger, cfg GormConfig) *GormLogger {
	return &GormLogger{log: l.Named("gorm"), level: GormLevel(cfg.Level), cfg: cfg}
}

// GormLevel maps a level name to gorm's levels. debug and info both log
// every statement; unknown names fall back to warn.
func GormLevel(name string) gormlogger.LogLevel {
	switch name {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	}
	return gormlogger.Warn
}

func (g *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	c := *g
	c.level = level
	return &c
}

func (g *GormLogger) Info(ctx context.Context, msg string, args ...any) {
	g.printf(ctx, gormlogger.Info, msg, args)
}

func (g *GormLogger) Warn(ctx context.Context, msg string, args ...any) {
	g.printf(ctx, gormlogger.Warn, msg, args)
}

func (g *GormLogger) Error(ctx context.Context, msg string, args ...any) {
	g.printf(ctx, gormlogger.Error, msg, args)
}

func (g *GormLogger) printf(ctx context.Context, at gormlogger.LogLevel, msg string, args []any) {
	if g.level < at {
		return
	}
	s := Enrich(ctx, g.log).Sugar()
	switch at {
	case gormlogger.Error:
		s.Errorf(msg, args...)
	case gormlogger.Warn:
		s.Warnf(msg, args...)
	default:
		s.Infof(msg, args...)
	}
}

// Trace reports one executed statement. Failures log at error, slow
// statements at warn, the rest at debug. Missing rows are not failures:
// repositories turn them into ErrNotFound.
func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	if err != nil && errors.Is(err, gormlogger.ErrRecordNotFound) {
		err = nil
	}

	elapsed := time.Since(begin)
	slow := g.cfg.SlowThreshold > 0 && elapsed > g.cfg.SlowThreshold
	if err == nil && !slow && g.level < gormlogger.Info {
		return
	}

	stmt, rows := fc()
	if n := g.cfg.MaxSQLLength; n > 0 && len(stmt) > n {
		stmt = stmt[:n] + "..."
	}
	fields := []zap.Field{
		zap.String("sql", stmt),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}
	log := Enrich(ctx, g.log)

	switch {
	case err != nil:
		if g.level >= gormlogger.Error {
			log.Error("SQL failed", append(fields, zap.Error(err))...)
		}
	case slow:
		if g.level >= gormlogger.Warn {
			log.Warn("Slow SQL", append(fields, zap.Duration("threshold", g.cfg.SlowThreshold))...)
		}
	default:
		log.Debug("SQL", fields...)
	}
}
