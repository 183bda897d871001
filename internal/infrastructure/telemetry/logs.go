package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogExporter ships log records to the collector next to the regular zap
// output. Disabled, it hands out a no-op core.
type LogExporter struct {
	provider *sdklog.LoggerProvider
	logger   *zap.Logger
	service  string
}

// NewLogExporter starts the OTLP log pipeline when cfg.Enabled
func NewLogExporter(ctx context.Context, cfg Config, logger *zap.Logger) (*LogExporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	le := &LogExporter{logger: logger, service: cfg.ServiceName}
	if !cfg.Enabled {
		return le, nil
	}

	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP log exporter: %w", err)
	}
	res, err := serviceResource(cfg)
	if err != nil {
		return nil, err
	}

	le.provider = sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
	global.SetLoggerProvider(le.provider)
	logger.Info("Log export enabled", zap.String("collector_endpoint", cfg.CollectorEndpoint))
	return le, nil
}

// Core returns a zap core writing to the collector at min and above, for
// logger.WithCore
func (le *LogExporter) Core(min zapcore.Level) zapcore.Core {
	if le.provider == nil {
		return zapcore.NewNopCore()
	}
	core := otelzap.NewCore(le.service,
		otelzap.WithLoggerProvider(le.provider),
		otelzap.WithVersion(ServiceVersion),
	)
	filtered, err := zapcore.NewIncreaseLevelCore(core, min)
	if err != nil {
		return core
	}
	return filtered
}

func (le *LogExporter) Enabled() bool {
	return le.provider != nil
}

// Shutdown flushes buffered records
func (le *LogExporter) Shutdown(ctx context.Context) error {
	if le.provider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := le.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown log exporter: %w", err)
	}
	return nil
}
