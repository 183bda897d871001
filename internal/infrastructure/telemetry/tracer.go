// Package telemetry wires OpenTelemetry tracing and Prometheus metrics.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/dentalshop/backend/internal/infrastructure/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"
	"go.uber.org/zap"

	otelpyroscope "github.com/grafana/otel-profiling-go"
)

// ServiceVersion is reported on every exported span
const ServiceVersion = "1.0.0"

const shutdownTimeout = 10 * time.Second

// Config holds tracing configuration
type Config struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Environment       string
	Insecure          bool
}

// ConfigFrom maps the telemetry section; env tags spans with the deployment
func ConfigFrom(cfg config.TelemetryConfig, env string) Config {
	return Config{
		Enabled:           cfg.Enabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		SamplingRatio:     cfg.SamplingRatio,
		ServiceName:       cfg.ServiceName,
		Environment:       env,
		Insecure:          cfg.Insecure,
	}
}

// TracerProvider owns the SDK provider when export is on. Disabled, it
// leaves otel's global no-op provider in place.
type TracerProvider struct {
	embedded.TracerProvider

	provider *sdktrace.TracerProvider
	// traces is what Tracer hands out: provider, or provider wrapped with
	// span profile labels
	traces       trace.TracerProvider
	spanProfiles bool
	logger       *zap.Logger
	config       Config
}

func NewTracerProvider(ctx context.Context, cfg Config, logger *zap.Logger) (*TracerProvider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tp := &TracerProvider{logger: logger, config: cfg}
	if !cfg.Enabled {
		logger.Info("Tracing disabled")
		return tp, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}
	res, err := serviceResource(cfg)
	if err != nil {
		return nil, err
	}

	tp.provider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(Sampler(cfg.SamplingRatio)),
	)
	tp.traces = tp.provider
	otel.SetTracerProvider(tp.traces)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	logger.Info("Tracing enabled",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Float64("sampling_ratio", cfg.SamplingRatio),
	)
	return tp, nil
}

func serviceResource(cfg Config) (*resource.Resource, error) {
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// Sampler honours the caller's decision and samples ratio of new traces
func Sampler(ratio float64) sdktrace.Sampler {
	root := sdktrace.TraceIDRatioBased(ratio)
	if ratio >= 1 {
		root = sdktrace.AlwaysSample()
	} else if ratio <= 0 {
		root = sdktrace.NeverSample()
	}
	return sdktrace.ParentBased(root)
}

// Shutdown flushes buffered spans, waiting at most shutdownTimeout
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp.provider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := tp.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown tracer provider: %w", err)
	}
	tp.logger.Info("Tracing flushed")
	return nil
}

func (tp *TracerProvider) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	if tp.traces == nil {
		return otel.GetTracerProvider().Tracer(name, opts...)
	}
	return tp.traces.Tracer(name, opts...)
}

// EnableSpanProfiles labels CPU samples with the active span id, so a slow
// checkout trace links to its flame graph. Call after the profiler started.
func (tp *TracerProvider) EnableSpanProfiles() {
	if tp.provider == nil || tp.spanProfiles {
		return
	}
	tp.traces = otelpyroscope.NewTracerProvider(tp.provider)
	tp.spanProfiles = true
	otel.SetTracerProvider(tp.traces)
	tp.logger.Info("Span profiles enabled")
}

// SpanProfilesEnabled reports whether EnableSpanProfiles took effect
func (tp *TracerProvider) SpanProfilesEnabled() bool {
	return tp.spanProfiles
}

func (tp *TracerProvider) IsEnabled() bool {
	return tp.provider != nil
}

func (tp *TracerProvider) GetConfig() Config {
	return tp.config
}

var _ trace.TracerProvider = (*TracerProvider)(nil)
