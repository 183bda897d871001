package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// TracerProvider overrides the global provider, mainly for tests
	TracerProvider trace.TracerProvider
	// SkipPaths are not traced, e.g. probes and the metrics endpoint
	SkipPaths []string
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "dentalshop-backend",
		Enabled:     true,
		SkipPaths:   []string{"/health", "/metrics"},
	}
}

// Tracing returns the otelgin middleware followed by SpanEnricher. Spans are
// named after the route pattern, e.g. "GET /api/products/:id".
func Tracing(cfg TracingConfig) []gin.HandlerFunc {
	if !cfg.Enabled {
		return nil
	}

	skipped := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skipped[p] = struct{}{}
	}
	opts := []otelgin.Option{
		otelgin.WithFilter(func(r *http.Request) bool {
			_, skip := skipped[r.URL.Path]
			return !skip
		}),
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgin.WithTracerProvider(cfg.TracerProvider))
	}

	return []gin.HandlerFunc{otelgin.Middleware(cfg.ServiceName, opts...), SpanEnricher()}
}

// SpanEnricher tags the request span once the handler chain has run, so
// identities resolved by later middleware are included. 4xx responses are
// marked as errors too; otelgin only marks 5xx.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		if id := c.GetString(RequestIDContextKey); id != "" {
			span.SetAttributes(attribute.String("request_id", id))
		}
		if id := GetJWTUserID(c); id != "" {
			span.SetAttributes(attribute.String("user_id", id))
		}
		if id := GetCartSessionID(c); id != "" {
			span.SetAttributes(attribute.String("cart_session_id", id))
		}

		status := c.Writer.Status()
		if status >= http.StatusBadRequest && status < http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
