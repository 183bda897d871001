package logger

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// gin context keys written by the request id and JWT middleware
const (
	ginRequestIDKey = "request_id"
	ginUserIDKey    = "jwt_user_id"
)

// GinMiddleware puts a request scoped logger into the request context (see
// L) and writes one access entry per request. Paths in skip get no entry,
// which keeps /health and /metrics probes quiet. It must run after the
// tracing middleware for entries to carry the trace id.
func GinMiddleware(base *zap.Logger, skip ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		req := c.Request

		fields := []zap.Field{zap.String("method", req.Method), zap.String("path", req.URL.Path)}
		ctx := req.Context()
		requestID := c.GetString(ginRequestIDKey)
		if requestID != "" {
			fields = append(fields, zap.String("request_id", requestID))
			ctx = WithRequestID(ctx, requestID)
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields, zap.Stringer("trace_id", sc.TraceID()))
		}
		reqLogger := base.With(fields...)
		c.Request = req.WithContext(WithContext(ctx, reqLogger))

		c.Next()

		if slices.Contains(skip, req.URL.Path) {
			return
		}
		status := c.Writer.Status()
		entry := []zap.Field{
			zap.Int("status", status),
			zap.String("route", c.FullPath()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", req.UserAgent()),
			zap.Int("body_size", c.Writer.Size()),
		}
		// EventSource clients put the access token in the query
		if q := req.URL.RawQuery; q != "" && c.Query("jwt_token") == "" {
			entry = append(entry, zap.String("query", q))
		}
		if uid := c.GetString(ginUserIDKey); uid != "" {
			entry = append(entry, zap.String("user_id", uid))
		}
		if len(c.Errors) > 0 {
			entry = append(entry, zap.Strings("errors", c.Errors.Errors()))
		}
		reqLogger.Log(accessLevel(status), "HTTP Request", entry...)
	}
}

func accessLevel(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	}
	return zapcore.InfoLevel
}

// Recovery answers a handler panic with a 500 in the error envelope and
// logs the stack. A response already under way is cut off instead.
func Recovery(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			requestID := c.GetString(ginRequestIDKey)
			base.Error("Panic recovered",
				zap.String("request_id", requestID),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Any("error", r),
				zap.Stack("stacktrace"),
			)
			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":       "ERR_INTERNAL",
					"message":    "An unexpected error occurred",
					"request_id": requestID,
					"timestamp":  time.Now().UTC(),
				},
			})
		}()
		c.Next()
	}
}
