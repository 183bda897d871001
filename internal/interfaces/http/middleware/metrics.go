package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPRecorder receives one observation per served request
type HTTPRecorder interface {
	RequestStarted()
	RequestFinished(method, route string, status int, elapsed time.Duration)
}

// HTTPMetrics records request counts, latency and in-flight requests.
// Requests are labelled by route pattern so ids never explode cardinality.
func HTTPMetrics(recorder HTTPRecorder, skip ...string) gin.HandlerFunc {
	if recorder == nil {
		return func(c *gin.Context) { c.Next() }
	}
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skipped[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		recorder.RequestStarted()
		c.Next()
		recorder.RequestFinished(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
