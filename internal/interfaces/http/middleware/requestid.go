package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/jaevor/go-nanoid"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// RequestIDContextKey is the gin context key the request id is stored under
const RequestIDContextKey = "request_id"

const maxRequestIDLength = 128

var newRequestID = mustNanoID(21)

// RequestID tags every request with an id that error envelopes and logs
// repeat. A caller supplied id is kept unless it is absurdly long.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = newRequestID()
		}
		c.Set(RequestIDContextKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func mustNanoID(length int) func() string {
	gen, err := nanoid.Standard(length)
	if err != nil {
		panic(fmt.Sprintf("nanoid generator: %v", err))
	}
	return gen
}
