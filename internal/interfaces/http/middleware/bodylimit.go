package middleware

import (
	"mime"
	"net/http"

	"github.com/dentalshop/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ErrCodeRequestTooLarge is returned when the body exceeds the limit
const ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"

// multipartOverhead leaves room for the text fields sent next to an image
const multipartOverhead = 1 << 20

// BodyLimitConfig caps request bodies. Multipart uploads (article images)
// get their own ceiling so the JSON limit can stay small.
type BodyLimitConfig struct {
	MaxBytes      int64
	MaxImageBytes int64
}

// BodyLimit rejects oversized bodies up front when Content-Length says so
// and cuts off streamed bodies once they pass the limit.
func BodyLimit(cfg BodyLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := cfg.MaxBytes
		if cfg.MaxImageBytes > 0 && isMultipart(c.Request) {
			limit = cfg.MaxImageBytes + multipartOverhead
		}
		if limit <= 0 {
			c.Next()
			return
		}

		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				ErrCodeRequestTooLarge,
				"Request body exceeds maximum allowed size",
				c.GetString(RequestIDContextKey)))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}
