package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dentalshop/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_BurstThenBlock(t *testing.T) {
	rl := NewRateLimiter(3, time.Hour)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("10.0.0.1"), "request %d", i)
	}
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.Equal(t, 0, rl.Remaining("10.0.0.1"))

	// buckets are per key
	assert.True(t, rl.Allow("10.0.0.2"))
	assert.Equal(t, 3, rl.Remaining("10.0.0.3"))
}

func TestRateLimiter_Refills(t *testing.T) {
	rl := NewRateLimiter(1, 50*time.Millisecond)
	defer rl.Stop()

	require.True(t, rl.Allow("k"))
	require.False(t, rl.Allow("k"))

	assert.Eventually(t, func() bool { return rl.Allow("k") }, time.Second, 10*time.Millisecond)
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(2, time.Hour)
	defer rl.Stop()

	router := gin.New()
	router.POST("/api/auth/login", RateLimit(rl), okHandler)

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "192.0.2.10:4321"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	first := send()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, send().Code)

	blocked := send()
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "1", blocked.Header().Get("Retry-After"))
	assert.Equal(t, dto.ErrCodeRateLimited, decodeError(t, blocked).Code)
}

func TestRateLimitByKey(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	defer rl.Stop()

	router := gin.New()
	router.GET("/x", RateLimitByKey(rl, func(c *gin.Context) string { return c.Query("k") }), okHandler)

	get := func(key string) int {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x?k="+key, nil))
		return w.Code
	}

	assert.Equal(t, http.StatusOK, get("a"))
	assert.Equal(t, http.StatusTooManyRequests, get("a"))
	assert.Equal(t, http.StatusOK, get("b"))
}
