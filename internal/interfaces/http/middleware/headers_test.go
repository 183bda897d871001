package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func okHandler(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// serve runs one request through mw and an ok handler on /x
func serve(mw gin.HandlerFunc, method string, header http.Header) *httptest.ResponseRecorder {
	router := gin.New()
	router.Use(mw)
	router.GET("/x", okHandler)

	req := httptest.NewRequest(method, "/x", nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func origin(o string) http.Header {
	return http.Header{"Origin": {o}}
}

func TestCORSWithConfig(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://dentalshop.ma"}
	mw := CORSWithConfig(cfg)

	tests := []struct {
		name   string
		method string
		origin string
		status int
		check  func(*testing.T, http.Header)
	}{
		{
			name: "listed origin", method: http.MethodGet, origin: "https://dentalshop.ma", status: http.StatusOK,
			check: func(t *testing.T, h http.Header) {
				assert.Equal(t, "https://dentalshop.ma", h.Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "true", h.Get("Access-Control-Allow-Credentials"))
				assert.Equal(t, "Origin", h.Get("Vary"))
				assert.Contains(t, h.Get("Access-Control-Expose-Headers"), "X-Session-ID")
				assert.Equal(t, "43200", h.Get("Access-Control-Max-Age"))
			},
		},
		{
			name: "listed origin preflight", method: http.MethodOptions, origin: "https://dentalshop.ma", status: http.StatusNoContent,
			check: func(t *testing.T, h http.Header) {
				assert.Contains(t, h.Get("Access-Control-Allow-Headers"), "X-Session-ID")
				assert.Contains(t, h.Get("Access-Control-Allow-Methods"), "PATCH")
			},
		},
		{
			name: "foreign origin", method: http.MethodGet, origin: "https://evil.example.com", status: http.StatusOK,
			check: func(t *testing.T, h http.Header) {
				assert.Empty(t, h.Get("Access-Control-Allow-Origin"))
			},
		},
		{
			name: "foreign preflight", method: http.MethodOptions, origin: "https://evil.example.com", status: http.StatusNoContent,
			check: func(t *testing.T, h http.Header) {
				assert.Empty(t, h.Get("Access-Control-Allow-Origin"))
				assert.Empty(t, h.Get("Access-Control-Allow-Methods"))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(mw, tt.method, origin(tt.origin))
			assert.Equal(t, tt.status, w.Code)
			tt.check(t, w.Header())
		})
	}
}

func TestCORS_WildcardNeverSendsCredentials(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"*"}

	w := serve(CORSWithConfig(cfg), http.MethodGet, origin("http://localhost:5173"))

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Empty(t, w.Header().Get("Vary"))
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig()

	assert.Empty(t, cfg.AllowOrigins)
	assert.Contains(t, cfg.AllowHeaders, "Authorization")
	assert.Contains(t, cfg.AllowHeaders, "Last-Event-ID")
	assert.Contains(t, cfg.ExposeHeaders, "Content-Disposition", "CSV exports name their file")
	assert.True(t, cfg.AllowCredentials)
	assert.Equal(t, 12*time.Hour, cfg.MaxAge)
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/echo", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDContextKey))
	})
	echo := func(sent string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/echo", nil)
		if sent != "" {
			req.Header.Set(RequestIDHeader, sent)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := echo("")
	assert.Len(t, w.Body.String(), 21, "nanoid")
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	assert.Equal(t, "order-7f3a", echo("order-7f3a").Body.String())
	assert.Len(t, echo(strings.Repeat("a", 500)).Body.String(), 21, "oversized ids are replaced")
}

func TestSecure(t *testing.T) {
	h := serve(Secure(), http.MethodGet, nil).Header()

	assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
	assert.Contains(t, h.Get("Content-Security-Policy"), "frame-ancestors 'none'")
	assert.Contains(t, h.Get("Permissions-Policy"), "camera=()")
	assert.Empty(t, h.Get("Strict-Transport-Security"))
}

func TestSecureWithConfig_HSTS(t *testing.T) {
	cfg := ProductionSecurityConfig()
	cfg.HSTSPreload = true

	h := serve(SecureWithConfig(cfg), http.MethodGet, nil).Header()

	assert.Equal(t, "max-age=31536000; includeSubDomains; preload", h.Get("Strict-Transport-Security"))
}
