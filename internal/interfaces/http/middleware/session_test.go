package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dentalshop/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionRouter() *gin.Engine {
	router := gin.New()
	router.Use(CartSession(DefaultCartSessionConfig()))
	router.GET("/cart", func(c *gin.Context) {
		id := GetCartSessionID(c)
		if logger.GetSessionID(c.Request.Context()) != id {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, id)
	})
	return router
}

func TestCartSession_MintsNewID(t *testing.T) {
	w := httptest.NewRecorder()
	sessionRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart", nil))

	require.Equal(t, http.StatusOK, w.Code)
	id := w.Body.String()
	assert.Len(t, id, 21)
	assert.Equal(t, id, w.Header().Get(SessionHeader))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "cart_session", cookies[0].Name)
	assert.Equal(t, id, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
}

func TestCartSession_ReusesCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: "cart_session", Value: "cookie-session-0123456"})
	req.Header.Set(SessionHeader, "header-session-0123456")
	w := httptest.NewRecorder()
	sessionRouter().ServeHTTP(w, req)

	assert.Equal(t, "cookie-session-0123456", w.Body.String())
}

func TestCartSession_FallsBackToHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set(SessionHeader, "header-session-0123456")
	w := httptest.NewRecorder()
	sessionRouter().ServeHTTP(w, req)

	assert.Equal(t, "header-session-0123456", w.Body.String())
}

func TestCartSession_RejectsMalformedIDs(t *testing.T) {
	for _, bad := range []string{"short", "has spaces in it ok", "../../etc/passwd/aaaaaa"} {
		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		req.Header.Set(SessionHeader, bad)
		w := httptest.NewRecorder()
		sessionRouter().ServeHTTP(w, req)

		assert.NotEqual(t, bad, w.Body.String())
		assert.Len(t, w.Body.String(), 21)
	}
}
