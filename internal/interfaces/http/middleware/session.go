package middleware

import (
	"net/http"
	"regexp"
	"time"

	"github.com/dentalshop/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
)

// SessionHeader lets API clients without cookies carry their cart session
const SessionHeader = "X-Session-ID"

// SessionContextKey is the gin context key for the cart session id
const SessionContextKey = "cart_session_id"

// session ids are nanoids; anything else is replaced rather than trusted
var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{16,64}$`)

var newSessionID = mustNanoID(21)

// CartSessionConfig configures the cart session middleware
type CartSessionConfig struct {
	CookieName string
	CookiePath string
	Secure     bool
	TTL        time.Duration
}

// DefaultCartSessionConfig returns the default cart session settings
func DefaultCartSessionConfig() CartSessionConfig {
	return CartSessionConfig{
		CookieName: "cart_session",
		CookiePath: "/",
		TTL:        7 * 24 * time.Hour,
	}
}

// CartSession resolves the cart session from the cookie or X-Session-ID
// header, minting a new id when neither carries a valid one. The id is
// echoed back as an HttpOnly cookie and in the X-Session-ID header.
func CartSession(cfg CartSessionConfig) gin.HandlerFunc {
	if cfg.CookieName == "" {
		cfg.CookieName = "cart_session"
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = "/"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 7 * 24 * time.Hour
	}

	return func(c *gin.Context) {
		sessionID, _ := c.Cookie(cfg.CookieName)
		if !sessionIDPattern.MatchString(sessionID) {
			sessionID = c.GetHeader(SessionHeader)
		}
		if !sessionIDPattern.MatchString(sessionID) {
			sessionID = newSessionID()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, sessionID, int(cfg.TTL.Seconds()), cfg.CookiePath, "", cfg.Secure, true)
		c.Header(SessionHeader, sessionID)

		c.Set(SessionContextKey, sessionID)
		c.Request = c.Request.WithContext(logger.WithSessionID(c.Request.Context(), sessionID))
		c.Next()
	}
}

// GetCartSessionID returns the session id set by CartSession
func GetCartSessionID(c *gin.Context) string {
	return c.GetString(SessionContextKey)
}
