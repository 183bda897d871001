package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// SecurityConfig controls the hardening headers sent with every response
type SecurityConfig struct {
	// HSTSMaxAge enables Strict-Transport-Security when positive. Only set it
	// behind HTTPS.
	HSTSMaxAge        int
	HSTSPreload       bool
	ContentPolicy     string
	PermissionsPolicy string
}

// DefaultSecurityConfig suits a JSON API whose product images may come from
// object storage on another host.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		ContentPolicy:     "default-src 'self'; img-src 'self' data: https:; connect-src 'self'; frame-ancestors 'none'; base-uri 'self'; form-action 'self'",
		PermissionsPolicy: "accelerometer=(), camera=(), geolocation=(), gyroscope=(), microphone=(), payment=(), usb=()",
	}
}

// ProductionSecurityConfig adds a one year HSTS policy to the defaults
func ProductionSecurityConfig() SecurityConfig {
	cfg := DefaultSecurityConfig()
	cfg.HSTSMaxAge = 31536000
	return cfg
}

// Secure adds the default security headers
func Secure() gin.HandlerFunc {
	return SecureWithConfig(DefaultSecurityConfig())
}

// SecureWithConfig adds security headers with custom configuration
func SecureWithConfig(cfg SecurityConfig) gin.HandlerFunc {
	headers := map[string]string{
		"X-Frame-Options":        "DENY",
		"X-Content-Type-Options": "nosniff",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	if cfg.ContentPolicy != "" {
		headers["Content-Security-Policy"] = cfg.ContentPolicy
	}
	if cfg.PermissionsPolicy != "" {
		headers["Permissions-Policy"] = cfg.PermissionsPolicy
	}
	if cfg.HSTSMaxAge > 0 {
		hsts := fmt.Sprintf("max-age=%d; includeSubDomains", cfg.HSTSMaxAge)
		if cfg.HSTSPreload {
			hsts += "; preload"
		}
		headers["Strict-Transport-Security"] = hsts
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		for k, v := range headers {
			h.Set(k, v)
		}
		c.Next()
	}
}
