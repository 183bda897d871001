package middleware

import (
	"net/http"

	"github.com/dentalshop/backend/internal/infrastructure/auth"
	"github.com/dentalshop/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PermissionConfig holds configuration for permission middleware
type PermissionConfig struct {
	Logger *zap.Logger
}

// RequireAdmin allows only tokens carrying the admin role. It must run after
// JWTAuth: a missing identity is 401, a non-admin one 403.
func RequireAdmin(cfg PermissionConfig) gin.HandlerFunc {
	return RequireRole(cfg, auth.RoleAdmin)
}

// RequireRole allows only tokens whose role is one of roles
func RequireRole(cfg PermissionConfig, roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		requestID := c.GetString(RequestIDContextKey)
		claims := GetJWTClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Authentication required", requestID))
			return
		}

		if _, ok := allowed[claims.Role]; !ok {
			if cfg.Logger != nil {
				cfg.Logger.Warn("Permission denied",
					zap.String("user_id", claims.UserID),
					zap.String("role", claims.Role),
					zap.Strings("required_any", roles),
					zap.String("path", c.Request.URL.Path))
			}
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "Admin access required", requestID))
			return
		}
		c.Next()
	}
}
