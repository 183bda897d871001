package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dentalshop/backend/internal/infrastructure/auth"
	"github.com/dentalshop/backend/internal/infrastructure/logger"
	"github.com/dentalshop/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "jwt_user_id"
	JWTUsernameKey = "jwt_username"
	JWTRoleKey     = "jwt_role"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
	// QueryTokenKey carries the access token for EventSource clients,
	// which cannot set headers
	QueryTokenKey = "jwt_token"
)

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// TokenBlacklist is optional for checking revoked tokens
	TokenBlacklist auth.TokenBlacklist
	// AllowQueryToken accepts ?jwt_token= when no Authorization header is sent
	AllowQueryToken bool
	Logger          *zap.Logger
}

// JWTAuth rejects requests without a valid, unrevoked access token
func JWTAuth(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := extractToken(c, cfg.AllowQueryToken)
		if err != nil {
			handleAuthError(c, cfg, err)
			return
		}

		claims, err := authenticate(c, cfg, tokenString)
		if err != nil {
			handleAuthError(c, cfg, err)
			return
		}

		setClaims(c, claims)
		if cfg.Logger != nil {
			cfg.Logger.Debug("JWT authentication successful",
				zap.String("user_id", claims.UserID),
				zap.String("role", claims.Role))
		}
		c.Next()
	}
}

// OptionalJWT attaches claims when a valid token is present and otherwise
// lets the request through anonymously
func OptionalJWT(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := extractToken(c, cfg.AllowQueryToken)
		if err != nil {
			c.Next()
			return
		}
		if claims, err := authenticate(c, cfg, tokenString); err == nil {
			setClaims(c, claims)
		}
		c.Next()
	}
}

var errMissingToken = errors.New("missing authorization token")

func extractToken(c *gin.Context, allowQuery bool) (string, error) {
	if header := c.GetHeader(AuthHeaderKey); header != "" {
		if !strings.HasPrefix(header, BearerPrefix) {
			return "", auth.ErrInvalidToken
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
		if token == "" {
			return "", errMissingToken
		}
		return token, nil
	}
	if allowQuery {
		if token := c.Query(QueryTokenKey); token != "" {
			return token, nil
		}
	}
	return "", errMissingToken
}

func authenticate(c *gin.Context, cfg JWTMiddlewareConfig, tokenString string) (*auth.Claims, error) {
	claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, err
	}
	if cfg.TokenBlacklist == nil || claims.ID == "" {
		return claims, nil
	}

	revoked, err := cfg.TokenBlacklist.IsRevoked(c.Request.Context(), claims.ID)
	if err != nil {
		// fail open: the blacklist store being down must not log everyone out
		if cfg.Logger != nil {
			cfg.Logger.Error("Failed to check token blacklist",
				zap.String("jti", claims.ID),
				zap.Error(err))
		}
		return claims, nil
	}
	if revoked {
		return nil, auth.ErrTokenBlacklisted
	}
	return claims, nil
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(JWTClaimsKey, claims)
	c.Set(JWTUserIDKey, claims.UserID)
	c.Set(JWTUsernameKey, claims.Username)
	c.Set(JWTRoleKey, claims.Role)
	c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
}

func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, err error) {
	if cfg.Logger != nil {
		cfg.Logger.Warn("JWT authentication failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path))
	}

	code := dto.ErrCodeUnauthorized
	message := "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		code, message = dto.ErrCodeTokenInvalid, "Token has been revoked"
	case errors.Is(err, errMissingToken):
	default:
		code, message = dto.ErrCodeTokenInvalid, "Invalid token"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, message, c.GetString(RequestIDContextKey)))
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetJWTUserID retrieves the user ID from JWT claims in context
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}

// GetJWTUserUUID returns the authenticated user's id, or nil for anonymous
// requests
func GetJWTUserUUID(c *gin.Context) *uuid.UUID {
	claims := GetJWTClaims(c)
	if claims == nil {
		return nil
	}
	id, err := claims.GetUserUUID()
	if err != nil {
		return nil
	}
	return &id
}
