package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType tells access and refresh tokens apart
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Role claim values, mirrored from identity.Role
const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

// Claims is the token payload. Refresh tokens carry no username or role:
// both are re-read from the user row when a new access token is minted.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string    `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Role      string    `json:"role,omitempty"`
	TokenType TokenType `json:"token_type"`
}

func (c *Claims) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// RemainingTTL is how long the token stays valid; a revoked jti only
// needs blacklisting for that long.
func (c *Claims) RemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(time.Until(c.ExpiresAt.Time), 0)
}
