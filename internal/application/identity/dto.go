package identity

import (
	"time"

	"github.com/dentalshop/backend/internal/domain/identity"
	"github.com/google/uuid"
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LoginInput identifies an account by username or email. IP feeds the
// failed login log.
type LoginInput struct {
	Identifier string
	Password   string
	IP         string
}

// LoginResult is the token pair handed to a signed-in account, serialised
// as is by the login endpoint
type LoginResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	TokenType             string    `json:"token_type"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	User                  UserInfo  `json:"user"`
}

// UserInfo is an account as the API shows it; no password hash
type UserInfo struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func ToUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        string(u.Role),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

type RefreshTokenInput struct {
	RefreshToken string
}

type RefreshTokenResult struct {
	AccessToken          string    `json:"access_token"`
	TokenType            string    `json:"token_type"`
	AccessTokenExpiresAt time.Time `json:"access_token_expires_at"`
}

// LogoutInput identifies the access token to revoke
type LogoutInput struct {
	UserID   uuid.UUID
	TokenJTI string
	TTL      time.Duration // remaining lifetime of the token
}

type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}
