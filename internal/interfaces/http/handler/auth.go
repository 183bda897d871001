package handler

import (
	"context"

	"github.com/dentalshop/backend/internal/application/identity"
	"github.com/dentalshop/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Authenticator covers sign-up, sign-in and token upkeep
type Authenticator interface {
	Register(ctx context.Context, input identity.RegisterInput) (*identity.UserInfo, error)
	Login(ctx context.Context, input identity.LoginInput) (*identity.LoginResult, error)
	Refresh(ctx context.Context, input identity.RefreshTokenInput) (*identity.RefreshTokenResult, error)
	Me(ctx context.Context, userID uuid.UUID) (*identity.UserInfo, error)
	Logout(ctx context.Context, input identity.LogoutInput) error
	ChangePassword(ctx context.Context, input identity.ChangePasswordInput) error
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=80"`
	Email    string `json:"email" binding:"required,email,max=120"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest accepts the account email in Username too
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=120"`
	Password string `json:"password" binding:"required,max=128"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

type AuthHandler struct {
	BaseHandler
	auth Authenticator
}

func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register creates a client account.
//
//	POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), identity.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// Login issues an access and refresh token pair.
//
//	POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), identity.LoginInput{
		Identifier: req.Username,
		Password:   req.Password,
		IP:         c.ClientIP(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Refresh trades a refresh token for a new access token.
//
//	POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.auth.Refresh(c.Request.Context(), identity.RefreshTokenInput{
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Me returns the caller's account.
//
//	GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	user, err := h.auth.Me(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Logout revokes the presented access token.
//
//	POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, _ := getUserID(c)

	if err := h.auth.Logout(c.Request.Context(), identity.LogoutInput{
		UserID:   userID,
		TokenJTI: claims.ID,
		TTL:      claims.RemainingTTL(),
	}); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Logged out successfully")
}

// ChangePassword replaces the caller's password.
//
//	PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), identity.ChangePasswordInput{
		UserID:      userID,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	}); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Password changed successfully")
}
