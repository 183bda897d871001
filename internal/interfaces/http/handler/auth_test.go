package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dentalshop/backend/internal/application/identity"
	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/dentalshop/backend/internal/infrastructure/auth"
	"github.com/dentalshop/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Register(ctx context.Context, input identity.RegisterInput) (*identity.UserInfo, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserInfo), args.Error(1)
}

func (m *MockAuthenticator) Login(ctx context.Context, input identity.LoginInput) (*identity.LoginResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.LoginResult), args.Error(1)
}

func (m *MockAuthenticator) Refresh(ctx context.Context, input identity.RefreshTokenInput) (*identity.RefreshTokenResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.RefreshTokenResult), args.Error(1)
}

func (m *MockAuthenticator) Me(ctx context.Context, userID uuid.UUID) (*identity.UserInfo, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserInfo), args.Error(1)
}

func (m *MockAuthenticator) Logout(ctx context.Context, input identity.LogoutInput) error {
	return m.Called(ctx, input).Error(0)
}

func (m *MockAuthenticator) ChangePassword(ctx context.Context, input identity.ChangePasswordInput) error {
	return m.Called(ctx, input).Error(0)
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := new(MockAuthenticator)
		h := NewAuthHandler(svc)
		r := gin.New()
		r.POST("/auth/register", h.Register)

		input := identity.RegisterInput{Username: "drlee", Email: "lee@clinic.test", Password: "s3cure-pass"}
		svc.On("Register", mock.Anything, input).
			Return(&identity.UserInfo{ID: uuid.New(), Username: "drlee", Email: "lee@clinic.test", Role: auth.RoleClient}, nil)

		w := doJSON(r, http.MethodPost, "/auth/register", map[string]string{
			"username": "drlee", "email": "lee@clinic.test", "password": "s3cure-pass",
		})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var got identity.UserInfo
		decodeData(t, w, &got)
		assert.Equal(t, auth.RoleClient, got.Role)
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc := new(MockAuthenticator)
		h := NewAuthHandler(svc)
		r := gin.New()
		r.POST("/auth/register", h.Register)
		svc.On("Register", mock.Anything, mock.Anything).
			Return(nil, shared.NewDomainError("ALREADY_EXISTS", "Email already registered"))

		w := doJSON(r, http.MethodPost, "/auth/register", map[string]string{
			"username": "drlee", "email": "lee@clinic.test", "password": "s3cure-pass",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("short password", func(t *testing.T) {
		svc := new(MockAuthenticator)
		h := NewAuthHandler(svc)
		r := gin.New()
		r.POST("/auth/register", h.Register)

		w := doJSON(r, http.MethodPost, "/auth/register", map[string]string{
			"username": "drlee", "email": "lee@clinic.test", "password": "short",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := new(MockAuthenticator)
		h := NewAuthHandler(svc)
		r := gin.New()
		r.POST("/auth/login", h.Login)

		expires := time.Now().Add(15 * time.Minute).UTC().Truncate(time.Second)
		svc.On("Login", mock.Anything, mock.MatchedBy(func(in identity.LoginInput) bool {
			return in.Identifier == "admin" && in.Password == "changeme123" && in.IP != ""
		})).Return(&identity.LoginResult{
			AccessToken:          "access",
			RefreshToken:         "refresh",
			TokenType:            "Bearer",
			AccessTokenExpiresAt: expires,
			User:                 identity.UserInfo{Username: "admin", Role: auth.RoleAdmin},
		}, nil)

		w := doJSON(r, http.MethodPost, "/auth/login", map[string]string{"username": "admin", "password": "changeme123"})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var got identity.LoginResult
		decodeData(t, w, &got)
		assert.Equal(t, "access", got.AccessToken)
		assert.Equal(t, "refresh", got.RefreshToken)
		assert.Equal(t, "Bearer", got.TokenType)
		assert.True(t, expires.Equal(got.AccessTokenExpiresAt))
		assert.Equal(t, auth.RoleAdmin, got.User.Role)
	})

	t.Run("bad credentials", func(t *testing.T) {
		svc := new(MockAuthenticator)
		h := NewAuthHandler(svc)
		r := gin.New()
		r.POST("/auth/login", h.Login)
		svc.On("Login", mock.Anything, mock.Anything).
			Return(nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password"))

		w := doJSON(r, http.MethodPost, "/auth/login", map[string]string{"username": "admin", "password": "nope"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidCredentials, decodeResponse(t, w).Error.Code)
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	svc := new(MockAuthenticator)
	h := NewAuthHandler(svc)
	r := gin.New()
	r.POST("/auth/refresh", h.Refresh)
	svc.On("Refresh", mock.Anything, identity.RefreshTokenInput{RefreshToken: "rt"}).
		Return(&identity.RefreshTokenResult{AccessToken: "new-access", TokenType: "Bearer"}, nil)

	w := doJSON(r, http.MethodPost, "/auth/refresh", map[string]string{"refresh_token": "rt"})

	require.Equal(t, http.StatusOK, w.Code)
	var got identity.RefreshTokenResult
	decodeData(t, w, &got)
	assert.Equal(t, "new-access", got.AccessToken)

	w = doJSON(r, http.MethodPost, "/auth/refresh", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Me(t *testing.T) {
	userID := uuid.New()
	svc := new(MockAuthenticator)
	h := NewAuthHandler(svc)
	r := gin.New()
	r.GET("/auth/me", setJWTContext(userID), h.Me)
	r.GET("/anonymous/me", h.Me)
	svc.On("Me", mock.Anything, userID).Return(&identity.UserInfo{ID: userID, Username: "dr.tester"}, nil)

	w := doJSON(r, http.MethodGet, "/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got identity.UserInfo
	decodeData(t, w, &got)
	assert.Equal(t, userID, got.ID)

	w = doJSON(r, http.MethodGet, "/anonymous/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	userID := uuid.New()
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(10 * time.Minute)),
		},
		UserID:    userID.String(),
		Role:      auth.RoleClient,
		TokenType: auth.TokenTypeAccess,
	}

	svc := new(MockAuthenticator)
	h := NewAuthHandler(svc)
	r := gin.New()
	r.POST("/auth/logout", setJWTClaims(claims), h.Logout)
	svc.On("Logout", mock.Anything, mock.MatchedBy(func(in identity.LogoutInput) bool {
		return in.UserID == userID && in.TokenJTI == "jti-123" &&
			in.TTL > 9*time.Minute && in.TTL <= 10*time.Minute
	})).Return(nil)

	w := doJSON(r, http.MethodPost, "/auth/logout", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var msg dto.MessageData
	decodeData(t, w, &msg)
	assert.Equal(t, "Logged out successfully", msg.Message)
	svc.AssertExpectations(t)
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	userID := uuid.New()
	svc := new(MockAuthenticator)
	h := NewAuthHandler(svc)
	r := gin.New()
	r.PUT("/auth/password", setJWTContext(userID), h.ChangePassword)
	svc.On("ChangePassword", mock.Anything, identity.ChangePasswordInput{
		UserID: userID, OldPassword: "old-password", NewPassword: "new-password",
	}).Return(nil)

	w := doJSON(r, http.MethodPut, "/auth/password", map[string]string{
		"old_password": "old-password", "new_password": "new-password",
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(r, http.MethodPut, "/auth/password", map[string]string{
		"old_password": "old-password", "new_password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNumberOfCalls(t, "ChangePassword", 1)
}
