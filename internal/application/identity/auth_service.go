package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/dentalshop/backend/internal/domain/identity"
	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/dentalshop/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Error codes raised by the auth service
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidToken       = "INVALID_TOKEN"
)

var (
	errInvalidCredentials = shared.NewDomainError(CodeInvalidCredentials, "Invalid username or password")
	errInvalidRefresh     = shared.NewDomainError(CodeInvalidToken, "Invalid or expired refresh token")
	errUsernameTaken      = shared.NewDomainError(shared.ErrAlreadyExists.Code, "Username already taken")
	errEmailTaken         = shared.NewDomainError(shared.ErrAlreadyExists.Code, "Email already registered")
)

// AuthService handles registration, login and token lifecycle
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	eventBus   shared.EventPublisher
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service. blacklist and eventBus may be nil.
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// Register creates a client account. Username and email uniqueness are
// checked independently so a taken email conflicts whatever the username.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*UserInfo, error) {
	user, err := identity.NewUser(input.Username, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errEmailTaken
	}
	exists, err = s.userRepo.ExistsByUsername(ctx, user.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errUsernameTaken
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	events := user.GetDomainEvents()
	user.ClearDomainEvents()
	if s.eventBus != nil && len(events) > 0 {
		if err := s.eventBus.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish domain events", zap.Error(err))
		}
	}

	info := ToUserInfo(user)
	return &info, nil
}

// Login authenticates by username or email and returns a token pair
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	identifier := strings.TrimSpace(input.Identifier)
	s.logger.Info("Login attempt", zap.String("identifier", identifier))

	user, err := s.findByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("User not found during login", zap.String("identifier", identifier))
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, errInvalidCredentials
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.Internal("Failed to generate authentication tokens")
	}

	user.RecordLogin()
	if err := s.userRepo.Update(ctx, user); err != nil {
		// Don't fail the login - just log the error
		s.logger.Error("Failed to update user after successful login", zap.Error(err))
	}

	s.logger.Info("User logged in successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
		zap.String("ip", input.IP))

	return &LoginResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
		User:                  ToUserInfo(user),
	}, nil
}

func (s *AuthService) findByIdentifier(ctx context.Context, identifier string) (*identity.User, error) {
	if identifier == "" {
		return nil, shared.ErrNotFound
	}
	user, err := s.userRepo.FindByUsername(ctx, identifier)
	if err == nil || !errors.Is(err, shared.ErrNotFound) {
		return user, err
	}
	if !strings.Contains(identifier, "@") {
		return nil, err
	}
	return s.userRepo.FindByEmail(ctx, identifier)
}

// Refresh issues a new access token. The role is re-read from the store so
// a demotion applies from the next refresh on.
func (s *AuthService) Refresh(ctx context.Context, input RefreshTokenInput) (*RefreshTokenResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Debug("Refresh token rejected", zap.Error(err))
		return nil, errInvalidRefresh
	}
	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, errInvalidRefresh
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, errInvalidRefresh
		}
		return nil, err
	}

	token, err := s.jwtService.GenerateAccessToken(auth.GenerateTokenInput{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	})
	if err != nil {
		s.logger.Error("Failed to generate access token", zap.Error(err))
		return nil, shared.Internal("Failed to generate authentication tokens")
	}

	return &RefreshTokenResult{
		AccessToken:          token.Token,
		AccessTokenExpiresAt: token.ExpiresAt,
		TokenType:            "Bearer",
	}, nil
}

// Me returns the account behind an access token
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("User not found")
		}
		return nil, err
	}
	info := ToUserInfo(user)
	return &info, nil
}

// Logout revokes the presented access token until it would have expired
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if s.blacklist == nil || input.TokenJTI == "" {
		return nil
	}
	if err := s.blacklist.Revoke(ctx, input.TokenJTI, input.TTL); err != nil {
		s.logger.Error("Failed to revoke token", zap.Error(err))
		return err
	}
	s.logger.Info("User logged out", zap.String("user_id", input.UserID.String()))
	return nil
}

// ChangePassword replaces the password after checking the current one
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if !user.VerifyPassword(input.OldPassword) {
		return shared.NewDomainError(CodeInvalidCredentials, "Current password is incorrect")
	}
	if err := user.SetPassword(input.NewPassword); err != nil {
		return err
	}
	return s.userRepo.Update(ctx, user)
}
