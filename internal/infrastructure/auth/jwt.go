package auth

import (
	"errors"
	"time"

	"github.com/dentalshop/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingUserID    = errors.New("missing user_id in claims")
	ErrTokenBlacklisted = errors.New("token has been revoked")
)

// TokenPair is what login hands back to the storefront
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// AccessToken is a freshly signed access token and its expiry
type AccessToken struct {
	Token     string
	ExpiresAt time.Time
}

// GenerateTokenInput identifies the user a token is minted for
type GenerateTokenInput struct {
	UserID   uuid.UUID
	Username string
	Role     string
}

// keyRing signs and checks one kind of token
type keyRing struct {
	typ    TokenType
	secret []byte
	ttl    time.Duration
}

// JWTService issues and validates HS256 tokens. Access and refresh tokens
// use separate secrets unless no refresh secret is configured.
type JWTService struct {
	access  keyRing
	refresh keyRing
	issuer  string
	now     func() time.Time
}

func NewJWTService(cfg config.JWTConfig) *JWTService {
	refreshSecret := cfg.RefreshSecret
	if refreshSecret == "" {
		refreshSecret = cfg.Secret
	}
	return &JWTService{
		access:  keyRing{typ: TokenTypeAccess, secret: []byte(cfg.Secret), ttl: cfg.AccessTokenExpiration},
		refresh: keyRing{typ: TokenTypeRefresh, secret: []byte(refreshSecret), ttl: cfg.RefreshTokenExpiration},
		issuer:  cfg.Issuer,
		now:     time.Now,
	}
}

// GenerateTokenPair signs the access and refresh tokens returned by login
func (s *JWTService) GenerateTokenPair(in GenerateTokenInput) (*TokenPair, error) {
	access, err := s.GenerateAccessToken(in)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.sign(s.refresh, &Claims{UserID: in.UserID.String()}, in.UserID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:           access.Token,
		RefreshToken:          refresh,
		AccessTokenExpiresAt:  access.ExpiresAt,
		RefreshTokenExpiresAt: refreshExp,
		TokenType:             "Bearer",
	}, nil
}

// GenerateAccessToken signs an access token carrying the current role
func (s *JWTService) GenerateAccessToken(in GenerateTokenInput) (*AccessToken, error) {
	token, exp, err := s.sign(s.access, &Claims{
		UserID:   in.UserID.String(),
		Username: in.Username,
		Role:     in.Role,
	}, in.UserID)
	if err != nil {
		return nil, err
	}
	return &AccessToken{Token: token, ExpiresAt: exp}, nil
}

func (s *JWTService) sign(k keyRing, claims *Claims, userID uuid.UUID) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(k.ttl)
	claims.TokenType = k.typ
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    s.issuer,
		Subject:   userID.String(),
		Audience:  jwt.ClaimStrings{s.issuer},
		ExpiresAt: jwt.NewNumericDate(exp),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(k.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (s *JWTService) ValidateAccessToken(token string) (*Claims, error) {
	return s.parse(s.access, token)
}

func (s *JWTService) ValidateRefreshToken(token string) (*Claims, error) {
	return s.parse(s.refresh, token)
}

func (s *JWTService) parse(k keyRing, token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return k.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return nil, ErrTokenNotYetValid
	case err != nil:
		return nil, ErrInvalidToken
	}

	if claims.TokenType != k.typ {
		return nil, ErrInvalidTokenType
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}
	return claims, nil
}
