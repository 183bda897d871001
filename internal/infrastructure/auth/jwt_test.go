package auth

import (
	"testing"
	"time"

	"github.com/dentalshop/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	accessSecret  = "access-secret-0123456789abcdefgh"
	refreshSecret = "refresh-secret-0123456789abcdefg"
)

func jwtConfig(mutate ...func(*config.JWTConfig)) config.JWTConfig {
	cfg := config.JWTConfig{
		Secret:                 accessSecret,
		RefreshSecret:          refreshSecret,
		Issuer:                 "dentalshop-test",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	return cfg
}

func adminInput() GenerateTokenInput {
	return GenerateTokenInput{UserID: uuid.New(), Username: "dr.amrani", Role: RoleAdmin}
}

func TestNewJWTService_RefreshSecretFallsBackToSecret(t *testing.T) {
	svc := NewJWTService(jwtConfig(func(c *config.JWTConfig) { c.RefreshSecret = "" }))

	assert.Equal(t, []byte(accessSecret), svc.refresh.secret)
	assert.Equal(t, TokenTypeRefresh, svc.refresh.typ)
}

func TestJWTService_LoginPair(t *testing.T) {
	svc := NewJWTService(jwtConfig())
	in := adminInput()

	pair, err := svc.GenerateTokenPair(in)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))

	access, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, in.UserID.String(), access.UserID)
	assert.Equal(t, in.UserID.String(), access.Subject)
	assert.Equal(t, "dr.amrani", access.Username)
	assert.True(t, access.IsAdmin())
	assert.Equal(t, TokenTypeAccess, access.TokenType)
	assert.Equal(t, "dentalshop-test", access.Issuer)
	assert.NotEmpty(t, access.ID)

	refresh, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, in.UserID.String(), refresh.UserID)
	assert.Empty(t, refresh.Role, "refresh tokens carry no role")
	assert.NotEqual(t, access.ID, refresh.ID)
}

func TestJWTService_GenerateAccessTokenCarriesRole(t *testing.T) {
	svc := NewJWTService(jwtConfig())
	in := adminInput()
	in.Role = RoleClient

	token, err := svc.GenerateAccessToken(in)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token.Token)
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin())
	assert.WithinDuration(t, token.ExpiresAt, claims.ExpiresAt.Time, time.Second)
}

func TestJWTService_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		issuer   config.JWTConfig
		verifier config.JWTConfig
		token    func(*TokenPair) string
		validate func(*JWTService, string) (*Claims, error)
		want     error
	}{
		{
			name:     "expired access token",
			issuer:   jwtConfig(func(c *config.JWTConfig) { c.AccessTokenExpiration = -time.Hour }),
			verifier: jwtConfig(),
			token:    func(p *TokenPair) string { return p.AccessToken },
			validate: (*JWTService).ValidateAccessToken,
			want:     ErrExpiredToken,
		},
		{
			name:     "access token signed by another shop",
			issuer:   jwtConfig(),
			verifier: jwtConfig(func(c *config.JWTConfig) { c.Secret = "another-secret-0123456789abcdefg" }),
			token:    func(p *TokenPair) string { return p.AccessToken },
			validate: (*JWTService).ValidateAccessToken,
			want:     ErrInvalidToken,
		},
		{
			name:     "access token used as refresh token",
			issuer:   jwtConfig(),
			verifier: jwtConfig(),
			token:    func(p *TokenPair) string { return p.AccessToken },
			validate: (*JWTService).ValidateRefreshToken,
			want:     ErrInvalidToken,
		},
		{
			name:     "refresh token used as access token with a shared secret",
			issuer:   jwtConfig(func(c *config.JWTConfig) { c.RefreshSecret = c.Secret }),
			verifier: jwtConfig(func(c *config.JWTConfig) { c.RefreshSecret = c.Secret }),
			token:    func(p *TokenPair) string { return p.RefreshToken },
			validate: (*JWTService).ValidateAccessToken,
			want:     ErrInvalidTokenType,
		},
		{
			name:     "access token used as refresh token with a shared secret",
			issuer:   jwtConfig(func(c *config.JWTConfig) { c.RefreshSecret = c.Secret }),
			verifier: jwtConfig(func(c *config.JWTConfig) { c.RefreshSecret = c.Secret }),
			token:    func(p *TokenPair) string { return p.AccessToken },
			validate: (*JWTService).ValidateRefreshToken,
			want:     ErrInvalidTokenType,
		},
		{
			name:     "garbage",
			issuer:   jwtConfig(),
			verifier: jwtConfig(),
			token:    func(*TokenPair) string { return "invalid-token" },
			validate: (*JWTService).ValidateAccessToken,
			want:     ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, err := NewJWTService(tt.issuer).GenerateTokenPair(adminInput())
			require.NoError(t, err)

			_, err = tt.validate(NewJWTService(tt.verifier), tt.token(pair))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestJWTService_RejectsUnsignedTokens(t *testing.T) {
	claims := &Claims{UserID: uuid.NewString(), TokenType: TokenTypeAccess}
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTService(jwtConfig()).ValidateAccessToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_NotYetValid(t *testing.T) {
	svc := NewJWTService(jwtConfig())
	svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	pair, err := svc.GenerateTokenPair(adminInput())
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenNotYetValid)
}

func TestClaims(t *testing.T) {
	svc := NewJWTService(jwtConfig())
	pair, err := svc.GenerateTokenPair(adminInput())
	require.NoError(t, err)
	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	t.Run("remaining ttl", func(t *testing.T) {
		ttl := claims.RemainingTTL()
		assert.Greater(t, ttl, 14*time.Minute)
		assert.LessOrEqual(t, ttl, 15*time.Minute)
		assert.Zero(t, (&Claims{}).RemainingTTL())
	})

	t.Run("user uuid", func(t *testing.T) {
		id, err := claims.GetUserUUID()
		require.NoError(t, err)
		assert.Equal(t, claims.UserID, id.String())

		_, err = (&Claims{UserID: "not-a-uuid"}).GetUserUUID()
		assert.Error(t, err)
	})
}
