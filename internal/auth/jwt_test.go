// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"context"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/users-service/internal/config"
	"github.com/carterperez-dev/templates/users-service/internal/core"
)

const testSecret = "test-secret-key-with-at-least-32-bytes!!"

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            testSecret,
		Issuer:            "users-service",
		Audience:          "users-service-api",
		AccessTokenExpire: time.Hour,
		ClockSkew:         5 * time.Minute,
	}
}

func newTestManager(t *testing.T) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(testJWTConfig())
	require.NoError(t, err)
	return m
}

func TestNewJWTManager_EmptySecretIsConfigurationError(t *testing.T) {
	cfg := testJWTConfig()
	cfg.Secret = "   "

	_, err := NewJWTManager(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := newTestManager(t)

	token, expiresAt, err := m.CreateAccessToken(AccessTokenClaims{
		UserID: "5f0c7c2e-3c1e-4b5a-9d8e-1f2a3b4c5d6e",
		Role:   RoleEmployee,
	})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.VerifyAccessToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "5f0c7c2e-3c1e-4b5a-9d8e-1f2a3b4c5d6e", claims.UserID)
	assert.Equal(t, "employee", claims.Role)
}

func TestJWTManager_TokenIsStandardHS256(t *testing.T) {
	m := newTestManager(t)

	token, _, err := m.CreateAccessToken(AccessTokenClaims{
		UserID: "user-1",
		Role:   RoleAdmin,
	})
	require.NoError(t, err)

	parsed, err := gojwt.Parse(token,
		func(tok *gojwt.Token) (any, error) {
			return []byte(testSecret), nil
		},
		gojwt.WithValidMethods([]string{"HS256"}),
		gojwt.WithIssuer("users-service"),
		gojwt.WithAudience("users-service-api"),
		gojwt.WithIssuedAt(),
	)
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(gojwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "user-1", claims["sub"])
	assert.Equal(t, "admin", claims["role"])
	assert.NotEmpty(t, claims["jti"])
	assert.Contains(t, claims, "iat")
	assert.Contains(t, claims, "exp")
}

func TestJWTManager_RejectsForeignTokens(t *testing.T) {
	m := newTestManager(t)

	sign := func(secret string, claims gojwt.MapClaims) string {
		tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).
			SignedString([]byte(secret))
		require.NoError(t, err)
		return tok
	}

	valid := func() gojwt.MapClaims {
		return gojwt.MapClaims{
			"sub":  "user-1",
			"role": "client",
			"iss":  "users-service",
			"aud":  "users-service-api",
			"iat":  time.Now().Unix(),
			"exp":  time.Now().Add(time.Hour).Unix(),
		}
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "wrong secret", token: sign("another-secret-another-secret-123", valid())},
		{name: "wrong audience", token: func() string {
			c := valid()
			c["aud"] = "someone-else"
			return sign(testSecret, c)
		}()},
		{name: "wrong issuer", token: func() string {
			c := valid()
			c["iss"] = "evil"
			return sign(testSecret, c)
		}()},
		{name: "unknown role", token: func() string {
			c := valid()
			c["role"] = "superuser"
			return sign(testSecret, c)
		}()},
		{name: "missing subject", token: func() string {
			c := valid()
			delete(c, "sub")
			return sign(testSecret, c)
		}()},
		{name: "garbage", token: "not.a.jwt"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.VerifyAccessToken(context.Background(), tc.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrTokenInvalid)
			assert.NotErrorIs(t, err, core.ErrTokenExpired)
		})
	}

	claims, err := m.VerifyAccessToken(context.Background(), sign(testSecret, valid()))
	require.NoError(t, err)
	assert.Equal(t, "client", claims.Role)
}

func TestJWTManager_ClockSkew(t *testing.T) {
	m := newTestManager(t)
	issuedAt := time.Now().Add(-time.Hour - 2*time.Minute)
	m.now = func() time.Time { return issuedAt }

	token, _, err := m.CreateAccessToken(AccessTokenClaims{UserID: "u", Role: RoleClient})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.VerifyAccessToken(context.Background(), token)
	require.NoError(t, err, "two minutes past expiry is inside the skew")

	m.now = func() time.Time { return issuedAt.Add(time.Hour + 10*time.Minute) }
	_, err = m.VerifyAccessToken(context.Background(), token)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
	assert.NotErrorIs(t, err, core.ErrTokenInvalid)
}
