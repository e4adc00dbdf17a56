// AngelaMos | 2026
// login_flow_test.go

package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/users-service/internal/auth"
	"github.com/carterperez-dev/templates/users-service/internal/config"
	"github.com/carterperez-dev/templates/users-service/internal/user"
)

func newAuthService(t *testing.T, users auth.UserProvider) (*auth.Service, *auth.JWTManager) {
	t.Helper()

	jwtManager, err := auth.NewJWTManager(config.JWTConfig{
		Secret:            "login-flow-secret-that-is-long-enough",
		Issuer:            "users-service",
		Audience:          "users-service-api",
		AccessTokenExpire: 30 * time.Minute,
		ClockSkew:         time.Minute,
	})
	require.NoError(t, err)

	return auth.NewService(jwtManager, users, nil), jwtManager
}

func TestLoginFlow(t *testing.T) {
	ctx := context.Background()
	users, _ := newService()
	authSvc, jwtManager := newAuthService(t, users)

	maria, err := users.CreateClient(ctx, clientRequest("Maria@Example.com", "829.091.170-06"))
	require.NoError(t, err)

	for _, identifier := range []string{
		"maria@example.com",
		"  MARIA@EXAMPLE.COM ",
		"829.091.170-06",
		"82909117006",
	} {
		t.Run(identifier, func(t *testing.T) {
			tokens, err := authSvc.GenerateTokens(ctx, identifier, "secret")
			require.NoError(t, err)

			claims, err := jwtManager.VerifyAccessToken(ctx, tokens.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, maria.ID, claims.UserID)
			assert.Equal(t, "client", claims.Role)
		})
	}

	_, err = authSvc.GenerateTokens(ctx, "maria@example.com", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	require.NoError(t, users.DeleteUser(ctx, user.Actor{ID: maria.ID, Role: auth.RoleClient}, maria.ID))

	_, err = authSvc.GenerateTokens(ctx, "maria@example.com", "secret")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials, "soft-deleted users cannot log in")
	_, err = authSvc.GenerateTokens(ctx, "82909117006", "secret")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLoginFlow_SeededAdmin(t *testing.T) {
	ctx := context.Background()
	users, _ := newService()
	authSvc, jwtManager := newAuthService(t, users)

	_, err := users.EnsureAdmin(ctx, config.AdminConfig{
		Name:       "Administrator",
		Email:      "admin@admin.com",
		NationalID: "00000000000",
		Password:   "admin123",
	})
	require.NoError(t, err)

	tokens, err := authSvc.GenerateTokens(ctx, "admin@admin.com", "admin123")
	require.NoError(t, err)

	claims, err := jwtManager.VerifyAccessToken(ctx, tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
}
