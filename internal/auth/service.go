// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/users-service/internal/core"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// UserProvider is the slice of the user store that login needs. Both
// lookups must ignore unavailable users.
type UserProvider interface {
	FindActiveByEmail(ctx context.Context, email string) (*UserInfo, error)
	FindActiveByNationalID(ctx context.Context, nationalID string) (*UserInfo, error)
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error
}

type Metrics interface {
	TokenIssued(role string)
	CredentialsRejected()
}

type noopMetrics struct{}

func (noopMetrics) TokenIssued(string)  {}
func (noopMetrics) CredentialsRejected() {}

type Service struct {
	jwt     *JWTManager
	users   UserProvider
	metrics Metrics
}

func NewService(jwt *JWTManager, users UserProvider, metrics Metrics) *Service {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Service{
		jwt:     jwt,
		users:   users,
		metrics: metrics,
	}
}

// VerifyCredentials resolves identifier to an available user and checks
// password against the stored hash. An unknown identifier and a wrong
// password both yield ErrInvalidCredentials after the same amount of work.
func (s *Service) VerifyCredentials(
	ctx context.Context,
	identifier, password string,
) (*UserInfo, error) {
	ctx, span := core.StartSpan(ctx, "auth.VerifyCredentials")
	defer span.End()

	kind, id := classifyIdentifier(identifier)

	var (
		user *UserInfo
		err  error
	)
	switch kind {
	case identifierNationalID:
		span.SetAttributes(attribute.String("auth.identifier_kind", "national_id"))
		user, err = s.users.FindActiveByNationalID(ctx, id)
	default:
		span.SetAttributes(attribute.String("auth.identifier_kind", "email"))
		user, err = s.users.FindActiveByEmail(ctx, id)
	}

	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(password, nil)
			s.reject(ctx)
			return nil, ErrInvalidCredentials
		}
		core.SetSpanError(ctx, err)
		return nil, fmt.Errorf("find user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		password,
		&user.PasswordHash,
	)
	if err != nil {
		//nolint:errcheck // keep the cost of a corrupt hash equal to a real check
		_, _, _ = core.VerifyPasswordTimingSafe(password, nil)
		core.SetSpanError(ctx, err)
		slog.ErrorContext(ctx, "stored password hash unusable",
			"user_id", user.ID,
			"error", err,
		)
		s.reject(ctx)
		return nil, ErrInvalidCredentials
	}

	if !valid {
		s.reject(ctx)
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		if err := s.users.UpdatePasswordHash(ctx, user.ID, newHash); err != nil {
			slog.WarnContext(ctx, "password rehash failed",
				"user_id", user.ID,
				"error", err,
			)
		} else {
			user.PasswordHash = newHash
			core.AddSpanEvent(ctx, "password.rehashed")
		}
	}

	return user, nil
}

// GenerateTokens verifies the credentials and issues a signed access token
// carrying the user's id and role.
func (s *Service) GenerateTokens(
	ctx context.Context,
	identifier, password string,
) (*TokenResponse, error) {
	ctx, span := core.StartSpan(ctx, "auth.GenerateTokens")
	defer span.End()

	user, err := s.VerifyCredentials(ctx, identifier, password)
	if err != nil {
		return nil, err
	}

	accessToken, expiresAt, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, fmt.Errorf("create access token: %w", err)
	}

	s.metrics.TokenIssued(user.Role.String())
	slog.InfoContext(ctx, "access token issued",
		"user_id", user.ID,
		"role", user.Role,
	)

	return &TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.jwt.AccessTokenTTL().Seconds()),
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *Service) reject(ctx context.Context) {
	s.metrics.CredentialsRejected()
	core.AddSpanEvent(ctx, "credentials.rejected")
	slog.InfoContext(ctx, "credentials rejected")
}
