// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/carterperez-dev/templates/users-service/internal/core"
)

const identityKey contextKey = "identity"

type TokenVerifier interface {
	VerifyAccessToken(
		ctx context.Context,
		token string,
	) (*AccessTokenClaims, error)
}

// AccessTokenClaims is the caller identity carried by a verified token.
type AccessTokenClaims struct {
	UserID string
	Role   string
}

func Authenticator(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				core.JSONError(
					w,
					core.UnauthorizedError("missing authorization token"),
				)
				return
			}

			claims, err := verifier.VerifyAccessToken(r.Context(), token)
			switch {
			case errors.Is(err, core.ErrTokenExpired):
				core.JSONError(w, core.TokenExpiredError())
				return
			case err != nil:
				core.JSONError(w, core.TokenInvalidError())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// WithClaims stores verified token claims on ctx.
func WithClaims(ctx context.Context, claims *AccessTokenClaims) context.Context {
	return context.WithValue(ctx, identityKey, *claims)
}

// RequireAdmin must run behind Authenticator.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch GetUserRole(r.Context()) {
		case "admin":
			next.ServeHTTP(w, r)
		case "":
			core.JSONError(w, core.UnauthorizedError("authentication required"))
		default:
			core.JSONError(w, core.ForbiddenError("insufficient permissions"))
		}
	})
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func identity(ctx context.Context) AccessTokenClaims {
	claims, _ := ctx.Value(identityKey).(AccessTokenClaims)
	return claims
}

func GetUserID(ctx context.Context) string {
	return identity(ctx).UserID
}

func GetUserRole(ctx context.Context) string {
	return identity(ctx).Role
}
