// AngelaMos | 2026
// handler_test.go

package auth_test

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/users-service/internal/auth"
	"github.com/carterperez-dev/templates/users-service/internal/core"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			Fields []core.FieldError `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

func postTokens(t *testing.T, users *mockUsers, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	svc, _, _ := newService(t, users)
	r := chi.NewRouter()
	auth.NewHandler(svc).RegisterRoutes(r, nil)

	req := httptest.NewRequest(http.MethodPost, "/tokens", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestGenerateTokensHandler_Success(t *testing.T) {
	hash, err := core.HashPassword("admin123")
	require.NoError(t, err)

	users := &mockUsers{}
	users.On("FindActiveByEmail", mock.Anything, "admin@admin.com").
		Return(&auth.UserInfo{ID: "admin-1", Role: auth.RoleAdmin, PasswordHash: hash}, nil)

	rec, env := postTokens(t, users,
		`{"user":"admin@admin.com","password_base64":"`+b64("admin123")+`"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	var tokens auth.TokenResponse
	require.NoError(t, json.Unmarshal(env.Data, &tokens))
	assert.NotEmpty(t, tokens.AccessToken)
	assert.Equal(t, "Bearer", tokens.TokenType)
}

func TestGenerateTokensHandler_ValidationRunsBeforeLookup(t *testing.T) {
	users := &mockUsers{}

	rec, env := postTokens(t, users, `{"user":"","password_base64":"%%%not-base64"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	rules := map[string]string{}
	for _, f := range env.Error.Details.Fields {
		rules[f.Field] = f.Rule
	}
	assert.Equal(t, "required", rules["user"])
	assert.Equal(t, "base64", rules["password_base64"])

	users.AssertNotCalled(t, "FindActiveByEmail", mock.Anything, mock.Anything)
	users.AssertNotCalled(t, "FindActiveByNationalID", mock.Anything, mock.Anything)
}

func TestGenerateTokensHandler_InvalidCredentials(t *testing.T) {
	users := &mockUsers{}
	users.On("FindActiveByNationalID", mock.Anything, "111.222.333-44").Return(nil, notFound())

	rec, env := postTokens(t, users,
		`{"user":"111.222.333-44","password_base64":"`+b64("whatever")+`"}`)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)
	assert.Empty(t, rec.Header().Get("Authorization"))
}

func TestGenerateTokensHandler_MalformedBody(t *testing.T) {
	rec, env := postTokens(t, &mockUsers{}, `{"user":`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)
}

func TestGenerateTokensHandler_CorruptHashAnswersLikeWrongPassword(t *testing.T) {
	users := &mockUsers{}
	users.On("FindActiveByEmail", mock.Anything, "broken@example.com").
		Return(&auth.UserInfo{ID: "u-9", Role: auth.RoleClient, PasswordHash: "not-a-hash"}, nil)

	rec, env := postTokens(t, users,
		`{"user":"broken@example.com","password_base64":"`+b64("secret")+`"}`)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)
}
