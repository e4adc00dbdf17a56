// AngelaMos | 2026
// dto.go

package auth

import (
	"time"
)

// TokenRequest carries the login identifier (email or CPF) and the
// password encoded as standard base64.
type TokenRequest struct {
	User           string `json:"user"            validate:"required,max=255"`
	PasswordBase64 string `json:"password_base64" validate:"required,base64"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type UserInfo struct {
	ID           string
	Name         string
	Email        string
	Role         Role
	PasswordHash string
}
