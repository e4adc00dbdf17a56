// AngelaMos | 2026
// dto.go

package user

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/users-service/internal/auth"
	"github.com/carterperez-dev/templates/users-service/internal/core"
)

type CreateClientRequest struct {
	Name       string `json:"name"        validate:"required,min=1,max=100"`
	Email      string `json:"email"       validate:"required,email,max=255"`
	NationalID string `json:"national_id" validate:"required,nationalid"`
	Password   string `json:"password"    validate:"required,min=6,max=128"`
}

type CreateEmployeeRequest struct {
	Name       string `json:"name"        validate:"required,min=1,max=100"`
	Email      string `json:"email"       validate:"required,email,max=255"`
	NationalID string `json:"national_id" validate:"required,nationalid"`
	Password   string `json:"password"    validate:"required,min=6,max=128"`
	Role       string `json:"role"        validate:"required,oneof=employee admin"`
}

type UpdateUserRequest struct {
	Name       string `json:"name"        validate:"required,min=1,max=100"`
	Email      string `json:"email"       validate:"required,email,max=255"`
	NationalID string `json:"national_id" validate:"required,nationalid"`
	Role       string `json:"role"        validate:"required,oneof=client employee admin"`
	Password   string `json:"password"    validate:"required,min=6,max=128"`
}

type UserResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	NationalID    string    `json:"national_id"`
	Role          auth.Role `json:"role"`
	IsAvailable   bool      `json:"is_available"`
	CreatedAt     time.Time `json:"created_at"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
}

type Counts struct {
	Active   int `json:"active"   db:"active"`
	Inactive int `json:"inactive" db:"inactive"`
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		NationalID:    u.NationalID,
		Role:          u.Role,
		IsAvailable:   u.IsAvailable,
		CreatedAt:     u.CreatedAt,
		LastUpdatedAt: u.LastUpdatedAt,
	}
}

// RegisterValidations adds the "nationalid" tag: a CPF in either the
// punctuated or the bare form, checked for shape only.
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation("nationalid", func(fl validator.FieldLevel) bool {
		return auth.IsNationalID(strings.TrimSpace(fl.Field().String()))
	})
}

// parseUserID accepts any casing of a UUID and returns the lower-case
// hyphenated form the store uses.
func parseUserID(raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("user id %q: %w", raw, core.ErrInvalidInput)
	}
	return id.String(), nil
}
