// AngelaMos | 2026
// entity.go

package user

import (
	"strings"
	"time"

	"github.com/carterperez-dev/templates/users-service/internal/auth"
)

type User struct {
	ID            string    `db:"id"`
	Name          string    `db:"name"`
	Email         string    `db:"email"`
	NationalID    string    `db:"national_id"`
	Role          auth.Role `db:"role"`
	PasswordHash  string    `db:"password_hash"`
	IsAvailable   bool      `db:"is_available"`
	CreatedAt     time.Time `db:"created_at"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == auth.RoleAdmin
}

// NormalizeNationalID strips every non-digit, so "829.091.170-06" and
// "82909117006" name the same person.
func NormalizeNationalID(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range s {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}
