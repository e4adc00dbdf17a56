// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carterperez-dev/templates/users-service/internal/core"
)

// Repository is the user record store. Lookups used for login and
// uniqueness only ever see available users; GetByID sees everyone.
type Repository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	SoftDelete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*User, error)
	FindActiveByNationalID(ctx context.Context, nationalID string) (*User, error)
	FindActiveByEmail(ctx context.Context, email string) (*User, error)
	ExistsActiveByEmailOrNationalID(
		ctx context.Context,
		email, nationalID string,
	) (bool, error)
	CountByAvailability(ctx context.Context) (Counts, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
}

const userColumns = `id, name, email, national_id, role, password_hash,
		       is_available, created_at, last_updated_at`

type repository struct {
	db  core.DBTX
	obs core.DBObserver
}

func NewRepository(db core.DBTX, obs core.DBObserver) Repository {
	if obs == nil {
		obs = core.NoopObserver
	}
	return &repository{db: db, obs: obs}
}

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, name, email, national_id, role, password_hash, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING is_available, created_at, last_updated_at`

	user.NationalID = NormalizeNationalID(user.NationalID)

	err := r.obs.ObserveDB("users.create", func() error {
		return r.db.GetContext(ctx, user, query,
			user.ID,
			user.Name,
			user.Email,
			user.NationalID,
			user.Role,
			user.PasswordHash,
		)
	})
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// Update overwrites every mutable field of an available user. A missing or
// unavailable target is left untouched and reported as success.
func (r *repository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET name = $2, email = $3, national_id = $4, role = $5,
		    password_hash = $6, last_updated_at = NOW()
		WHERE id = $1 AND is_available
		RETURNING last_updated_at`

	user.NationalID = NormalizeNationalID(user.NationalID)

	err := r.obs.ObserveDB("users.update", func() error {
		return r.db.GetContext(ctx, &user.LastUpdatedAt, query,
			user.ID,
			user.Name,
			user.Email,
			user.NationalID,
			user.Role,
			user.PasswordHash,
		)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("update user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("update user: %w", err)
	}

	return nil
}

// SoftDelete marks the user unavailable. Deleting an already deleted user
// only refreshes last_updated_at; an unknown id is a no-op.
func (r *repository) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET is_available = FALSE, last_updated_at = NOW()
		WHERE id = $1`

	err := r.obs.ObserveDB("users.soft_delete", func() error {
		_, err := r.db.ExecContext(ctx, query, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE id = $1`

	var user User
	err := r.obs.ObserveDB("users.get_by_id", func() error {
		return r.db.GetContext(ctx, &user, query, id)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) FindActiveByNationalID(
	ctx context.Context,
	nationalID string,
) (*User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE national_id = $1 AND is_available`

	var user User
	err := r.obs.ObserveDB("users.find_by_national_id", func() error {
		return r.db.GetContext(ctx, &user, query, NormalizeNationalID(nationalID))
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find user by national id: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find user by national id: %w", err)
	}

	return &user, nil
}

func (r *repository) FindActiveByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE LOWER(email) = LOWER($1) AND is_available`

	var user User
	err := r.obs.ObserveDB("users.find_by_email", func() error {
		return r.db.GetContext(ctx, &user, query, email)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find user by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	return &user, nil
}

func (r *repository) ExistsActiveByEmailOrNationalID(
	ctx context.Context,
	email, nationalID string,
) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM users
			WHERE is_available
			  AND (LOWER(email) = LOWER($1) OR national_id = $2)
		)`

	var exists bool
	err := r.obs.ObserveDB("users.exists", func() error {
		return r.db.GetContext(ctx, &exists, query,
			email,
			NormalizeNationalID(nationalID),
		)
	})
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}

	return exists, nil
}

func (r *repository) CountByAvailability(ctx context.Context) (Counts, error) {
	query := `
		SELECT COUNT(*) FILTER (WHERE is_available)     AS active,
		       COUNT(*) FILTER (WHERE NOT is_available) AS inactive
		FROM users`

	var counts Counts
	err := r.obs.ObserveDB("users.count", func() error {
		return r.db.GetContext(ctx, &counts, query)
	})
	if err != nil {
		return Counts{}, fmt.Errorf("count users: %w", err)
	}

	return counts, nil
}

func (r *repository) UpdatePasswordHash(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2, last_updated_at = NOW()
		WHERE id = $1 AND is_available`

	err := r.obs.ObserveDB("users.update_password", func() error {
		_, err := r.db.ExecContext(ctx, query, id, passwordHash)
		return err
	})
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
