// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/users-service/internal/auth"
	"github.com/carterperez-dev/templates/users-service/internal/config"
	"github.com/carterperez-dev/templates/users-service/internal/core"
)

// ErrUserExists means an available user already holds the email or the
// national id.
var ErrUserExists = fmt.Errorf("user already exists: %w", core.ErrConflict)

// Actor is the authenticated caller of a user operation.
type Actor struct {
	ID   string
	Role auth.Role
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateClient(
	ctx context.Context,
	req CreateClientRequest,
) (*User, error) {
	return s.create(ctx, req.Name, req.Email, req.NationalID, req.Password, auth.RoleClient)
}

func (s *Service) CreateEmployee(
	ctx context.Context,
	req CreateEmployeeRequest,
) (*User, error) {
	role, err := auth.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}
	if role == auth.RoleClient {
		return nil, fmt.Errorf("create employee: role %q: %w", role, core.ErrInvalidInput)
	}

	return s.create(ctx, req.Name, req.Email, req.NationalID, req.Password, role)
}

func (s *Service) create(
	ctx context.Context,
	name, email, nationalID, password string,
	role auth.Role,
) (*User, error) {
	email = strings.TrimSpace(email)
	nationalID = NormalizeNationalID(nationalID)

	exists, err := s.repo.ExistsActiveByEmailOrNationalID(ctx, email, nationalID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	passwordHash, err := core.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		NationalID:   nationalID,
		Role:         role,
		PasswordHash: passwordHash,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	return user, nil
}

// UpdateUser overwrites the target's profile and password. Callers may
// update themselves; only admins may update others or change a role.
// A missing or unavailable target is silently ignored.
func (s *Service) UpdateUser(
	ctx context.Context,
	actor Actor,
	id string,
	req UpdateUserRequest,
) error {
	role, err := auth.ParseRole(req.Role)
	if err != nil {
		return err
	}

	if actor.ID != id && !actor.Role.CanManageUsers() {
		return fmt.Errorf("update user: %w", core.ErrForbidden)
	}

	if !actor.Role.CanManageUsers() {
		current, err := s.repo.GetByID(ctx, id)
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if current.Role != role {
			return fmt.Errorf("update user: role change: %w", core.ErrForbidden)
		}
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		ID:           id,
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		NationalID:   req.NationalID,
		Role:         role,
		PasswordHash: passwordHash,
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return ErrUserExists
		}
		return err
	}

	return nil
}

// DeleteUser soft deletes the target. Users may delete themselves; admins
// may delete anyone but another admin.
func (s *Service) DeleteUser(ctx context.Context, actor Actor, id string) error {
	if actor.ID != id {
		if !actor.Role.CanManageUsers() {
			return fmt.Errorf("delete user: %w", core.ErrForbidden)
		}

		target, err := s.repo.GetByID(ctx, id)
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if target.IsAdmin() {
			return fmt.Errorf("cannot delete admin users: %w", core.ErrForbidden)
		}
	}

	return s.repo.SoftDelete(ctx, id)
}

// GetUser returns the record whether or not it is still available.
func (s *Service) GetUser(ctx context.Context, actor Actor, id string) (*User, error) {
	if actor.ID != id && !actor.Role.CanReadUsers() {
		return nil, fmt.Errorf("get user: %w", core.ErrForbidden)
	}

	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetMe(ctx context.Context, actor Actor) (*User, error) {
	if actor.ID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, actor.ID)
}

func (s *Service) UserCounts(ctx context.Context) (Counts, error) {
	return s.repo.CountByAvailability(ctx)
}

// EnsureAdmin creates the configured administrator unless one with the
// same email or national id is already available. It reports whether a
// user was created.
func (s *Service) EnsureAdmin(
	ctx context.Context,
	cfg config.AdminConfig,
) (bool, error) {
	if cfg.Email == "" || cfg.Password == "" {
		return false, nil
	}

	req := CreateEmployeeRequest{
		Name:       strings.TrimSpace(cfg.Name),
		Email:      strings.TrimSpace(cfg.Email),
		NationalID: strings.TrimSpace(cfg.NationalID),
		Password:   cfg.Password,
		Role:       auth.RoleAdmin.String(),
	}
	if err := validateSeed(req); err != nil {
		return false, err
	}

	_, err := s.create(ctx, req.Name, req.Email, req.NationalID, req.Password, auth.RoleAdmin)
	if errors.Is(err, ErrUserExists) {
		slog.DebugContext(ctx, "admin seed skipped, user exists", "email", cfg.Email)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}

	slog.InfoContext(ctx, "admin user seeded", "email", cfg.Email)
	return true, nil
}

// validateSeed applies the employee creation rules to the configured admin.
func validateSeed(req CreateEmployeeRequest) error {
	v := core.NewValidator()
	if err := RegisterValidations(v); err != nil {
		return err
	}

	if err := v.Struct(req); err != nil {
		fields := core.FormatValidationError(err)
		names := make([]string, 0, len(fields))
		for _, f := range fields {
			names = append(names, f.Field)
		}
		return fmt.Errorf("seed admin: invalid %s: %w",
			strings.Join(names, ", "),
			core.ErrConfiguration,
		)
	}

	return nil
}

func (s *Service) FindActiveByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.FindActiveByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}

func (s *Service) FindActiveByNationalID(
	ctx context.Context,
	nationalID string,
) (*auth.UserInfo, error) {
	user, err := s.repo.FindActiveByNationalID(ctx, nationalID)
	if err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}

func (s *Service) UpdatePasswordHash(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePasswordHash(ctx, userID, passwordHash)
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		PasswordHash: u.PasswordHash,
	}
}

var _ auth.UserProvider = (*Service)(nil)
