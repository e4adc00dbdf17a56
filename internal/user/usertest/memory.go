// AngelaMos | 2026
// memory.go

// Package usertest provides an in-memory user.Repository for tests. It keeps
// the same availability and uniqueness rules as the Postgres store.
package usertest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/carterperez-dev/templates/users-service/internal/core"
	"github.com/carterperez-dev/templates/users-service/internal/user"
)

type Repository struct {
	mu    sync.RWMutex
	users map[string]user.User
	now   func() time.Time
}

func NewRepository() *Repository {
	return &Repository{
		users: make(map[string]user.User),
		now:   time.Now,
	}
}

// Seed stores u verbatim, bypassing uniqueness checks. Useful for setting
// up soft-deleted rows.
func (r *Repository) Seed(u user.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.NationalID = user.NormalizeNationalID(u.NationalID)
	r.users[u.ID] = u
}

func (r *Repository) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.ID]; ok {
		return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
	}

	u.NationalID = user.NormalizeNationalID(u.NationalID)
	if r.conflictLocked(u.ID, u.Email, u.NationalID) {
		return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
	}

	now := r.now()
	u.IsAvailable = true
	u.CreatedAt = now
	u.LastUpdatedAt = now
	r.users[u.ID] = *u

	return nil
}

func (r *Repository) Update(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[u.ID]
	if !ok || !existing.IsAvailable {
		return nil
	}

	u.NationalID = user.NormalizeNationalID(u.NationalID)
	if r.conflictLocked(u.ID, u.Email, u.NationalID) {
		return fmt.Errorf("update user: %w", core.ErrDuplicateKey)
	}

	existing.Name = u.Name
	existing.Email = u.Email
	existing.NationalID = u.NationalID
	existing.Role = u.Role
	existing.PasswordHash = u.PasswordHash
	existing.LastUpdatedAt = r.now()
	r.users[u.ID] = existing

	u.LastUpdatedAt = existing.LastUpdatedAt

	return nil
}

func (r *Repository) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[id]
	if !ok {
		return nil
	}

	existing.IsAvailable = false
	existing.LastUpdatedAt = r.now()
	r.users[id] = existing

	return nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	return &u, nil
}

func (r *Repository) FindActiveByNationalID(
	_ context.Context,
	nationalID string,
) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	nid := user.NormalizeNationalID(nationalID)
	for _, u := range r.users {
		if u.IsAvailable && u.NationalID == nid {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("find user by national id: %w", core.ErrNotFound)
}

func (r *Repository) FindActiveByEmail(
	_ context.Context,
	email string,
) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.IsAvailable && strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("find user by email: %w", core.ErrNotFound)
}

func (r *Repository) ExistsActiveByEmailOrNationalID(
	_ context.Context,
	email, nationalID string,
) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.conflictLocked("", email, user.NormalizeNationalID(nationalID)), nil
}

func (r *Repository) CountByAvailability(_ context.Context) (user.Counts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var c user.Counts
	for _, u := range r.users {
		if u.IsAvailable {
			c.Active++
		} else {
			c.Inactive++
		}
	}
	return c, nil
}

func (r *Repository) UpdatePasswordHash(
	_ context.Context,
	id, passwordHash string,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[id]
	if !ok || !existing.IsAvailable {
		return nil
	}

	existing.PasswordHash = passwordHash
	existing.LastUpdatedAt = r.now()
	r.users[id] = existing

	return nil
}

// Stored returns a copy of the row regardless of availability.
func (r *Repository) Stored(id string) (user.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	return u, ok
}

func (r *Repository) conflictLocked(selfID, email, nationalID string) bool {
	for id, u := range r.users {
		if id == selfID || !u.IsAvailable {
			continue
		}
		if strings.EqualFold(u.Email, email) || u.NationalID == nationalID {
			return true
		}
	}
	return false
}

var _ user.Repository = (*Repository)(nil)
