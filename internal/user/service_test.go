// AngelaMos | 2026
// service_test.go

package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/users-service/internal/auth"
	"github.com/carterperez-dev/templates/users-service/internal/config"
	"github.com/carterperez-dev/templates/users-service/internal/core"
	"github.com/carterperez-dev/templates/users-service/internal/user"
	"github.com/carterperez-dev/templates/users-service/internal/user/usertest"
)

func newService() (*user.Service, *usertest.Repository) {
	repo := usertest.NewRepository()
	return user.NewService(repo), repo
}

func clientRequest(email, nid string) user.CreateClientRequest {
	return user.CreateClientRequest{
		Name:       "Maria Souza",
		Email:      email,
		NationalID: nid,
		Password:   "secret",
	}
}

func updateRequest(u *user.User, role auth.Role) user.UpdateUserRequest {
	return user.UpdateUserRequest{
		Name:       u.Name,
		Email:      u.Email,
		NationalID: u.NationalID,
		Role:       role.String(),
		Password:   "new-secret",
	}
}

func TestCreateClient_StoresNormalizedRecord(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	u, err := svc.CreateClient(ctx, clientRequest("maria@example.com", "829.091.170-06"))
	require.NoError(t, err)

	_, err = uuid.Parse(u.ID)
	require.NoError(t, err)

	stored, ok := repo.Stored(u.ID)
	require.True(t, ok)
	assert.Equal(t, "82909117006", stored.NationalID)
	assert.Equal(t, auth.RoleClient, stored.Role)
	assert.True(t, stored.IsAvailable)
	assert.NotEqual(t, "secret", stored.PasswordHash)

	valid, err := core.VerifyPassword("secret", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestCreateClient_UniquenessAmongAvailableUsers(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.CreateClient(ctx, clientRequest("maria@example.com", "829.091.170-06"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		email string
		nid   string
	}{
		{"same national id, other format", "other@example.com", "82909117006"},
		{"same email, other casing", "MARIA@example.com", "111.222.333-44"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateClient(ctx, clientRequest(tc.email, tc.nid))
			require.ErrorIs(t, err, user.ErrUserExists)
			assert.ErrorIs(t, err, core.ErrConflict)
		})
	}
}

func TestCreateClient_SoftDeletedValuesCanBeReused(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	first, err := svc.CreateClient(ctx, clientRequest("maria@example.com", "829.091.170-06"))
	require.NoError(t, err)

	self := user.Actor{ID: first.ID, Role: auth.RoleClient}
	require.NoError(t, svc.DeleteUser(ctx, self, first.ID))

	second, err := svc.CreateClient(ctx, clientRequest("maria@example.com", "82909117006"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	old, ok := repo.Stored(first.ID)
	require.True(t, ok)
	assert.False(t, old.IsAvailable)

	counts, err := svc.UserCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.Counts{Active: 1, Inactive: 1}, counts)
}

func TestCreateEmployee(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	u, err := svc.CreateEmployee(ctx, user.CreateEmployeeRequest{
		Name:       "Joana",
		Email:      "joana@fasttech.com",
		NationalID: "111.222.333-44",
		Password:   "secret",
		Role:       "employee",
	})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleEmployee, u.Role)

	_, err = svc.CreateEmployee(ctx, user.CreateEmployeeRequest{
		Name:       "Sneaky",
		Email:      "sneaky@fasttech.com",
		NationalID: "222.333.444-55",
		Password:   "secret",
		Role:       "client",
	})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestUpdateUser_MissingOrDeletedTargetIsSilentNoOp(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()
	admin := user.Actor{ID: uuid.NewString(), Role: auth.RoleAdmin}

	ghost := &user.User{Name: "Ghost", Email: "ghost@example.com", NationalID: "33344455566"}
	ghostID := uuid.NewString()
	require.NoError(t, svc.UpdateUser(ctx, admin, ghostID, updateRequest(ghost, auth.RoleClient)))
	_, ok := repo.Stored(ghostID)
	assert.False(t, ok, "update must never create a record")

	deletedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.Seed(user.User{
		ID:            "9c1d6a3e-0000-4000-8000-000000000001",
		Name:          "Old Name",
		Email:         "old@example.com",
		NationalID:    "44455566677",
		Role:          auth.RoleClient,
		IsAvailable:   false,
		LastUpdatedAt: deletedAt,
	})

	renamed := &user.User{Name: "New Name", Email: "new@example.com", NationalID: "44455566677"}
	require.NoError(t, svc.UpdateUser(ctx, admin, "9c1d6a3e-0000-4000-8000-000000000001",
		updateRequest(renamed, auth.RoleClient)))

	stored, _ := repo.Stored("9c1d6a3e-0000-4000-8000-000000000001")
	assert.Equal(t, "Old Name", stored.Name)
	assert.Equal(t, deletedAt, stored.LastUpdatedAt)
}

func TestUpdateUser_Authorization(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	maria, err := svc.CreateClient(ctx, clientRequest("maria@example.com", "829.091.170-06"))
	require.NoError(t, err)
	joao, err := svc.CreateClient(ctx, clientRequest("joao@example.com", "111.222.333-44"))
	require.NoError(t, err)

	asMaria := user.Actor{ID: maria.ID, Role: auth.RoleClient}

	t.Run("self update overwrites every field", func(t *testing.T) {
		req := updateRequest(maria, auth.RoleClient)
		req.Name = "Maria S."
		req.NationalID = "829.091.170-06"
		require.NoError(t, svc.UpdateUser(ctx, asMaria, maria.ID, req))

		stored, _ := repo.Stored(maria.ID)
		assert.Equal(t, "Maria S.", stored.Name)
		assert.Equal(t, "82909117006", stored.NationalID)
		ok, verr := core.VerifyPassword("new-secret", stored.PasswordHash)
		require.NoError(t, verr)
		assert.True(t, ok)
	})

	t.Run("client cannot promote themselves", func(t *testing.T) {
		err := svc.UpdateUser(ctx, asMaria, maria.ID, updateRequest(maria, auth.RoleAdmin))
		assert.ErrorIs(t, err, core.ErrForbidden)
	})

	t.Run("client cannot update someone else", func(t *testing.T) {
		err := svc.UpdateUser(ctx, asMaria, joao.ID, updateRequest(joao, auth.RoleClient))
		assert.ErrorIs(t, err, core.ErrForbidden)
	})

	t.Run("admin can update and promote", func(t *testing.T) {
		admin := user.Actor{ID: uuid.NewString(), Role: auth.RoleAdmin}
		require.NoError(t, svc.UpdateUser(ctx, admin, joao.ID, updateRequest(joao, auth.RoleEmployee)))

		stored, _ := repo.Stored(joao.ID)
		assert.Equal(t, auth.RoleEmployee, stored.Role)
	})

	t.Run("taking another user's email conflicts", func(t *testing.T) {
		req := updateRequest(joao, auth.RoleEmployee)
		req.Email = "Maria@Example.com"
		admin := user.Actor{ID: uuid.NewString(), Role: auth.RoleAdmin}
		assert.ErrorIs(t, svc.UpdateUser(ctx, admin, joao.ID, req), core.ErrConflict)
	})
}

func TestDeleteUser(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	client, err := svc.CreateClient(ctx, clientRequest("maria@example.com", "829.091.170-06"))
	require.NoError(t, err)
	otherAdmin, err := svc.CreateEmployee(ctx, user.CreateEmployeeRequest{
		Name: "Root", Email: "root@fasttech.com", NationalID: "111.222.333-44",
		Password: "secret", Role: "admin",
	})
	require.NoError(t, err)

	admin := user.Actor{ID: uuid.NewString(), Role: auth.RoleAdmin}
	employee := user.Actor{ID: uuid.NewString(), Role: auth.RoleEmployee}

	assert.ErrorIs(t, svc.DeleteUser(ctx, employee, client.ID), core.ErrForbidden)
	assert.ErrorIs(t, svc.DeleteUser(ctx, admin, otherAdmin.ID), core.ErrForbidden)
	assert.NoError(t, svc.DeleteUser(ctx, admin, uuid.NewString()), "unknown id is a no-op")

	require.NoError(t, svc.DeleteUser(ctx, admin, client.ID))
	stored, _ := repo.Stored(client.ID)
	assert.False(t, stored.IsAvailable)
	firstStamp := stored.LastUpdatedAt

	time.Sleep(time.Millisecond)
	require.NoError(t, svc.DeleteUser(ctx, user.Actor{ID: client.ID, Role: auth.RoleClient}, client.ID))
	stored, _ = repo.Stored(client.ID)
	assert.False(t, stored.IsAvailable)
	assert.True(t, stored.LastUpdatedAt.After(firstStamp))

	require.NoError(t, svc.DeleteUser(ctx, user.Actor{ID: otherAdmin.ID, Role: auth.RoleAdmin}, otherAdmin.ID))
}

func TestGetUser(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	u, err := svc.CreateClient(ctx, clientRequest("maria@example.com", "829.091.170-06"))
	require.NoError(t, err)
	self := user.Actor{ID: u.ID, Role: auth.RoleClient}
	require.NoError(t, svc.DeleteUser(ctx, self, u.ID))

	got, err := svc.GetUser(ctx, user.Actor{ID: uuid.NewString(), Role: auth.RoleEmployee}, u.ID)
	require.NoError(t, err, "soft-deleted users stay readable by id")
	assert.False(t, got.IsAvailable)

	_, err = svc.GetUser(ctx, user.Actor{ID: uuid.NewString(), Role: auth.RoleClient}, u.ID)
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = svc.GetUser(ctx, user.Actor{ID: uuid.NewString(), Role: auth.RoleAdmin}, uuid.NewString())
	assert.ErrorIs(t, err, core.ErrNotFound)

	me, err := svc.GetMe(ctx, self)
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.ID)
}

func TestEnsureAdmin(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, config.AdminConfig{})
	require.NoError(t, err)
	assert.False(t, created, "no seed configured")

	cfg := config.AdminConfig{
		Name:       "Administrator",
		Email:      "admin@admin.com",
		NationalID: "000.000.000-00",
		Password:   "admin123",
	}

	created, err = svc.EnsureAdmin(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(ctx, cfg)
	require.NoError(t, err)
	assert.False(t, created, "second boot keeps the existing admin")

	info, err := svc.FindActiveByEmail(ctx, "ADMIN@admin.com")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, info.Role)
}

func TestEnsureAdmin_RejectsMalformedSeed(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	tests := []struct {
		name  string
		cfg   config.AdminConfig
		field string
	}{
		{
			name:  "national id without digits",
			cfg:   config.AdminConfig{Name: "Administrator", Email: "admin@admin.com", NationalID: "abc", Password: "admin123"},
			field: "national_id",
		},
		{
			name:  "email without domain",
			cfg:   config.AdminConfig{Name: "Administrator", Email: "admin", NationalID: "00000000000", Password: "admin123"},
			field: "email",
		},
		{
			name:  "short password",
			cfg:   config.AdminConfig{Name: "Administrator", Email: "admin@admin.com", NationalID: "00000000000", Password: "adm"},
			field: "password",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			created, err := svc.EnsureAdmin(ctx, tc.cfg)
			require.ErrorIs(t, err, core.ErrConfiguration)
			assert.Contains(t, err.Error(), tc.field)
			assert.False(t, created)
		})
	}

	counts, err := svc.UserCounts(ctx)
	require.NoError(t, err)
	assert.Zero(t, counts.Active+counts.Inactive, "nothing is stored for a bad seed")
}
