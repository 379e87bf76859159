package repository

import (
	"context"
	"testing"

	"wagerhub/domain/entities"
	"wagerhub/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewUserRepository(testDB.DB)

	user := &entities.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "hash", Role: entities.RolePlayer}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotZero(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	t.Run("lookup by email", func(t *testing.T) {
		found, err := repo.GetByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, user.ID, found.ID)
		assert.Equal(t, "hash", found.PasswordHash)
	})

	t.Run("missing user", func(t *testing.T) {
		found, err := repo.GetByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("duplicate email", func(t *testing.T) {
		dup := &entities.User{Name: "Other", Email: "ada@example.com", PasswordHash: "x", Role: entities.RolePlayer}
		assert.ErrorIs(t, repo.Create(ctx, dup), entities.ErrEmailTaken)
	})

	t.Run("role change", func(t *testing.T) {
		require.NoError(t, repo.UpdateRole(ctx, user.ID, entities.RoleModerator))
		found, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.RoleModerator, found.Role)

		assert.ErrorIs(t, repo.UpdateRole(ctx, 424242, entities.RoleAdmin), entities.ErrNotFound)
	})

	t.Run("count and list", func(t *testing.T) {
		second := &entities.User{Name: "Bob", Email: "bob@example.com", PasswordHash: "x", Role: entities.RolePlayer}
		require.NoError(t, repo.Create(ctx, second))

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		users, err := repo.List(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, second.ID, users[0].ID)
	})
}
