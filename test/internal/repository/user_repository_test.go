package repository

import (
	"context"
	"go-rail-booking/internal/model"
	"go-rail-booking/internal/repository"
	apperrors "go-rail-booking/pkg/app_errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Create(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewUserRepository(getTestDB())

	t.Run("Success", func(t *testing.T) {
		user := &model.User{
			Username:     "alice",
			Email:        "alice@test.com",
			PasswordHash: "hash",
		}

		created, err := repo.Create(ctx, user)
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.True(t, created.IsActive)
		assert.False(t, created.IsAdmin)
	})

	t.Run("Failed - duplicate username", func(t *testing.T) {
		user := &model.User{
			Username:     "alice",
			Email:        "other@test.com",
			PasswordHash: "hash",
		}

		_, err := repo.Create(ctx, user)
		assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
	})

	t.Run("Failed - duplicate email", func(t *testing.T) {
		user := &model.User{
			Username:     "alice2",
			Email:        "alice@test.com",
			PasswordHash: "hash",
		}

		_, err := repo.Create(ctx, user)
		assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
	})
}

func TestUserRepository_FindByUsername(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewUserRepository(getTestDB())
	createTestUser(t, "bob", "bob@test.com")

	t.Run("Success", func(t *testing.T) {
		user, err := repo.FindByUsername(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, "bob@test.com", user.Email)
	})

	t.Run("Failed - NotFound", func(t *testing.T) {
		_, err := repo.FindByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}

func TestUserRepository_FindByID(t *testing.T) {
	cleanup := setupTestWithTruncate(t)
	defer cleanup()

	ctx := context.Background()
	repo := repository.NewUserRepository(getTestDB())
	id := createTestUser(t, "carol", "carol@test.com")

	user, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "carol", user.Username)

	_, err = repo.FindByID(ctx, 99999)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
