package postgres

import (
	"context"
	"testing"

	"github.com/EventLink/server/internal/domain/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupPostgres(t)

	created := insertUser(t, ctx, repo, "alice")
	assert.Equal(t, int64(1), created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	byName, err := repo.Users().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)
	assert.Equal(t, "alice@example.com", byName.Email)
	assert.Equal(t, created.PasswordHash, byName.PasswordHash)

	byID, err := repo.Users().GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	_, err = repo.Users().GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, users.ErrNotFound)
	_, err = repo.Users().GetByID(ctx, 999)
	assert.ErrorIs(t, err, users.ErrNotFound)
}

func TestUserRepository_UniqueConstraints(t *testing.T) {
	ctx := context.Background()
	repo, pool := setupPostgres(t)

	insertUser(t, ctx, repo, "alice")

	_, err := repo.Users().Create(ctx, users.NewUser{Username: "alice", Email: "other@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, users.ErrConflict)

	_, err = repo.Users().Create(ctx, users.NewUser{Username: "bob", Email: "alice@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, users.ErrConflict)

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&count))
	assert.Equal(t, 1, count)
}
