package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobforge/internal/domain"
)

func TestUserCreateAndGetBySession(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user, err := repo.Create(ctx, "session-token")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	got, err := repo.GetBySessionID(ctx, "session-token")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "session-token", got.SessionID)

	_, err = repo.GetBySessionID(ctx, "unknown")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserSessionIDIsUnique(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, "dup")
	require.NoError(t, err)

	_, err = repo.Create(ctx, "dup")
	assert.Error(t, err)
}
