package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/warera-economy-go/internal/adapters/persistence"
	"github.com/andrescamacho/warera-economy-go/internal/domain/player"
	"github.com/andrescamacho/warera-economy-go/internal/domain/shared"
	"github.com/andrescamacho/warera-economy-go/test/helpers"
)

func TestPlayerRepository_AddAndFind(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormPlayerRepository(db, shared.NewMockClock(helpers.FixedTime))

	// Act
	err := repo.Add(context.Background(), player.NewPlayer("user-1", "Alice"))
	require.NoError(t, err)

	found, err := repo.FindByUsername(context.Background(), "  ALICE ")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "user-1", found.ID)
	assert.Equal(t, "alice", found.Username)
}

func TestPlayerRepository_AddReplacesMapping(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormPlayerRepository(db, nil)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, player.NewPlayer("user-1", "alice")))

	// Act - the username now belongs to a different account
	require.NoError(t, repo.Add(ctx, player.NewPlayer("user-2", "alice")))
	found, err := repo.FindByUsername(ctx, "alice")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "user-2", found.ID)
	assert.Equal(t, int64(1), helpers.CountRows(t, db, &persistence.PlayerModel{}))
}

func TestPlayerRepository_AddUpdatesUsername(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormPlayerRepository(db, nil)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, player.NewPlayer("user-1", "alice")))

	// Act
	require.NoError(t, repo.Add(ctx, player.NewPlayer("user-1", "alicia")))

	// Assert
	_, err := repo.FindByUsername(ctx, "alice")
	assert.ErrorIs(t, err, player.ErrUserNotFound)
	found, err := repo.FindByUsername(ctx, "alicia")
	require.NoError(t, err)
	assert.Equal(t, "user-1", found.ID)
}

func TestPlayerRepository_NotFound(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormPlayerRepository(db, nil)

	// Act
	_, err := repo.FindByUsername(context.Background(), "nobody")

	// Assert
	assert.ErrorIs(t, err, player.ErrUserNotFound)
}

func TestPlayerRepository_AddRejectsEmptyID(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormPlayerRepository(db, nil)

	err := repo.Add(context.Background(), player.NewPlayer("", "ghost"))

	assert.Error(t, err)
}
