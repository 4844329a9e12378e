package maps

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyragit/Auto-DND/internal/domain/game/combat"
	"github.com/kyragit/Auto-DND/internal/domain/game/world"
	internalerrors "github.com/kyragit/Auto-DND/internal/errors"
)

func newTestMap() *world.Map {
	m := world.NewMap("map-1", "The Undercrypt")
	entrance := world.NewRoom("room-1", "Entrance")
	entrance.Discovered = true
	hall := world.NewRoom("room-2", "Hall of Pillars")
	hall.Fight = combat.NewFight("fight-1", "party-1")
	// Pinned so the fight survives a JSON round trip bit-for-bit;
	// time.Now carries a monotonic reading that marshaling strips
	hall.Fight.CreatedAt = time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	m.PutRoom(entrance)
	m.PutRoom(hall)
	m.Connections["conn-1"] = &world.Connection{
		ID:       "conn-1",
		From:     "room-1",
		To:       "room-2",
		Passable: true,
	}
	return m
}

func TestInMemoryRepository_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	m := newTestMap()

	require.NoError(t, repo.Save(ctx, m))
	assert.Equal(t, int64(1), m.Version)

	loaded, err := repo.Load(ctx, "map-1")
	require.NoError(t, err)
	assert.Equal(t, m, loaded)

	// The stored copy is independent of the caller's map
	m.GetRoom("room-1").Discovered = false
	reloaded, err := repo.Load(ctx, "map-1")
	require.NoError(t, err)
	assert.True(t, reloaded.GetRoom("room-1").Discovered)
}

func TestInMemoryRepository_LoadNotFound(t *testing.T) {
	repo := NewInMemoryRepository()

	_, err := repo.Load(context.Background(), "map-9")
	require.Error(t, err)
	assert.True(t, internalerrors.IsNotFound(err))
}

func TestInMemoryRepository_SaveBumpsVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	m := newTestMap()

	require.NoError(t, repo.Save(ctx, m))
	require.NoError(t, repo.Save(ctx, m))
	assert.Equal(t, int64(2), m.Version)

	loaded, err := repo.Load(ctx, "map-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), loaded.Version)
}

func TestInMemoryRepository_SaveStaleVersionConflicts(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	m := newTestMap()
	require.NoError(t, repo.Save(ctx, m))

	stale := m.Clone()
	stale.Version = 0

	err := repo.Save(ctx, stale)
	require.Error(t, err)
	assert.True(t, internalerrors.IsConcurrencyConflict(err))

	// The conflicting save wrote nothing
	loaded, err := repo.Load(ctx, "map-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), loaded.Version)
}

func TestInMemoryRepository_SaveValidation(t *testing.T) {
	repo := NewInMemoryRepository()

	err := repo.Save(context.Background(), nil)
	assert.True(t, internalerrors.IsValidation(err))

	err = repo.Save(context.Background(), &world.Map{})
	assert.True(t, internalerrors.IsValidation(err))
}

func TestInMemoryRepository_ListIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	ids, err := repo.ListIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, repo.Save(ctx, newTestMap()))
	other := world.NewMap("map-2", "The Mill")
	require.NoError(t, repo.Save(ctx, other))

	ids, err = repo.ListIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"map-1", "map-2"}, ids)
}
