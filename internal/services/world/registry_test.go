package world

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gameworld "github.com/kyragit/Auto-DND/internal/domain/game/world"
	internalerrors "github.com/kyragit/Auto-DND/internal/errors"
	"github.com/kyragit/Auto-DND/internal/repositories/maps"
)

func newTestRegistry(t *testing.T) (Registry, maps.Repository) {
	t.Helper()
	repo := maps.NewInMemoryRepository()
	return NewRegistry(&RegistryConfig{Repository: repo}), repo
}

func newTestMap(id string) *gameworld.Map {
	m := gameworld.NewMap(id, "The Undercrypt")
	room := gameworld.NewRoom("room-1", "Entrance")
	m.PutRoom(room)
	return m
}

func TestRegistry_PutAndGet(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestRegistry(t)

	require.NoError(t, reg.Put(ctx, newTestMap("map-1")))

	m, err := reg.Get(ctx, "map-1")
	require.NoError(t, err)
	assert.Equal(t, "map-1", m.ID)
	assert.Equal(t, int64(1), m.Version)

	// Snapshots are independent of the live map
	m.GetRoom("room-1").Discovered = true
	again, err := reg.Get(ctx, "map-1")
	require.NoError(t, err)
	assert.False(t, again.GetRoom("room-1").Discovered)
}

func TestRegistry_GetLoadsOnDemand(t *testing.T) {
	ctx := context.Background()
	repo := maps.NewInMemoryRepository()
	require.NoError(t, repo.Save(ctx, newTestMap("map-1")))

	reg := NewRegistry(&RegistryConfig{Repository: repo})

	m, err := reg.Get(ctx, "map-1")
	require.NoError(t, err)
	assert.Equal(t, "map-1", m.ID)

	_, err = reg.Get(ctx, "map-9")
	assert.True(t, internalerrors.IsNotFound(err))
}

func TestRegistry_UpdatePersists(t *testing.T) {
	ctx := context.Background()
	reg, repo := newTestRegistry(t)
	require.NoError(t, reg.Put(ctx, newTestMap("map-1")))

	err := reg.Update(ctx, "map-1", func(m *gameworld.Map) error {
		m.GetRoom("room-1").Discovered = true
		return nil
	})
	require.NoError(t, err)

	stored, err := repo.Load(ctx, "map-1")
	require.NoError(t, err)
	assert.True(t, stored.GetRoom("room-1").Discovered)
	assert.Equal(t, int64(2), stored.Version)
}

func TestRegistry_UpdateRollsBackOnMutationError(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestRegistry(t)
	require.NoError(t, reg.Put(ctx, newTestMap("map-1")))

	wantErr := internalerrors.IllegalAction("not your turn")
	err := reg.Update(ctx, "map-1", func(m *gameworld.Map) error {
		m.GetRoom("room-1").Discovered = true
		return wantErr
	})
	assert.Equal(t, wantErr, err)

	m, err := reg.Get(ctx, "map-1")
	require.NoError(t, err)
	assert.False(t, m.GetRoom("room-1").Discovered)
}

// failingRepo fails every save after the first
type failingRepo struct {
	maps.Repository
	mu    sync.Mutex
	saves int
}

func (f *failingRepo) Save(ctx context.Context, m *gameworld.Map) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saves > 1 {
		return internalerrors.PersistenceFailure("disk on fire")
	}
	return f.Repository.Save(ctx, m)
}

func TestRegistry_UpdateRollsBackOnSaveError(t *testing.T) {
	ctx := context.Background()
	repo := &failingRepo{Repository: maps.NewInMemoryRepository()}
	reg := NewRegistry(&RegistryConfig{Repository: repo})
	require.NoError(t, reg.Put(ctx, newTestMap("map-1")))

	err := reg.Update(ctx, "map-1", func(m *gameworld.Map) error {
		m.GetRoom("room-1").Discovered = true
		return nil
	})
	require.Error(t, err)
	assert.True(t, internalerrors.IsPersistenceFailure(err))

	// The failed write is not visible to later readers
	m, err := reg.Get(ctx, "map-1")
	require.NoError(t, err)
	assert.False(t, m.GetRoom("room-1").Discovered)
}

func TestRegistry_MutateDefersPersistence(t *testing.T) {
	ctx := context.Background()
	reg, repo := newTestRegistry(t)
	require.NoError(t, reg.Put(ctx, newTestMap("map-1")))

	err := reg.Mutate(ctx, "map-1", func(m *gameworld.Map) error {
		m.GetRoom("room-1").Discovered = true
		return nil
	})
	require.NoError(t, err)

	// Visible in memory, not yet persisted
	m, err := reg.Get(ctx, "map-1")
	require.NoError(t, err)
	assert.True(t, m.GetRoom("room-1").Discovered)

	stored, err := repo.Load(ctx, "map-1")
	require.NoError(t, err)
	assert.False(t, stored.GetRoom("room-1").Discovered)

	require.NoError(t, reg.Flush(ctx, "map-1"))

	stored, err = repo.Load(ctx, "map-1")
	require.NoError(t, err)
	assert.True(t, stored.GetRoom("room-1").Discovered)
}

func TestRegistry_FlushAll(t *testing.T) {
	ctx := context.Background()
	reg, repo := newTestRegistry(t)
	require.NoError(t, reg.Put(ctx, newTestMap("map-1")))
	require.NoError(t, reg.Put(ctx, newTestMap("map-2")))

	for _, id := range []string{"map-1", "map-2"} {
		err := reg.Mutate(ctx, id, func(m *gameworld.Map) error {
			m.Summary = "flushed"
			return nil
		})
		require.NoError(t, err)
	}

	require.NoError(t, reg.FlushAll(ctx))

	for _, id := range []string{"map-1", "map-2"} {
		stored, err := repo.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "flushed", stored.Summary)
	}
}

func TestRegistry_ConcurrentUpdatesSerialize(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestRegistry(t)
	require.NoError(t, reg.Put(ctx, newTestMap("map-1")))

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := reg.Update(ctx, "map-1", func(m *gameworld.Map) error {
				m.GetRoom("room-1").Description += "x"
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	m, err := reg.Get(ctx, "map-1")
	require.NoError(t, err)
	assert.Len(t, m.GetRoom("room-1").Description, writers)
}
