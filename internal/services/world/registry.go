package world

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	gameworld "github.com/kyragit/Auto-DND/internal/domain/game/world"
	internalerrors "github.com/kyragit/Auto-DND/internal/errors"
	"github.com/kyragit/Auto-DND/internal/repositories/maps"
)

// Registry keeps the maps currently in play loaded in memory and
// serializes every mutation of a map behind its own lock, so there is
// exactly one writer per map at any time.
type Registry interface {
	// Get returns a snapshot of the map, loading it on demand. The
	// snapshot is a deep copy; mutating it affects nothing.
	Get(ctx context.Context, mapID string) (*gameworld.Map, error)

	// Put registers a new map and persists it immediately
	Put(ctx context.Context, m *gameworld.Map) error

	// Update runs the mutation with exclusive access to the live map and
	// persists the result. If the mutation or the save fails, the
	// in-memory map is rolled back to its pre-mutation state and nothing
	// is visible to later readers.
	Update(ctx context.Context, mapID string, mutation func(*gameworld.Map) error) error

	// Mutate runs the mutation with exclusive access but defers
	// persistence, marking the map dirty. Used for bulk edits that are
	// flushed together.
	Mutate(ctx context.Context, mapID string, mutation func(*gameworld.Map) error) error

	// Flush persists the map if it is dirty
	Flush(ctx context.Context, mapID string) error

	// FlushAll persists every dirty map. One map's failure does not
	// block the others; the first error is returned after all saves
	// have been attempted or cancelled.
	FlushAll(ctx context.Context) error

	// ListIDs returns the IDs of all persisted maps
	ListIDs(ctx context.Context) ([]string, error)
}

// RegistryConfig holds the registry's dependencies
type RegistryConfig struct {
	Repository maps.Repository
}

type mapEntry struct {
	mu    sync.Mutex
	m     *gameworld.Map
	dirty bool
}

type registry struct {
	repo maps.Repository

	mu      sync.Mutex
	entries map[string]*mapEntry
}

// NewRegistry creates a new map registry
func NewRegistry(cfg *RegistryConfig) Registry {
	if cfg.Repository == nil {
		panic("map repository is required")
	}

	return &registry{
		repo:    cfg.Repository,
		entries: make(map[string]*mapEntry),
	}
}

// entryFor returns the entry for the map, creating an empty one if this is
// the first reference. The map itself is loaded under the entry lock so a
// slow load never blocks the registry.
func (r *registry) entryFor(mapID string) *mapEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[mapID]
	if !ok {
		e = &mapEntry{}
		r.entries[mapID] = e
	}
	return e
}

// ensureLoaded loads the map from the repository if the entry is empty.
// Callers must hold the entry lock.
func (r *registry) ensureLoaded(ctx context.Context, mapID string, e *mapEntry) error {
	if e.m != nil {
		return nil
	}

	m, err := r.repo.Load(ctx, mapID)
	if err != nil {
		return err
	}
	e.m = m
	return nil
}

func (r *registry) Get(ctx context.Context, mapID string) (*gameworld.Map, error) {
	e := r.entryFor(mapID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := r.ensureLoaded(ctx, mapID, e); err != nil {
		return nil, err
	}
	return e.m.Clone(), nil
}

func (r *registry) Put(ctx context.Context, m *gameworld.Map) error {
	if m == nil {
		return internalerrors.Validationf("map cannot be nil")
	}

	e := r.entryFor(m.ID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := r.repo.Save(ctx, m); err != nil {
		return err
	}
	e.m = m.Clone()
	e.dirty = false
	return nil
}

func (r *registry) Update(ctx context.Context, mapID string, mutation func(*gameworld.Map) error) error {
	e := r.entryFor(mapID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := r.ensureLoaded(ctx, mapID, e); err != nil {
		return err
	}

	snapshot := e.m.Clone()
	if err := mutation(e.m); err != nil {
		e.m = snapshot
		return err
	}

	if err := r.repo.Save(ctx, e.m); err != nil {
		e.m = snapshot
		return err
	}
	return nil
}

func (r *registry) Mutate(ctx context.Context, mapID string, mutation func(*gameworld.Map) error) error {
	e := r.entryFor(mapID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := r.ensureLoaded(ctx, mapID, e); err != nil {
		return err
	}

	snapshot := e.m.Clone()
	if err := mutation(e.m); err != nil {
		e.m = snapshot
		return err
	}

	e.dirty = true
	return nil
}

func (r *registry) Flush(ctx context.Context, mapID string) error {
	e := r.entryFor(mapID)
	e.mu.Lock()
	defer e.mu.Unlock()

	return r.flushEntry(ctx, e)
}

// flushEntry saves a dirty entry. Callers must hold the entry lock.
func (r *registry) flushEntry(ctx context.Context, e *mapEntry) error {
	if e.m == nil || !e.dirty {
		return nil
	}

	if err := r.repo.Save(ctx, e.m); err != nil {
		return err
	}
	e.dirty = false
	return nil
}

func (r *registry) FlushAll(ctx context.Context) error {
	r.mu.Lock()
	entries := make(map[string]*mapEntry, len(r.entries))
	for id, e := range r.entries {
		entries[id] = e
	}
	r.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	for id, e := range entries {
		id, e := id, e
		g.Go(func() error {
			e.mu.Lock()
			defer e.mu.Unlock()

			if err := r.flushEntry(ctx, e); err != nil {
				log.Printf("Failed to flush map %s: %v", id, err)
				return err
			}
			return nil
		})
	}

	return g.Wait()
}

func (r *registry) ListIDs(ctx context.Context) ([]string, error) {
	return r.repo.ListIDs(ctx)
}
