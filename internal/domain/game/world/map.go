package world

import (
	"github.com/kyragit/Auto-DND/internal/domain/game/combat"
)

// Map is a named collection of rooms, like a dungeon or town. It is not a
// grid: rooms have no spatial position, only connections to each other.
// A map is persisted and loaded as one atomic unit.
type Map struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Summary string `json:"summary"`

	// Rooms keyed by room ID. A room is never duplicated across maps.
	Rooms map[string]*Room `json:"rooms"`

	// Connections keyed by connection ID.
	Connections map[string]*Connection `json:"connections"`

	// Version increases by one on every successful save. It is used for
	// concurrent-edit detection and client delta acknowledgement.
	Version int64 `json:"version"`
}

// NewMap creates an empty map
func NewMap(id, name string) *Map {
	return &Map{
		ID:          id,
		Name:        name,
		Rooms:       make(map[string]*Room),
		Connections: make(map[string]*Connection),
	}
}

// GetRoom returns the room with the given ID, or nil
func (m *Map) GetRoom(roomID string) *Room {
	return m.Rooms[roomID]
}

// PutRoom inserts or replaces a room
func (m *Map) PutRoom(room *Room) {
	m.Rooms[room.ID] = room
}

// FindFight returns the room holding the fight with the given ID, or nil
func (m *Map) FindFight(fightID string) *Room {
	for _, room := range m.Rooms {
		if room.Fight != nil && room.Fight.ID == fightID {
			return room
		}
	}
	return nil
}

// Clone returns a deep copy of the map
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}

	clone := &Map{
		ID:          m.ID,
		Name:        m.Name,
		Summary:     m.Summary,
		Rooms:       make(map[string]*Room, len(m.Rooms)),
		Connections: make(map[string]*Connection, len(m.Connections)),
		Version:     m.Version,
	}
	for id, room := range m.Rooms {
		clone.Rooms[id] = room.Clone()
	}
	for id, conn := range m.Connections {
		connCopy := *conn
		clone.Connections[id] = &connCopy
	}
	return clone
}

// Room is a single room in a map. The fight, if any, is an owned field of
// the room record; fights are never shared between rooms.
type Room struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	// Connections maps connection IDs to true if this room is the "from"
	// side, false if it is the "to" side.
	Connections map[string]bool `json:"connections"`

	// Discovered marks the room as visible to players. The DM reveals
	// rooms explicitly.
	Discovered bool `json:"discovered"`

	// Fight is the room's current or historical combat state. A resolved
	// fight stays embedded until the DM clears it.
	Fight *combat.Fight `json:"fight,omitempty"`
}

// NewRoom creates an empty room
func NewRoom(id, name string) *Room {
	return &Room{
		ID:          id,
		Name:        name,
		Connections: make(map[string]bool),
	}
}

// Clone returns a deep copy of the room
func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}

	clone := &Room{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Connections: make(map[string]bool, len(r.Connections)),
		Discovered:  r.Discovered,
		Fight:       r.Fight.Clone(),
	}
	for id, from := range r.Connections {
		clone.Connections[id] = from
	}
	return clone
}

// Connection joins two rooms. One-way connections can only be traversed
// from the "from" side.
type Connection struct {
	ID          string `json:"id"`
	From        string `json:"from"`
	To          string `json:"to"`
	OneWay      bool   `json:"one_way"`
	Description string `json:"description"`
	Passable    bool   `json:"passable"`
	Locked      bool   `json:"locked"`
	Trapped     bool   `json:"trapped"`
}
