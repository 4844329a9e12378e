package synchronizer

import (
	gameworld "github.com/kyragit/Auto-DND/internal/domain/game/world"
)

// Every session receives its state through the same filter so a player
// client can never learn about rooms the party has not discovered. The DM
// sees the map as stored.

// roomView projects one room for transmission
func roomView(r *gameworld.Room) *RoomView {
	view := &RoomView{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Connections: make(map[string]bool, len(r.Connections)),
		Discovered:  r.Discovered,
		Fight:       r.Fight.Clone(),
	}
	for id, from := range r.Connections {
		view.Connections[id] = from
	}
	return view
}

// snapshotFor builds the filtered projection of a map for the given role.
// Players see discovered rooms; a connection is included once at least one
// of its endpoints is discovered, so known exits show even when the far
// side is still dark.
func snapshotFor(m *gameworld.Map, role Role) *MapSnapshot {
	snapshot := &MapSnapshot{
		MapID:       m.ID,
		Name:        m.Name,
		Summary:     m.Summary,
		Version:     m.Version,
		Rooms:       make(map[string]*RoomView),
		Connections: make(map[string]*gameworld.Connection),
	}

	for id, room := range m.Rooms {
		if !role.IsDM() && !room.Discovered {
			continue
		}
		snapshot.Rooms[id] = roomView(room)
	}

	for id, conn := range m.Connections {
		if !role.IsDM() && !connectionVisible(m, conn) {
			continue
		}
		connCopy := *conn
		snapshot.Connections[id] = &connCopy
	}

	return snapshot
}

func connectionVisible(m *gameworld.Map, conn *gameworld.Connection) bool {
	if from := m.GetRoom(conn.From); from != nil && from.Discovered {
		return true
	}
	if to := m.GetRoom(conn.To); to != nil && to.Discovered {
		return true
	}
	return false
}

// roomVisible reports whether the role may observe the given room
func roomVisible(role Role, room *gameworld.Room) bool {
	if role.IsDM() {
		return true
	}
	return room != nil && room.Discovered
}
