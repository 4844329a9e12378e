package synchronizer

import (
	"sync"
)

// RoleKind separates the two capability levels a connection can hold
type RoleKind string

const (
	RolePlayer RoleKind = "player"
	RoleDM     RoleKind = "dm"
)

// Role is a session's capability: a player controls a fixed set of
// characters and sees only discovered rooms; the DM controls and sees
// everything.
type Role struct {
	Kind         RoleKind `json:"kind"`
	CharacterIDs []string `json:"character_ids,omitempty"`
}

// PlayerRole builds a player role for the given characters
func PlayerRole(characterIDs ...string) Role {
	return Role{Kind: RolePlayer, CharacterIDs: characterIDs}
}

// DMRole builds the DM role
func DMRole() Role {
	return Role{Kind: RoleDM}
}

// IsDM returns true for the DM role
func (r Role) IsDM() bool {
	return r.Kind == RoleDM
}

// Owns returns true if the role controls the given character. The DM
// controls every character.
func (r Role) Owns(characterID string) bool {
	if r.IsDM() {
		return true
	}
	for _, id := range r.CharacterIDs {
		if id == characterID {
			return true
		}
	}
	return false
}

// Sender is the externally supplied half of a connection: a reliable
// ordered channel to one client. Implementations decide framing and
// transport.
type Sender interface {
	Send(p *Packet) error
}

// Session is the server-side state of one connection
type Session struct {
	ID   string
	Role Role

	sender Sender

	mu   sync.Mutex
	acks map[string]int64
}

// NewSession creates a session for a connected client
func NewSession(id string, role Role, sender Sender) *Session {
	return &Session{
		ID:     id,
		Role:   role,
		sender: sender,
		acks:   make(map[string]int64),
	}
}

// send pushes one packet down the session's channel
func (s *Session) send(p *Packet) error {
	return s.sender.Send(p)
}

// Ack records the newest map version the client has confirmed
func (s *Session) Ack(mapID string, version int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if version > s.acks[mapID] {
		s.acks[mapID] = version
	}
}

// LastAck returns the newest acknowledged version of the map, or 0
func (s *Session) LastAck(mapID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acks[mapID]
}
