package synchronizer

import (
	"context"
	"log"
	"sync"
	"time"

	gameparty "github.com/kyragit/Auto-DND/internal/domain/game/party"
	gameworld "github.com/kyragit/Auto-DND/internal/domain/game/world"
	internalerrors "github.com/kyragit/Auto-DND/internal/errors"
	fightsvc "github.com/kyragit/Auto-DND/internal/services/fight"
	partysvc "github.com/kyragit/Auto-DND/internal/services/party"
	worldsvc "github.com/kyragit/Auto-DND/internal/services/world"
)

var _ fightsvc.Notifier = (*Hub)(nil)

// Hub owns the connected sessions and fans state changes out to them. It
// implements the fight service's Notifier so every successful combat
// mutation reaches the clients allowed to see it.
type Hub struct {
	registry worldsvc.Registry
	fights   fightsvc.Service
	parties  partysvc.Service

	mu       sync.RWMutex
	sessions map[string]*Session
}

// HubConfig holds the hub's dependencies. Fights may be nil during wiring
// and set later with SetFights, since the fight service in turn needs the
// hub as its notifier.
type HubConfig struct {
	Registry worldsvc.Registry
	Parties  partysvc.Service
	Fights   fightsvc.Service
}

// NewHub creates a new session hub
func NewHub(cfg *HubConfig) *Hub {
	if cfg.Registry == nil {
		panic("world registry is required")
	}
	if cfg.Parties == nil {
		panic("party service is required")
	}

	return &Hub{
		registry: cfg.Registry,
		parties:  cfg.Parties,
		fights:   cfg.Fights,
		sessions: make(map[string]*Session),
	}
}

// SetFights completes the wiring loop between hub and fight service
func (h *Hub) SetFights(fights fightsvc.Service) {
	h.fights = fights
}

// Register adds a connected session
func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[s.ID] = s
	log.Printf("Session %s registered (%s)", s.ID, s.Role.Kind)
}

// Unregister drops a session; safe to call twice
func (h *Hub) Unregister(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[sessionID]; ok {
		delete(h.sessions, sessionID)
		log.Printf("Session %s unregistered", sessionID)
	}
}

func (h *Hub) session(sessionID string) (*Session, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s, ok := h.sessions[sessionID]
	if !ok {
		return nil, internalerrors.NotFoundf("session not found: %s", sessionID)
	}
	return s, nil
}

// broadcast sends the packet to every session the filter admits. A failed
// send drops the session: its channel is gone and it must reconnect.
func (h *Hub) broadcast(p *Packet, include func(*Session) bool) {
	h.mu.RLock()
	targets := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		if include == nil || include(s) {
			targets = append(targets, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range targets {
		if err := s.send(p); err != nil {
			log.Printf("Dropping session %s: send failed: %v", s.ID, err)
			h.Unregister(s.ID)
		}
	}
}

// ActionRequest is a combat action arriving over a session
type ActionRequest struct {
	FightID string
	ActorID string
	Action  *fightsvc.Action

	// Override asks for the DM path, which bypasses turn and legality
	// checks
	Override bool
}

// HandleAction validates the request against the session's role and runs
// it through the fight service. A rejected action changes nothing; the
// submitting session gets an ActionRejected packet with the reason.
func (h *Hub) HandleAction(ctx context.Context, sessionID string, req *ActionRequest) (*fightsvc.ResolutionResult, error) {
	s, err := h.session(sessionID)
	if err != nil {
		return nil, err
	}
	if req == nil || req.Action == nil {
		return nil, internalerrors.Validationf("action cannot be nil")
	}

	result, err := h.dispatchAction(ctx, s, req)
	if err != nil {
		h.reject(s, req, err)
		return nil, err
	}
	return result, nil
}

func (h *Hub) dispatchAction(ctx context.Context, s *Session, req *ActionRequest) (*fightsvc.ResolutionResult, error) {
	if req.Override {
		if !s.Role.IsDM() {
			return nil, internalerrors.PermissionDenied("only the DM can override")
		}
		return h.fights.DMOverride(ctx, req.FightID, req.ActorID, req.Action)
	}

	if !s.Role.IsDM() {
		f, err := h.fights.GetFight(ctx, req.FightID)
		if err != nil {
			return nil, err
		}
		actor := f.Combatants[req.ActorID]
		if actor == nil {
			return nil, internalerrors.NotFoundf("combatant not found: %s", req.ActorID)
		}
		if actor.CharacterID == "" || !s.Role.Owns(actor.CharacterID) {
			return nil, internalerrors.PermissionDenied("that combatant is not yours")
		}
	}

	return h.fights.SubmitAction(ctx, req.FightID, req.ActorID, req.Action)
}

func (h *Hub) reject(s *Session, req *ActionRequest, cause error) {
	p := &Packet{
		Type: PacketActionRejected,
		ActionRejected: &ActionRejected{
			FightID: req.FightID,
			ActorID: req.ActorID,
			Code:    string(internalerrors.GetCode(cause)),
			Reason:  cause.Error(),
		},
	}
	if err := s.send(p); err != nil {
		log.Printf("Dropping session %s: send failed: %v", s.ID, err)
		h.Unregister(s.ID)
	}
}

// GetMapSnapshot returns the session's filtered view of a map and records
// the version as acknowledged
func (h *Hub) GetMapSnapshot(ctx context.Context, mapID, sessionID string) (*MapSnapshot, error) {
	s, err := h.session(sessionID)
	if err != nil {
		return nil, err
	}

	m, err := h.registry.Get(ctx, mapID)
	if err != nil {
		return nil, err
	}

	snapshot := snapshotFor(m, s.Role)
	s.Ack(mapID, m.Version)
	return snapshot, nil
}

// RevealRoom marks a room discovered so players can see it. DM only.
func (h *Hub) RevealRoom(ctx context.Context, sessionID, mapID, roomID string) error {
	s, err := h.session(sessionID)
	if err != nil {
		return err
	}
	if !s.Role.IsDM() {
		return internalerrors.PermissionDenied("only the DM reveals rooms")
	}

	var revealed *gameworld.Room
	var version int64
	err = h.registry.Update(ctx, mapID, func(m *gameworld.Map) error {
		room := m.GetRoom(roomID)
		if room == nil {
			return internalerrors.NotFoundf("room not found: %s", roomID)
		}
		room.Discovered = true
		version = m.Version + 1
		revealed = room.Clone()
		return nil
	})
	if err != nil {
		return err
	}

	h.broadcast(&Packet{
		Type: PacketRoomDelta,
		RoomDelta: &RoomDelta{
			MapID:   mapID,
			Version: version,
			Room:    roomView(revealed),
		},
	}, func(s *Session) bool {
		return s.LastAck(mapID) < version
	})
	return nil
}

// AllocateXP moves pending party XP to the members' sheets. DM only.
func (h *Hub) AllocateXP(ctx context.Context, sessionID, partyID string, distribution map[string]int) (*partysvc.AllocationResult, error) {
	s, err := h.session(sessionID)
	if err != nil {
		return nil, err
	}
	if !s.Role.IsDM() {
		return nil, internalerrors.PermissionDenied("only the DM allocates XP")
	}

	result, err := h.parties.Allocate(ctx, partyID, distribution)
	if err != nil {
		return nil, err
	}

	h.broadcastPartyDelta(ctx, partyID, result)
	return result, nil
}

func (h *Hub) broadcastPartyDelta(ctx context.Context, partyID string, allocation *partysvc.AllocationResult) {
	p, err := h.parties.GetParty(ctx, partyID)
	if err != nil {
		log.Printf("Failed to load party %s for broadcast: %v", partyID, err)
		return
	}

	h.broadcast(&Packet{
		Type: PacketPartyDelta,
		PartyDelta: &PartyDelta{
			Party:      p,
			Allocation: allocation,
		},
	}, func(s *Session) bool {
		return partyVisible(s.Role, p)
	})
}

// partyVisible admits the DM and any player controlling a member
func partyVisible(role Role, p *gameparty.Party) bool {
	if role.IsDM() {
		return true
	}
	for _, m := range p.Members {
		if role.Owns(m.CharacterID) {
			return true
		}
	}
	return false
}

// Chat relays table talk to every session
func (h *Hub) Chat(sessionID, message string) error {
	s, err := h.session(sessionID)
	if err != nil {
		return err
	}

	h.broadcast(&Packet{
		Type: PacketChatLog,
		ChatLog: &ChatLog{
			From:    s.ID,
			Message: message,
			SentAt:  time.Now(),
		},
	}, nil)
	return nil
}

// FightUpdated implements the fight service's Notifier: after any
// successful fight mutation, push a delta to every session whose view
// includes the room and that is still behind the map version.
func (h *Hub) FightUpdated(update *fightsvc.FightUpdate) {
	m, err := h.registry.Get(context.Background(), update.MapID)
	if err != nil {
		log.Printf("Failed to load map %s for fight broadcast: %v", update.MapID, err)
		return
	}
	room := m.GetRoom(update.RoomID)

	delta := &FightDelta{
		MapID:   update.MapID,
		RoomID:  update.RoomID,
		Version: update.MapVersion,
		Fight:   update.Fight,
		Result:  update.Result,
	}
	// Skip sessions that already confirmed this version of the map, for
	// example through a snapshot fetched after the mutation persisted
	h.broadcast(&Packet{Type: PacketFightDelta, FightDelta: delta}, func(s *Session) bool {
		return roomVisible(s.Role, room) && s.LastAck(update.MapID) < update.MapVersion
	})

	// Party pools change when a fight resolves with a party win
	if update.Result != nil && update.Result.FightEnded && update.Result.XPAwarded > 0 && update.Fight != nil {
		h.broadcastPartyDelta(context.Background(), update.Fight.PartyID, nil)
	}
}
