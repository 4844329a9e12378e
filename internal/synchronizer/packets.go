package synchronizer

import (
	"time"

	"github.com/kyragit/Auto-DND/internal/domain/game/combat"
	gameparty "github.com/kyragit/Auto-DND/internal/domain/game/party"
	gameworld "github.com/kyragit/Auto-DND/internal/domain/game/world"
	"github.com/kyragit/Auto-DND/internal/services/fight"
	partysvc "github.com/kyragit/Auto-DND/internal/services/party"
)

// PacketType tags the payload of a packet
type PacketType string

const (
	PacketMapSnapshot    PacketType = "map_snapshot"
	PacketRoomDelta      PacketType = "room_delta"
	PacketFightDelta     PacketType = "fight_delta"
	PacketPartyDelta     PacketType = "party_delta"
	PacketActionRejected PacketType = "action_rejected"
	PacketChatLog        PacketType = "chat_log"
)

// Packet is the single envelope pushed over a session's channel. Exactly
// one payload field is set, selected by Type.
type Packet struct {
	Type PacketType `json:"type"`

	MapSnapshot    *MapSnapshot    `json:"map_snapshot,omitempty"`
	RoomDelta      *RoomDelta      `json:"room_delta,omitempty"`
	FightDelta     *FightDelta     `json:"fight_delta,omitempty"`
	PartyDelta     *PartyDelta     `json:"party_delta,omitempty"`
	ActionRejected *ActionRejected `json:"action_rejected,omitempty"`
	ChatLog        *ChatLog        `json:"chat_log,omitempty"`
}

// RoomView is a room as a session is allowed to see it
type RoomView struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Connections map[string]bool `json:"connections"`
	Discovered  bool            `json:"discovered"`
	Fight       *combat.Fight   `json:"fight,omitempty"`
}

// MapSnapshot is a full filtered projection of one map
type MapSnapshot struct {
	MapID       string                           `json:"map_id"`
	Name        string                           `json:"name"`
	Summary     string                           `json:"summary"`
	Version     int64                            `json:"version"`
	Rooms       map[string]*RoomView             `json:"rooms"`
	Connections map[string]*gameworld.Connection `json:"connections"`
}

// RoomDelta announces that one room changed
type RoomDelta struct {
	MapID   string    `json:"map_id"`
	Version int64     `json:"version"`
	Room    *RoomView `json:"room"`
}

// FightDelta announces a fight mutation. Fight is nil when the fight was
// cancelled or cleared from its room.
type FightDelta struct {
	MapID   string                  `json:"map_id"`
	RoomID  string                  `json:"room_id"`
	Version int64                   `json:"version"`
	Fight   *combat.Fight           `json:"fight,omitempty"`
	Result  *fight.ResolutionResult `json:"result,omitempty"`
}

// PartyDelta announces a party ledger change
type PartyDelta struct {
	Party      *gameparty.Party           `json:"party"`
	Allocation *partysvc.AllocationResult `json:"allocation,omitempty"`
}

// ActionRejected tells the submitting session why its action did nothing
type ActionRejected struct {
	FightID string `json:"fight_id"`
	ActorID string `json:"actor_id"`
	Code    string `json:"code"`
	Reason  string `json:"reason"`
}

// ChatLog carries a table-talk message
type ChatLog struct {
	From    string    `json:"from"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}
