package combat

import (
	"fmt"
	"sort"
	"time"

	"github.com/kyragit/Auto-DND/internal/dice"
)

// FightStatus represents the lifecycle state of a fight
type FightStatus string

const (
	// FightStatusEmpty is the implicit state of a room with no fight;
	// it appears on a fight only transiently when the DM cancels one
	FightStatusEmpty FightStatus = "empty"

	// FightStatusForming means the DM has attached a combatant list but
	// combat has not started
	FightStatusForming FightStatus = "forming"

	// FightStatusActiveInitiative means initiative has been rolled and
	// the order can still be adjusted
	FightStatusActiveInitiative FightStatus = "active_initiative"

	// FightStatusActiveRound means the order is fixed and rounds are
	// being fought
	FightStatusActiveRound FightStatus = "active_round"

	// FightStatusResolved is terminal; the fight stays embedded in its
	// room as historical state until the DM clears it
	FightStatusResolved FightStatus = "resolved"
)

const combatLogLimit = 100

// Fight is a combat encounter embedded in exactly one room
type Fight struct {
	ID     string      `json:"id"`
	Status FightStatus `json:"status"`

	// Round starts at 0 and never decreases; it becomes 1 when the fight
	// enters the active-round state
	Round int `json:"round"`

	// Turn indexes into TurnOrder
	Turn int `json:"turn"`

	Combatants map[string]*Combatant `json:"combatants"`
	TurnOrder  []string              `json:"turn_order"`
	CombatLog  []string              `json:"combat_log"`

	// PartyID is the party whose pending pool receives the fight's XP
	PartyID string `json:"party_id"`

	// TreasureValue in gold feeds the XP award on resolution
	TreasureValue int `json:"treasure_value"`

	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// NewFight creates a fight in the forming state
func NewFight(id, partyID string) *Fight {
	return &Fight{
		ID:         id,
		Status:     FightStatusForming,
		PartyID:    partyID,
		Combatants: make(map[string]*Combatant),
		TurnOrder:  []string{},
		CombatLog:  []string{},
		CreatedAt:  time.Now(),
	}
}

// AddCombatant adds a combatant while the fight is forming
func (f *Fight) AddCombatant(c *Combatant) {
	f.Combatants[c.ID] = c
}

// IsActive returns true if the fight accepts resolution calls
func (f *Fight) IsActive() bool {
	return f.Status == FightStatusActiveInitiative || f.Status == FightStatusActiveRound
}

// RollInitiative rolls d6 + bonus for every combatant and fixes a
// descending order. Party combatants act before monsters on ties. Moves the
// fight from forming to active-initiative.
func (f *Fight) RollInitiative(roller dice.Roller) error {
	if f.Status != FightStatusForming {
		return fmt.Errorf("fight %s is not forming", f.ID)
	}
	if len(f.Combatants) == 0 {
		return fmt.Errorf("fight %s has no combatants", f.ID)
	}

	// Roll in sorted ID order so an identical roll sequence always
	// assigns the same die to the same combatant
	ids := make([]string, 0, len(f.Combatants))
	for id := range f.Combatants {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	f.TurnOrder = make([]string, 0, len(f.Combatants))
	for _, id := range ids {
		c := f.Combatants[id]
		result, err := roller.Roll(1, 6, c.InitiativeBonus)
		if err != nil {
			return err
		}
		c.Initiative = result.Total
		f.TurnOrder = append(f.TurnOrder, id)
		f.addLog(fmt.Sprintf("%s rolls initiative: %d + %d = %d", c.Name, result.Rolls[0], c.InitiativeBonus, c.Initiative))
	}

	sort.SliceStable(f.TurnOrder, func(i, j int) bool {
		a := f.Combatants[f.TurnOrder[i]]
		b := f.Combatants[f.TurnOrder[j]]
		if a.Initiative != b.Initiative {
			return a.Initiative > b.Initiative
		}
		// Party acts before monsters on ties
		return a.Side == SideParty && b.Side == SideMonster
	})

	f.Status = FightStatusActiveInitiative
	return nil
}

// BeginRounds fixes the initiative order and starts round 1
func (f *Fight) BeginRounds() error {
	if f.Status != FightStatusActiveInitiative {
		return fmt.Errorf("fight %s has not rolled initiative", f.ID)
	}

	now := time.Now()
	f.Status = FightStatusActiveRound
	f.StartedAt = &now
	f.Round = 1
	f.Turn = 0
	f.skipIneligible()
	f.addLog("Round 1 begins")
	return nil
}

// CurrentCombatant returns the combatant whose turn it is, or nil
func (f *Fight) CurrentCombatant() *Combatant {
	if f.Status != FightStatusActiveRound {
		return nil
	}
	if f.Turn < len(f.TurnOrder) {
		return f.Combatants[f.TurnOrder[f.Turn]]
	}
	return nil
}

// NextTurn advances to the next eligible combatant, starting a new round
// when the order wraps. The round counter only ever increases.
func (f *Fight) NextTurn() {
	if f.Status != FightStatusActiveRound {
		return
	}

	f.Turn++
	f.skipIneligible()

	if f.Turn >= len(f.TurnOrder) {
		f.Round++
		f.Turn = 0
		f.addLog(fmt.Sprintf("Round %d begins", f.Round))
		f.skipIneligible()
	}
}

// skipIneligible moves the turn index past combatants that cannot act
func (f *Fight) skipIneligible() {
	for f.Turn < len(f.TurnOrder) {
		if c, ok := f.Combatants[f.TurnOrder[f.Turn]]; ok && c.CanAct() {
			return
		}
		f.Turn++
	}
}

// CheckEnd reports whether one side has no combatants left that are
// neither dead, fled, nor surrendered, and if so which side won
func (f *Fight) CheckEnd() (ended bool, winner Side) {
	partyLeft := 0
	monstersLeft := 0

	for _, c := range f.Combatants {
		if c.IsOut() {
			continue
		}
		switch c.Side {
		case SideParty:
			partyLeft++
		case SideMonster:
			monstersLeft++
		}
	}

	if monstersLeft == 0 && partyLeft > 0 {
		return true, SideParty
	}
	if partyLeft == 0 && monstersLeft > 0 {
		return true, SideMonster
	}
	return false, ""
}

// Resolve moves the fight to its terminal state
func (f *Fight) Resolve() {
	if f.Status == FightStatusResolved {
		return
	}
	now := time.Now()
	f.Status = FightStatusResolved
	f.ResolvedAt = &now
}

// Defeated returns the monster-side combatants that were overcome: killed
// or forced to surrender. Fled monsters escaped and award nothing.
func (f *Fight) Defeated() []*Combatant {
	var defeated []*Combatant
	for _, id := range f.TurnOrder {
		c := f.Combatants[id]
		if c.Side == SideMonster && (c.Dead || c.Surrendered) {
			defeated = append(defeated, c)
		}
	}
	return defeated
}

// AddLogEntry appends a combat log entry prefixed with the round number
func (f *Fight) AddLogEntry(entry string) {
	f.addLog(entry)
}

func (f *Fight) addLog(entry string) {
	if f.CombatLog == nil {
		f.CombatLog = []string{}
	}
	f.CombatLog = append(f.CombatLog, fmt.Sprintf("Round %d: %s", f.Round, entry))

	if len(f.CombatLog) > combatLogLimit {
		f.CombatLog = f.CombatLog[len(f.CombatLog)-combatLogLimit:]
	}
}

// Clone returns a deep copy of the fight
func (f *Fight) Clone() *Fight {
	if f == nil {
		return nil
	}

	clone := *f
	clone.Combatants = make(map[string]*Combatant, len(f.Combatants))
	for id, c := range f.Combatants {
		clone.Combatants[id] = c.Clone()
	}
	// Preserve empty (non-nil) slices so a clone compares equal to a
	// JSON round-trip of the original
	if f.TurnOrder != nil {
		clone.TurnOrder = make([]string, len(f.TurnOrder))
		copy(clone.TurnOrder, f.TurnOrder)
	}
	if f.CombatLog != nil {
		clone.CombatLog = make([]string, len(f.CombatLog))
		copy(clone.CombatLog, f.CombatLog)
	}
	if f.StartedAt != nil {
		t := *f.StartedAt
		clone.StartedAt = &t
	}
	if f.ResolvedAt != nil {
		t := *f.ResolvedAt
		clone.ResolvedAt = &t
	}
	return &clone
}
