package combat

import (
	"github.com/kyragit/Auto-DND/internal/domain/character"
)

// Side represents which side of a fight a combatant is on
type Side string

const (
	SideParty   Side = "party"
	SideMonster Side = "monster"
)

// Combatant represents a participant in a fight. Party combatants reference
// a character in the sheet store; monster combatants carry their template
// values inline.
type Combatant struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Side            Side   `json:"side"`
	Initiative      int    `json:"initiative"`
	InitiativeBonus int    `json:"initiative_bonus"`

	CurrentHP   int `json:"current_hp"`
	MaxHP       int `json:"max_hp"`
	HitDie      int `json:"hit_die"`
	ArmorClass  int `json:"armor_class"`
	AttackThrow int `json:"attack_throw"`

	DamageDice  int `json:"damage_dice"`
	DamageSides int `json:"damage_sides"`
	DamageBonus int `json:"damage_bonus"`

	ConModifier  int                    `json:"con_modifier"`
	SavingThrows character.SavingThrows `json:"saving_throws"`

	// For party combatants
	PlayerID    string `json:"player_id,omitempty"`
	CharacterID string `json:"character_id,omitempty"`

	// For monster combatants
	Morale  int `json:"morale,omitempty"` // Morale score, typically -6..+4
	XPValue int `json:"xp_value,omitempty"`

	// Status flags. A combatant is never removed from the fight; defeat
	// and flight are recorded here so the fight keeps its full history.
	Dead        bool               `json:"dead"`
	Fled        bool               `json:"fled"`
	Surrendered bool               `json:"surrendered"`
	MortalWound *MortalWoundResult `json:"mortal_wound,omitempty"`
}

// IsOut returns true if the combatant no longer counts toward their side:
// dead, fled, or surrendered
func (c *Combatant) IsOut() bool {
	return c.Dead || c.Fled || c.Surrendered
}

// IsDown returns true if the combatant's HP has reached 0 or below
func (c *Combatant) IsDown() bool {
	return c.CurrentHP <= 0
}

// CanAct returns true if the combatant may take or receive actions: still
// in the fight, conscious, and not resolved into a mortal-wound state
func (c *Combatant) CanAct() bool {
	return !c.IsOut() && !c.IsDown() && c.MortalWound == nil
}

// ApplyDamage reduces the combatant's HP. HP is allowed to go negative;
// the remaining ratio against max HP feeds the mortal-wound check, which
// must resolve before any further action involves this combatant.
func (c *Combatant) ApplyDamage(damage int) {
	c.CurrentHP -= damage
}

// Clone returns a deep copy of the combatant
func (c *Combatant) Clone() *Combatant {
	if c == nil {
		return nil
	}

	clone := *c
	if c.MortalWound != nil {
		wound := *c.MortalWound
		clone.MortalWound = &wound
	}
	return &clone
}
