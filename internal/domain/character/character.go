package character

// Attribute identifies one of the six ability scores
type Attribute string

const (
	AttributeStrength     Attribute = "STR"
	AttributeDexterity    Attribute = "DEX"
	AttributeConstitution Attribute = "CON"
	AttributeIntelligence Attribute = "INT"
	AttributeWisdom       Attribute = "WIS"
	AttributeCharisma     Attribute = "CHA"
)

// Attributes holds the six basic ability scores
type Attributes struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// Score returns the raw value of the given attribute
func (a Attributes) Score(attr Attribute) int {
	switch attr {
	case AttributeStrength:
		return a.Strength
	case AttributeDexterity:
		return a.Dexterity
	case AttributeConstitution:
		return a.Constitution
	case AttributeIntelligence:
		return a.Intelligence
	case AttributeWisdom:
		return a.Wisdom
	case AttributeCharisma:
		return a.Charisma
	}
	return 0
}

// Modifier returns the modifier for the given attribute.
// 3: -3, 4-5: -2, 6-8: -1, 9-12: 0, 13-15: +1, 16-17: +2, 18+: +3
func (a Attributes) Modifier(attr Attribute) int {
	score := a.Score(attr)
	switch {
	case score >= 18:
		return 3
	case score >= 16:
		return 2
	case score >= 13:
		return 1
	case score >= 9:
		return 0
	case score >= 6:
		return -1
	case score >= 4:
		return -2
	default:
		return -3
	}
}

// SaveType identifies a saving throw category
type SaveType string

const (
	SavePetrificationParalysis SaveType = "petrification_paralysis"
	SavePoisonDeath            SaveType = "poison_death"
	SaveBlastBreath            SaveType = "blast_breath"
	SaveStaffsWands            SaveType = "staffs_wands"
	SaveSpells                 SaveType = "spells"
)

// SavingThrows holds target-20 saving throw modifiers: a save succeeds on
// a natural 20 or when roll + modifier reaches 20
type SavingThrows struct {
	PetrificationParalysis int `json:"petrification_paralysis"`
	PoisonDeath            int `json:"poison_death"`
	BlastBreath            int `json:"blast_breath"`
	StaffsWands            int `json:"staffs_wands"`
	Spells                 int `json:"spells"`
}

// Modifier returns the modifier for the given save type
func (s SavingThrows) Modifier(save SaveType) int {
	switch save {
	case SavePetrificationParalysis:
		return s.PetrificationParalysis
	case SavePoisonDeath:
		return s.PoisonDeath
	case SaveBlastBreath:
		return s.BlastBreath
	case SaveStaffsWands:
		return s.StaffsWands
	case SaveSpells:
		return s.Spells
	}
	return 0
}

// Character is the player character record owned by the character sheet
// store. The combat engine mutates HP, status and XP through store
// operations only, never by replacing the record wholesale.
type Character struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Name    string `json:"name"`
	Level   int    `json:"level"`

	Attributes   Attributes   `json:"attributes"`
	SavingThrows SavingThrows `json:"saving_throws"`

	MaxHitPoints     int `json:"max_hit_points"`
	CurrentHitPoints int `json:"current_hit_points"`
	HitDie           int `json:"hit_die"` // Sides of the class hit die (4, 6, 8, 10 or 12)
	ArmorClass       int `json:"armor_class"`
	AttackThrow      int `json:"attack_throw"`

	DamageDice  int `json:"damage_dice"`  // Number of weapon damage dice
	DamageSides int `json:"damage_sides"` // Sides of the weapon damage dice
	DamageBonus int `json:"damage_bonus"`

	// XP is banked experience; pending experience lives in the party pool
	// until the DM allocates it
	XP int `json:"xp"`
}

// IsAlive returns true if the character has more than 0 HP
func (c *Character) IsAlive() bool {
	return c.CurrentHitPoints > 0
}
