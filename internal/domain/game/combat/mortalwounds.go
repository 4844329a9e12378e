package combat

import (
	"github.com/kyragit/Auto-DND/internal/dice"
)

// MortalWoundOutcome is the terminal fate of a combatant dropped to 0 HP
// or below
type MortalWoundOutcome string

const (
	// MortalWoundStable means the combatant pulls through cleanly
	MortalWoundStable MortalWoundOutcome = "stable"

	// MortalWoundMaimed means the combatant survives with a lasting injury
	MortalWoundMaimed MortalWoundOutcome = "maimed_but_stable"

	// MortalWoundDies means the combatant is dead
	MortalWoundDies MortalWoundOutcome = "dies"
)

// MortalWoundResult records a resolved mortal-wound check on a combatant
type MortalWoundResult struct {
	Roll    int                `json:"roll"`
	Total   int                `json:"total"`
	Outcome MortalWoundOutcome `json:"outcome"`
}

// hitDieBonus maps a combatant's class hit die to its mortal-wound bonus
func hitDieBonus(sides int) int {
	switch {
	case sides >= 12:
		return 8
	case sides >= 10:
		return 6
	case sides >= 8:
		return 4
	case sides >= 6:
		return 2
	default:
		return 0
	}
}

// hpRatioModifier penalizes how far below zero the combatant was driven
func hpRatioModifier(remaining, max int) int {
	if max < 1 {
		max = 1
	}
	ratio := float64(remaining) / float64(max)
	switch {
	case ratio >= -0.25:
		return 5
	case ratio >= -0.5:
		return -2
	case ratio >= -1.0:
		return -5
	case ratio >= -2.0:
		return -10
	default:
		return -20
	}
}

// ResolveMortalWound maps a d20 roll to the combatant's fate once HP
// reaches 0 or below. Monsters simply die; the survival table belongs to
// party combatants. For the party side the total is the roll plus the CON
// modifier, a bonus for tougher hit dice, and a penalty for how deeply
// negative the HP went: 16 and up is stable, 1-15 is maimed but stable,
// 0 and below dies. The result is recorded on the combatant; death also
// sets the dead flag. Survivors recover at 1 HP but take no further part
// in the fight.
func ResolveMortalWound(c *Combatant, roll *dice.RollResult) *MortalWoundResult {
	if c.Side == SideMonster {
		result := &MortalWoundResult{Outcome: MortalWoundDies}
		if roll != nil {
			result.Roll = roll.Total
			result.Total = roll.Total
		}
		c.Dead = true
		c.MortalWound = result
		return result
	}

	total := roll.Total
	total += c.ConModifier
	total += hitDieBonus(c.HitDie)
	total += hpRatioModifier(c.CurrentHP, c.MaxHP)

	result := &MortalWoundResult{
		Roll:  roll.Total,
		Total: total,
	}

	switch {
	case total >= 16:
		result.Outcome = MortalWoundStable
	case total >= 1:
		result.Outcome = MortalWoundMaimed
	default:
		result.Outcome = MortalWoundDies
		c.Dead = true
	}

	// Survivors recover at 1 HP. They still cannot act for the rest of
	// the fight; CanAct keys off the recorded wound.
	if result.Outcome != MortalWoundDies {
		c.CurrentHP = 1
	}

	c.MortalWound = result
	return result
}
