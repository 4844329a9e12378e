package combat

import (
	"github.com/kyragit/Auto-DND/internal/dice"
	"github.com/kyragit/Auto-DND/internal/domain/character"
)

// All resolution functions take their rolls as explicit arguments so
// outcomes are replayable and the DM can override rolls before commit.
// They mutate combatant state only; fight lifecycle checks live in the
// fight service.

// AttackResult classifies an attack roll
type AttackResult string

const (
	AttackCriticalMiss AttackResult = "critical_miss"
	AttackMiss         AttackResult = "miss"
	AttackHit          AttackResult = "hit"
	AttackCriticalHit  AttackResult = "critical_hit"
)

// AttackInput carries the rolls for one attack. AttackRoll is an exploding
// d20; DamageRoll is the attacker's weapon damage dice including bonus.
// MortalWoundRoll is consumed only if the target drops to 0 HP or below.
type AttackInput struct {
	AttackRoll      *dice.RollResult
	DamageRoll      *dice.RollResult
	Modifier        int
	MortalWoundRoll *dice.RollResult
}

// AttackOutcome reports what an attack did
type AttackOutcome struct {
	Result      AttackResult       `json:"result"`
	AttackTotal int                `json:"attack_total"`
	Damage      int                `json:"damage"`
	TargetHP    int                `json:"target_hp"`
	MortalWound *MortalWoundResult `json:"mortal_wound,omitempty"`
}

// ResolveAttack computes hit or miss against the target's armor class and
// applies damage on a hit. A natural 1 is a critical miss. The attack
// total is the exploding d20 plus the attacker's attack throw and
// situational modifier, minus the target's armor class: 19 and below
// misses, 20-29 hits, 30 and up is a critical hit for double damage.
// A target dropped to 0 HP or below immediately resolves a mortal wound.
func ResolveAttack(attacker, target *Combatant, input AttackInput) *AttackOutcome {
	outcome := &AttackOutcome{TargetHP: target.CurrentHP}

	if input.AttackRoll.IsFumble {
		outcome.Result = AttackCriticalMiss
		return outcome
	}

	total := input.AttackRoll.Total + attacker.AttackThrow + input.Modifier - target.ArmorClass
	outcome.AttackTotal = total

	switch {
	case total <= 19:
		outcome.Result = AttackMiss
		return outcome
	case total <= 29:
		outcome.Result = AttackHit
		outcome.Damage = input.DamageRoll.Total
	default:
		outcome.Result = AttackCriticalHit
		outcome.Damage = input.DamageRoll.Total * 2
	}

	// A hit always deals at least 1 damage
	if outcome.Damage < 1 {
		outcome.Damage = 1
	}

	target.ApplyDamage(outcome.Damage)
	outcome.TargetHP = target.CurrentHP

	if target.IsDown() {
		outcome.MortalWound = ResolveMortalWound(target, input.MortalWoundRoll)
	}

	return outcome
}

// MoraleOutcome classifies a morale check
type MoraleOutcome string

const (
	MoraleHolds      MoraleOutcome = "holds"
	MoraleFlees      MoraleOutcome = "flees"
	MoraleSurrenders MoraleOutcome = "surrenders"
)

// ResolveMoraleCheck rolls 2d6 + the combatant's morale score: 2 or less
// surrenders, 3-5 flees, 6 and up holds. A failed check flags the
// combatant out of the active turn order without deleting it from the
// fight's history. Party combatants always hold.
func ResolveMoraleCheck(c *Combatant, roll *dice.RollResult) MoraleOutcome {
	if c.Side == SideParty {
		return MoraleHolds
	}

	total := roll.Total + c.Morale
	switch {
	case total <= 2:
		c.Surrendered = true
		return MoraleSurrenders
	case total <= 5:
		c.Fled = true
		return MoraleFlees
	default:
		return MoraleHolds
	}
}

// ResolveSavingThrow compares a d20 roll against the target-20 convention:
// the save passes on a natural 20, or when the roll plus the combatant's
// modifier for the given save category reaches 20.
func ResolveSavingThrow(c *Combatant, save character.SaveType, roll *dice.RollResult) bool {
	if roll.IsCrit {
		return true
	}
	return roll.Total+c.SavingThrows.Modifier(save) >= 20
}
