package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyragit/Auto-DND/internal/dice"
	"github.com/kyragit/Auto-DND/internal/domain/character"
)

func d20(total int) *dice.RollResult {
	return &dice.RollResult{
		Total:    total,
		RawTotal: total,
		Rolls:    []int{total},
		Count:    1,
		Sides:    20,
		IsCrit:   total == 20,
		IsFumble: total == 1,
	}
}

func damage(total int) *dice.RollResult {
	return &dice.RollResult{
		Total: total,
		Count: 1,
		Sides: 8,
	}
}

func TestResolveAttack(t *testing.T) {
	tests := []struct {
		name       string
		attackRoll *dice.RollResult
		damageRoll *dice.RollResult
		modifier   int
		wantResult AttackResult
		wantDamage int
		wantHP     int
	}{
		{
			name:       "natural 1 is a critical miss",
			attackRoll: d20(1),
			damageRoll: damage(5),
			wantResult: AttackCriticalMiss,
			wantDamage: 0,
			wantHP:     7,
		},
		{
			// 10 + 10 - 6 = 14
			name:       "total 19 or less misses",
			attackRoll: d20(10),
			damageRoll: damage(5),
			wantResult: AttackMiss,
			wantDamage: 0,
			wantHP:     7,
		},
		{
			// 16 + 10 - 6 = 20, the lowest hit
			name:       "total 20 hits",
			attackRoll: d20(16),
			damageRoll: damage(5),
			wantResult: AttackHit,
			wantDamage: 5,
			wantHP:     2,
		},
		{
			// 16 + 10 + 3 - 6 = 23
			name:       "modifier counts toward the total",
			attackRoll: d20(16),
			damageRoll: damage(4),
			modifier:   3,
			wantResult: AttackHit,
			wantDamage: 4,
			wantHP:     3,
		},
		{
			// A hit never deals less than 1
			name:       "minimum damage on a hit is 1",
			attackRoll: d20(16),
			damageRoll: damage(0),
			wantResult: AttackHit,
			wantDamage: 1,
			wantHP:     6,
		},
		{
			// Exploding d20: 20 then 6 -> 26; 26 + 10 - 6 = 30
			name:       "total 30 or more doubles damage",
			attackRoll: &dice.RollResult{Total: 26, RawTotal: 26, Rolls: []int{20, 6}, Count: 2, Sides: 20, IsCrit: true},
			damageRoll: damage(3),
			wantResult: AttackCriticalHit,
			wantDamage: 6,
			wantHP:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attacker := newTestFighter()
			target := newTestGoblin("goblin-1")

			outcome := ResolveAttack(attacker, target, AttackInput{
				AttackRoll: tt.attackRoll,
				DamageRoll: tt.damageRoll,
				Modifier:   tt.modifier,
			})

			assert.Equal(t, tt.wantResult, outcome.Result)
			assert.Equal(t, tt.wantDamage, outcome.Damage)
			assert.Equal(t, tt.wantHP, outcome.TargetHP)
			assert.Equal(t, tt.wantHP, target.CurrentHP)
		})
	}
}

func TestResolveAttack_DownedMonsterDies(t *testing.T) {
	attacker := newTestFighter()
	goblin := newTestGoblin("goblin-1")

	// 16 + 10 - 6 = 20, a hit for 8 drops the 7 HP goblin to -1
	outcome := ResolveAttack(attacker, goblin, AttackInput{
		AttackRoll: d20(16),
		DamageRoll: damage(8),
	})

	assert.Equal(t, AttackHit, outcome.Result)
	assert.Equal(t, -1, goblin.CurrentHP)
	require.NotNil(t, outcome.MortalWound)
	assert.Equal(t, MortalWoundDies, outcome.MortalWound.Outcome)
	assert.True(t, goblin.Dead)
	assert.False(t, goblin.CanAct())
}

func TestResolveAttack_DownedPartyMemberRollsForSurvival(t *testing.T) {
	goblin := newTestGoblin("goblin-1")
	fighter := newTestFighter()
	fighter.ConModifier = 1
	fighter.CurrentHP = 3

	// 16 + 10 - 4 = 22, a hit for 4 drops the fighter to -1.
	// Survival: 6 + CON 1 + d8 bonus 4 + shallow-wound 5 = 16, stable.
	outcome := ResolveAttack(goblin, fighter, AttackInput{
		AttackRoll:      d20(16),
		DamageRoll:      damage(4),
		MortalWoundRoll: d20(6),
	})

	assert.Equal(t, AttackHit, outcome.Result)
	assert.Equal(t, -1, outcome.TargetHP)
	require.NotNil(t, outcome.MortalWound)
	assert.Equal(t, MortalWoundStable, outcome.MortalWound.Outcome)
	assert.False(t, fighter.Dead)
	assert.Equal(t, 1, fighter.CurrentHP, "survivors recover at 1 HP")
	assert.False(t, fighter.CanAct(), "a downed combatant takes no further turns")
}

func TestResolveMoraleCheck(t *testing.T) {
	twoD6 := func(total int) *dice.RollResult {
		return &dice.RollResult{Total: total, Count: 2, Sides: 6}
	}

	tests := []struct {
		name            string
		morale          int
		roll            int
		want            MoraleOutcome
		wantFled        bool
		wantSurrendered bool
	}{
		{name: "total 2 or less surrenders", morale: -1, roll: 3, want: MoraleSurrenders, wantSurrendered: true},
		{name: "total 3 to 5 flees", morale: -1, roll: 5, want: MoraleFlees, wantFled: true},
		{name: "total 6 or more holds", morale: -1, roll: 7, want: MoraleHolds},
		{name: "high morale holds on low rolls", morale: 4, roll: 2, want: MoraleHolds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			goblin := newTestGoblin("goblin-1")
			goblin.Morale = tt.morale

			outcome := ResolveMoraleCheck(goblin, twoD6(tt.roll))

			assert.Equal(t, tt.want, outcome)
			assert.Equal(t, tt.wantFled, goblin.Fled)
			assert.Equal(t, tt.wantSurrendered, goblin.Surrendered)
			assert.Equal(t, tt.wantFled || tt.wantSurrendered, goblin.IsOut())
		})
	}
}

func TestResolveMoraleCheck_PartyAlwaysHolds(t *testing.T) {
	fighter := newTestFighter()

	outcome := ResolveMoraleCheck(fighter, &dice.RollResult{Total: 2, Count: 2, Sides: 6})

	assert.Equal(t, MoraleHolds, outcome)
	assert.False(t, fighter.IsOut())
}

func TestResolveSavingThrow(t *testing.T) {
	fighter := newTestFighter()
	fighter.SavingThrows = character.SavingThrows{PoisonDeath: 4}

	assert.True(t, ResolveSavingThrow(fighter, character.SavePoisonDeath, d20(16)), "roll plus modifier reaches 20")
	assert.False(t, ResolveSavingThrow(fighter, character.SavePoisonDeath, d20(15)), "roll plus modifier falls short")
	assert.True(t, ResolveSavingThrow(fighter, character.SavePoisonDeath, d20(20)), "natural 20 always passes")
	assert.False(t, ResolveSavingThrow(fighter, character.SaveSpells, d20(16)), "other categories use their own modifier")
}

func TestFightXP(t *testing.T) {
	dead := newTestGoblin("goblin-1")
	dead.XPValue = 5
	surrendered := newTestGoblin("goblin-2")
	surrendered.XPValue = 10

	total := FightXP([]*Combatant{dead, surrendered}, 25)
	assert.Equal(t, 40, total)

	assert.Equal(t, 0, FightXP(nil, 0))
	assert.Equal(t, 40, FightXP([]*Combatant{dead, surrendered}, 25), "the award is deterministic")
}
