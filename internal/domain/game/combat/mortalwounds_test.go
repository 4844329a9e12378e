package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveMortalWound_PartyTable(t *testing.T) {
	tests := []struct {
		name        string
		roll        int
		conModifier int
		hitDie      int
		currentHP   int
		maxHP       int
		wantTotal   int
		wantOutcome MortalWoundOutcome
		wantDead    bool
		wantHP      int
	}{
		{
			// 6 + 1 + 4 + 5 = 16, the lowest stable total
			name:        "stable at 16",
			roll:        6,
			conModifier: 1,
			hitDie:      8,
			currentHP:   -1,
			maxHP:       12,
			wantTotal:   16,
			wantOutcome: MortalWoundStable,
			wantHP:      1,
		},
		{
			// 5 + 1 + 4 + 5 = 15, one short of stable
			name:        "maimed at 15",
			roll:        5,
			conModifier: 1,
			hitDie:      8,
			currentHP:   -1,
			maxHP:       12,
			wantTotal:   15,
			wantOutcome: MortalWoundMaimed,
			wantHP:      1,
		},
		{
			// 11 + 0 + 0 + (-10) = 1, the lowest survivable total
			name:        "maimed at 1",
			roll:        11,
			conModifier: 0,
			hitDie:      4,
			currentHP:   -13,
			maxHP:       10,
			wantTotal:   1,
			wantOutcome: MortalWoundMaimed,
			wantHP:      1,
		},
		{
			// 10 + 0 + 0 + (-10) = 0
			name:        "dies at 0",
			roll:        10,
			conModifier: 0,
			hitDie:      4,
			currentHP:   -13,
			maxHP:       10,
			wantTotal:   0,
			wantOutcome: MortalWoundDies,
			wantDead:    true,
			wantHP:      -13,
		},
		{
			// Even a natural 20 cannot survive a deep enough wound:
			// 20 + (-2) + 0 + (-20) = -2
			name:        "obliterated",
			roll:        20,
			conModifier: -2,
			hitDie:      4,
			currentHP:   -25,
			maxHP:       10,
			wantTotal:   -2,
			wantOutcome: MortalWoundDies,
			wantDead:    true,
			wantHP:      -25,
		},
		{
			// Tough classes shrug off shallow wounds:
			// 1 + 2 + 8 + 5 = 16
			name:        "d12 hit die bonus",
			roll:        1,
			conModifier: 2,
			hitDie:      12,
			currentHP:   0,
			maxHP:       14,
			wantTotal:   16,
			wantOutcome: MortalWoundStable,
			wantHP:      1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Combatant{
				ID:          "fighter-1",
				Side:        SideParty,
				ConModifier: tt.conModifier,
				HitDie:      tt.hitDie,
				CurrentHP:   tt.currentHP,
				MaxHP:       tt.maxHP,
			}

			result := ResolveMortalWound(c, d20(tt.roll))
			require.NotNil(t, result)

			assert.Equal(t, tt.roll, result.Roll)
			assert.Equal(t, tt.wantTotal, result.Total)
			assert.Equal(t, tt.wantOutcome, result.Outcome)
			assert.Equal(t, tt.wantDead, c.Dead)
			assert.Equal(t, tt.wantHP, c.CurrentHP)
			assert.Equal(t, result, c.MortalWound)
			assert.False(t, c.CanAct())
		})
	}
}

func TestResolveMortalWound_HPRatioModifier(t *testing.T) {
	tests := []struct {
		remaining int
		max       int
		want      int
	}{
		{0, 12, 5},
		{-3, 12, 5},   // -0.25
		{-4, 12, -2},  // just below -0.25
		{-6, 12, -2},  // -0.5
		{-7, 12, -5},  // just below -0.5
		{-12, 12, -5}, // -1.0
		{-13, 12, -10},
		{-24, 12, -10}, // -2.0
		{-25, 12, -20},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, hpRatioModifier(tt.remaining, tt.max),
			"remaining %d of %d", tt.remaining, tt.max)
	}
}

func TestResolveMortalWound_MonstersDie(t *testing.T) {
	goblin := newTestGoblin("goblin-1")
	goblin.CurrentHP = -1

	result := ResolveMortalWound(goblin, nil)
	require.NotNil(t, result)

	assert.Equal(t, MortalWoundDies, result.Outcome)
	assert.True(t, goblin.Dead)
	assert.True(t, goblin.IsOut())
}
