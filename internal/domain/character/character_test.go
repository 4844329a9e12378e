package character_test

import (
	"testing"

	"github.com/kyragit/Auto-DND/internal/domain/character"
	"github.com/stretchr/testify/assert"
)

func TestAttributes_Modifier(t *testing.T) {
	tests := []struct {
		score int
		want  int
	}{
		{3, -3},
		{4, -2},
		{5, -2},
		{6, -1},
		{8, -1},
		{9, 0},
		{12, 0},
		{13, 1},
		{15, 1},
		{16, 2},
		{17, 2},
		{18, 3},
		{19, 3},
	}

	for _, tt := range tests {
		attrs := character.Attributes{Strength: tt.score}
		assert.Equalf(t, tt.want, attrs.Modifier(character.AttributeStrength), "score %d", tt.score)
	}
}

func TestSavingThrows_Modifier(t *testing.T) {
	saves := character.SavingThrows{
		PetrificationParalysis: 7,
		PoisonDeath:            9,
		BlastBreath:            4,
		StaffsWands:            6,
		Spells:                 5,
	}

	assert.Equal(t, 7, saves.Modifier(character.SavePetrificationParalysis))
	assert.Equal(t, 9, saves.Modifier(character.SavePoisonDeath))
	assert.Equal(t, 4, saves.Modifier(character.SaveBlastBreath))
	assert.Equal(t, 6, saves.Modifier(character.SaveStaffsWands))
	assert.Equal(t, 5, saves.Modifier(character.SaveSpells))
}
