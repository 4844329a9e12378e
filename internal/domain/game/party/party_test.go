package party

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParty_AddMember(t *testing.T) {
	p := NewParty("party-1", "The Bold")

	p.AddMember(Member{CharacterID: "char-1", Name: "Brannic"})
	p.AddMember(Member{CharacterID: "char-2", Name: "Wren", Henchman: true})
	require.Len(t, p.Members, 2)

	// Re-adding replaces instead of duplicating
	p.AddMember(Member{CharacterID: "char-2", Name: "Wren", Henchman: false})
	require.Len(t, p.Members, 2)

	m := p.Member("char-2")
	require.NotNil(t, m)
	assert.False(t, m.Henchman)

	assert.Nil(t, p.Member("char-9"))
}

func TestParty_Shares(t *testing.T) {
	p := NewParty("party-1", "The Bold")
	p.AddMember(Member{CharacterID: "char-1"})
	p.AddMember(Member{CharacterID: "char-2"})
	p.AddMember(Member{CharacterID: "hench-1", Henchman: true})

	// Weight 2.5; 100 / 2.5 = 40 per full share, 20 to the henchman
	shares := p.Shares(100, 0.5)
	assert.Equal(t, 40, shares["char-1"])
	assert.Equal(t, 40, shares["char-2"])
	assert.Equal(t, 20, shares["hench-1"])

	// Shares truncate: 101 / 2.5 = 40.4
	shares = p.Shares(101, 0.5)
	assert.Equal(t, 40, shares["char-1"])
	assert.Equal(t, 20, shares["hench-1"])

	assert.Empty(t, p.Shares(0, 0.5))
	assert.Empty(t, NewParty("party-2", "Empty").Shares(100, 0.5))
}

func TestParty_Clone(t *testing.T) {
	p := NewParty("party-1", "The Bold")
	p.AddMember(Member{CharacterID: "char-1", Name: "Brannic"})
	p.PendingXP = 50

	clone := p.Clone()
	clone.Members[0].Name = "tampered"
	clone.PendingXP = 0

	assert.Equal(t, "Brannic", p.Members[0].Name)
	assert.Equal(t, 50, p.PendingXP)
}
