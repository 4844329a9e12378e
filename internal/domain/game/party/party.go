package party

// Member is one character belonging to a party. Henchmen receive a reduced
// share of allocated experience.
type Member struct {
	CharacterID string `json:"character_id"`
	Name        string `json:"name"`
	Henchman    bool   `json:"henchman"`
}

// Party is a group of adventurers sharing a pending experience pool.
// Experience earned from fights accumulates in PendingXP and moves to the
// members' banked XP only through an explicit allocation.
type Party struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []Member `json:"members"`

	// PendingXP only ever increases between allocations
	PendingXP int `json:"pending_xp"`
}

// NewParty creates an empty party
func NewParty(id, name string) *Party {
	return &Party{
		ID:      id,
		Name:    name,
		Members: []Member{},
	}
}

// Member returns the member with the given character ID, or nil
func (p *Party) Member(characterID string) *Member {
	for i := range p.Members {
		if p.Members[i].CharacterID == characterID {
			return &p.Members[i]
		}
	}
	return nil
}

// AddMember adds a member, replacing any existing entry for the same
// character
func (p *Party) AddMember(m Member) {
	for i := range p.Members {
		if p.Members[i].CharacterID == m.CharacterID {
			p.Members[i] = m
			return
		}
	}
	p.Members = append(p.Members, m)
}

// Shares splits an amount of pending XP evenly across the party, counting
// each henchman as henchmanShare of a full member. Shares truncate; the
// remainder stays in the pending pool.
func (p *Party) Shares(amount int, henchmanShare float64) map[string]int {
	shares := make(map[string]int, len(p.Members))
	if amount <= 0 || len(p.Members) == 0 {
		return shares
	}

	weight := 0.0
	for _, m := range p.Members {
		if m.Henchman {
			weight += henchmanShare
		} else {
			weight++
		}
	}
	if weight <= 0 {
		return shares
	}

	full := float64(amount) / weight
	for _, m := range p.Members {
		if m.Henchman {
			shares[m.CharacterID] = int(full * henchmanShare)
		} else {
			shares[m.CharacterID] = int(full)
		}
	}
	return shares
}

// Clone returns a deep copy of the party
func (p *Party) Clone() *Party {
	if p == nil {
		return nil
	}

	clone := *p
	clone.Members = append([]Member(nil), p.Members...)
	return &clone
}
