package combat

// FightXP computes the experience earned from a resolved fight: the XP
// values of every defeated monster plus one point per gold piece of
// treasure recovered.
func FightXP(defeated []*Combatant, treasureValue int) int {
	total := treasureValue
	for _, c := range defeated {
		total += c.XPValue
	}
	return total
}
