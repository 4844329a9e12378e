package dice

// randomRoller implements Roller using the package-level Roll function
type randomRoller struct{}

// NewRandomRoller creates a new random dice roller
func NewRandomRoller() Roller {
	return &randomRoller{}
}

// Roll implements Roller.Roll
func (r *randomRoller) Roll(count, sides, bonus int) (*RollResult, error) {
	return Roll(count, sides, bonus)
}

// RollExploding implements Roller.RollExploding
func (r *randomRoller) RollExploding(sides int) (*RollResult, error) {
	first, err := Roll(1, sides, 0)
	if err != nil {
		return nil, err
	}

	rolls := []int{first.Rolls[0]}
	total := first.Rolls[0]
	for rolls[len(rolls)-1] == sides {
		next, err := Roll(1, sides, 0)
		if err != nil {
			return nil, err
		}
		rolls = append(rolls, next.Rolls[0])
		total += next.Rolls[0]
	}

	result := &RollResult{
		Total:    total,
		RawTotal: total,
		Rolls:    rolls,
		Count:    len(rolls),
		Sides:    sides,
	}

	if sides == 20 {
		result.IsCrit = rolls[0] == 20
		result.IsFumble = rolls[0] == 1
	}

	return result, nil
}
