package dice

import (
	"errors"
	"math/rand"
)

// RollResult holds the outcome of a dice roll
type RollResult struct {
	Total    int   // RawTotal + Bonus
	RawTotal int   // Sum of the dice before the bonus
	Rolls    []int // Individual die results
	Bonus    int
	Count    int
	Sides    int
	IsCrit   bool // Natural 20 on a single d20
	IsFumble bool // Natural 1 on a single d20
}

// Roll rolls count dice with the given sides and adds a bonus
func Roll(count, sides, bonus int) (*RollResult, error) {
	if count < 1 {
		return nil, errors.New("invalid dice count")
	}

	if sides < 1 {
		return nil, errors.New("invalid dice size")
	}

	rolls := make([]int, count)
	rawTotal := 0
	for i := 0; i < count; i++ {
		roll := rand.Intn(sides) + 1
		rolls[i] = roll
		rawTotal += roll
	}

	result := &RollResult{
		Total:    rawTotal + bonus,
		RawTotal: rawTotal,
		Rolls:    rolls,
		Bonus:    bonus,
		Count:    count,
		Sides:    sides,
	}

	if count == 1 && sides == 20 {
		result.IsCrit = rolls[0] == 20
		result.IsFumble = rolls[0] == 1
	}

	return result, nil
}
