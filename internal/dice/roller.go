package dice

// Roller provides an interface for rolling dice
// This allows us to inject different implementations for testing
type Roller interface {
	// Roll rolls a number of dice with the given sides and adds a bonus
	Roll(count, sides, bonus int) (*RollResult, error)

	// RollExploding rolls a single die that is rolled again and added
	// whenever it lands on its highest face (attack throws use an
	// exploding d20)
	RollExploding(sides int) (*RollResult, error)
}
