package fight

import (
	"github.com/kyragit/Auto-DND/internal/dice"
	"github.com/kyragit/Auto-DND/internal/domain/character"
	"github.com/kyragit/Auto-DND/internal/domain/game/combat"
)

// ActionType identifies what a combatant is trying to do
type ActionType string

const (
	// ActionAttack attacks a target combatant and ends the actor's turn
	ActionAttack ActionType = "attack"

	// ActionEndTurn passes without attacking
	ActionEndTurn ActionType = "end_turn"

	// ActionSavingThrow rolls a saving throw for the actor
	ActionSavingThrow ActionType = "saving_throw"

	// ActionMoraleCheck checks a monster's morale; only the DM may
	// trigger one
	ActionMoraleCheck ActionType = "morale_check"
)

// ActionRolls carries pre-rolled dice for an action. Any nil roll is made
// by the service's roller; the DM override path fills these in to dictate
// an outcome.
type ActionRolls struct {
	Attack      *dice.RollResult
	Damage      *dice.RollResult
	MortalWound *dice.RollResult
	Check       *dice.RollResult
}

// Action is one submitted combat action
type Action struct {
	Type ActionType `json:"type"`

	// TargetID names the target for attacks and morale checks
	TargetID string `json:"target_id,omitempty"`

	// Modifier is a situational attack modifier granted by the DM
	Modifier int `json:"modifier,omitempty"`

	// SaveType selects the category for saving throws
	SaveType character.SaveType `json:"save_type,omitempty"`

	Rolls *ActionRolls `json:"-"`
}

// ResolutionResult reports what a resolved action did to the fight
type ResolutionResult struct {
	FightID string     `json:"fight_id"`
	ActorID string     `json:"actor_id"`
	Action  ActionType `json:"action"`
	Round   int        `json:"round"`

	Attack     *combat.AttackOutcome `json:"attack,omitempty"`
	Morale     combat.MoraleOutcome  `json:"morale,omitempty"`
	SavePassed *bool                 `json:"save_passed,omitempty"`

	// Log holds the entries this action appended to the combat log
	Log []string `json:"log,omitempty"`

	FightEnded bool        `json:"fight_ended"`
	Winner     combat.Side `json:"winner,omitempty"`
	XPAwarded  int         `json:"xp_awarded,omitempty"`
}

// FightUpdate is pushed to the notifier after any successful mutation
type FightUpdate struct {
	MapID      string
	RoomID     string
	MapVersion int64
	Fight      *combat.Fight
	Result     *ResolutionResult
}

// Notifier receives fight updates for broadcast. Implementations must not
// block; they are called with the fight lock held.
type Notifier interface {
	FightUpdated(update *FightUpdate)
}
