package fight

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/kyragit/Auto-DND/internal/dice"
	"github.com/kyragit/Auto-DND/internal/domain/game/combat"
	gameworld "github.com/kyragit/Auto-DND/internal/domain/game/world"
	internalerrors "github.com/kyragit/Auto-DND/internal/errors"
	partysvc "github.com/kyragit/Auto-DND/internal/services/party"
	worldsvc "github.com/kyragit/Auto-DND/internal/services/world"
	"github.com/kyragit/Auto-DND/internal/uuid"
)

// Service drives fights through their lifecycle. Every mutation runs as a
// transaction: validate, resolve, persist, then broadcast. A persistence
// failure rolls the in-memory fight back and surfaces to the initiator
// only.
type Service interface {
	// AttachEncounter creates a fight in the forming state and embeds it
	// in the room. The room must not already hold a fight.
	AttachEncounter(ctx context.Context, input *AttachEncounterInput) (*combat.Fight, error)

	// CancelEncounter dissolves a forming fight, returning the room to
	// its empty state
	CancelEncounter(ctx context.Context, fightID string) error

	// Start rolls initiative for all combatants
	Start(ctx context.Context, fightID string) error

	// BeginRounds fixes the initiative order and starts round 1
	BeginRounds(ctx context.Context, fightID string) error

	// SubmitAction resolves a combatant's action. Illegal actions are
	// rejected with no state change.
	SubmitAction(ctx context.Context, fightID, actorID string, action *Action) (*ResolutionResult, error)

	// DMOverride resolves an action on the DM's authority, bypassing
	// turn and legality checks. It flows through the same resolution
	// engine as SubmitAction and is logged identically.
	DMOverride(ctx context.Context, fightID, actorID string, action *Action) (*ResolutionResult, error)

	// ForceEnd resolves the fight immediately, crediting XP for whatever
	// was defeated so far
	ForceEnd(ctx context.Context, fightID string) error

	// ClearFight removes a resolved fight from its room. A fresh
	// AttachEncounter is required to fight there again.
	ClearFight(ctx context.Context, fightID string) error

	// GetFight returns a snapshot of the fight
	GetFight(ctx context.Context, fightID string) (*combat.Fight, error)
}

// AttachEncounterInput describes a new encounter
type AttachEncounterInput struct {
	MapID         string
	RoomID        string
	PartyID       string
	TreasureValue int
	Combatants    []*combat.Combatant
}

// ServiceConfig holds the service's dependencies
type ServiceConfig struct {
	Registry      worldsvc.Registry
	Party         partysvc.Service
	Roller        dice.Roller
	UUIDGenerator uuid.Generator

	// Notifier is optional; nil disables broadcasts
	Notifier Notifier
}

type fightLocation struct {
	mapID  string
	roomID string
}

type service struct {
	registry      worldsvc.Registry
	party         partysvc.Service
	roller        dice.Roller
	uuidGenerator uuid.Generator
	notifier      Notifier

	mu        sync.Mutex
	locks     map[string]*sync.Mutex
	locations map[string]fightLocation
}

// NewService creates a new fight service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Registry == nil {
		panic("world registry is required")
	}
	if cfg.Party == nil {
		panic("party service is required")
	}
	if cfg.Roller == nil {
		panic("dice roller is required")
	}
	if cfg.UUIDGenerator == nil {
		panic("uuid generator is required")
	}

	return &service{
		registry:      cfg.Registry,
		party:         cfg.Party,
		roller:        cfg.Roller,
		uuidGenerator: cfg.UUIDGenerator,
		notifier:      cfg.Notifier,
		locks:         make(map[string]*sync.Mutex),
		locations:     make(map[string]fightLocation),
	}
}

// lockFight serializes all work on one fight
func (s *service) lockFight(fightID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[fightID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[fightID] = l
	}
	return l
}

// forget drops the lock and location of a fight that no longer exists
func (s *service) forget(fightID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, fightID)
	delete(s.locations, fightID)
}

// locate finds the map and room holding the fight, scanning persisted maps
// when the fight was created by an earlier process
func (s *service) locate(ctx context.Context, fightID string) (fightLocation, error) {
	s.mu.Lock()
	loc, ok := s.locations[fightID]
	s.mu.Unlock()
	if ok {
		return loc, nil
	}

	ids, err := s.registry.ListIDs(ctx)
	if err != nil {
		return fightLocation{}, err
	}
	for _, mapID := range ids {
		m, err := s.registry.Get(ctx, mapID)
		if err != nil {
			return fightLocation{}, err
		}
		if room := m.FindFight(fightID); room != nil {
			loc = fightLocation{mapID: mapID, roomID: room.ID}
			s.mu.Lock()
			s.locations[fightID] = loc
			s.mu.Unlock()
			return loc, nil
		}
	}

	return fightLocation{}, internalerrors.NotFoundf("fight not found: %s", fightID)
}

// mutateFight runs fn against the fight's room under the map's writer lock
// and persists the result. On any error nothing changes. Returns the map
// version and a snapshot of the fight after the save.
func (s *service) mutateFight(ctx context.Context, fightID string, fn func(room *gameworld.Room, f *combat.Fight) error) (int64, *combat.Fight, error) {
	loc, err := s.locate(ctx, fightID)
	if err != nil {
		return 0, nil, err
	}

	var version int64
	var snapshot *combat.Fight
	err = s.registry.Update(ctx, loc.mapID, func(m *gameworld.Map) error {
		room := m.GetRoom(loc.roomID)
		if room == nil {
			return internalerrors.NotFoundf("room not found: %s", loc.roomID)
		}
		if room.Fight == nil || room.Fight.ID != fightID {
			return internalerrors.NotFoundf("fight not found: %s", fightID)
		}

		if err := fn(room, room.Fight); err != nil {
			return err
		}

		version = m.Version + 1 // Save bumps it on success
		snapshot = room.Fight.Clone()
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return version, snapshot, nil
}

func (s *service) notify(loc fightLocation, version int64, f *combat.Fight, result *ResolutionResult) {
	if s.notifier == nil {
		return
	}
	s.notifier.FightUpdated(&FightUpdate{
		MapID:      loc.mapID,
		RoomID:     loc.roomID,
		MapVersion: version,
		Fight:      f,
		Result:     result,
	})
}

func (s *service) AttachEncounter(ctx context.Context, input *AttachEncounterInput) (*combat.Fight, error) {
	if input == nil {
		return nil, internalerrors.Validationf("input cannot be nil")
	}
	if len(input.Combatants) == 0 {
		return nil, internalerrors.Validationf("an encounter needs at least one combatant")
	}
	if input.TreasureValue < 0 {
		return nil, internalerrors.Validationf("treasure value cannot be negative")
	}

	// The receiving party must exist before its pool can be credited
	if _, err := s.party.GetParty(ctx, input.PartyID); err != nil {
		return nil, err
	}

	fightID := s.uuidGenerator.New()
	var created *combat.Fight
	var version int64

	err := s.registry.Update(ctx, input.MapID, func(m *gameworld.Map) error {
		room := m.GetRoom(input.RoomID)
		if room == nil {
			return internalerrors.NotFoundf("room not found: %s", input.RoomID)
		}
		if room.Fight != nil {
			return internalerrors.IllegalActionf(
				"room %s already holds fight %s; clear it first", room.ID, room.Fight.ID)
		}

		f := combat.NewFight(fightID, input.PartyID)
		f.TreasureValue = input.TreasureValue
		for _, c := range input.Combatants {
			combatant := c.Clone()
			if combatant.ID == "" {
				combatant.ID = s.uuidGenerator.New()
			}
			if combatant.CurrentHP == 0 {
				combatant.CurrentHP = combatant.MaxHP
			}
			if combatant.Side != combat.SideParty && combatant.Side != combat.SideMonster {
				return internalerrors.Validationf("combatant %s has no side", combatant.Name)
			}
			f.AddCombatant(combatant)
		}

		room.Fight = f
		version = m.Version + 1
		created = f.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	loc := fightLocation{mapID: input.MapID, roomID: input.RoomID}
	s.mu.Lock()
	s.locations[fightID] = loc
	s.mu.Unlock()

	log.Printf("Attached fight %s to room %s on map %s", fightID, input.RoomID, input.MapID)
	s.notify(loc, version, created, nil)
	return created, nil
}

func (s *service) CancelEncounter(ctx context.Context, fightID string) error {
	l := s.lockFight(fightID)
	l.Lock()
	defer l.Unlock()

	loc, err := s.locate(ctx, fightID)
	if err != nil {
		return err
	}

	version, _, err := s.mutateFight(ctx, fightID, func(room *gameworld.Room, f *combat.Fight) error {
		if f.Status != combat.FightStatusForming {
			return internalerrors.IllegalActionf(
				"fight %s is %s; only a forming fight can be cancelled", fightID, f.Status)
		}
		f.Status = combat.FightStatusEmpty
		room.Fight = nil
		return nil
	})
	if err != nil {
		return err
	}

	s.forget(fightID)
	log.Printf("Cancelled forming fight %s", fightID)
	s.notify(loc, version, nil, nil)
	return nil
}

func (s *service) Start(ctx context.Context, fightID string) error {
	l := s.lockFight(fightID)
	l.Lock()
	defer l.Unlock()

	loc, err := s.locate(ctx, fightID)
	if err != nil {
		return err
	}

	version, snapshot, err := s.mutateFight(ctx, fightID, func(room *gameworld.Room, f *combat.Fight) error {
		if f.Status != combat.FightStatusForming {
			return internalerrors.IllegalActionf("fight %s is %s, not forming", fightID, f.Status)
		}
		if err := f.RollInitiative(s.roller); err != nil {
			return internalerrors.WrapWithCode(err, internalerrors.CodeInternal, "initiative roll failed")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notify(loc, version, snapshot, nil)
	return nil
}

func (s *service) BeginRounds(ctx context.Context, fightID string) error {
	l := s.lockFight(fightID)
	l.Lock()
	defer l.Unlock()

	loc, err := s.locate(ctx, fightID)
	if err != nil {
		return err
	}

	version, snapshot, err := s.mutateFight(ctx, fightID, func(room *gameworld.Room, f *combat.Fight) error {
		if f.Status != combat.FightStatusActiveInitiative {
			return internalerrors.IllegalActionf("fight %s is %s, initiative must be rolled first", fightID, f.Status)
		}
		return f.BeginRounds()
	})
	if err != nil {
		return err
	}

	s.notify(loc, version, snapshot, nil)
	return nil
}

func (s *service) SubmitAction(ctx context.Context, fightID, actorID string, action *Action) (*ResolutionResult, error) {
	return s.resolve(ctx, fightID, actorID, action, false)
}

func (s *service) DMOverride(ctx context.Context, fightID, actorID string, action *Action) (*ResolutionResult, error) {
	return s.resolve(ctx, fightID, actorID, action, true)
}

func (s *service) resolve(ctx context.Context, fightID, actorID string, action *Action, override bool) (*ResolutionResult, error) {
	if action == nil {
		return nil, internalerrors.Validationf("action cannot be nil")
	}

	l := s.lockFight(fightID)
	l.Lock()
	defer l.Unlock()

	loc, err := s.locate(ctx, fightID)
	if err != nil {
		return nil, err
	}

	var result *ResolutionResult
	version, snapshot, err := s.mutateFight(ctx, fightID, func(room *gameworld.Room, f *combat.Fight) error {
		actor := f.Combatants[actorID]
		if actor == nil {
			return internalerrors.NotFoundf("combatant not found: %s", actorID)
		}

		if !override {
			if err := checkLegality(f, actor, action); err != nil {
				return err
			}
		} else if !f.IsActive() {
			return internalerrors.IllegalActionf("fight %s is %s, not active", fightID, f.Status)
		}

		resolved, resolveErr := s.resolveAction(f, actor, action, override)
		if resolveErr != nil {
			return resolveErr
		}
		result = resolved
		return nil
	})
	if err != nil {
		if override && internalerrors.IsPersistenceFailure(err) {
			var appErr *internalerrors.Error
			if errors.As(err, &appErr) {
				return nil, appErr.WithMeta("hint", "state rolled back; resubmit the override to retry the write")
			}
		}
		return nil, err
	}

	if result.FightEnded && result.XPAwarded > 0 {
		if err := s.party.TrackPendingXP(ctx, snapshot.PartyID, result.XPAwarded); err != nil {
			// The fight is already persisted; the DM can re-credit by hand
			log.Printf("Failed to credit %d XP to party %s: %v", result.XPAwarded, snapshot.PartyID, err)
		}
	}

	s.notify(loc, version, snapshot, result)
	return result, nil
}

// checkLegality enforces the player-path rules that DMOverride bypasses
func checkLegality(f *combat.Fight, actor *combat.Combatant, action *Action) error {
	if f.Status != combat.FightStatusActiveRound {
		return internalerrors.IllegalActionf("fight %s is %s, rounds have not begun", f.ID, f.Status)
	}

	switch action.Type {
	case ActionMoraleCheck:
		return internalerrors.IllegalActionf("morale checks are called by the DM")
	case ActionAttack, ActionEndTurn:
		current := f.CurrentCombatant()
		if current == nil || current.ID != actor.ID {
			return internalerrors.IllegalActionf("it is not %s's turn", actor.Name)
		}
		if !actor.CanAct() {
			return internalerrors.IllegalActionf("%s cannot act", actor.Name)
		}
	case ActionSavingThrow:
		if actor.Dead {
			return internalerrors.IllegalActionf("%s is dead", actor.Name)
		}
	default:
		return internalerrors.Validationf("unknown action type: %s", action.Type)
	}
	return nil
}

// resolveAction applies the action to the fight. Callers have already
// validated legality; everything here mutates.
func (s *service) resolveAction(f *combat.Fight, actor *combat.Combatant, action *Action, override bool) (*ResolutionResult, error) {
	result := &ResolutionResult{
		FightID: f.ID,
		ActorID: actor.ID,
		Action:  action.Type,
		Round:   f.Round,
	}
	logStart := len(f.CombatLog)

	switch action.Type {
	case ActionAttack:
		if err := s.resolveAttack(f, actor, action, result); err != nil {
			return nil, err
		}
		if !override {
			f.NextTurn()
		}

	case ActionEndTurn:
		f.AddLogEntry(actor.Name + " holds")
		f.NextTurn()

	case ActionSavingThrow:
		if action.SaveType == "" {
			return nil, internalerrors.Validationf("saving throw needs a category")
		}
		roll, err := s.checkRoll(action, 1, 20)
		if err != nil {
			return nil, err
		}
		passed := combat.ResolveSavingThrow(actor, action.SaveType, roll)
		result.SavePassed = &passed
		if passed {
			f.AddLogEntry(actor.Name + " passes a " + string(action.SaveType) + " save")
		} else {
			f.AddLogEntry(actor.Name + " fails a " + string(action.SaveType) + " save")
		}

	case ActionMoraleCheck:
		target := actor
		if action.TargetID != "" {
			target = f.Combatants[action.TargetID]
			if target == nil {
				return nil, internalerrors.NotFoundf("combatant not found: %s", action.TargetID)
			}
		}
		roll, err := s.checkRoll(action, 2, 6)
		if err != nil {
			return nil, err
		}
		outcome := combat.ResolveMoraleCheck(target, roll)
		result.Morale = outcome
		switch outcome {
		case combat.MoraleFlees:
			f.AddLogEntry(target.Name + " breaks and flees")
		case combat.MoraleSurrenders:
			f.AddLogEntry(target.Name + " throws down arms and surrenders")
		default:
			f.AddLogEntry(target.Name + " holds firm")
		}

	default:
		return nil, internalerrors.Validationf("unknown action type: %s", action.Type)
	}

	if ended, winner := f.CheckEnd(); ended {
		f.Resolve()
		result.FightEnded = true
		result.Winner = winner
		if winner == combat.SideParty {
			result.XPAwarded = combat.FightXP(f.Defeated(), f.TreasureValue)
			f.AddLogEntry("The party is victorious")
		} else {
			f.AddLogEntry("The party is defeated")
		}
	}

	result.Log = append([]string(nil), f.CombatLog[logStart:]...)
	return result, nil
}

func (s *service) resolveAttack(f *combat.Fight, actor *combat.Combatant, action *Action, result *ResolutionResult) error {
	target := f.Combatants[action.TargetID]
	if target == nil {
		return internalerrors.NotFoundf("combatant not found: %s", action.TargetID)
	}
	if target.ID == actor.ID {
		return internalerrors.Validationf("%s cannot attack itself", actor.Name)
	}
	if target.IsOut() || target.MortalWound != nil {
		return internalerrors.IllegalActionf("%s is out of the fight", target.Name)
	}

	input, err := s.attackInput(actor, action)
	if err != nil {
		return err
	}

	outcome := combat.ResolveAttack(actor, target, input)
	result.Attack = outcome

	switch outcome.Result {
	case combat.AttackCriticalMiss:
		f.AddLogEntry(actor.Name + " fumbles an attack on " + target.Name)
	case combat.AttackMiss:
		f.AddLogEntry(actor.Name + " misses " + target.Name)
	case combat.AttackHit:
		f.AddLogEntry(formatHit(actor.Name, target.Name, outcome.Damage, false))
	case combat.AttackCriticalHit:
		f.AddLogEntry(formatHit(actor.Name, target.Name, outcome.Damage, true))
	}

	if outcome.MortalWound != nil {
		switch outcome.MortalWound.Outcome {
		case combat.MortalWoundDies:
			f.AddLogEntry(target.Name + " is slain")
		case combat.MortalWoundMaimed:
			f.AddLogEntry(target.Name + " goes down, maimed but stable")
		case combat.MortalWoundStable:
			f.AddLogEntry(target.Name + " goes down but is stable")
		}
	}
	return nil
}

func formatHit(attacker, target string, damage int, critical bool) string {
	if critical {
		return fmt.Sprintf("%s critically hits %s for %d damage", attacker, target, damage)
	}
	return fmt.Sprintf("%s hits %s for %d damage", attacker, target, damage)
}

// attackInput fills any rolls the caller did not supply
func (s *service) attackInput(actor *combat.Combatant, action *Action) (combat.AttackInput, error) {
	input := combat.AttackInput{Modifier: action.Modifier}
	if action.Rolls != nil {
		input.AttackRoll = action.Rolls.Attack
		input.DamageRoll = action.Rolls.Damage
		input.MortalWoundRoll = action.Rolls.MortalWound
	}

	var err error
	if input.AttackRoll == nil {
		if input.AttackRoll, err = s.roller.RollExploding(20); err != nil {
			return input, internalerrors.Wrap(err, "attack roll failed")
		}
	}
	if input.DamageRoll == nil {
		dmgDice := actor.DamageDice
		if dmgDice < 1 {
			dmgDice = 1
		}
		dmgSides := actor.DamageSides
		if dmgSides < 1 {
			dmgSides = 6
		}
		if input.DamageRoll, err = s.roller.Roll(dmgDice, dmgSides, actor.DamageBonus); err != nil {
			return input, internalerrors.Wrap(err, "damage roll failed")
		}
	}
	if input.MortalWoundRoll == nil {
		if input.MortalWoundRoll, err = s.roller.Roll(1, 20, 0); err != nil {
			return input, internalerrors.Wrap(err, "mortal wound roll failed")
		}
	}
	return input, nil
}

// checkRoll returns the caller-supplied check roll or makes one
func (s *service) checkRoll(action *Action, count, sides int) (*dice.RollResult, error) {
	if action.Rolls != nil && action.Rolls.Check != nil {
		return action.Rolls.Check, nil
	}
	roll, err := s.roller.Roll(count, sides, 0)
	if err != nil {
		return nil, internalerrors.Wrap(err, "check roll failed")
	}
	return roll, nil
}

func (s *service) ForceEnd(ctx context.Context, fightID string) error {
	l := s.lockFight(fightID)
	l.Lock()
	defer l.Unlock()

	loc, err := s.locate(ctx, fightID)
	if err != nil {
		return err
	}

	xp := 0
	version, snapshot, err := s.mutateFight(ctx, fightID, func(room *gameworld.Room, f *combat.Fight) error {
		if f.Status == combat.FightStatusResolved {
			return internalerrors.IllegalActionf("fight %s is already resolved", fightID)
		}
		f.AddLogEntry("The DM ends the fight")
		f.Resolve()
		xp = combat.FightXP(f.Defeated(), f.TreasureValue)
		return nil
	})
	if err != nil {
		return err
	}

	if xp > 0 {
		if err := s.party.TrackPendingXP(ctx, snapshot.PartyID, xp); err != nil {
			log.Printf("Failed to credit %d XP to party %s: %v", xp, snapshot.PartyID, err)
		}
	}

	log.Printf("Force-ended fight %s (%d XP)", fightID, xp)
	s.notify(loc, version, snapshot, nil)
	return nil
}

func (s *service) ClearFight(ctx context.Context, fightID string) error {
	l := s.lockFight(fightID)
	l.Lock()
	defer l.Unlock()

	loc, err := s.locate(ctx, fightID)
	if err != nil {
		return err
	}

	version, _, err := s.mutateFight(ctx, fightID, func(room *gameworld.Room, f *combat.Fight) error {
		if f.Status != combat.FightStatusResolved {
			return internalerrors.IllegalActionf(
				"fight %s is %s; only a resolved fight can be cleared", fightID, f.Status)
		}
		room.Fight = nil
		return nil
	})
	if err != nil {
		return err
	}

	s.forget(fightID)
	log.Printf("Cleared resolved fight %s from room %s", fightID, loc.roomID)
	s.notify(loc, version, nil, nil)
	return nil
}

func (s *service) GetFight(ctx context.Context, fightID string) (*combat.Fight, error) {
	loc, err := s.locate(ctx, fightID)
	if err != nil {
		return nil, err
	}

	m, err := s.registry.Get(ctx, loc.mapID)
	if err != nil {
		return nil, err
	}

	room := m.GetRoom(loc.roomID)
	if room == nil || room.Fight == nil || room.Fight.ID != fightID {
		return nil, internalerrors.NotFoundf("fight not found: %s", fightID)
	}
	return room.Fight, nil
}
