package game

import (
	"fmt"
	"regexp"

	"github.com/discordwell/hyperdraft/internal/game/mana"
	"github.com/discordwell/hyperdraft/internal/game/rules"
	"go.uber.org/zap"
)

// ActionKind is the kind of a player action.
type ActionKind string

const (
	ActionPass     ActionKind = "PASS"
	ActionCast     ActionKind = "CAST_SPELL"
	ActionPlayLand ActionKind = "PLAY_LAND"
	ActionActivate ActionKind = "ACTIVATE_ABILITY"
	ActionCrew     ActionKind = "CREW"
	// ActionAttack is the blitz direct attack, taken from the main loop.
	ActionAttack ActionKind = "ATTACK"
	// ActionEndTurn ends a blitz turn.
	ActionEndTurn ActionKind = "END_TURN"
)

// Action is one concrete player action.
type Action struct {
	Kind      ActionKind
	CardID    string
	Targets   []string
	XValue    int
	AbilityID string // mana ability or loyalty ability identifier
	TargetID  string // blitz attack target (object or player)
}

// LegalAction describes one action currently available to a player.
type LegalAction struct {
	Kind        ActionKind
	CardID      string
	TargetID    string
	AbilityID   string
	Description string
}

// priorityOutcome reports how a priority round ended.
type priorityOutcome int

const (
	// priorityCompleted - every player passed on an empty stack; the step
	// is over.
	priorityCompleted priorityOutcome = iota
	// prioritySuspended - a human decision is outstanding; re-enter later.
	prioritySuspended
)

var manaAbilityPattern = regexp.MustCompile(`\{T\}: Add \{([WUBRGC])\}`)

var basicLandMana = map[string]mana.Type{
	"Plains":   mana.White,
	"Island":   mana.Blue,
	"Swamp":    mana.Black,
	"Mountain": mana.Red,
	"Forest":   mana.Green,
}

// manaAbilityType reports the mana a permanent's tap ability produces, if
// it has one. Basic land subtypes carry an implicit ability.
func manaAbilityType(obj *GameObject) (mana.Type, bool) {
	for _, st := range obj.Characteristics.Subtypes {
		if t, ok := basicLandMana[st]; ok {
			return t, true
		}
	}
	if m := manaAbilityPattern.FindStringSubmatch(obj.Characteristics.RulesText); m != nil {
		switch m[1] {
		case "W":
			return mana.White, true
		case "U":
			return mana.Blue, true
		case "B":
			return mana.Black, true
		case "R":
			return mana.Red, true
		case "G":
			return mana.Green, true
		case "C":
			return mana.Colorless, true
		}
	}
	return "", false
}

// sorcerySpeed reports whether the player may take sorcery-speed actions
// right now: their own main phase with an empty stack.
func (s *State) sorcerySpeed(playerID string) bool {
	if s.Ruleset == RulesetBlitz {
		return true
	}
	if !s.stack.IsEmpty() {
		return false
	}
	if s.tracker.ActivePlayer() != playerID {
		return false
	}
	phase := s.tracker.CurrentPhase()
	return phase == rules.PhasePrecombatMain || phase == rules.PhasePostcombatMain
}

// castableAtInstantSpeed reports whether a card type may be cast while the
// stack is live or on an opponent's turn.
func castableAtInstantSpeed(obj *GameObject) bool {
	return obj.Characteristics.HasType(TypeInstant)
}

// LegalActions enumerates the actions available to a player holding
// priority. Passing is always legal; everything else is gated on timing,
// resources and payability.
func (s *State) LegalActions(playerID string) []LegalAction {
	legal := []LegalAction{{Kind: ActionPass, Description: "Pass priority"}}
	player, ok := s.players[playerID]
	if !ok || !player.CanAct() {
		return legal
	}
	sorcery := s.sorcerySpeed(playerID)

	for _, id := range s.Hand(playerID) {
		obj, found := s.objects[id]
		if !found {
			continue
		}
		if obj.Characteristics.HasType(TypeLand) {
			if sorcery && player.LandsPlayed < player.LandDropLimit {
				legal = append(legal, LegalAction{
					Kind:        ActionPlayLand,
					CardID:      id,
					Description: "Play " + obj.Characteristics.Name,
				})
			}
			continue
		}
		if !sorcery && !castableAtInstantSpeed(obj) {
			continue
		}
		if s.castPayable(playerID, obj, ZoneHand) {
			legal = append(legal, LegalAction{
				Kind:        ActionCast,
				CardID:      id,
				Description: "Cast " + obj.Characteristics.Name,
			})
		}
	}

	for _, id := range s.Graveyard(playerID) {
		obj, found := s.objects[id]
		if !found {
			continue
		}
		if _, _, hasAlt := altCastOption(obj, ZoneGraveyard); !hasAlt {
			continue
		}
		if !sorcery && !castableAtInstantSpeed(obj) {
			continue
		}
		if s.castPayable(playerID, obj, ZoneGraveyard) {
			legal = append(legal, LegalAction{
				Kind:        ActionCast,
				CardID:      id,
				Description: "Cast " + obj.Characteristics.Name + " from the graveyard",
			})
		}
	}

	for _, id := range s.Battlefield() {
		obj, found := s.objects[id]
		if !found || obj.ControllerID != playerID {
			continue
		}
		if _, hasMana := manaAbilityType(obj); hasMana && !obj.State.Tapped {
			legal = append(legal, LegalAction{
				Kind:        ActionActivate,
				CardID:      id,
				AbilityID:   "mana",
				Description: "Tap " + obj.Characteristics.Name + " for mana",
			})
		}
		if sorcery && obj.Characteristics.HasType(TypeVehicle) && !obj.IsCreature() {
			if s.crewSelection(playerID, obj) != nil {
				legal = append(legal, LegalAction{
					Kind:        ActionCrew,
					CardID:      id,
					Description: "Crew " + obj.Characteristics.Name,
				})
			}
		}
		if sorcery && obj.Characteristics.HasType(TypePlaneswalker) && !player.LoyaltyUsed[id] {
			legal = append(legal, LegalAction{
				Kind:        ActionActivate,
				CardID:      id,
				AbilityID:   "loyalty",
				Description: "Activate " + obj.Characteristics.Name,
			})
		}
	}
	return legal
}

// castPayable is the cheap payability precheck used for enumeration.
func (s *State) castPayable(playerID string, obj *GameObject, fromZone string) bool {
	player := s.players[playerID]
	var altCost *mana.Cost
	if _, c, ok := altCastOption(obj, fromZone); ok {
		altCost = c
	} else if fromZone == ZoneGraveyard {
		return false
	}
	cost, err := s.castCost(obj, altCost, 0)
	if err != nil {
		return false
	}
	if !player.ManaPool.CanPay(cost) {
		return false
	}
	if ac, ok := obj.Definition.(AdditionalCoster); ok {
		if !s.CanPayPlan(ac.AdditionalCost(obj, s), playerID) {
			return false
		}
	}
	return true
}

// crewSelection greedily picks untapped creatures (highest power first)
// whose total power meets the vehicle's crew cost. Returns nil when the
// crew cost cannot be met.
func (s *State) crewSelection(playerID string, vehicle *GameObject) []string {
	type crewCandidate struct {
		id    string
		power int
	}
	var candidates []crewCandidate
	for _, id := range s.Battlefield() {
		obj, ok := s.objects[id]
		if !ok || obj.ControllerID != playerID || obj.ID == vehicle.ID {
			continue
		}
		if !obj.IsCreature() || obj.State.Tapped {
			continue
		}
		candidates = append(candidates, crewCandidate{id: id, power: obj.CurrentPower()})
	}
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j].power > candidates[j-1].power; j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}
	total := 0
	var crew []string
	for _, c := range candidates {
		if total >= vehicle.Characteristics.CrewCost {
			break
		}
		crew = append(crew, c.id)
		total += c.power
	}
	if total < vehicle.Characteristics.CrewCost {
		return nil
	}
	return crew
}

// ExecuteAction performs one action for a player. It returns the events
// processed and whether the game suspended on a pending choice mid-action.
func (s *State) ExecuteAction(playerID string, action Action) ([]rules.Event, bool, error) {
	switch action.Kind {
	case ActionPass:
		return nil, false, nil

	case ActionCast:
		return s.CastSpell(playerID, action.CardID, action.Targets, action.XValue)

	case ActionPlayLand:
		obj, ok := s.objects[action.CardID]
		if !ok || obj.Zone != ZoneHand || obj.ZoneOwner != playerID {
			return nil, false, fmt.Errorf("card %s is not in %s's hand", action.CardID, playerID)
		}
		if !obj.Characteristics.HasType(TypeLand) {
			return nil, false, fmt.Errorf("card %s is not a land", action.CardID)
		}
		player := s.players[playerID]
		if player.LandsPlayed >= player.LandDropLimit {
			return nil, false, fmt.Errorf("player %s has no land drop left", playerID)
		}
		ev := rules.NewEvent(rules.EventPlayLand, action.CardID, action.CardID, playerID)
		return s.Emit(ev), false, nil

	case ActionActivate:
		return s.activateAbility(playerID, action)

	case ActionCrew:
		vehicle, ok := s.objects[action.CardID]
		if !ok || !vehicle.OnBattlefield() || vehicle.ControllerID != playerID {
			return nil, false, fmt.Errorf("vehicle %s is not under %s's control", action.CardID, playerID)
		}
		crew := action.Targets
		if len(crew) == 0 {
			crew = s.crewSelection(playerID, vehicle)
		}
		if crew == nil {
			return nil, false, fmt.Errorf("vehicle %s cannot be crewed", action.CardID)
		}
		var processed []rules.Event
		for _, id := range crew {
			processed = append(processed, s.Emit(rules.NewEvent(rules.EventTap, id, vehicle.ID, playerID))...)
		}
		crewed := rules.NewEvent(rules.EventCrewed, vehicle.ID, vehicle.ID, playerID)
		crewed.Targets = append([]string(nil), crew...)
		processed = append(processed, s.Emit(crewed)...)
		return processed, false, nil

	case ActionAttack:
		return s.attacks.DirectAttack(s, playerID, action.CardID, action.TargetID)
	}
	return nil, false, fmt.Errorf("unknown action kind %q", action.Kind)
}

// activateAbility handles mana abilities and loyalty activations. Mana
// abilities do not use the stack; the mana lands immediately.
func (s *State) activateAbility(playerID string, action Action) ([]rules.Event, bool, error) {
	obj, ok := s.objects[action.CardID]
	if !ok || !obj.OnBattlefield() || obj.ControllerID != playerID {
		return nil, false, fmt.Errorf("object %s is not under %s's control", action.CardID, playerID)
	}
	player := s.players[playerID]

	switch action.AbilityID {
	case "mana":
		manaType, hasMana := manaAbilityType(obj)
		if !hasMana {
			return nil, false, fmt.Errorf("object %s has no mana ability", action.CardID)
		}
		if obj.State.Tapped {
			return nil, false, fmt.Errorf("object %s is already tapped", action.CardID)
		}
		processed := s.Emit(rules.NewEvent(rules.EventTap, obj.ID, obj.ID, playerID))
		added := rules.NewEventWithAmount(rules.EventManaAdded, playerID, obj.ID, playerID, 1)
		added.Metadata["mana_type"] = string(manaType)
		processed = append(processed, s.Emit(added)...)
		return processed, false, nil

	case "loyalty":
		if !obj.Characteristics.HasType(TypePlaneswalker) {
			return nil, false, fmt.Errorf("object %s is not a planeswalker", action.CardID)
		}
		if player.LoyaltyUsed[obj.ID] {
			return nil, false, fmt.Errorf("planeswalker %s already activated this turn", action.CardID)
		}
		player.LoyaltyUsed[obj.ID] = true
		activate := rules.NewEvent(rules.EventAbilityActivate, obj.ID, obj.ID, playerID)
		activate.Targets = append([]string(nil), action.Targets...)
		return s.Emit(activate), false, nil
	}
	return nil, false, fmt.Errorf("unknown ability %q on %s", action.AbilityID, action.CardID)
}

// runPriorityLoop drives the pass/act cycle for the current step. Players
// receive priority in turn order starting from whoever holds it; an action
// retains priority, a full round of passes either ends the step (empty
// stack) or resolves the top of the stack and starts a new round.
func (s *State) runPriorityLoop() priorityOutcome {
	s.checkStateBasedActions()
	s.putTriggersOnStack()

	for !s.gameOver {
		if s.Pending != nil {
			return prioritySuspended
		}
		holder := s.tracker.PriorityPlayer()
		provider := s.decisionsFor(holder)
		action, ok := provider.ChooseAction(holder, s.LegalActions(holder))
		if !ok {
			return prioritySuspended
		}

		if action.Kind == ActionPass {
			s.players[holder].Passed = true
			// A pass hands priority off, and nobody receives priority before
			// state-based actions settle and queued triggers hit the stack.
			s.checkStateBasedActions()
			if s.gameOver {
				return priorityCompleted
			}
			if len(s.queuedTriggers) > 0 {
				// The stack changed under the passed players; the round of
				// passes starts over.
				s.putTriggersOnStack()
				s.clearPasses()
			}
			if s.allPassed() {
				s.clearPasses()
				if s.stack.IsEmpty() {
					return priorityCompleted
				}
				s.resolveTopOfStack()
				s.tracker.SetPriority(s.tracker.ActivePlayer())
				continue
			}
			s.tracker.SetPriority(s.nextPlayerAfter(holder))
			continue
		}

		_, suspended, err := s.ExecuteAction(holder, action)
		if err != nil {
			s.logger.Warn("action rejected",
				zap.String("player_id", holder),
				zap.String("kind", string(action.Kind)),
				zap.Error(err),
			)
		}
		s.clearPasses()
		if suspended || s.Pending != nil {
			return prioritySuspended
		}
		s.checkStateBasedActions()
		s.putTriggersOnStack()
	}
	return priorityCompleted
}

func (s *State) allPassed() bool {
	for _, id := range s.playerOrder {
		p := s.players[id]
		if p.CanAct() && !p.Passed {
			return false
		}
	}
	return true
}

func (s *State) clearPasses() {
	for _, p := range s.players {
		p.Passed = false
	}
}

// resolveTopOfStack pops and resolves the topmost item, feeds its events
// through the pipeline, and re-checks state-based actions.
func (s *State) resolveTopOfStack() {
	item, err := s.stack.Pop()
	if err != nil {
		return
	}
	s.logger.Debug("resolving stack item",
		zap.String("item_id", item.ID),
		zap.String("description", item.Description),
	)
	if item.Resolve != nil {
		for _, ev := range item.Resolve() {
			s.Emit(ev)
		}
	}
	s.checkStateBasedActions()
	s.putTriggersOnStack()
}

// QueueTrigger parks a triggered ability to be put on the stack the next
// time a player would receive priority.
func (s *State) QueueTrigger(item rules.StackItem) {
	s.queuedTriggers = append(s.queuedTriggers, item)
}

// putTriggersOnStack pushes queued triggers in the order they triggered.
func (s *State) putTriggersOnStack() {
	if len(s.queuedTriggers) == 0 {
		return
	}
	for _, item := range s.queuedTriggers {
		s.stack.Push(item)
	}
	s.queuedTriggers = nil
}
