package game

import (
	"github.com/discordwell/hyperdraft/internal/game/rules"
)

// TurnController abstracts a ruleset's turn progression. Advance executes
// the current step (or turn slice) and moves the game forward one notch; it
// reports true when the game suspended on a player decision and the same
// position must be re-entered after the answer arrives.
type TurnController interface {
	Advance(s *State) bool
	ActivePlayer(s *State) string
	TurnNumber(s *State) int
}

// discardChooser is the optional provider hook for cleanup discards.
// Returning nil routes the question through the pending-choice protocol;
// providers that do not implement the interface auto-discard from the back
// of the hand.
type discardChooser interface {
	DiscardToHandSize(playerID string, hand []string, n int) []string
}

// classicTurnController walks the phase/step sequence, giving priority
// where the step grants it. The bodyDone latch keeps a re-entered step from
// repeating its one-shot actions after a suspension.
type classicTurnController struct {
	bodyDone bool
}

func (c *classicTurnController) ActivePlayer(s *State) string { return s.tracker.ActivePlayer() }

func (c *classicTurnController) TurnNumber(s *State) int { return s.tracker.TurnNumber() }

func (c *classicTurnController) Advance(s *State) bool {
	if s.gameOver {
		return false
	}
	step := s.tracker.CurrentStep()

	if !c.bodyDone {
		suspended := c.runStepBody(s, step)
		c.bodyDone = true
		if suspended || s.Pending != nil {
			return true
		}
	}
	if s.gameOver {
		return false
	}

	if step.HasPriorityPass() {
		if s.runPriorityLoop() == prioritySuspended {
			return true
		}
	}
	if s.gameOver {
		return false
	}

	next := s.tracker.ActivePlayer()
	if s.tracker.StepsRemaining() == 1 {
		if active, ok := s.players[next]; ok && active.ExtraTurns > 0 {
			active.ExtraTurns--
		} else {
			next = s.nextPlayerAfter(next)
		}
	}
	// Floated mana does not carry into the next step.
	for _, id := range s.playerOrder {
		s.players[id].ManaPool.Empty()
	}
	s.tracker.AdvanceStep(next)
	c.bodyDone = false
	return false
}

func (c *classicTurnController) runStepBody(s *State, step rules.Step) bool {
	active := s.tracker.ActivePlayer()
	switch step {
	case rules.StepUntap:
		c.beginTurn(s, active)

	case rules.StepUpkeep:
		ev := rules.NewEvent(rules.EventUpkeep, active, "", active)
		s.Emit(ev)

	case rules.StepDraw:
		if s.tracker.TurnNumber() == 1 && !s.firstDrawSkipped {
			// The player going first skips the game's first draw.
			s.firstDrawSkipped = true
			break
		}
		s.Emit(rules.NewEventWithAmount(rules.EventDraw, active, "", active, 1))
		s.checkStateBasedActions()

	case rules.StepBeginCombat:
		s.Emit(rules.NewEvent(rules.EventBeginCombat, active, "", active))

	case rules.StepDeclareAttackers:
		s.attacks.DeclareAttackers(s)

	case rules.StepDeclareBlockers:
		s.attacks.DeclareBlockers(s)

	case rules.StepFirstStrikeDamage:
		s.attacks.DealDamage(s, true)

	case rules.StepCombatDamage:
		s.attacks.DealDamage(s, false)

	case rules.StepEndCombat:
		if p, ok := s.players[active]; ok && p.ExtraCombats > 0 {
			p.ExtraCombats--
			s.tracker.InsertExtraCombat()
		}
		s.attacks.EndCombat(s)

	case rules.StepEnd:
		s.Emit(rules.NewEvent(rules.EventEndStep, active, "", active))

	case rules.StepCleanup:
		return c.cleanup(s, active)
	}
	return false
}

// beginTurn handles the untap step: per-turn counters reset, summoning
// sickness wears off, and the active player's permanents untap.
func (c *classicTurnController) beginTurn(s *State, active string) {
	if p, ok := s.players[active]; ok {
		p.resetTurnCounters()
	}
	s.Emit(rules.NewEvent(rules.EventBeginTurn, active, "", active))
	for _, id := range s.Battlefield() {
		obj, ok := s.objects[id]
		if !ok || obj.ControllerID != active {
			continue
		}
		obj.State.SummoningSick = false
		if obj.State.Tapped {
			s.Emit(rules.NewEvent(rules.EventUntap, id, id, active))
		}
	}
}

// cleanup discards down to hand size, wipes marked damage, and expires the
// until-end-of-turn grants. Returns true when the discard needs a choice.
func (c *classicTurnController) cleanup(s *State, active string) bool {
	s.expireUntilEndOfTurn()
	s.Emit(rules.NewEvent(rules.EventEndTurn, active, "", active))

	player, ok := s.players[active]
	if !ok {
		return false
	}
	hand := s.Hand(active)
	excess := len(hand) - player.HandLimit
	if excess <= 0 {
		return false
	}

	if chooser, isChooser := s.decisionsFor(active).(discardChooser); isChooser {
		if picks := chooser.DiscardToHandSize(active, hand, excess); picks != nil {
			for _, id := range picks[:min(len(picks), excess)] {
				ev := rules.NewEvent(rules.EventDiscard, id, "", active)
				ev.PlayerID = active
				s.Emit(ev)
			}
			return false
		}
		options := make([]ChoiceOption, 0, len(hand))
		for _, id := range hand {
			label := id
			if obj, found := s.objects[id]; found {
				label = obj.Characteristics.Name
			}
			options = append(options, ChoiceOption{ID: id, Label: label})
		}
		err := s.CreateChoice(&PendingChoice{
			Kind:     ChoiceDiscardToHandSize,
			PlayerID: active,
			Prompt:   "Discard down to hand size",
			Options:  options,
			MinPicks: excess,
			MaxPicks: excess,
			Resume:   Resumption{Kind: ResumeDiscardToHandSize},
		})
		return err == nil
	}

	// No chooser: discard the most recently drawn cards.
	for _, id := range hand[len(hand)-excess:] {
		ev := rules.NewEvent(rules.EventDiscard, id, "", active)
		ev.PlayerID = active
		s.Emit(ev)
	}
	return false
}

// expireUntilEndOfTurn reverts the turn's temporary state on every object
// in play.
func (s *State) expireUntilEndOfTurn() {
	for _, id := range s.Battlefield() {
		obj, ok := s.objects[id]
		if !ok {
			continue
		}
		obj.State.Damage = 0
		obj.State.DamageSources = make(map[string]int)
		obj.State.DeathtouchHit = false
		obj.State.TempTypes = nil
		obj.State.TempAbilities = nil
		obj.State.TempPower = 0
		obj.State.TempToughness = 0
		if obj.State.TempController != "" {
			obj.ControllerID = obj.State.TempController
			obj.State.TempController = ""
		}
	}
}
