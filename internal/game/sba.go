package game

import (
	"github.com/discordwell/hyperdraft/internal/game/rules"
)

// checkStateBasedActions applies the automatic game rules to a fixpoint:
// creatures with lethal damage or zero toughness die, planeswalkers with no
// loyalty fall off, and players at zero life (or who drew from an empty
// library, in classic) lose. Each pass emits ordinary events, so death
// triggers fire like any other.
func (s *State) checkStateBasedActions() {
	if s.sbaSuppressed || s.gameOver {
		return
	}
	for pass := 0; pass < 100; pass++ {
		if !s.stateBasedPass() {
			return
		}
	}
	s.logger.Warn("state-based actions did not reach a fixpoint")
}

// stateBasedPass takes one pass and reports whether it acted.
func (s *State) stateBasedPass() bool {
	acted := false

	for _, id := range s.Battlefield() {
		obj, ok := s.objects[id]
		if !ok || !obj.OnBattlefield() {
			continue
		}
		if obj.IsCreature() {
			if obj.CurrentToughness() <= 0 {
				s.Emit(rules.NewZoneChange(id, id, obj.ControllerID, ZoneBattlefield, ZoneGraveyard))
				acted = true
				continue
			}
			if obj.LethalDamage() {
				s.Emit(rules.NewEvent(rules.EventDestroy, id, id, obj.ControllerID))
				acted = true
				continue
			}
		}
		if obj.Characteristics.HasType(TypePlaneswalker) && obj.State.Counters.Count("loyalty") <= 0 {
			s.Emit(rules.NewZoneChange(id, id, obj.ControllerID, ZoneBattlefield, ZoneGraveyard))
			acted = true
		}
	}

	for _, id := range s.playerOrder {
		p := s.players[id]
		if !p.CanAct() {
			continue
		}
		if p.Life <= 0 {
			ev := rules.NewEvent(rules.EventPlayerLost, id, "", id)
			ev.Metadata["reason"] = "life"
			s.Emit(ev)
			acted = true
			continue
		}
		if s.Ruleset == RulesetClassic && p.DrewFromEmpty {
			ev := rules.NewEvent(rules.EventPlayerLost, id, "", id)
			ev.Metadata["reason"] = "empty_library"
			s.Emit(ev)
			acted = true
		}
	}

	if acted {
		s.logger.Debug("state-based actions applied")
	}
	return acted
}

// Concede removes a player from the game immediately.
func (s *State) Concede(playerID string) []rules.Event {
	p, ok := s.players[playerID]
	if !ok || !p.CanAct() {
		return nil
	}
	p.Conceded = true
	ev := rules.NewEvent(rules.EventPlayerLost, playerID, "", playerID)
	ev.Metadata["reason"] = "conceded"
	return s.Emit(ev)
}
