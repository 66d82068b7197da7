package game

import (
	"fmt"

	"github.com/discordwell/hyperdraft/internal/game/rules"
)

// blitzCombatController implements direct attacks: no declaration steps, no
// blockers, attacker and target trade damage when the attack resolves.
type blitzCombatController struct{}

func (blitzCombatController) DeclareAttackers(s *State) []rules.Event { return nil }

func (blitzCombatController) DeclareBlockers(s *State) []rules.Event { return nil }

func (blitzCombatController) DealDamage(s *State, firstStrikeStep bool) []rules.Event { return nil }

func (blitzCombatController) EndCombat(s *State) []rules.Event {
	s.combat.reset()
	return nil
}

func (blitzCombatController) DirectAttack(s *State, playerID, attackerID, targetID string) ([]rules.Event, bool, error) {
	attacker, ok := s.objects[attackerID]
	if !ok || !attacker.OnBattlefield() || attacker.ControllerID != playerID {
		return nil, false, fmt.Errorf("attacker %s is not under %s's control", attackerID, playerID)
	}
	if !attacker.IsCreature() {
		return nil, false, fmt.Errorf("attacker %s is not a creature", attackerID)
	}
	if attacker.State.Exhausted {
		return nil, false, fmt.Errorf("attacker %s already attacked this turn", attackerID)
	}
	if attacker.State.Frozen {
		return nil, false, fmt.Errorf("attacker %s is frozen", attackerID)
	}
	if attacker.State.SummoningSick && !attacker.HasAbility(AbilityCharge) {
		return nil, false, fmt.Errorf("attacker %s arrived this turn", attackerID)
	}

	if target, isPlayer := s.players[targetID]; isPlayer {
		if targetID == playerID || !target.CanAct() {
			return nil, false, fmt.Errorf("%s is not a legal attack target", targetID)
		}
	} else {
		obj, found := s.objects[targetID]
		if !found || !obj.OnBattlefield() || obj.ControllerID == playerID || !obj.IsCreature() {
			return nil, false, fmt.Errorf("%s is not a legal attack target", targetID)
		}
	}

	// Both sides' damage resolves out of one attack event, so neither
	// creature dies before hitting back.
	s.sbaSuppressed = true
	ev := rules.NewEvent(rules.EventAttack, targetID, attackerID, playerID)
	processed := s.Emit(ev)
	s.sbaSuppressed = false
	s.checkStateBasedActions()
	return processed, false, nil
}
