package game

import (
	"fmt"

	"github.com/discordwell/hyperdraft/internal/game/rules"
	"go.uber.org/zap"
)

// CombatState tracks the current combat's declarations. One combat at a
// time; extra combats reuse the same record after a reset.
type CombatState struct {
	// Attackers maps attacker ID to what it attacks (a player or a
	// planeswalker). Order preserves declaration order for damage.
	Attackers map[string]string
	Blockers  map[string][]string // attacker -> blockers in block order
	Order     []string
}

func newCombatState() *CombatState {
	return &CombatState{
		Attackers: make(map[string]string),
		Blockers:  make(map[string][]string),
	}
}

func (c *CombatState) reset() {
	c.Attackers = make(map[string]string)
	c.Blockers = make(map[string][]string)
	c.Order = nil
}

// CombatController abstracts a ruleset's combat handling. The classic
// implementation runs the declared-attackers/blockers/damage steps; the
// blitz one answers direct attack actions instead.
type CombatController interface {
	DeclareAttackers(s *State) []rules.Event
	DeclareBlockers(s *State) []rules.Event
	DealDamage(s *State, firstStrikeStep bool) []rules.Event
	EndCombat(s *State) []rules.Event
	// DirectAttack performs an action-time attack. Rulesets without one
	// return an error.
	DirectAttack(s *State, playerID, attackerID, targetID string) ([]rules.Event, bool, error)
}

type classicCombatController struct{}

// attackCandidates lists the active player's creatures able to attack.
func (classicCombatController) attackCandidates(s *State, active string) []string {
	var out []string
	for _, id := range s.Battlefield() {
		obj, ok := s.objects[id]
		if !ok || obj.ControllerID != active || !obj.IsCreature() {
			continue
		}
		if obj.State.Tapped || obj.HasAbility(AbilityDefender) {
			continue
		}
		if obj.State.SummoningSick && !obj.HasAbility(AbilityHaste) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// defendTargets lists everything the active player may attack: opposing
// players and their planeswalkers.
func (classicCombatController) defendTargets(s *State, active string) []string {
	var out []string
	for _, pid := range s.playerOrder {
		if pid == active || !s.players[pid].CanAct() {
			continue
		}
		out = append(out, pid)
		for _, id := range s.Battlefield() {
			if obj, ok := s.objects[id]; ok && obj.ControllerID == pid && obj.Characteristics.HasType(TypePlaneswalker) {
				out = append(out, id)
			}
		}
	}
	return out
}

func (c classicCombatController) DeclareAttackers(s *State) []rules.Event {
	active := s.tracker.ActivePlayer()
	candidates := c.attackCandidates(s, active)
	defenders := c.defendTargets(s, active)
	if len(candidates) == 0 || len(defenders) == 0 {
		return nil
	}

	declared := s.decisionsFor(active).ChooseAttackers(active, candidates, defenders)
	valid := make(map[string]bool, len(candidates))
	for _, id := range candidates {
		valid[id] = true
	}
	targets := make(map[string]bool, len(defenders))
	for _, id := range defenders {
		targets[id] = true
	}

	var processed []rules.Event
	for _, decl := range declared {
		if !valid[decl.AttackerID] || !targets[decl.DefenderID] {
			s.logger.Warn("attack declaration rejected",
				zap.String("attacker", decl.AttackerID),
				zap.String("defender", decl.DefenderID),
			)
			continue
		}
		attacker := s.objects[decl.AttackerID]
		attacker.State.Attacking = true
		attacker.State.AttackingWhat = decl.DefenderID
		if !attacker.HasAbility(AbilityVigilance) {
			processed = append(processed, s.Emit(rules.NewEvent(rules.EventTap, attacker.ID, attacker.ID, active))...)
		}
		s.combat.Attackers[decl.AttackerID] = decl.DefenderID
		s.combat.Order = append(s.combat.Order, decl.AttackerID)

		ev := rules.NewEvent(rules.EventAttackDeclared, decl.DefenderID, decl.AttackerID, active)
		processed = append(processed, s.Emit(ev)...)
	}
	s.tracker.SetHasFirstStrike(c.anyFirstStriker(s))
	return processed
}

// canBlock enforces the evasion rules: flying needs flying or reach, shadow
// pairs only with shadow.
func canBlock(attacker, blocker *GameObject) bool {
	if attacker.HasAbility(AbilityFlying) && !blocker.HasAbility(AbilityFlying) && !blocker.HasAbility(AbilityReach) {
		return false
	}
	if attacker.HasAbility(AbilityShadow) != blocker.HasAbility(AbilityShadow) {
		return false
	}
	return true
}

func (c classicCombatController) DeclareBlockers(s *State) []rules.Event {
	if len(s.combat.Order) == 0 {
		return nil
	}
	var processed []rules.Event
	for _, pid := range s.playerOrder {
		defender := s.players[pid]
		if !defender.CanAct() {
			continue
		}
		var incoming []string
		for _, attackerID := range s.combat.Order {
			target := s.combat.Attackers[attackerID]
			if target == pid {
				incoming = append(incoming, attackerID)
				continue
			}
			if obj, ok := s.objects[target]; ok && obj.ControllerID == pid {
				incoming = append(incoming, attackerID)
			}
		}
		if len(incoming) == 0 {
			continue
		}

		var candidates []string
		for _, id := range s.Battlefield() {
			obj, ok := s.objects[id]
			if ok && obj.ControllerID == pid && obj.IsCreature() && !obj.State.Tapped {
				candidates = append(candidates, id)
			}
		}
		declared := s.decisionsFor(pid).ChooseBlockers(pid, incoming, candidates)

		attacking := make(map[string]bool, len(incoming))
		for _, id := range incoming {
			attacking[id] = true
		}
		blockable := make(map[string]bool, len(candidates))
		for _, id := range candidates {
			blockable[id] = true
		}
		for _, decl := range declared {
			if !attacking[decl.AttackerID] || !blockable[decl.BlockerID] {
				continue
			}
			attacker := s.objects[decl.AttackerID]
			blocker := s.objects[decl.BlockerID]
			if !canBlock(attacker, blocker) {
				s.logger.Warn("block declaration rejected",
					zap.String("attacker", decl.AttackerID),
					zap.String("blocker", decl.BlockerID),
				)
				continue
			}
			s.combat.Blockers[decl.AttackerID] = append(s.combat.Blockers[decl.AttackerID], decl.BlockerID)
			blocker.State.Blocking = true
			blocker.State.BlockingWhat = append(blocker.State.BlockingWhat, decl.AttackerID)
		}
	}

	// Menace is validated over the finished assignment, not per block:
	// an attacker with menace blocked by a single creature sheds the block.
	for attackerID, blockers := range s.combat.Blockers {
		attacker, ok := s.objects[attackerID]
		if !ok || !attacker.HasAbility(AbilityMenace) || len(blockers) != 1 {
			continue
		}
		blocker := s.objects[blockers[0]]
		blocker.State.Blocking = false
		blocker.State.BlockingWhat = nil
		delete(s.combat.Blockers, attackerID)
		s.logger.Warn("single block against menace dropped",
			zap.String("attacker", attackerID),
			zap.String("blocker", blocker.ID),
		)
	}

	for attackerID, blockers := range s.combat.Blockers {
		for _, blockerID := range blockers {
			ev := rules.NewEvent(rules.EventBlockDeclared, attackerID, blockerID, s.objects[blockerID].ControllerID)
			processed = append(processed, s.Emit(ev)...)
		}
	}
	s.tracker.SetHasFirstStrike(c.anyFirstStriker(s))
	return processed
}

// anyFirstStriker reports whether any combatant has first or double strike.
func (classicCombatController) anyFirstStriker(s *State) bool {
	check := func(id string) bool {
		obj, ok := s.objects[id]
		return ok && (obj.HasAbility(AbilityFirstStrike) || obj.HasAbility(AbilityDoubleStrike))
	}
	for _, attackerID := range s.combat.Order {
		if check(attackerID) {
			return true
		}
		for _, blockerID := range s.combat.Blockers[attackerID] {
			if check(blockerID) {
				return true
			}
		}
	}
	return false
}

// dealsInStep reports whether a creature deals damage in this damage step.
func dealsInStep(obj *GameObject, firstStrikeStep bool) bool {
	if firstStrikeStep {
		return obj.HasAbility(AbilityFirstStrike) || obj.HasAbility(AbilityDoubleStrike)
	}
	return !obj.HasAbility(AbilityFirstStrike) || obj.HasAbility(AbilityDoubleStrike)
}

func combatDamage(target, source *GameObject, amount int, controller string) rules.Event {
	ev := rules.NewEventWithAmount(rules.EventDamage, target.ID, source.ID, controller, amount)
	ev.Flag = true
	if source.HasAbility(AbilityDeathtouch) {
		ev.Metadata["deathtouch"] = "true"
	}
	return ev
}

func (c classicCombatController) DealDamage(s *State, firstStrikeStep bool) []rules.Event {
	var processed []rules.Event
	emit := func(ev rules.Event) {
		processed = append(processed, s.Emit(ev)...)
	}
	lifelink := func(obj *GameObject, amount int) {
		if amount > 0 && obj.HasAbility(AbilityLifelink) {
			emit(rules.NewEventWithAmount(rules.EventGainLife, obj.ControllerID, obj.ID, obj.ControllerID, amount))
		}
	}

	for _, attackerID := range s.combat.Order {
		attacker, ok := s.objects[attackerID]
		if !ok || !attacker.OnBattlefield() || !attacker.State.Attacking {
			continue
		}
		defenderID := s.combat.Attackers[attackerID]

		var blockers []*GameObject
		for _, blockerID := range s.combat.Blockers[attackerID] {
			if blocker, found := s.objects[blockerID]; found && blocker.OnBattlefield() {
				blockers = append(blockers, blocker)
			}
		}

		if dealsInStep(attacker, firstStrikeStep) {
			power := attacker.CurrentPower()
			switch {
			case len(blockers) == 0:
				if power > 0 {
					if _, isPlayer := s.players[defenderID]; isPlayer {
						ev := rules.NewEventWithAmount(rules.EventDamagePlayer, defenderID, attacker.ID, attacker.ControllerID, power)
						ev.PlayerID = defenderID
						ev.Flag = true
						emit(ev)
					} else if walker, found := s.objects[defenderID]; found && walker.OnBattlefield() {
						emit(combatDamage(walker, attacker, power, attacker.ControllerID))
					}
					lifelink(attacker, power)
				}
			default:
				assigned := c.assignDamage(s, attacker, blockers, power)
				dealt := 0
				for _, blocker := range blockers {
					amount := assigned[blocker.ID]
					if amount <= 0 {
						continue
					}
					emit(combatDamage(blocker, attacker, amount, attacker.ControllerID))
					dealt += amount
				}
				if attacker.HasAbility(AbilityTrample) && power > dealt {
					excess := power - dealt
					if _, isPlayer := s.players[defenderID]; isPlayer {
						ev := rules.NewEventWithAmount(rules.EventDamagePlayer, defenderID, attacker.ID, attacker.ControllerID, excess)
						ev.PlayerID = defenderID
						ev.Flag = true
						emit(ev)
						dealt += excess
					} else if walker, found := s.objects[defenderID]; found && walker.OnBattlefield() {
						emit(combatDamage(walker, attacker, excess, attacker.ControllerID))
						dealt += excess
					}
				}
				lifelink(attacker, dealt)
			}
		}

		for _, blocker := range blockers {
			if !dealsInStep(blocker, firstStrikeStep) {
				continue
			}
			power := blocker.CurrentPower()
			if power <= 0 || !attacker.OnBattlefield() {
				continue
			}
			emit(combatDamage(attacker, blocker, power, blocker.ControllerID))
			lifelink(blocker, power)
		}
	}
	s.checkStateBasedActions()
	return processed
}

// assignDamage splits an attacker's power among its blockers. A provider
// assignment wins when it does not overspend; the default splits evenly in
// block order with the remainder on the first blocker, spending all of the
// attacker's power. Trample excess therefore only exists when a provider
// assignment leaves some power unassigned.
func (c classicCombatController) assignDamage(s *State, attacker *GameObject, blockers []*GameObject, power int) map[string]int {
	provided := s.decisionsFor(attacker.ControllerID).AssignCombatDamage(
		attacker.ID, blockerIDs(blockers), power)
	if provided != nil {
		total := 0
		for _, amount := range provided {
			total += amount
		}
		if total <= power {
			return provided
		}
		s.logger.Warn("damage assignment overspends power, using default",
			zap.String("attacker", attacker.ID),
		)
	}

	assigned := make(map[string]int, len(blockers))
	if len(blockers) == 0 || power <= 0 {
		return assigned
	}
	share := power / len(blockers)
	for _, blocker := range blockers {
		assigned[blocker.ID] = share
	}
	assigned[blockers[0].ID] += power % len(blockers)
	return assigned
}

func blockerIDs(blockers []*GameObject) []string {
	out := make([]string, len(blockers))
	for i, b := range blockers {
		out[i] = b.ID
	}
	return out
}

func (classicCombatController) EndCombat(s *State) []rules.Event {
	for _, attackerID := range s.combat.Order {
		if obj, ok := s.objects[attackerID]; ok {
			obj.State.Attacking = false
			obj.State.AttackingWhat = ""
		}
		for _, blockerID := range s.combat.Blockers[attackerID] {
			if obj, ok := s.objects[blockerID]; ok {
				obj.State.Blocking = false
				obj.State.BlockingWhat = nil
			}
		}
	}
	s.combat.reset()
	active := s.tracker.ActivePlayer()
	return s.Emit(rules.NewEvent(rules.EventEndCombat, active, "", active))
}

func (classicCombatController) DirectAttack(s *State, playerID, attackerID, targetID string) ([]rules.Event, bool, error) {
	return nil, false, fmt.Errorf("direct attacks are not part of the %s ruleset", s.Ruleset)
}
