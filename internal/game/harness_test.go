package game

import (
	"testing"

	"github.com/discordwell/hyperdraft/internal/game/rules"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// newTestState builds a two-player game (alice, bob) with passing decision
// providers.
func newTestState(t *testing.T, ruleset Ruleset) *State {
	t.Helper()
	s := NewState("test-game", ruleset, DefaultEngineConfig(), zaptest.NewLogger(t), 42)
	s.AddPlayer("alice", "Alice", nil)
	s.AddPlayer("bob", "Bob", nil)
	return s
}

func creatureCard(name string, power, toughness int, abilities ...string) *BasicCard {
	return &BasicCard{Chars: Characteristics{
		Name:      name,
		ManaCost:  "{1}",
		Types:     []string{TypeCreature},
		Power:     power,
		Toughness: toughness,
		Abilities: abilities,
	}}
}

// putCreature drops a battle-ready creature onto the battlefield.
func putCreature(t *testing.T, s *State, owner, name string, power, toughness int, abilities ...string) *GameObject {
	t.Helper()
	obj, err := s.CreateObject(creatureCard(name, power, toughness, abilities...), owner, ZoneBattlefield)
	require.NoError(t, err)
	obj.State.SummoningSick = false
	return obj
}

// putCard places a card into a hidden zone.
func putCard(t *testing.T, s *State, owner, zone string, def CardDefinition) *GameObject {
	t.Helper()
	obj, err := s.CreateObject(def, owner, zone)
	require.NoError(t, err)
	return obj
}

// fillLibrary stocks a player's library with vanilla creatures.
func fillLibrary(t *testing.T, s *State, owner string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		putCard(t, s, owner, ZoneLibrary, creatureCard("Library Filler", 1, 1))
	}
}

// setDecisions swaps in a decision provider for a player.
func setDecisions(s *State, playerID string, provider DecisionProvider) {
	s.decisions[playerID] = provider
}

// declareAttack wires a single attacker into the combat record directly,
// bypassing the declaration step.
func declareAttack(s *State, attacker *GameObject, defenderID string, blockers ...*GameObject) {
	attacker.State.Attacking = true
	attacker.State.AttackingWhat = defenderID
	s.combat.Attackers[attacker.ID] = defenderID
	s.combat.Order = append(s.combat.Order, attacker.ID)
	for _, blocker := range blockers {
		s.combat.Blockers[attacker.ID] = append(s.combat.Blockers[attacker.ID], blocker.ID)
		blocker.State.Blocking = true
		blocker.State.BlockingWhat = append(blocker.State.BlockingWhat, attacker.ID)
	}
}

// eventTypes projects processed events to their types for order assertions.
func eventTypes(events []rules.Event) []rules.EventType {
	out := make([]rules.EventType, len(events))
	for i, ev := range events {
		out[i] = ev.Type
	}
	return out
}
