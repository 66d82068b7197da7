package game

import (
	"testing"

	"github.com/discordwell/hyperdraft/internal/game/mana"
	"github.com/discordwell/hyperdraft/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// advanceToStep walks the tracker forward without running step bodies.
func advanceToStep(s *State, step rules.Step) {
	for s.tracker.CurrentStep() != step {
		s.tracker.AdvanceStep("")
	}
}

func landCard(subtype string) *BasicCard {
	return &BasicCard{Chars: Characteristics{
		Name:     subtype,
		Types:    []string{TypeLand},
		Subtypes: []string{subtype},
	}}
}

func TestSorcerySpeedRequiresOwnMainAndEmptyStack(t *testing.T) {
	s := newTestState(t, RulesetClassic)

	assert.False(t, s.sorcerySpeed("alice"), "untap is not a main phase")

	advanceToStep(s, rules.StepMain1)
	assert.True(t, s.sorcerySpeed("alice"))
	assert.False(t, s.sorcerySpeed("bob"), "only the active player gets sorcery speed")

	s.stack.Push(rules.StackItem{ID: "pending"})
	assert.False(t, s.sorcerySpeed("alice"), "a live stack blocks sorcery speed")
	s.stack.Pop()

	advanceToStep(s, rules.StepMain2)
	assert.True(t, s.sorcerySpeed("alice"), "the second main phase counts too")
}

func TestLegalActionsGateCastTiming(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	sorcery := putCard(t, s, "alice", ZoneHand, sorceryCard("Lava Burst", "{R}", "Deal 4 damage."))
	instant := putCard(t, s, "alice", ZoneHand, &BasicCard{Chars: Characteristics{
		Name:     "Quick Jolt",
		ManaCost: "{R}",
		Types:    []string{TypeInstant},
	}})
	alice, _ := s.Player("alice")
	alice.ManaPool.Add(mana.Red, 2)

	advanceToStep(s, rules.StepUpkeep)
	legal := s.LegalActions("alice")
	assert.False(t, containsCast(legal, sorcery.ID), "sorceries wait for a main phase")
	assert.True(t, containsCast(legal, instant.ID))

	advanceToStep(s, rules.StepMain1)
	legal = s.LegalActions("alice")
	assert.True(t, containsCast(legal, sorcery.ID))
	assert.True(t, containsCast(legal, instant.ID))
}

func TestLegalActionsOmitUnpayableCasts(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	pricey := putCard(t, s, "alice", ZoneHand, sorceryCard("Hefty Rite", "{5}{B}", ""))
	advanceToStep(s, rules.StepMain1)

	assert.False(t, containsCast(s.LegalActions("alice"), pricey.ID))
}

func TestPlayLandOncePerTurn(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	forest := putCard(t, s, "alice", ZoneHand, landCard("Forest"))
	spare := putCard(t, s, "alice", ZoneHand, landCard("Forest"))
	advanceToStep(s, rules.StepMain1)

	legal := s.LegalActions("alice")
	assert.True(t, containsAction(legal, ActionPlayLand, forest.ID))

	_, _, err := s.ExecuteAction("alice", Action{Kind: ActionPlayLand, CardID: forest.ID})
	require.NoError(t, err)
	assert.Equal(t, ZoneBattlefield, forest.Zone)

	alice, _ := s.Player("alice")
	assert.Equal(t, 1, alice.LandsPlayed)
	assert.False(t, containsAction(s.LegalActions("alice"), ActionPlayLand, spare.ID))
	_, _, err = s.ExecuteAction("alice", Action{Kind: ActionPlayLand, CardID: spare.ID})
	require.Error(t, err)
}

func TestManaAbilityTapsAndFillsPool(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	forest := putCard(t, s, "alice", ZoneBattlefield, landCard("Forest"))
	alice, _ := s.Player("alice")

	_, _, err := s.ExecuteAction("alice", Action{Kind: ActionActivate, CardID: forest.ID, AbilityID: "mana"})
	require.NoError(t, err)

	assert.True(t, forest.State.Tapped)
	assert.Equal(t, 1, alice.ManaPool.Get(mana.Green))

	_, _, err = s.ExecuteAction("alice", Action{Kind: ActionActivate, CardID: forest.ID, AbilityID: "mana"})
	require.Error(t, err, "a tapped source cannot be tapped again")
}

func TestCrewSelectionGreedyHighestPowerFirst(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	vehicle := putCard(t, s, "alice", ZoneBattlefield, &BasicCard{Chars: Characteristics{
		Name:      "Sky Skiff",
		Types:     []string{TypeVehicle},
		Power:     2,
		Toughness: 3,
		CrewCost:  3,
	}})
	putCreature(t, s, "alice", "Runt", 1, 1)
	big := putCreature(t, s, "alice", "Ox", 3, 3)

	crew := s.crewSelection("alice", vehicle)
	require.Equal(t, []string{big.ID}, crew, "the biggest creature alone meets the cost")

	vehicle.Characteristics.CrewCost = 5
	mid := putCreature(t, s, "alice", "Mule", 2, 2)
	crew = s.crewSelection("alice", vehicle)
	assert.ElementsMatch(t, []string{big.ID, mid.ID}, crew)

	vehicle.Characteristics.CrewCost = 9
	assert.Nil(t, s.crewSelection("alice", vehicle), "unmeetable crew costs offer nothing")
}

func TestCrewActionTapsCrewAndAnimatesVehicle(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	vehicle := putCard(t, s, "alice", ZoneBattlefield, &BasicCard{Chars: Characteristics{
		Name:      "Sky Skiff",
		Types:     []string{TypeVehicle},
		Power:     2,
		Toughness: 3,
		CrewCost:  2,
	}})
	pilot := putCreature(t, s, "alice", "Pilot", 2, 2)

	_, _, err := s.ExecuteAction("alice", Action{Kind: ActionCrew, CardID: vehicle.ID})
	require.NoError(t, err)

	assert.True(t, pilot.State.Tapped)
	assert.True(t, vehicle.IsCreature(), "a crewed vehicle is a creature until end of turn")
}

func TestLoyaltyAbilityOncePerTurn(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	walker := putCard(t, s, "alice", ZoneBattlefield, &BasicCard{Chars: Characteristics{
		Name:    "Wandering Sage",
		Types:   []string{TypePlaneswalker},
		Loyalty: 3,
	}})
	walker.State.Counters.Add("loyalty", 3)

	_, _, err := s.ExecuteAction("alice", Action{Kind: ActionActivate, CardID: walker.ID, AbilityID: "loyalty"})
	require.NoError(t, err)

	_, _, err = s.ExecuteAction("alice", Action{Kind: ActionActivate, CardID: walker.ID, AbilityID: "loyalty"})
	require.Error(t, err, "one loyalty activation per permanent per turn")

	alice, _ := s.Player("alice")
	alice.resetTurnCounters()
	_, _, err = s.ExecuteAction("alice", Action{Kind: ActionActivate, CardID: walker.ID, AbilityID: "loyalty"})
	require.NoError(t, err, "the gate resets with the turn")
}

func TestPassRunsStateBasedActionsBeforeHandoff(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	advanceToStep(s, rules.StepMain1)
	bear := putCreature(t, s, "bob", "Doomed Bear", 2, 2)

	// Lethal damage arrives out of band between the decision and the pass;
	// the next player must see it settled.
	marked := false
	setDecisions(s, "alice", &FuncDecisions{
		ActionFn: func(string, []LegalAction) (Action, bool) {
			if !marked {
				marked = true
				bear.State.Damage = 5
			}
			return Action{Kind: ActionPass}, true
		},
	})
	var zoneAtBobsPriority string
	setDecisions(s, "bob", &FuncDecisions{
		ActionFn: func(string, []LegalAction) (Action, bool) {
			zoneAtBobsPriority = bear.Zone
			return Action{Kind: ActionPass}, true
		},
	})

	require.Equal(t, priorityCompleted, s.runPriorityLoop())

	assert.Equal(t, ZoneGraveyard, zoneAtBobsPriority, "the creature dies before the next player holds priority")
	assert.Equal(t, ZoneGraveyard, bear.Zone)
}

func containsCast(legal []LegalAction, cardID string) bool {
	return containsAction(legal, ActionCast, cardID)
}

func containsAction(legal []LegalAction, kind ActionKind, cardID string) bool {
	for _, a := range legal {
		if a.Kind == kind && a.CardID == cardID {
			return true
		}
	}
	return false
}
