package game

import (
	"testing"

	"github.com/discordwell/hyperdraft/internal/game/mana"
	"github.com/discordwell/hyperdraft/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sorceryCard(name, cost, text string) *BasicCard {
	return &BasicCard{Chars: Characteristics{
		Name:      name,
		ManaCost:  cost,
		Types:     []string{TypeSorcery},
		RulesText: text,
	}}
}

func TestCastSpellPutsPermanentOnStack(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	card := putCard(t, s, "alice", ZoneHand, creatureCard("Grizzly Bears", 2, 2))
	alice, _ := s.Player("alice")
	alice.ManaPool.Add(mana.Green, 2)

	processed, suspended, err := s.CastSpell("alice", card.ID, nil, 0)
	require.NoError(t, err)
	assert.False(t, suspended)
	assert.Equal(t, ZoneStack, card.Zone)
	assert.Equal(t, 1, s.Stack().Len())
	assert.Contains(t, eventTypes(processed), rules.EventCastSpell)
	assert.Equal(t, 1, alice.ManaPool.Total(), "cost {1} leaves one mana floating")

	s.resolveTopOfStack()
	assert.Equal(t, ZoneBattlefield, card.Zone)
	assert.True(t, card.State.SummoningSick)
}

func TestCastSpellUnpayableManaAborts(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	card := putCard(t, s, "alice", ZoneHand, creatureCard("Grizzly Bears", 2, 2))

	_, _, err := s.CastSpell("alice", card.ID, nil, 0)
	require.Error(t, err)
	assert.Equal(t, ZoneHand, card.Zone, "a failed cast leaves the card untouched")
	assert.Zero(t, s.Stack().Len())
	assert.Empty(t, s.EventLog(), "no event fires before payability clears")
}

func TestCastSpellUnpayablePlanAborts(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	def := creatureCard("Demanding Demon", 5, 5)
	def.ExtraCost = func(obj *GameObject, _ *State) *CostPlan {
		return &CostPlan{Steps: []CostStep{{
			Kind:   CostSacrifice,
			Filter: FilterSpec{Types: []string{TypeCreature}, ExcludeID: obj.ID},
			Count:  1,
			Label:  "Sacrifice a creature",
		}}}
	}
	card := putCard(t, s, "alice", ZoneHand, def)
	alice, _ := s.Player("alice")
	alice.ManaPool.Add(mana.Black, 2)

	// No creature to sacrifice: the cast must refuse before spending anything.
	_, _, err := s.CastSpell("alice", card.ID, nil, 0)
	require.Error(t, err)
	assert.Equal(t, ZoneHand, card.Zone)
	assert.Equal(t, 2, alice.ManaPool.Total())
	assert.Empty(t, s.EventLog())
}

func TestCastDiscardCostSuspendsAndResumes(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	def := creatureCard("Hell Mongrel", 4, 3)
	def.ExtraCost = func(obj *GameObject, _ *State) *CostPlan {
		return &CostPlan{Steps: []CostStep{{
			Kind:   CostDiscard,
			Filter: FilterSpec{ExcludeID: obj.ID, Zone: ZoneHand},
			Count:  1,
			Label:  "Discard a card",
		}}}
	}
	card := putCard(t, s, "alice", ZoneHand, def)
	fodder1 := putCard(t, s, "alice", ZoneHand, creatureCard("Fodder One", 1, 1))
	fodder2 := putCard(t, s, "alice", ZoneHand, creatureCard("Fodder Two", 1, 1))
	alice, _ := s.Player("alice")
	alice.ManaPool.Add(mana.Red, 1)

	_, suspended, err := s.CastSpell("alice", card.ID, nil, 0)
	require.NoError(t, err)
	require.True(t, suspended)
	require.NotNil(t, s.Pending)
	assert.Equal(t, ChoiceCostTargets, s.Pending.Kind)
	assert.Equal(t, "alice", s.Pending.PlayerID)
	assert.Len(t, s.Pending.Options, 2)
	assert.Equal(t, 1, alice.ManaPool.Total(), "mana is paid last, never before a suspension")
	assert.Equal(t, ZoneHand, card.Zone)

	// A second cast while suspended is refused.
	_, _, err = s.CastSpell("alice", fodder1.ID, nil, 0)
	require.Error(t, err)

	processed, err := s.SubmitChoice(s.Pending.ID, "alice", []string{fodder2.ID})
	require.NoError(t, err)
	assert.Nil(t, s.Pending)
	assert.Equal(t, ZoneGraveyard, fodder2.Zone)
	assert.Equal(t, ZoneStack, card.Zone)
	assert.Zero(t, alice.ManaPool.Total())
	assert.Contains(t, eventTypes(processed), rules.EventDiscard)
	assert.Contains(t, eventTypes(processed), rules.EventCastSpell)
}

func TestCastCostAutoSelectsExactCandidates(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	def := creatureCard("Hell Mongrel", 4, 3)
	def.ExtraCost = func(obj *GameObject, _ *State) *CostPlan {
		return &CostPlan{Steps: []CostStep{{
			Kind:   CostDiscard,
			Filter: FilterSpec{ExcludeID: obj.ID, Zone: ZoneHand},
			Count:  1,
			Label:  "Discard a card",
		}}}
	}
	card := putCard(t, s, "alice", ZoneHand, def)
	only := putCard(t, s, "alice", ZoneHand, creatureCard("Only Fodder", 1, 1))
	alice, _ := s.Player("alice")
	alice.ManaPool.Add(mana.Red, 1)

	_, suspended, err := s.CastSpell("alice", card.ID, nil, 0)
	require.NoError(t, err)
	assert.False(t, suspended, "one candidate for one slot needs no choice")
	assert.Equal(t, ZoneGraveyard, only.Zone)
	assert.Equal(t, ZoneStack, card.Zone)
}

func TestCostAddManaStepFillsPoolImmediately(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	def := creatureCard("Ember Adept", 2, 2)
	def.Chars.ManaCost = ""
	def.ExtraCost = func(*GameObject, *State) *CostPlan {
		return &CostPlan{Steps: []CostStep{
			{Kind: CostPayLife, Amount: 1, Label: "Pay 1 life"},
			{Kind: CostAddMana, ManaType: mana.Red, Amount: 2, Label: "Add {R}{R}"},
		}}
	}
	card := putCard(t, s, "alice", ZoneHand, def)
	alice, _ := s.Player("alice")
	startLife := alice.Life

	processed, suspended, err := s.CastSpell("alice", card.ID, nil, 0)
	require.NoError(t, err)
	assert.False(t, suspended, "adding mana never asks the player anything")
	assert.Equal(t, startLife-1, alice.Life)
	assert.Equal(t, 2, alice.ManaPool.Get(mana.Red), "the step's mana lands in the pool as it executes")
	assert.Equal(t, ZoneStack, card.Zone)
	assert.Contains(t, eventTypes(processed), rules.EventManaAdded)
}

func TestCostOrAutoSelectsSinglePayableOption(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	def := creatureCard("Toll Taker", 2, 2)
	def.ExtraCost = func(obj *GameObject, _ *State) *CostPlan {
		return &CostPlan{Steps: []CostStep{{
			Kind:  CostOr,
			Label: "Pay the toll",
			Options: []CostStep{
				{Kind: CostPayLife, Amount: 25, Label: "Pay 25 life"},
				{Kind: CostPayLife, Amount: 2, Label: "Pay 2 life"},
			},
		}}}
	}
	card := putCard(t, s, "alice", ZoneHand, def)
	alice, _ := s.Player("alice")
	alice.ManaPool.Add(mana.White, 1)
	startLife := alice.Life

	_, suspended, err := s.CastSpell("alice", card.ID, nil, 0)
	require.NoError(t, err)
	assert.False(t, suspended, "one payable branch resolves without asking")
	assert.Equal(t, startLife-2, alice.Life)
	assert.Equal(t, ZoneStack, card.Zone)
}

func TestCostOrWithTwoPayableOptionsAsks(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	def := creatureCard("Toll Taker", 2, 2)
	def.ExtraCost = func(obj *GameObject, _ *State) *CostPlan {
		return &CostPlan{Steps: []CostStep{{
			Kind:  CostOr,
			Label: "Pay the toll",
			Options: []CostStep{
				{Kind: CostPayLife, Amount: 3, Label: "Pay 3 life"},
				{Kind: CostPayLife, Amount: 5, Label: "Pay 5 life"},
			},
		}}}
	}
	card := putCard(t, s, "alice", ZoneHand, def)
	alice, _ := s.Player("alice")
	alice.ManaPool.Add(mana.White, 1)
	startLife := alice.Life

	_, suspended, err := s.CastSpell("alice", card.ID, nil, 0)
	require.NoError(t, err)
	require.True(t, suspended)
	require.NotNil(t, s.Pending)
	assert.Equal(t, ChoiceCostOption, s.Pending.Kind)
	require.Len(t, s.Pending.Options, 2)

	_, err = s.SubmitChoice(s.Pending.ID, "alice", []string{"1"})
	require.NoError(t, err)
	assert.Equal(t, startLife-5, alice.Life)
	assert.Equal(t, ZoneStack, card.Zone)
}

func TestFlashbackCastsFromGraveyardAndExiles(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	card := putCard(t, s, "alice", ZoneGraveyard,
		sorceryCard("Deep Analysis", "{3}{U}", "Draw two cards.\nFlashback {1}{U}"))
	fillLibrary(t, s, "alice", 5)
	alice, _ := s.Player("alice")
	alice.ManaPool.Add(mana.Blue, 2)

	_, suspended, err := s.CastSpell("alice", card.ID, nil, 0)
	require.NoError(t, err)
	assert.False(t, suspended)
	assert.Equal(t, ZoneStack, card.Zone)
	assert.Zero(t, alice.ManaPool.Total(), "flashback cost {1}{U} replaces the printed {3}{U}")

	s.resolveTopOfStack()
	assert.Equal(t, ZoneExile, card.Zone, "flashback exiles instead of returning to the graveyard")
}

func TestGraveyardCastWithoutKeywordRefused(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	card := putCard(t, s, "alice", ZoneGraveyard, creatureCard("Buried Bear", 2, 2))
	alice, _ := s.Player("alice")
	alice.ManaPool.Add(mana.Green, 3)

	_, _, err := s.CastSpell("alice", card.ID, nil, 0)
	require.Error(t, err)
	assert.Equal(t, ZoneGraveyard, card.Zone)
}

func TestHarmonizeDiscountsHandCast(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	card := putCard(t, s, "alice", ZoneHand,
		sorceryCard("Choral Blast", "{4}{R}", "Deal 3 damage to any target.\nHarmonize {1}{R}"))
	alice, _ := s.Player("alice")
	alice.ManaPool.Add(mana.Red, 2)

	_, suspended, err := s.CastSpell("alice", card.ID, []string{"bob"}, 0)
	require.NoError(t, err)
	assert.False(t, suspended)
	assert.Zero(t, alice.ManaPool.Total())
	assert.Equal(t, ZoneStack, card.Zone)
}

func TestSpellFizzlesWhenAllTargetsGone(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	victim := putCreature(t, s, "bob", "Doomed Bear", 2, 2)
	def := sorceryCard("Overkill", "{B}", "Destroy target creature.")
	def.Effect = func(obj *GameObject, _ *State, targets []string) []rules.Event {
		out := make([]rules.Event, 0, len(targets))
		for _, id := range targets {
			out = append(out, rules.NewEvent(rules.EventDestroy, id, obj.ID, obj.ControllerID))
		}
		return out
	}
	card := putCard(t, s, "alice", ZoneHand, def)
	alice, _ := s.Player("alice")
	alice.ManaPool.Add(mana.Black, 1)

	_, _, err := s.CastSpell("alice", card.ID, []string{victim.ID}, 0)
	require.NoError(t, err)

	// The target dies in response.
	s.Emit(rules.NewEvent(rules.EventDestroy, victim.ID, "", "bob"))
	require.Equal(t, ZoneGraveyard, victim.Zone)

	s.resolveTopOfStack()
	assert.Equal(t, ZoneGraveyard, card.Zone)
	var sawCountered bool
	for _, ev := range s.EventLog() {
		if ev.Type == rules.EventSpellCountered && ev.TargetID == card.ID {
			sawCountered = true
		}
	}
	assert.True(t, sawCountered, "a fully targetless spell fizzles")
}

func TestModalSpellAsksForMode(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	var chosen string
	def := sorceryCard("Cryptic Choice", "{U}", "Choose one.")
	def.SpellModes = []SpellMode{
		{ID: "draw", Description: "Draw a card", Effect: func(obj *GameObject, _ *State, _ []string) []rules.Event {
			chosen = "draw"
			return []rules.Event{rules.NewEventWithAmount(rules.EventDraw, obj.ControllerID, obj.ID, obj.ControllerID, 1)}
		}},
		{ID: "gain", Description: "Gain 3 life", Effect: func(obj *GameObject, _ *State, _ []string) []rules.Event {
			chosen = "gain"
			return []rules.Event{rules.NewEventWithAmount(rules.EventGainLife, obj.ControllerID, obj.ID, obj.ControllerID, 3)}
		}},
	}
	card := putCard(t, s, "alice", ZoneHand, def)
	fillLibrary(t, s, "alice", 3)
	alice, _ := s.Player("alice")
	alice.ManaPool.Add(mana.Blue, 1)

	_, _, err := s.CastSpell("alice", card.ID, nil, 0)
	require.NoError(t, err)

	s.resolveTopOfStack()
	require.NotNil(t, s.Pending)
	assert.Equal(t, ChoiceModal, s.Pending.Kind)
	assert.Equal(t, ZoneStack, card.Zone, "a modal spell waits on the stack for its mode")

	_, err = s.SubmitChoice(s.Pending.ID, "alice", []string{"gain"})
	require.NoError(t, err)
	assert.Equal(t, "gain", chosen)
	assert.Equal(t, 23, alice.Life)
	assert.Equal(t, ZoneGraveyard, card.Zone)
}

func TestDynamicCostOverridesPrinted(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	def := creatureCard("Cheapening Giant", 5, 5)
	def.Chars.ManaCost = "{6}"
	def.CostFn = func(_ *GameObject, inner *State) int {
		// Costs one less per creature already fielded.
		return 6 - len(inner.Battlefield())
	}
	putCreature(t, s, "alice", "Helper One", 1, 1)
	putCreature(t, s, "alice", "Helper Two", 1, 1)
	card := putCard(t, s, "alice", ZoneHand, def)
	alice, _ := s.Player("alice")
	alice.ManaPool.Add(mana.Green, 4)

	_, suspended, err := s.CastSpell("alice", card.ID, nil, 0)
	require.NoError(t, err)
	assert.False(t, suspended)
	assert.Zero(t, alice.ManaPool.Total())
	assert.Equal(t, ZoneStack, card.Zone)
}
