package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclareAttackersTapsUnlessVigilance(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	bear := putCreature(t, s, "alice", "Grizzly Bears", 2, 2)
	sentry := putCreature(t, s, "alice", "Serra Sentry", 3, 3, AbilityVigilance)
	setDecisions(s, "alice", &FuncDecisions{
		AttackersFn: func(_ string, candidates, _ []string) []AttackDeclaration {
			return []AttackDeclaration{
				{AttackerID: bear.ID, DefenderID: "bob"},
				{AttackerID: sentry.ID, DefenderID: "bob"},
			}
		},
	})

	s.attacks.DeclareAttackers(s)

	assert.True(t, bear.State.Tapped)
	assert.False(t, sentry.State.Tapped, "vigilance attacks untapped")
	assert.True(t, bear.State.Attacking)
	assert.Equal(t, "bob", s.combat.Attackers[bear.ID])
}

func TestSummoningSickCreatureCannotAttack(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	sick := putCreature(t, s, "alice", "Fresh Bear", 2, 2)
	sick.State.SummoningSick = true
	hasty := putCreature(t, s, "alice", "Raging Goblin", 1, 1, AbilityHaste)
	hasty.State.SummoningSick = true

	candidates := classicCombatController{}.attackCandidates(s, "alice")

	assert.NotContains(t, candidates, sick.ID)
	assert.Contains(t, candidates, hasty.ID, "haste ignores summoning sickness")
}

func TestUnblockedAttackerDamagesPlayer(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	bear := putCreature(t, s, "alice", "Grizzly Bears", 2, 2)
	declareAttack(s, bear, "bob")
	bob, _ := s.Player("bob")
	before := bob.Life

	s.attacks.DealDamage(s, false)

	assert.Equal(t, before-2, bob.Life)
}

func TestBlockedAttackerTradesDamage(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	attacker := putCreature(t, s, "alice", "Hill Giant", 3, 3)
	blocker := putCreature(t, s, "bob", "Grizzly Bears", 2, 2)
	declareAttack(s, attacker, "bob", blocker)
	bob, _ := s.Player("bob")
	before := bob.Life

	s.attacks.DealDamage(s, false)

	assert.Equal(t, before, bob.Life, "a blocked attacker without trample deals nothing to the player")
	assert.Equal(t, ZoneGraveyard, blocker.Zone)
	assert.Equal(t, 2, attacker.State.Damage)
	assert.Equal(t, ZoneBattlefield, attacker.Zone)
}

func TestTrampleSpillsExcessToPlayer(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	attacker := putCreature(t, s, "alice", "Craw Wurm", 5, 4, AbilityTrample)
	first := putCreature(t, s, "bob", "First Bear", 2, 2)
	second := putCreature(t, s, "bob", "Second Bear", 2, 2)
	declareAttack(s, attacker, "bob", first, second)
	setDecisions(s, "alice", &FuncDecisions{
		AssignFn: func(_ string, _ []string, _ int) map[string]int {
			return map[string]int{first.ID: 2, second.ID: 2}
		},
	})
	bob, _ := s.Player("bob")
	before := bob.Life

	s.attacks.DealDamage(s, false)

	assert.Equal(t, ZoneGraveyard, first.Zone)
	assert.Equal(t, ZoneGraveyard, second.Zone)
	assert.Equal(t, before-1, bob.Life, "lethal 2 to each blocker, 1 tramples over")
}

func TestTrampleExcessCarriesToPlaneswalker(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	attacker := putCreature(t, s, "alice", "Craw Wurm", 5, 4, AbilityTrample)
	walker := putCard(t, s, "bob", ZoneBattlefield, &BasicCard{Chars: Characteristics{
		Name:    "Sage of Mists",
		Types:   []string{TypePlaneswalker},
		Loyalty: 4,
	}})
	walker.State.Counters.Add("loyalty", 4)
	blocker := putCreature(t, s, "bob", "Lone Bear", 2, 2)
	declareAttack(s, attacker, walker.ID, blocker)
	setDecisions(s, "alice", &FuncDecisions{
		AssignFn: func(_ string, _ []string, _ int) map[string]int {
			return map[string]int{blocker.ID: 2}
		},
	})
	bob, _ := s.Player("bob")
	before := bob.Life

	s.attacks.DealDamage(s, false)

	assert.Equal(t, ZoneGraveyard, blocker.Zone)
	assert.Equal(t, 1, walker.State.Counters.Count("loyalty"), "the unassigned 3 carry over to the planeswalker")
	assert.Equal(t, before, bob.Life, "the defending player takes nothing")
}

func TestDefaultAssignmentSplitsEvenlyRemainderToFirst(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	attacker := putCreature(t, s, "alice", "Thorn Elemental", 5, 5, AbilityTrample)
	first := putCreature(t, s, "bob", "First Bear", 2, 2)
	second := putCreature(t, s, "bob", "Second Bear", 2, 2)
	declareAttack(s, attacker, "bob", first, second)
	bob, _ := s.Player("bob")
	before := bob.Life

	s.attacks.DealDamage(s, false)

	// 3 to the first, 2 to the second; the default spends every point on
	// the blockers, so nothing tramples over.
	assert.Equal(t, ZoneGraveyard, first.Zone)
	assert.Equal(t, ZoneGraveyard, second.Zone)
	assert.Equal(t, before, bob.Life)
	assert.Equal(t, 4, attacker.State.Damage, "both blockers struck back")
}

func TestNonTrampleRemainderPilesOnFirstBlocker(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	attacker := putCreature(t, s, "alice", "Colossus", 10, 10)
	blocker := putCreature(t, s, "bob", "Wall", 0, 4)
	declareAttack(s, attacker, "bob", blocker)
	bob, _ := s.Player("bob")
	before := bob.Life

	s.attacks.DealDamage(s, false)

	assert.Equal(t, ZoneGraveyard, blocker.Zone)
	assert.Equal(t, before, bob.Life, "excess without trample is wasted on the blocker")
}

func TestProviderDamageAssignmentHonored(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	attacker := putCreature(t, s, "alice", "Hill Giant", 3, 3)
	first := putCreature(t, s, "bob", "First Blocker", 1, 3)
	second := putCreature(t, s, "bob", "Second Blocker", 1, 3)
	declareAttack(s, attacker, "bob", first, second)
	setDecisions(s, "alice", &FuncDecisions{
		AssignFn: func(_ string, _ []string, _ int) map[string]int {
			return map[string]int{second.ID: 3}
		},
	})

	s.attacks.DealDamage(s, false)

	assert.Zero(t, first.State.Damage)
	assert.Equal(t, ZoneGraveyard, second.Zone)
}

func TestFirstStrikeKillsBeforeNormalDamage(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	striker := putCreature(t, s, "alice", "White Knight", 2, 2, AbilityFirstStrike)
	blocker := putCreature(t, s, "bob", "Grizzly Bears", 2, 2)
	declareAttack(s, striker, "bob", blocker)

	s.attacks.DealDamage(s, true)
	assert.Equal(t, ZoneGraveyard, blocker.Zone)
	assert.Zero(t, striker.State.Damage)

	s.attacks.DealDamage(s, false)
	assert.Equal(t, ZoneBattlefield, striker.Zone, "the dead blocker never strikes back")
	assert.Zero(t, striker.State.Damage)
}

func TestDoubleStrikeDealsInBothSteps(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	striker := putCreature(t, s, "alice", "Fencing Ace", 1, 1, AbilityDoubleStrike)
	declareAttack(s, striker, "bob")
	bob, _ := s.Player("bob")
	before := bob.Life

	s.attacks.DealDamage(s, true)
	s.attacks.DealDamage(s, false)

	assert.Equal(t, before-2, bob.Life)
}

func TestMenaceDropsSingleBlock(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	attacker := putCreature(t, s, "alice", "Goblin Heelcutter", 3, 2, AbilityMenace)
	declareAttack(s, attacker, "bob")
	blocker := putCreature(t, s, "bob", "Lone Bear", 2, 2)
	setDecisions(s, "bob", &FuncDecisions{
		BlockersFn: func(_ string, _, _ []string) []BlockDeclaration {
			return []BlockDeclaration{{BlockerID: blocker.ID, AttackerID: attacker.ID}}
		},
	})

	s.attacks.DeclareBlockers(s)

	assert.Empty(t, s.combat.Blockers[attacker.ID], "menace needs two blockers")
	assert.False(t, blocker.State.Blocking)
}

func TestMenaceAllowsDoubleBlock(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	attacker := putCreature(t, s, "alice", "Goblin Heelcutter", 3, 2, AbilityMenace)
	declareAttack(s, attacker, "bob")
	one := putCreature(t, s, "bob", "Bear One", 2, 2)
	two := putCreature(t, s, "bob", "Bear Two", 2, 2)
	setDecisions(s, "bob", &FuncDecisions{
		BlockersFn: func(_ string, _, _ []string) []BlockDeclaration {
			return []BlockDeclaration{
				{BlockerID: one.ID, AttackerID: attacker.ID},
				{BlockerID: two.ID, AttackerID: attacker.ID},
			}
		},
	})

	s.attacks.DeclareBlockers(s)

	assert.Len(t, s.combat.Blockers[attacker.ID], 2)
}

func TestFlyingBlockedOnlyByFlyingOrReach(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	flier := putCreature(t, s, "alice", "Wind Drake", 2, 2, AbilityFlying)
	grounded := putCreature(t, s, "bob", "Grizzly Bears", 2, 2)
	spider := putCreature(t, s, "bob", "Giant Spider", 2, 4, AbilityReach)

	assert.False(t, canBlock(flier, grounded))
	assert.True(t, canBlock(flier, spider))
}

func TestShadowPairsOnlyWithShadow(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	shade := putCreature(t, s, "alice", "Dauthi Slayer", 2, 2, AbilityShadow)
	plain := putCreature(t, s, "bob", "Grizzly Bears", 2, 2)
	other := putCreature(t, s, "bob", "Soltari Monk", 2, 1, AbilityShadow)

	assert.False(t, canBlock(shade, plain))
	assert.True(t, canBlock(shade, other))
	assert.False(t, canBlock(plain, other), "shadow cannot block the unshadowed either")
}

func TestLifelinkGainsOnCombatDamage(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	healer := putCreature(t, s, "alice", "Vampire Nighthawk", 2, 3, AbilityLifelink)
	declareAttack(s, healer, "bob")
	alice, _ := s.Player("alice")
	before := alice.Life

	s.attacks.DealDamage(s, false)

	assert.Equal(t, before+2, alice.Life)
}

func TestDeathtouchPointIsLethal(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	assassin := putCreature(t, s, "alice", "Gnarlwood Stalker", 3, 3, AbilityDeathtouch, AbilityTrample)
	big := putCreature(t, s, "bob", "Ancient Wall", 0, 8)
	declareAttack(s, assassin, "bob", big)
	setDecisions(s, "alice", &FuncDecisions{
		AssignFn: func(_ string, _ []string, _ int) map[string]int {
			return map[string]int{big.ID: 1}
		},
	})
	bob, _ := s.Player("bob")
	before := bob.Life

	s.attacks.DealDamage(s, false)

	assert.Equal(t, ZoneGraveyard, big.Zone, "one deathtouch point is lethal")
	assert.Equal(t, before-2, bob.Life, "the other two trample through")
}

func TestEndCombatClearsDeclarations(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	attacker := putCreature(t, s, "alice", "Grizzly Bears", 2, 2)
	blocker := putCreature(t, s, "bob", "Wall", 0, 4)
	declareAttack(s, attacker, "bob", blocker)

	s.attacks.EndCombat(s)

	assert.False(t, attacker.State.Attacking)
	assert.False(t, blocker.State.Blocking)
	assert.Empty(t, s.combat.Order)
	assert.Empty(t, s.combat.Attackers)
}

func TestClassicRefusesDirectAttack(t *testing.T) {
	s := newTestState(t, RulesetClassic)
	bear := putCreature(t, s, "alice", "Grizzly Bears", 2, 2)

	_, _, err := s.attacks.DirectAttack(s, "alice", bear.ID, "bob")
	require.Error(t, err)
}
