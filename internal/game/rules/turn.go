package rules

import (
	"fmt"
	"strings"
)

// Phase represents the broad phases of a classic-ruleset turn.
type Phase int

const (
	PhaseBeginning Phase = iota
	PhasePrecombatMain
	PhaseCombat
	PhasePostcombatMain
	PhaseEnding
)

var phaseNames = map[Phase]string{
	PhaseBeginning:      "BEGINNING",
	PhasePrecombatMain:  "PRECOMBAT_MAIN",
	PhaseCombat:         "COMBAT",
	PhasePostcombatMain: "POSTCOMBAT_MAIN",
	PhaseEnding:         "ENDING",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// Step represents the individual steps that comprise a classic turn.
type Step int

const (
	StepUntap Step = iota
	StepUpkeep
	StepDraw
	StepMain1
	StepBeginCombat
	StepDeclareAttackers
	StepDeclareBlockers
	StepFirstStrikeDamage
	StepCombatDamage
	StepEndCombat
	StepMain2
	StepEnd
	StepCleanup
)

var stepNames = map[Step]string{
	StepUntap:             "UNTAP",
	StepUpkeep:            "UPKEEP",
	StepDraw:              "DRAW",
	StepMain1:             "MAIN1",
	StepBeginCombat:       "BEGIN_COMBAT",
	StepDeclareAttackers:  "DECLARE_ATTACKERS",
	StepDeclareBlockers:   "DECLARE_BLOCKERS",
	StepFirstStrikeDamage: "FIRST_STRIKE_DAMAGE",
	StepCombatDamage:      "COMBAT_DAMAGE",
	StepEndCombat:         "END_COMBAT",
	StepMain2:             "MAIN2",
	StepEnd:               "END",
	StepCleanup:           "CLEANUP",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STEP_%d", int(s))
}

// HasPriorityPass reports whether players receive priority during this step.
// Untap and cleanup never grant priority.
func (s Step) HasPriorityPass() bool {
	return s != StepUntap && s != StepCleanup
}

type turnEntry struct {
	phase Phase
	step  Step
}

// baseTurnSequence is the default classic turn structure without the
// first-strike damage step.
var baseTurnSequence = []turnEntry{
	{PhaseBeginning, StepUntap},
	{PhaseBeginning, StepUpkeep},
	{PhaseBeginning, StepDraw},
	{PhasePrecombatMain, StepMain1},
	{PhaseCombat, StepBeginCombat},
	{PhaseCombat, StepDeclareAttackers},
	{PhaseCombat, StepDeclareBlockers},
	{PhaseCombat, StepCombatDamage},
	{PhaseCombat, StepEndCombat},
	{PhasePostcombatMain, StepMain2},
	{PhaseEnding, StepEnd},
	{PhaseEnding, StepCleanup},
}

// combatSequence is the slice of combat steps spliced in for extra combats.
var combatSequence = []turnEntry{
	{PhaseCombat, StepBeginCombat},
	{PhaseCombat, StepDeclareAttackers},
	{PhaseCombat, StepDeclareBlockers},
	{PhaseCombat, StepCombatDamage},
	{PhaseCombat, StepEndCombat},
	{PhasePostcombatMain, StepMain2},
}

// buildTurnSequence creates the turn sequence, optionally including
// StepFirstStrikeDamage when any combatant has first or double strike.
func buildTurnSequence(hasFirstStrike bool) []turnEntry {
	sequence := make([]turnEntry, len(baseTurnSequence))
	copy(sequence, baseTurnSequence)

	if !hasFirstStrike {
		return sequence
	}

	damageIdx := -1
	for i, entry := range sequence {
		if entry.step == StepCombatDamage {
			damageIdx = i
			break
		}
	}
	if damageIdx == -1 {
		return sequence
	}

	newSequence := make([]turnEntry, len(sequence)+1)
	copy(newSequence, sequence[:damageIdx])
	newSequence[damageIdx] = turnEntry{PhaseCombat, StepFirstStrikeDamage}
	copy(newSequence[damageIdx+1:], sequence[damageIdx:])

	return newSequence
}

// Tracker tracks active/priority player and classic turn progression.
type Tracker struct {
	orderIndex     int
	turnNumber     int
	activePlayer   string
	priorityPlayer string
	sequence       []turnEntry
	hasFirstStrike bool
}

// NewTracker creates a tracker initialized at turn 1, untap step.
func NewTracker(activePlayer string) *Tracker {
	active := strings.TrimSpace(activePlayer)
	return &Tracker{
		orderIndex:     0,
		turnNumber:     1,
		activePlayer:   active,
		priorityPlayer: active,
		sequence:       buildTurnSequence(false),
	}
}

// CurrentPhase returns the phase currently in progress.
func (t *Tracker) CurrentPhase() Phase {
	return t.sequence[t.orderIndex].phase
}

// CurrentStep returns the step currently in progress.
func (t *Tracker) CurrentStep() Step {
	return t.sequence[t.orderIndex].step
}

// TurnNumber returns the current turn number (1-based).
func (t *Tracker) TurnNumber() int {
	return t.turnNumber
}

// ActivePlayer returns the player whose turn it is.
func (t *Tracker) ActivePlayer() string {
	return t.activePlayer
}

// PriorityPlayer returns the player who currently holds priority.
func (t *Tracker) PriorityPlayer() string {
	return t.priorityPlayer
}

// SetPriority sets the player who currently holds priority.
func (t *Tracker) SetPriority(player string) {
	t.priorityPlayer = strings.TrimSpace(player)
}

// AdvanceStep advances to the next step in the turn structure. When the end
// of the structure is reached the turn number increments and the active
// player rotates to nextActivePlayer if provided. Returns the new position.
func (t *Tracker) AdvanceStep(nextActivePlayer string) (Phase, Step) {
	t.orderIndex++
	if t.orderIndex >= len(t.sequence) {
		t.orderIndex = 0
		t.turnNumber++
		if next := strings.TrimSpace(nextActivePlayer); next != "" {
			t.activePlayer = next
		}
		t.sequence = buildTurnSequence(false)
		t.hasFirstStrike = false
	}

	// Priority always reverts to the active player at the start of a step.
	t.priorityPlayer = t.activePlayer

	return t.CurrentPhase(), t.CurrentStep()
}

// SetHasFirstStrike rebuilds the turn sequence to include or exclude the
// first-strike damage step. Called once blockers are known.
func (t *Tracker) SetHasFirstStrike(hasFirstStrike bool) {
	if t.hasFirstStrike == hasFirstStrike {
		return
	}

	newSequence := buildTurnSequence(hasFirstStrike)
	if t.hasFirstStrike && !hasFirstStrike && t.orderIndex >= len(newSequence) {
		t.orderIndex = len(newSequence) - 1
	}

	t.sequence = newSequence
	t.hasFirstStrike = hasFirstStrike
}

// InsertExtraCombat splices an additional combat (plus an extra main phase)
// into the sequence immediately after the current step. Call during the end
// of combat step when an extra-combat counter is consumed.
func (t *Tracker) InsertExtraCombat() {
	insertAt := t.orderIndex + 1
	newSequence := make([]turnEntry, 0, len(t.sequence)+len(combatSequence))
	newSequence = append(newSequence, t.sequence[:insertAt]...)
	newSequence = append(newSequence, combatSequence...)
	newSequence = append(newSequence, t.sequence[insertAt:]...)
	t.sequence = newSequence
}

// StepsRemaining returns the number of steps left in the current turn,
// counting the current step.
func (t *Tracker) StepsRemaining() int {
	return len(t.sequence) - t.orderIndex
}
