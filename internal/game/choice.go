package game

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/discordwell/hyperdraft/internal/game/rules"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChoiceKind identifies what a pending choice is asking for.
type ChoiceKind string

const (
	ChoiceSelectCards       ChoiceKind = "SELECT_CARDS"
	ChoiceScry              ChoiceKind = "SCRY"
	ChoiceSurveil           ChoiceKind = "SURVEIL"
	ChoiceBottomCards       ChoiceKind = "BOTTOM_CARDS"
	ChoiceDiscardToHandSize ChoiceKind = "DISCARD_TO_HAND_SIZE"
	ChoiceDivide            ChoiceKind = "DIVIDE"
	ChoiceModal             ChoiceKind = "MODAL"
	ChoiceCostOption        ChoiceKind = "COST_OPTION"
	ChoiceCostTargets       ChoiceKind = "COST_TARGETS"
)

// ResumptionKind tags where control resumes after the choice is answered.
type ResumptionKind string

const (
	// ResumeCostPlan feeds the answer back into a suspended cost plan and
	// continues the cast it belongs to.
	ResumeCostPlan ResumptionKind = "COST_PLAN"
	// ResumeScry bottoms the selected cards; the rest stay on top.
	ResumeScry ResumptionKind = "SCRY"
	// ResumeSurveil puts the selected cards into the graveyard.
	ResumeSurveil ResumptionKind = "SURVEIL"
	// ResumeBottomCards bottoms the selected cards after a kept mulligan.
	ResumeBottomCards ResumptionKind = "BOTTOM_CARDS"
	// ResumeDiscardToHandSize discards the selected cards during cleanup.
	ResumeDiscardToHandSize ResumptionKind = "DISCARD_TO_HAND_SIZE"
	// ResumeDivide allocates an amount among the selected targets.
	ResumeDivide ResumptionKind = "DIVIDE"
	// ResumeModal runs the selected mode of a modal spell.
	ResumeModal ResumptionKind = "MODAL"
	// ResumeCard hands the answer to the source card's ResolveChoice.
	ResumeCard ResumptionKind = "CARD"
)

// Resumption is the serializable continuation record attached to a pending
// choice. It names what to do with the answer instead of capturing it in a
// closure, so a suspended game can be inspected and restored.
type Resumption struct {
	Kind   ResumptionKind
	CastID string // suspended cast this belongs to, for ResumeCostPlan
	Data   map[string]string
}

// ChoiceOption is one selectable option of a pending choice.
type ChoiceOption struct {
	ID    string
	Label string
}

// PendingChoice is the single suspension point of a game. While one exists
// no other cast, cost payment or mid-resolution question may begin; the
// whole game waits on the named player.
type PendingChoice struct {
	ID       string
	Kind     ChoiceKind
	PlayerID string
	Prompt   string
	Options  []ChoiceOption
	MinPicks int
	MaxPicks int
	SourceID string
	Data     map[string]string
	Resume   Resumption
}

// CreateChoice installs a pending choice. It is an error to create one while
// another is outstanding; callers gate on Pending before starting anything
// that might need to ask.
func (s *State) CreateChoice(pc *PendingChoice) error {
	if s.Pending != nil {
		return fmt.Errorf("game %s already has pending choice %s", s.GameID, s.Pending.ID)
	}
	if pc.ID == "" {
		pc.ID = uuid.NewString()
	}
	if pc.Data == nil {
		pc.Data = make(map[string]string)
	}
	if pc.MaxPicks == 0 {
		pc.MaxPicks = len(pc.Options)
	}
	s.Pending = pc
	s.logger.Debug("pending choice created",
		zap.String("choice_id", pc.ID),
		zap.String("kind", string(pc.Kind)),
		zap.String("player_id", pc.PlayerID),
	)
	return nil
}

// SubmitChoice answers the pending choice and resumes the suspended work.
// The slot is cleared before dispatch so the continuation may install a new
// choice of its own. Returns every event processed by the resumed work.
func (s *State) SubmitChoice(choiceID, playerID string, selected []string) ([]rules.Event, error) {
	pc := s.Pending
	if pc == nil {
		return nil, fmt.Errorf("game %s has no pending choice", s.GameID)
	}
	if pc.ID != choiceID {
		return nil, fmt.Errorf("choice %s is not pending (expected %s)", choiceID, pc.ID)
	}
	if pc.PlayerID != playerID {
		return nil, fmt.Errorf("choice %s belongs to player %s", pc.ID, pc.PlayerID)
	}
	picks, err := pc.validateSelection(selected)
	if err != nil {
		return nil, err
	}

	s.Pending = nil

	var processed []rules.Event
	switch pc.Resume.Kind {
	case ResumeCostPlan:
		processed, err = s.resumeCast(pc, picks)
	case ResumeScry:
		processed = s.resumeScry(pc, picks)
	case ResumeSurveil:
		processed = s.resumeSurveil(pc, picks)
	case ResumeBottomCards:
		processed = s.resumeBottomCards(pc, picks)
	case ResumeDiscardToHandSize:
		processed = s.resumeDiscard(pc, picks)
	case ResumeDivide:
		processed, err = s.resumeDivide(pc, selected)
	case ResumeModal:
		processed, err = s.resumeModal(pc, selected)
	case ResumeCard:
		processed, err = s.resumeCardChoice(pc, picks)
	default:
		err = fmt.Errorf("choice %s has unknown resumption %q", pc.ID, pc.Resume.Kind)
	}

	// A rejected answer that changed nothing leaves the question standing.
	if err != nil && len(processed) == 0 && s.Pending == nil {
		s.Pending = pc
	}
	return processed, err
}

// validateSelection checks pick count and option membership. Divide answers
// carry "id=amount" entries, so membership is checked on the id part.
func (pc *PendingChoice) validateSelection(selected []string) ([]string, error) {
	if len(selected) < pc.MinPicks {
		return nil, fmt.Errorf("choice %s needs at least %d picks, got %d", pc.ID, pc.MinPicks, len(selected))
	}
	if pc.MaxPicks > 0 && len(selected) > pc.MaxPicks {
		return nil, fmt.Errorf("choice %s allows at most %d picks, got %d", pc.ID, pc.MaxPicks, len(selected))
	}
	if len(pc.Options) == 0 {
		return selected, nil
	}
	valid := make(map[string]bool, len(pc.Options))
	for _, opt := range pc.Options {
		valid[opt.ID] = true
	}
	picks := make([]string, 0, len(selected))
	seen := make(map[string]bool, len(selected))
	for _, raw := range selected {
		id := raw
		if i := strings.IndexByte(raw, '='); i >= 0 {
			id = raw[:i]
		}
		if !valid[id] {
			return nil, fmt.Errorf("choice %s: %q is not an option", pc.ID, id)
		}
		if seen[id] {
			return nil, fmt.Errorf("choice %s: %q picked twice", pc.ID, id)
		}
		seen[id] = true
		picks = append(picks, id)
	}
	return picks, nil
}

func (s *State) resumeScry(pc *PendingChoice, bottomed []string) []rules.Event {
	var processed []rules.Event
	for _, id := range bottomed {
		ev := rules.NewZoneChange(id, pc.SourceID, pc.PlayerID, ZoneLibrary, ZoneLibrary)
		ev.Metadata["zone_owner"] = pc.PlayerID
		processed = append(processed, s.Emit(ev)...)
	}
	processed = append(processed, s.Emit(rules.NewEvent(rules.EventScry, pc.PlayerID, pc.SourceID, pc.PlayerID))...)
	return processed
}

func (s *State) resumeSurveil(pc *PendingChoice, binned []string) []rules.Event {
	var processed []rules.Event
	for _, id := range binned {
		ev := rules.NewZoneChange(id, pc.SourceID, pc.PlayerID, ZoneLibrary, ZoneGraveyard)
		processed = append(processed, s.Emit(ev)...)
	}
	processed = append(processed, s.Emit(rules.NewEvent(rules.EventSurveil, pc.PlayerID, pc.SourceID, pc.PlayerID))...)
	return processed
}

func (s *State) resumeBottomCards(pc *PendingChoice, bottomed []string) []rules.Event {
	processed := s.bottomAfterMulligan(pc.PlayerID, bottomed)
	if p, ok := s.players[pc.PlayerID]; ok {
		p.KeptHand = true
	}
	return processed
}

func (s *State) resumeDiscard(pc *PendingChoice, discarded []string) []rules.Event {
	var processed []rules.Event
	for _, id := range discarded {
		ev := rules.NewEvent(rules.EventDiscard, id, pc.SourceID, pc.PlayerID)
		ev.PlayerID = pc.PlayerID
		processed = append(processed, s.Emit(ev)...)
	}
	return processed
}

// resumeDivide parses "targetID=amount" entries and emits one damage event
// per allocation. The allocation must spend the whole pool.
func (s *State) resumeDivide(pc *PendingChoice, selected []string) ([]rules.Event, error) {
	total, _ := strconv.Atoi(pc.Data["amount"])
	allocated := 0
	type share struct {
		target string
		amount int
	}
	shares := make([]share, 0, len(selected))
	for _, raw := range selected {
		i := strings.IndexByte(raw, '=')
		if i < 0 {
			return nil, fmt.Errorf("choice %s: allocation %q must be target=amount", pc.ID, raw)
		}
		amount, err := strconv.Atoi(raw[i+1:])
		if err != nil || amount <= 0 {
			return nil, fmt.Errorf("choice %s: bad allocation amount in %q", pc.ID, raw)
		}
		shares = append(shares, share{target: raw[:i], amount: amount})
		allocated += amount
	}
	if allocated != total {
		return nil, fmt.Errorf("choice %s: allocated %d of %d", pc.ID, allocated, total)
	}

	eventType := rules.EventType(pc.Data["event_type"])
	if eventType == "" {
		eventType = rules.EventDamage
	}
	var processed []rules.Event
	for _, sh := range shares {
		ev := rules.NewEventWithAmount(eventType, sh.target, pc.SourceID, pc.PlayerID, sh.amount)
		if _, isPlayer := s.players[sh.target]; isPlayer && eventType == rules.EventDamage {
			ev.Type = rules.EventDamagePlayer
			ev.PlayerID = sh.target
		}
		processed = append(processed, s.Emit(ev)...)
	}
	return processed, nil
}

// resumeModal runs the selected mode. The first pick is the mode ID; any
// further picks are that mode's targets.
func (s *State) resumeModal(pc *PendingChoice, selected []string) ([]rules.Event, error) {
	if len(selected) == 0 {
		return nil, fmt.Errorf("choice %s: no mode selected", pc.ID)
	}
	obj, ok := s.objects[pc.SourceID]
	if !ok || obj.Definition == nil {
		return nil, fmt.Errorf("choice %s: source %s gone", pc.ID, pc.SourceID)
	}
	modal, ok := obj.Definition.(ModalSpell)
	if !ok {
		return nil, fmt.Errorf("choice %s: source %s is not modal", pc.ID, pc.SourceID)
	}
	modeID, targets := selected[0], selected[1:]
	for _, mode := range modal.Modes(obj, s) {
		if mode.ID != modeID {
			continue
		}
		if mode.NeedsTarget && len(targets) == 0 {
			return nil, fmt.Errorf("choice %s: mode %s needs a target", pc.ID, modeID)
		}
		var processed []rules.Event
		if mode.Effect != nil {
			for _, ev := range mode.Effect(obj, s, targets) {
				processed = append(processed, s.Emit(ev)...)
			}
		}
		processed = append(processed, s.finishSpell(obj)...)
		return processed, nil
	}
	return nil, fmt.Errorf("choice %s: unknown mode %q", pc.ID, modeID)
}

func (s *State) resumeCardChoice(pc *PendingChoice, picks []string) ([]rules.Event, error) {
	obj, ok := s.objects[pc.SourceID]
	if !ok || obj.Definition == nil {
		return nil, fmt.Errorf("choice %s: source %s gone", pc.ID, pc.SourceID)
	}
	resolver, ok := obj.Definition.(ChoiceResolving)
	if !ok {
		return nil, fmt.Errorf("choice %s: source %s cannot resolve choices", pc.ID, pc.SourceID)
	}
	var processed []rules.Event
	for _, ev := range resolver.ResolveChoice(obj, s, pc, picks) {
		processed = append(processed, s.Emit(ev)...)
	}
	return processed, nil
}
