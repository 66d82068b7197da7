package game

import (
	"fmt"
	"strconv"

	"github.com/discordwell/hyperdraft/internal/game/mana"
	"github.com/discordwell/hyperdraft/internal/game/rules"
)

// CostStepKind identifies one kind of non-mana cost.
type CostStepKind string

const (
	CostPayLife            CostStepKind = "PAY_LIFE"
	CostAddMana            CostStepKind = "ADD_MANA"
	CostTap                CostStepKind = "TAP"
	CostSacrifice          CostStepKind = "SACRIFICE"
	CostDiscard            CostStepKind = "DISCARD"
	CostExileFromGraveyard CostStepKind = "EXILE_FROM_GRAVEYARD"
	CostReturnToHand       CostStepKind = "RETURN_TO_HAND"
	CostRemoveCounters     CostStepKind = "REMOVE_COUNTERS"
	CostOr                 CostStepKind = "OR"
)

// FilterSpec is a serializable candidate filter for cost steps that pick
// objects ("sacrifice a creature", "discard two cards"). Zero-value fields
// match everything.
type FilterSpec struct {
	Zone    string
	Types   []string
	Subtype string
	// ExcludeID removes one object from candidacy (a card never pays its
	// own additional cost with itself).
	ExcludeID string
}

func (f FilterSpec) matches(obj *GameObject, payerID string) bool {
	if obj.ID == f.ExcludeID {
		return false
	}
	if f.Zone != "" && obj.Zone != f.Zone {
		return false
	}
	if f.Zone == ZoneBattlefield && obj.ControllerID != payerID {
		return false
	}
	if f.Zone != ZoneBattlefield && f.Zone != "" && obj.ZoneOwner != payerID {
		return false
	}
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if obj.Characteristics.HasType(t) || (t == TypeCreature && obj.IsCreature()) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Subtype != "" {
		found := false
		for _, st := range obj.Characteristics.Subtypes {
			if st == f.Subtype {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// costCandidates lists the payer's objects matching the filter, in zone order.
func (s *State) costCandidates(f FilterSpec, payerID string) []string {
	zoneKind := f.Zone
	if zoneKind == "" {
		zoneKind = ZoneBattlefield
	}
	owner := payerID
	if zoneIsShared(zoneKind) {
		owner = ""
	}
	var out []string
	for _, id := range s.zone(zoneKind, owner).Objects {
		obj, ok := s.objects[id]
		if !ok {
			continue
		}
		if f.matches(obj, payerID) {
			out = append(out, id)
		}
	}
	return out
}

// CostStep is one unit of a cost plan. Deterministic kinds (pay life, add
// mana, tap a named object, remove counters) execute immediately; selection
// kinds pick Count objects matching Filter, asking the player when
// candidates exceed the requirement.
type CostStep struct {
	Kind        CostStepKind
	Amount      int
	TargetID    string
	Filter      FilterSpec
	Count       int
	CounterName string
	// ManaType is the mana a CostAddMana step produces.
	ManaType mana.Type
	// Options holds the alternatives of a CostOr step.
	Options []CostStep
	// Label describes the step in choice prompts.
	Label string
}

// CostPlan is an ordered list of cost steps. Plans execute atomically from
// the outside: either every step's events are emitted or, when the plan is
// unpayable up front, nothing happens at all.
type CostPlan struct {
	Steps []CostStep
}

// canPayStep checks payability without mutating anything.
func (s *State) canPayStep(step CostStep, payerID string) bool {
	switch step.Kind {
	case CostPayLife:
		p, ok := s.players[payerID]
		return ok && p.Life >= step.Amount
	case CostAddMana:
		_, ok := s.players[payerID]
		return ok
	case CostTap:
		if step.TargetID != "" {
			obj, ok := s.objects[step.TargetID]
			return ok && obj.OnBattlefield() && !obj.State.Tapped
		}
		count := step.Count
		if count <= 0 {
			count = 1
		}
		untapped := 0
		for _, id := range s.costCandidates(step.Filter, payerID) {
			if obj, ok := s.objects[id]; ok && !obj.State.Tapped {
				untapped++
			}
		}
		return untapped >= count
	case CostSacrifice, CostDiscard, CostExileFromGraveyard, CostReturnToHand:
		count := step.Count
		if count <= 0 {
			count = 1
		}
		if step.TargetID != "" {
			_, ok := s.objects[step.TargetID]
			return ok
		}
		return len(s.costCandidates(step.filterWithDefaults(), payerID)) >= count
	case CostRemoveCounters:
		obj, ok := s.objects[step.TargetID]
		return ok && obj.State.Counters.Count(step.CounterName) >= step.Amount
	case CostOr:
		for _, opt := range step.Options {
			if s.canPayStep(opt, payerID) {
				return true
			}
		}
		return false
	}
	return false
}

// filterWithDefaults fills the implicit zone of selection kinds.
func (step CostStep) filterWithDefaults() FilterSpec {
	f := step.Filter
	if f.Zone == "" {
		switch step.Kind {
		case CostDiscard:
			f.Zone = ZoneHand
		case CostExileFromGraveyard:
			f.Zone = ZoneGraveyard
		default:
			f.Zone = ZoneBattlefield
		}
	}
	return f
}

// CanPayPlan reports whether every step of the plan is individually payable.
// The check is a precondition, not a reservation: overlapping steps that
// compete for the same object are caught when the plan actually runs.
func (s *State) CanPayPlan(plan *CostPlan, payerID string) bool {
	if plan == nil {
		return true
	}
	for _, step := range plan.Steps {
		if !s.canPayStep(step, payerID) {
			return false
		}
	}
	return true
}

// stepEvents produces the payment events for a step given the objects
// picked for it (empty for deterministic kinds).
func (s *State) stepEvents(step CostStep, payerID, sourceID string, picks []string) []rules.Event {
	switch step.Kind {
	case CostPayLife:
		ev := rules.NewEventWithAmount(rules.EventPayLife, payerID, sourceID, payerID, step.Amount)
		return []rules.Event{ev}
	case CostAddMana:
		amount := step.Amount
		if amount <= 0 {
			amount = 1
		}
		ev := rules.NewEventWithAmount(rules.EventManaAdded, payerID, sourceID, payerID, amount)
		ev.Metadata["mana_type"] = string(step.ManaType)
		return []rules.Event{ev}
	case CostTap:
		targets := picks
		if step.TargetID != "" {
			targets = []string{step.TargetID}
		}
		out := make([]rules.Event, 0, len(targets))
		for _, id := range targets {
			out = append(out, rules.NewEvent(rules.EventTap, id, sourceID, payerID))
		}
		return out
	case CostSacrifice:
		out := make([]rules.Event, 0, len(picks))
		for _, id := range picks {
			out = append(out, rules.NewEvent(rules.EventSacrifice, id, sourceID, payerID))
		}
		return out
	case CostDiscard:
		out := make([]rules.Event, 0, len(picks))
		for _, id := range picks {
			ev := rules.NewEvent(rules.EventDiscard, id, sourceID, payerID)
			ev.PlayerID = payerID
			out = append(out, ev)
		}
		return out
	case CostExileFromGraveyard:
		out := make([]rules.Event, 0, len(picks))
		for _, id := range picks {
			out = append(out, rules.NewZoneChange(id, sourceID, payerID, ZoneGraveyard, ZoneExile))
		}
		return out
	case CostReturnToHand:
		out := make([]rules.Event, 0, len(picks))
		for _, id := range picks {
			ev := rules.NewZoneChange(id, sourceID, payerID, ZoneBattlefield, ZoneHand)
			if obj, ok := s.objects[id]; ok {
				ev.Metadata["zone_owner"] = obj.OwnerID
			}
			out = append(out, ev)
		}
		return out
	case CostRemoveCounters:
		ev := rules.NewEventWithAmount(rules.EventRemoveCounter, step.TargetID, sourceID, payerID, step.Amount)
		ev.Metadata["counter"] = step.CounterName
		return []rules.Event{ev}
	}
	return nil
}

// stepNeedsSelection reports whether a step must pick objects, and lists
// the candidates when it does. Steps whose candidate pool exactly matches
// the requirement auto-select without asking.
func (s *State) stepNeedsSelection(step CostStep, payerID string) (candidates []string, count int, needs bool) {
	switch step.Kind {
	case CostSacrifice, CostDiscard, CostExileFromGraveyard, CostReturnToHand:
		if step.TargetID != "" {
			return nil, 0, false
		}
	case CostTap:
		if step.TargetID != "" {
			return nil, 0, false
		}
	default:
		return nil, 0, false
	}
	count = step.Count
	if count <= 0 {
		count = 1
	}
	candidates = s.costCandidates(step.filterWithDefaults(), payerID)
	if step.Kind == CostTap {
		untapped := candidates[:0]
		for _, id := range candidates {
			if obj, ok := s.objects[id]; ok && !obj.State.Tapped {
				untapped = append(untapped, id)
			}
		}
		candidates = untapped
	}
	return candidates, count, true
}

// payCostSteps walks the cast's plan from its current step. It returns the
// events processed so far plus a suspended flag; when suspended, a pending
// choice has been installed and the cast waits in the suspended-cast table
// until the answer arrives.
func (s *State) payCostSteps(cs *castState) ([]rules.Event, bool, error) {
	plan := cs.Plan
	if plan == nil {
		return nil, false, nil
	}
	var processed []rules.Event
	for cs.NextStep < len(plan.Steps) {
		step := plan.Steps[cs.NextStep]

		if step.Kind == CostOr {
			payable := make([]int, 0, len(step.Options))
			for i, opt := range step.Options {
				if s.canPayStep(opt, cs.PlayerID) {
					payable = append(payable, i)
				}
			}
			if len(payable) == 0 {
				return processed, false, fmt.Errorf("cost step %d: no payable option", cs.NextStep)
			}
			if len(payable) == 1 {
				plan.Steps[cs.NextStep] = step.Options[payable[0]]
				continue
			}
			options := make([]ChoiceOption, 0, len(payable))
			for _, i := range payable {
				options = append(options, ChoiceOption{ID: strconv.Itoa(i), Label: step.Options[i].Label})
			}
			err := s.CreateChoice(&PendingChoice{
				Kind:     ChoiceCostOption,
				PlayerID: cs.PlayerID,
				Prompt:   step.Label,
				Options:  options,
				MinPicks: 1,
				MaxPicks: 1,
				SourceID: cs.CardID,
				Data:     map[string]string{"or_step": "true"},
				Resume:   Resumption{Kind: ResumeCostPlan, CastID: cs.ID},
			})
			if err != nil {
				return processed, false, err
			}
			s.suspendedCasts[cs.ID] = cs
			return processed, true, nil
		}

		candidates, count, needs := s.stepNeedsSelection(step, cs.PlayerID)
		if needs {
			if len(candidates) < count {
				return processed, false, fmt.Errorf("cost step %d: %d candidates for %d required", cs.NextStep, len(candidates), count)
			}
			if len(candidates) > count {
				options := make([]ChoiceOption, 0, len(candidates))
				for _, id := range candidates {
					label := id
					if obj, ok := s.objects[id]; ok {
						label = obj.Characteristics.Name
					}
					options = append(options, ChoiceOption{ID: id, Label: label})
				}
				err := s.CreateChoice(&PendingChoice{
					Kind:     ChoiceCostTargets,
					PlayerID: cs.PlayerID,
					Prompt:   step.Label,
					Options:  options,
					MinPicks: count,
					MaxPicks: count,
					SourceID: cs.CardID,
					Resume:   Resumption{Kind: ResumeCostPlan, CastID: cs.ID},
				})
				if err != nil {
					return processed, false, err
				}
				s.suspendedCasts[cs.ID] = cs
				return processed, true, nil
			}
			// Exactly enough: no choice to make.
			for _, ev := range s.stepEvents(step, cs.PlayerID, cs.CardID, candidates) {
				processed = append(processed, s.Emit(ev)...)
			}
			cs.NextStep++
			continue
		}

		for _, ev := range s.stepEvents(step, cs.PlayerID, cs.CardID, nil) {
			processed = append(processed, s.Emit(ev)...)
		}
		cs.NextStep++
	}
	return processed, false, nil
}

// applyCostSelection feeds a choice answer into the cast's current step and
// advances past it. Or-steps get their selected alternative substituted in
// place and re-walked.
func (s *State) applyCostSelection(cs *castState, pc *PendingChoice, picks []string) ([]rules.Event, error) {
	if cs.Plan == nil || cs.NextStep >= len(cs.Plan.Steps) {
		return nil, fmt.Errorf("cast %s has no step awaiting selection", cs.ID)
	}
	step := cs.Plan.Steps[cs.NextStep]

	if pc.Data["or_step"] == "true" {
		if len(picks) != 1 {
			return nil, fmt.Errorf("cast %s: or-step needs exactly one option", cs.ID)
		}
		idx, err := strconv.Atoi(picks[0])
		if err != nil || idx < 0 || idx >= len(step.Options) {
			return nil, fmt.Errorf("cast %s: bad or-step option %q", cs.ID, picks[0])
		}
		cs.Plan.Steps[cs.NextStep] = step.Options[idx]
		return nil, nil
	}

	var processed []rules.Event
	for _, ev := range s.stepEvents(step, cs.PlayerID, cs.CardID, picks) {
		processed = append(processed, s.Emit(ev)...)
	}
	cs.NextStep++
	return processed, nil
}
