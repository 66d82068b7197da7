package game

import (
	"strconv"

	"github.com/discordwell/hyperdraft/internal/game/rules"
)

// FlickerObject exiles a permanent and schedules its return to the
// battlefield, either immediately or at the next end step. The object keeps
// its identity; its battlefield state resets and its card interceptors
// re-install on re-entry.
func (s *State) FlickerObject(objectID, sourceID, controller string, atNextEndStep bool) []rules.Event {
	obj, ok := s.objects[objectID]
	if !ok || !obj.OnBattlefield() {
		return nil
	}
	owner := obj.OwnerID

	processed := s.Emit(rules.NewZoneChange(objectID, sourceID, controller, ZoneBattlefield, ZoneExile))

	returnEvent := func() rules.Event {
		ev := rules.NewZoneChange(objectID, sourceID, controller, ZoneExile, ZoneBattlefield)
		ev.Metadata["controller"] = owner
		return ev
	}

	if !atNextEndStep {
		return append(processed, s.Emit(returnEvent())...)
	}

	// Delayed one-shot: fires on the next end step regardless of whose it
	// is, then burns out.
	s.RegisterInterceptor(&Interceptor{
		SourceID:      sourceID,
		Controller:    controller,
		Phase:         PhaseReact,
		Duration:      DurationForever,
		UsesRemaining: 1,
		Filter: func(ev rules.Event, _ *State) bool {
			return ev.Type == rules.EventEndStep
		},
		React: func(_ rules.Event, inner *State) []rules.Event {
			if flickered, found := inner.objects[objectID]; !found || flickered.Zone != ZoneExile {
				return nil
			}
			return []rules.Event{returnEvent()}
		},
	})
	return processed
}

// BoostUntilEndOfTurn applies a temporary power/toughness change. The
// cleanup step reverts it.
func (s *State) BoostUntilEndOfTurn(objectID string, power, toughness int) {
	if obj, ok := s.objects[objectID]; ok && obj.OnBattlefield() {
		obj.State.TempPower += power
		obj.State.TempToughness += toughness
	}
}

// GrantUntilEndOfTurn gives a keyword ability for the turn.
func (s *State) GrantUntilEndOfTurn(objectID, abilityID string) {
	if obj, ok := s.objects[objectID]; ok && obj.OnBattlefield() {
		obj.State.TempAbilities = append(obj.State.TempAbilities, abilityID)
	}
}

// ScryChoice installs the pending choice for a scry: the player picks which
// of the top cards go to the bottom.
func (s *State) ScryChoice(playerID, sourceID string, depth int) error {
	top := s.Library(playerID)
	if len(top) > depth {
		top = top[:depth]
	}
	if len(top) == 0 {
		return nil
	}
	options := make([]ChoiceOption, 0, len(top))
	for _, id := range top {
		label := id
		if obj, ok := s.objects[id]; ok {
			label = obj.Characteristics.Name
		}
		options = append(options, ChoiceOption{ID: id, Label: label})
	}
	return s.CreateChoice(&PendingChoice{
		Kind:     ChoiceScry,
		PlayerID: playerID,
		Prompt:   "Choose cards to put on the bottom of your library",
		Options:  options,
		MinPicks: 0,
		MaxPicks: len(options),
		SourceID: sourceID,
		Resume:   Resumption{Kind: ResumeScry},
	})
}

// SurveilChoice installs the pending choice for a surveil: picked cards go
// to the graveyard.
func (s *State) SurveilChoice(playerID, sourceID string, depth int) error {
	top := s.Library(playerID)
	if len(top) > depth {
		top = top[:depth]
	}
	if len(top) == 0 {
		return nil
	}
	options := make([]ChoiceOption, 0, len(top))
	for _, id := range top {
		label := id
		if obj, ok := s.objects[id]; ok {
			label = obj.Characteristics.Name
		}
		options = append(options, ChoiceOption{ID: id, Label: label})
	}
	return s.CreateChoice(&PendingChoice{
		Kind:     ChoiceSurveil,
		PlayerID: playerID,
		Prompt:   "Choose cards to put into your graveyard",
		Options:  options,
		MinPicks: 0,
		MaxPicks: len(options),
		SourceID: sourceID,
		Resume:   Resumption{Kind: ResumeSurveil},
	})
}

// DivideChoice installs the pending choice for dividing an amount (damage
// by default) among targets. Answers arrive as "target=amount" entries.
func (s *State) DivideChoice(playerID, sourceID string, amount int, targets []string) error {
	options := make([]ChoiceOption, 0, len(targets))
	for _, id := range targets {
		label := id
		if obj, ok := s.objects[id]; ok {
			label = obj.Characteristics.Name
		} else if p, isPlayer := s.players[id]; isPlayer {
			label = p.Name
		}
		options = append(options, ChoiceOption{ID: id, Label: label})
	}
	return s.CreateChoice(&PendingChoice{
		Kind:     ChoiceDivide,
		PlayerID: playerID,
		Prompt:   "Divide the damage among the targets",
		Options:  options,
		MinPicks: 1,
		MaxPicks: len(options),
		SourceID: sourceID,
		Data:     map[string]string{"amount": strconv.Itoa(amount)},
		Resume:   Resumption{Kind: ResumeDivide},
	})
}
