package game

import (
	"fmt"
	"regexp"

	"github.com/discordwell/hyperdraft/internal/game/mana"
	"github.com/discordwell/hyperdraft/internal/game/rules"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// castState is the serializable record of a cast in progress. While its
// cost plan is suspended on a player choice the record sits in the
// suspended-cast table keyed by ID; the resumption on the pending choice
// carries that ID back.
type castState struct {
	ID       string
	PlayerID string
	CardID   string
	FromZone string
	AltCast  string // alternative cast keyword used, "" for a normal cast
	Plan     *CostPlan
	NextStep int
	Targets  []string
	XValue   int
	Cost     *mana.Cost
}

var altCastPattern = regexp.MustCompile(`(?m)^(Flashback|Mayhem|Harmonize)\s+((?:\{[^}]+\})+)`)

// altCastOption inspects the rules text for an alternative-cast keyword
// usable from the given zone. Flashback and Mayhem cast from the graveyard;
// Harmonize is a cheaper hand cast.
func altCastOption(obj *GameObject, fromZone string) (keyword string, cost *mana.Cost, ok bool) {
	m := altCastPattern.FindStringSubmatch(obj.Characteristics.RulesText)
	if m == nil {
		return "", nil, false
	}
	keyword = m[1]
	switch keyword {
	case "Flashback", "Mayhem":
		if fromZone != ZoneGraveyard {
			return "", nil, false
		}
	case "Harmonize":
		if fromZone != ZoneHand {
			return "", nil, false
		}
	}
	parsed, err := mana.ParseCost(m[2])
	if err != nil {
		return "", nil, false
	}
	return keyword, parsed, true
}

// castCost computes the mana cost of casting a card: the alternative cost
// when one applies, or the printed cost with a dynamic override and X
// folded in.
func (s *State) castCost(obj *GameObject, altCost *mana.Cost, xValue int) (*mana.Cost, error) {
	if altCost != nil {
		return altCost.WithX(xValue), nil
	}
	if dc, ok := obj.Definition.(DynamicCoster); ok {
		if n := dc.DynamicCost(obj, s); n >= 0 {
			return &mana.Cost{Generic: n, Colored: make(map[mana.Type]int)}, nil
		}
	}
	printed, err := mana.ParseCost(obj.Characteristics.ManaCost)
	if err != nil {
		return nil, fmt.Errorf("card %s: %w", obj.ID, err)
	}
	return printed.WithX(xValue), nil
}

// CastSpell begins casting a card. Additional costs are paid first, step by
// step; a step that needs a player decision suspends the cast (suspended =
// true) and parks it until SubmitChoice resumes it. Mana is paid last, so a
// cast abandoned mid-plan never half-spends the pool. An unpayable cast
// returns an error before any event fires.
func (s *State) CastSpell(playerID, cardID string, targets []string, xValue int) (processed []rules.Event, suspended bool, err error) {
	if s.Pending != nil {
		return nil, false, fmt.Errorf("game %s is waiting on choice %s", s.GameID, s.Pending.ID)
	}
	player, ok := s.players[playerID]
	if !ok {
		return nil, false, fmt.Errorf("unknown player %q", playerID)
	}
	obj, ok := s.objects[cardID]
	if !ok {
		return nil, false, fmt.Errorf("unknown card %q", cardID)
	}
	if obj.OwnerID != playerID {
		return nil, false, fmt.Errorf("card %s is not %s's", cardID, playerID)
	}

	var altKeyword string
	var altCost *mana.Cost
	switch obj.Zone {
	case ZoneHand:
		if kw, c, found := altCastOption(obj, ZoneHand); found {
			altKeyword, altCost = kw, c
		}
	case ZoneGraveyard:
		kw, c, found := altCastOption(obj, ZoneGraveyard)
		if !found {
			return nil, false, fmt.Errorf("card %s cannot be cast from the graveyard", cardID)
		}
		altKeyword, altCost = kw, c
	default:
		return nil, false, fmt.Errorf("card %s is in %s, not castable", cardID, obj.Zone)
	}

	cost, err := s.castCost(obj, altCost, xValue)
	if err != nil {
		return nil, false, err
	}

	var plan *CostPlan
	if ac, isCoster := obj.Definition.(AdditionalCoster); isCoster {
		plan = ac.AdditionalCost(obj, s)
	}

	if !player.ManaPool.CanPay(cost) {
		return nil, false, fmt.Errorf("player %s cannot pay %s", playerID, cost)
	}
	if !s.CanPayPlan(plan, playerID) {
		return nil, false, fmt.Errorf("player %s cannot pay the additional cost of %s", playerID, cardID)
	}

	cs := &castState{
		ID:       uuid.NewString(),
		PlayerID: playerID,
		CardID:   cardID,
		FromZone: obj.Zone,
		AltCast:  altKeyword,
		Plan:     plan,
		Targets:  append([]string(nil), targets...),
		XValue:   xValue,
		Cost:     cost,
	}

	processed, suspended, err = s.payCostSteps(cs)
	if err != nil {
		return processed, false, err
	}
	if suspended {
		s.logger.Debug("cast suspended on cost choice",
			zap.String("cast_id", cs.ID),
			zap.String("card_id", cardID),
		)
		return processed, true, nil
	}

	finish, err := s.finishCast(cs)
	processed = append(processed, finish...)
	return processed, false, err
}

// resumeCast is the ResumeCostPlan continuation: apply the answer to the
// suspended cast's current step, keep walking the plan, and complete the
// cast when the plan runs dry.
func (s *State) resumeCast(pc *PendingChoice, picks []string) ([]rules.Event, error) {
	cs, ok := s.suspendedCasts[pc.Resume.CastID]
	if !ok {
		return nil, fmt.Errorf("no suspended cast %q", pc.Resume.CastID)
	}
	delete(s.suspendedCasts, cs.ID)

	processed, err := s.applyCostSelection(cs, pc, picks)
	if err != nil {
		// The answer was bad, not the cast: park it again for a retry.
		s.suspendedCasts[cs.ID] = cs
		return processed, err
	}

	more, suspended, err := s.payCostSteps(cs)
	processed = append(processed, more...)
	if err != nil {
		return processed, err
	}
	if suspended {
		return processed, nil
	}

	finish, err := s.finishCast(cs)
	return append(processed, finish...), err
}

// finishCast runs after every cost step has been paid: spend the mana, put
// the card on the stack, and announce the cast.
func (s *State) finishCast(cs *castState) ([]rules.Event, error) {
	player := s.players[cs.PlayerID]
	obj, ok := s.objects[cs.CardID]
	if !ok {
		return nil, fmt.Errorf("card %s vanished mid-cast", cs.CardID)
	}
	if !player.ManaPool.Pay(cs.Cost) {
		return nil, fmt.Errorf("cast %s: mana pool cannot cover %s", cs.ID, cs.Cost)
	}

	var processed []rules.Event
	move := rules.NewZoneChange(obj.ID, obj.ID, cs.PlayerID, cs.FromZone, ZoneStack)
	processed = append(processed, s.Emit(move)...)

	item := rules.StackItem{
		ID:          uuid.NewString(),
		Controller:  cs.PlayerID,
		Description: obj.Characteristics.Name,
		Kind:        rules.StackItemKindSpell,
		SourceID:    obj.ID,
		Targets:     append([]string(nil), cs.Targets...),
		Metadata:    map[string]string{"alt_cast": cs.AltCast},
		Resolve:     func() []rules.Event { return s.resolveSpell(obj, cs) },
		OnRemove:    func() []rules.Event { return s.fizzleSpell(obj) },
	}
	s.stack.Push(item)

	cast := rules.NewEvent(rules.EventCastSpell, obj.ID, obj.ID, cs.PlayerID)
	cast.Targets = append([]string(nil), cs.Targets...)
	if cs.AltCast != "" {
		cast.Metadata["alt_cast"] = cs.AltCast
	}
	processed = append(processed, s.Emit(cast)...)

	// Blitz has no priority loop to resolve the stack; the spell resolves
	// as part of the cast.
	if s.Ruleset == RulesetBlitz {
		s.resolveTopOfStack()
	}
	return processed, nil
}

// resolveSpell is the stack item's resolution. Permanents enter the
// battlefield; modal spells ask for their mode; other spells run their
// effect against targets still legal, then go to the graveyard (or exile,
// for flashback casts).
func (s *State) resolveSpell(obj *GameObject, cs *castState) []rules.Event {
	if obj.Zone != ZoneStack {
		return nil
	}

	if isPermanentCard(obj) {
		enter := rules.NewZoneChange(obj.ID, obj.ID, cs.PlayerID, ZoneStack, ZoneBattlefield)
		enter.Metadata["controller"] = cs.PlayerID
		out := []rules.Event{enter}
		if obj.Characteristics.HasType(TypePlaneswalker) && obj.Characteristics.Loyalty > 0 {
			loyalty := rules.NewEventWithAmount(rules.EventAddCounter, obj.ID, obj.ID, cs.PlayerID, obj.Characteristics.Loyalty)
			loyalty.Metadata["counter"] = "loyalty"
			out = append(out, loyalty)
		}
		resolved := rules.NewEvent(rules.EventSpellResolved, obj.ID, obj.ID, cs.PlayerID)
		return append(out, resolved)
	}

	if modal, ok := obj.Definition.(ModalSpell); ok {
		if modes := modal.Modes(obj, s); len(modes) > 0 {
			options := make([]ChoiceOption, 0, len(modes))
			for _, mode := range modes {
				options = append(options, ChoiceOption{ID: mode.ID, Label: mode.Description})
			}
			err := s.CreateChoice(&PendingChoice{
				Kind:     ChoiceModal,
				PlayerID: cs.PlayerID,
				Prompt:   "Choose a mode for " + obj.Characteristics.Name,
				Options:  options,
				MinPicks: 1,
				MaxPicks: 1,
				SourceID: obj.ID,
				Resume:   Resumption{Kind: ResumeModal},
			})
			if err != nil {
				s.logger.Warn("modal spell could not ask for a mode", zap.Error(err))
			}
			return nil
		}
	}

	targets := s.legalTargets(cs.Targets)
	if len(cs.Targets) > 0 && len(targets) == 0 {
		// Every target gone: the spell fizzles.
		return s.fizzleSpell(obj)
	}

	var out []rules.Event
	if effecter, ok := obj.Definition.(SpellEffecter); ok {
		out = append(out, effecter.SpellEffect(obj, s, targets)...)
	}

	dest := ZoneGraveyard
	if cs.AltCast == "Flashback" {
		dest = ZoneExile
	}
	done := rules.NewZoneChange(obj.ID, obj.ID, cs.PlayerID, ZoneStack, dest)
	out = append(out, done)
	out = append(out, rules.NewEvent(rules.EventSpellResolved, obj.ID, obj.ID, cs.PlayerID))
	return out
}

// fizzleSpell moves a countered or targetless spell off the stack.
func (s *State) fizzleSpell(obj *GameObject) []rules.Event {
	if obj.Zone != ZoneStack {
		return nil
	}
	gone := rules.NewZoneChange(obj.ID, obj.ID, obj.ControllerID, ZoneStack, ZoneGraveyard)
	countered := rules.NewEvent(rules.EventSpellCountered, obj.ID, obj.ID, obj.ControllerID)
	return []rules.Event{gone, countered}
}

// finishSpell sends a spell that resolved through a detour (a modal choice)
// to the graveyard and announces the resolution.
func (s *State) finishSpell(obj *GameObject) []rules.Event {
	var processed []rules.Event
	if obj.Zone == ZoneStack {
		done := rules.NewZoneChange(obj.ID, obj.ID, obj.ControllerID, ZoneStack, ZoneGraveyard)
		processed = append(processed, s.Emit(done)...)
	}
	processed = append(processed, s.Emit(rules.NewEvent(rules.EventSpellResolved, obj.ID, obj.ID, obj.ControllerID))...)
	return processed
}

// legalTargets filters out targets that no longer exist where a spell can
// see them.
func (s *State) legalTargets(targets []string) []string {
	var out []string
	for _, id := range targets {
		if _, isPlayer := s.players[id]; isPlayer {
			out = append(out, id)
			continue
		}
		if obj, ok := s.objects[id]; ok && (obj.OnBattlefield() || obj.Zone == ZoneStack) {
			out = append(out, id)
		}
	}
	return out
}

func isPermanentCard(obj *GameObject) bool {
	for _, t := range obj.Characteristics.Types {
		switch t {
		case TypeCreature, TypeArtifact, TypeEnchantment, TypeVehicle, TypePlaneswalker, TypeLand:
			return true
		}
	}
	return false
}
