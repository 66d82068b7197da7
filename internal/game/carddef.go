package game

import (
	"github.com/discordwell/hyperdraft/internal/game/rules"
)

// CardDefinition is the collaborator surface card sets implement. The core
// never hardcodes cards: definitions supply a characteristics template and,
// optionally, per-card behavior through the capability interfaces below.
type CardDefinition interface {
	// Template returns the printed characteristics. The engine copies it
	// per object instance.
	Template() Characteristics
	// SetupInterceptors is invoked once at object creation and returns the
	// interceptors the card installs for itself. May return nil.
	SetupInterceptors(obj *GameObject, s *State) []*Interceptor
}

// DynamicCoster overrides the printed mana cost at cast-legality time.
type DynamicCoster interface {
	DynamicCost(obj *GameObject, s *State) int
}

// SpellEffecter produces the events a spell's stack resolution emits.
// Cards without it resolve to a permanent entering the battlefield (for
// permanent types) or fizzle to the graveyard.
type SpellEffecter interface {
	SpellEffect(obj *GameObject, s *State, targets []string) []rules.Event
}

// AdditionalCoster supplies the additional-cost plan required to cast the
// card (sacrifice, discard, pay life, ...). May return nil for none.
type AdditionalCoster interface {
	AdditionalCost(obj *GameObject, s *State) *CostPlan
}

// ModalSpell describes a spell with selectable modes.
type ModalSpell interface {
	Modes(obj *GameObject, s *State) []SpellMode
}

// SpellMode is one selectable mode of a modal spell.
type SpellMode struct {
	ID          string
	Description string
	NeedsTarget bool
	Effect      func(obj *GameObject, s *State, targets []string) []rules.Event
}

// ChoiceResolving cards answer mid-resolution choices the card itself
// installed (scry piles, divide allocations, and similar).
type ChoiceResolving interface {
	ResolveChoice(obj *GameObject, s *State, choice *PendingChoice, selected []string) []rules.Event
}

// BasicCard is a convenience CardDefinition built from plain fields.
// Card-set packages and tests use it instead of hand-writing types.
type BasicCard struct {
	Chars      Characteristics
	Setup      func(obj *GameObject, s *State) []*Interceptor
	Effect     func(obj *GameObject, s *State, targets []string) []rules.Event
	CostFn     func(obj *GameObject, s *State) int
	ExtraCost  func(obj *GameObject, s *State) *CostPlan
	SpellModes []SpellMode
}

// Template implements CardDefinition.
func (c *BasicCard) Template() Characteristics {
	return c.Chars
}

// SetupInterceptors implements CardDefinition.
func (c *BasicCard) SetupInterceptors(obj *GameObject, s *State) []*Interceptor {
	if c.Setup == nil {
		return nil
	}
	return c.Setup(obj, s)
}

// SpellEffect implements SpellEffecter when an effect is configured.
func (c *BasicCard) SpellEffect(obj *GameObject, s *State, targets []string) []rules.Event {
	if c.Effect == nil {
		return nil
	}
	return c.Effect(obj, s, targets)
}

// DynamicCost implements DynamicCoster when a cost override is configured.
// Returns -1 (use printed cost) when unset.
func (c *BasicCard) DynamicCost(obj *GameObject, s *State) int {
	if c.CostFn == nil {
		return -1
	}
	return c.CostFn(obj, s)
}

// AdditionalCost implements AdditionalCoster.
func (c *BasicCard) AdditionalCost(obj *GameObject, s *State) *CostPlan {
	if c.ExtraCost == nil {
		return nil
	}
	return c.ExtraCost(obj, s)
}

// Modes implements ModalSpell.
func (c *BasicCard) Modes(obj *GameObject, s *State) []SpellMode {
	return c.SpellModes
}

// tokenDefinition is the built-in definition used for created tokens.
type tokenDefinition struct {
	chars Characteristics
}

func (t *tokenDefinition) Template() Characteristics { return t.chars }

func (t *tokenDefinition) SetupInterceptors(obj *GameObject, s *State) []*Interceptor {
	return nil
}
