package game

import (
	"github.com/discordwell/hyperdraft/internal/game/counters"
)

// Zone kind constants. Library, hand and graveyard are per-player; the
// battlefield, stack, exile and command zones are shared.
const (
	ZoneLibrary     = "LIBRARY"
	ZoneHand        = "HAND"
	ZoneGraveyard   = "GRAVEYARD"
	ZoneBattlefield = "BATTLEFIELD"
	ZoneStack       = "STACK"
	ZoneExile       = "EXILE"
	ZoneCommand     = "COMMAND"
	ZoneNone        = "" // not in any zone (pre-creation, or removed from the game)
)

// Keyword ability ID constants.
const (
	AbilityFirstStrike  = "FirstStrikeAbility"
	AbilityDoubleStrike = "DoubleStrikeAbility"
	AbilityVigilance    = "VigilanceAbility"
	AbilityFlying       = "FlyingAbility"
	AbilityReach        = "ReachAbility"
	AbilityShadow       = "ShadowAbility"
	AbilityMenace       = "MenaceAbility"
	AbilityTrample      = "TrampleAbility"
	AbilityDeathtouch   = "DeathtouchAbility"
	AbilityLifelink     = "LifelinkAbility"
	AbilityDefender     = "DefenderAbility"
	AbilityHaste        = "HasteAbility"
	AbilityCharge       = "ChargeAbility" // blitz: may attack the turn it arrives
	AbilityDivineShield = "DivineShieldAbility"
)

// Card type constants used in Characteristics.Types.
const (
	TypeCreature     = "Creature"
	TypeLand         = "Land"
	TypeInstant      = "Instant"
	TypeSorcery      = "Sorcery"
	TypeArtifact     = "Artifact"
	TypeEnchantment  = "Enchantment"
	TypeVehicle      = "Vehicle"
	TypePlaneswalker = "Planeswalker"
	TypeSpell        = "Spell" // blitz spell cards
	TypeHero         = "Hero"
)

// Characteristics holds the mutable printed-characteristics of one object.
// Each object gets its own copy from the card definition's template so two
// objects never alias the same mutable characteristics.
type Characteristics struct {
	Name      string
	ManaCost  string
	Types     []string
	Subtypes  []string
	Colors    []string
	Power     int
	Toughness int
	Loyalty   int
	CrewCost  int
	Abilities []string
	RulesText string
}

// Copy returns a deep copy of the characteristics.
func (c Characteristics) Copy() Characteristics {
	cpy := c
	cpy.Types = append([]string(nil), c.Types...)
	cpy.Subtypes = append([]string(nil), c.Subtypes...)
	cpy.Colors = append([]string(nil), c.Colors...)
	cpy.Abilities = append([]string(nil), c.Abilities...)
	return cpy
}

// HasType reports whether the given card type is among the printed types.
func (c Characteristics) HasType(cardType string) bool {
	for _, t := range c.Types {
		if t == cardType {
			return true
		}
	}
	return false
}

// HasAbility reports whether the given keyword ability is printed.
func (c Characteristics) HasAbility(abilityID string) bool {
	for _, a := range c.Abilities {
		if a == abilityID {
			return true
		}
	}
	return false
}

// ObjectState holds the transient, per-object game state that events mutate.
type ObjectState struct {
	Tapped        bool
	Damage        int
	DamageSources map[string]int
	DeathtouchHit bool // took damage from a deathtouch source this turn
	SummoningSick bool
	Attacking     bool
	AttackingWhat string
	Blocking      bool
	BlockingWhat  []string
	Frozen        bool
	FrozeSkipped  bool // blitz: the frozen object's controller already lost a turn with it
	Exhausted     bool // blitz: attacked this turn
	DivineShield  bool
	Counters      *counters.Counters

	// Until-end-of-turn grants, reverted during cleanup.
	TempTypes      []string
	TempAbilities  []string
	TempPower      int
	TempToughness  int
	TempController string
}

// NewObjectState creates a fresh object state.
func NewObjectState() ObjectState {
	return ObjectState{
		DamageSources: make(map[string]int),
		Counters:      counters.NewCounters(),
	}
}

// GameObject is one physical card/token/permanent instance. Objects are
// never deleted from the object table; leaving every zone just clears the
// zone field. Identity (ID) is stable across zone moves.
type GameObject struct {
	ID           string
	OwnerID      string
	ControllerID string
	Zone         string // zone kind, ZoneNone if in no zone
	ZoneOwner    string // owning player for per-player zones

	Characteristics Characteristics
	State           ObjectState

	// Monotonic sequence numbers: creation order and last zone entry.
	// Zone entry is used for summoning sickness and duration checks.
	CreatedSeq     uint64
	EnteredZoneSeq uint64

	// Interceptors whose lifetime is tied to this object; kept in
	// registration order so cleanup can remove exactly this set.
	InterceptorIDs []string

	Definition CardDefinition // nil for tokens without behavior
	Token      bool
}

// IsCreature reports whether the object currently counts as a creature,
// including temporary type grants (crewed vehicles).
func (o *GameObject) IsCreature() bool {
	if o.Characteristics.HasType(TypeCreature) {
		return true
	}
	for _, t := range o.State.TempTypes {
		if t == TypeCreature {
			return true
		}
	}
	return false
}

// HasAbility reports whether the object currently has the keyword ability,
// including temporary grants.
func (o *GameObject) HasAbility(abilityID string) bool {
	if o.Characteristics.HasAbility(abilityID) {
		return true
	}
	for _, a := range o.State.TempAbilities {
		if a == abilityID {
			return true
		}
	}
	return false
}

// CurrentPower returns printed power plus boost counters and temporary
// modifiers.
func (o *GameObject) CurrentPower() int {
	boost, _ := o.State.Counters.BoostTotals()
	return o.Characteristics.Power + boost + o.State.TempPower
}

// CurrentToughness returns printed toughness plus boost counters and
// temporary modifiers.
func (o *GameObject) CurrentToughness() int {
	_, boost := o.State.Counters.BoostTotals()
	return o.Characteristics.Toughness + boost + o.State.TempToughness
}

// LethalDamage reports whether marked damage is lethal.
func (o *GameObject) LethalDamage() bool {
	if !o.IsCreature() {
		return false
	}
	if o.State.DeathtouchHit && o.State.Damage > 0 {
		return true
	}
	return o.State.Damage >= o.CurrentToughness()
}

// OnBattlefield reports whether the object is physically on the battlefield.
func (o *GameObject) OnBattlefield() bool {
	return o.Zone == ZoneBattlefield
}
