package rules

import (
	"time"
)

// EventType indicates the category of a rules event.
// The vocabulary is closed but extensible: components may introduce new
// types, and an event with no registered resolve handler is a no-op.
type EventType string

const (
	// Turn/step events
	EventBeginTurn   EventType = "BEGIN_TURN"
	EventEndTurn     EventType = "END_TURN"
	EventUpkeep      EventType = "UPKEEP"
	EventEndStep     EventType = "END_STEP"
	EventBeginCombat EventType = "BEGIN_COMBAT"
	EventEndCombat   EventType = "END_COMBAT"

	// Zone events
	EventZoneChange EventType = "ZONE_CHANGE"
	EventBounce     EventType = "BOUNCE" // legacy form, normalized to ZONE_CHANGE by a transform
	EventShuffle    EventType = "SHUFFLE_LIBRARY"

	// Card events
	EventDraw    EventType = "DRAW_CARD"
	EventDiscard EventType = "DISCARD_CARD"
	EventMill    EventType = "MILL_CARD"
	EventScry    EventType = "SCRY"
	EventSurveil EventType = "SURVEIL"

	// Life/damage events
	EventDamage       EventType = "DAMAGE_PERMANENT"
	EventDamagePlayer EventType = "DAMAGE_PLAYER"
	EventGainLife     EventType = "GAIN_LIFE"
	EventLoseLife     EventType = "LOSE_LIFE"
	EventPayLife      EventType = "PAY_LIFE"
	EventFatigue      EventType = "FATIGUE"

	// Spell/ability events
	EventCastSpell       EventType = "CAST_SPELL"
	EventSpellResolved   EventType = "SPELL_RESOLVED"
	EventSpellCountered  EventType = "SPELL_COUNTERED"
	EventPlayLand        EventType = "PLAY_LAND"
	EventAbilityActivate EventType = "ACTIVATE_ABILITY"
	EventManaAdded       EventType = "MANA_ADDED"

	// Permanent events
	EventTap           EventType = "TAP"
	EventUntap         EventType = "UNTAP"
	EventDestroy       EventType = "DESTROY_PERMANENT"
	EventSacrifice     EventType = "SACRIFICE_PERMANENT"
	EventCreateToken   EventType = "CREATE_TOKEN"
	EventObjectCreated EventType = "OBJECT_CREATED"
	EventCrewed        EventType = "VEHICLE_CREWED"
	EventFreeze        EventType = "FREEZE"
	EventControlChange EventType = "CONTROL_CHANGE"

	// Counter events
	EventAddCounter    EventType = "ADD_COUNTER"
	EventRemoveCounter EventType = "REMOVE_COUNTER"

	// Combat events
	EventAttackDeclared EventType = "ATTACKER_DECLARED"
	EventBlockDeclared  EventType = "BLOCKER_DECLARED"
	EventAttack         EventType = "ATTACK" // blitz direct attack

	// Player events
	EventMulligan   EventType = "MULLIGAN"
	EventKeepHand   EventType = "KEEP_HAND"
	EventPlayerLost EventType = "PLAYER_LOST"
	EventPlayerWon  EventType = "PLAYER_WON"
)

// EventStatus tracks an event through the pipeline.
type EventStatus string

const (
	// StatusPending - created, not yet picked up by the pipeline.
	StatusPending EventStatus = "PENDING"
	// StatusResolving - the resolve handler is applying the mutation.
	StatusResolving EventStatus = "RESOLVING"
	// StatusResolved - the mutation has been applied.
	StatusResolved EventStatus = "RESOLVED"
	// StatusPrevented - a prevent interceptor cancelled the event.
	StatusPrevented EventStatus = "PREVENTED"
)

// Event records a single proposed or applied state change. Events are the
// only sanctioned channel for game-state mutation; once emitted they are
// immutable except for the pipeline's own status/sequence bookkeeping.
type Event struct {
	Type       EventType
	ID         string
	TargetID   string // object or player the event acts on
	SourceID   string // object/ability that caused the event
	Controller string // player controlling the source
	PlayerID   string // player the event concerns (often == Controller)
	Amount     int    // damage, life, counters, card counts
	Flag       bool   // combat damage, optional-effect markers
	Zone       string // destination zone for zone changes
	FromZone   string // origin zone for zone changes
	Targets    []string
	Metadata   map[string]string
	Seq        uint64 // monotonic, assigned when the pipeline queues the event
	Timestamp  time.Time
	Status     EventStatus
}

// NewEvent creates an event with the common fields populated.
func NewEvent(eventType EventType, targetID, sourceID, controllerID string) Event {
	return Event{
		Type:       eventType,
		TargetID:   targetID,
		SourceID:   sourceID,
		Controller: controllerID,
		PlayerID:   controllerID,
		Timestamp:  time.Now(),
		Metadata:   make(map[string]string),
		Status:     StatusPending,
	}
}

// NewEventWithAmount creates an event carrying a numeric value.
func NewEventWithAmount(eventType EventType, targetID, sourceID, controllerID string, amount int) Event {
	evt := NewEvent(eventType, targetID, sourceID, controllerID)
	evt.Amount = amount
	return evt
}

// NewZoneChange creates a zone-change event.
func NewZoneChange(targetID, sourceID, controllerID, fromZone, toZone string) Event {
	evt := NewEvent(EventZoneChange, targetID, sourceID, controllerID)
	evt.FromZone = fromZone
	evt.Zone = toZone
	return evt
}
