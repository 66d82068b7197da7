package game

import (
	"fmt"

	"github.com/discordwell/hyperdraft/internal/game/rules"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReactionLoopError is the pipeline's only fatal condition: one outer Emit
// processed more events than the configured ceiling, which signals a
// runaway reaction loop in the rule set, not a capacity problem. It is
// raised via panic and must not be absorbed.
type ReactionLoopError struct {
	GameID    string
	Processed int
	Ceiling   int
}

func (e *ReactionLoopError) Error() string {
	return fmt.Sprintf("reaction loop: game %s processed %d events in one emit (ceiling %d)",
		e.GameID, e.Processed, e.Ceiling)
}

// Emit runs one root event through the pipeline and returns every event
// processed as a consequence (root plus reactive descendants) in completion
// order. The game state is mutated as a side effect.
//
// Each event passes through five strictly ordered phases:
//
//	TRANSFORM - eligible transform interceptors may replace the event, chained
//	PREVENT   - the first eligible prevent interceptor that answers cancels it
//	RESOLVE   - the internal per-type handler applies the actual mutation
//	REACT     - eligible react interceptors emit follow-up events
//	CLEANUP   - battlefield-bound interceptors of departed objects are swept
//
// New events are appended to the end of a shared FIFO queue, so an event's
// reactions process after any already-queued siblings but before reactions
// of their own (breadth-first). This ordering is game-visible in
// multi-trigger scenarios and is deliberate; do not switch to depth-first
// recursion.
//
// Emit may be called re-entrantly (a resolve handler resolving a stack item
// emits through the same pipeline). The iteration ceiling applies to the
// outermost call: nested emissions share the outer counter.
func (s *State) Emit(root rules.Event) []rules.Event {
	s.emitDepth++
	if s.emitDepth == 1 {
		s.emitCount = 0
	}
	defer func() { s.emitDepth-- }()

	queue := make([]rules.Event, 0, 8)
	queue = append(queue, s.stampEvent(root))

	var processed []rules.Event
	for len(queue) > 0 {
		ev := queue[0]
		queue = queue[1:]

		s.emitCount++
		if s.emitCount > s.config.IterationCeiling {
			err := &ReactionLoopError{GameID: s.GameID, Processed: s.emitCount, Ceiling: s.config.IterationCeiling}
			s.logger.Error("event pipeline tripped iteration ceiling",
				zap.Int("processed", s.emitCount),
				zap.String("event_type", string(ev.Type)),
			)
			panic(err)
		}

		ev = s.transformPhase(ev)

		if s.preventPhase(ev) {
			ev.Status = rules.StatusPrevented
			s.eventLog = append(s.eventLog, ev)
			processed = append(processed, ev)
			continue
		}

		followups := s.resolvePhase(&ev)
		reactions := s.reactPhase(ev)

		for _, next := range followups {
			queue = append(queue, s.stampEvent(next))
		}
		for _, next := range reactions {
			queue = append(queue, s.stampEvent(next))
		}

		s.cleanupPhase(ev)

		s.eventLog = append(s.eventLog, ev)
		processed = append(processed, ev)
	}
	return processed
}

// stampEvent assigns identity and the monotonic emission timestamp.
func (s *State) stampEvent(ev rules.Event) rules.Event {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Metadata == nil {
		ev.Metadata = make(map[string]string)
	}
	ev.Seq = s.nextSeq()
	ev.Status = rules.StatusPending
	return ev
}

// transformPhase chains every matching transform interceptor over the
// event, oldest registration first. Use counts are consumed on filter
// match whether or not the interceptor actually replaces the event.
func (s *State) transformPhase(ev rules.Event) rules.Event {
	for _, ic := range s.matchingInterceptors(PhaseTransform, ev) {
		s.consumeUse(ic)
		if ic.Transform == nil {
			continue
		}
		replaced := ic.Transform(ev, s)
		// The replacement inherits the original's pipeline identity.
		replaced.Seq = ev.Seq
		if replaced.ID == "" {
			replaced.ID = ev.ID
		}
		if replaced.Metadata == nil {
			replaced.Metadata = make(map[string]string)
		}
		ev = replaced
	}
	return ev
}

// preventPhase asks matching prevent interceptors in order; the first that
// answers "prevent" consumes a use and short-circuits the rest.
func (s *State) preventPhase(ev rules.Event) bool {
	for _, ic := range s.matchingInterceptors(PhasePrevent, ev) {
		if ic.Prevent != nil && ic.Prevent(ev, s) {
			s.consumeUse(ic)
			return true
		}
	}
	return false
}

// resolvePhase applies the event's ground-truth mutation. A missing handler
// is a no-op, not an error: partially specified card effects must not stall
// the simulation.
func (s *State) resolvePhase(ev *rules.Event) []rules.Event {
	ev.Status = rules.StatusResolving
	var followups []rules.Event
	if handler, ok := s.resolveHandlers[ev.Type]; ok {
		followups = handler(s, ev)
	}
	ev.Status = rules.StatusResolved
	return followups
}

// reactPhase collects follow-up events from matching react interceptors in
// registration order. The match pass is taken once per phase: a reactor
// registered by an earlier reactor in this same pass joins the next event's
// pass, not this one.
func (s *State) reactPhase(ev rules.Event) []rules.Event {
	var reactions []rules.Event
	for _, ic := range s.matchingInterceptors(PhaseReact, ev) {
		if ic.React != nil {
			reactions = append(reactions, ic.React(ev, s)...)
		}
		s.consumeUse(ic)
	}
	return reactions
}

// cleanupPhase sweeps battlefield-bound interceptors of an object that has
// left the battlefield. This runs after REACT on purpose: death triggers
// need the interceptor alive when the death event reaches them.
func (s *State) cleanupPhase(ev rules.Event) {
	switch ev.Type {
	case rules.EventZoneChange, rules.EventDestroy, rules.EventSacrifice:
	default:
		return
	}
	obj, ok := s.objects[ev.TargetID]
	if !ok || obj.OnBattlefield() {
		return
	}
	s.sweepObjectInterceptors(obj)
}
