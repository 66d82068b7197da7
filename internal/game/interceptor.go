package game

import (
	"sort"

	"github.com/discordwell/hyperdraft/internal/game/rules"
	"github.com/google/uuid"
)

// InterceptorPhase is the pipeline phase an interceptor participates in.
type InterceptorPhase string

const (
	// PhaseTransform interceptors may replace the event with another.
	PhaseTransform InterceptorPhase = "TRANSFORM"
	// PhasePrevent interceptors may cancel the event outright.
	PhasePrevent InterceptorPhase = "PREVENT"
	// PhaseReact interceptors emit follow-up events after resolution.
	PhaseReact InterceptorPhase = "REACT"
)

// Duration is the lifetime policy of an interceptor.
type Duration string

const (
	// DurationWhileOnBattlefield - eligible only while the source is on the
	// battlefield; swept when it leaves.
	DurationWhileOnBattlefield Duration = "WhileOnBattlefield"
	// DurationUntilLeaves - eligible anywhere, swept when the source leaves
	// the battlefield.
	DurationUntilLeaves Duration = "UntilLeaves"
	// DurationForever - lives until its uses run out or it is removed
	// explicitly. Delayed one-shot triggers use this with a synthetic source.
	DurationForever Duration = "Forever"
)

// Interceptor is a registered rule fragment: a filter over events plus a
// phase-specific handler. Card definitions produce these; the pipeline
// consumes them.
type Interceptor struct {
	ID         string
	SourceID   string // object the interceptor belongs to ("" for synthetic)
	Controller string
	Phase      InterceptorPhase
	Duration   Duration

	// UsesRemaining limits firings; 0 means unlimited.
	UsesRemaining int

	// Filter decides whether the interceptor cares about the event.
	Filter func(ev rules.Event, s *State) bool

	// Exactly one of the following is consulted, per Phase.
	Transform func(ev rules.Event, s *State) rules.Event
	Prevent   func(ev rules.Event, s *State) bool
	React     func(ev rules.Event, s *State) []rules.Event

	registeredSeq uint64
	unlimited     bool // set at registration when UsesRemaining == 0
}

// IsInterceptorEligible is the central eligibility filter: duration policy
// against the source object's current zone, plus remaining uses. Interceptor
// authors never check battlefield presence themselves.
func IsInterceptorEligible(ic *Interceptor, s *State) bool {
	if ic == nil {
		return false
	}
	if !ic.unlimited && ic.UsesRemaining <= 0 {
		return false
	}
	if ic.Duration == DurationWhileOnBattlefield {
		src, ok := s.objects[ic.SourceID]
		if !ok || !src.OnBattlefield() {
			return false
		}
	}
	return true
}

// interceptorRegistry holds all live interceptors in registration order.
type interceptorRegistry struct {
	byID map[string]*Interceptor
}

func newInterceptorRegistry() *interceptorRegistry {
	return &interceptorRegistry{byID: make(map[string]*Interceptor)}
}

// RegisterInterceptor adds an interceptor to the registry, stamping its
// registration sequence, and ties it to its source object's cleanup list.
func (s *State) RegisterInterceptor(ic *Interceptor) string {
	if ic.ID == "" {
		ic.ID = uuid.NewString()
	}
	ic.registeredSeq = s.nextSeq()
	ic.unlimited = ic.UsesRemaining == 0
	s.registry.byID[ic.ID] = ic

	if ic.SourceID != "" {
		if src, ok := s.objects[ic.SourceID]; ok {
			src.InterceptorIDs = append(src.InterceptorIDs, ic.ID)
		}
	}
	return ic.ID
}

// RemoveInterceptor deletes an interceptor and unlinks it from its source.
func (s *State) RemoveInterceptor(id string) {
	ic, ok := s.registry.byID[id]
	if !ok {
		return
	}
	delete(s.registry.byID, id)
	if src, found := s.objects[ic.SourceID]; found {
		for i, owned := range src.InterceptorIDs {
			if owned == id {
				src.InterceptorIDs = append(src.InterceptorIDs[:i], src.InterceptorIDs[i+1:]...)
				break
			}
		}
	}
}

// matchingInterceptors takes one eligibility+filter pass over the current
// registry for a phase and returns matches in ascending registration order
// (oldest first). The pass is a snapshot: interceptors registered while the
// phase runs join the next pass, not this one.
func (s *State) matchingInterceptors(phase InterceptorPhase, ev rules.Event) []*Interceptor {
	var matched []*Interceptor
	for _, ic := range s.registry.byID {
		if ic.Phase != phase {
			continue
		}
		if !IsInterceptorEligible(ic, s) {
			continue
		}
		if ic.Filter != nil && !ic.Filter(ev, s) {
			continue
		}
		matched = append(matched, ic)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].registeredSeq < matched[j].registeredSeq
	})
	return matched
}

// consumeUse decrements an interceptor's remaining uses and removes it at
// zero. Unlimited interceptors are untouched.
func (s *State) consumeUse(ic *Interceptor) {
	if ic.unlimited {
		return
	}
	ic.UsesRemaining--
	if ic.UsesRemaining <= 0 {
		s.RemoveInterceptor(ic.ID)
	}
}

// sweepObjectInterceptors removes the battlefield-bound interceptors of an
// object that has left the battlefield. Forever-duration interceptors stay.
func (s *State) sweepObjectInterceptors(obj *GameObject) {
	kept := obj.InterceptorIDs[:0]
	for _, id := range obj.InterceptorIDs {
		ic, ok := s.registry.byID[id]
		if !ok {
			continue
		}
		if ic.Duration == DurationWhileOnBattlefield || ic.Duration == DurationUntilLeaves {
			delete(s.registry.byID, id)
			continue
		}
		kept = append(kept, id)
	}
	obj.InterceptorIDs = kept
}
