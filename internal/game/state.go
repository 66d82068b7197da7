package game

import (
	"fmt"
	"math/rand"

	"github.com/discordwell/hyperdraft/internal/game/rules"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Ruleset selects which turn/combat machinery a game runs.
type Ruleset string

const (
	// RulesetClassic is the phase/step + priority + stack ruleset.
	RulesetClassic Ruleset = "CLASSIC"
	// RulesetBlitz is the draw/main/end ruleset with no priority loop.
	RulesetBlitz Ruleset = "BLITZ"
)

// EngineConfig carries the tunable engine parameters.
type EngineConfig struct {
	// IterationCeiling is the fatal tripwire against runaway reaction
	// loops: the maximum events one outer Emit may process.
	IterationCeiling int
	// ClassicStartingLife / BlitzStartingLife per ruleset.
	ClassicStartingLife int
	BlitzStartingLife   int
	// BlitzCrystalCap caps mana crystal regrowth.
	BlitzCrystalCap int
	// StartingHandSize drawn at game start (and after each mulligan).
	StartingHandSize int
}

// DefaultEngineConfig returns the stock parameters.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		IterationCeiling:    1000,
		ClassicStartingLife: 20,
		BlitzStartingLife:   30,
		BlitzCrystalCap:     10,
		StartingHandSize:    7,
	}
}

// State is the complete mutable state of one game. All mutation happens on
// a single control path (a turn-runner call, an action execution, or a
// choice submission); there is never concurrent access, so no locking.
type State struct {
	GameID  string
	Ruleset Ruleset

	players     map[string]*Player
	playerOrder []string

	objects map[string]*GameObject
	zones   map[zoneKey]*Zone

	registry *interceptorRegistry
	stack    *rules.Stack
	tracker  *rules.Tracker
	combat   *CombatState

	turns   TurnController
	attacks CombatController

	decisions map[string]DecisionProvider

	// Pending is the single per-game suspension slot: while non-nil, no
	// new cast or cost resolution may begin.
	Pending        *PendingChoice
	suspendedCasts map[string]*castState

	eventLog        []rules.Event
	resolveHandlers map[rules.EventType]resolveFunc

	queuedTriggers []rules.StackItem

	config EngineConfig
	logger *zap.Logger
	rng    *rand.Rand

	seq           uint64
	emitDepth     int
	emitCount     int
	sbaSuppressed bool

	firstDrawSkipped bool
	gameOver         bool
}

// resolveFunc applies an event's ground-truth mutation and may return
// follow-up events the pipeline queues behind the current event.
type resolveFunc func(s *State, ev *rules.Event) []rules.Event

// NewState builds an empty game state for the given ruleset.
func NewState(gameID string, ruleset Ruleset, cfg EngineConfig, logger *zap.Logger, seed int64) *State {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &State{
		GameID:         gameID,
		Ruleset:        ruleset,
		players:        make(map[string]*Player),
		objects:        make(map[string]*GameObject),
		zones:          make(map[zoneKey]*Zone),
		registry:       newInterceptorRegistry(),
		stack:          rules.NewStack(),
		combat:         newCombatState(),
		decisions:      make(map[string]DecisionProvider),
		suspendedCasts: make(map[string]*castState),
		config:         cfg,
		logger:         logger.With(zap.String("game_id", gameID)),
		rng:            rand.New(rand.NewSource(seed)),
	}
	s.resolveHandlers = buildResolveHandlers()
	switch ruleset {
	case RulesetBlitz:
		s.turns = &blitzTurnController{}
		s.attacks = &blitzCombatController{}
	default:
		s.turns = &classicTurnController{}
		s.attacks = &classicCombatController{}
	}
	return s
}

// AddPlayer registers a player in seating order.
func (s *State) AddPlayer(id, name string, decisions DecisionProvider) *Player {
	life := s.config.ClassicStartingLife
	if s.Ruleset == RulesetBlitz {
		life = s.config.BlitzStartingLife
	}
	p := newPlayer(id, name, life)
	if s.Ruleset == RulesetBlitz {
		p.HandLimit = 10
	}
	s.players[id] = p
	s.playerOrder = append(s.playerOrder, id)
	s.decisions[id] = decisions
	if s.tracker == nil {
		s.tracker = rules.NewTracker(id)
	}
	return p
}

// Player returns the player record for an ID.
func (s *State) Player(id string) (*Player, bool) {
	p, ok := s.players[id]
	return p, ok
}

// PlayerOrder returns the seating order.
func (s *State) PlayerOrder() []string {
	return append([]string(nil), s.playerOrder...)
}

// Object returns the object with the given ID.
func (s *State) Object(id string) (*GameObject, bool) {
	obj, ok := s.objects[id]
	return obj, ok
}

// Tracker exposes the turn tracker (classic ruleset).
func (s *State) Tracker() *rules.Tracker {
	return s.tracker
}

// Stack exposes the spell/ability stack.
func (s *State) Stack() *rules.Stack {
	return s.stack
}

// EventLog returns the append-only log of processed events.
func (s *State) EventLog() []rules.Event {
	return append([]rules.Event(nil), s.eventLog...)
}

// nextSeq returns the next value of the state's monotonic clock, shared by
// object creation, zone entries, interceptor registration and events.
func (s *State) nextSeq() uint64 {
	s.seq++
	return s.seq
}

// CreateObject instantiates a card definition for a player: assigns an ID,
// copies the characteristics template, registers zone membership, and runs
// the definition's self-registering interceptors.
func (s *State) CreateObject(def CardDefinition, ownerID, zoneKind string) (*GameObject, error) {
	if _, ok := s.players[ownerID]; !ok {
		return nil, fmt.Errorf("unknown owner %q", ownerID)
	}
	obj := &GameObject{
		ID:              uuid.NewString(),
		OwnerID:         ownerID,
		ControllerID:    ownerID,
		Characteristics: def.Template().Copy(),
		State:           NewObjectState(),
		CreatedSeq:      s.nextSeq(),
		Definition:      def,
	}
	if obj.Characteristics.HasAbility(AbilityDivineShield) {
		obj.State.DivineShield = true
	}
	s.objects[obj.ID] = obj
	if err := s.moveObject(obj, zoneKind, ownerID); err != nil {
		return nil, err
	}
	for _, ic := range def.SetupInterceptors(obj, s) {
		if ic.SourceID == "" {
			ic.SourceID = obj.ID
		}
		if ic.Controller == "" {
			ic.Controller = ownerID
		}
		s.RegisterInterceptor(ic)
	}
	return obj, nil
}

// decisionsFor returns the decision provider for a player, or a provider
// that always passes when none was supplied.
func (s *State) decisionsFor(playerID string) DecisionProvider {
	if d, ok := s.decisions[playerID]; ok && d != nil {
		return d
	}
	return passingDecisions{}
}

// nextPlayerAfter returns the next player in seating order who can act.
func (s *State) nextPlayerAfter(playerID string) string {
	n := len(s.playerOrder)
	idx := 0
	for i, id := range s.playerOrder {
		if id == playerID {
			idx = i
			break
		}
	}
	for off := 1; off <= n; off++ {
		candidate := s.playerOrder[(idx+off)%n]
		if p, ok := s.players[candidate]; ok && p.CanAct() {
			return candidate
		}
	}
	return playerID
}

// shuffleLibrary randomizes a player's library order.
func (s *State) shuffleLibrary(playerID string) {
	lib := s.zone(ZoneLibrary, playerID)
	s.rng.Shuffle(len(lib.Objects), func(i, j int) {
		lib.Objects[i], lib.Objects[j] = lib.Objects[j], lib.Objects[i]
	})
}

// GameOver reports whether the game has ended.
func (s *State) GameOver() bool {
	return s.gameOver
}
