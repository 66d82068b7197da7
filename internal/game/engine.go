package game

import (
	"fmt"
	"sync"

	"github.com/discordwell/hyperdraft/internal/game/rules"
	"go.uber.org/zap"
)

// Engine hosts multiple concurrent games. Each game's state is mutated only
// while the engine lock is held; within a game everything stays
// single-threaded.
type Engine struct {
	mu     sync.Mutex
	games  map[string]*State
	config EngineConfig
	logger *zap.Logger
}

// NewEngine creates an engine with the given configuration.
func NewEngine(cfg EngineConfig, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		games:  make(map[string]*State),
		config: cfg,
		logger: logger,
	}
}

// CreateGame registers a new game and returns its state for setup (players,
// decks). The seed fixes shuffle order for reproducible games.
func (e *Engine) CreateGame(gameID string, ruleset Ruleset, seed int64) (*State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.games[gameID]; exists {
		return nil, fmt.Errorf("game %s already exists", gameID)
	}
	s := NewState(gameID, ruleset, e.config, e.logger, seed)
	e.games[gameID] = s
	e.logger.Info("game created",
		zap.String("game_id", gameID),
		zap.String("ruleset", string(ruleset)),
	)
	return s, nil
}

// JoinGame seats a player in a game and loads their deck into the library.
// Joining a seat the player already holds is a reattach and changes nothing,
// so reconnecting transports can replay their join. Seats close once any
// player has settled their opening hand.
func (e *Engine) JoinGame(gameID, playerID, name string, deck []CardDefinition) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.games[gameID]
	if !ok {
		return fmt.Errorf("unknown game %s", gameID)
	}
	if _, seated := s.players[playerID]; seated {
		return nil
	}
	for _, pid := range s.playerOrder {
		if s.players[pid].KeptHand {
			return fmt.Errorf("game %s already started", gameID)
		}
	}
	s.AddPlayer(playerID, name, nil)
	for _, def := range deck {
		if _, err := s.CreateObject(def, playerID, ZoneLibrary); err != nil {
			return err
		}
	}
	e.logger.Info("player joined",
		zap.String("game_id", gameID),
		zap.String("player_id", playerID),
		zap.Int("deck_size", len(deck)),
	)
	return nil
}

// Game returns a game's state.
func (e *Engine) Game(gameID string) (*State, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.games[gameID]
	return s, ok
}

// RemoveGame drops a finished game.
func (e *Engine) RemoveGame(gameID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.games, gameID)
}

// StartGame shuffles, deals opening hands, and runs mulligans. Returns true
// when a mulligan bottoming choice suspended the setup; call Advance after
// the choice is submitted.
func (e *Engine) StartGame(gameID string) (suspended bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.games[gameID]
	if !ok {
		return false, fmt.Errorf("unknown game %s", gameID)
	}
	if len(s.playerOrder) < 2 {
		return false, fmt.Errorf("game %s needs at least two players", gameID)
	}
	for _, pid := range s.playerOrder {
		s.drawOpeningHand(pid)
	}
	return s.runMulligans(), nil
}

// setupComplete reports whether every player has settled their hand.
func (s *State) setupComplete() bool {
	for _, pid := range s.playerOrder {
		if !s.players[pid].KeptHand {
			return false
		}
	}
	return true
}

// Advance moves a game forward one notch: the rest of the setup if any
// mulligans are outstanding, one turn-controller step otherwise. Returns
// true when the game suspended on a player decision. A reaction loop
// tripping the iteration ceiling surfaces as an error and ends the game.
func (e *Engine) Advance(gameID string) (suspended bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.games[gameID]
	if !ok {
		return false, fmt.Errorf("unknown game %s", gameID)
	}
	if s.gameOver {
		return false, nil
	}

	defer func() {
		if r := recover(); r != nil {
			loop, isLoop := r.(*ReactionLoopError)
			if !isLoop {
				panic(r)
			}
			s.gameOver = true
			suspended = false
			err = loop
			e.logger.Error("game aborted by reaction loop",
				zap.String("game_id", gameID),
				zap.Int("processed", loop.Processed),
			)
		}
	}()

	if !s.setupComplete() {
		return s.runMulligans(), nil
	}
	return s.turns.Advance(s), nil
}

// RunUntilSuspended advances the game until it suspends, ends, or maxSteps
// elapse. Returns whether it is suspended.
func (e *Engine) RunUntilSuspended(gameID string, maxSteps int) (suspended bool, err error) {
	for i := 0; i < maxSteps; i++ {
		suspended, err = e.Advance(gameID)
		if err != nil || suspended {
			return suspended, err
		}
		if s, ok := e.Game(gameID); ok && s.GameOver() {
			return false, nil
		}
	}
	return false, nil
}

// SubmitChoice answers a game's pending choice.
func (e *Engine) SubmitChoice(gameID, choiceID, playerID string, selected []string) ([]rules.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.games[gameID]
	if !ok {
		return nil, fmt.Errorf("unknown game %s", gameID)
	}
	events, err := s.SubmitChoice(choiceID, playerID, selected)
	if err != nil {
		return nil, err
	}
	s.checkStateBasedActions()
	return events, nil
}

// ExecuteAction performs one player action in a game. Used by transports
// whose players act asynchronously instead of through a DecisionProvider.
func (e *Engine) ExecuteAction(gameID, playerID string, action Action) ([]rules.Event, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.games[gameID]
	if !ok {
		return nil, false, fmt.Errorf("unknown game %s", gameID)
	}
	events, suspended, err := s.ExecuteAction(playerID, action)
	if err != nil {
		return events, suspended, err
	}
	s.checkStateBasedActions()
	return events, suspended, nil
}

// Concede removes a player from a game.
func (e *Engine) Concede(gameID, playerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.games[gameID]
	if !ok {
		return fmt.Errorf("unknown game %s", gameID)
	}
	s.Concede(playerID)
	return nil
}

// View builds a redacted snapshot of a game for one viewer.
func (e *Engine) View(gameID, viewerID string) (*GameView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.games[gameID]
	if !ok {
		return nil, fmt.Errorf("unknown game %s", gameID)
	}
	return s.View(viewerID), nil
}
