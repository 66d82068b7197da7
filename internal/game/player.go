package game

import (
	"github.com/discordwell/hyperdraft/internal/game/mana"
)

// Player holds one player's resources and per-turn counters.
type Player struct {
	ID   string
	Name string

	Life      int
	ManaPool  *mana.Pool
	HandLimit int

	// Classic per-turn counters.
	LandsPlayed   int
	LandDropLimit int
	ExtraTurns    int
	ExtraCombats  int

	// Blitz resources.
	Crystals   int // available this turn
	CrystalCap int // regrown maximum
	Fatigue    int // successive empty draws

	// Priority bookkeeping. Mutated directly, never via events.
	Passed bool

	// Mulligan state.
	MulliganCount int
	KeptHand      bool

	// Loyalty abilities activated this turn, keyed by permanent ID.
	LoyaltyUsed map[string]bool

	DrewFromEmpty bool
	Lost          bool
	Won           bool
	Conceded      bool
}

// newPlayer creates a player with the given starting life.
func newPlayer(id, name string, life int) *Player {
	return &Player{
		ID:            id,
		Name:          name,
		Life:          life,
		ManaPool:      mana.NewPool(),
		HandLimit:     7,
		LandDropLimit: 1,
		LoyaltyUsed:   make(map[string]bool),
	}
}

// CanAct reports whether the player is still in the game.
func (p *Player) CanAct() bool {
	return !p.Lost && !p.Won && !p.Conceded
}

// resetTurnCounters clears the per-turn bookkeeping at the start of the
// player's turn.
func (p *Player) resetTurnCounters() {
	p.LandsPlayed = 0
	p.LoyaltyUsed = make(map[string]bool)
}
