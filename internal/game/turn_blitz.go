package game

import (
	"github.com/discordwell/hyperdraft/internal/game/mana"
	"github.com/discordwell/hyperdraft/internal/game/rules"
	"go.uber.org/zap"
)

// blitzTurnController runs the draw/main/end turn shape: no priority, no
// stack interaction, the active player simply acts until they end the turn.
type blitzTurnController struct {
	activePlayer string
	turnNumber   int
	stage        blitzStage
}

type blitzStage int

const (
	blitzStageStart blitzStage = iota
	blitzStageMain
	blitzStageEnd
)

func (c *blitzTurnController) ActivePlayer(s *State) string {
	c.ensureStarted(s)
	return c.activePlayer
}

func (c *blitzTurnController) TurnNumber(s *State) int {
	c.ensureStarted(s)
	return c.turnNumber
}

func (c *blitzTurnController) ensureStarted(s *State) {
	if c.activePlayer == "" && len(s.playerOrder) > 0 {
		c.activePlayer = s.playerOrder[0]
		c.turnNumber = 1
	}
}

func (c *blitzTurnController) Advance(s *State) bool {
	if s.gameOver {
		return false
	}
	c.ensureStarted(s)

	switch c.stage {
	case blitzStageStart:
		c.beginTurn(s)
		c.stage = blitzStageMain
		return false

	case blitzStageMain:
		if c.runMain(s) {
			return true
		}
		c.stage = blitzStageEnd
		return false

	default:
		c.endTurn(s)
		c.activePlayer = s.nextPlayerAfter(c.activePlayer)
		c.turnNumber++
		c.stage = blitzStageStart
		return false
	}
}

// beginTurn regrows a crystal, refills the pool, readies the player's
// creatures, and draws.
func (c *blitzTurnController) beginTurn(s *State) {
	active := c.activePlayer
	player, ok := s.players[active]
	if !ok {
		return
	}
	player.resetTurnCounters()
	if player.CrystalCap < s.config.BlitzCrystalCap {
		player.CrystalCap++
	}
	player.Crystals = player.CrystalCap
	player.ManaPool.Empty()
	player.ManaPool.Add(mana.Colorless, player.Crystals)

	s.Emit(rules.NewEvent(rules.EventBeginTurn, active, "", active))

	for _, id := range s.Battlefield() {
		obj, found := s.objects[id]
		if !found || obj.ControllerID != active {
			continue
		}
		obj.State.SummoningSick = false
		obj.State.Exhausted = false
		if obj.State.Frozen {
			// The creature sits out this turn; it thaws at its end.
			obj.State.FrozeSkipped = true
		}
	}

	s.Emit(rules.NewEventWithAmount(rules.EventDraw, active, "", active, 1))
	s.checkStateBasedActions()
}

// runMain pulls actions from the active player's provider until the turn
// ends. Returns true when suspended on a pending choice.
func (c *blitzTurnController) runMain(s *State) bool {
	active := c.activePlayer
	provider := s.decisionsFor(active)
	provider.TakeTurn(active, s)

	for !s.gameOver {
		if s.Pending != nil {
			return true
		}
		action, ok := provider.ChooseAction(active, s.blitzLegalActions(active))
		if !ok {
			return true
		}
		if action.Kind == ActionPass || action.Kind == ActionEndTurn {
			return false
		}
		_, suspended, err := s.ExecuteAction(active, action)
		if err != nil {
			s.logger.Warn("blitz action rejected",
				zap.String("player_id", active),
				zap.String("kind", string(action.Kind)),
				zap.Error(err),
			)
		}
		if suspended || s.Pending != nil {
			return true
		}
		s.checkStateBasedActions()
	}
	return false
}

func (c *blitzTurnController) endTurn(s *State) {
	active := c.activePlayer
	s.Emit(rules.NewEvent(rules.EventEndStep, active, "", active))
	s.expireUntilEndOfTurn()
	for _, id := range s.Battlefield() {
		obj, ok := s.objects[id]
		if !ok || obj.ControllerID != active {
			continue
		}
		if obj.State.Frozen && obj.State.FrozeSkipped {
			obj.State.Frozen = false
			obj.State.FrozeSkipped = false
		}
	}
	s.Emit(rules.NewEvent(rules.EventEndTurn, active, "", active))
}

// blitzLegalActions enumerates a blitz main-phase turn: end the turn, cast
// anything affordable, attack with anything ready.
func (s *State) blitzLegalActions(playerID string) []LegalAction {
	legal := []LegalAction{{Kind: ActionEndTurn, Description: "End the turn"}}
	player, ok := s.players[playerID]
	if !ok || !player.CanAct() {
		return legal
	}

	for _, id := range s.Hand(playerID) {
		obj, found := s.objects[id]
		if !found {
			continue
		}
		if s.castPayable(playerID, obj, ZoneHand) {
			legal = append(legal, LegalAction{
				Kind:        ActionCast,
				CardID:      id,
				Description: "Play " + obj.Characteristics.Name,
			})
		}
	}

	var targets []string
	for _, pid := range s.playerOrder {
		if pid == playerID || !s.players[pid].CanAct() {
			continue
		}
		targets = append(targets, pid)
	}
	for _, id := range s.Battlefield() {
		if obj, found := s.objects[id]; found && obj.ControllerID != playerID && obj.IsCreature() {
			targets = append(targets, id)
		}
	}
	for _, id := range s.Battlefield() {
		obj, found := s.objects[id]
		if !found || obj.ControllerID != playerID || !obj.IsCreature() {
			continue
		}
		if obj.State.Exhausted || obj.State.Frozen {
			continue
		}
		if obj.State.SummoningSick && !obj.HasAbility(AbilityCharge) {
			continue
		}
		for _, target := range targets {
			legal = append(legal, LegalAction{
				Kind:        ActionAttack,
				CardID:      id,
				TargetID:    target,
				Description: "Attack with " + obj.Characteristics.Name,
			})
		}
	}
	return legal
}
