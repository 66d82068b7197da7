package game

import (
	"github.com/discordwell/hyperdraft/internal/game/rules"
	"go.uber.org/zap"
)

// drawOpeningHand shuffles the player's library and moves the opening hand
// across directly; pre-game setup does not run through the pipeline.
func (s *State) drawOpeningHand(playerID string) {
	s.shuffleLibrary(playerID)
	for i := 0; i < s.config.StartingHandSize; i++ {
		lib := s.zone(ZoneLibrary, playerID)
		if len(lib.Objects) == 0 {
			break
		}
		if obj, ok := s.objects[lib.Objects[0]]; ok {
			_ = s.moveObject(obj, ZoneHand, playerID)
		}
	}
}

// runMulligans walks every player's mulligan decision. Each mulligan
// shuffles the hand away and redraws a full hand; on keeping, the player
// bottoms one card per mulligan taken, so hand size shrinks while the
// library stays whole. Returns true when a bottoming choice suspended.
func (s *State) runMulligans() bool {
	if s.Ruleset == RulesetBlitz {
		for _, id := range s.playerOrder {
			s.players[id].KeptHand = true
		}
		return false
	}
	for _, id := range s.playerOrder {
		if s.mulliganFor(id) {
			return true
		}
	}
	return false
}

func (s *State) mulliganFor(playerID string) bool {
	player, ok := s.players[playerID]
	if !ok || player.KeptHand {
		return false
	}
	provider := s.decisionsFor(playerID)

	for !player.KeptHand {
		hand := s.Hand(playerID)
		if player.MulliganCount >= s.config.StartingHandSize || provider.KeepHand(playerID, hand) {
			if player.MulliganCount == 0 {
				player.KeptHand = true
				s.Emit(rules.NewEvent(rules.EventKeepHand, playerID, "", playerID))
				return false
			}
			return s.resolveMulliganKeep(playerID, hand, provider)
		}

		// Mulligan: the whole hand shuffles back and a fresh hand comes up.
		player.MulliganCount++
		for _, cardID := range hand {
			if obj, found := s.objects[cardID]; found {
				_ = s.moveObject(obj, ZoneLibrary, playerID)
			}
		}
		s.drawOpeningHand(playerID)
		s.Emit(rules.NewEventWithAmount(rules.EventMulligan, playerID, "", playerID, player.MulliganCount))
		s.logger.Debug("player mulliganed",
			zap.String("player_id", playerID),
			zap.Int("count", player.MulliganCount),
		)
	}
	return false
}

// resolveMulliganKeep bottoms one card per mulligan taken, asking the
// provider first and falling back to a pending choice.
func (s *State) resolveMulliganKeep(playerID string, hand []string, provider DecisionProvider) bool {
	player := s.players[playerID]
	n := player.MulliganCount
	if n > len(hand) {
		n = len(hand)
	}

	if picks := provider.BottomCards(playerID, hand, n); picks != nil {
		if len(picks) > n {
			picks = picks[:n]
		}
		s.bottomAfterMulligan(playerID, picks)
		player.KeptHand = true
		return false
	}

	options := make([]ChoiceOption, 0, len(hand))
	for _, id := range hand {
		label := id
		if obj, found := s.objects[id]; found {
			label = obj.Characteristics.Name
		}
		options = append(options, ChoiceOption{ID: id, Label: label})
	}
	err := s.CreateChoice(&PendingChoice{
		Kind:     ChoiceBottomCards,
		PlayerID: playerID,
		Prompt:   "Put cards on the bottom of your library",
		Options:  options,
		MinPicks: n,
		MaxPicks: n,
		Resume:   Resumption{Kind: ResumeBottomCards},
	})
	return err == nil
}

// bottomAfterMulligan moves the picked cards to the bottom of the library
// and announces the kept hand.
func (s *State) bottomAfterMulligan(playerID string, picks []string) []rules.Event {
	var processed []rules.Event
	for _, id := range picks {
		ev := rules.NewZoneChange(id, "", playerID, ZoneHand, ZoneLibrary)
		ev.Metadata["zone_owner"] = playerID
		processed = append(processed, s.Emit(ev)...)
	}
	processed = append(processed, s.Emit(rules.NewEvent(rules.EventKeepHand, playerID, "", playerID))...)
	return processed
}
