package game

import (
	"strconv"

	"github.com/discordwell/hyperdraft/internal/game/mana"
	"github.com/discordwell/hyperdraft/internal/game/rules"
)

// buildResolveHandlers builds the fixed per-type dispatch table for the
// RESOLVE phase. These handlers are the ground truth of what each event
// means; no interceptor participates here. Event types without an entry
// resolve as no-ops.
func buildResolveHandlers() map[rules.EventType]resolveFunc {
	return map[rules.EventType]resolveFunc{
		rules.EventZoneChange:    resolveZoneChange,
		rules.EventDraw:          resolveDraw,
		rules.EventFatigue:       resolveFatigue,
		rules.EventDiscard:       resolveDiscard,
		rules.EventMill:          resolveMill,
		rules.EventDamage:        resolveDamagePermanent,
		rules.EventDamagePlayer:  resolveDamagePlayer,
		rules.EventGainLife:      resolveGainLife,
		rules.EventLoseLife:      resolveLoseLife,
		rules.EventPayLife:       resolveLoseLife,
		rules.EventTap:           resolveTap,
		rules.EventUntap:         resolveUntap,
		rules.EventManaAdded:     resolveManaAdded,
		rules.EventDestroy:       resolveToGraveyard,
		rules.EventSacrifice:     resolveToGraveyard,
		rules.EventAddCounter:    resolveAddCounter,
		rules.EventRemoveCounter: resolveRemoveCounter,
		rules.EventCreateToken:   resolveCreateToken,
		rules.EventPlayLand:      resolvePlayLand,
		rules.EventShuffle:       resolveShuffle,
		rules.EventControlChange: resolveControlChange,
		rules.EventFreeze:        resolveFreeze,
		rules.EventCrewed:        resolveCrewed,
		rules.EventAttack:        resolveBlitzAttack,
		rules.EventPlayerLost:    resolvePlayerLost,
	}
}

func resolveZoneChange(s *State, ev *rules.Event) []rules.Event {
	obj, ok := s.objects[ev.TargetID]
	if !ok {
		return nil
	}
	owner := obj.OwnerID
	if zo := ev.Metadata["zone_owner"]; zo != "" {
		owner = zo
	}
	if ev.Metadata["library_position"] == "top" {
		s.moveToLibraryTop(obj)
		return nil
	}
	_ = s.moveObject(obj, ev.Zone, owner)
	if ev.Zone == ZoneBattlefield {
		if c := ev.Metadata["controller"]; c != "" {
			obj.ControllerID = c
		}
		if obj.Characteristics.HasAbility(AbilityDivineShield) {
			obj.State.DivineShield = true
		}
		// A permanent re-entering the battlefield re-installs its card's
		// interceptors; they were swept when it last left.
		if obj.Definition != nil && len(obj.InterceptorIDs) == 0 {
			for _, ic := range obj.Definition.SetupInterceptors(obj, s) {
				if ic.SourceID == "" {
					ic.SourceID = obj.ID
				}
				if ic.Controller == "" {
					ic.Controller = obj.ControllerID
				}
				s.RegisterInterceptor(ic)
			}
		}
	}
	return nil
}

func resolveDraw(s *State, ev *rules.Event) []rules.Event {
	player, ok := s.players[ev.PlayerID]
	if !ok {
		return nil
	}
	count := ev.Amount
	if count <= 0 {
		count = 1
	}
	var followups []rules.Event
	for i := 0; i < count; i++ {
		lib := s.zone(ZoneLibrary, player.ID)
		if len(lib.Objects) == 0 {
			if s.Ruleset == RulesetBlitz {
				player.Fatigue++
				fatigue := rules.NewEventWithAmount(rules.EventFatigue, player.ID, ev.SourceID, player.ID, player.Fatigue)
				followups = append(followups, fatigue)
				continue
			}
			player.DrewFromEmpty = true
			continue
		}
		top, ok := s.objects[lib.Objects[0]]
		if !ok {
			lib.Objects = lib.Objects[1:]
			continue
		}
		if s.Ruleset == RulesetBlitz && len(s.zone(ZoneHand, player.ID).Objects) >= player.HandLimit {
			// Overdrawn: the card burns instead of entering the hand.
			_ = s.moveObject(top, ZoneGraveyard, player.ID)
			continue
		}
		_ = s.moveObject(top, ZoneHand, player.ID)
	}
	return followups
}

// resolveFatigue applies the escalating empty-draw damage: the amount was
// set from the fatigue counter at emission, so successive draws hurt for
// 1, 2, 3, ...
func resolveFatigue(s *State, ev *rules.Event) []rules.Event {
	if player, ok := s.players[ev.PlayerID]; ok {
		player.Life -= ev.Amount
	}
	return nil
}

func resolveDiscard(s *State, ev *rules.Event) []rules.Event {
	obj, ok := s.objects[ev.TargetID]
	if !ok || obj.Zone != ZoneHand {
		return nil
	}
	_ = s.moveObject(obj, ZoneGraveyard, obj.OwnerID)
	return nil
}

func resolveMill(s *State, ev *rules.Event) []rules.Event {
	lib := s.zone(ZoneLibrary, ev.PlayerID)
	if len(lib.Objects) == 0 {
		return nil
	}
	if top, ok := s.objects[lib.Objects[0]]; ok {
		_ = s.moveObject(top, ZoneGraveyard, top.OwnerID)
	}
	return nil
}

func resolveDamagePermanent(s *State, ev *rules.Event) []rules.Event {
	obj, ok := s.objects[ev.TargetID]
	if !ok || ev.Amount <= 0 {
		return nil
	}
	if obj.State.DivineShield {
		obj.State.DivineShield = false
		return nil
	}
	if obj.Characteristics.HasType(TypePlaneswalker) {
		obj.State.Counters.Remove("loyalty", ev.Amount)
		return nil
	}
	obj.State.Damage += ev.Amount
	obj.State.DamageSources[ev.SourceID] += ev.Amount
	if ev.Metadata["deathtouch"] == "true" {
		obj.State.DeathtouchHit = true
	}
	return nil
}

func resolveDamagePlayer(s *State, ev *rules.Event) []rules.Event {
	if player, ok := s.players[ev.PlayerID]; ok && ev.Amount > 0 {
		player.Life -= ev.Amount
	}
	return nil
}

func resolveGainLife(s *State, ev *rules.Event) []rules.Event {
	if player, ok := s.players[ev.PlayerID]; ok && ev.Amount > 0 {
		player.Life += ev.Amount
	}
	return nil
}

func resolveLoseLife(s *State, ev *rules.Event) []rules.Event {
	if player, ok := s.players[ev.PlayerID]; ok && ev.Amount > 0 {
		player.Life -= ev.Amount
	}
	return nil
}

func resolveManaAdded(s *State, ev *rules.Event) []rules.Event {
	player, ok := s.players[ev.PlayerID]
	if !ok {
		return nil
	}
	manaType := mana.Type(ev.Metadata["mana_type"])
	if manaType == "" {
		manaType = mana.Colorless
	}
	player.ManaPool.Add(manaType, ev.Amount)
	return nil
}

func resolveTap(s *State, ev *rules.Event) []rules.Event {
	if obj, ok := s.objects[ev.TargetID]; ok {
		obj.State.Tapped = true
	}
	return nil
}

func resolveUntap(s *State, ev *rules.Event) []rules.Event {
	if obj, ok := s.objects[ev.TargetID]; ok {
		obj.State.Tapped = false
	}
	return nil
}

func resolveToGraveyard(s *State, ev *rules.Event) []rules.Event {
	obj, ok := s.objects[ev.TargetID]
	if !ok || !obj.OnBattlefield() {
		return nil
	}
	_ = s.moveObject(obj, ZoneGraveyard, obj.OwnerID)
	return nil
}

func resolveAddCounter(s *State, ev *rules.Event) []rules.Event {
	obj, ok := s.objects[ev.TargetID]
	if !ok {
		return nil
	}
	name := ev.Metadata["counter"]
	if name == "" {
		return nil
	}
	amount := ev.Amount
	if amount <= 0 {
		amount = 1
	}
	obj.State.Counters.Add(name, amount)
	return nil
}

func resolveRemoveCounter(s *State, ev *rules.Event) []rules.Event {
	obj, ok := s.objects[ev.TargetID]
	if !ok {
		return nil
	}
	name := ev.Metadata["counter"]
	if name == "" {
		return nil
	}
	amount := ev.Amount
	if amount <= 0 {
		amount = 1
	}
	obj.State.Counters.Remove(name, amount)
	return nil
}

func resolveCreateToken(s *State, ev *rules.Event) []rules.Event {
	power, _ := strconv.Atoi(ev.Metadata["power"])
	toughness, _ := strconv.Atoi(ev.Metadata["toughness"])
	name := ev.Metadata["name"]
	if name == "" {
		name = "Token"
	}
	def := &tokenDefinition{chars: Characteristics{
		Name:      name,
		Types:     []string{TypeCreature},
		Power:     power,
		Toughness: toughness,
	}}
	count := ev.Amount
	if count <= 0 {
		count = 1
	}
	for i := 0; i < count; i++ {
		obj, err := s.CreateObject(def, ev.Controller, ZoneBattlefield)
		if err != nil {
			continue
		}
		obj.Token = true
	}
	return nil
}

func resolvePlayLand(s *State, ev *rules.Event) []rules.Event {
	obj, ok := s.objects[ev.TargetID]
	if !ok || obj.Zone != ZoneHand {
		return nil
	}
	_ = s.moveObject(obj, ZoneBattlefield, "")
	obj.ControllerID = ev.Controller
	if player, found := s.players[ev.Controller]; found {
		player.LandsPlayed++
	}
	return nil
}

func resolveShuffle(s *State, ev *rules.Event) []rules.Event {
	s.shuffleLibrary(ev.PlayerID)
	return nil
}

func resolveControlChange(s *State, ev *rules.Event) []rules.Event {
	obj, ok := s.objects[ev.TargetID]
	if !ok {
		return nil
	}
	newController := ev.Metadata["new_controller"]
	if newController == "" {
		return nil
	}
	if ev.Metadata["until_eot"] == "true" && obj.State.TempController == "" {
		obj.State.TempController = obj.ControllerID
	}
	obj.ControllerID = newController
	return nil
}

func resolveFreeze(s *State, ev *rules.Event) []rules.Event {
	if obj, ok := s.objects[ev.TargetID]; ok {
		obj.State.Frozen = true
		obj.State.FrozeSkipped = false
	}
	return nil
}

// resolveCrewed animates a vehicle until end of turn. The crew taps were
// already applied by the crew cost events.
func resolveCrewed(s *State, ev *rules.Event) []rules.Event {
	obj, ok := s.objects[ev.TargetID]
	if !ok {
		return nil
	}
	obj.State.TempTypes = append(obj.State.TempTypes, TypeCreature)
	return nil
}

// resolveBlitzAttack turns a resolved blitz attack into the mutual damage
// events. Evaluated here rather than at declaration time: there is no
// declaration protocol in that ruleset.
func resolveBlitzAttack(s *State, ev *rules.Event) []rules.Event {
	attacker, ok := s.objects[ev.SourceID]
	if !ok {
		return nil
	}
	attacker.State.Exhausted = true
	power := attacker.CurrentPower()

	if target, isObject := s.objects[ev.TargetID]; isObject {
		var out []rules.Event
		hit := rules.NewEventWithAmount(rules.EventDamage, target.ID, attacker.ID, attacker.ControllerID, power)
		hit.Flag = true
		out = append(out, hit)
		back := rules.NewEventWithAmount(rules.EventDamage, attacker.ID, target.ID, target.ControllerID, target.CurrentPower())
		back.Flag = true
		out = append(out, back)
		return out
	}

	hit := rules.NewEventWithAmount(rules.EventDamagePlayer, ev.TargetID, attacker.ID, attacker.ControllerID, power)
	hit.PlayerID = ev.TargetID
	hit.Flag = true
	return []rules.Event{hit}
}

func resolvePlayerLost(s *State, ev *rules.Event) []rules.Event {
	player, ok := s.players[ev.PlayerID]
	if !ok || player.Lost {
		return nil
	}
	player.Lost = true

	remaining := make([]*Player, 0, len(s.players))
	for _, p := range s.players {
		if p.CanAct() {
			remaining = append(remaining, p)
		}
	}
	if len(remaining) == 1 {
		remaining[0].Won = true
		s.gameOver = true
		return []rules.Event{rules.NewEvent(rules.EventPlayerWon, remaining[0].ID, "", remaining[0].ID)}
	}
	if len(remaining) == 0 {
		s.gameOver = true
	}
	return nil
}
