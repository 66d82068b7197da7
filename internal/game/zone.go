package game

import (
	"fmt"

	"github.com/discordwell/hyperdraft/internal/game/counters"
)

// zoneKey identifies a zone: shared zones have an empty owner.
type zoneKey struct {
	kind  string
	owner string
}

// Zone is an ordered sequence of object IDs. Ordering matters for the
// library (index 0 = top, drawn first) and is what scry/surveil reorder.
type Zone struct {
	Kind    string
	OwnerID string
	Objects []string
}

func sharedZone(kind string) zoneKey        { return zoneKey{kind: kind} }
func playerZone(kind, owner string) zoneKey { return zoneKey{kind: kind, owner: owner} }

func zoneIsShared(kind string) bool {
	switch kind {
	case ZoneBattlefield, ZoneStack, ZoneExile, ZoneCommand:
		return true
	}
	return false
}

// zone returns the zone record for a kind/owner pair, creating it lazily.
func (s *State) zone(kind, owner string) *Zone {
	key := playerZone(kind, owner)
	if zoneIsShared(kind) {
		key = sharedZone(kind)
		owner = ""
	}
	if z, ok := s.zones[key]; ok {
		return z
	}
	z := &Zone{Kind: kind, OwnerID: owner, Objects: make([]string, 0, 16)}
	s.zones[key] = z
	return z
}

// Contains reports whether the zone holds the object ID.
func (z *Zone) Contains(objectID string) bool {
	for _, id := range z.Objects {
		if id == objectID {
			return true
		}
	}
	return false
}

// remove deletes the object ID from the zone's list.
func (z *Zone) remove(objectID string) {
	for i, id := range z.Objects {
		if id == objectID {
			z.Objects = append(z.Objects[:i], z.Objects[i+1:]...)
			return
		}
	}
}

// moveObject is the ground-truth zone transition: it detaches the object
// from its current zone, attaches it to the destination (bottom/end by
// default), and refreshes the object's zone fields and entry timestamp.
// This is reserved for resolve handlers and setup; everything else goes
// through ZONE_CHANGE events.
func (s *State) moveObject(obj *GameObject, toKind, toOwner string) error {
	if obj == nil {
		return fmt.Errorf("moveObject: nil object")
	}
	if obj.Zone != ZoneNone {
		s.zone(obj.Zone, obj.ZoneOwner).remove(obj.ID)
	}

	if toKind == ZoneNone {
		obj.Zone = ZoneNone
		obj.ZoneOwner = ""
		obj.EnteredZoneSeq = s.nextSeq()
		return nil
	}

	dest := s.zone(toKind, toOwner)
	dest.Objects = append(dest.Objects, obj.ID)
	obj.Zone = toKind
	if zoneIsShared(toKind) {
		obj.ZoneOwner = ""
	} else {
		obj.ZoneOwner = toOwner
	}
	obj.EnteredZoneSeq = s.nextSeq()

	if toKind == ZoneBattlefield {
		obj.State.SummoningSick = true
		obj.State.Damage = 0
		obj.State.DamageSources = make(map[string]int)
	} else {
		// Leaving play wipes battle scars; identity survives.
		obj.State.Tapped = false
		obj.State.Damage = 0
		obj.State.DamageSources = make(map[string]int)
		obj.State.DeathtouchHit = false
		obj.State.Attacking = false
		obj.State.Blocking = false
		obj.State.AttackingWhat = ""
		obj.State.BlockingWhat = nil
		obj.State.Frozen = false
		obj.State.FrozeSkipped = false
		obj.State.Exhausted = false
		obj.State.DivineShield = false
		obj.State.Counters = counters.NewCounters()
		obj.State.TempTypes = nil
		obj.State.TempAbilities = nil
		obj.State.TempPower = 0
		obj.State.TempToughness = 0
		obj.State.TempController = ""
		obj.ControllerID = obj.OwnerID
	}
	return nil
}

// moveToLibraryTop places the object on top of its owner's library.
func (s *State) moveToLibraryTop(obj *GameObject) {
	_ = s.moveObject(obj, ZoneNone, "")
	lib := s.zone(ZoneLibrary, obj.OwnerID)
	lib.Objects = append([]string{obj.ID}, lib.Objects...)
	obj.Zone = ZoneLibrary
	obj.ZoneOwner = obj.OwnerID
	obj.EnteredZoneSeq = s.nextSeq()
}

// moveToLibraryBottom places the object on the bottom of its owner's library.
func (s *State) moveToLibraryBottom(obj *GameObject) {
	_ = s.moveObject(obj, ZoneLibrary, obj.OwnerID)
}

// Library returns the ordered library of a player (index 0 = top).
func (s *State) Library(playerID string) []string {
	return append([]string(nil), s.zone(ZoneLibrary, playerID).Objects...)
}

// Hand returns the hand contents of a player.
func (s *State) Hand(playerID string) []string {
	return append([]string(nil), s.zone(ZoneHand, playerID).Objects...)
}

// Graveyard returns the graveyard contents of a player.
func (s *State) Graveyard(playerID string) []string {
	return append([]string(nil), s.zone(ZoneGraveyard, playerID).Objects...)
}

// Battlefield returns the shared battlefield contents.
func (s *State) Battlefield() []string {
	return append([]string(nil), s.zone(ZoneBattlefield, "").Objects...)
}
