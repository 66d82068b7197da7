package game

// CardView is the client-facing snapshot of one object.
type CardView struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	ManaCost   string         `json:"mana_cost,omitempty"`
	Types      []string       `json:"types"`
	Power      int            `json:"power"`
	Toughness  int            `json:"toughness"`
	Abilities  []string       `json:"abilities,omitempty"`
	Zone       string         `json:"zone"`
	Controller string         `json:"controller"`
	Tapped     bool           `json:"tapped"`
	Damage     int            `json:"damage"`
	Frozen     bool           `json:"frozen,omitempty"`
	Exhausted  bool           `json:"exhausted,omitempty"`
	Attacking  bool           `json:"attacking,omitempty"`
	Counters   map[string]int `json:"counters,omitempty"`
	Token      bool           `json:"token,omitempty"`
}

// PlayerView is the client-facing snapshot of one player. Hidden zones are
// redacted for everyone but the viewer.
type PlayerView struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Life         int        `json:"life"`
	HandSize     int        `json:"hand_size"`
	Hand         []CardView `json:"hand,omitempty"`
	LibraryCount int        `json:"library_count"`
	Graveyard    []CardView `json:"graveyard"`
	Crystals     int        `json:"crystals,omitempty"`
	CrystalCap   int        `json:"crystal_cap,omitempty"`
	Fatigue      int        `json:"fatigue,omitempty"`
	Lost         bool       `json:"lost,omitempty"`
	Won          bool       `json:"won,omitempty"`
}

// ChoiceView is the pending choice as shown to clients. Only the choosing
// player sees the options; everyone else sees who the game is waiting on.
type ChoiceView struct {
	ID       string         `json:"id"`
	Kind     string         `json:"kind"`
	Prompt   string         `json:"prompt"`
	Options  []ChoiceOption `json:"options"`
	MinPicks int            `json:"min_picks"`
	MaxPicks int            `json:"max_picks"`
}

// GameView is the full redacted snapshot sent to one viewer.
type GameView struct {
	GameID       string        `json:"game_id"`
	Ruleset      string        `json:"ruleset"`
	TurnNumber   int           `json:"turn_number"`
	ActivePlayer string        `json:"active_player"`
	Phase        string        `json:"phase,omitempty"`
	Step         string        `json:"step,omitempty"`
	Battlefield  []CardView    `json:"battlefield"`
	StackItems   []string      `json:"stack,omitempty"`
	Players      []PlayerView  `json:"players"`
	Pending      *ChoiceView   `json:"pending_choice,omitempty"`
	WaitingOn    string        `json:"waiting_on,omitempty"`
	LegalActions []LegalAction `json:"legal_actions,omitempty"`
	GameOver     bool          `json:"game_over"`
}

func (s *State) cardView(obj *GameObject) CardView {
	view := CardView{
		ID:         obj.ID,
		Name:       obj.Characteristics.Name,
		ManaCost:   obj.Characteristics.ManaCost,
		Types:      append([]string(nil), obj.Characteristics.Types...),
		Abilities:  append([]string(nil), obj.Characteristics.Abilities...),
		Zone:       obj.Zone,
		Controller: obj.ControllerID,
		Tapped:     obj.State.Tapped,
		Damage:     obj.State.Damage,
		Frozen:     obj.State.Frozen,
		Exhausted:  obj.State.Exhausted,
		Attacking:  obj.State.Attacking,
		Token:      obj.Token,
	}
	if obj.IsCreature() {
		view.Power = obj.CurrentPower()
		view.Toughness = obj.CurrentToughness()
	}
	if all := obj.State.Counters.All(); len(all) > 0 {
		view.Counters = make(map[string]int, len(all))
		for _, c := range all {
			view.Counters[c.Name] = c.Count
		}
	}
	return view
}

// View builds the redacted snapshot for one viewer. The viewer sees their
// own hand and, when they hold the decision, the pending choice or their
// legal actions.
func (s *State) View(viewerID string) *GameView {
	view := &GameView{
		GameID:       s.GameID,
		Ruleset:      string(s.Ruleset),
		TurnNumber:   s.turns.TurnNumber(s),
		ActivePlayer: s.turns.ActivePlayer(s),
		GameOver:     s.gameOver,
	}
	if s.Ruleset == RulesetClassic {
		view.Phase = s.tracker.CurrentPhase().String()
		view.Step = s.tracker.CurrentStep().String()
	}

	for _, id := range s.Battlefield() {
		if obj, ok := s.objects[id]; ok {
			view.Battlefield = append(view.Battlefield, s.cardView(obj))
		}
	}
	for _, item := range s.stack.List() {
		view.StackItems = append(view.StackItems, item.Description)
	}

	for _, pid := range s.playerOrder {
		p := s.players[pid]
		pv := PlayerView{
			ID:           p.ID,
			Name:         p.Name,
			Life:         p.Life,
			HandSize:     len(s.Hand(pid)),
			LibraryCount: len(s.Library(pid)),
			Crystals:     p.Crystals,
			CrystalCap:   p.CrystalCap,
			Fatigue:      p.Fatigue,
			Lost:         p.Lost || p.Conceded,
			Won:          p.Won,
		}
		for _, id := range s.Graveyard(pid) {
			if obj, ok := s.objects[id]; ok {
				pv.Graveyard = append(pv.Graveyard, s.cardView(obj))
			}
		}
		if pid == viewerID {
			for _, id := range s.Hand(pid) {
				if obj, ok := s.objects[id]; ok {
					pv.Hand = append(pv.Hand, s.cardView(obj))
				}
			}
		}
		view.Players = append(view.Players, pv)
	}

	if s.Pending != nil {
		if s.Pending.PlayerID == viewerID {
			view.Pending = &ChoiceView{
				ID:       s.Pending.ID,
				Kind:     string(s.Pending.Kind),
				Prompt:   s.Pending.Prompt,
				Options:  append([]ChoiceOption(nil), s.Pending.Options...),
				MinPicks: s.Pending.MinPicks,
				MaxPicks: s.Pending.MaxPicks,
			}
		} else {
			view.WaitingOn = s.Pending.PlayerID
		}
	} else if !s.gameOver {
		switch s.Ruleset {
		case RulesetClassic:
			if s.tracker.PriorityPlayer() == viewerID {
				view.LegalActions = s.LegalActions(viewerID)
			}
		case RulesetBlitz:
			if s.turns.ActivePlayer(s) == viewerID {
				view.LegalActions = s.blitzLegalActions(viewerID)
			}
		}
	}
	return view
}
