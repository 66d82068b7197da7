package game

// AttackDeclaration pairs an attacker with the defender it attacks.
type AttackDeclaration struct {
	AttackerID string
	DefenderID string // player ID or planeswalker object ID
}

// BlockDeclaration pairs a blocker with the attacker it blocks.
type BlockDeclaration struct {
	BlockerID  string
	AttackerID string
}

// DecisionProvider supplies the out-of-band decisions the engine needs.
// AI providers answer synchronously; human-backed providers return ok=false
// from ChooseAction to suspend the loop until the player acts through the
// external entry points.
type DecisionProvider interface {
	// ChooseAction picks one of the legal actions while holding priority
	// (classic) or during the main loop (blitz). ok=false suspends.
	ChooseAction(playerID string, legal []LegalAction) (Action, bool)

	// ChooseAttackers selects attack declarations from the candidates.
	ChooseAttackers(playerID string, candidates []string, defenders []string) []AttackDeclaration

	// ChooseBlockers selects block declarations.
	ChooseBlockers(playerID string, attackers []string, candidates []string) []BlockDeclaration

	// AssignCombatDamage splits an attacker's power among its blockers.
	// Returning nil selects the default split (even, remainder to the
	// first blocker).
	AssignCombatDamage(attackerID string, blockers []string, power int) map[string]int

	// KeepHand is the mulligan keep decision.
	KeepHand(playerID string, hand []string) bool

	// BottomCards picks the n cards to put on the bottom of the library
	// after keeping a mulliganed hand. Returning nil asks through the
	// pending-choice protocol instead.
	BottomCards(playerID string, hand []string, n int) []string

	// TakeTurn drives a whole blitz turn for an AI player. A no-op
	// implementation means the pull-based action loop is used instead.
	TakeTurn(playerID string, s *State)
}

// passingDecisions is the fallback provider: it always passes, never
// attacks, and keeps every hand.
type passingDecisions struct{}

func (passingDecisions) ChooseAction(playerID string, legal []LegalAction) (Action, bool) {
	return Action{Kind: ActionPass}, true
}

func (passingDecisions) ChooseAttackers(string, []string, []string) []AttackDeclaration { return nil }

func (passingDecisions) ChooseBlockers(string, []string, []string) []BlockDeclaration { return nil }

func (passingDecisions) AssignCombatDamage(string, []string, int) map[string]int { return nil }

func (passingDecisions) KeepHand(string, []string) bool { return true }

func (passingDecisions) BottomCards(string, []string, int) []string { return nil }

func (passingDecisions) TakeTurn(string, *State) {}

// FuncDecisions adapts plain functions into a DecisionProvider; unset
// fields fall back to the passing behavior. Used heavily by tests and by
// callers embedding AI callbacks.
type FuncDecisions struct {
	ActionFn    func(playerID string, legal []LegalAction) (Action, bool)
	AttackersFn func(playerID string, candidates []string, defenders []string) []AttackDeclaration
	BlockersFn  func(playerID string, attackers []string, candidates []string) []BlockDeclaration
	AssignFn    func(attackerID string, blockers []string, power int) map[string]int
	KeepFn      func(playerID string, hand []string) bool
	BottomFn    func(playerID string, hand []string, n int) []string
	DiscardFn   func(playerID string, hand []string, n int) []string
	TurnFn      func(playerID string, s *State)
}

func (f *FuncDecisions) ChooseAction(playerID string, legal []LegalAction) (Action, bool) {
	if f.ActionFn == nil {
		return Action{Kind: ActionPass}, true
	}
	return f.ActionFn(playerID, legal)
}

func (f *FuncDecisions) ChooseAttackers(playerID string, candidates, defenders []string) []AttackDeclaration {
	if f.AttackersFn == nil {
		return nil
	}
	return f.AttackersFn(playerID, candidates, defenders)
}

func (f *FuncDecisions) ChooseBlockers(playerID string, attackers, candidates []string) []BlockDeclaration {
	if f.BlockersFn == nil {
		return nil
	}
	return f.BlockersFn(playerID, attackers, candidates)
}

func (f *FuncDecisions) AssignCombatDamage(attackerID string, blockers []string, power int) map[string]int {
	if f.AssignFn == nil {
		return nil
	}
	return f.AssignFn(attackerID, blockers, power)
}

func (f *FuncDecisions) KeepHand(playerID string, hand []string) bool {
	if f.KeepFn == nil {
		return true
	}
	return f.KeepFn(playerID, hand)
}

func (f *FuncDecisions) BottomCards(playerID string, hand []string, n int) []string {
	if f.BottomFn == nil {
		return nil
	}
	return f.BottomFn(playerID, hand, n)
}

// DiscardToHandSize picks cleanup discards; the default takes the most
// recently drawn cards. A configured DiscardFn may return nil to route the
// question through the pending-choice protocol.
func (f *FuncDecisions) DiscardToHandSize(playerID string, hand []string, n int) []string {
	if f.DiscardFn != nil {
		return f.DiscardFn(playerID, hand, n)
	}
	if n > len(hand) {
		n = len(hand)
	}
	return hand[len(hand)-n:]
}

func (f *FuncDecisions) TakeTurn(playerID string, s *State) {
	if f.TurnFn != nil {
		f.TurnFn(playerID, s)
	}
}
