package rules

import (
	"errors"
)

// StackItemKind describes the type of object on the stack.
type StackItemKind string

const (
	// StackItemKindSpell represents a spell cast by a player.
	StackItemKindSpell StackItemKind = "SPELL"
	// StackItemKindActivated represents an activated ability.
	StackItemKindActivated StackItemKind = "ACTIVATED"
	// StackItemKindTriggered represents a triggered ability.
	StackItemKindTriggered StackItemKind = "TRIGGERED"
)

// StackItem represents a single object on the stack. Resolve produces the
// events the item's resolution wants emitted; the caller feeds them through
// the pipeline.
type StackItem struct {
	ID          string
	Controller  string
	Description string
	Kind        StackItemKind
	SourceID    string
	Targets     []string
	Metadata    map[string]string
	Resolve     func() []Event
	OnRemove    func() []Event // countered / swept while on the stack
}

// Stack manages the pending spell/ability resolution order (LIFO).
//
// The engine is single-threaded; no locking is required here. Items are
// appended on push, so the topmost item is always last.
type Stack struct {
	items []StackItem
}

// NewStack creates an empty stack.
func NewStack() *Stack {
	return &Stack{items: make([]StackItem, 0, 16)}
}

// Push adds an item to the top of the stack.
func (s *Stack) Push(item StackItem) {
	s.items = append(s.items, item)
}

// Pop removes and returns the top item.
func (s *Stack) Pop() (StackItem, error) {
	if len(s.items) == 0 {
		return StackItem{}, errors.New("stack empty")
	}
	idx := len(s.items) - 1
	item := s.items[idx]
	s.items = s.items[:idx]
	return item, nil
}

// Remove deletes an item from anywhere in the stack by ID.
func (s *Stack) Remove(id string) (StackItem, bool) {
	for idx := len(s.items) - 1; idx >= 0; idx-- {
		if s.items[idx].ID == id {
			item := s.items[idx]
			s.items = append(s.items[:idx], s.items[idx+1:]...)
			return item, true
		}
	}
	return StackItem{}, false
}

// Peek returns the top item without removing it.
func (s *Stack) Peek() (StackItem, bool) {
	if len(s.items) == 0 {
		return StackItem{}, false
	}
	return s.items[len(s.items)-1], true
}

// List returns a copy of all stack items (topmost last).
func (s *Stack) List() []StackItem {
	cpy := make([]StackItem, len(s.items))
	copy(cpy, s.items)
	return cpy
}

// IsEmpty returns whether the stack is empty.
func (s *Stack) IsEmpty() bool {
	return len(s.items) == 0
}

// Len returns the number of items on the stack.
func (s *Stack) Len() int {
	return len(s.items)
}
