package counters

import (
	"fmt"
	"strconv"
	"strings"
)

// Counter represents a named counter on an object or player.
type Counter struct {
	Name  string
	Count int
}

// NewCounter creates a counter with the given name and count (minimum 1).
func NewCounter(name string, count int) *Counter {
	if count <= 0 {
		count = 1
	}
	return &Counter{Name: name, Count: count}
}

// Add adds the specified amount to the counter.
func (c *Counter) Add(amount int) {
	if amount > 0 {
		c.Count += amount
	}
}

// Remove removes up to the specified amount, never going below zero.
func (c *Counter) Remove(amount int) {
	if amount <= 0 {
		return
	}
	if c.Count >= amount {
		c.Count -= amount
	} else {
		c.Count = 0
	}
}

// Copy creates a deep copy of the counter.
func (c *Counter) Copy() *Counter {
	return &Counter{Name: c.Name, Count: c.Count}
}

// BoostName builds the conventional name for a power/toughness counter,
// e.g. "+1/+1" or "-1/-1".
func BoostName(power, toughness int) string {
	return fmt.Sprintf("%s/%s", formatBoost(power), formatBoost(toughness))
}

func formatBoost(value int) string {
	if value > 0 {
		return "+" + strconv.Itoa(value)
	}
	return strconv.Itoa(value)
}

// ParseBoostName parses a boost counter name like "+1/+1" into power and
// toughness deltas. Returns false for non-boost counter names.
func ParseBoostName(name string) (power, toughness int, ok bool) {
	parts := strings.SplitN(name, "/", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	power, err := strconv.Atoi(strings.TrimPrefix(parts[0], "+"))
	if err != nil {
		return 0, 0, false
	}
	toughness, err = strconv.Atoi(strings.TrimPrefix(parts[1], "+"))
	if err != nil {
		return 0, 0, false
	}
	return power, toughness, true
}

// Counters manages a collection of counters keyed by name.
type Counters struct {
	byName map[string]*Counter
}

// NewCounters creates an empty collection.
func NewCounters() *Counters {
	return &Counters{byName: make(map[string]*Counter)}
}

// Add adds amount counters of the given name.
func (cs *Counters) Add(name string, amount int) {
	if amount <= 0 {
		return
	}
	if existing, ok := cs.byName[name]; ok {
		existing.Add(amount)
		return
	}
	cs.byName[name] = NewCounter(name, amount)
}

// Remove removes up to amount counters of the given name. Returns true if
// any counters were removed.
func (cs *Counters) Remove(name string, amount int) bool {
	if amount <= 0 {
		return false
	}
	counter, ok := cs.byName[name]
	if !ok {
		return false
	}
	counter.Remove(amount)
	if counter.Count == 0 {
		delete(cs.byName, name)
	}
	return true
}

// Count returns the number of counters with the given name.
func (cs *Counters) Count(name string) int {
	if counter, ok := cs.byName[name]; ok {
		return counter.Count
	}
	return 0
}

// Has returns true if any counters with the given name exist.
func (cs *Counters) Has(name string) bool {
	return cs.Count(name) > 0
}

// Total returns the total number of counters of all names.
func (cs *Counters) Total() int {
	total := 0
	for _, counter := range cs.byName {
		total += counter.Count
	}
	return total
}

// BoostTotals sums the power/toughness contribution of all boost counters.
func (cs *Counters) BoostTotals() (power, toughness int) {
	for name, counter := range cs.byName {
		if p, t, ok := ParseBoostName(name); ok {
			power += p * counter.Count
			toughness += t * counter.Count
		}
	}
	return power, toughness
}

// All returns a copy of every counter in the collection.
func (cs *Counters) All() []*Counter {
	result := make([]*Counter, 0, len(cs.byName))
	for _, counter := range cs.byName {
		result = append(result, counter.Copy())
	}
	return result
}

// Copy creates a deep copy of the collection.
func (cs *Counters) Copy() *Counters {
	cpy := NewCounters()
	for name, counter := range cs.byName {
		cpy.byName[name] = counter.Copy()
	}
	return cpy
}
