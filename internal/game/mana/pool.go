package mana

// Type represents a type of mana.
type Type string

const (
	White     Type = "WHITE"
	Blue      Type = "BLUE"
	Black     Type = "BLACK"
	Red       Type = "RED"
	Green     Type = "GREEN"
	Colorless Type = "COLORLESS"
)

// Types lists every concrete mana type in WUBRG+C order.
var Types = []Type{White, Blue, Black, Red, Green, Colorless}

// Pool holds a player's available mana. The engine is single-threaded, so
// the pool needs no locking.
type Pool struct {
	amounts map[Type]int
}

// NewPool creates an empty mana pool.
func NewPool() *Pool {
	return &Pool{amounts: make(map[Type]int)}
}

// Add adds mana of the given type to the pool.
func (p *Pool) Add(t Type, amount int) {
	if amount <= 0 {
		return
	}
	p.amounts[t] += amount
}

// Get returns the amount of a specific mana type in the pool.
func (p *Pool) Get(t Type) int {
	return p.amounts[t]
}

// Total returns the total mana in the pool across all types.
func (p *Pool) Total() int {
	total := 0
	for _, amount := range p.amounts {
		total += amount
	}
	return total
}

// Empty removes all mana from the pool.
func (p *Pool) Empty() {
	p.amounts = make(map[Type]int)
}

// CanPay reports whether the pool can cover the cost: each colored symbol
// needs matching mana, generic can be covered by anything left over.
func (p *Pool) CanPay(cost *Cost) bool {
	if cost == nil {
		return true
	}
	remaining := p.Total()
	for t, need := range cost.Colored {
		if p.Get(t) < need {
			return false
		}
		remaining -= need
	}
	return remaining >= cost.Generic
}

// Pay removes the cost from the pool. Colored symbols consume matching
// mana; generic consumes remaining mana in WUBRG+C order. Returns false,
// leaving the pool untouched, if the cost cannot be paid.
func (p *Pool) Pay(cost *Cost) bool {
	if !p.CanPay(cost) {
		return false
	}
	if cost == nil {
		return true
	}
	for t, need := range cost.Colored {
		p.amounts[t] -= need
	}
	generic := cost.Generic
	for _, t := range Types {
		if generic == 0 {
			break
		}
		take := p.amounts[t]
		if take > generic {
			take = generic
		}
		p.amounts[t] -= take
		generic -= take
	}
	return true
}

// Snapshot returns a copy of the pool's contents.
func (p *Pool) Snapshot() map[Type]int {
	cpy := make(map[Type]int, len(p.amounts))
	for t, amount := range p.amounts {
		if amount > 0 {
			cpy[t] = amount
		}
	}
	return cpy
}
