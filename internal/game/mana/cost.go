package mana

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Cost represents a parsed mana cost.
type Cost struct {
	Generic int
	Colored map[Type]int
	X       bool // X in cost, e.g. {X}{R}
}

var symbolPattern = regexp.MustCompile(`\{([^}]+)\}`)

var symbolTypes = map[string]Type{
	"W": White,
	"U": Blue,
	"B": Black,
	"R": Red,
	"G": Green,
	"C": Colorless,
}

// ParseCost parses a mana cost string such as "{1}{G}", "{2}{R}{R}" or
// "{X}{B}". An empty string parses to a free cost.
func ParseCost(costStr string) (*Cost, error) {
	cost := &Cost{Colored: make(map[Type]int)}
	if costStr == "" {
		return cost, nil
	}

	matches := symbolPattern.FindAllStringSubmatch(costStr, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("malformed mana cost %q", costStr)
	}

	for _, match := range matches {
		symbol := strings.ToUpper(strings.TrimSpace(match[1]))
		if symbol == "X" {
			cost.X = true
			continue
		}
		if t, ok := symbolTypes[symbol]; ok {
			cost.Colored[t]++
			continue
		}
		num, err := strconv.Atoi(symbol)
		if err != nil {
			return nil, fmt.Errorf("unknown mana symbol {%s}", symbol)
		}
		cost.Generic += num
	}

	return cost, nil
}

// MustParse parses a cost and panics on malformed input. For literals.
func MustParse(costStr string) *Cost {
	cost, err := ParseCost(costStr)
	if err != nil {
		panic(err)
	}
	return cost
}

// ConvertedValue returns the converted (total) cost, counting X as xValue.
func (c *Cost) ConvertedValue(xValue int) int {
	if c == nil {
		return 0
	}
	total := c.Generic
	for _, n := range c.Colored {
		total += n
	}
	if c.X {
		total += xValue
	}
	return total
}

// WithX returns a copy of the cost with X folded into the generic part.
func (c *Cost) WithX(xValue int) *Cost {
	cpy := c.Copy()
	if cpy.X && xValue > 0 {
		cpy.Generic += xValue
	}
	cpy.X = false
	return cpy
}

// AddGeneric returns a copy of the cost with extra generic mana added.
// Used for cost-increasing effects and additional-cost mana surcharges.
func (c *Cost) AddGeneric(amount int) *Cost {
	cpy := c.Copy()
	if amount > 0 {
		cpy.Generic += amount
	}
	return cpy
}

// Copy creates a deep copy of the cost.
func (c *Cost) Copy() *Cost {
	if c == nil {
		return &Cost{Colored: make(map[Type]int)}
	}
	cpy := &Cost{Generic: c.Generic, X: c.X, Colored: make(map[Type]int, len(c.Colored))}
	for t, n := range c.Colored {
		cpy.Colored[t] = n
	}
	return cpy
}

// String renders the cost back into symbol notation.
func (c *Cost) String() string {
	if c == nil {
		return ""
	}
	var sb strings.Builder
	if c.X {
		sb.WriteString("{X}")
	}
	if c.Generic > 0 {
		fmt.Fprintf(&sb, "{%d}", c.Generic)
	}
	for _, t := range Types {
		symbol := symbolFor(t)
		for i := 0; i < c.Colored[t]; i++ {
			sb.WriteString("{" + symbol + "}")
		}
	}
	return sb.String()
}

func symbolFor(t Type) string {
	for symbol, st := range symbolTypes {
		if st == t {
			return symbol
		}
	}
	return "?"
}
