package mana

import (
	"testing"
)

func TestParseCost(t *testing.T) {
	cost, err := ParseCost("{2}{R}{R}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cost.Generic != 2 {
		t.Errorf("Expected 2 generic, got %d", cost.Generic)
	}
	if cost.Colored[Red] != 2 {
		t.Errorf("Expected 2 red symbols, got %d", cost.Colored[Red])
	}
	if cost.X {
		t.Error("Expected no X component")
	}
}

func TestParseCostX(t *testing.T) {
	cost, err := ParseCost("{X}{B}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cost.X {
		t.Error("Expected an X component")
	}
	if cost.Generic != 0 {
		t.Errorf("Expected 0 generic, got %d", cost.Generic)
	}
	if cost.Colored[Black] != 1 {
		t.Errorf("Expected 1 black symbol, got %d", cost.Colored[Black])
	}
}

func TestParseCostEmpty(t *testing.T) {
	cost, err := ParseCost("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cost.ConvertedValue(0) != 0 {
		t.Errorf("Expected a free cost, got %d", cost.ConvertedValue(0))
	}
}

func TestParseCostErrors(t *testing.T) {
	if _, err := ParseCost("2RR"); err == nil {
		t.Error("Expected error for cost without braces")
	}
	if _, err := ParseCost("{Q}"); err == nil {
		t.Error("Expected error for unknown symbol")
	}
}

func TestCostConvertedValue(t *testing.T) {
	cost := MustParse("{X}{2}{G}{G}")
	if cost.ConvertedValue(0) != 4 {
		t.Errorf("Expected value 4 with X=0, got %d", cost.ConvertedValue(0))
	}
	if cost.ConvertedValue(3) != 7 {
		t.Errorf("Expected value 7 with X=3, got %d", cost.ConvertedValue(3))
	}

	var nilCost *Cost
	if nilCost.ConvertedValue(5) != 0 {
		t.Errorf("Expected nil cost value 0, got %d", nilCost.ConvertedValue(5))
	}
}

func TestCostWithX(t *testing.T) {
	cost := MustParse("{X}{R}")
	fixed := cost.WithX(4)

	if fixed.X {
		t.Error("Expected X to be folded away")
	}
	if fixed.Generic != 4 {
		t.Errorf("Expected 4 generic after folding, got %d", fixed.Generic)
	}
	if !cost.X || cost.Generic != 0 {
		t.Error("Expected the original cost to be unchanged")
	}
}

func TestCostAddGeneric(t *testing.T) {
	cost := MustParse("{1}{U}")
	raised := cost.AddGeneric(2)

	if raised.Generic != 3 {
		t.Errorf("Expected 3 generic, got %d", raised.Generic)
	}
	if cost.Generic != 1 {
		t.Error("Expected the original cost to be unchanged")
	}
	if raised.AddGeneric(-5).Generic != 3 {
		t.Error("Expected negative amounts to be ignored")
	}
}

func TestCostString(t *testing.T) {
	cases := []string{"{1}{G}", "{2}{R}{R}", "{X}{B}", "{W}{U}{B}{R}{G}", ""}
	for _, in := range cases {
		if out := MustParse(in).String(); out != in {
			t.Errorf("Expected %q to round-trip, got %q", in, out)
		}
	}
}

func TestCostCopy(t *testing.T) {
	cost := MustParse("{2}{G}")
	cpy := cost.Copy()
	cpy.Colored[Green] = 5
	cpy.Generic = 9

	if cost.Colored[Green] != 1 || cost.Generic != 2 {
		t.Error("Expected copy mutation to leave the original alone")
	}

	var nilCost *Cost
	if nilCost.Copy() == nil {
		t.Error("Expected a nil cost to copy to a usable free cost")
	}
}
