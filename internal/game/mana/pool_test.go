package mana

import (
	"testing"
)

func TestPoolAdd(t *testing.T) {
	pool := NewPool()

	pool.Add(White, 2)
	if pool.Get(White) != 2 {
		t.Errorf("Expected 2 white mana, got %d", pool.Get(White))
	}

	pool.Add(Blue, 1)
	if pool.Get(Blue) != 1 {
		t.Errorf("Expected 1 blue mana, got %d", pool.Get(Blue))
	}

	pool.Add(Blue, -3)
	if pool.Get(Blue) != 1 {
		t.Errorf("Expected negative adds to be ignored, got %d", pool.Get(Blue))
	}

	if pool.Total() != 3 {
		t.Errorf("Expected total 3 mana, got %d", pool.Total())
	}
}

func TestPoolEmpty(t *testing.T) {
	pool := NewPool()
	pool.Add(Red, 3)
	pool.Add(Green, 1)

	pool.Empty()
	if pool.Total() != 0 {
		t.Errorf("Expected pool to be empty, got %d", pool.Total())
	}
}

func TestPoolCanPay(t *testing.T) {
	pool := NewPool()
	pool.Add(Green, 2)
	pool.Add(Red, 1)

	if !pool.CanPay(MustParse("{1}{G}")) {
		t.Error("Expected to cover {1}{G} with GGR")
	}
	if !pool.CanPay(MustParse("{2}{G}")) {
		t.Error("Expected to cover {2}{G} with GGR")
	}
	if pool.CanPay(MustParse("{3}{G}")) {
		t.Error("Expected {3}{G} to exceed the pool")
	}
	if pool.CanPay(MustParse("{R}{R}")) {
		t.Error("Expected colored symbols to require matching mana")
	}
	if !pool.CanPay(nil) {
		t.Error("Expected a nil cost to always be payable")
	}
}

func TestPoolPay(t *testing.T) {
	pool := NewPool()
	pool.Add(Green, 2)
	pool.Add(Red, 1)

	if !pool.Pay(MustParse("{1}{G}")) {
		t.Fatal("Expected payment to succeed")
	}
	if pool.Total() != 1 {
		t.Errorf("Expected 1 mana remaining, got %d", pool.Total())
	}

	if pool.Pay(MustParse("{G}{G}")) {
		t.Fatal("Expected payment to fail when colored mana is short")
	}
	if pool.Total() != 1 {
		t.Errorf("Expected a failed payment to leave the pool untouched, got %d", pool.Total())
	}
}

func TestPoolPayGenericOrder(t *testing.T) {
	pool := NewPool()
	pool.Add(White, 1)
	pool.Add(Green, 1)
	pool.Add(Colorless, 1)

	// Generic drains WUBRG first, colorless last.
	if !pool.Pay(MustParse("{2}")) {
		t.Fatal("Expected payment to succeed")
	}
	if pool.Get(White) != 0 {
		t.Errorf("Expected white to be consumed first, got %d", pool.Get(White))
	}
	if pool.Get(Green) != 0 {
		t.Errorf("Expected green to be consumed, got %d", pool.Get(Green))
	}
	if pool.Get(Colorless) != 1 {
		t.Errorf("Expected colorless to be kept, got %d", pool.Get(Colorless))
	}
}

func TestPoolSnapshot(t *testing.T) {
	pool := NewPool()
	pool.Add(Black, 2)
	pool.Add(Red, 1)
	pool.Pay(MustParse("{R}"))

	snap := pool.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("Expected zero entries to be omitted, got %v", snap)
	}
	if snap[Black] != 2 {
		t.Errorf("Expected 2 black in snapshot, got %d", snap[Black])
	}

	snap[Black] = 99
	if pool.Get(Black) != 2 {
		t.Errorf("Expected snapshot mutation to leave the pool alone, got %d", pool.Get(Black))
	}
}
