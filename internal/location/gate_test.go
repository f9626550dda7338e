package location

import (
	"errors"
	"testing"
)

func TestSelectAndLockFromAllowList(t *testing.T) {
	var g Gate
	if g.State() != Unlocked {
		t.Fatalf("expected initial state unlocked, got %s", g.State())
	}
	if err := g.Select("A1", []string{"A1", "B2"}); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := g.Lock(); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if g.State() != Locked || g.Active() != "A1" {
		t.Fatalf("expected locked on A1, got %s %q", g.State(), g.Active())
	}
}

func TestLockRequiresActiveLocation(t *testing.T) {
	var g Gate
	if err := g.Lock(); !errors.Is(err, ErrEmptyLocation) {
		t.Fatalf("expected ErrEmptyLocation, got %v", err)
	}
	if g.Locked() {
		t.Fatal("gate must stay unlocked without a location")
	}
	if _, err := g.RequireLocked(); !errors.Is(err, ErrNotLocked) {
		t.Fatalf("expected ErrNotLocked, got %v", err)
	}
}

func TestSetActiveNormalizes(t *testing.T) {
	var g Gate
	if err := g.SetActive("  zone-north-parking-7 "); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if g.Active() != "ZONE-NORTH-PARK" {
		t.Fatalf("unexpected active location %q", g.Active())
	}
	if err := g.SetActive("   "); !errors.Is(err, ErrEmptyLocation) {
		t.Fatalf("expected ErrEmptyLocation, got %v", err)
	}
	if g.Active() != "ZONE-NORTH-PARK" {
		t.Fatal("rejected update must not clear the location")
	}
}

func TestSelectRejectsUnknownCode(t *testing.T) {
	var g Gate
	if err := g.Select("C3", []string{"A1"}); !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("expected ErrNotAllowed, got %v", err)
	}
	if err := g.Select("a1", []string{"A1"}); err != nil {
		t.Fatalf("case-insensitive selection failed: %v", err)
	}
	if err := g.Select("free", nil); err != nil {
		t.Fatalf("empty allow-list should accept any code: %v", err)
	}
}

func TestChangeLocationKeepsActive(t *testing.T) {
	g := NewGate("b2", true)
	if !g.Locked() {
		t.Fatal("expected restored gate to be locked")
	}
	if err := g.SetActive("C3"); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked while locked, got %v", err)
	}
	g.Unlock()
	if g.Locked() || g.Active() != "B2" {
		t.Fatalf("unlock should keep location, got locked=%v active=%q", g.Locked(), g.Active())
	}
}

func TestNewGateDropsLockWithoutLocation(t *testing.T) {
	if g := NewGate("", true); g.Locked() {
		t.Fatal("gate restored without location must not be locked")
	}
}
