package duel

import "testing"

func TestAddPlayerFillsSlotZeroFirst(t *testing.T) {
	s := &Session{id: "TEST", phase: PhaseAssembling}

	slot, ok := s.addPlayer(newClient("a"), "Alice")
	if !ok || slot != 0 {
		t.Fatalf("first player got slot %d", slot)
	}
	if s.phase != PhaseAssembling {
		t.Errorf("half-full session must still be assembling")
	}

	slot, ok = s.addPlayer(newClient("b"), "Bob")
	if !ok || slot != 1 {
		t.Fatalf("second player got slot %d", slot)
	}
	if s.phase != PhaseAwaitingReady {
		t.Errorf("full session must move to awaiting-ready")
	}

	if _, ok := s.addPlayer(newClient("c"), "Carol"); ok {
		t.Errorf("third player must be refused")
	}
}

func TestAddPlayerPlaceholderName(t *testing.T) {
	s := &Session{id: "TEST"}
	s.addPlayer(newClient("a"), "")
	s.addPlayer(newClient("b"), "")

	if s.names[0] != "Player 1" || s.names[1] != "Player 2" {
		t.Errorf("unexpected placeholder names: %v", s.names)
	}
}

func TestRemovePlayerClearsSlotState(t *testing.T) {
	s := &Session{id: "TEST"}
	a := newClient("a")
	b := newClient("b")
	s.addPlayer(a, "Alice")
	s.addPlayer(b, "Bob")
	s.ready = [2]bool{true, true}
	s.phase = PhasePlaying

	slot, ok := s.removePlayer(a)
	if !ok || slot != 0 {
		t.Fatalf("expected slot 0 vacated, got %d", slot)
	}
	if s.slots[0] != nil || s.names[0] != "" {
		t.Errorf("slot state not cleared")
	}
	if s.ready != [2]bool{false, false} {
		t.Errorf("ready cycle must be voided, got %v", s.ready)
	}
	if s.phase != PhaseAssembling {
		t.Errorf("one-sided session must drop back to assembling, got %v", s.phase)
	}
	if s.isEmpty() {
		t.Errorf("one occupant remains")
	}

	if _, ok := s.removePlayer(a); ok {
		t.Errorf("removing an absent player must fail")
	}
}

func TestGetOpponent(t *testing.T) {
	s := &Session{id: "TEST"}
	a := newClient("a")
	b := newClient("b")
	s.addPlayer(a, "Alice")

	if _, ok := s.getOpponent(a); ok {
		t.Errorf("lone occupant has no opponent")
	}

	s.addPlayer(b, "Bob")
	opp, ok := s.getOpponent(a)
	if !ok || opp.ID() != b.ID() {
		t.Fatalf("wrong opponent for a")
	}
	opp, ok = s.getOpponent(b)
	if !ok || opp.ID() != a.ID() {
		t.Fatalf("wrong opponent for b")
	}

	if _, ok := s.getOpponent(newClient("c")); ok {
		t.Errorf("stranger has no opponent")
	}
}

func TestMembershipInSlotOrder(t *testing.T) {
	s := &Session{id: "TEST"}
	a := newClient("a")
	s.addPlayer(a, "Alice")
	s.addPlayer(newClient("b"), "Bob")
	s.removePlayer(a)

	names, count := s.membership()
	if count != 1 || len(names) != 1 || names[0] != "Bob" {
		t.Errorf("unexpected membership: %v (%d)", names, count)
	}
}

func TestSettingsOverrideApply(t *testing.T) {
	base := Settings{ColorCount: 4, DropIntervalMs: 500}

	var nilOverride *SettingsOverride
	if got := nilOverride.Apply(base); got != base {
		t.Errorf("nil override must return the base: %+v", got)
	}

	colors := 6
	got := (&SettingsOverride{ColorCount: &colors}).Apply(base)
	if got.ColorCount != 6 || got.DropIntervalMs != 500 {
		t.Errorf("partial override wrong: %+v", got)
	}

	interval := 300
	got = (&SettingsOverride{ColorCount: &colors, DropIntervalMs: &interval}).Apply(base)
	if got.ColorCount != 6 || got.DropIntervalMs != 300 {
		t.Errorf("full override wrong: %+v", got)
	}
}
