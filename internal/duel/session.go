package duel

import (
	"fmt"
	"time"
)

// Session is the server-side record of one two-player contest. It owns
// exactly two slots; slot indexes are stable for the lifetime of an
// occupant within the session. The registry is the sole owner of
// session lifetimes; slots may empty out but the Session object
// persists until explicitly deleted.
type Session struct {
	id       string
	mode     SessionMode
	slots    [2]ClientHandle
	names    [2]string
	ready    [2]bool
	phase    Phase
	settings Settings
	seed     int // seed of the current or most recent match

	createdAt time.Time
	startedAt time.Time // last match start, zero before the first
}

// ID returns the session's join code.
func (s *Session) ID() string {
	return s.id
}

// Mode returns how the session was formed.
func (s *Session) Mode() SessionMode {
	return s.mode
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	return s.phase
}

// Settings returns the merged game settings.
func (s *Session) Settings() Settings {
	return s.settings
}

// addPlayer assigns the first free slot, 0 before 1. An empty name gets
// a slot-numbered placeholder. Returns false if both slots are taken;
// callers must check fullness before surfacing errors.
func (s *Session) addPlayer(c ClientHandle, name string) (int, bool) {
	for slot := 0; slot < 2; slot++ {
		if s.slots[slot] != nil {
			continue
		}
		if name == "" {
			name = fmt.Sprintf("Player %d", slot+1)
		}
		s.slots[slot] = c
		s.names[slot] = name
		if s.isFull() && s.phase == PhaseAssembling {
			s.phase = PhaseAwaitingReady
		}
		return slot, true
	}
	return 0, false
}

// removePlayer clears the client's slot and voids the current ready
// cycle: a one-sided session drops back to assembling until the slot
// refills, so a mid-match leave cannot strand the session in the
// playing phase. It does not delete the session; that is the registry's
// job. Returns the vacated slot.
func (s *Session) removePlayer(c ClientHandle) (int, bool) {
	slot, ok := s.slotOf(c)
	if !ok {
		return 0, false
	}
	s.slots[slot] = nil
	s.names[slot] = ""
	s.ready = [2]bool{}
	s.phase = PhaseAssembling
	return slot, true
}

// slotOf returns the slot the client occupies.
func (s *Session) slotOf(c ClientHandle) (int, bool) {
	for slot := 0; slot < 2; slot++ {
		if s.slots[slot] != nil && s.slots[slot].ID() == c.ID() {
			return slot, true
		}
	}
	return 0, false
}

// getOpponent returns the other slot's occupant. Absent when the caller
// is not seated or the opposing slot is empty.
func (s *Session) getOpponent(c ClientHandle) (ClientHandle, bool) {
	slot, ok := s.slotOf(c)
	if !ok {
		return nil, false
	}
	opp := s.slots[1-slot]
	if opp == nil {
		return nil, false
	}
	return opp, true
}

// bothReady reports whether both ready flags are set.
func (s *Session) bothReady() bool {
	return s.ready[0] && s.ready[1]
}

// isFull reports whether both slots are occupied.
func (s *Session) isFull() bool {
	return s.slots[0] != nil && s.slots[1] != nil
}

// isEmpty reports whether both slots are vacant.
func (s *Session) isEmpty() bool {
	return s.slots[0] == nil && s.slots[1] == nil
}

// membership returns the occupied display names in slot order.
func (s *Session) membership() ([]string, int) {
	names := make([]string, 0, 2)
	count := 0
	for slot := 0; slot < 2; slot++ {
		if s.slots[slot] != nil {
			names = append(names, s.names[slot])
			count++
		}
	}
	return names, count
}

// broadcast sends an event to every occupied slot. Both sends happen in
// one handler invocation, so peers observe events in the same order.
func (s *Session) broadcast(evt Event) {
	for slot := 0; slot < 2; slot++ {
		if s.slots[slot] != nil {
			s.slots[slot].Send(evt)
		}
	}
}
