package duel

import (
	"strings"
	"testing"
	"time"
)

func TestRandomCodeAlphabet(t *testing.T) {
	for i := 0; i < 500; i++ {
		code := randomCode(4)
		if len(code) != 4 {
			t.Fatalf("expected length 4, got %q", code)
		}
		for _, r := range code {
			if !strings.ContainsRune(codeAlphabet, r) {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
		}
		if code != strings.ToUpper(code) {
			t.Fatalf("code %q is not uppercase", code)
		}
	}
}

func TestCreateAssignsUniqueCodes(t *testing.T) {
	r := NewSessionRegistry(4, 2048)
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		sess := r.Create(ModePrivate, DefaultSettings(), nil)
		if seen[sess.id] {
			t.Fatalf("duplicate code %q", sess.id)
		}
		seen[sess.id] = true
	}
	if r.Count() != 200 {
		t.Errorf("expected 200 sessions, got %d", r.Count())
	}
}

func TestUniqueCodeWidensWhenExhausted(t *testing.T) {
	// With a 1-char code every symbol is exhausted after 32 sessions, so
	// the 33rd must fall through to a 2-char code.
	r := NewSessionRegistry(1, 2048)
	for i := 0; i < 32+1; i++ {
		r.Create(ModePrivate, DefaultSettings(), nil)
	}

	short, long := 0, 0
	for id := range r.sessions {
		switch len(id) {
		case 1:
			short++
		case 2:
			long++
		default:
			t.Fatalf("unexpected code length for %q", id)
		}
	}
	if short != 32 || long != 1 {
		t.Errorf("expected 32 short and 1 widened code, got %d and %d", short, long)
	}
}

func TestGetIsCaseInsensitive(t *testing.T) {
	r := NewSessionRegistry(4, 2048)
	sess := r.Create(ModePrivate, DefaultSettings(), nil)

	got, ok := r.Get(strings.ToLower(sess.id))
	if !ok || got != sess {
		t.Errorf("lowercase lookup of %q failed", sess.id)
	}
	if _, ok := r.Get("ZZZZZZ"); ok {
		t.Errorf("unknown code must miss")
	}
}

func TestDeleteUnknownIsNoop(t *testing.T) {
	r := NewSessionRegistry(4, 2048)
	r.Delete("QQQQ")
	if r.Count() != 0 {
		t.Errorf("expected empty registry")
	}
}

func TestSweepRemovesEmptyAndExpired(t *testing.T) {
	r := NewSessionRegistry(4, 2048)
	ttl := 30 * time.Minute
	now := time.Now()

	empty := r.Create(ModePrivate, DefaultSettings(), nil)

	occupied := r.Create(ModePrivate, DefaultSettings(), nil)
	occupied.addPlayer(newClient("a"), "A")

	expired := r.Create(ModeRandom, DefaultSettings(), nil)
	expired.addPlayer(newClient("b"), "B")
	expired.createdAt = now.Add(-ttl - time.Minute)

	removed := r.Sweep(now, ttl)

	if len(removed) != 2 {
		t.Fatalf("expected 2 removed, got %d", len(removed))
	}
	got := map[string]bool{}
	for _, s := range removed {
		got[s.id] = true
	}
	if !got[empty.id] || !got[expired.id] {
		t.Errorf("wrong sessions removed: %v", got)
	}
	if _, ok := r.Get(occupied.id); !ok {
		t.Errorf("fresh occupied session must survive")
	}

	// A second pass finds nothing new.
	if again := r.Sweep(now, ttl); len(again) != 0 {
		t.Errorf("sweep is not idempotent, removed %d more", len(again))
	}
}
