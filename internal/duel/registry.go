package duel

import (
	"crypto/rand"
	"strings"
	"time"
)

// codeAlphabet holds the 32 symbols session codes are drawn from.
// Visually ambiguous characters (0/O, 1/I) are excluded so codes can be
// read aloud. 32 symbols divide 256 evenly, so a random byte mod len
// is uniform.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// SessionRegistry owns all live sessions, keyed by join code. It is not
// safe for concurrent use on its own; the coordinator serializes access
// behind its lock, including the janitor sweep.
type SessionRegistry struct {
	sessions    map[string]*Session
	codeLength  int
	codeRetries int
}

// NewSessionRegistry creates a registry generating codes of the given
// length with a bounded retry budget per attempt.
func NewSessionRegistry(codeLength, codeRetries int) *SessionRegistry {
	if codeLength < 1 {
		codeLength = 4
	}
	if codeRetries < 1 {
		codeRetries = 2048
	}
	return &SessionRegistry{
		sessions:    make(map[string]*Session),
		codeLength:  codeLength,
		codeRetries: codeRetries,
	}
}

// Create generates a unique code, merges settings overrides over the
// given defaults and stores the new session.
func (r *SessionRegistry) Create(mode SessionMode, defaults Settings, override *SettingsOverride) *Session {
	sess := &Session{
		id:        r.uniqueCode(),
		mode:      mode,
		phase:     PhaseAssembling,
		settings:  override.Apply(defaults),
		createdAt: time.Now(),
	}
	r.sessions[sess.id] = sess
	return sess
}

// Get looks up a session by code. Lookup is case-insensitive; codes are
// normalized to uppercase.
func (r *SessionRegistry) Get(id string) (*Session, bool) {
	s, ok := r.sessions[strings.ToUpper(id)]
	return s, ok
}

// Delete removes a session. Deleting an unknown code is a no-op.
func (r *SessionRegistry) Delete(id string) {
	delete(r.sessions, strings.ToUpper(id))
}

// Count returns the number of live sessions.
func (r *SessionRegistry) Count() int {
	return len(r.sessions)
}

// Sweep deletes every session that is empty or older than ttl and
// returns the removed sessions. Peers were already notified when their
// opponent left, so the sweep itself sends nothing. Idempotent.
func (r *SessionRegistry) Sweep(now time.Time, ttl time.Duration) []*Session {
	var removed []*Session
	for id, sess := range r.sessions {
		if sess.isEmpty() || now.Sub(sess.createdAt) > ttl {
			delete(r.sessions, id)
			removed = append(removed, sess)
		}
	}
	return removed
}

// uniqueCode draws codes until one misses the live set. The retry loop
// is bounded; when the budget runs out the code is widened by one
// character and the budget renewed. Collision probability is about
// n/32^4 at the base length, so widening only matters at pathological
// session counts.
func (r *SessionRegistry) uniqueCode() string {
	for length := r.codeLength; ; length++ {
		for attempt := 0; attempt < r.codeRetries; attempt++ {
			code := randomCode(length)
			if _, taken := r.sessions[code]; !taken {
				return code
			}
		}
	}
}

// randomCode draws n characters independently and uniformly from the
// code alphabet.
func randomCode(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// Fallback to timestamp-derived bytes
		nano := time.Now().UnixNano()
		for i := range b {
			b[i] = byte(nano >> (uint(i%8) * 8))
		}
	}
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b)
}
