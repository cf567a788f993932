// Package duel implements the session coordinator for two-player duels.
// It pairs connections into sessions, tracks each session's lifecycle
// (assembling, awaiting ready, playing) and relays gameplay payloads
// between the two slots without interpreting them. Clients run the game
// simulation themselves; the coordinator only synchronizes them with a
// shared seed and forwards their updates.
package duel

// ClientID uniquely identifies a connected client for the lifetime of
// its connection. The transport layer assigns it.
type ClientID string

// SessionMode describes how a session was formed.
type SessionMode string

const (
	// ModePrivate sessions are created explicitly and joined by code.
	ModePrivate SessionMode = "private"

	// ModeRandom sessions are created by the matchmaking queue.
	ModeRandom SessionMode = "random"
)

// Phase is the lifecycle phase of a session.
type Phase int

const (
	// PhaseAssembling means zero or one slots are filled.
	PhaseAssembling Phase = iota

	// PhaseAwaitingReady means both slots are filled but the match has
	// not started. Sessions return here after a match ends, which makes
	// an immediate rematch possible without a new session.
	PhaseAwaitingReady

	// PhasePlaying means a match is in progress. Relay events are only
	// forwarded in this phase.
	PhasePlaying
)

// String returns a human-readable name for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseAssembling:
		return "assembling"
	case PhaseAwaitingReady:
		return "awaiting-ready"
	case PhasePlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// ParticipantInfo records where a client currently sits. An entry exists
// for exactly as long as the client occupies a slot in a live session.
type ParticipantInfo struct {
	SessionID string
	Slot      int // 0 or 1
	Name      string
}

// Settings are the game parameters shared by both clients at match start.
// The coordinator does not interpret them; it merges overrides over
// defaults and hands the result to both slots together with the seed.
type Settings struct {
	ColorCount     int `json:"colorCount"`
	DropIntervalMs int `json:"dropIntervalMs"`
}

// DefaultSettings returns the stock game parameters.
func DefaultSettings() Settings {
	return Settings{
		ColorCount:     4,
		DropIntervalMs: 500,
	}
}

// SettingsOverride carries optional per-session overrides. Nil fields
// fall back to the defaults; the merge is shallow, key by key.
type SettingsOverride struct {
	ColorCount     *int `json:"colorCount,omitempty"`
	DropIntervalMs *int `json:"dropIntervalMs,omitempty"`
}

// Apply merges the override onto base and returns the result.
func (o *SettingsOverride) Apply(base Settings) Settings {
	if o == nil {
		return base
	}
	if o.ColorCount != nil {
		base.ColorCount = *o.ColorCount
	}
	if o.DropIntervalMs != nil {
		base.DropIntervalMs = *o.DropIntervalMs
	}
	return base
}
