package duel

import "encoding/json"

// Event is an outbound notification from the coordinator to a client.
type Event interface {
	event()
}

// SessionCreatedEvent confirms creation of a private session to its host.
type SessionCreatedEvent struct {
	SessionID string
	Slot      int
}

func (SessionCreatedEvent) event() {}

// JoinErrorEvent reports a failed create or join attempt.
type JoinErrorEvent struct {
	Message string
}

func (JoinErrorEvent) event() {}

// SessionJoinedEvent confirms a successful join to the joiner.
type SessionJoinedEvent struct {
	SessionID string
	Slot      int
}

func (SessionJoinedEvent) event() {}

// MembershipUpdateEvent is sent to every occupant whenever a slot fills
// or empties. Names holds the current display names in slot order.
type MembershipUpdateEvent struct {
	Names []string
	Count int
}

func (MembershipUpdateEvent) event() {}

// MatchFoundEvent tells a matchmade client which session and slot it got.
type MatchFoundEvent struct {
	SessionID string
	Slot      int
}

func (MatchFoundEvent) event() {}

// WaitingEvent tells a client it is the sole matchmaking waiter.
type WaitingEvent struct {
	Message string
}

func (WaitingEvent) event() {}

// MatchCancelledEvent confirms a cancelled matchmaking wait.
type MatchCancelledEvent struct{}

func (MatchCancelledEvent) event() {}

// ReadyVectorEvent broadcasts the current ready flags in slot order.
type ReadyVectorEvent struct {
	Ready [2]bool
}

func (ReadyVectorEvent) event() {}

// MatchStartEvent starts a match. The seed is generated once and sent
// bit-identical to both slots so their simulations stay in sync.
type MatchStartEvent struct {
	Seed     int
	Settings Settings
}

func (MatchStartEvent) event() {}

// OpponentFieldEvent carries the opponent's field snapshot, untouched.
type OpponentFieldEvent struct {
	Field json.RawMessage
	Score int
	Chain int
	Level int
}

func (OpponentFieldEvent) event() {}

// ReceiveGarbageEvent carries garbage lines sent by the opponent.
type ReceiveGarbageEvent struct {
	Lines int
}

func (ReceiveGarbageEvent) event() {}

// MatchEndEvent announces the match result to both slots.
type MatchEndEvent struct {
	WinnerSlot int
	WinnerName string
	LoserName  string
}

func (MatchEndEvent) event() {}

// OpponentLeftEvent notifies the remaining occupant that its peer left.
type OpponentLeftEvent struct {
	Message string
}

func (OpponentLeftEvent) event() {}

// Message is an inbound request from a client to the coordinator.
type Message interface {
	message()
}

// CreateSessionMsg requests a new private session.
type CreateSessionMsg struct {
	Client   ClientHandle
	Name     string
	Settings *SettingsOverride
}

func (CreateSessionMsg) message() {}

// JoinSessionMsg requests joining an existing session by code.
type JoinSessionMsg struct {
	Client    ClientHandle
	SessionID string
	Name      string
}

func (JoinSessionMsg) message() {}

// FindMatchMsg requests pairing with a random opponent.
type FindMatchMsg struct {
	Client ClientHandle
	Name   string
}

func (FindMatchMsg) message() {}

// CancelMatchMsg cancels a pending matchmaking wait.
type CancelMatchMsg struct {
	Client ClientHandle
}

func (CancelMatchMsg) message() {}

// MarkReadyMsg marks the caller's slot as ready.
type MarkReadyMsg struct {
	Client ClientHandle
}

func (MarkReadyMsg) message() {}

// FieldUpdateMsg relays the caller's field snapshot to its opponent.
type FieldUpdateMsg struct {
	Client ClientHandle
	Field  json.RawMessage
	Score  int
	Chain  int
	Level  int
}

func (FieldUpdateMsg) message() {}

// SendGarbageMsg relays garbage lines to the caller's opponent.
type SendGarbageMsg struct {
	Client ClientHandle
	Lines  int
}

func (SendGarbageMsg) message() {}

// ReportLossMsg reports that the caller topped out. Only the first
// report per match is honored.
type ReportLossMsg struct {
	Client ClientHandle
}

func (ReportLossMsg) message() {}

// RematchMsg requests a rematch; mechanically identical to MarkReadyMsg.
type RematchMsg struct {
	Client ClientHandle
}

func (RematchMsg) message() {}

// DisconnectMsg is sent by the transport layer when a connection closes.
type DisconnectMsg struct {
	Client ClientHandle
}

func (DisconnectMsg) message() {}
