// Package protocol defines the JSON wire schema between clients and the
// coordinator. Every message is an envelope tagged with an event name;
// payloads are explicit structs with required fields validated on
// decode, so malformed messages are rejected instead of silently read
// as zero values.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Client → server event names.
const (
	MsgCreateSession = "createSession"
	MsgJoinSession   = "joinSession"
	MsgFindMatch     = "findMatch"
	MsgCancelMatch   = "cancelMatch"
	MsgMarkReady     = "markReady"
	MsgFieldUpdate   = "fieldUpdate"
	MsgSendGarbage   = "sendGarbage"
	MsgReportLoss    = "reportLoss"
	MsgRematch       = "rematch"
)

// Server → client event names.
const (
	MsgSessionCreated   = "sessionCreated"
	MsgJoinError        = "joinError"
	MsgSessionJoined    = "sessionJoined"
	MsgMembershipUpdate = "membershipUpdate"
	MsgMatchFound       = "matchFound"
	MsgWaiting          = "waiting"
	MsgMatchCancelled   = "matchCancelled"
	MsgReadyVector      = "readyVector"
	MsgMatchStart       = "matchStart"
	MsgOpponentField    = "opponentField"
	MsgReceiveGarbage   = "receiveGarbage"
	MsgMatchEnd         = "matchEnd"
	MsgOpponentLeft     = "opponentLeft"
)

// Envelope wraps every message on the wire.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// DecodeEnvelope parses a raw frame into an envelope.
func DecodeEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, fmt.Errorf("protocol: malformed envelope: %w", err)
	}
	if env.Type == "" {
		return env, fmt.Errorf("protocol: envelope missing type")
	}
	return env, nil
}

// Validator is implemented by inbound payloads with required fields.
type Validator interface {
	Validate() error
}

// DecodePayload parses the envelope payload into v and validates it.
func (e Envelope) DecodePayload(v Validator) error {
	if len(e.Payload) > 0 {
		if err := json.Unmarshal(e.Payload, v); err != nil {
			return fmt.Errorf("protocol: malformed %s payload: %w", e.Type, err)
		}
	}
	return v.Validate()
}

// Encode builds a wire frame for the given event name and payload.
// A nil payload produces an envelope with no payload field.
func Encode(typ string, payload any) ([]byte, error) {
	env := Envelope{Type: typ}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("protocol: cannot marshal %s payload: %w", typ, err)
		}
		env.Payload = raw
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("protocol: cannot marshal %s envelope: %w", typ, err)
	}
	return data, nil
}

// SettingsOverridePayload carries optional settings overrides.
// Absent keys fall back to server defaults; the merge is shallow.
type SettingsOverridePayload struct {
	ColorCount     *int `json:"colorCount,omitempty"`
	DropIntervalMs *int `json:"dropIntervalMs,omitempty"`
}

// SettingsPayload carries the merged settings sent at match start.
type SettingsPayload struct {
	ColorCount     int `json:"colorCount"`
	DropIntervalMs int `json:"dropIntervalMs"`
}

// CreateSessionPayload requests a new private session.
// name is optional; the server substitutes a slot-numbered placeholder.
type CreateSessionPayload struct {
	Name     string                   `json:"name"`
	Settings *SettingsOverridePayload `json:"settings,omitempty"`
}

// Validate implements Validator.
func (p *CreateSessionPayload) Validate() error { return nil }

// JoinSessionPayload requests joining a session by code.
type JoinSessionPayload struct {
	SessionID string `json:"sessionId"`
	Name      string `json:"name"`
}

// Validate implements Validator.
func (p *JoinSessionPayload) Validate() error {
	if p.SessionID == "" {
		return fmt.Errorf("protocol: joinSession requires sessionId")
	}
	return nil
}

// FindMatchPayload requests random pairing.
type FindMatchPayload struct {
	Name string `json:"name"`
}

// Validate implements Validator.
func (p *FindMatchPayload) Validate() error { return nil }

// FieldUpdatePayload carries the sender's field snapshot. The field is
// opaque to the server and forwarded verbatim.
type FieldUpdatePayload struct {
	Field json.RawMessage `json:"field"`
	Score int             `json:"score"`
	Chain int             `json:"chain"`
	Level int             `json:"level"`
}

// Validate implements Validator.
func (p *FieldUpdatePayload) Validate() error {
	if len(p.Field) == 0 {
		return fmt.Errorf("protocol: fieldUpdate requires field")
	}
	return nil
}

// SendGarbagePayload carries garbage lines for the opponent.
type SendGarbagePayload struct {
	Lines *int `json:"lines"`
}

// Validate implements Validator.
func (p *SendGarbagePayload) Validate() error {
	if p.Lines == nil {
		return fmt.Errorf("protocol: sendGarbage requires lines")
	}
	if *p.Lines < 1 {
		return fmt.Errorf("protocol: sendGarbage lines must be positive")
	}
	return nil
}

// SessionCreatedPayload confirms a created session.
type SessionCreatedPayload struct {
	SessionID string `json:"sessionId"`
	Slot      int    `json:"slot"`
}

// SessionJoinedPayload confirms a join.
type SessionJoinedPayload struct {
	SessionID string `json:"sessionId"`
	Slot      int    `json:"slot"`
}

// ErrorPayload carries a user-facing error message.
type ErrorPayload struct {
	Message string `json:"message"`
}

// MembershipUpdatePayload lists current occupants.
type MembershipUpdatePayload struct {
	Names []string `json:"names"`
	Count int      `json:"count"`
}

// MatchFoundPayload tells a matchmade client its session and slot.
type MatchFoundPayload struct {
	SessionID string `json:"sessionId"`
	Slot      int    `json:"slot"`
}

// WaitingPayload tells a client it is queued.
type WaitingPayload struct {
	Message string `json:"message"`
}

// ReadyVectorPayload broadcasts ready flags in slot order.
type ReadyVectorPayload struct {
	Ready []bool `json:"ready"`
}

// MatchStartPayload starts a match with the shared seed and settings.
type MatchStartPayload struct {
	Seed     int             `json:"seed"`
	Settings SettingsPayload `json:"settings"`
}

// OpponentFieldPayload forwards an opponent's field snapshot.
type OpponentFieldPayload struct {
	Field json.RawMessage `json:"field"`
	Score int             `json:"score"`
	Chain int             `json:"chain"`
	Level int             `json:"level"`
}

// ReceiveGarbagePayload forwards garbage lines.
type ReceiveGarbagePayload struct {
	Lines int `json:"lines"`
}

// MatchEndPayload announces the result of a match.
type MatchEndPayload struct {
	WinnerSlot int    `json:"winnerSlot"`
	WinnerName string `json:"winnerName"`
	LoserName  string `json:"loserName"`
}

// OpponentLeftPayload notifies the remaining occupant.
type OpponentLeftPayload struct {
	Message string `json:"message"`
}
