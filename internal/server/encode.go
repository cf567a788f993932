package server

import (
	"fmt"

	"github.com/vovakirdan/blockduel/internal/duel"
	"github.com/vovakirdan/blockduel/internal/protocol"
)

// encodeEvent maps a coordinator event to its wire frame.
func encodeEvent(evt duel.Event) ([]byte, error) {
	switch e := evt.(type) {
	case duel.SessionCreatedEvent:
		return protocol.Encode(protocol.MsgSessionCreated, protocol.SessionCreatedPayload{
			SessionID: e.SessionID,
			Slot:      e.Slot,
		})
	case duel.JoinErrorEvent:
		return protocol.Encode(protocol.MsgJoinError, protocol.ErrorPayload{Message: e.Message})
	case duel.SessionJoinedEvent:
		return protocol.Encode(protocol.MsgSessionJoined, protocol.SessionJoinedPayload{
			SessionID: e.SessionID,
			Slot:      e.Slot,
		})
	case duel.MembershipUpdateEvent:
		return protocol.Encode(protocol.MsgMembershipUpdate, protocol.MembershipUpdatePayload{
			Names: e.Names,
			Count: e.Count,
		})
	case duel.MatchFoundEvent:
		return protocol.Encode(protocol.MsgMatchFound, protocol.MatchFoundPayload{
			SessionID: e.SessionID,
			Slot:      e.Slot,
		})
	case duel.WaitingEvent:
		return protocol.Encode(protocol.MsgWaiting, protocol.WaitingPayload{Message: e.Message})
	case duel.MatchCancelledEvent:
		return protocol.Encode(protocol.MsgMatchCancelled, nil)
	case duel.ReadyVectorEvent:
		return protocol.Encode(protocol.MsgReadyVector, protocol.ReadyVectorPayload{
			Ready: e.Ready[:],
		})
	case duel.MatchStartEvent:
		return protocol.Encode(protocol.MsgMatchStart, protocol.MatchStartPayload{
			Seed: e.Seed,
			Settings: protocol.SettingsPayload{
				ColorCount:     e.Settings.ColorCount,
				DropIntervalMs: e.Settings.DropIntervalMs,
			},
		})
	case duel.OpponentFieldEvent:
		return protocol.Encode(protocol.MsgOpponentField, protocol.OpponentFieldPayload{
			Field: e.Field,
			Score: e.Score,
			Chain: e.Chain,
			Level: e.Level,
		})
	case duel.ReceiveGarbageEvent:
		return protocol.Encode(protocol.MsgReceiveGarbage, protocol.ReceiveGarbagePayload{Lines: e.Lines})
	case duel.MatchEndEvent:
		return protocol.Encode(protocol.MsgMatchEnd, protocol.MatchEndPayload{
			WinnerSlot: e.WinnerSlot,
			WinnerName: e.WinnerName,
			LoserName:  e.LoserName,
		})
	case duel.OpponentLeftEvent:
		return protocol.Encode(protocol.MsgOpponentLeft, protocol.OpponentLeftPayload{Message: e.Message})
	default:
		return nil, fmt.Errorf("server: unhandled event type %T", evt)
	}
}
