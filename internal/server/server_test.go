package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/blockduel/internal/duel"
	"github.com/vovakirdan/blockduel/internal/protocol"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	coord := duel.NewCoordinator(duel.DefaultConfig(), nil)
	coord.Start()
	t.Cleanup(coord.Stop)

	srv := New(Config{Addr: ":0"}, coord, log.New(io.Discard))
	ts := httptest.NewServer(srv.http.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	raw, err := protocol.Encode(typ, payload)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) protocol.Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	env, err := protocol.DecodeEnvelope(raw)
	if err != nil {
		t.Fatalf("server sent malformed frame: %v", err)
	}
	return env
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestWebsocketDuelFlow(t *testing.T) {
	ts := newTestServer(t)

	host := dialWS(t, ts)
	sendFrame(t, host, protocol.MsgCreateSession, protocol.CreateSessionPayload{Name: "Alice"})

	env := readFrame(t, host)
	if env.Type != protocol.MsgSessionCreated {
		t.Fatalf("expected sessionCreated, got %q", env.Type)
	}
	var created protocol.SessionCreatedPayload
	if err := json.Unmarshal(env.Payload, &created); err != nil {
		t.Fatalf("bad payload: %v", err)
	}
	if created.Slot != 0 || len(created.SessionID) != 4 {
		t.Errorf("unexpected session: %+v", created)
	}
	if env = readFrame(t, host); env.Type != protocol.MsgMembershipUpdate {
		t.Fatalf("expected membershipUpdate, got %q", env.Type)
	}

	joiner := dialWS(t, ts)
	sendFrame(t, joiner, protocol.MsgJoinSession, protocol.JoinSessionPayload{
		SessionID: created.SessionID,
		Name:      "Bob",
	})
	if env = readFrame(t, joiner); env.Type != protocol.MsgSessionJoined {
		t.Fatalf("expected sessionJoined, got %q", env.Type)
	}
	if env = readFrame(t, joiner); env.Type != protocol.MsgMembershipUpdate {
		t.Fatalf("expected membershipUpdate, got %q", env.Type)
	}
	if env = readFrame(t, host); env.Type != protocol.MsgMembershipUpdate {
		t.Fatalf("expected membershipUpdate for host, got %q", env.Type)
	}

	sendFrame(t, host, protocol.MsgMarkReady, nil)
	sendFrame(t, joiner, protocol.MsgMarkReady, nil)

	// Each side sees two ready vectors then the match start.
	for _, conn := range []*websocket.Conn{host, joiner} {
		var start *protocol.MatchStartPayload
		for i := 0; i < 3; i++ {
			env = readFrame(t, conn)
			if env.Type == protocol.MsgMatchStart {
				var p protocol.MatchStartPayload
				if err := json.Unmarshal(env.Payload, &p); err != nil {
					t.Fatalf("bad matchStart payload: %v", err)
				}
				start = &p
				break
			}
			if env.Type != protocol.MsgReadyVector {
				t.Fatalf("unexpected frame %q", env.Type)
			}
		}
		if start == nil {
			t.Fatalf("no matchStart observed")
		}
		if start.Settings.ColorCount != 4 || start.Settings.DropIntervalMs != 500 {
			t.Errorf("unexpected settings: %+v", start.Settings)
		}
	}

	// Field updates are relayed verbatim to the peer only.
	sendFrame(t, host, protocol.MsgFieldUpdate, protocol.FieldUpdatePayload{
		Field: json.RawMessage(`[[1,0],[0,2]]`),
		Score: 700,
	})
	env = readFrame(t, joiner)
	if env.Type != protocol.MsgOpponentField {
		t.Fatalf("expected opponentField, got %q", env.Type)
	}
	var field protocol.OpponentFieldPayload
	if err := json.Unmarshal(env.Payload, &field); err != nil {
		t.Fatalf("bad payload: %v", err)
	}
	if string(field.Field) != "[[1,0],[0,2]]" || field.Score != 700 {
		t.Errorf("relay mangled the payload: %+v", field)
	}

	sendFrame(t, host, protocol.MsgReportLoss, nil)
	for _, conn := range []*websocket.Conn{host, joiner} {
		env = readFrame(t, conn)
		if env.Type != protocol.MsgMatchEnd {
			t.Fatalf("expected matchEnd, got %q", env.Type)
		}
		var end protocol.MatchEndPayload
		if err := json.Unmarshal(env.Payload, &end); err != nil {
			t.Fatalf("bad payload: %v", err)
		}
		if end.WinnerSlot != 1 || end.WinnerName != "Bob" {
			t.Errorf("unexpected result: %+v", end)
		}
	}
}

func TestWebsocketMalformedFramesIgnored(t *testing.T) {
	ts := newTestServer(t)
	conn := dialWS(t, ts)

	// None of these should produce a response or kill the connection.
	conn.WriteMessage(websocket.TextMessage, []byte(`garbage`))                                    //nolint:errcheck
	conn.WriteMessage(websocket.TextMessage, []byte(`{"payload":{}}`))                             //nolint:errcheck
	conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"teleport"}`))                        //nolint:errcheck
	conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"joinSession","payload":{}}`))        //nolint:errcheck
	conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"sendGarbage","payload":{"lines":0}}`)) //nolint:errcheck

	sendFrame(t, conn, protocol.MsgCreateSession, protocol.CreateSessionPayload{Name: "Alice"})
	env := readFrame(t, conn)
	if env.Type != protocol.MsgSessionCreated {
		t.Fatalf("connection should survive malformed frames, got %q", env.Type)
	}
}

func TestWebsocketDisconnectNotifiesPeer(t *testing.T) {
	ts := newTestServer(t)

	host := dialWS(t, ts)
	sendFrame(t, host, protocol.MsgCreateSession, protocol.CreateSessionPayload{Name: "Alice"})
	env := readFrame(t, host)
	var created protocol.SessionCreatedPayload
	if err := json.Unmarshal(env.Payload, &created); err != nil {
		t.Fatalf("bad payload: %v", err)
	}
	readFrame(t, host) // membershipUpdate

	joiner := dialWS(t, ts)
	sendFrame(t, joiner, protocol.MsgJoinSession, protocol.JoinSessionPayload{SessionID: created.SessionID, Name: "Bob"})
	readFrame(t, joiner) // sessionJoined
	readFrame(t, joiner) // membershipUpdate
	readFrame(t, host)   // membershipUpdate

	joiner.Close()

	env = readFrame(t, host)
	if env.Type != protocol.MsgOpponentLeft {
		t.Fatalf("expected opponentLeft, got %q", env.Type)
	}
	if env = readFrame(t, host); env.Type != protocol.MsgMembershipUpdate {
		t.Fatalf("expected membershipUpdate, got %q", env.Type)
	}
	var update protocol.MembershipUpdatePayload
	if err := json.Unmarshal(env.Payload, &update); err != nil {
		t.Fatalf("bad payload: %v", err)
	}
	if update.Count != 1 {
		t.Errorf("expected count 1, got %d", update.Count)
	}
}
