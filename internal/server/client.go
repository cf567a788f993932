package server

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/blockduel/internal/duel"
	"github.com/vovakirdan/blockduel/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 16384
	sendBufferSize = 256
)

// wsClient bridges one websocket connection to the coordinator. It
// implements duel.ClientHandle: coordinator events are encoded to wire
// frames and queued on a buffered channel the write pump drains.
type wsClient struct {
	id     duel.ClientID
	conn   *websocket.Conn
	coord  *duel.Coordinator
	logger *log.Logger

	send     chan []byte
	done     chan struct{}
	doneOnce sync.Once
}

func newWSClient(id duel.ClientID, conn *websocket.Conn, coord *duel.Coordinator, logger *log.Logger) *wsClient {
	return &wsClient{
		id:     id,
		conn:   conn,
		coord:  coord,
		logger: logger,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// ID implements duel.ClientHandle.
func (c *wsClient) ID() duel.ClientID {
	return c.id
}

// Send implements duel.ClientHandle. Frames are dropped rather than
// blocking the coordinator when the client cannot keep up.
func (c *wsClient) Send(evt duel.Event) {
	data, err := encodeEvent(evt)
	if err != nil {
		c.logger.Error("cannot encode event", "client", c.id, "error", err)
		return
	}
	select {
	case c.send <- data:
	default:
		c.logger.Warn("send buffer full, dropping frame", "client", c.id)
	}
}

// Done implements duel.ClientHandle.
func (c *wsClient) Done() <-chan struct{} {
	return c.done
}

// close marks the connection as finished. Safe to call multiple times.
func (c *wsClient) close() {
	c.doneOnce.Do(func() {
		close(c.done)
	})
}

// writePump drains the send channel onto the socket and keeps the
// connection alive with pings.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck // deadline on closed conn surfaces via write
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
			return
		}
	}
}

// readPump reads frames off the socket and dispatches them to the
// coordinator. It returns when the connection drops.
func (c *wsClient) readPump() {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("read error", "client", c.id, "error", err)
			}
			return
		}
		c.dispatch(raw)
	}
}

// dispatch decodes one inbound frame and forwards it to the
// coordinator. Malformed frames are rejected here; the coordinator only
// ever sees well-formed messages.
func (c *wsClient) dispatch(raw []byte) {
	env, err := protocol.DecodeEnvelope(raw)
	if err != nil {
		c.logger.Debug("rejected frame", "client", c.id, "error", err)
		return
	}

	switch env.Type {
	case protocol.MsgCreateSession:
		var p protocol.CreateSessionPayload
		if err := env.DecodePayload(&p); err != nil {
			c.reject(env.Type, err)
			return
		}
		c.coord.Send(duel.CreateSessionMsg{
			Client:   c,
			Name:     p.Name,
			Settings: overrideFromWire(p.Settings),
		})

	case protocol.MsgJoinSession:
		var p protocol.JoinSessionPayload
		if err := env.DecodePayload(&p); err != nil {
			c.reject(env.Type, err)
			return
		}
		c.coord.Send(duel.JoinSessionMsg{Client: c, SessionID: p.SessionID, Name: p.Name})

	case protocol.MsgFindMatch:
		var p protocol.FindMatchPayload
		if err := env.DecodePayload(&p); err != nil {
			c.reject(env.Type, err)
			return
		}
		c.coord.Send(duel.FindMatchMsg{Client: c, Name: p.Name})

	case protocol.MsgCancelMatch:
		c.coord.Send(duel.CancelMatchMsg{Client: c})

	case protocol.MsgMarkReady:
		c.coord.Send(duel.MarkReadyMsg{Client: c})

	case protocol.MsgFieldUpdate:
		var p protocol.FieldUpdatePayload
		if err := env.DecodePayload(&p); err != nil {
			c.reject(env.Type, err)
			return
		}
		c.coord.Send(duel.FieldUpdateMsg{
			Client: c,
			Field:  p.Field,
			Score:  p.Score,
			Chain:  p.Chain,
			Level:  p.Level,
		})

	case protocol.MsgSendGarbage:
		var p protocol.SendGarbagePayload
		if err := env.DecodePayload(&p); err != nil {
			c.reject(env.Type, err)
			return
		}
		c.coord.Send(duel.SendGarbageMsg{Client: c, Lines: *p.Lines})

	case protocol.MsgReportLoss:
		c.coord.Send(duel.ReportLossMsg{Client: c})

	case protocol.MsgRematch:
		c.coord.Send(duel.RematchMsg{Client: c})

	default:
		c.logger.Debug("unknown message type", "client", c.id, "type", env.Type)
	}
}

func (c *wsClient) reject(typ string, err error) {
	c.logger.Debug("rejected payload", "client", c.id, "type", typ, "error", err)
}

func overrideFromWire(p *protocol.SettingsOverridePayload) *duel.SettingsOverride {
	if p == nil {
		return nil
	}
	return &duel.SettingsOverride{
		ColorCount:     p.ColorCount,
		DropIntervalMs: p.DropIntervalMs,
	}
}
