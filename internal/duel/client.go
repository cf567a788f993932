package duel

import "sync"

// ClientHandle is the transport-neutral interface for talking to a
// connected client. It lets the coordinator send events without
// depending on the websocket layer.
type ClientHandle interface {
	// ID returns the unique client identifier.
	ID() ClientID

	// Send delivers an event to the client asynchronously.
	// Must be non-blocking; implementations should use buffered channels.
	Send(evt Event)

	// Done returns a channel that closes when the connection ends.
	// The coordinator uses it to detect stale matchmaking waiters.
	Done() <-chan struct{}
}

// ChannelClient is a ClientHandle backed by Go channels. The websocket
// layer bridges it to a real connection; tests use it directly.
type ChannelClient struct {
	id       ClientID
	events   chan Event
	done     chan struct{}
	doneOnce sync.Once
}

// NewChannelClient creates a channel-backed client handle.
// bufferSize controls how many events can queue before dropping.
func NewChannelClient(id ClientID, bufferSize int) *ChannelClient {
	if bufferSize < 1 {
		bufferSize = 64
	}
	return &ChannelClient{
		id:     id,
		events: make(chan Event, bufferSize),
		done:   make(chan struct{}),
	}
}

// ID returns the client identifier.
func (c *ChannelClient) ID() ClientID {
	return c.id
}

// Send queues an event for the client. If the buffer is full the oldest
// event is dropped so the coordinator never blocks on a slow reader.
func (c *ChannelClient) Send(evt Event) {
	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.events <- evt:
	default:
		select {
		case <-c.events:
		default:
		}
		select {
		case c.events <- evt:
		default:
		}
	}
}

// Events returns the channel the transport layer reads from.
func (c *ChannelClient) Events() <-chan Event {
	return c.events
}

// Done returns the done channel.
func (c *ChannelClient) Done() <-chan struct{} {
	return c.done
}

// Close marks the client as disconnected. Safe to call multiple times.
func (c *ChannelClient) Close() {
	c.doneOnce.Do(func() {
		close(c.done)
	})
}

// alive reports whether the handle's connection is still up.
func alive(c ClientHandle) bool {
	if c == nil {
		return false
	}
	select {
	case <-c.Done():
		return false
	default:
		return true
	}
}
