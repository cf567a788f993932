package duel

import (
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// seedBound caps the shared match seed; seeds are uniform in
// [0, seedBound-1]. Clients feed the seed into their own PRNGs, so both
// sides of a match must receive the identical value.
const seedBound = 999999

// Config holds configuration for the coordinator.
type Config struct {
	SessionTTL  time.Duration // How long a session may live regardless of activity
	SweepPeriod time.Duration // How often the janitor scans for dead sessions
	CodeLength  int           // Session code length
	CodeRetries int           // Collision retry budget before widening the code
	Defaults    Settings      // Base game settings, overridable per session
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		SessionTTL:  30 * time.Minute,
		SweepPeriod: 60 * time.Second,
		CodeLength:  4,
		CodeRetries: 2048,
		Defaults:    DefaultSettings(),
	}
}

// MatchRecord contains a finished match for persistence.
type MatchRecord struct {
	SessionID    string
	Mode         string
	Seed         int
	WinnerSlot   int
	WinnerName   string
	LoserName    string
	DurationSecs int
}

// MatchRecorder saves finished matches. It decouples the coordinator
// from the storage package; saving is best effort and never blocks a
// handler.
type MatchRecorder interface {
	RecordMatch(rec MatchRecord) error
}

// Coordinator owns all mutable matchmaking state: the session registry,
// the connection index and the single-waiter queue. Inbound messages
// are processed one at a time, so every handler runs to completion
// before the next; the janitor takes the same lock, preserving that
// atomicity. Construct one per process (or per test) and inject it into
// connection handlers; there is no ambient global instance.
type Coordinator struct {
	config   Config
	logger   *log.Logger
	recorder MatchRecorder // Optional, can be nil

	mu       sync.Mutex
	sessions *SessionRegistry
	index    map[ClientID]ParticipantInfo
	queue    matchQueue
	rng      *rand.Rand

	msgChan chan Message
	done    chan struct{}
}

// NewCoordinator creates a coordinator. A nil logger discards output.
func NewCoordinator(cfg Config, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Coordinator{
		config:   cfg,
		logger:   logger,
		sessions: NewSessionRegistry(cfg.CodeLength, cfg.CodeRetries),
		index:    make(map[ClientID]ParticipantInfo),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		msgChan:  make(chan Message, 256),
		done:     make(chan struct{}),
	}
}

// SetRecorder sets the optional match recorder.
func (c *Coordinator) SetRecorder(rec MatchRecorder) {
	c.recorder = rec
}

// Start begins the coordinator's background processing.
func (c *Coordinator) Start() {
	go c.processMessages()
	go c.janitorLoop()
}

// Stop shuts down the coordinator.
func (c *Coordinator) Stop() {
	close(c.done)
}

// Send queues a message for processing.
func (c *Coordinator) Send(msg Message) {
	select {
	case c.msgChan <- msg:
	case <-c.done:
	}
}

func (c *Coordinator) processMessages() {
	for {
		select {
		case msg := <-c.msgChan:
			c.handleMessage(msg)
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) handleMessage(msg Message) {
	switch m := msg.(type) {
	case CreateSessionMsg:
		c.handleCreateSession(m)
	case JoinSessionMsg:
		c.handleJoinSession(m)
	case FindMatchMsg:
		c.handleFindMatch(m)
	case CancelMatchMsg:
		c.handleCancelMatch(m)
	case MarkReadyMsg:
		c.handleReady(m.Client)
	case RematchMsg:
		c.handleReady(m.Client)
	case FieldUpdateMsg:
		c.handleFieldUpdate(m)
	case SendGarbageMsg:
		c.handleSendGarbage(m)
	case ReportLossMsg:
		c.handleReportLoss(m)
	case DisconnectMsg:
		c.handleDisconnect(m)
	}
}

func (c *Coordinator) handleCreateSession(msg CreateSessionMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, assigned := c.index[msg.Client.ID()]; assigned {
		msg.Client.Send(JoinErrorEvent{Message: "Already in a session"})
		return
	}

	sess := c.sessions.Create(ModePrivate, c.config.Defaults, msg.Settings)
	slot, _ := sess.addPlayer(msg.Client, msg.Name)
	c.index[msg.Client.ID()] = ParticipantInfo{SessionID: sess.id, Slot: slot, Name: sess.names[slot]}

	msg.Client.Send(SessionCreatedEvent{SessionID: sess.id, Slot: slot})
	c.broadcastMembership(sess)

	c.logger.Info("session created", "session", sess.id, "client", msg.Client.ID())
}

func (c *Coordinator) handleJoinSession(msg JoinSessionMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, assigned := c.index[msg.Client.ID()]; assigned {
		msg.Client.Send(JoinErrorEvent{Message: "Already in a session"})
		return
	}

	sess, ok := c.sessions.Get(msg.SessionID)
	if !ok {
		msg.Client.Send(JoinErrorEvent{Message: "Session not found"})
		return
	}
	if sess.isFull() {
		msg.Client.Send(JoinErrorEvent{Message: "Session is full"})
		return
	}

	slot, _ := sess.addPlayer(msg.Client, msg.Name)
	c.index[msg.Client.ID()] = ParticipantInfo{SessionID: sess.id, Slot: slot, Name: sess.names[slot]}

	msg.Client.Send(SessionJoinedEvent{SessionID: sess.id, Slot: slot})
	c.broadcastMembership(sess)

	c.logger.Info("session joined", "session", sess.id, "client", msg.Client.ID(), "slot", slot)
}

func (c *Coordinator) handleFindMatch(msg FindMatchMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, assigned := c.index[msg.Client.ID()]; assigned {
		msg.Client.Send(JoinErrorEvent{Message: "Already in a session"})
		return
	}
	if c.queue.holds(msg.Client.ID()) {
		msg.Client.Send(WaitingEvent{Message: "Waiting for an opponent"})
		return
	}

	waiter, waiterName, ok := c.queue.take(msg.Client)
	if !ok {
		c.queue.put(msg.Client, msg.Name)
		msg.Client.Send(WaitingEvent{Message: "Waiting for an opponent"})
		return
	}

	sess := c.sessions.Create(ModeRandom, c.config.Defaults, nil)
	slot0, _ := sess.addPlayer(waiter, waiterName)
	slot1, _ := sess.addPlayer(msg.Client, msg.Name)
	c.index[waiter.ID()] = ParticipantInfo{SessionID: sess.id, Slot: slot0, Name: sess.names[slot0]}
	c.index[msg.Client.ID()] = ParticipantInfo{SessionID: sess.id, Slot: slot1, Name: sess.names[slot1]}

	waiter.Send(MatchFoundEvent{SessionID: sess.id, Slot: slot0})
	msg.Client.Send(MatchFoundEvent{SessionID: sess.id, Slot: slot1})
	c.broadcastMembership(sess)

	c.logger.Info("matchmade", "session", sess.id, "waiter", waiter.ID(), "requester", msg.Client.ID())
}

func (c *Coordinator) handleCancelMatch(msg CancelMatchMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.queue.cancel(msg.Client) {
		msg.Client.Send(MatchCancelledEvent{})
	}
}

// handleReady serves both markReady and rematch: it sets the caller's
// ready flag, broadcasts the ready vector and starts a match once both
// flags are up. A session already playing ignores the event.
func (c *Coordinator) handleReady(client ClientHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	info, sess, ok := c.lookupLocked(client)
	if !ok {
		return
	}
	if sess.phase == PhasePlaying {
		return
	}

	sess.ready[info.Slot] = true
	sess.broadcast(ReadyVectorEvent{Ready: sess.ready})

	if sess.bothReady() && sess.phase == PhaseAwaitingReady {
		c.startMatch(sess)
	}
}

// startMatch must be called with the lock held. The seed is drawn
// exactly once per match start and broadcast to both slots in the same
// handler invocation.
func (c *Coordinator) startMatch(sess *Session) {
	sess.phase = PhasePlaying
	sess.startedAt = time.Now()
	sess.seed = c.rng.Intn(seedBound)
	sess.broadcast(MatchStartEvent{Seed: sess.seed, Settings: sess.settings})
	c.logger.Info("match started", "session", sess.id, "seed", sess.seed)
}

func (c *Coordinator) handleFieldUpdate(msg FieldUpdateMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, sess, ok := c.lookupLocked(msg.Client)
	if !ok || sess.phase != PhasePlaying {
		return
	}
	opp, ok := sess.getOpponent(msg.Client)
	if !ok {
		return
	}
	opp.Send(OpponentFieldEvent{
		Field: msg.Field,
		Score: msg.Score,
		Chain: msg.Chain,
		Level: msg.Level,
	})
}

func (c *Coordinator) handleSendGarbage(msg SendGarbageMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, sess, ok := c.lookupLocked(msg.Client)
	if !ok || sess.phase != PhasePlaying {
		return
	}
	opp, ok := sess.getOpponent(msg.Client)
	if !ok {
		return
	}
	opp.Send(ReceiveGarbageEvent{Lines: msg.Lines})
}

func (c *Coordinator) handleReportLoss(msg ReportLossMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	info, sess, ok := c.lookupLocked(msg.Client)
	if !ok {
		return
	}
	// Only the first report per match counts.
	if sess.phase != PhasePlaying {
		return
	}
	// A report with no opponent seated is stale; there is no result to
	// declare or record.
	if _, ok := sess.getOpponent(msg.Client); !ok {
		return
	}

	winnerSlot := 1 - info.Slot
	winnerName := sess.names[winnerSlot]
	loserName := sess.names[info.Slot]
	duration := time.Since(sess.startedAt)

	sess.broadcast(MatchEndEvent{
		WinnerSlot: winnerSlot,
		WinnerName: winnerName,
		LoserName:  loserName,
	})

	// Eager reset: back to awaiting-ready so both slots can rematch in
	// place instead of needing a fresh session.
	sess.phase = PhaseAwaitingReady
	sess.ready = [2]bool{false, false}

	c.logger.Info("match ended", "session", sess.id, "winner", winnerName, "loser", loserName)

	if c.recorder != nil {
		rec := MatchRecord{
			SessionID:    sess.id,
			Mode:         string(sess.mode),
			Seed:         sess.seed,
			WinnerSlot:   winnerSlot,
			WinnerName:   winnerName,
			LoserName:    loserName,
			DurationSecs: int(duration / time.Second),
		}
		// Best effort save, don't block the handler on storage.
		go func() {
			if err := c.recorder.RecordMatch(rec); err != nil {
				c.logger.Warn("could not record match", "session", rec.SessionID, "error", err)
			}
		}()
	}
}

func (c *Coordinator) handleDisconnect(msg DisconnectMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.queue.cancel(msg.Client) {
		c.logger.Debug("waiter disconnected", "client", msg.Client.ID())
	}

	info, exists := c.index[msg.Client.ID()]
	if !exists {
		return
	}
	delete(c.index, msg.Client.ID())

	sess, ok := c.sessions.Get(info.SessionID)
	if !ok {
		return
	}
	sess.removePlayer(msg.Client)

	if sess.isEmpty() {
		// Both slots gone: reclaim immediately, the sweep is a backstop.
		c.sessions.Delete(sess.id)
		c.logger.Info("session emptied", "session", sess.id)
		return
	}

	sess.broadcast(OpponentLeftEvent{Message: "Opponent left the session"})
	c.broadcastMembership(sess)
	c.logger.Info("player left", "session", sess.id, "client", msg.Client.ID())
}

// broadcastMembership must be called with the lock held.
func (c *Coordinator) broadcastMembership(sess *Session) {
	names, count := sess.membership()
	sess.broadcast(MembershipUpdateEvent{Names: names, Count: count})
}

// lookupLocked resolves a client to its session. Events from clients
// with no recorded assignment are dropped on purpose (stale events from
// just-closed connections are routine), but logged so the path stays
// observable.
func (c *Coordinator) lookupLocked(client ClientHandle) (ParticipantInfo, *Session, bool) {
	info, exists := c.index[client.ID()]
	if !exists {
		c.logger.Debug("event from unassigned client", "client", client.ID())
		return ParticipantInfo{}, nil, false
	}
	sess, ok := c.sessions.Get(info.SessionID)
	if !ok {
		// Index entry outlived its session; heal the side table.
		delete(c.index, client.ID())
		c.logger.Warn("index entry for dead session", "client", client.ID(), "session", info.SessionID)
		return ParticipantInfo{}, nil, false
	}
	return info, sess, true
}

func (c *Coordinator) janitorLoop() {
	ticker := time.NewTicker(c.config.SweepPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.done:
			return
		}
	}
}

// sweep removes empty and expired sessions. Expiry applies regardless
// of activity as a leak guard; occupants of an expired session lose
// their index entries with it.
func (c *Coordinator) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := c.sessions.Sweep(time.Now(), c.config.SessionTTL)
	for _, sess := range removed {
		for slot := 0; slot < 2; slot++ {
			if sess.slots[slot] != nil {
				delete(c.index, sess.slots[slot].ID())
			}
		}
		c.logger.Debug("session swept", "session", sess.id, "age", time.Since(sess.createdAt))
	}
	if len(removed) > 0 {
		c.logger.Info("janitor sweep", "removed", len(removed), "live", c.sessions.Count())
	}
}

// SessionCount returns the number of live sessions.
func (c *Coordinator) SessionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions.Count()
}

// Lookup returns the participant info for a client (for testing/debug).
func (c *Coordinator) Lookup(id ClientID) (ParticipantInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	info, ok := c.index[id]
	return info, ok
}

// SessionPhase returns the phase of a session (for testing/debug).
func (c *Coordinator) SessionPhase(id string) (Phase, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sess, ok := c.sessions.Get(id)
	if !ok {
		return 0, false
	}
	return sess.phase, true
}

// Waiting reports whether the client is the current matchmaking waiter.
func (c *Coordinator) Waiting(id ClientID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.holds(id)
}
