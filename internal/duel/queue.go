package duel

// matchQueue holds at most one client awaiting random pairing. It is a
// holding slot, not a session. Access is serialized by the coordinator
// lock; a concurrent port must keep it that way or a third findMatch
// racing a pairing could observe a half-cleared waiter.
type matchQueue struct {
	waiter ClientHandle
	name   string
}

// take returns the current waiter if it is a distinct, still-live
// client, clearing the queue. Dead waiters are discarded rather than
// paired: a client may have disconnected while queued and its handle
// would otherwise go stale here.
func (q *matchQueue) take(requester ClientHandle) (ClientHandle, string, bool) {
	if q.waiter == nil {
		return nil, "", false
	}
	if q.waiter.ID() == requester.ID() {
		return nil, "", false
	}
	if !alive(q.waiter) {
		q.waiter = nil
		q.name = ""
		return nil, "", false
	}
	w, name := q.waiter, q.name
	q.waiter = nil
	q.name = ""
	return w, name, true
}

// put stores the client as the sole waiter.
func (q *matchQueue) put(c ClientHandle, name string) {
	q.waiter = c
	q.name = name
}

// cancel clears the waiter only if it is currently held by the client.
func (q *matchQueue) cancel(c ClientHandle) bool {
	if q.waiter == nil || q.waiter.ID() != c.ID() {
		return false
	}
	q.waiter = nil
	q.name = ""
	return true
}

// holds reports whether the client is the current waiter.
func (q *matchQueue) holds(id ClientID) bool {
	return q.waiter != nil && q.waiter.ID() == id
}
