// Package latest implements "latest request wins": every async load takes a
// ticket before it starts, and its result is applied only if no newer ticket
// was issued in the meantime. Responses carry no sequence number of their
// own, so without this a slow, older response can overwrite fresher state.
package latest

import "sync"

// Tracker issues tickets for one load path. K is the key the load targets
// (a municipality id, a mission id); use struct{} when there is none.
type Tracker[K comparable] struct {
	mu  sync.Mutex
	seq uint64
	key K
	set bool
}

// Ticket identifies one issued request.
type Ticket[K comparable] struct {
	t   *Tracker[K]
	seq uint64
	Key K
}

// Begin issues a ticket for key, superseding every earlier ticket.
func (t *Tracker[K]) Begin(key K) Ticket[K] {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.key = key
	t.set = true
	return Ticket[K]{t: t, seq: t.seq, Key: key}
}

// Current reports whether no newer ticket has been issued and the tracker
// was not reset since this ticket was taken.
func (k Ticket[K]) Current() bool {
	if k.t == nil {
		return false
	}
	k.t.mu.Lock()
	defer k.t.mu.Unlock()
	return k.t.set && k.t.seq == k.seq
}

// Key returns the key of the latest ticket and whether one is active.
func (t *Tracker[K]) Key() (K, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.key, t.set
}

// Reset invalidates all outstanding tickets and clears the active key.
func (t *Tracker[K]) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	var zero K
	t.seq++
	t.key = zero
	t.set = false
}
