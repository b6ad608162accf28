// Package conntrack keeps per-flow counters keyed by four-tuple.
package conntrack

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"firestige.xyz/pktcraft/pkg/tcpip"
)

// Flow holds counters for one connection. Packets in either direction are
// accounted to the same Flow; Key is the direction seen first.
type Flow struct {
	Key       tcpip.Quaternion
	FirstSeen time.Time

	forwardPackets atomic.Int64
	reversePackets atomic.Int64
	bytes          atomic.Int64
}

// Packets returns the packet counts in the Key direction and the reverse
// direction.
func (f *Flow) Packets() (forward, reverse int64) {
	return f.forwardPackets.Load(), f.reversePackets.Load()
}

// Bytes returns the number of payload bytes seen in both directions.
func (f *Flow) Bytes() int64 { return f.bytes.Load() }

// Table maps four-tuples to flows. A packet whose four-tuple is the
// Reverse of a known key is counted on that key's flow.
type Table struct {
	mu    sync.Mutex
	flows map[tcpip.Quaternion]*Flow
	order []*Flow
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		flows: make(map[tcpip.Quaternion]*Flow),
	}
}

// Observe accounts one packet of n payload bytes travelling along q.
// It returns the flow and whether q is the flow's reverse direction.
func (t *Table) Observe(q tcpip.Quaternion, n int, now time.Time) (flow *Flow, reverse bool) {
	t.mu.Lock()
	flow, ok := t.flows[q]
	if !ok {
		flow, reverse = t.flows[q.Reverse()], true
		if flow == nil {
			flow, reverse = &Flow{Key: q, FirstSeen: now}, false
			t.flows[q] = flow
			t.order = append(t.order, flow)
		}
	}
	t.mu.Unlock()

	// Atomic increments outside the lock
	if reverse {
		flow.reversePackets.Add(1)
	} else {
		flow.forwardPackets.Add(1)
	}
	flow.bytes.Add(int64(n))
	return flow, reverse
}

// Lookup returns the flow for q in either direction.
func (t *Table) Lookup(q tcpip.Quaternion) (*Flow, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if f, ok := t.flows[q]; ok {
		return f, true
	}
	f, ok := t.flows[q.Reverse()]
	return f, ok
}

// Len returns the number of distinct flows.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.flows)
}

// Flows returns the flows ordered by first sighting.
func (t *Table) Flows() []*Flow {
	t.mu.Lock()
	out := make([]*Flow, len(t.order))
	copy(out, t.order)
	t.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].FirstSeen.Before(out[j].FirstSeen) })
	return out
}
