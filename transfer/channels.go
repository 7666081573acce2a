package transfer

import (
	"sync"
	"time"

	"github.com/tilinna/clock"
	"github.com/libswift/tswift/wire"
)

// channelIdleTimeout is how long a channel may sit without activity
// before the GC sweep closes it.
const channelIdleTimeout = 60 * time.Second

// ChannelEntry is one open channel's bookkeeping: the swarm it belongs
// to and when it was last active.
type ChannelEntry struct {
	ID       wire.ChannelID
	SwarmID  [20]byte
	lastSeen time.Time
	closer   func()
}

// ChannelSet tracks open channels across all swarms and garbage-collects
// ones that have gone idle, mirroring the reference's channel table
// cleanup (it does not name an exact timeout, so this module picks one
// consistent with the manager's 30s idle-deactivation threshold, doubled
// for slack since a channel can legitimately idle longer than a swarm).
type ChannelSet struct {
	mu    sync.Mutex
	clock clock.Clock
	byID  map[wire.ChannelID]*ChannelEntry
}

// NewChannelSet returns an empty ChannelSet using clk for activity
// timestamps.
func NewChannelSet(clk clock.Clock) *ChannelSet {
	if clk == nil {
		clk = clock.Realtime()
	}
	return &ChannelSet{clock: clk, byID: make(map[wire.ChannelID]*ChannelEntry)}
}

// Open registers a new channel. closer is called by the GC sweep when
// the channel is reaped for inactivity.
func (cs *ChannelSet) Open(id wire.ChannelID, swarmID [20]byte, closer func()) *ChannelEntry {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	e := &ChannelEntry{ID: id, SwarmID: swarmID, lastSeen: cs.clock.Now(), closer: closer}
	cs.byID[id] = e
	return e
}

// Touch records activity on id, keeping it alive past the next sweep.
func (cs *ChannelSet) Touch(id wire.ChannelID) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if e, ok := cs.byID[id]; ok {
		e.lastSeen = cs.clock.Now()
	}
}

// Close removes id immediately, without invoking its closer (the caller
// is assumed to already be tearing it down).
func (cs *ChannelSet) Close(id wire.ChannelID) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	delete(cs.byID, id)
}

// Len returns the number of tracked channels.
func (cs *ChannelSet) Len() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.byID)
}

// Sweep closes every channel idle for at least channelIdleTimeout,
// invoking each one's closer outside the lock.
func (cs *ChannelSet) Sweep() {
	now := cs.clock.Now()
	cs.mu.Lock()
	var reaped []*ChannelEntry
	for id, e := range cs.byID {
		if now.Sub(e.lastSeen) >= channelIdleTimeout {
			reaped = append(reaped, e)
			delete(cs.byID, id)
		}
	}
	cs.mu.Unlock()

	for _, e := range reaped {
		if e.closer != nil {
			e.closer()
		}
	}
}
