// Package availability is the per-bin availability collaborator (§6): it
// tracks which bins known peers have advertised via HAVE, answers
// rarest-in-range queries for a piece picker built on top of it, and
// dedups concurrent requests for the same bin the way a real transport
// would, so two callers asking for the same missing bin at once share a
// single pending fetch instead of issuing two.
package availability

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"

	"github.com/libswift/tswift/bin"
	"github.com/libswift/tswift/binmap"
	"github.com/libswift/tswift/digest"
)

// pendingCapacity bounds the LRU of in-flight fetches per swarm; a
// fetch that never resolves ages out rather than pinning memory forever.
const pendingCapacity = 65536

// Pending tracks one outstanding request for a bin's data, shared by
// every caller that asked for the same bin before it was delivered.
type Pending struct {
	Delivered chan struct{}
	Hash      digest.Hash
	CreatedAt time.Time
	CreatedBy string // "picker" or "hint", mirrors who first asked

	once sync.Once
}

// Deliver records the resolved hash and wakes every waiter, exactly
// once even if called concurrently by more than one delivery path.
func (p *Pending) Deliver(h digest.Hash) {
	p.once.Do(func() {
		p.Hash = h
		close(p.Delivered)
	})
}

// Tracker is the availability collaborator implementation: a have-count
// per bin (for rarest-first selection) plus the pending-fetch dedup
// table described above.
type Tracker struct {
	mu     sync.Mutex
	counts map[bin.Bin]int

	pending      *lru.Cache
	requestGroup singleflight.Group
}

// New returns an empty Tracker.
func New() (*Tracker, error) {
	pending, err := lru.New(pendingCapacity)
	if err != nil {
		return nil, err
	}
	return &Tracker{
		counts:  make(map[bin.Bin]int),
		pending: pending,
	}, nil
}

// RecordHave increments the have-count of every base bin under b, as
// reported by an incoming HAVE message.
func (t *Tracker) RecordHave(b bin.Bin) {
	t.mu.Lock()
	defer t.mu.Unlock()
	left, right := b.BaseLeft(), b.BaseRight()
	for off := left.LayerOffset(); off <= right.LayerOffset(); off++ {
		t.counts[bin.New(0, off)]++
	}
}

// ForgetHave undoes RecordHave, e.g. when a peer disconnects or sends a
// PEX- for one it previously claimed.
func (t *Tracker) ForgetHave(b bin.Bin) {
	t.mu.Lock()
	defer t.mu.Unlock()
	left, right := b.BaseLeft(), b.BaseRight()
	for off := left.LayerOffset(); off <= right.LayerOffset(); off++ {
		leaf := bin.New(0, off)
		if t.counts[leaf] > 0 {
			t.counts[leaf]--
		}
	}
}

// RarestInRange returns the base bin within scope that is missing from
// have (per binmap.BinMap) with the lowest recorded have-count, breaking
// ties by lowest offset; it returns bin.NONE if every bin in scope is
// already in have or none have been advertised by any peer.
func (t *Tracker) RarestInRange(scope bin.Bin, have *binmap.BinMap) bin.Bin {
	t.mu.Lock()
	defer t.mu.Unlock()

	best := bin.NONE
	bestCount := -1
	left, right := scope.BaseLeft(), scope.BaseRight()
	for off := left.LayerOffset(); off <= right.LayerOffset(); off++ {
		leaf := bin.New(0, off)
		if have.IsFilled(leaf) {
			continue
		}
		count, known := t.counts[leaf]
		if !known {
			continue
		}
		if bestCount == -1 || count < bestCount {
			best, bestCount = leaf, count
		}
	}
	return best
}

// GetOrCreate returns the Pending fetch for b, creating one attributed
// to createdBy if none is outstanding. loaded reports whether an
// existing fetch was returned instead of a fresh one.
func (t *Tracker) GetOrCreate(b bin.Bin, createdBy string) (p *Pending, loaded bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if v, ok := t.pending.Get(b); ok {
		return v.(*Pending), true
	}
	p = &Pending{
		Delivered: make(chan struct{}),
		CreatedAt: time.Now(),
		CreatedBy: createdBy,
	}
	t.pending.Add(b, p)
	return p, false
}

// Deliver resolves the pending fetch for b, if any, and removes it from
// the table so a future request for the same bin starts a fresh fetch.
func (t *Tracker) Deliver(b bin.Bin, h digest.Hash) {
	t.mu.Lock()
	v, ok := t.pending.Get(b)
	if ok {
		t.pending.Remove(b)
	}
	t.mu.Unlock()
	if ok {
		v.(*Pending).Deliver(h)
	}
}

// Await blocks until b's pending fetch delivers, the context is done,
// or timeout elapses without delivery (the caller is expected to retry
// against a different peer on timeout, as RemoteFetch does against the
// next eligible peer).
func (t *Tracker) Await(ctx context.Context, p *Pending, timeout time.Duration) (digest.Hash, error) {
	select {
	case <-p.Delivered:
		return p.Hash, nil
	case <-time.After(timeout):
		return digest.Hash{}, context.DeadlineExceeded
	case <-ctx.Done():
		return digest.Hash{}, ctx.Err()
	}
}

// Do coalesces concurrent fetch requests for the same bin into a single
// underlying fetch function call, the way NetStore.Get uses a
// singleflight.Group to avoid issuing two RetrieveRequests for one chunk.
func (t *Tracker) Do(key string, fetch func() (interface{}, error)) (interface{}, error, bool) {
	return t.requestGroup.Do(key, fetch)
}
