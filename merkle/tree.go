package merkle

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/libswift/tswift/bin"
	"github.com/libswift/tswift/binmap"
	"github.com/libswift/tswift/digest"
	"github.com/libswift/tswift/errs"
	"github.com/libswift/tswift/storage"
)

// Tree is a static (bulk) Merkle hash tree over content addressed by a
// single, known-in-advance root hash (§4). It is safe for concurrent use;
// every exported method takes the tree's lock, matching the
// single-writer-thread model the swarm manager otherwise provides by
// dispatching everything from one event loop (see spec's scheduling
// model) — the lock here exists so this package does not *require* that
// discipline from its caller.
type Tree struct {
	mu sync.Mutex

	store     storage.Store
	hashes    HashStore
	chunkSize int64

	rootHash digest.Hash

	peaks      []bin.Bin
	peakHashes []digest.Hash

	sizeChunks     uint64
	sizeBytes      int64
	complete       int64
	completeChunks uint64

	ackOut   *binmap.BinMap
	verified *binmap.VerifiedSet

	// forceCheckDisk is set by LoadCheckpoint when peak-hash recovery
	// fails. Nothing reads it: OfferData trusts ack_out either way.
	forceCheckDisk bool
}

// NewFromRoot constructs an empty tree for content whose root hash is
// already known (the common download-side case): no peaks are known yet
// and must arrive via OfferPeakHash before any OfferHash/OfferData call
// can succeed.
func NewFromRoot(root digest.Hash, chunkSize int64, store storage.Store, hashes HashStore) *Tree {
	return &Tree{
		store:     store,
		hashes:    hashes,
		chunkSize: chunkSize,
		rootHash:  root,
		ackOut:    binmap.New(0),
		verified:  binmap.NewVerifiedSet(),
	}
}

// NewFromContent hashes store's full, already-written content into a
// fresh in-memory hash store; see NewFromContentWithHashStore for the
// disk-backed variant a caller wanting checkpoint-recoverable peaks
// should use instead.
func NewFromContent(ctx context.Context, chunkSize int64, store storage.Store) (*Tree, error) {
	return NewFromContentWithHashStore(ctx, chunkSize, store, NewMemHashStore())
}

// NewFromContentWithHashStore hashes store's full, already-written
// content (the seed/source case: "Submit" in the reference
// implementation) and derives the tree's own root hash, writing every
// leaf/interior hash into hashes rather than always allocating a fresh
// in-memory store. Passing an OpenMmapHashStore-backed store here is
// what later lets LoadCheckpoint recover peaks without rehashing: the
// checkpoint's ack-out binmap only tells a reactivated tree which
// chunks were verified, not their hashes, so the hash data has to have
// survived on disk independently. Leaf hashing fans out across workers
// via errgroup since each leaf's content hash is independent; interior
// folding is then done serially bottom level by bottom level since a
// layer's hashes depend on the layer below.
func NewFromContentWithHashStore(ctx context.Context, chunkSize int64, store storage.Store, hashes HashStore) (*Tree, error) {
	size := store.Size()
	sizeChunks := uint64((size + chunkSize - 1) / chunkSize)
	if sizeChunks == 0 {
		sizeChunks = 1
	}

	if err := hashes.Resize(sizeChunks); err != nil {
		return nil, err
	}

	t := &Tree{
		store:      store,
		hashes:     hashes,
		chunkSize:  chunkSize,
		sizeBytes:  size,
		sizeChunks: sizeChunks,
		ackOut:     binmap.New(sizeChunks),
		verified:   binmap.NewVerifiedSet(),
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := uint64(0); i < sizeChunks; i++ {
		i := i
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			buf := make([]byte, chunkSize)
			n, err := store.ReadAt(buf, int64(i)*chunkSize)
			if err != nil && !(i == sizeChunks-1 && n > 0) {
				return errs.ErrStorageShortRead
			}
			leaf := bin.New(0, i)
			t.hashes.Set(leaf, digest.Sum(buf[:n]))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := uint64(0); i < sizeChunks; i++ {
		pos := bin.New(0, i)
		t.ackOut.Set(pos)
		t.complete += t.leafLength(i)
		t.completeChunks++
		for pos.IsRight() {
			pos = pos.Parent()
			left, _ := t.hashes.Get(pos.Left())
			right, _ := t.hashes.Get(pos.Right())
			t.hashes.Set(pos, digest.Pair(left, right))
		}
	}

	t.peaks = bin.Peaks(sizeChunks)
	t.peakHashes = make([]digest.Hash, len(t.peaks))
	for i, p := range t.peaks {
		h, _ := t.hashes.Get(p)
		t.peakHashes[i] = h
	}
	t.rootHash = t.deriveRootLocked()
	return t, nil
}

func (t *Tree) leafLength(i uint64) int64 {
	if i == t.sizeChunks-1 {
		last := t.sizeBytes - int64(i)*t.chunkSize
		if last > 0 {
			return last
		}
	}
	return t.chunkSize
}

// RootHash returns the tree's (expected or derived) root hash.
func (t *Tree) RootHash() digest.Hash {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rootHash
}

// Size returns the known content size in bytes, or -1 if not yet known
// (no peak has been accepted).
func (t *Tree) Size() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sizeChunks == 0 {
		return -1
	}
	return t.sizeBytes
}

// Complete returns the number of bytes verified and written so far.
func (t *Tree) Complete() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.complete
}

// IsComplete reports whether every base chunk has been verified.
func (t *Tree) IsComplete() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sizeChunks > 0 && t.ackOut.IsFull()
}

// AckOut exposes the ack-out binmap read-only access is built on: callers
// must not mutate it, only query it (e.g. to build outgoing HAVEs).
func (t *Tree) AckOut() *binmap.BinMap {
	return t.ackOut
}
