package livemerkle

import (
	"sync"

	"github.com/libswift/tswift/bin"
	"github.com/libswift/tswift/binmap"
	"github.com/libswift/tswift/digest"
	"github.com/libswift/tswift/sig"
	"github.com/libswift/tswift/storage"
)

// Tree is a unified/live Merkle hash tree (§5): pointer-linked (via
// index, see node.go) instead of dense-array-indexed like merkle.Tree,
// because a live tree's bin numbering keeps shifting as new data grows
// the tree upward and old data is pruned from underneath it.
type Tree struct {
	mu sync.Mutex

	nodes []node
	byBin map[bin.Bin]nodeIndex
	root  nodeIndex

	// addCursor is the most recently created leaf on the source side;
	// CreateNext walks from it. Unused on the client side.
	addCursor nodeIndex

	store     storage.Store
	chunkSize int64
	sizeBytes int64
	complete  int64

	peaks      []bin.Bin
	peakHashes []digest.Hash

	// signedPeaks/signatures is the source's most recently signed peak
	// tuple, kept to diff against the current peak decomposition in
	// UpdateSignedPeaks (only newly-surfaced peaks get re-signed).
	signedPeaks []bin.Bin
	signatures  []sig.Signature

	// pendingCandidate is the client's single cached "candidate peak"
	// bin (§4.3): the most recent bin offered via OfferHash that wasn't
	// covered by a known peak. A SIGNED_INTEGRITY whose bin doesn't
	// match it is a message-mixup and is ignored.
	pendingCandidate bin.Bin

	ackOut   *binmap.BinMap
	verified *binmap.VerifiedSet

	keys               sig.KeyPair
	chunksPerSignature int
	sinceSignature     int

	// discardWindow bounds how many trailing chunks of tree structure
	// are kept; PruneTree drops everything strictly behind it.
	discardWindow uint64
	headChunk     uint64 // index, in chunks, of the most recently added/accepted leaf
}

const defaultChunksPerSignature = 1

// NewSource returns a Tree in the source role: AddData appends new
// leaves and grows peaks; UpdateSignedPeaks periodically signs the
// current peak tuple for broadcast as SIGNED_INTEGRITY.
func NewSource(chunkSize int64, store storage.Store, keys sig.KeyPair, chunksPerSignature int, discardWindow uint64) *Tree {
	if chunksPerSignature <= 0 {
		chunksPerSignature = defaultChunksPerSignature
	}
	return &Tree{
		byBin:              make(map[bin.Bin]nodeIndex),
		root:               nilNode,
		addCursor:          nilNode,
		store:              store,
		chunkSize:          chunkSize,
		ackOut:             binmap.New(0),
		verified:           binmap.NewVerifiedSet(),
		keys:               keys,
		chunksPerSignature: chunksPerSignature,
		discardWindow:      discardWindow,
		pendingCandidate:   bin.NONE,
	}
}

// NewClient returns a Tree in the client role: OfferHash/OfferData
// verify incoming offers against peaks installed via
// OfferSignedPeakHash.
func NewClient(chunkSize int64, store storage.Store, keys sig.KeyPair, discardWindow uint64) *Tree {
	return &Tree{
		byBin:            make(map[bin.Bin]nodeIndex),
		root:             nilNode,
		addCursor:        nilNode,
		store:            store,
		chunkSize:        chunkSize,
		ackOut:           binmap.New(0),
		verified:         binmap.NewVerifiedSet(),
		keys:             keys,
		discardWindow:    discardWindow,
		pendingCandidate: bin.NONE,
	}
}

// RootHash returns the hash of the tree's current root node, or
// digest.ZERO if no root exists yet.
func (t *Tree) RootHash() digest.Hash {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.root == nilNode {
		return digest.Hash{}
	}
	return t.nodes[t.root].hash
}

// Size returns the number of content bytes known so far.
func (t *Tree) Size() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sizeBytes
}

// SizeInChunks returns Size rounded up to a whole number of chunks.
func (t *Tree) SizeInChunks() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sizeInChunksLocked()
}

func (t *Tree) sizeInChunksLocked() uint64 {
	return uint64((t.sizeBytes + t.chunkSize - 1) / t.chunkSize)
}

// AckOut exposes the ack-out binmap for read-only HAVE-building use.
func (t *Tree) AckOut() *binmap.BinMap { return t.ackOut }

// PeakTuples returns the tree's current peak bins and hashes, the
// payload a source signs and broadcasts as SIGNED_INTEGRITY.
func (t *Tree) PeakTuples() ([]bin.Bin, []digest.Hash) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]bin.Bin(nil), t.peaks...), append([]digest.Hash(nil), t.peakHashes...)
}
