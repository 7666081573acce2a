// Package swarm implements the swarm lifecycle manager (§4.4): registry,
// activation/deactivation, and lookup of the content-integrity trees
// this module's tree packages build.
package swarm

import (
	"time"

	"github.com/libswift/tswift/digest"
)

// ID identifies a swarm; for a signed live swarm this is the source's
// public key, for a static swarm it is the content's root hash.
type ID = digest.Hash

// Flags requested at AddSwarm time (§4.4).
type Flags uint8

const (
	FlagActivate Flags = 1 << iota
	FlagLive
)

// State distinguishes a swarm with an in-memory tree from one known
// only by its on-disk checkpoint metadata.
type State int

const (
	StateCached State = iota
	StateActive
)

func (s State) String() string {
	if s == StateActive {
		return "active"
	}
	return "cached"
}

// Tree is the subset of merkle.Tree/livemerkle.Tree the manager needs to
// query and checkpoint a swarm's content without importing either tree
// package directly (avoiding an import cycle and keeping the manager
// tree-implementation-agnostic, per §1's "transfer is an external
// collaborator" framing).
type Tree interface {
	RootHash() digest.Hash
	Size() int64
	IsComplete() bool
	// Complete returns total bytes verified so far, regardless of
	// whether they are contiguous from the start (§6, §8 invariant 6).
	Complete() int64
	SeqComplete(offset int64) int64
	Checkpoint(path string) error
}

// Record is one swarm's bookkeeping entry, whether cached or active.
type Record struct {
	ID         ID
	Descriptor int32
	Path       string
	ChunkSize  int64
	Flags      Flags

	State State
	Tree  Tree // nil while State == StateCached

	RootHash       digest.Hash
	Size           int64
	Complete       int64
	ForceCheckDisk bool

	LastUse time.Time

	pendingRemoval       bool
	removalMarked        time.Time
	removalDeleteContent bool
}

func (r *Record) snapshotLocked() {
	if r.Tree == nil {
		return
	}
	r.RootHash = r.Tree.RootHash()
	r.Size = r.Tree.Size()
	r.Complete = r.Tree.Complete()
}
