package livemerkle

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/libswift/tswift/bin"
	"github.com/libswift/tswift/errs"
)

// IsComplete reports whether every chunk known so far (not the eventual
// total, which is unbounded for a live swarm) has been verified.
func (t *Tree) IsComplete() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sizeInChunksLocked() > 0 && t.ackOut.IsFull()
}

// Complete returns the number of bytes verified and written so far,
// regardless of whether they are sequential from offset 0 — distinct
// from SeqComplete(0), which stalls at the first gap (see merkle.Tree's
// identically-named pair).
func (t *Tree) Complete() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.complete
}

// SeqComplete returns the number of content bytes sequentially complete
// starting from offset, the same definition merkle.Tree.SeqComplete uses
// (§4.5): the distance to the first empty base bin at or after offset.
func (t *Tree) SeqComplete(offset int64) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	sizeChunks := t.sizeInChunksLocked()
	if sizeChunks == 0 {
		return 0
	}
	if offset == 0 {
		empty := t.ackOut.FindEmpty(bin.New(0, 0))
		if empty == bin.NONE || empty.BaseOffset() == sizeChunks {
			return t.sizeBytes
		}
		return int64(empty.BaseOffset()) * t.chunkSize
	}

	binOff := bin.New(0, uint64(offset-(offset%t.chunkSize))/uint64(t.chunkSize))
	next := t.ackOut.FindEmpty(binOff)
	if next == bin.NONE || int64(next.BaseOffset())*t.chunkSize > t.sizeBytes {
		return t.sizeBytes - offset
	}
	diffChunks := next.LayerOffset() - binOff.LayerOffset()
	diffBytes := int64(diffChunks) * t.chunkSize
	if diffBytes > 0 {
		diffBytes -= offset % t.chunkSize
	}
	return diffBytes
}

// liveCheckpointVersion is bumped whenever this file's layout changes.
const liveCheckpointVersion = 1

// Checkpoint writes a minimal restart record for a live swarm: unlike
// the SMT's .mbinmap (§4.2), a live tree's node arena and signed-peak
// history aren't persisted — only the root hash, chunk size, size, the
// current peaks with their hashes, and the ack-out binmap, enough for a
// cached listing to answer Size/RootHash
// without reconstructing the pointer tree. Reactivation after a restart
// re-synchronizes the live tree from peers instead of trusting disk, the
// same way the reference implementation treats a live swarm's checkpoint
// as advisory rather than authoritative.
func (t *Tree) Checkpoint(path string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.Create(path)
	if err != nil {
		return errs.ErrStorageWriteFailed
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	var rootHash [20]byte
	if t.root != nilNode {
		rootHash = t.nodes[t.root].hash
	}
	fmt.Fprintf(w, "version %d\n", liveCheckpointVersion)
	fmt.Fprintf(w, "root hash %x\n", rootHash)
	fmt.Fprintf(w, "chunk size %d\n", t.chunkSize)
	fmt.Fprintf(w, "size %d\n", t.sizeBytes)
	fmt.Fprintf(w, "peaks %d\n", len(t.peaks))
	for i, p := range t.peaks {
		fmt.Fprintf(w, "peak %d %d %x\n", i, p.Uint64(), t.peakHashes[i])
	}
	if err := binary.Write(w, binary.LittleEndian, t.ackOut.Size()); err != nil {
		return errs.ErrStorageWriteFailed
	}
	words := t.ackOut.Words()
	if err := binary.Write(w, binary.LittleEndian, uint64(len(words))); err != nil {
		return errs.ErrStorageWriteFailed
	}
	if err := binary.Write(w, binary.LittleEndian, words); err != nil {
		return errs.ErrStorageWriteFailed
	}
	return w.Flush()
}
