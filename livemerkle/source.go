package livemerkle

import (
	"github.com/libswift/tswift/bin"
	"github.com/libswift/tswift/digest"
	"github.com/libswift/tswift/sig"
)

// AddData appends one chunk of content to the tree (§4.3 source role),
// advancing the add-cursor via CreateNext, hashing the new leaf, and
// recomputing the peak decomposition for the new chunk count. It returns
// the bin of the newly created leaf.
func (t *Tree) AddData(data []byte) (bin.Bin, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	leaf := t.createNextLocked()
	h := digest.Sum(data)
	t.setHash(leaf, h)
	t.nodes[leaf].verified = true

	if _, err := t.store.WriteAt(data, t.sizeBytes); err != nil {
		return bin.NONE, err
	}
	t.sizeBytes += int64(len(data))
	t.recomputePeaksLocked()
	t.ackOut.Set(t.nodes[leaf].pos)
	t.complete += int64(len(data))

	t.sinceSignature++
	if t.sinceSignature >= t.chunksPerSignature {
		t.sinceSignature = 0
	}
	t.headChunk = t.sizeInChunksLocked() - 1
	if t.discardWindow > 0 {
		t.pruneLocked(t.headChunk)
	}
	return t.nodes[leaf].pos, nil
}

// DueForSignature reports whether the most recent AddData completed a
// batch of chunksPerSignature chunks (§4.3's chunks-per-signature
// batching). The batch counter is reset by AddData alone; UpdateSignedPeaks
// does not touch it, so the result stays true until the next AddData.
func (t *Tree) DueForSignature() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.peaks) > 0 && t.sinceSignature == 0
}

// createNextLocked ports the reference implementation's three-case
// add-cursor advance (§4.3 (i)-(iii)) onto the index arena.
func (t *Tree) createNextLocked() nodeIndex {
	if t.addCursor == nilNode {
		idx := t.alloc(bin.New(0, 0))
		t.root = idx
		t.addCursor = idx
		return idx
	}

	cursor := t.at(t.addCursor)
	if cursor.pos.IsLeft() {
		newRight := t.alloc(cursor.pos.Sibling())
		parIdx := cursor.parent
		if parIdx == nilNode {
			parIdx = t.alloc(bin.New(cursor.pos.Layer()+1, 0))
			t.root = parIdx
		}
		par := t.at(parIdx)
		par.left, par.right = t.addCursor, newRight
		t.nodes[newRight].parent = parIdx
		t.nodes[t.addCursor].parent = parIdx
		t.addCursor = newRight
		return newRight
	}

	// right child: walk up to the first ancestor with a free right
	// slot, growing a new root above the current root as needed, then
	// descend a fresh left-spine back down to depth 0.
	iter := t.addCursor
	for {
		iter = t.at(iter).parent
		if iter == t.root {
			newRoot := t.alloc(bin.New(t.at(iter).pos.Layer()+1, 0))
			t.nodes[newRoot].left = iter
			t.nodes[iter].parent = newRoot
			t.root = newRoot
			iter = newRoot
		}
		if t.at(iter).right == nilNode {
			newRight := t.alloc(t.at(iter).pos.Right())
			t.nodes[iter].right = newRight
			t.nodes[newRight].parent = iter

			depth := t.at(iter).pos.Layer() - 1
			cur := newRight
			for i := 0; i < depth; i++ {
				newLeft := t.alloc(t.at(cur).pos.Left())
				t.nodes[cur].left = newLeft
				t.nodes[newLeft].parent = cur
				cur = newLeft
			}
			t.addCursor = cur
			return cur
		}
		// iter's right slot is occupied; continue walking up
	}
}

// recomputePeaksLocked refreshes the current peak decomposition (bins
// only) from the chunk count, and establishes each peak's hash via a
// post-order fold over the nodes built so far. Peaks that were already
// known (unchanged bin) keep their cached hash; a changed peak set
// triggers ComputeTree for whichever peaks are new.
func (t *Tree) recomputePeaksLocked() {
	newPeaks := bin.Peaks(t.sizeInChunksLocked())
	newHashes := make([]digest.Hash, len(newPeaks))
	for i, p := range newPeaks {
		if j := indexOfBin(t.peaks, p); j >= 0 {
			newHashes[i] = t.peakHashes[j]
			continue
		}
		newHashes[i] = t.computeTreeLocked(p)
	}
	t.peaks, t.peakHashes = newPeaks, newHashes
}

// computeTreeLocked recursively folds a subtree's hash from its leaves
// upward (§4.3's ComputeTree), caching results on each node it visits.
func (t *Tree) computeTreeLocked(pos bin.Bin) digest.Hash {
	idx := t.find(pos)
	if idx == nilNode {
		return digest.ZERO
	}
	n := t.at(idx)
	if n.hasHash {
		return n.hash
	}
	if pos.IsBase() {
		return digest.ZERO
	}
	left := t.computeTreeLocked(pos.Left())
	right := t.computeTreeLocked(pos.Right())
	h := digest.Pair(left, right)
	t.setHash(idx, h)
	n.verified = true
	return h
}

// UpdateSignedPeaks diffs the current peak decomposition against the
// last signed snapshot, signs every newly-surfaced peak, drops
// signatures for peaks absorbed into a higher one, and returns the
// tuples to broadcast as SIGNED_INTEGRITY.
func (t *Tree) UpdateSignedPeaks() ([]bin.Bin, []digest.Hash, []sig.Signature, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	signatures := make([]sig.Signature, len(t.peaks))
	for i, p := range t.peaks {
		if j := indexOfBin(t.signedPeaks, p); j >= 0 {
			signatures[i] = t.signatures[j]
			continue
		}
		s, err := t.keys.Sign(peakSignPayload(p, t.peakHashes[i]))
		if err != nil {
			return nil, nil, nil, err
		}
		signatures[i] = s
	}
	t.signedPeaks = append([]bin.Bin(nil), t.peaks...)
	t.signatures = signatures
	return append([]bin.Bin(nil), t.peaks...), append([]digest.Hash(nil), t.peakHashes...), append([]sig.Signature(nil), signatures...), nil
}

// GetCurrentSignedPeakTuples returns the most recently signed peak
// snapshot, for a late joiner's initial HANDSHAKE response.
func (t *Tree) GetCurrentSignedPeakTuples() ([]bin.Bin, []digest.Hash, []sig.Signature) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]bin.Bin(nil), t.signedPeaks...), append([]digest.Hash(nil), t.peakHashesForLocked(t.signedPeaks)...), append([]sig.Signature(nil), t.signatures...)
}

func (t *Tree) peakHashesForLocked(peaks []bin.Bin) []digest.Hash {
	out := make([]digest.Hash, len(peaks))
	for i, p := range peaks {
		out[i] = t.computeTreeLocked(p)
	}
	return out
}

func indexOfBin(bins []bin.Bin, b bin.Bin) int {
	for i, x := range bins {
		if x == b {
			return i
		}
	}
	return -1
}

// peakSignPayload is the byte string a source signs for a peak tuple:
// the bin's 64-bit wire form followed by its hash.
func peakSignPayload(pos bin.Bin, h digest.Hash) []byte {
	v := pos.Uint64()
	buf := make([]byte, 8+digest.Size)
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * (7 - i)))
	}
	copy(buf[8:], h.Bytes())
	return buf
}
