package merkle

import (
	"github.com/libswift/tswift/bin"
	"github.com/libswift/tswift/binmap"
	"github.com/libswift/tswift/digest"
	"github.com/libswift/tswift/errs"
)

// deriveRoot folds a descending-layer peak list right-to-left into a
// single root hash: a left peak rises with an implicit ZERO right
// sibling (the ragged top of the smallest covering forest); a right peak
// must be matched by the previously-folded peak sitting at its sibling
// position, or the fold fails.
func deriveRoot(peaks []bin.Bin, peakHashes []digest.Hash) (digest.Hash, bool) {
	if len(peaks) == 0 {
		return digest.Hash{}, false
	}
	c := len(peaks) - 1
	p := peaks[c]
	hash := peakHashes[c]
	c--
	for c >= 0 {
		if p.IsLeft() {
			p = p.Parent()
			hash = digest.Pair(hash, digest.ZERO)
		} else {
			if peaks[c] != p.Sibling() {
				return digest.Hash{}, false
			}
			hash = digest.Pair(peakHashes[c], hash)
			p = p.Parent()
			c--
		}
	}
	return hash, true
}

func (t *Tree) deriveRootLocked() digest.Hash {
	h, _ := deriveRoot(t.peaks, t.peakHashes)
	return h
}

// OfferPeakHash accepts one peak of the canonical descending-layer,
// contiguous-base peak sequence for this tree's content (§4.2). Once the
// accumulated peaks fold to the tree's expected root hash, the tree's
// size is committed and its storage and hash store are sized to match.
//
// Unlike the reference implementation, a peak that breaks the
// contiguity/ordering invariant is rejected before it is appended (not
// appended and then silently reset on the next call): bad-peak-sequence
// is a caller-observable failure, not a recoverable internal reset.
func (t *Tree) OfferPeakHash(pos bin.Bin, hash digest.Hash) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.offerPeakHashLocked(pos, hash)
}

func (t *Tree) offerPeakHashLocked(pos bin.Bin, hash digest.Hash) error {
	if n := len(t.peaks); n > 0 {
		last := t.peaks[n-1]
		if pos.Layer() >= last.Layer() || pos.BaseOffset() != last.BaseOffset()+last.BaseLength() {
			return errs.ErrBadPeakSequence
		}
	}

	candidatePeaks := append(append([]bin.Bin(nil), t.peaks...), pos)
	candidateHashes := append(append([]digest.Hash(nil), t.peakHashes...), hash)
	t.peaks, t.peakHashes = candidatePeaks, candidateHashes

	root, ok := deriveRoot(candidatePeaks, candidateHashes)
	if !ok {
		// the fold isn't complete yet (more peaks still expected); the
		// peak is accepted and the tree waits for the rest
		return nil
	}
	if !t.rootHash.IsZero() && root != t.rootHash {
		return errs.ErrRootMismatch
	}
	if t.rootHash.IsZero() {
		t.rootHash = root
	}
	t.commitSizeLocked()
	return nil
}

// commitSizeLocked is called once the accumulated peaks fold to the
// known root: the chunk-rounded size becomes known, storage is resized
// to fit, and the hash store is sized to cover every bin of this tree.
func (t *Tree) commitSizeLocked() {
	var sizeChunks uint64
	for _, p := range t.peaks {
		sizeChunks += p.BaseLength()
	}
	t.sizeChunks = sizeChunks
	if t.sizeBytes == 0 {
		t.sizeBytes = int64(sizeChunks) * t.chunkSize
	}
	t.complete, t.completeChunks = 0, 0
	t.ackOut = binmap.New(sizeChunks)
	_ = t.hashes.Resize(sizeChunks)
	for i, p := range t.peaks {
		t.hashes.Set(p, t.peakHashes[i])
	}
}

// peakFor returns the peak covering pos, or bin.NONE if pos lies
// outside every known peak.
func (t *Tree) peakFor(pos bin.Bin) bin.Bin {
	for _, p := range t.peaks {
		if p.Contains(pos) {
			return p
		}
	}
	return bin.NONE
}

// OfferHash verifies hash for pos against the known peaks and previously
// verified ancestors (§4.3), walking upward from a leaf to establish a
// new verified path when possible.
func (t *Tree) OfferHash(pos bin.Bin, hash digest.Hash) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.offerHashLocked(pos, hash)
}

func (t *Tree) offerHashLocked(pos bin.Bin, hash digest.Hash) error {
	if t.sizeChunks == 0 {
		// only peak hashes are accepted before the size is known
		return t.offerPeakHashLocked(pos, hash)
	}

	peak := t.peakFor(pos)
	if peak.IsNone() {
		return errs.ErrUncoveredBin
	}
	if peak == pos {
		stored, _ := t.hashes.Get(pos)
		if hash != stored {
			return errs.ErrHashMismatch
		}
		return nil
	}
	if !t.ackOut.IsEmpty(pos.Parent()) {
		stored, _ := t.hashes.Get(pos)
		if hash != stored {
			return errs.ErrHashMismatch
		}
		return nil
	}
	if !t.verified.IsEmpty(pos) {
		stored, _ := t.hashes.Get(pos)
		if hash != stored {
			return errs.ErrHashMismatch
		}
		return nil
	}

	t.hashes.Set(pos, hash)
	if !pos.IsBase() {
		return nil // interior-only offer: stored, not yet verifiable
	}

	p := pos
	uphash := hash
	zeroPoisoned := false
	for p != peak && t.ackOut.IsEmpty(p) && t.verified.IsEmpty(p) {
		t.hashes.Set(p, uphash)
		p = p.Parent()
		left, _ := t.hashes.Get(p.Left())
		right, _ := t.hashes.Get(p.Right())
		if left.IsZero() || right.IsZero() {
			zeroPoisoned = true
			break
		}
		uphash = digest.Pair(left, right)
	}

	stored, _ := t.hashes.Get(p)
	if uphash != stored {
		if zeroPoisoned {
			return errs.ErrZeroPoisoning
		}
		return errs.ErrHashMismatch
	}

	// mark the uncle path (sibling of every ancestor up to the peak)
	// and the direct path to the peak as verified, so future offers in
	// this range can stop early.
	walk := pos
	t.verified.Set(walk)
	for walk.Layer() != peak.Layer() {
		walk = walk.Parent().Sibling()
		t.verified.Set(walk)
	}
	walk = pos
	for walk != peak {
		walk = walk.Parent()
		t.verified.Set(walk)
	}
	return nil
}

// OfferData verifies bytes against the tree (via OfferHash) and, on
// success, writes it through to storage and advances the completion
// counters (§4.4). It is idempotent: offering data for an already-acked
// bin returns nil without rehashing.
func (t *Tree) OfferData(pos bin.Bin, bytes []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sizeChunks == 0 {
		return errs.ErrPrematureData
	}
	if !pos.IsBase() {
		return errs.ErrPrematureData
	}
	if int64(len(bytes)) < t.chunkSize && pos.BaseOffset() != t.sizeChunks-1 {
		return errs.ErrPrematureData
	}
	if t.ackOut.IsFilled(pos) {
		return nil
	}
	peak := t.peakFor(pos)
	if peak.IsNone() {
		return errs.ErrUncoveredBin
	}

	dataHash := digest.Sum(bytes)
	if err := t.offerHashLocked(pos, dataHash); err != nil {
		return err
	}

	t.ackOut.Set(pos)
	if _, err := t.store.WriteAt(bytes, int64(pos.BaseOffset())*t.chunkSize); err != nil {
		return errs.ErrStorageWriteFailed
	}
	t.complete += int64(len(bytes))
	t.completeChunks++
	if pos.BaseOffset() == t.sizeChunks-1 {
		t.sizeBytes = int64(pos.BaseOffset())*t.chunkSize + int64(len(bytes))
	}
	return nil
}

// SeqComplete returns the number of content bytes that are sequentially
// complete starting from offset (§4.5): the distance to the first empty
// base bin at or after offset, or the full size if none is empty.
func (t *Tree) SeqComplete(offset int64) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sizeChunks == 0 {
		return 0
	}
	if offset == 0 {
		empty := t.ackOut.FindEmpty(bin.New(0, 0))
		if empty == bin.NONE || empty.BaseOffset() == t.sizeChunks {
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
