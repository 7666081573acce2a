package livemerkle

import (
	"github.com/libswift/tswift/bin"
	"github.com/libswift/tswift/digest"
	"github.com/libswift/tswift/errs"
	"github.com/libswift/tswift/sig"
)

// OfferHash adds or checks a hash on the client side (§4.3). If no peak
// is known yet that covers pos, the offer is cached as the pending
// candidate peak and returned without error, awaiting a matching
// SIGNED_INTEGRITY. Otherwise the node is created or located and its
// hash is recorded or checked, with verification walked up the uncle
// path to the nearest covering peak.
func (t *Tree) OfferHash(pos bin.Bin, hash digest.Hash) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	peak := t.peakForLocked(pos)
	if peak.IsNone() {
		t.pendingCandidate = pos
		return nil
	}
	return t.createAndVerifyNodeLocked(pos, hash, peak)
}

// OfferData verifies bytes against the tree (via OfferHash) and writes
// it through to storage on success.
func (t *Tree) OfferData(pos bin.Bin, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	peak := t.peakForLocked(pos)
	if peak.IsNone() {
		return errs.ErrUncoveredBin
	}
	if !pos.IsBase() {
		return errs.ErrPrematureData
	}
	h := digest.Sum(data)
	if err := t.createAndVerifyNodeLocked(pos, h, peak); err != nil {
		return err
	}
	off := int64(pos.BaseOffset()) * t.chunkSize
	if _, err := t.store.WriteAt(data, off); err != nil {
		return errs.ErrStorageWriteFailed
	}
	t.ackOut.Set(pos)
	t.complete += int64(len(data))
	return nil
}

// peakForLocked returns the known peak covering pos, or bin.NONE.
func (t *Tree) peakForLocked(pos bin.Bin) bin.Bin {
	for _, p := range t.peaks {
		if p.Contains(pos) {
			return p
		}
	}
	return bin.NONE
}

// createAndVerifyNodeLocked locates or creates pos in the dynamic tree,
// records hash, and walks the uncle path up to peak verifying against
// already-verified ancestors (§4.3's CreateAndVerifyNode). Unlike the
// SMT, "already proven" means node.verified, not ack-out membership,
// since peaks move as the tree grows; a ZERO hash anywhere on the path
// aborts verification rather than signalling end-of-tree.
func (t *Tree) createAndVerifyNodeLocked(pos bin.Bin, hash digest.Hash, peak bin.Bin) error {
	idx := t.growTreeTo(pos)
	n := t.at(idx)
	if n.hasHash && n.verified {
		if n.hash != hash {
			return errs.ErrHashMismatch
		}
		return nil
	}
	t.setHash(idx, hash)

	if pos == peak {
		n.verified = true
		return nil
	}
	if !pos.IsBase() {
		return nil // interior-only offer: stored, not yet verifiable
	}

	cur := idx
	for t.at(cur).pos != peak {
		parentIdx := t.at(cur).parent
		if parentIdx == nilNode {
			return nil // tree doesn't reach the peak yet; wait for more data
		}
		leftIdx, rightIdx := t.at(parentIdx).left, t.at(parentIdx).right
		left, right := t.at(leftIdx), t.at(rightIdx)
		if left == nil || right == nil || !left.hasHash || !right.hasHash {
			return nil // sibling not known yet; wait
		}
		if left.hash.IsZero() || right.hash.IsZero() {
			return errs.ErrZeroPoisoning
		}
		parentHash := digest.Pair(left.hash, right.hash)
		if t.at(parentIdx).hasHash && t.at(parentIdx).hash != parentHash {
			return errs.ErrHashMismatch
		}
		if t.at(parentIdx).verified {
			break
		}
		t.setHash(parentIdx, parentHash)
		cur = parentIdx
	}

	// mark the verified path: pos itself, every ancestor walked above,
	// and their siblings (the uncle path).
	t.at(idx).verified = true
	walk := idx
	for t.at(walk).pos != peak {
		p := t.at(walk).parent
		if p == nilNode {
			break
		}
		t.at(p).verified = true
		sib := t.at(p).left
		if sib == walk {
			sib = t.at(p).right
		}
		if sib != nilNode {
			t.at(sib).verified = true
		}
		walk = p
	}
	return nil
}

// OfferSignedPeakHash verifies sig over pos/hash under the swarm public
// key (§4.3). On success, pos is integrated into the peak set, subsuming
// (removing) any prior peaks it contains, possibly promoting a new root.
// A bin that doesn't match the cached pending candidate is a
// message-mixup and is rejected without touching the peak set.
func (t *Tree) OfferSignedPeakHash(pos bin.Bin, hash digest.Hash, sigv sig.Signature) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.pendingCandidate.IsNone() && t.pendingCandidate != pos {
		return errs.ErrMessageMixup
	}
	if !t.keys.Verify(peakSignPayload(pos, hash), sigv) {
		return errs.ErrSignatureInvalid
	}

	idx := t.growTreeTo(pos)
	t.setHash(idx, hash)
	t.nodes[idx].verified = true

	kept := t.peaks[:0:0]
	keptHashes := t.peakHashes[:0:0]
	for i, p := range t.peaks {
		if pos.Contains(p) {
			continue // absorbed into the new peak
		}
		kept = append(kept, p)
		keptHashes = append(keptHashes, t.peakHashes[i])
	}
	kept = append(kept, pos)
	keptHashes = append(keptHashes, hash)
	t.peaks, t.peakHashes = sortPeaksByOffset(kept, keptHashes)

	if end := pos.BaseOffset() + pos.BaseLength(); int64(end)*t.chunkSize > t.sizeBytes {
		t.sizeBytes = int64(end) * t.chunkSize
	}
	t.pendingCandidate = bin.NONE
	if t.discardWindow > 0 {
		t.pruneLocked(t.headChunk)
	}
	return nil
}

// sortPeaksByOffset restores the canonical descending-layer,
// ascending-offset peak order after subsumption mutates the set.
func sortPeaksByOffset(peaks []bin.Bin, hashes []digest.Hash) ([]bin.Bin, []digest.Hash) {
	for i := 1; i < len(peaks); i++ {
		for j := i; j > 0 && peaks[j].BaseOffset() < peaks[j-1].BaseOffset(); j-- {
			peaks[j], peaks[j-1] = peaks[j-1], peaks[j]
			hashes[j], hashes[j-1] = hashes[j-1], hashes[j]
		}
	}
	return peaks, hashes
}
