// Package binmap implements a compact set of bins (§3.5) with the
// is_filled / is_empty / find_empty / find_complement semantics a static
// or live Merkle tree uses to track which base bins have verified,
// written chunk data ("ack-out").
//
// The design notes call out a source bug-watch worth avoiding: the
// reference implementation reuses a single binmap type both for the
// base-bin ack-out set and, aliased through a synthetic leaf
// bin(0, interiorBinValue), for the set of interior hashes already
// verified. We keep those as two distinct types instead (BinMap here,
// and the VerifiedSet in this same package for the latter) so a
// VerifiedSet entry can never be mistaken for an acked chunk.
package binmap

import "github.com/libswift/tswift/bin"

const wordBits = 64

// BinMap is a growable set of base (layer-0) bins.
type BinMap struct {
	words []uint64 // word i holds bits for base offsets [64i, 64i+64)
	size  uint64    // number of base bins the map has been sized for
}

// New returns an empty BinMap able to represent at least size base bins.
func New(size uint64) *BinMap {
	m := &BinMap{size: size}
	m.growTo(size)
	return m
}

func (m *BinMap) growTo(size uint64) {
	need := (size + wordBits - 1) / wordBits
	if uint64(len(m.words)) < need {
		grown := make([]uint64, need)
		copy(grown, m.words)
		m.words = grown
	}
	if size > m.size {
		m.size = size
	}
}

// Set marks every base bin under b as filled, growing the map if needed.
// b may be an interior bin, in which case its whole base range is set.
func (m *BinMap) Set(b bin.Bin) {
	left, right := b.BaseLeft().LayerOffset(), b.BaseRight().LayerOffset()
	m.growTo(right + 1)
	for i := left; i <= right; i++ {
		m.words[i/wordBits] |= 1 << (i % wordBits)
	}
}

// Clear unmarks every base bin under b.
func (m *BinMap) Clear(b bin.Bin) {
	left, right := b.BaseLeft().LayerOffset(), b.BaseRight().LayerOffset()
	for i := left; i <= right && i/wordBits < uint64(len(m.words)); i++ {
		m.words[i/wordBits] &^= 1 << (i % wordBits)
	}
}

func (m *BinMap) baseBit(offset uint64) bool {
	w := offset / wordBits
	if w >= uint64(len(m.words)) {
		return false
	}
	return m.words[w]&(1<<(offset%wordBits)) != 0
}

// IsFilled reports whether every base bin under b is set.
func (m *BinMap) IsFilled(b bin.Bin) bool {
	left, right := b.BaseLeft().LayerOffset(), b.BaseRight().LayerOffset()
	for i := left; i <= right; i++ {
		if !m.baseBit(i) {
			return false
		}
	}
	return true
}

// IsEmpty reports whether no base bin under b is set.
func (m *BinMap) IsEmpty(b bin.Bin) bool {
	left, right := b.BaseLeft().LayerOffset(), b.BaseRight().LayerOffset()
	for i := left; i <= right; i++ {
		if m.baseBit(i) {
			return false
		}
	}
	return true
}

// FindEmpty returns the lowest-offset unset base bin at or after start,
// or bin.NONE if the map is full up to its current size.
func (m *BinMap) FindEmpty(start bin.Bin) bin.Bin {
	from := start.BaseLeft().LayerOffset()
	for i := from; i < m.size; i++ {
		if !m.baseBit(i) {
			return bin.New(0, i)
		}
	}
	return bin.NONE
}

// FindComplement returns the lowest-offset base bin within the window
// under scope that is set in m but unset in other — i.e. a bin this map
// has and the other does not, used by HAVE/rarest-bin selection logic
// layered on top of this package.
func (m *BinMap) FindComplement(scope bin.Bin, other *BinMap) bin.Bin {
	left, right := scope.BaseLeft().LayerOffset(), scope.BaseRight().LayerOffset()
	for i := left; i <= right; i++ {
		if m.baseBit(i) && !other.baseBit(i) {
			return bin.New(0, i)
		}
	}
	return bin.NONE
}

// IsFull reports whether every base bin up to the map's current size is set.
func (m *BinMap) IsFull() bool {
	return m.FindEmpty(bin.New(0, 0)) == bin.NONE
}

// Size returns the number of base bins the map has been sized for.
func (m *BinMap) Size() uint64 { return m.size }

// Words returns the map's backing bit-words, for checkpoint
// serialization. Callers must treat the result as read-only.
func (m *BinMap) Words() []uint64 { return m.words }

// FromWords reconstructs a BinMap from a size and word slice previously
// obtained from Words, as when restoring a checkpoint.
func FromWords(size uint64, words []uint64) *BinMap {
	return &BinMap{size: size, words: words}
}
