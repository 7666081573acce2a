package bin

import "fmt"

// Peaks returns the canonical peak decomposition of a content object of
// length chunks, in descending layer order: a smallest forest of complete
// perfect subtrees whose base ranges partition [0, length).
//
// Derivation follows the binary representation of length: a set bit at
// position i yields a peak of layer i, assembled from low bit to high bit
// and then reversed so the result is descending.
func Peaks(length uint64) []Bin {
	var peaks []Bin
	var layer uint8
	var offset = length
	for offset != 0 {
		if offset&1 == 1 {
			peaks = append(peaks, Bin((2*offset-1)<<layer-1))
		}
		offset >>= 1
		layer++
	}
	for i, j := 0, len(peaks)-1; i < j; i, j = i+1, j-1 {
		peaks[i], peaks[j] = peaks[j], peaks[i]
	}
	return peaks
}

// Debug renders b in the "(layer,offset)" reference notation, or "(ALL)"
// / "(NONE)" for the sentinels. Intended for diagnostics only.
func (b Bin) Debug() string {
	switch {
	case b.IsAll():
		return "(ALL)"
	case b.IsNone():
		return "(NONE)"
	default:
		l, o := b.Decompose()
		return fmt.Sprintf("(%d,%d)", l, o)
	}
}
