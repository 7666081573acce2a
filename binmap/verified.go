package binmap

import "github.com/libswift/tswift/bin"

// VerifiedSet tracks interior (and leaf) bins whose hash has already been
// confirmed on a root-to-leaf path, so repeated OfferHash calls for the
// same position can short-circuit (§3.5). Unlike BinMap, membership is by
// exact bin value, not by base range — an interior bin here means "this
// node's hash is proven", not "every leaf beneath it is filled".
type VerifiedSet struct {
	set map[bin.Bin]struct{}
}

// NewVerifiedSet returns an empty VerifiedSet.
func NewVerifiedSet() *VerifiedSet {
	return &VerifiedSet{set: make(map[bin.Bin]struct{})}
}

// Set marks b as verified.
func (v *VerifiedSet) Set(b bin.Bin) { v.set[b] = struct{}{} }

// IsEmpty reports whether b has not been marked verified. The name
// mirrors the BinMap method it replaces at call sites that used to abuse
// binmap-as-bitmap (see the package comment in binmap.go).
func (v *VerifiedSet) IsEmpty(b bin.Bin) bool {
	_, ok := v.set[b]
	return !ok
}

// Clear forgets that b was verified.
func (v *VerifiedSet) Clear(b bin.Bin) { delete(v.set, b) }

// Len reports how many bins are currently marked verified.
func (v *VerifiedSet) Len() int { return len(v.set) }
