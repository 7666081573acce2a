// Package livemerkle implements the unified/live Merkle hash tree (UMT,
// §5): a tree that grows as new data arrives instead of being bounded by
// a known-in-advance root. A source appends data and signs new peak
// tuples as they form; a client accepts those signed peaks and verifies
// incoming hash/data offers against whichever peak currently covers
// them, discarding old tree structure past a configurable window.
package livemerkle
