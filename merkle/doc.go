// Package merkle implements the static Merkle hash tree (SMT) that
// verifies bulk (non-live) content against a single known root hash:
// peak-hash offers fold to the root, interior hash offers verify along
// an ack'd or peak-adjacent path, and leaf data offers verify-then-write
// through to storage. See livemerkle for the live/growing counterpart.
package merkle
