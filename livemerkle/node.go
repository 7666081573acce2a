package livemerkle

import (
	"github.com/libswift/tswift/bin"
	"github.com/libswift/tswift/digest"
)

// nodeIndex indexes into Tree.nodes; nilNode means "no node". An arena of
// indices is used instead of raw pointers so the whole tree can be
// pruned (§5 discard window) by simply dropping entries, without needing
// a garbage collector pass over a pointer graph.
type nodeIndex int32

const nilNode nodeIndex = -1

type node struct {
	parent, left, right nodeIndex
	pos                 bin.Bin
	hash                digest.Hash
	hasHash             bool

	// verified marks a node whose hash is locally known good: computed
	// directly (source leaves) or established by a signed-peak walk
	// (client). Unlike the SMT's VerifiedSet, this does not survive a
	// peak being replaced by a higher one (§4.3's verification quirk).
	verified bool
}

// alloc appends a fresh node for pos and returns its index.
func (t *Tree) alloc(pos bin.Bin) nodeIndex {
	idx := nodeIndex(len(t.nodes))
	t.nodes = append(t.nodes, node{parent: nilNode, left: nilNode, right: nilNode, pos: pos})
	t.byBin[pos] = idx
	return idx
}

func (t *Tree) at(i nodeIndex) *node {
	if i == nilNode {
		return nil
	}
	return &t.nodes[i]
}

func (t *Tree) setHash(i nodeIndex, h digest.Hash) {
	t.nodes[i].hash = h
	t.nodes[i].hasHash = true
}

// find returns the node index for pos, or nilNode.
func (t *Tree) find(pos bin.Bin) nodeIndex {
	if i, ok := t.byBin[pos]; ok {
		return i
	}
	return nilNode
}

// growTreeTo finds the node for pos, creating whatever ancestors and
// siblings are needed along the way, including a new root when pos lies
// outside the current tree's coverage (§4.3 client OfferHash/
// CreateAndVerifyNode). Ported from the reference client-side find loop.
func (t *Tree) growTreeTo(pos bin.Bin) nodeIndex {
	if t.root == nilNode {
		idx := t.alloc(pos)
		t.root = idx
		return idx
	}

	iter := t.root
	parent := nilNode
	for {
		if iter == nilNode {
			p := t.at(parent)
			var idx nodeIndex
			if pos.Uint64() < p.pos.Uint64() {
				idx = t.alloc(p.pos.Left())
				t.nodes[parent].left = idx
			} else {
				idx = t.alloc(p.pos.Right())
				t.nodes[parent].right = idx
			}
			t.nodes[idx].parent = parent
			iter = idx
		} else if !t.at(iter).pos.Contains(pos) {
			newRoot := t.alloc(t.at(iter).pos.Parent())
			if pos.LayerOffset() < t.at(iter).pos.LayerOffset() {
				t.nodes[newRoot].right = iter
			} else {
				t.nodes[newRoot].left = iter
			}
			t.nodes[iter].parent = newRoot
			t.root = newRoot
			iter = newRoot
		}

		if t.at(iter).pos == pos {
			return iter
		}
		if pos.Uint64() < t.at(iter).pos.Uint64() {
			parent = iter
			iter = t.at(iter).left
		} else {
			parent = iter
			iter = t.at(iter).right
		}
	}
}
