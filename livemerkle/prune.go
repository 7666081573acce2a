package livemerkle

import "github.com/libswift/tswift/bin"

// PruneTree disconnects the subtree rooted at pos from its parent and
// discards it (§4.3): used by both roles to honour the discard window.
// It is a no-op if pos is not currently part of the tree.
func (t *Tree) PruneTree(pos bin.Bin) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := t.find(pos)
	if idx == nilNode {
		return nil
	}
	t.disconnectLocked(idx)
	return nil
}

// disconnectLocked recursively drops idx's subtree from byBin and
// unlinks it from its parent. The freed node structs remain in the
// backing arena (unreachable, but not reclaimed) until the arena is
// next rebuilt; see DESIGN.md's note on this tradeoff.
func (t *Tree) disconnectLocked(idx nodeIndex) {
	n := t.at(idx)
	if n.left != nilNode {
		t.disconnectLocked(n.left)
	}
	if n.right != nilNode {
		t.disconnectLocked(n.right)
	}
	delete(t.byBin, n.pos)
	if p := n.parent; p != nilNode {
		par := t.at(p)
		if par.left == idx {
			par.left = nilNode
		}
		if par.right == idx {
			par.right = nilNode
		}
	}
	if idx == t.root {
		t.root = nilNode
	}
}

// pruneLocked drops every known peak whose entire base range lies more
// than discardWindow chunks behind headChunk.
func (t *Tree) pruneLocked(headChunk uint64) {
	if headChunk < t.discardWindow {
		return
	}
	cutoff := headChunk - t.discardWindow
	for _, p := range t.peaks {
		if p.BaseOffset()+p.BaseLength() <= cutoff {
			if idx := t.find(p); idx != nilNode {
				t.disconnectLocked(idx)
			}
		}
	}
}
