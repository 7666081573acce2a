package swarm

import (
	"path/filepath"
	"testing"

	"github.com/libswift/tswift/digest"
)

// fakeTree is a minimal Tree stub for exercising the manager without a
// real merkle/livemerkle tree behind it.
type fakeTree struct {
	root     digest.Hash
	size     int64
	complete int64
}

func (f *fakeTree) RootHash() digest.Hash          { return f.root }
func (f *fakeTree) Size() int64                    { return f.size }
func (f *fakeTree) IsComplete() bool               { return f.complete == f.size }
func (f *fakeTree) Complete() int64                { return f.complete }
func (f *fakeTree) SeqComplete(offset int64) int64 { return f.complete }
func (f *fakeTree) Checkpoint(path string) error   { return nil }

func idFromByte(b byte) ID {
	var h digest.Hash
	h[0] = b
	return h
}

func newTestManager(t *testing.T, build Builder) *Manager {
	t.Helper()
	dir := t.TempDir()
	m, err := New(filepath.Join(dir, "meta.ldb"), build)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

// S6: AddSwarm(f1, id) then AddSwarm(f2, id) returns the same record, the
// index stays sorted, and the descriptor of the second call equals the
// descriptor of the first.
func TestAddSwarmDuplicateReturnsExistingRecord(t *testing.T) {
	build := func(rec *Record) (Tree, error) {
		return &fakeTree{root: rec.ID, size: 100, complete: 100}, nil
	}
	m := newTestManager(t, build)

	id := idFromByte(0x42)
	first, err := m.AddSwarm("/tmp/content-a", id, 0, 1024)
	if err != nil {
		t.Fatalf("first AddSwarm: %v", err)
	}

	second, err := m.AddSwarm("/tmp/content-a-dup", id, FlagActivate, 2048)
	if err != nil {
		t.Fatalf("second AddSwarm: %v", err)
	}

	if first != second {
		t.Fatalf("expected the same record, got distinct records %p vs %p", first, second)
	}
	if first.Descriptor != second.Descriptor {
		t.Fatalf("descriptors differ: %d vs %d", first.Descriptor, second.Descriptor)
	}
	if first.ChunkSize != 1024 {
		t.Fatalf("duplicate add must not overwrite the original record's fields, got chunk size %d", first.ChunkSize)
	}

	found, err := m.FindSwarm(id)
	if err != nil {
		t.Fatalf("FindSwarm: %v", err)
	}
	if found != first {
		t.Fatalf("index lookup returned a different record than AddSwarm")
	}

	all := m.index.All()
	if len(all) != 1 {
		t.Fatalf("expected exactly one indexed record after a duplicate add, got %d", len(all))
	}
}

// S7: with maxActive=2, activating three swarms in turn deactivates the
// least-recently-used one; its Size/Complete queries still answer
// correctly afterward via cached metadata.
func TestActivationCapEvictsLeastRecentlyUsed(t *testing.T) {
	sizes := map[ID]int64{
		idFromByte(0x01): 10,
		idFromByte(0x02): 20,
		idFromByte(0x03): 30,
	}
	build := func(rec *Record) (Tree, error) {
		return &fakeTree{root: rec.ID, size: sizes[rec.ID], complete: sizes[rec.ID]}, nil
	}
	m := newTestManager(t, build)
	m.SetMaximumActiveSwarms(2)

	a, err := m.AddSwarm("/tmp/a", idFromByte(0x01), FlagActivate, 512)
	if err != nil {
		t.Fatalf("AddSwarm a: %v", err)
	}
	if _, err := m.AddSwarm("/tmp/b", idFromByte(0x02), FlagActivate, 512); err != nil {
		t.Fatalf("AddSwarm b: %v", err)
	}
	if _, err := m.AddSwarm("/tmp/c", idFromByte(0x03), FlagActivate, 512); err != nil {
		t.Fatalf("AddSwarm c: %v", err)
	}

	if a.State != StateCached {
		t.Fatalf("expected the least-recently-used swarm a to be deactivated, got state %v", a.State)
	}
	if a.Tree != nil {
		t.Fatalf("deactivated record must not retain its tree")
	}
	if a.Size != 10 || a.Complete != 10 {
		t.Fatalf("deactivated record's snapshot fields wrong: size=%d complete=%d", a.Size, a.Complete)
	}

	c, err := m.FindSwarm(idFromByte(0x03))
	if err != nil {
		t.Fatalf("FindSwarm c: %v", err)
	}
	if c.State != StateActive {
		t.Fatalf("expected the most recently added swarm c to remain active, got state %v", c.State)
	}

	if m.active.Len() != 2 {
		t.Fatalf("expected active set to hold exactly 2 entries, got %d", m.active.Len())
	}

	// Size/Complete on the cached swarm must still answer correctly,
	// either from the record's snapshot or by reactivating it.
	reread, err := m.FindSwarm(idFromByte(0x01))
	if err != nil {
		t.Fatalf("FindSwarm a after eviction: %v", err)
	}
	if reread.Size != 10 {
		t.Fatalf("cached swarm a's Size query wrong after eviction: got %d want 10", reread.Size)
	}
}
