package merkle

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/libswift/tswift/bin"
	"github.com/libswift/tswift/digest"
)

// HashStore holds one hash per bin value of a tree, dense-indexed the
// same way the reference implementation indexes its mmap'd hash array:
// a bin's own integer encoding (bin.Bin.Uint64) is the array index, so
// no separate layer/offset translation is needed. Capacity must cover
// every peak and interior bin of a tree with up to sizeChunks leaves,
// i.e. indices [0, 2*sizeChunks).
type HashStore interface {
	Get(pos bin.Bin) (digest.Hash, bool)
	Set(pos bin.Bin, h digest.Hash)
	// Resize grows the store to hold every bin of a tree with the given
	// number of leaf chunks. Shrinking is not supported.
	Resize(sizeChunks uint64) error
	Close() error
}

// memHashStore is a plain in-memory HashStore, the default for trees
// built from freshly-submitted content that never need disk-backed
// persistence between process restarts.
type memHashStore struct {
	hashes []digest.Hash
	set    []bool
}

// NewMemHashStore returns an empty in-memory HashStore.
func NewMemHashStore() HashStore {
	return &memHashStore{}
}

func (m *memHashStore) Get(pos bin.Bin) (digest.Hash, bool) {
	i := pos.Uint64()
	if i >= uint64(len(m.hashes)) || !m.set[i] {
		return digest.Hash{}, false
	}
	return m.hashes[i], true
}

func (m *memHashStore) Set(pos bin.Bin, h digest.Hash) {
	i := pos.Uint64()
	if i >= uint64(len(m.hashes)) {
		grown := make([]digest.Hash, i+1)
		copy(grown, m.hashes)
		m.hashes = grown
		growns := make([]bool, i+1)
		copy(growns, m.set)
		m.set = growns
	}
	m.hashes[i] = h
	m.set[i] = true
}

func (m *memHashStore) Resize(sizeChunks uint64) error {
	need := 2 * sizeChunks
	if uint64(len(m.hashes)) < need {
		grown := make([]digest.Hash, need)
		copy(grown, m.hashes)
		m.hashes = grown
		growns := make([]bool, need)
		copy(growns, m.set)
		m.set = growns
	}
	return nil
}

func (m *memHashStore) Close() error { return nil }

// mmapHashStore is the disk-backed HashStore, grounded on the reference
// implementation's memory-mapped .mhash file: one swarm owns exactly one
// mapping, resized and remapped as the tree's peak set (and hence its
// known size) grows. Unlike memHashStore, "has this bin been set" can't
// live in a process-local map — a checkpoint is only useful across a
// process restart, at which point that map would be empty regardless of
// what's actually on disk. So Get/Set instead treat the all-zero
// digest.ZERO as the unset sentinel, relying on a real content hash
// never legitimately landing on all-zero bytes.
type mmapHashStore struct {
	f    *os.File
	data []byte // mmap'd region, len == 2*sizeChunks*digest.Size
}

// OpenMmapHashStore opens (creating if needed) the hash file at path.
func OpenMmapHashStore(path string) (HashStore, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	return &mmapHashStore{f: f}, nil
}

func (m *mmapHashStore) Resize(sizeChunks uint64) error {
	want := int(2 * sizeChunks * digest.Size)
	if len(m.data) >= want {
		return nil
	}
	if m.data != nil {
		if err := unix.Munmap(m.data); err != nil {
			return err
		}
		m.data = nil
	}
	if err := m.f.Truncate(int64(want)); err != nil {
		return err
	}
	data, err := unix.Mmap(int(m.f.Fd()), 0, want, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("merkle: mmap hash store: %w", err)
	}
	m.data = data
	return nil
}

func (m *mmapHashStore) Get(pos bin.Bin) (digest.Hash, bool) {
	i := pos.Uint64()
	off := int(i) * digest.Size
	if off+digest.Size > len(m.data) {
		return digest.Hash{}, false
	}
	h, _ := digest.FromBytes(m.data[off : off+digest.Size])
	if h.IsZero() {
		return digest.Hash{}, false
	}
	return h, true
}

func (m *mmapHashStore) Set(pos bin.Bin, h digest.Hash) {
	i := pos.Uint64()
	off := int(i) * digest.Size
	if off+digest.Size > len(m.data) {
		return
	}
	copy(m.data[off:off+digest.Size], h.Bytes())
}

func (m *mmapHashStore) Close() error {
	var err error
	if m.data != nil {
		err = unix.Munmap(m.data)
		m.data = nil
	}
	if cerr := m.f.Close(); err == nil {
		err = cerr
	}
	return err
}

var _ HashStore = (*memHashStore)(nil)
var _ HashStore = (*mmapHashStore)(nil)
