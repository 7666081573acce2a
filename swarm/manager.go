package swarm

import (
	"errors"
	"os"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/tilinna/clock"

	"github.com/libswift/tswift/log"
)

// ErrNotFound is returned by operations on an unregistered swarm id or
// descriptor.
var ErrNotFound = errors.New("tswift: swarm not found")

const (
	defaultMaxActive     = 100
	removalSweepInterval = 5 * time.Second
	idleSweepInterval    = 1 * time.Second
	removalIdleThreshold = 30 * time.Second
)

// Builder constructs (or reopens) the tree backing a swarm when it is
// activated. The manager calls it with the record's path/chunk size and
// a hint of whether a checkpoint should be trusted; it never builds a
// tree itself, keeping the manager decoupled from which tree kind
// (static or live) a given swarm uses.
type Builder func(rec *Record) (Tree, error)

// Manager implements the swarm lifecycle (§4.4): registration, the
// active-set LRU cap, deferred removal, and idle deactivation.
type Manager struct {
	mu sync.Mutex

	index       *bucketIndex
	descriptors *descriptorTable
	meta        *metaStore
	build       Builder
	clock       clock.Clock

	maxActive int
	active    *lru.Cache // id -> *Record, eviction calls deactivateLocked

	stopC chan struct{}
	wg    sync.WaitGroup
}

// New returns a Manager backed by a LevelDB metadata index at metaPath,
// using build to construct trees on activation.
func New(metaPath string, build Builder) (*Manager, error) {
	meta, err := openMetaStore(metaPath)
	if err != nil {
		return nil, err
	}
	m := &Manager{
		index:       newBucketIndex(),
		descriptors: newDescriptorTable(),
		meta:        meta,
		build:       build,
		clock:       clock.Realtime(),
		maxActive:   defaultMaxActive,
		stopC:       make(chan struct{}),
	}
	m.active, err = lru.NewWithEvict(m.maxActive, m.onEvict)
	if err != nil {
		meta.Close()
		return nil, err
	}
	m.wg.Add(2)
	go m.removalSweepLoop()
	go m.idleSweepLoop()
	return m, nil
}

// Close stops the manager's background sweeps and its metadata store.
func (m *Manager) Close() error {
	close(m.stopC)
	m.wg.Wait()
	return m.meta.Close()
}

// SetMaximumActiveSwarms adjusts the active-set cap; if the new cap is
// smaller than the current active count, the least-recently-used active
// swarms are deactivated until the set fits.
func (m *Manager) SetMaximumActiveSwarms(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxActive = n
	for m.active.Len() > n {
		key, _, ok := m.active.GetOldest()
		if !ok {
			break
		}
		// Remove triggers onEvict, which deactivates the record.
		m.active.Remove(key)
	}
	// Replace the cache so future Add calls enforce the new cap; the
	// remaining (already within-cap) entries move over without
	// triggering eviction.
	newLRU, _ := lru.NewWithEvict(maxOf(n, 1), m.onEvict)
	for _, key := range m.active.Keys() {
		if v, ok := m.active.Peek(key); ok {
			newLRU.Add(key, v)
		}
	}
	m.active = newLRU
}

// GetMaximumActiveSwarms returns the current active-set cap.
func (m *Manager) GetMaximumActiveSwarms() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxActive
}

func maxOf(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// onEvict is the LRU's eviction callback: it deactivates the
// least-recently-used record when a new activation pushes the set over
// its cap. Runs with m.mu already held by the caller (lru.Cache.Add).
func (m *Manager) onEvict(key interface{}, value interface{}) {
	rec := value.(*Record)
	m.deactivateLocked(rec)
}

// AddSwarm registers a swarm (§4.4). If id is zero, the swarm must be
// built (a cached metadata-only registration needs a known id to look
// up); once built, the tree's root hash becomes the id. Duplicate ids
// return the existing record unchanged.
func (m *Manager) AddSwarm(path string, id ID, flags Flags, chunkSize int64) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !id.IsZero() {
		if existing := m.index.Find(id); existing != nil {
			if flags&FlagActivate != 0 {
				if err := m.activateLocked(existing); err != nil {
					return existing, err
				}
			}
			return existing, nil
		}
	}

	rec := &Record{
		ID:        id,
		Path:      path,
		ChunkSize: chunkSize,
		Flags:     flags,
		State:     StateCached,
		LastUse:   m.clock.Now(),
	}

	if !id.IsZero() {
		if cm, ok := m.meta.Get(id); ok {
			rec.Path = cm.Path
			rec.ChunkSize = cm.ChunkSize
			rec.Size = cm.Size
			rec.Complete = cm.Complete
		}
	}

	if flags&FlagActivate != 0 || id.IsZero() {
		if err := m.activateLocked(rec); err != nil {
			return nil, err
		}
		id = rec.ID
	}

	rec.Descriptor = m.descriptors.alloc(rec, m.clock.Now())
	existing := m.index.Insert(rec)
	if existing != rec {
		m.descriptors.free(rec.Descriptor, m.clock.Now())
		return existing, nil
	}
	return rec, nil
}

// FindSwarm looks up a swarm by id.
func (m *Manager) FindSwarm(id ID) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.index.Find(id)
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

// FindSwarmByDescriptor looks up a swarm by integer descriptor.
func (m *Manager) FindSwarmByDescriptor(desc int32) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.descriptors.get(desc)
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

// ActivateSwarm brings a cached swarm into memory, evicting the
// least-recently-used active swarm first if the active cap is exceeded.
func (m *Manager) ActivateSwarm(id ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.index.Find(id)
	if rec == nil {
		return ErrNotFound
	}
	return m.activateLocked(rec)
}

func (m *Manager) activateLocked(rec *Record) error {
	if rec.State == StateActive {
		m.active.Add(rec.ID, rec)
		return nil
	}
	tree, err := m.build(rec)
	if err != nil {
		log.Warn("swarm activation failed", "path", rec.Path, "err", err)
		return err
	}
	rec.Tree = tree
	rec.State = StateActive
	rec.LastUse = m.clock.Now()
	if rec.ID.IsZero() {
		rec.ID = tree.RootHash()
	}
	m.active.Add(rec.ID, rec)
	log.Info("swarm activated", "id", rec.ID.String(), "path", rec.Path)
	return nil
}

// DeactivateSwarm checkpoints and releases a swarm's in-memory tree,
// leaving it registered in cached state.
func (m *Manager) DeactivateSwarm(id ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.index.Find(id)
	if rec == nil {
		return ErrNotFound
	}
	m.active.Remove(rec.ID)
	return m.deactivateLocked(rec)
}

func (m *Manager) deactivateLocked(rec *Record) error {
	if rec.State != StateActive || rec.Tree == nil {
		return nil
	}
	rec.snapshotLocked()
	checkpointPath := rec.Path + ".mbinmap"
	if err := rec.Tree.Checkpoint(checkpointPath); err != nil {
		rec.ForceCheckDisk = true
		log.Error("swarm checkpoint failed, forcing rehash on next activation", "id", rec.ID.String(), "path", checkpointPath, "err", err)
	}
	log.Info("swarm deactivated", "id", rec.ID.String())
	_ = m.meta.Put(rec.ID, cachedMeta{
		Path:      rec.Path,
		ChunkSize: rec.ChunkSize,
		RootHash:  rec.RootHash.String(),
		Size:      rec.Size,
		Complete:  rec.Complete,
		Live:      rec.Flags&FlagLive != 0,
	})
	rec.Tree = nil
	rec.State = StateCached
	return nil
}

// RemoveSwarm flags an active swarm for deferred removal (§4.4); the
// removal sweep fully removes it once idle past removalIdleThreshold. A
// cached swarm is removed immediately.
func (m *Manager) RemoveSwarm(id ID, deleteContent bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.index.Find(id)
	if rec == nil {
		return ErrNotFound
	}
	if rec.State == StateCached {
		m.removeLocked(rec, deleteContent)
		return nil
	}
	rec.pendingRemoval = true
	rec.removalMarked = m.clock.Now()
	rec.removalDeleteContent = deleteContent
	return nil
}

func (m *Manager) removeLocked(rec *Record, deleteContent bool) {
	m.active.Remove(rec.ID)
	m.index.Remove(rec.ID)
	m.descriptors.free(rec.Descriptor, m.clock.Now())
	_ = m.meta.Delete(rec.ID)
	if deleteContent {
		// the content file plus its hash-store and checkpoint sidecars
		_ = os.Remove(rec.Path)
		_ = os.Remove(rec.Path + ".mhash")
		_ = os.Remove(rec.Path + ".mbinmap")
	}
}

func (m *Manager) removalSweepLoop() {
	defer m.wg.Done()
	t := time.NewTicker(removalSweepInterval)
	defer t.Stop()
	for {
		select {
		case <-m.stopC:
			return
		case <-t.C:
			m.sweepRemovals()
		}
	}
}

func (m *Manager) sweepRemovals() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock.Now()
	for _, rec := range m.index.All() {
		if rec.pendingRemoval && now.Sub(rec.removalMarked) >= removalIdleThreshold {
			m.deactivateLocked(rec)
			m.removeLocked(rec, rec.removalDeleteContent)
		}
	}
}

func (m *Manager) idleSweepLoop() {
	defer m.wg.Done()
	t := time.NewTicker(idleSweepInterval)
	defer t.Stop()
	for {
		select {
		case <-m.stopC:
			return
		case <-t.C:
			m.DeactivateIdleSwarms(removalIdleThreshold)
		}
	}
}

// DeactivateIdleSwarms deactivates every active swarm with no recent
// I/O activity, independent of the active-set cap (§4.4's idle sweep).
func (m *Manager) DeactivateIdleSwarms(threshold time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock.Now()
	for _, key := range m.active.Keys() {
		v, ok := m.active.Peek(key)
		if !ok {
			continue
		}
		rec := v.(*Record)
		if now.Sub(rec.LastUse) >= threshold {
			// Remove triggers onEvict, which deactivates rec.
			m.active.Remove(key)
		}
	}
}
