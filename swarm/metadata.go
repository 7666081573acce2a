package swarm

import (
	"encoding/json"

	"github.com/syndtr/goleveldb/leveldb"
)

// cachedMeta is the durable record a cached (not-activated) swarm keeps
// on disk so AddSwarm's metadata-only path (§4.4 step 1) doesn't need to
// rebuild a tree just to answer Size/Complete/RootHash queries.
type cachedMeta struct {
	Path      string `json:"path"`
	ChunkSize int64  `json:"chunk_size"`
	RootHash  string `json:"root_hash"`
	Size      int64  `json:"size"`
	Complete  int64  `json:"complete"`
	Live      bool   `json:"live"`
}

// metaStore persists cachedMeta keyed by swarm id in a LevelDB database,
// the same storage engine the teacher's dependency tree already commits
// to for its own state databases.
type metaStore struct {
	db *leveldb.DB
}

func openMetaStore(path string) (*metaStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &metaStore{db: db}, nil
}

func (m *metaStore) Close() error { return m.db.Close() }

func (m *metaStore) Put(id ID, meta cachedMeta) error {
	b, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return m.db.Put(id[:], b, nil)
}

func (m *metaStore) Get(id ID) (cachedMeta, bool) {
	b, err := m.db.Get(id[:], nil)
	if err != nil {
		return cachedMeta{}, false
	}
	var meta cachedMeta
	if json.Unmarshal(b, &meta) != nil {
		return cachedMeta{}, false
	}
	return meta, true
}

func (m *metaStore) Delete(id ID) error {
	return m.db.Delete(id[:], nil)
}
