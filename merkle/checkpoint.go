package merkle

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/libswift/tswift/bin"
	"github.com/libswift/tswift/binmap"
	"github.com/libswift/tswift/digest"
	"github.com/libswift/tswift/errs"
	"github.com/libswift/tswift/storage"
)

// checkpointVersion is bumped whenever the .mbinmap layout changes.
const checkpointVersion = 1

// Checkpoint writes the tree's ack-out state to path (the reference
// implementation's ".mbinmap" file): a short text prologue (version,
// root hash, chunk size, completion counters) followed by the
// serialized ack-out binmap. Deactivating a swarm calls this so the
// next activation can skip rehashing its content from disk.
func (t *Tree) Checkpoint(path string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.Create(path)
	if err != nil {
		return errs.ErrStorageWriteFailed
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "version %d\n", checkpointVersion)
	fmt.Fprintf(w, "root hash %s\n", t.rootHash.String())
	fmt.Fprintf(w, "chunk size %d\n", t.chunkSize)
	fmt.Fprintf(w, "complete %d\n", t.complete)
	fmt.Fprintf(w, "completec %d\n", t.completeChunks)
	if err := writeBinMap(w, t.ackOut); err != nil {
		return errs.ErrStorageWriteFailed
	}
	if err := w.Flush(); err != nil {
		return errs.ErrStorageWriteFailed
	}
	return nil
}

// LoadCheckpoint recreates a tree from a prologue + ack-out binmap
// written by Checkpoint, without rereading content. The caller supplies
// store/hashes once the size has been recovered, matching the
// reference's RecoverPeakHashes step. Both modes read the prologue (root
// hash and completion counters) and the ack-out binmap; recoverHashes
// controls whether peak hashes are then rebuilt from the hash store (full
// activation) or skipped (metadata-only activation, e.g. for a
// cached-but-inactive swarm's listing).
//
// On any inconsistency it returns ErrCheckpointCorrupt. When the prologue
// and binmap read cleanly but peak-hash recovery fails, the returned tree
// also has forceCheckDisk set; nothing in this package reads that field.
func LoadCheckpoint(path string, chunkSize int64, store storage.Store, hashes HashStore, recoverHashes bool) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.ErrCheckpointCorrupt
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var version int
	var rootHex string
	var cs, complete, completeChunks int64

	if _, err := fmt.Fscanf(r, "version %d\n", &version); err != nil {
		return nil, errs.ErrCheckpointCorrupt
	}
	if _, err := fmt.Fscanf(r, "root hash %s\n", &rootHex); err != nil {
		return nil, errs.ErrCheckpointCorrupt
	}
	if _, err := fmt.Fscanf(r, "chunk size %d\n", &cs); err != nil {
		return nil, errs.ErrCheckpointCorrupt
	}
	if _, err := fmt.Fscanf(r, "complete %d\n", &complete); err != nil {
		return nil, errs.ErrCheckpointCorrupt
	}
	if _, err := fmt.Fscanf(r, "completec %d\n", &completeChunks); err != nil {
		return nil, errs.ErrCheckpointCorrupt
	}

	root, err := digest.FromHex(rootHex)
	if err != nil {
		return nil, errs.ErrCheckpointCorrupt
	}

	ackOut, err := readBinMap(r)
	if err != nil {
		return nil, errs.ErrCheckpointCorrupt
	}

	t := &Tree{
		store:          store,
		hashes:         hashes,
		chunkSize:      cs,
		rootHash:       root,
		ackOut:         ackOut,
		verified:       binmap.NewVerifiedSet(),
		complete:       complete,
		completeChunks: uint64(completeChunks),
	}
	if store != nil {
		t.sizeBytes = store.Size()
		t.sizeChunks = uint64((t.sizeBytes + cs - 1) / cs)
	}

	if !recoverHashes {
		return t, nil
	}

	if err := t.recoverPeakHashesLocked(); err != nil {
		t.forceCheckDisk = true
		return t, errs.ErrCheckpointCorrupt
	}
	return t, nil
}

// recoverPeakHashesLocked rebuilds peaks/peakHashes by walking bin.Peaks
// for the known chunk count and reading each peak's hash back out of the
// hash store, failing if any is missing.
func (t *Tree) recoverPeakHashesLocked() error {
	if t.sizeChunks == 0 {
		return nil
	}
	peaks := bin.Peaks(t.sizeChunks)
	hashes := make([]digest.Hash, len(peaks))
	for i, p := range peaks {
		h, ok := t.hashes.Get(p)
		if !ok {
			return errs.ErrCheckpointCorrupt
		}
		hashes[i] = h
	}
	t.peaks, t.peakHashes = peaks, hashes
	return nil
}

func writeBinMap(w io.Writer, m *binmap.BinMap) error {
	if err := binary.Write(w, binary.LittleEndian, m.Size()); err != nil {
		return err
	}
	words := m.Words()
	if err := binary.Write(w, binary.LittleEndian, uint64(len(words))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, words)
}

func readBinMap(r io.Reader) (*binmap.BinMap, error) {
	var size, nwords uint64
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &nwords); err != nil {
		return nil, err
	}
	words := make([]uint64, nwords)
	if err := binary.Read(r, binary.LittleEndian, words); err != nil {
		return nil, err
	}
	return binmap.FromWords(size, words), nil
}
