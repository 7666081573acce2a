package main

import (
	"context"
	"os"

	"github.com/libswift/tswift/config"
	"github.com/libswift/tswift/digest"
	"github.com/libswift/tswift/livemerkle"
	"github.com/libswift/tswift/merkle"
	"github.com/libswift/tswift/sig"
	"github.com/libswift/tswift/storage"
	"github.com/libswift/tswift/swarm"
)

// checkpointSuffix/hashStoreSuffix name the two on-disk files a static
// swarm's activation may find next to its content: the ack-out
// checkpoint swarm/manager.go writes on every deactivation, and the
// mmap'd hash store that makes recovering peaks from it possible
// without rereading and rehashing the whole file.
const (
	checkpointSuffix = ".mbinmap"
	hashStoreSuffix  = ".mhash"
)

// newBuilder returns the swarm.Builder this tool hands to swarm.New: a
// static swarm (rec.Flags&FlagLive == 0) is built by buildStaticTree,
// from its checkpoint when usable and otherwise by rehashing its
// on-disk content, while a live swarm is
// opened as a growing livemerkle.Source the caller appends to with
// AddData. Which tree kind a record gets is decided once, at AddSwarm
// time, by the -live flag; the builder only has to honor it on every
// later activation.
func newBuilder(cfg *config.Config) swarm.Builder {
	return func(rec *swarm.Record) (swarm.Tree, error) {
		if rec.Flags&swarm.FlagLive != 0 {
			store, err := storage.OpenSingleFile(rec.Path, -1)
			if err != nil {
				return nil, err
			}
			keys := sig.NewDummy(sourceIdentity(rec.Path))
			return livemerkle.NewSource(rec.ChunkSize, store, keys, cfg.ChunksPerSignature, cfg.DiscardWindow), nil
		}
		return buildStaticTree(rec)
	}
}

// buildStaticTree reactivates a static swarm from its checkpoint when
// one exists and disk verification hasn't been forced, falling back to
// a full content rehash on first activation or whenever the checkpoint
// turns out to be unusable (§4.2's full-vs-metadata-only recovery
// paths). The hash store backing peaks lives in a sibling .mhash file
// so it survives the process restart a checkpoint is meant to avoid.
func buildStaticTree(rec *swarm.Record) (swarm.Tree, error) {
	info, err := os.Stat(rec.Path)
	if err != nil {
		return nil, err
	}
	store, err := storage.OpenSingleFile(rec.Path, info.Size())
	if err != nil {
		return nil, err
	}
	hashes, err := merkle.OpenMmapHashStore(rec.Path + hashStoreSuffix)
	if err != nil {
		return nil, err
	}

	checkpointPath := rec.Path + checkpointSuffix
	if !rec.ForceCheckDisk {
		if _, err := os.Stat(checkpointPath); err == nil {
			tree, err := merkle.LoadCheckpoint(checkpointPath, rec.ChunkSize, store, hashes, true)
			if err == nil {
				return tree, nil
			}
			rec.ForceCheckDisk = true
		}
	}

	return merkle.NewFromContentWithHashStore(context.Background(), rec.ChunkSize, store, hashes)
}

// sourceIdentity derives a stable dummy signing identity from a swarm's
// content path, so repeated activations of the same live swarm sign
// peaks under the same identity instead of a fresh random one each time.
func sourceIdentity(path string) [20]byte {
	return digest.Sum([]byte(path))
}
