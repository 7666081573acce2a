package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/libswift/tswift/config"
	"github.com/libswift/tswift/swarm"
)

func writeTestFile(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "content")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuilderOpensStaticTreeOverExistingFile(t *testing.T) {
	path := writeTestFile(t, []byte("0123456789abcdef"))
	build := newBuilder(config.NewConfig())

	rec := &swarm.Record{Path: path, ChunkSize: 8}
	tree, err := build(rec)
	if err != nil {
		t.Fatal(err)
	}
	if tree.Size() != 16 {
		t.Fatalf("Size() = %d, want 16", tree.Size())
	}
	if !tree.IsComplete() {
		t.Fatal("a tree hashed from existing content must report complete")
	}
}

func TestBuilderOpensLiveTreeForFlagLive(t *testing.T) {
	path := writeTestFile(t, nil)
	build := newBuilder(config.NewConfig())

	rec := &swarm.Record{Path: path, ChunkSize: 8, Flags: swarm.FlagLive}
	tree, err := build(rec)
	if err != nil {
		t.Fatal(err)
	}
	if tree.IsComplete() {
		t.Fatal("an empty live source must not report complete")
	}
}

func TestBuilderReactivatesFromCheckpoint(t *testing.T) {
	path := writeTestFile(t, []byte("0123456789abcdef"))
	build := newBuilder(config.NewConfig())

	rec := &swarm.Record{Path: path, ChunkSize: 8}
	tree, err := build(rec)
	if err != nil {
		t.Fatal(err)
	}
	if err := tree.Checkpoint(path + ".mbinmap"); err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}

	reloaded, err := build(rec)
	if err != nil {
		t.Fatalf("reactivation from checkpoint failed: %v", err)
	}
	if rec.ForceCheckDisk {
		t.Fatal("a valid checkpoint must not force a disk recheck")
	}
	if reloaded.Size() != 16 || !reloaded.IsComplete() {
		t.Fatalf("reloaded tree wrong: size=%d complete=%v", reloaded.Size(), reloaded.IsComplete())
	}
	if reloaded.RootHash() != tree.RootHash() {
		t.Fatal("reloaded tree's root hash must match the original")
	}
}

func TestBuilderFallsBackToRehashWhenForceCheckDiskSet(t *testing.T) {
	path := writeTestFile(t, []byte("0123456789abcdef"))
	build := newBuilder(config.NewConfig())

	rec := &swarm.Record{Path: path, ChunkSize: 8}
	tree, err := build(rec)
	if err != nil {
		t.Fatal(err)
	}
	if err := tree.Checkpoint(path + ".mbinmap"); err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}

	rec.ForceCheckDisk = true
	reloaded, err := build(rec)
	if err != nil {
		t.Fatalf("rehash fallback failed: %v", err)
	}
	if !reloaded.IsComplete() {
		t.Fatal("a full rehash over existing content must report complete")
	}
}

func TestSurfaceRegistryReusesSurfacePerID(t *testing.T) {
	r := newSurfaceRegistry()
	var id swarm.ID
	id[0] = 1

	a := r.get(id)
	b := r.get(id)
	if a != b {
		t.Fatal("surfaceRegistry.get must return the same *Surface for the same id")
	}
}
