package main

import (
	"sync"

	"github.com/libswift/tswift/swarm"
	"github.com/libswift/tswift/transfer"
)

// surfaceRegistry hands out one transfer.Surface per swarm id, created
// lazily on first use. The transfer surface is a peer collaborator of
// the swarm manager, not something it owns (§6); this tool is the
// composition root that ties one to each swarm it opens.
type surfaceRegistry struct {
	mu   sync.Mutex
	byID map[swarm.ID]*transfer.Surface
}

func newSurfaceRegistry() *surfaceRegistry {
	return &surfaceRegistry{byID: make(map[swarm.ID]*transfer.Surface)}
}

func (r *surfaceRegistry) get(id swarm.ID) *transfer.Surface {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		s = transfer.NewSurface(id.String())
		r.byID[id] = s
	}
	return s
}

var surfaces = newSurfaceRegistry()
