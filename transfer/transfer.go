// Package transfer implements the transfer surface (component I): the
// per-descriptor collaborator a swarm manager hands progress callbacks,
// max-speed settings, tracker retry, and channel bookkeeping to. The
// tree and swarm-manager packages own content integrity and lifecycle;
// this package owns everything §6 exposes above them toward the
// surrounding transport.
package transfer

import (
	"sync"

	"github.com/rcrowley/go-metrics"
)

// Direction distinguishes upload from download for SetMaxSpeed (§6).
type Direction int

const (
	Up Direction = iota
	Down
)

// ProgressCallback is invoked as a swarm's completeness advances past
// minLayer (§6's AddProgressCallback). completed/total are expressed in
// bytes.
type ProgressCallback func(completed, total int64)

type progressEntry struct {
	minLayer int
	cb       ProgressCallback
}

// Surface is the per-swarm transfer-surface state: registered progress
// callbacks, speed caps, and the metrics this swarm contributes to the
// process-wide registry.
type Surface struct {
	mu sync.Mutex

	callbacks []progressEntry
	maxUp     int64 // bytes/sec, 0 = unlimited
	maxDown   int64

	registry metrics.Registry
	bytesUp   metrics.Counter
	bytesDown metrics.Counter
	mismatch  metrics.Meter
}

// NewSurface returns a Surface whose metrics are registered under name in
// the process-wide default registry.
func NewSurface(name string) *Surface {
	s := &Surface{registry: metrics.DefaultRegistry}
	s.bytesUp = metrics.GetOrRegisterCounter(name+".bytes_up", s.registry)
	s.bytesDown = metrics.GetOrRegisterCounter(name+".bytes_down", s.registry)
	s.mismatch = metrics.GetOrRegisterMeter(name+".hash_mismatch", s.registry)
	return s
}

// AddProgressCallback registers cb to be invoked whenever completeness
// crosses a chunk boundary at or above minLayer (§6).
func (s *Surface) AddProgressCallback(cb ProgressCallback, minLayer int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, progressEntry{minLayer: minLayer, cb: cb})
}

// ReportProgress notifies every registered callback whose minLayer is
// satisfied. layer is the layer of the bin that just became verified.
func (s *Surface) ReportProgress(layer int, completed, total int64) {
	s.mu.Lock()
	cbs := make([]progressEntry, len(s.callbacks))
	copy(cbs, s.callbacks)
	s.mu.Unlock()
	for _, e := range cbs {
		if layer >= e.minLayer {
			e.cb(completed, total)
		}
	}
}

// SetMaxSpeed caps the transfer rate in the given direction; 0 means
// unlimited (§6).
func (s *Surface) SetMaxSpeed(dir Direction, bytesPerSec int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dir == Up {
		s.maxUp = bytesPerSec
	} else {
		s.maxDown = bytesPerSec
	}
}

// MaxSpeed returns the configured cap for dir, 0 meaning unlimited.
func (s *Surface) MaxSpeed(dir Direction) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dir == Up {
		return s.maxUp
	}
	return s.maxDown
}

// RecordBytes accounts n bytes transferred in the given direction.
func (s *Surface) RecordBytes(dir Direction, n int64) {
	if dir == Up {
		s.bytesUp.Inc(n)
	} else {
		s.bytesDown.Inc(n)
	}
}

// RecordHashMismatch ticks the swarm's hash-mismatch-rate meter, fed by
// tree OfferHash/OfferData failures (§7 hash-mismatch).
func (s *Surface) RecordHashMismatch() {
	s.mismatch.Mark(1)
}
