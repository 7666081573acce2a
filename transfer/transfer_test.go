package transfer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/libswift/tswift/wire"
	"github.com/tilinna/clock"
)

func TestSurfaceProgressCallbackHonorsMinLayer(t *testing.T) {
	s := NewSurface(t.Name())
	var calls int
	s.AddProgressCallback(func(completed, total int64) { calls++ }, 2)

	s.ReportProgress(1, 10, 100)
	if calls != 0 {
		t.Fatalf("expected no call below minLayer, got %d", calls)
	}
	s.ReportProgress(2, 20, 100)
	if calls != 1 {
		t.Fatalf("expected one call at minLayer, got %d", calls)
	}
	s.ReportProgress(5, 50, 100)
	if calls != 2 {
		t.Fatalf("expected a second call above minLayer, got %d", calls)
	}
}

func TestSurfaceMaxSpeed(t *testing.T) {
	s := NewSurface(t.Name())
	if s.MaxSpeed(Up) != 0 {
		t.Fatalf("expected unlimited default, got %d", s.MaxSpeed(Up))
	}
	s.SetMaxSpeed(Up, 1024)
	s.SetMaxSpeed(Down, 2048)
	if s.MaxSpeed(Up) != 1024 || s.MaxSpeed(Down) != 2048 {
		t.Fatalf("max speed not set: up=%d down=%d", s.MaxSpeed(Up), s.MaxSpeed(Down))
	}
}

func TestSurfaceRecordBytesAndMismatch(t *testing.T) {
	s := NewSurface(t.Name())
	s.RecordBytes(Up, 100)
	s.RecordBytes(Down, 50)
	s.RecordHashMismatch()
	if s.bytesUp.Count() != 100 {
		t.Fatalf("bytesUp = %d, want 100", s.bytesUp.Count())
	}
	if s.bytesDown.Count() != 50 {
		t.Fatalf("bytesDown = %d, want 50", s.bytesDown.Count())
	}
	if s.mismatch.Count() != 1 {
		t.Fatalf("mismatch count = %d, want 1", s.mismatch.Count())
	}
}

func TestTrackerBackoffGrowsAndCaps(t *testing.T) {
	tr := NewTracker(clock.Realtime())
	d0 := tr.NextDelay()
	if d0 != backoffInitial {
		t.Fatalf("first delay = %v, want %v", d0, backoffInitial)
	}
	d1 := tr.NextDelay()
	if d1 <= d0 {
		t.Fatalf("second delay %v did not grow past first %v", d1, d0)
	}
	for i := 0; i < 200; i++ {
		tr.NextDelay()
	}
	if tr.NextDelay() > backoffCap {
		t.Fatalf("delay exceeded cap %v", backoffCap)
	}
}

func TestTrackerResetRestoresInitialDelay(t *testing.T) {
	tr := NewTracker(clock.Realtime())
	tr.NextDelay()
	tr.NextDelay()
	tr.Reset()
	if got := tr.NextDelay(); got != backoffInitial {
		t.Fatalf("after Reset, delay = %v, want %v", got, backoffInitial)
	}
}

func TestTrackerRunStopsOnContextCancel(t *testing.T) {
	tr := NewTracker(clock.Realtime())
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()
	err := tr.Run(ctx, func(ctx context.Context) (bool, error) {
		attempts++
		return false, errors.New("no peers yet")
	})
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if attempts == 0 {
		t.Fatalf("expected at least one contact attempt")
	}
}

func TestChannelSetSweepReapsIdleChannels(t *testing.T) {
	fc := clock.NewMock(time.Unix(0, 0))
	cs := NewChannelSet(fc)

	var closed bool
	id := wire.NewChannelID()
	cs.Open(id, [20]byte{1}, func() { closed = true })

	fc.Add(channelIdleTimeout / 2)
	cs.Sweep()
	if closed {
		t.Fatalf("channel reaped before its idle timeout elapsed")
	}

	fc.Add(channelIdleTimeout)
	cs.Sweep()
	if !closed {
		t.Fatalf("expected the idle channel to be reaped")
	}
	if cs.Len() != 0 {
		t.Fatalf("expected an empty channel set after sweep, got %d", cs.Len())
	}
}

func TestChannelSetTouchKeepsChannelAlive(t *testing.T) {
	fc := clock.NewMock(time.Unix(0, 0))
	cs := NewChannelSet(fc)

	var closed bool
	id := wire.NewChannelID()
	cs.Open(id, [20]byte{1}, func() { closed = true })

	fc.Add(channelIdleTimeout - time.Second)
	cs.Touch(id)
	fc.Add(channelIdleTimeout - time.Second)
	cs.Sweep()
	if closed {
		t.Fatalf("touched channel should not have been reaped yet")
	}
}
