package availability

import (
	"context"
	"testing"
	"time"

	"github.com/libswift/tswift/bin"
	"github.com/libswift/tswift/binmap"
	"github.com/libswift/tswift/digest"
)

func TestRarestInRangePrefersLowestCount(t *testing.T) {
	tr, err := New()
	if err != nil {
		t.Fatal(err)
	}
	tr.RecordHave(bin.New(0, 1))
	tr.RecordHave(bin.New(0, 1))
	tr.RecordHave(bin.New(0, 2))

	have := binmap.New(4)
	got := tr.RarestInRange(bin.New(2, 0), have)
	if got != bin.New(0, 2) {
		t.Fatalf("RarestInRange = %s, want (0,2)", got.Debug())
	}
}

func TestRarestInRangeSkipsHave(t *testing.T) {
	tr, err := New()
	if err != nil {
		t.Fatal(err)
	}
	tr.RecordHave(bin.New(0, 0))
	tr.RecordHave(bin.New(0, 1))

	have := binmap.New(4)
	have.Set(bin.New(0, 0))
	got := tr.RarestInRange(bin.New(2, 0), have)
	if got != bin.New(0, 1) {
		t.Fatalf("RarestInRange = %s, want (0,1)", got.Debug())
	}
}

func TestRarestInRangeNoneWhenUnknown(t *testing.T) {
	tr, err := New()
	if err != nil {
		t.Fatal(err)
	}
	have := binmap.New(4)
	if got := tr.RarestInRange(bin.New(2, 0), have); got != bin.NONE {
		t.Fatalf("RarestInRange = %s, want NONE", got.Debug())
	}
}

func TestForgetHave(t *testing.T) {
	tr, err := New()
	if err != nil {
		t.Fatal(err)
	}
	b := bin.New(0, 0)
	tr.RecordHave(b)
	tr.RecordHave(b)
	tr.ForgetHave(b)
	if tr.counts[b] != 1 {
		t.Fatalf("counts[b] = %d, want 1", tr.counts[b])
	}
	tr.ForgetHave(b)
	tr.ForgetHave(b) // must not go negative
	if tr.counts[b] != 0 {
		t.Fatalf("counts[b] = %d, want 0", tr.counts[b])
	}
}

func TestGetOrCreateDedupsAndDelivers(t *testing.T) {
	tr, err := New()
	if err != nil {
		t.Fatal(err)
	}
	b := bin.New(0, 5)

	p1, loaded1 := tr.GetOrCreate(b, "picker")
	p2, loaded2 := tr.GetOrCreate(b, "hint")
	if loaded1 {
		t.Fatal("first GetOrCreate should not report loaded")
	}
	if !loaded2 {
		t.Fatal("second GetOrCreate should report loaded")
	}
	if p1 != p2 {
		t.Fatal("concurrent requests for the same bin should share one Pending")
	}

	want := digest.Sum([]byte("payload"))
	go tr.Deliver(b, want)

	got, err := tr.Await(context.Background(), p1, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("Await hash = %s, want %s", got, want)
	}

	// after delivery, a new request for the same bin starts fresh
	p3, loaded3 := tr.GetOrCreate(b, "picker")
	if loaded3 {
		t.Fatal("GetOrCreate after delivery should start a fresh Pending")
	}
	if p3 == p1 {
		t.Fatal("fresh Pending should not be the delivered one")
	}
}

func TestAwaitTimesOut(t *testing.T) {
	tr, err := New()
	if err != nil {
		t.Fatal(err)
	}
	p, _ := tr.GetOrCreate(bin.New(0, 0), "picker")
	_, err = tr.Await(context.Background(), p, 10*time.Millisecond)
	if err != context.DeadlineExceeded {
		t.Fatalf("err = %v, want DeadlineExceeded", err)
	}
}
