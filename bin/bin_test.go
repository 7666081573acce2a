package bin

import (
	"math/rand"
	"testing"
)

func TestLayerAndOffsetRoundTrip(t *testing.T) {
	for layer := 0; layer < 20; layer++ {
		for offset := uint64(0); offset < 10; offset++ {
			b := New(layer, offset)
			if got := b.Layer(); got != layer {
				t.Fatalf("New(%d,%d).Layer() = %d, want %d", layer, offset, got, layer)
			}
			if got := b.LayerOffset(); got != offset {
				t.Fatalf("New(%d,%d).LayerOffset() = %d, want %d", layer, offset, got, offset)
			}
		}
	}
}

func TestParentChildIdentity(t *testing.T) {
	for layer := 1; layer < 16; layer++ {
		for offset := uint64(0); offset < 8; offset++ {
			b := New(layer, offset)
			left, right := b.Left(), b.Right()
			if left.Parent() != b {
				t.Fatalf("Left().Parent() != b for %s", b.Debug())
			}
			if right.Parent() != b {
				t.Fatalf("Right().Parent() != b for %s", b.Debug())
			}
			if !left.IsLeft() || !right.IsRight() {
				t.Fatalf("left/right classification wrong for %s", b.Debug())
			}
			if left.Sibling() != right || right.Sibling() != left {
				t.Fatalf("sibling mismatch for %s", b.Debug())
			}
		}
	}
}

func TestContainsRespectsBaseRange(t *testing.T) {
	a := New(3, 0) // covers base leaves [0,8)
	for i := uint64(0); i < 8; i++ {
		leaf := New(0, i)
		if !a.Contains(leaf) {
			t.Fatalf("%s should contain leaf %d", a.Debug(), i)
		}
		if leaf.BaseOffset() < a.BaseOffset() || leaf.BaseOffset()+leaf.BaseLength() > a.BaseOffset()+a.BaseLength() {
			t.Fatalf("invariant 3 violated for leaf %d", i)
		}
	}
	if a.Contains(New(0, 8)) {
		t.Fatal("should not contain leaf 8")
	}
}

func TestGenPeaksOfSeven(t *testing.T) {
	// S1
	got := Peaks(7)
	want := []Bin{New(2, 0), New(1, 2), New(0, 6)}
	if len(got) != len(want) {
		t.Fatalf("Peaks(7) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Peaks(7)[%d] = %s, want %s", i, got[i].Debug(), want[i].Debug())
		}
	}
}

func TestGenPeaksDescendingAndPartition(t *testing.T) {
	for n := uint64(1); n < 200; n++ {
		peaks := Peaks(n)
		var covered uint64
		prevLayer := 64
		for _, p := range peaks {
			if p.Layer() >= prevLayer {
				t.Fatalf("peaks of %d not strictly descending: %v", n, peaks)
			}
			prevLayer = p.Layer()
			covered += p.BaseLength()
		}
		if covered != n {
			t.Fatalf("peaks of %d cover %d leaves, want %d", n, covered, n)
		}
	}
}

func TestUint32RoundTrip(t *testing.T) {
	cases := []Bin{NONE, ALL, New(0, 0), New(5, 7), New(20, 123)}
	for _, b := range cases {
		v, ok := b.Uint32()
		if !ok {
			t.Fatalf("%s should be representable in 32 bits", b.Debug())
		}
		got := FromUint32(v)
		if got != b {
			t.Fatalf("round trip failed for %s: got %s", b.Debug(), got.Debug())
		}
	}
}

func TestUint32ReservedValues(t *testing.T) {
	if v, _ := ALL.Uint32(); v != 0x7fffffff {
		t.Fatalf("ALL.Uint32() = %x, want 0x7fffffff", v)
	}
	if v, _ := NONE.Uint32(); v != 0xffffffff {
		t.Fatalf("NONE.Uint32() = %x, want 0xffffffff", v)
	}
}

func TestUint32Overflow(t *testing.T) {
	huge := New(40, 1)
	if _, ok := huge.Uint32(); ok {
		t.Fatalf("%s should not be representable in 32 bits", huge.Debug())
	}
}

func TestFromUint64RoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		layer := r.Intn(40)
		offset := r.Uint64() % 1000
		b := New(layer, offset)
		if FromUint64(b.Uint64()) != b {
			t.Fatalf("64-bit round trip failed for %s", b.Debug())
		}
	}
}

func TestBaseLeftRight(t *testing.T) {
	b := New(3, 1) // covers leaves [8,16)
	if got := b.BaseLeft(); got != New(0, 8) {
		t.Fatalf("BaseLeft() = %s, want (0,8)", got.Debug())
	}
	if got := b.BaseRight(); got != New(0, 15) {
		t.Fatalf("BaseRight() = %s, want (0,15)", got.Debug())
	}
}

func TestNoneSentinelPropagation(t *testing.T) {
	if !NONE.IsNone() {
		t.Fatal("NONE.IsNone() should be true")
	}
	if NONE.BaseLeft() != NONE || NONE.BaseRight() != NONE {
		t.Fatal("BaseLeft/BaseRight of NONE should stay NONE")
	}
	if NONE.Contains(New(0, 0)) {
		t.Fatal("NONE should contain nothing")
	}
}
