package binmap

import (
	"testing"

	"github.com/libswift/tswift/bin"
)

func TestSetAndIsFilled(t *testing.T) {
	m := New(8)
	if !m.IsEmpty(bin.New(3, 0)) {
		t.Fatal("fresh map should be empty")
	}
	m.Set(bin.New(0, 2))
	if m.IsFilled(bin.New(3, 0)) {
		t.Fatal("should not be filled after setting one leaf")
	}
	for i := uint64(0); i < 8; i++ {
		m.Set(bin.New(0, i))
	}
	if !m.IsFilled(bin.New(3, 0)) {
		t.Fatal("should be filled once every leaf set")
	}
	if !m.IsFull() {
		t.Fatal("IsFull should be true once every leaf is set")
	}
}

func TestFindEmpty(t *testing.T) {
	m := New(4)
	m.Set(bin.New(0, 0))
	m.Set(bin.New(0, 1))
	got := m.FindEmpty(bin.New(0, 0))
	if got != bin.New(0, 2) {
		t.Fatalf("FindEmpty = %s, want (0,2)", got.Debug())
	}
}

func TestFindEmptyNoneWhenFull(t *testing.T) {
	m := New(2)
	m.Set(bin.New(1, 0))
	if got := m.FindEmpty(bin.New(0, 0)); got != bin.NONE {
		t.Fatalf("FindEmpty on full map = %s, want NONE", got.Debug())
	}
}

func TestClear(t *testing.T) {
	m := New(2)
	m.Set(bin.New(1, 0))
	m.Clear(bin.New(0, 0))
	if m.IsFilled(bin.New(1, 0)) {
		t.Fatal("should not be filled after clearing one leaf")
	}
	if m.IsEmpty(bin.New(1, 0)) {
		t.Fatal("should not be fully empty either")
	}
}

func TestFindComplement(t *testing.T) {
	a := New(4)
	b := New(4)
	a.Set(bin.New(0, 0))
	a.Set(bin.New(0, 1))
	b.Set(bin.New(0, 0))
	got := a.FindComplement(bin.New(2, 0), b)
	if got != bin.New(0, 1) {
		t.Fatalf("FindComplement = %s, want (0,1)", got.Debug())
	}
}

func TestVerifiedSet(t *testing.T) {
	v := NewVerifiedSet()
	pos := bin.New(2, 1)
	if !v.IsEmpty(pos) {
		t.Fatal("fresh set should report IsEmpty true")
	}
	v.Set(pos)
	if v.IsEmpty(pos) {
		t.Fatal("after Set, IsEmpty should be false")
	}
	if v.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", v.Len())
	}
	v.Clear(pos)
	if !v.IsEmpty(pos) {
		t.Fatal("after Clear, IsEmpty should be true again")
	}
}
