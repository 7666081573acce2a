package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSingleFileStoreReadWrite(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenSingleFile(filepath.Join(dir, "content"), 16)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if _, err := s.WriteAt([]byte("hello world12345"), 0); err != nil {
		t.Fatal(err)
	}
	if _, err := s.WriteAt([]byte("x"), 16); err != ErrRangeOverflow {
		t.Fatalf("err = %v, want ErrRangeOverflow", err)
	}

	got := make([]byte, 5)
	if _, err := s.ReadAt(got, 0); err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello" {
		t.Fatalf("ReadAt = %q, want %q", got, "hello")
	}
}

func TestSingleFileStoreGrow(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenSingleFile(filepath.Join(dir, "live"), -1)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.Grow(1024); err != nil {
		t.Fatal(err)
	}
	if s.Size() != 1024 {
		t.Fatalf("Size() = %d, want 1024", s.Size())
	}
	if err := s.Grow(10); err != ErrRangeOverflow {
		t.Fatalf("shrinking should fail with ErrRangeOverflow, got %v", err)
	}
}

func TestSingleFileStoreClosed(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenSingleFile(filepath.Join(dir, "f"), 4)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()
	if _, err := s.ReadAt(make([]byte, 1), 0); err != ErrClosed {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
}

func TestParseSpecRoundTrip(t *testing.T) {
	raw := "foo.spec 42\n" +
		"a.txt 5\n" +
		"b.bin 10\n"
	spec, err := ParseSpec(strings.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	if spec.SelfPath != "foo.spec" {
		t.Fatalf("SelfPath = %q", spec.SelfPath)
	}
	if len(spec.Entries) != 2 || spec.Entries[0].Path != "a.txt" || spec.Entries[1].Size != 10 {
		t.Fatalf("Entries = %+v", spec.Entries)
	}
	if spec.TotalSize() != 15 {
		t.Fatalf("TotalSize() = %d, want 15", spec.TotalSize())
	}

	var buf bytes.Buffer
	if _, err := spec.WriteTo(&buf, 42); err != nil {
		t.Fatal(err)
	}
	if buf.String() != raw {
		t.Fatalf("WriteTo round trip = %q, want %q", buf.String(), raw)
	}
}

func TestParseSpecRejectsUnsorted(t *testing.T) {
	raw := "foo.spec 10\nb.bin 5\na.txt 5\n"
	if _, err := ParseSpec(strings.NewReader(raw)); err != ErrInvalidSpec {
		t.Fatalf("err = %v, want ErrInvalidSpec", err)
	}
}

func TestParseSpecRejectsMalformedLine(t *testing.T) {
	if _, err := ParseSpec(strings.NewReader("foo.spec notanumber\n")); err != ErrInvalidSpec {
		t.Fatalf("err = %v, want ErrInvalidSpec", err)
	}
}

func TestMultiFileStoreSpansEntries(t *testing.T) {
	dir := t.TempDir()
	spec := &Spec{
		SelfPath: "x.spec",
		Entries: []Entry{
			{Path: "a.bin", Size: 4},
			{Path: "sub/b.bin", Size: 4},
		},
	}
	m, err := OpenMultiFile(dir, spec)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	// a chunk that straddles the a.bin/b.bin boundary
	if _, err := m.WriteAt([]byte("AABB"), 2); err != nil {
		t.Fatal(err)
	}
	got := make([]byte, 4)
	if _, err := m.ReadAt(got, 2); err != nil {
		t.Fatal(err)
	}
	if string(got) != "AABB" {
		t.Fatalf("ReadAt across boundary = %q, want AABB", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "sub", "b.bin")); err != nil {
		t.Fatalf("b.bin should have been created under sub/: %v", err)
	}
	if m.Size() != 8 {
		t.Fatalf("Size() = %d, want 8", m.Size())
	}
}

func TestMultiFileStoreOverflow(t *testing.T) {
	dir := t.TempDir()
	spec := &Spec{SelfPath: "x.spec", Entries: []Entry{{Path: "a.bin", Size: 4}}}
	m, err := OpenMultiFile(dir, spec)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()
	if _, err := m.WriteAt([]byte("12345"), 0); err != ErrRangeOverflow {
		t.Fatalf("err = %v, want ErrRangeOverflow", err)
	}
}
