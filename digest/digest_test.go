package digest

import "testing"

func TestSumMatchesReferenceVector(t *testing.T) {
	// S2: SHA-1 leaf of "123\n" per spec §8.
	got := Sum([]byte("123\n"))
	want, err := FromHex("a8fdc205a9f19cc1c7507a60c4f01b13d11d7fd0")
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("Sum(%q) = %s, want %s", "123\n", got, want)
	}
}

func TestPairMatchesReferenceVector(t *testing.T) {
	// S3: root of a two-chunk file is H(leaf0, leaf1).
	data0 := make([]byte, 1024)
	for i := range data0 {
		data0[i] = '$'
	}
	data1 := []byte("$$$$")
	leaf0 := Sum(data0)
	leaf1 := Sum(data1)
	root := Pair(leaf0, leaf1)
	want, err := FromHex("5b53677d3a695f29f1b4e18ab6d705312ef7f8c3")
	if err != nil {
		t.Fatal(err)
	}
	if root != want {
		t.Fatalf("Pair(leaf0, leaf1) = %s, want %s", root, want)
	}
}

func TestZero(t *testing.T) {
	if !ZERO.IsZero() {
		t.Fatal("ZERO should report IsZero")
	}
	if Sum([]byte("x")).IsZero() {
		t.Fatal("a real digest should not report IsZero")
	}
}

func TestFromHexRoundTrip(t *testing.T) {
	h := Sum([]byte("round trip"))
	parsed, err := FromHex(h.String())
	if err != nil {
		t.Fatal(err)
	}
	if parsed != h {
		t.Fatalf("round trip mismatch: got %s, want %s", parsed, h)
	}
}

func TestFromHexBadLength(t *testing.T) {
	if _, err := FromHex("abcd"); err == nil {
		t.Fatal("expected error for short hex")
	}
}
