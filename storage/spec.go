package storage

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Entry is one component of a multi-file spec: a path relative to the
// swarm's storage root and its declared byte length.
type Entry struct {
	Path string
	Size int64
}

// Spec is the in-band multi-file content descriptor (§6): the root F is
// itself addressed as a single logical byte stream whose first component
// is the spec file, "<spec-path> <spec-size>\n", followed by the sorted
// "<path> <size>\n" lines for every real file in the swarm. Entries are
// kept sorted by Path, matching the order they must appear on the wire
// so two peers that agree on the root also agree on byte offsets.
type Spec struct {
	SelfPath string // the path of the spec entry itself, first line
	Entries  []Entry
}

// ParseSpec reads a multi-file spec in the format described above. The
// first line names the spec entry itself and its size; ParseSpec does
// not require that size to equal the serialized form actually read,
// since the caller may be parsing a buffer sized to the declared content
// length rather than the exact text.
func ParseSpec(r io.Reader) (*Spec, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		return nil, ErrInvalidSpec
	}
	selfPath, _, err := parseSpecLine(sc.Text())
	if err != nil {
		return nil, err
	}
	spec := &Spec{SelfPath: selfPath}
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		path, size, err := parseSpecLine(line)
		if err != nil {
			return nil, err
		}
		spec.Entries = append(spec.Entries, Entry{Path: path, Size: size})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !sort.SliceIsSorted(spec.Entries, func(i, j int) bool { return spec.Entries[i].Path < spec.Entries[j].Path }) {
		return nil, ErrInvalidSpec
	}
	return spec, nil
}

func parseSpecLine(line string) (path string, size int64, err error) {
	i := strings.LastIndexByte(line, ' ')
	if i < 0 {
		return "", 0, ErrInvalidSpec
	}
	path = line[:i]
	size, err = strconv.ParseInt(line[i+1:], 10, 64)
	if err != nil || size < 0 || path == "" {
		return "", 0, ErrInvalidSpec
	}
	return path, size, nil
}

// TotalSize returns the sum of every entry's declared size, the true
// size of the swarm's content once the spec line itself is excluded.
func (s *Spec) TotalSize() int64 {
	var total int64
	for _, e := range s.Entries {
		total += e.Size
	}
	return total
}

// WriteTo serializes the spec back to its wire form, writing the given
// selfSize for its own first line.
func (s *Spec) WriteTo(w io.Writer, selfSize int64) (int64, error) {
	var n int64
	m, err := fmt.Fprintf(w, "%s %d\n", s.SelfPath, selfSize)
	n += int64(m)
	if err != nil {
		return n, err
	}
	sorted := append([]Entry(nil), s.Entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })
	for _, e := range sorted {
		m, err := fmt.Fprintf(w, "%s %d\n", e.Path, e.Size)
		n += int64(m)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
