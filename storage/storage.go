// Copyright 2018 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package storage is the content-addressable byte store a static or live
// Merkle tree writes verified chunk data through to, and reads candidate
// chunk data back from for hashing on submit. It is a collaborator
// interface (§6): trees only depend on the Store interface here, never on
// a concrete backend.
package storage

import (
	"io"
	"os"
	"sync"
)

// Store is the storage collaborator a tree writes verified base-layer
// data to and reads unverified candidate data from. Offsets are absolute
// byte offsets into the logical content, not chunk indices; the tree is
// responsible for translating a bin into a byte range before calling in.
type Store interface {
	// ReadAt reads len(p) bytes starting at off. A short read (n <
	// len(p)) with a nil error never happens; io.EOF or another error is
	// returned instead, matching os.File.ReadAt.
	ReadAt(p []byte, off int64) (n int, err error)

	// WriteAt writes p at off, growing the backing file if needed and
	// permitted by Size.
	WriteAt(p []byte, off int64) (n int, err error)

	// Size returns the declared size of the content, or -1 if unknown
	// (live content still growing).
	Size() int64

	// Close releases any open file descriptors. Safe to call more than
	// once.
	Close() error
}

// SingleFileStore is a Store backed by one *os.File, the common case for
// bulk (non-live) content with a single component in its spec.
type SingleFileStore struct {
	mu     sync.Mutex
	f      *os.File
	size   int64
	closed bool
}

// OpenSingleFile opens or creates path as a SingleFileStore. size is the
// declared content length; pass -1 for growing (live) content.
func OpenSingleFile(path string, size int64) (*SingleFileStore, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	return &SingleFileStore{f: f, size: size}, nil
}

func (s *SingleFileStore) ReadAt(p []byte, off int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	return s.f.ReadAt(p, off)
}

func (s *SingleFileStore) WriteAt(p []byte, off int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	if s.size >= 0 && off+int64(len(p)) > s.size {
		return 0, ErrRangeOverflow
	}
	return s.f.WriteAt(p, off)
}

func (s *SingleFileStore) Size() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Grow sets the declared size to to. For content opened with a fixed
// size it returns ErrRangeOverflow when to is smaller than that size and
// otherwise raises the size; content opened without a fixed size accepts
// any value.
func (s *SingleFileStore) Grow(to int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.size >= 0 && to < s.size {
		return ErrRangeOverflow
	}
	s.size = to
	return nil
}

func (s *SingleFileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.f.Close()
}

var _ Store = (*SingleFileStore)(nil)
var _ io.ReaderAt = (*SingleFileStore)(nil)
var _ io.WriterAt = (*SingleFileStore)(nil)
