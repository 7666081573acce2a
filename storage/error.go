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

package storage

import "errors"

// Error kinds specific to the storage collaborator interface (§6). Tree
// components themselves only ever see errs.ErrStorageShortRead /
// errs.ErrStorageWriteFailed; these finer-grained kinds are for storage
// implementations and the multi-file spec parser to report what went
// wrong before it gets folded into one of those two at the tree boundary.
var (
	ErrNotFound      = errors.New("storage: no such content")
	ErrInvalidSpec   = errors.New("storage: malformed multi-file spec")
	ErrRangeOverflow = errors.New("storage: write range exceeds declared content size")
	ErrClosed        = errors.New("storage: store is closed")
)
