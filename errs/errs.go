// Package errs collects the sentinel error kinds shared by the tree and
// swarm-manager components (spec §7). Tree components never panic across
// package boundaries; they return one of these via errors.Is-compatible
// wrapping, or an explicit boolean/negative size, per the propagation
// policy in §7.
package errs

import "errors"

var (
	// ErrBadPeakSequence: peaks offered out of canonical descending-layer
	// order, or discontiguous with the previously accepted peak.
	ErrBadPeakSequence = errors.New("tswift: bad peak sequence")

	// ErrRootMismatch: the accumulated peak set folds to a hash that
	// does not equal the swarm's expected root hash.
	ErrRootMismatch = errors.New("tswift: peak fold does not match root hash")

	// ErrHashMismatch: an interior or leaf hash does not match a
	// verified ancestor on the path to a peak.
	ErrHashMismatch = errors.New("tswift: hash mismatch on verification path")

	// ErrUncoveredBin: an offer referenced a bin that lies outside every
	// known peak.
	ErrUncoveredBin = errors.New("tswift: bin not covered by any known peak")

	// ErrPrematureData: OfferData was called before any peak is known,
	// or on a non-leaf bin.
	ErrPrematureData = errors.New("tswift: data offered before peaks are known, or on a non-leaf bin")

	// ErrZeroPoisoning: a ZERO hash was encountered on the verification
	// path where a real hash was required.
	ErrZeroPoisoning = errors.New("tswift: ZERO hash encountered on verification path")

	// ErrCheckpointCorrupt: the on-disk .mbinmap checkpoint is
	// unreadable or internally inconsistent; the swarm must revert to
	// a full rehash-reconcile on next activation.
	ErrCheckpointCorrupt = errors.New("tswift: checkpoint file is corrupt or inconsistent")

	// ErrStorageShortRead: storage returned fewer bytes than requested.
	ErrStorageShortRead = errors.New("tswift: short read from storage")

	// ErrStorageWriteFailed: a write to storage failed.
	ErrStorageWriteFailed = errors.New("tswift: write to storage failed")

	// ErrSignatureInvalid: a live SIGNED_INTEGRITY message's signature
	// did not verify; the peak was not installed.
	ErrSignatureInvalid = errors.New("tswift: signature verification failed")

	// ErrMessageMixup: a SIGNED_INTEGRITY bin did not match the most
	// recently cached candidate peak bin; the message was ignored.
	ErrMessageMixup = errors.New("tswift: signed-peak bin does not match pending candidate")
)
