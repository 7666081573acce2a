// Package sig abstracts the signature algorithm a live swarm's source
// uses to sign new peak tuples and a client uses to verify them (§5,
// §6): callers depend only on the KeyPair interface, never on a
// concrete crypto package, so the on-wire algorithm (and signature
// length) is a swarm-level choice rather than a compile-time one.
package sig

import "errors"

// Algorithm identifies a signature scheme by its on-wire code, matching
// the reference implementation's popt_live_sig_alg_t enum.
type Algorithm uint8

const (
	AlgDummy           Algorithm = 0
	AlgRSASHA1         Algorithm = 5
	AlgECDSAP256SHA256 Algorithm = 13
	AlgECDSAP384SHA384 Algorithm = 14
)

// Signature is an algorithm-tagged signature byte string. For AlgDummy,
// Bytes is 20 zero bytes.
type Signature struct {
	Alg   Algorithm
	Bytes []byte
}

// ErrVerifyFailed is returned by Verify implementations as a plain bool,
// never an error; it exists so callers that want the error-returning
// form (e.g. wrapping with errs.ErrSignatureInvalid) have something to
// compare against.
var ErrVerifyFailed = errors.New("sig: signature verification failed")

// KeyPair is the signing/verification collaborator a live swarm source
// or client holds. A swarm's public key doubles as its swarm id on the
// wire (§6), so PublicKeyBytes is also the identity a client checks
// incoming signed peaks against.
type KeyPair interface {
	Algorithm() Algorithm
	// PublicKeyBytes returns the DER/raw public key bytes that serve as
	// this swarm's on-wire identity.
	PublicKeyBytes() []byte
	// Sign produces a Signature over data (normally a peak tuple's
	// canonical encoding).
	Sign(data []byte) (Signature, error)
	// Verify reports whether sigv is a valid signature over data under
	// this KeyPair's public key.
	Verify(data []byte, sigv Signature) bool
}
