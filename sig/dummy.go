package sig

// dummyKeyPair is the no-crypto fallback (§5.7): every signature is a
// fixed-length, content-independent byte string, and Verify only checks
// that shape. Used for swarms that don't need authenticity guarantees,
// or in builds without a crypto backend configured.
type dummyKeyPair struct {
	id [20]byte
}

// NewDummy returns a KeyPair whose "public key" is id and which accepts
// any well-formed signature.
func NewDummy(id [20]byte) KeyPair {
	return &dummyKeyPair{id: id}
}

func (d *dummyKeyPair) Algorithm() Algorithm   { return AlgDummy }
func (d *dummyKeyPair) PublicKeyBytes() []byte { return d.id[:] }

func (d *dummyKeyPair) Sign(data []byte) (Signature, error) {
	return Signature{Alg: AlgDummy, Bytes: make([]byte, 20)}, nil
}

func (d *dummyKeyPair) Verify(data []byte, sigv Signature) bool {
	return sigv.Alg == AlgDummy && len(sigv.Bytes) == 20
}

var _ KeyPair = (*dummyKeyPair)(nil)
