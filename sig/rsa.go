package sig

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
)

// rsaKeyPair implements RSASHA1 (§5.7 variant 5): PKCS#1 v1.5 signatures
// over a SHA-1 digest, the scheme the reference implementation's
// non-dummy build defaults to.
type rsaKeyPair struct {
	priv *rsa.PrivateKey
	pub  *rsa.PublicKey
}

// NewRSA wraps an RSA private key for signing, or a public key for
// verify-only use; exactly one of priv/pub should be non-nil.
func NewRSA(priv *rsa.PrivateKey, pub *rsa.PublicKey) KeyPair {
	if priv != nil && pub == nil {
		pub = &priv.PublicKey
	}
	return &rsaKeyPair{priv: priv, pub: pub}
}

func (k *rsaKeyPair) Algorithm() Algorithm { return AlgRSASHA1 }

func (k *rsaKeyPair) PublicKeyBytes() []byte {
	b, err := x509.MarshalPKIXPublicKey(k.pub)
	if err != nil {
		return nil
	}
	return b
}

func (k *rsaKeyPair) Sign(data []byte) (Signature, error) {
	digest := sha1.Sum(data)
	raw, err := rsa.SignPKCS1v15(rand.Reader, k.priv, crypto.SHA1, digest[:])
	if err != nil {
		return Signature{}, err
	}
	return Signature{Alg: AlgRSASHA1, Bytes: raw}, nil
}

func (k *rsaKeyPair) Verify(data []byte, sigv Signature) bool {
	if sigv.Alg != AlgRSASHA1 {
		return false
	}
	digest := sha1.Sum(data)
	return rsa.VerifyPKCS1v15(k.pub, crypto.SHA1, digest[:], sigv.Bytes) == nil
}

var _ KeyPair = (*rsaKeyPair)(nil)
