package sig

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/x509"
)

// ecdsaKeyPair implements the ECDSAP256SHA256 and ECDSAP384SHA384
// variants (§5.7, codes 13 and 14): ASN.1 ECDSA signatures over a
// SHA-256 or SHA-384 digest depending on curve.
type ecdsaKeyPair struct {
	alg  Algorithm
	priv *ecdsa.PrivateKey
	pub  *ecdsa.PublicKey
}

// NewECDSAP256 wraps a P-256/SHA-256 key pair.
func NewECDSAP256(priv *ecdsa.PrivateKey, pub *ecdsa.PublicKey) KeyPair {
	return newECDSA(AlgECDSAP256SHA256, priv, pub)
}

// NewECDSAP384 wraps a P-384/SHA-384 key pair.
func NewECDSAP384(priv *ecdsa.PrivateKey, pub *ecdsa.PublicKey) KeyPair {
	return newECDSA(AlgECDSAP384SHA384, priv, pub)
}

func newECDSA(alg Algorithm, priv *ecdsa.PrivateKey, pub *ecdsa.PublicKey) KeyPair {
	if priv != nil && pub == nil {
		pub = &priv.PublicKey
	}
	return &ecdsaKeyPair{alg: alg, priv: priv, pub: pub}
}

func (k *ecdsaKeyPair) Algorithm() Algorithm { return k.alg }

func (k *ecdsaKeyPair) PublicKeyBytes() []byte {
	b, err := x509.MarshalPKIXPublicKey(k.pub)
	if err != nil {
		return nil
	}
	return b
}

func (k *ecdsaKeyPair) digest(data []byte) []byte {
	if k.alg == AlgECDSAP384SHA384 {
		d := sha512.Sum384(data)
		return d[:]
	}
	d := sha256.Sum256(data)
	return d[:]
}

func (k *ecdsaKeyPair) Sign(data []byte) (Signature, error) {
	raw, err := ecdsa.SignASN1(rand.Reader, k.priv, k.digest(data))
	if err != nil {
		return Signature{}, err
	}
	return Signature{Alg: k.alg, Bytes: raw}, nil
}

func (k *ecdsaKeyPair) Verify(data []byte, sigv Signature) bool {
	if sigv.Alg != k.alg {
		return false
	}
	return ecdsa.VerifyASN1(k.pub, k.digest(data), sigv.Bytes)
}

var _ KeyPair = (*ecdsaKeyPair)(nil)
