package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/libswift/tswift/bin"
	"github.com/libswift/tswift/digest"
	"github.com/libswift/tswift/sig"
)

// ErrShortBuffer is returned by decode helpers when a frame payload is
// too short to hold the fields it claims to carry.
type ErrShortBuffer struct {
	Type Type
	Want int
	Got  int
}

func (e *ErrShortBuffer) Error() string {
	return fmt.Sprintf("tswift: wire: %s frame too short: want %d bytes, got %d", e.Type, e.Want, e.Got)
}

// EncodeBin32 appends bin's 32-bit wire form (§6) to buf.
func EncodeBin32(buf []byte, b bin.Bin) ([]byte, error) {
	v, ok := b.Uint32()
	if !ok {
		return nil, fmt.Errorf("tswift: wire: bin %d has no 32-bit wire form", b.Uint64())
	}
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...), nil
}

// DecodeBin32 reads a 32-bit wire bin from the front of buf, returning the
// bin and the remaining bytes.
func DecodeBin32(buf []byte) (bin.Bin, []byte, error) {
	if len(buf) < 4 {
		return bin.NONE, buf, &ErrShortBuffer{Want: 4, Got: len(buf)}
	}
	v := binary.BigEndian.Uint32(buf)
	return bin.FromUint32(v), buf[4:], nil
}

// EncodeBin64 appends bin's 64-bit wire form to buf.
func EncodeBin64(buf []byte, b bin.Bin) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], b.Uint64())
	return append(buf, tmp[:]...)
}

// DecodeBin64 reads a 64-bit wire bin from the front of buf, returning the
// bin and the remaining bytes.
func DecodeBin64(buf []byte) (bin.Bin, []byte, error) {
	if len(buf) < 8 {
		return bin.NONE, buf, &ErrShortBuffer{Want: 8, Got: len(buf)}
	}
	v := binary.BigEndian.Uint64(buf)
	return bin.FromUint64(v), buf[8:], nil
}

// EncodeHash appends a raw digest to buf.
func EncodeHash(buf []byte, h digest.Hash) []byte {
	return append(buf, h.Bytes()...)
}

// DecodeHash reads a raw digest from the front of buf.
func DecodeHash(buf []byte) (digest.Hash, []byte, error) {
	var h digest.Hash
	if len(buf) < digest.Size {
		return h, buf, &ErrShortBuffer{Want: digest.Size, Got: len(buf)}
	}
	copy(h[:], buf[:digest.Size])
	return h, buf[digest.Size:], nil
}

// EncodeSignature appends an algorithm byte followed by the raw
// signature bytes to buf.
func EncodeSignature(buf []byte, s sig.Signature) []byte {
	buf = append(buf, byte(s.Alg))
	return append(buf, s.Bytes...)
}

// DecodeSignature reads an algorithm-tagged signature of exactly n raw
// bytes from the front of buf.
func DecodeSignature(buf []byte, n int) (sig.Signature, []byte, error) {
	if len(buf) < 1+n {
		return sig.Signature{}, buf, &ErrShortBuffer{Want: 1 + n, Got: len(buf)}
	}
	s := sig.Signature{Alg: sig.Algorithm(buf[0]), Bytes: append([]byte(nil), buf[1:1+n]...)}
	return s, buf[1+n:], nil
}
