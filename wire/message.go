// Package wire implements the external interfaces of §6: the wire
// message taxonomy consumed by the tree and swarm-manager components,
// bin wire encoding, channel id generation, and the tswift:// URI form.
// Framing, routing and transport itself are external collaborators; this
// package only defines the shapes the core exchanges with them.
package wire

import (
	"fmt"

	"github.com/libswift/tswift/bin"
	"github.com/libswift/tswift/digest"
	"github.com/libswift/tswift/sig"
)

// Type is a wire message type byte (§6). Values 0..8 are fixed by the
// protocol and must not be renumbered.
type Type byte

const (
	TypeHandshake  Type = 0
	TypeData       Type = 1
	TypeAck        Type = 2
	TypeHave       Type = 3
	TypeHash       Type = 4
	TypePexAdd     Type = 5
	TypePexRemove  Type = 6
	TypeSignedHash Type = 7
	TypeHint       Type = 8
)

func (t Type) String() string {
	switch t {
	case TypeHandshake:
		return "HANDSHAKE"
	case TypeData:
		return "DATA"
	case TypeAck:
		return "ACK"
	case TypeHave:
		return "HAVE"
	case TypeHash:
		return "INTEGRITY"
	case TypePexAdd:
		return "PEX+"
	case TypePexRemove:
		return "PEX-"
	case TypeSignedHash:
		return "SIGNED_INTEGRITY"
	case TypeHint:
		return "HINT"
	default:
		return fmt.Sprintf("wire.Type(%d)", byte(t))
	}
}

// ChannelID identifies one peer-to-peer exchange within a swarm; the
// first packet on a channel is always a Handshake carrying the swarm's
// root hash, per §6.
type ChannelID [16]byte

// Handshake opens a channel (§6). RootHash identifies the swarm; for a
// fresh outgoing handshake, Channel is generated by NewChannelID.
type Handshake struct {
	Channel  ChannelID
	RootHash digest.Hash
}

// Data carries a leaf's payload, delivered to Tree.OfferData.
type Data struct {
	Bin     bin.Bin
	Payload []byte
}

// Ack reports receipt of bin by timestamp; it feeds the sender's ack-out
// accounting, not the tree itself.
type Ack struct {
	Bin       bin.Bin
	Timestamp int64 // microseconds, per the reference wire format
}

// Have announces possession of bin without an accompanying timestamp.
type Have struct {
	Bin bin.Bin
}

// Hash carries an unsigned interior or peak hash, delivered to
// Tree.OfferHash (static) or Tree.OfferHash (live, pre-peak-adoption).
type Hash struct {
	Bin  bin.Bin
	Hash digest.Hash
}

// SignedHash carries a live peak hash and its signature, delivered to
// Tree.OfferSignedPeakHash.
type SignedHash struct {
	Bin       bin.Bin
	Hash      digest.Hash
	Signature sig.Signature
}

// Hint requests a peer fetch/prioritize a bin; routed to the
// availability collaborator, never to the tree.
type Hint struct {
	Bin bin.Bin
}

// PexAdd/PexRemove announce or retract a peer address; routed to the
// availability/transport collaborator.
type PexAdd struct {
	IP   string
	Port uint16
}

type PexRemove struct {
	IP   string
	Port uint16
}
