package wire

import "github.com/pborman/uuid"

// NewChannelID generates a fresh channel id for an outgoing handshake
// (§6). The reference implementation picks a random 32-bit local
// identifier; this module widens that to a full UUID so channel ids stay
// collision-free without a per-process counter.
func NewChannelID() ChannelID {
	var id ChannelID
	copy(id[:], uuid.NewRandom())
	return id
}

// String renders the channel id as a UUID string.
func (c ChannelID) String() string {
	return uuid.UUID(c[:]).String()
}
