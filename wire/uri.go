package wire

import (
	"encoding/hex"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/libswift/tswift/digest"
)

// DefaultChunkSize is the chunk size a tswift:// URI implies when its
// optional $<chunk-size> suffix is omitted (§6).
const DefaultChunkSize = 1024

// URI is a parsed tswift://host:port/<swarm-id-hex>[$<chunk-size>] address.
type URI struct {
	Host      string
	Port      uint16
	RootHash  digest.Hash
	ChunkSize int64
}

const scheme = "tswift://"

// ParseURI parses a tswift:// URI (§6).
func ParseURI(s string) (URI, error) {
	var u URI
	if !strings.HasPrefix(s, scheme) {
		return u, fmt.Errorf("tswift: wire: %q is not a tswift:// URI", s)
	}
	rest := s[len(scheme):]
	slash := strings.IndexByte(rest, '/')
	if slash < 0 {
		return u, fmt.Errorf("tswift: wire: %q is missing a swarm id path", s)
	}
	hostport := rest[:slash]
	tail := rest[slash+1:]

	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		return u, fmt.Errorf("tswift: wire: invalid host:port %q: %w", hostport, err)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return u, fmt.Errorf("tswift: wire: invalid port %q: %w", portStr, err)
	}

	idHex := tail
	chunkSize := int64(DefaultChunkSize)
	if dollar := strings.IndexByte(tail, '$'); dollar >= 0 {
		idHex = tail[:dollar]
		cs, err := strconv.ParseInt(tail[dollar+1:], 10, 64)
		if err != nil {
			return u, fmt.Errorf("tswift: wire: invalid chunk size suffix %q: %w", tail[dollar+1:], err)
		}
		chunkSize = cs
	}

	idBytes, err := hex.DecodeString(idHex)
	if err != nil || len(idBytes) != digest.Size {
		return u, fmt.Errorf("tswift: wire: invalid swarm id %q", idHex)
	}
	var root digest.Hash
	copy(root[:], idBytes)

	u.Host = host
	u.Port = uint16(port)
	u.RootHash = root
	u.ChunkSize = chunkSize
	return u, nil
}

// String renders u back into tswift:// form, omitting the chunk-size
// suffix when it equals DefaultChunkSize or is 0.
func (u URI) String() string {
	base := fmt.Sprintf("%s%s/%s", scheme, net.JoinHostPort(u.Host, strconv.Itoa(int(u.Port))), u.RootHash.String())
	if u.ChunkSize == DefaultChunkSize || u.ChunkSize == 0 {
		return base
	}
	return fmt.Sprintf("%s$%d", base, u.ChunkSize)
}
