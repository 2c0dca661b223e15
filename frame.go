package probe

import (
	"encoding/binary"
	"net"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

const (
	protocolICMP  = 1
	echoHeaderLen = 8
	maxIPv4Header = 60
)

// EchoRequest is an outbound ICMP Echo Request frame.
// Size is the total ICMP size, header included; the payload is zero filled.
type EchoRequest struct {
	ID   uint16
	Seq  uint16
	Size int
}

// Marshal returns the wire form of the request with its checksum set.
func (r EchoRequest) Marshal() []byte {
	size := r.Size
	if size < echoHeaderLen {
		size = echoHeaderLen
	}
	b := make([]byte, size)
	b[0] = byte(ipv4.ICMPTypeEcho)
	b[1] = 0
	binary.BigEndian.PutUint16(b[4:6], r.ID)
	binary.BigEndian.PutUint16(b[6:8], r.Seq)
	binary.BigEndian.PutUint16(b[2:4], Checksum(b))
	return b
}

// EchoReply is an ICMP Echo Reply extracted from an IPv4 datagram.
type EchoReply struct {
	ID  uint16
	Seq uint16
	Src net.IP
	Len int
}

// BuildEchoRequest returns an Echo Request frame of size bytes carrying seq.
func BuildEchoRequest(seq uint16, size int) []byte {
	return EchoRequest{Seq: seq, Size: size}.Marshal()
}

// ParseReply extracts an Echo Reply from b, a full IPv4 datagram answering a
// frame of size bytes. ok is false for anything else.
func ParseReply(b []byte, size int) (EchoReply, bool) {
	return codec{size: size}.parse(b)
}

type codec struct {
	id   uint16
	size int
}

func (c codec) build(seq uint16) []byte {
	return EchoRequest{ID: c.id, Seq: seq, Size: c.size}.Marshal()
}

// minReplyLen is the shortest datagram that can carry the echo of one of our frames.
func (c codec) minReplyLen() int {
	size := c.size
	if size < echoHeaderLen {
		size = echoHeaderLen
	}
	return ipv4.HeaderLen + size
}

// bufferLen is large enough for a reply with a maximal IPv4 header.
func (c codec) bufferLen() int {
	return maxIPv4Header + c.size
}

func (c codec) parse(b []byte) (EchoReply, bool) {
	if len(b) < c.minReplyLen() {
		return EchoReply{}, false
	}
	h, err := ipv4.ParseHeader(b)
	if err != nil || h.Version != ipv4.Version || h.Len < ipv4.HeaderLen || h.Protocol != protocolICMP || len(b)-h.Len < echoHeaderLen {
		return EchoReply{}, false
	}
	m, err := icmp.ParseMessage(protocolICMP, b[h.Len:])
	if err != nil || m.Type != ipv4.ICMPTypeEchoReply {
		return EchoReply{}, false
	}
	echo, ok := m.Body.(*icmp.Echo)
	if !ok {
		return EchoReply{}, false
	}
	return EchoReply{
		ID:  uint16(echo.ID),
		Seq: uint16(echo.Seq),
		Src: h.Src,
		Len: len(b),
	}, true
}
