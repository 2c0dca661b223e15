package probe

import (
	"net"
	"time"
)

// Transport moves ICMP frames to and from one IPv4 host.
// A Transport is owned by a single Session for the duration of a run.
type Transport interface {
	// Send writes an ICMP frame to dst and returns the number of bytes written.
	Send(b []byte, dst *net.IPAddr) (int, error)
	// Receive reads one full IPv4 datagram, IP header included, into b.
	// It returns ErrTimeout when nothing arrived within timeout.
	Receive(b []byte, timeout time.Duration) (int, error)
	// Close releases the underlying socket.
	Close() error
}
