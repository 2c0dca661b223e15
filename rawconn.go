package probe

import (
	"errors"
	"fmt"
	"net"
	"time"

	"golang.org/x/net/ipv4"
)

const defaultTTL = 64

// RawTransport is a Transport over an IPv4 raw ICMP socket.
// Opening it requires CAP_NET_RAW or root.
type RawTransport struct {
	conn *ipv4.RawConn
	ttl  int
}

var _ Transport = (*RawTransport)(nil)

// ListenRaw opens a raw ICMP socket bound to bind ("0.0.0.0" for any).
func ListenRaw(bind string) (*RawTransport, error) {
	c, err := net.ListenPacket("ip4:icmp", bind)
	if err != nil {
		return nil, fmt.Errorf("%w: creating a raw socket: %v", ErrTransport, err)
	}
	rc, err := ipv4.NewRawConn(c)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("%w: creating a raw socket: %v", ErrTransport, err)
	}
	return &RawTransport{conn: rc, ttl: defaultTTL}, nil
}

// SetTTL sets the time to live of outgoing datagrams, in [1, 255].
func (t *RawTransport) SetTTL(ttl int) error {
	if ttl < 1 || ttl > 255 {
		return fmt.Errorf("%w: ttl must be in [1, 255], got %d", ErrInvalidOption, ttl)
	}
	t.ttl = ttl
	return nil
}

func (t *RawTransport) Send(b []byte, dst *net.IPAddr) (int, error) {
	h := &ipv4.Header{
		Version:  ipv4.Version,
		Len:      ipv4.HeaderLen,
		TotalLen: ipv4.HeaderLen + len(b),
		TTL:      t.ttl,
		Protocol: protocolICMP,
		Dst:      dst.IP.To4(),
	}
	if err := t.conn.WriteTo(h, b, nil); err != nil {
		return 0, err
	}
	return len(b), nil
}

func (t *RawTransport) Receive(b []byte, timeout time.Duration) (int, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}
	h, p, _, err := t.conn.ReadFrom(b)
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return 0, ErrTimeout
		}
		return 0, err
	}
	return h.Len + len(p), nil
}

func (t *RawTransport) Close() error {
	return t.conn.Close()
}
