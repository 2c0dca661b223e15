package probe

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"
)

// resolve returns the first IPv4 address of addr.
func resolve(ctx context.Context, r Resolver, addr string, timeout time.Duration) (net.IPAddr, error) {
	if ip := net.ParseIP(addr); ip != nil {
		if ip.To4() == nil {
			return net.IPAddr{}, fmt.Errorf("%w %s: not an ipv4 address", ErrUnknownHost, addr)
		}
		return net.IPAddr{IP: ip.To4()}, nil
	}
	if strings.ContainsRune(addr, '%') {
		return net.IPAddr{}, fmt.Errorf("%w %s: zoned addresses are ipv6 only", ErrUnknownHost, addr)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	addrs, err := r.LookupIPAddr(ctx, addr)
	if err != nil {
		return net.IPAddr{}, fmt.Errorf("%w %s: %v", ErrUnknownHost, addr, err)
	}
	for _, a := range addrs {
		if ip4 := a.IP.To4(); ip4 != nil {
			return net.IPAddr{IP: ip4}, nil
		}
	}
	return net.IPAddr{}, fmt.Errorf("%w %s: no ipv4 address found", ErrUnknownHost, addr)
}
