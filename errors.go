package probe

import "errors"

var (
	// ErrUnknownHost is returned when the target cannot be resolved to an IPv4 address.
	ErrUnknownHost = errors.New("unknown host")
	// ErrTransport is returned when the socket cannot be opened or a frame cannot be written.
	ErrTransport = errors.New("transport failure")
	// ErrTimeout is returned by a Transport when no datagram arrived before the poll deadline.
	ErrTimeout = errors.New("receive timeout")
	// ErrInvalidOption is returned by NewSession for an unusable configuration.
	ErrInvalidOption = errors.New("invalid option")
)
