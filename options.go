package probe

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"
)

// Resolver looks up the addresses of a host. *net.Resolver satisfies it.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

type options struct {
	frames          int
	frameSize       int
	minReplies      int
	pollTimeout     time.Duration
	interval        time.Duration
	replyTimeout    time.Duration
	resolverTimeout time.Duration
	id              uint16
	resolver        Resolver
}

var defaultOptions = options{
	frames:          20,
	frameSize:       124,
	minReplies:      18,
	pollTimeout:     20 * time.Millisecond,
	interval:        20 * time.Millisecond,
	replyTimeout:    time.Second,
	resolverTimeout: time.Second,
	id:              uint16(os.Getpid() & 0xffff),
	resolver:        net.DefaultResolver,
}

// Option configures a Session.
type Option func(o *options)

// WithFrames sets the number of frames sent per run.
func WithFrames(n int) Option {
	return func(o *options) {
		o.frames = n
	}
}

// WithFrameSize sets the ICMP frame size in bytes, header included.
func WithFrameSize(n int) Option {
	return func(o *options) {
		o.frameSize = n
	}
}

// WithMinReplies sets how many matched replies a run needs for its error rate
// to stay within bounds.
func WithMinReplies(n int) Option {
	return func(o *options) {
		o.minReplies = n
	}
}

// WithPollTimeout sets the wait of a single receive poll.
func WithPollTimeout(d time.Duration) Option {
	return func(o *options) {
		o.pollTimeout = d
	}
}

// WithInterval sets the minimum spacing between two frames.
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		o.interval = d
	}
}

// WithReplyTimeout bounds the time spent waiting for one frame while unrelated
// traffic keeps arriving.
func WithReplyTimeout(d time.Duration) Option {
	return func(o *options) {
		o.replyTimeout = d
	}
}

// WithResolverTimeout bounds host resolution.
func WithResolverTimeout(d time.Duration) Option {
	return func(o *options) {
		o.resolverTimeout = d
	}
}

// WithIdentifier sets the ICMP identifier carried by every frame.
func WithIdentifier(id uint16) Option {
	return func(o *options) {
		o.id = id
	}
}

// WithResolver replaces net.DefaultResolver.
func WithResolver(r Resolver) Option {
	return func(o *options) {
		o.resolver = r
	}
}

func (o options) validate() error {
	switch {
	case o.frames < 1 || o.frames >= 1<<15:
		return fmt.Errorf("%w: frames must be in [1, %d), got %d", ErrInvalidOption, 1<<15, o.frames)
	case o.frameSize < echoHeaderLen || o.frameSize > 0xffff-maxIPv4Header:
		return fmt.Errorf("%w: frame size must be in [%d, %d], got %d", ErrInvalidOption, echoHeaderLen, 0xffff-maxIPv4Header, o.frameSize)
	case o.minReplies < 0 || o.minReplies > o.frames:
		return fmt.Errorf("%w: min replies must be in [0, %d], got %d", ErrInvalidOption, o.frames, o.minReplies)
	case o.pollTimeout <= 0, o.replyTimeout <= 0, o.resolverTimeout <= 0:
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidOption)
	case o.interval < 0:
		return fmt.Errorf("%w: interval must not be negative", ErrInvalidOption)
	case o.resolver == nil:
		return fmt.Errorf("%w: nil resolver", ErrInvalidOption)
	}
	return nil
}
