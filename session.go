package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// Session probes one host at a time over a Transport it owns.
//
// The sequence counter lives as long as the Session and wraps at 0xffff, every
// run gets a fresh ledger. A Session is not safe for concurrent use: probing
// several hosts at once needs one Session and one Transport per host.
type Session struct {
	opts      options
	transport Transport
	codec     codec
	log       logrus.FieldLogger

	seq uint16
	buf []byte
}

// NewSession creates a Session sending over t.
func NewSession(t Transport, opts ...Option) (*Session, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil transport", ErrInvalidOption)
	}
	o := defaultOptions
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	c := codec{id: o.id, size: o.frameSize}
	return &Session{
		opts:      o,
		transport: t,
		codec:     c,
		log:       logrus.StandardLogger(),
		buf:       make([]byte, c.bufferLen()),
	}, nil
}

// SetLogger replaces the standard logrus logger.
func (s *Session) SetLogger(l logrus.FieldLogger) {
	s.log = l
}

// Close closes the transport.
func (s *Session) Close() error {
	return s.transport.Close()
}

// Run sends the configured number of frames to host, one at a time, and
// summarizes the replies. Resolution and transmission failures abort the run
// and no Result is returned. Cancelling ctx stops the run at the next frame
// boundary.
func (s *Session) Run(ctx context.Context, host string) (Result, error) {
	ipaddr, err := resolve(ctx, s.opts.resolver, host, s.opts.resolverTimeout)
	if err != nil {
		return Result{}, err
	}
	r := &run{
		Session: s,
		dst:     &ipaddr,
		ledger:  newLedger(s.seq, s.opts.frames),
		log: s.log.WithFields(logrus.Fields{
			"host":    host,
			"address": ipaddr.String(),
		}),
	}
	for i := 0; i < s.opts.frames; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("probe %s: %w", host, err)
		}
		start, err := r.send()
		if err != nil {
			return Result{}, err
		}
		r.await(ctx, start)
		if err := r.pace(ctx, start); err != nil {
			return Result{}, fmt.Errorf("probe %s: %w", host, err)
		}
	}
	res := summarize(r.ledger, r.matched, r.sent, s.opts.minReplies)
	res.Addr = host
	res.IPAddr = ipaddr
	logResult(r.log, res)
	return res, nil
}

type run struct {
	*Session
	dst     *net.IPAddr
	ledger  *ledger
	log     logrus.FieldLogger
	sent    int
	matched int
}

func (r *run) send() (time.Time, error) {
	seq := r.seq
	r.seq++
	b := r.codec.build(seq)
	n, err := r.transport.Send(b, r.dst)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: sendto %s: %v", ErrTransport, r.dst, err)
	}
	if n != len(b) {
		return time.Time{}, fmt.Errorf("%w: write incomplete: %d of %d bytes", ErrTransport, n, len(b))
	}
	now := time.Now()
	r.ledger.markSent(seq, now)
	r.sent++
	r.log.Debugf("sent seq %d", seq)
	return now, nil
}

// await polls the transport until a reply is matched or a poll times out.
// Foreign, stale and duplicate replies keep it polling, bounded by the reply
// timeout. A receive error uses up the rest of its poll slice. It reports
// whether a reply was matched.
func (r *run) await(ctx context.Context, start time.Time) bool {
	deadline := start.Add(r.opts.replyTimeout)
	for {
		wait := time.Until(deadline)
		if wait <= 0 {
			r.log.Debug("reply timeout")
			return false
		}
		if wait > r.opts.pollTimeout {
			wait = r.opts.pollTimeout
		}
		polled := time.Now()
		n, err := r.transport.Receive(r.buf, wait)
		switch {
		case errors.Is(err, ErrTimeout):
			r.log.Debug("poll timeout")
			return false
		case errors.Is(err, syscall.EINTR):
			continue
		case err != nil:
			r.log.WithError(err).Warn("recvfrom")
			if sleep(ctx, wait-time.Since(polled)) != nil {
				return false
			}
			continue
		}
		reply, ok := r.codec.parse(r.buf[:n])
		if !ok || reply.ID != r.opts.id || !reply.Src.Equal(r.dst.IP) {
			continue
		}
		if !r.inWindow(reply.Seq) {
			r.log.Debugf("stale reply seq %d", reply.Seq)
			continue
		}
		rtt, ok := r.ledger.record(reply.Seq, time.Now())
		if !ok {
			r.log.Debugf("duplicate reply seq %d", reply.Seq)
			continue
		}
		r.matched++
		r.log.Debugf("reply seq %d in %v", reply.Seq, rtt)
		return true
	}
}

// inWindow reports whether seq is one of the last N frames of this run.
func (r *run) inWindow(seq uint16) bool {
	d := int(r.seq - seq)
	return d >= 1 && d <= r.sent
}

// pace sleeps so that two sends are at least one interval apart.
func (r *run) pace(ctx context.Context, start time.Time) error {
	return sleep(ctx, r.opts.interval-time.Since(start))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
