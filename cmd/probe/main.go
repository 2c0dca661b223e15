package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"gitlab.bertha.cloud/partitio/isi/probe"
)

const defaultHost = "10.0.0.3"

// errExceeded makes the process exit with a distinct status.
var errExceeded = errors.New("error rate exceeded")

var (
	bind         string
	ttl          int
	frames       int
	frameSize    int
	minReplies   int
	interval     time.Duration
	pollTimeout  time.Duration
	replyTimeout time.Duration
	debug        bool

	rootCmd = &cobra.Command{
		Use:           "probe [host]",
		Short:         "Send a burst of ICMP echo requests and report error rate and average latency",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				logrus.SetLevel(logrus.DebugLevel)
			}
			host := defaultHost
			if len(args) == 1 {
				host = args[0]
			}
			t, err := probe.ListenRaw(bind)
			if err != nil {
				return err
			}
			if err := dropPrivileges(); err != nil {
				t.Close()
				return err
			}
			if err := t.SetTTL(ttl); err != nil {
				t.Close()
				return err
			}
			s, err := probe.NewSession(t,
				probe.WithFrames(frames),
				probe.WithFrameSize(frameSize),
				probe.WithMinReplies(minReplies),
				probe.WithInterval(interval),
				probe.WithPollTimeout(pollTimeout),
				probe.WithReplyTimeout(replyTimeout),
			)
			if err != nil {
				t.Close()
				return err
			}
			defer s.Close()

			res, err := s.Run(cmd.Context(), host)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res)
			if res.ErrorRateExceeded {
				return errExceeded
			}
			return nil
		},
	}
)

// dropPrivileges gives up root once the raw socket is open.
func dropPrivileges() error {
	uid := unix.Getuid()
	if unix.Geteuid() == uid {
		return nil
	}
	if err := unix.Setuid(uid); err != nil {
		return fmt.Errorf("dropping privileges: %w", err)
	}
	return nil
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&bind, "bind", "b", "0.0.0.0", "local address to listen on")
	flags.IntVar(&ttl, "ttl", 64, "time to live of outgoing datagrams")
	flags.IntVarP(&frames, "count", "c", 20, "frames sent per run")
	flags.IntVarP(&frameSize, "size", "s", 124, "ICMP frame size in bytes, header included")
	flags.IntVar(&minReplies, "min-replies", 18, "replies needed for the error rate to stay within bounds")
	flags.DurationVarP(&interval, "interval", "i", 20*time.Millisecond, "minimum spacing between frames")
	flags.DurationVar(&pollTimeout, "poll-timeout", 20*time.Millisecond, "wait of a single receive poll")
	flags.DurationVarP(&replyTimeout, "timeout", "W", time.Second, "maximum wait for one reply")
	flags.BoolVarP(&debug, "debug", "d", false, "enable debug logs")
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errExceeded) {
			os.Exit(2)
		}
		logrus.Error(err)
		os.Exit(1)
	}
}
