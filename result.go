package probe

import (
	"fmt"
	"math"
	"net"
	"time"

	"github.com/sirupsen/logrus"
)

// Result is the outcome of one run against one host.
type Result struct {
	// Addr is the host as given to Run.
	Addr string

	// IPAddr is the resolved address of the host.
	IPAddr net.IPAddr

	// FramesSent is the number of Echo Requests written.
	FramesSent int

	// RepliesMatched is the number of in-window Echo Replies received.
	RepliesMatched int

	// AverageLatency is the sum of all samples divided by FramesSent.
	// Unanswered frames count as zero.
	AverageLatency time.Duration

	// ErrorRateExceeded is set when fewer replies than required were matched.
	ErrorRateExceeded bool

	// MaxLoss is the tolerated loss percentage.
	MaxLoss float64

	// PacketLoss is the percentage of frames left unanswered.
	PacketLoss float64

	// Rtts holds one sample per frame of the run, 0 means timeout.
	Rtts []time.Duration

	// MinRtt, MaxRtt, AvgRtt and StdDevRtt only consider answered frames.
	MinRtt    time.Duration
	MaxRtt    time.Duration
	AvgRtt    time.Duration
	StdDevRtt time.Duration
}

// AverageLatencySeconds returns AverageLatency in seconds.
func (r Result) AverageLatencySeconds() float64 {
	return r.AverageLatency.Seconds()
}

// String renders the one line report.
func (r Result) String() string {
	rate := "less than or equal to"
	if r.ErrorRateExceeded {
		rate = "more than"
	}
	return fmt.Sprintf("Error rate is %s %g%%, Average latency time is %f", rate, r.MaxLoss, r.AverageLatencySeconds())
}

// summarize reduces the ledger of a run. It has no side effect.
func summarize(l *ledger, matched, sent, minReplies int) (r Result) {
	r.FramesSent = sent
	r.RepliesMatched = matched
	r.ErrorRateExceeded = matched < minReplies
	r.Rtts = make([]time.Duration, len(l.results))
	copy(r.Rtts, l.results)
	if sent == 0 {
		return r
	}

	r.MaxLoss = float64(sent-minReplies) / float64(sent) * 100
	r.PacketLoss = float64(sent-matched) / float64(sent) * 100
	r.AverageLatency = l.total() / time.Duration(sent)

	count := 0
	for _, rtt := range l.results {
		if rtt == 0 {
			continue
		}
		if count == 0 || rtt < r.MinRtt {
			r.MinRtt = rtt
		}
		if rtt > r.MaxRtt {
			r.MaxRtt = rtt
		}
		count++
	}
	if count == 0 {
		return r
	}
	r.AvgRtt = l.total() / time.Duration(count)

	stddevNum := float64(0)
	for _, rtt := range l.results {
		if rtt != 0 {
			stddevNum += math.Pow(float64(rtt-r.AvgRtt), 2)
		}
	}
	r.StdDevRtt = time.Duration(math.Sqrt(stddevNum / float64(count)))
	return r
}

func logResult(log logrus.FieldLogger, r Result) {
	log.WithFields(logrus.Fields{
		"host":     r.Addr,
		"address":  r.IPAddr.String(),
		"sent":     r.FramesSent,
		"received": r.RepliesMatched,
		"lost":     r.PacketLoss,
		"exceeded": r.ErrorRateExceeded,
		"average":  r.AverageLatency,
		"min":      r.MinRtt,
		"max":      r.MaxRtt,
		"mean":     r.AvgRtt,
		"stddev":   r.StdDevRtt,
	}).Info("probe finished")
}
