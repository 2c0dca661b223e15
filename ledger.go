package probe

import "time"

// ledger holds one latency sample per frame of a run. The slot of sequence
// number seq is (seq - base) % len(results) where base is the first sequence
// number of the run, so a counter wrapping mid-run never folds two frames onto
// one slot. A slot is written at most once per run; slots of unanswered frames
// stay zero.
type ledger struct {
	base    uint16
	results []time.Duration
	sent    []time.Time
	written []bool
}

func newLedger(base uint16, n int) *ledger {
	return &ledger{
		base:    base,
		results: make([]time.Duration, n),
		sent:    make([]time.Time, n),
		written: make([]bool, n),
	}
}

func (l *ledger) slot(seq uint16) int {
	return int(seq-l.base) % len(l.results)
}

func (l *ledger) markSent(seq uint16, t time.Time) {
	l.sent[l.slot(seq)] = t
}

// record stores the round trip of seq measured at now. It returns false when
// the slot already holds a sample.
func (l *ledger) record(seq uint16, now time.Time) (time.Duration, bool) {
	i := l.slot(seq)
	if l.written[i] {
		return 0, false
	}
	rtt := now.Sub(l.sent[i])
	// a zero sample would read as a miss
	if rtt <= 0 {
		rtt = 1
	}
	l.results[i] = rtt
	l.written[i] = true
	return rtt, true
}

func (l *ledger) total() (d time.Duration) {
	for _, v := range l.results {
		d += v
	}
	return d
}
