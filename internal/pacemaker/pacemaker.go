// Package pacemaker runs a heartbeat ticker alongside a long inner loop,
// decoupling "how much work is done" from "how often we must tell the
// workflow runtime we're still alive". Modeled on a ProgressTracker
// style heartbeat: an independent ticker goroutine carries the latest
// reported percent regardless of how the inner loop is paced.
package pacemaker

import "time"

// Pacemaker ticks at interval, invoking beat with the latest percent
// reported via Report, until Stop is called. It is safe to call Report
// from the same goroutine that created the Pacemaker; the ticker
// goroutine only reads the last reported value.
type Pacemaker struct {
	beat     func(percent int)
	interval time.Duration
	reportCh chan int
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// Start begins ticking immediately in a background goroutine. beat is
// called at least once per interval with the most recently Report-ed
// percent (0 if none yet).
func Start(interval time.Duration, beat func(percent int)) *Pacemaker {
	p := &Pacemaker{
		beat:     beat,
		interval: interval,
		reportCh: make(chan int, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Pacemaker) run() {
	defer close(p.doneCh)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	last := 0
	for {
		select {
		case pct := <-p.reportCh:
			last = pct
		case <-ticker.C:
			p.beat(last)
		case <-p.stopCh:
			return
		}
	}
}

// Report updates the percent the next heartbeat will carry. Non-blocking.
func (p *Pacemaker) Report(percent int) {
	select {
	case p.reportCh <- percent:
	default:
		// drain stale value, then push the fresh one
		select {
		case <-p.reportCh:
		default:
		}
		select {
		case p.reportCh <- percent:
		default:
		}
	}
}

// Stop halts the ticker goroutine and waits for it to exit.
func (p *Pacemaker) Stop() {
	close(p.stopCh)
	<-p.doneCh
}
