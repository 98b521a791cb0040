package call

import (
	"context"
	"time"
)

// Runner drives a Session's timers from the wall clock. Tests never need it;
// they feed time through Advance directly.
type Runner struct {
	session  *Session
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// NewRunner creates a runner that ticks the session at the given interval.
// A zero interval defaults to one second.
func NewRunner(session *Session, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = time.Second
	}
	return &Runner{
		session:  session,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run advances the session on every tick until the call ends, the runner is
// stopped, or ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.session.Advance(r.interval)
			if r.session.State() == StateEnded {
				return
			}
		case <-r.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop halts the runner and waits for Run to return.
func (r *Runner) Stop() {
	close(r.stop)
	<-r.done
}
