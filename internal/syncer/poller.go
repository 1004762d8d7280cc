package syncer

import (
	"context"
	"time"
)

// Poller drives opportunistic background syncs: a periodic tick while the
// session is visible, plus an immediate attempt whenever the session comes
// back into view. Each attempt is pull-only unless local changes are
// pending, so a quiet replica never overwrites the remote needlessly.
type Poller struct {
	orch     *Orchestrator
	interval time.Duration

	// visible gates ticks; nil means always visible.
	visible func() bool

	resume chan struct{}
	done   chan struct{}
}

func NewPoller(orch *Orchestrator, interval time.Duration, visible func() bool) *Poller {
	return &Poller{
		orch:     orch,
		interval: interval,
		visible:  visible,
		resume:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Start runs the polling loop until ctx is canceled. It returns when the
// loop has fully stopped.
func (p *Poller) Start(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if p.isVisible() {
				p.attempt(ctx)
			}
		case <-p.resume:
			if p.isVisible() {
				p.attempt(ctx)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Resume requests an immediate opportunistic sync, as when a hidden session
// becomes visible again. Non-blocking; a pending request is enough.
func (p *Poller) Resume() {
	select {
	case p.resume <- struct{}{}:
	default:
	}
}

// Done is closed once the polling loop has exited.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

func (p *Poller) isVisible() bool {
	return p.visible == nil || p.visible()
}

func (p *Poller) attempt(ctx context.Context) {
	opts := Options{PullOnly: !p.orch.svc.Meta().Dirty}
	// Outcome is already logged and surfaced by the orchestrator; a
	// background tick has nobody else to report to.
	_ = p.orch.Sync(ctx, opts)
}
