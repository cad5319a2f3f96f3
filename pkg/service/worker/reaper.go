package worker

import (
	"context"
	"time"

	"github.com/jmhodges/clock"
	"github.com/m-mizutani/goerr/v2"
	"github.com/remedios-lab/remedios/pkg/domain/interfaces"
	"github.com/remedios-lab/remedios/pkg/utils/logging"
)

const (
	// DefaultReapInterval runs the reaper at a coarser cadence than the
	// poller; it bounds staleness, not correctness.
	DefaultReapInterval = time.Hour

	// DefaultSessionTTL is how long an inactive dialogue session survives
	DefaultSessionTTL = time.Hour
)

// SessionReaper is the background loop that deletes dialogue sessions past
// their TTL. A failed pass is logged and skipped; the next tick retries.
type SessionReaper struct {
	repo     interfaces.Repository
	interval time.Duration
	ttl      time.Duration
	clk      clock.Clock
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// ReaperOption is a functional option for SessionReaper configuration
type ReaperOption func(*SessionReaper)

// WithReaperClock injects a clock, letting tests drive a pass off a fixed now
func WithReaperClock(clk clock.Clock) ReaperOption {
	return func(r *SessionReaper) {
		r.clk = clk
	}
}

// NewSessionReaper creates a reaper removing sessions older than ttl every
// interval
func NewSessionReaper(repo interfaces.Repository, interval, ttl time.Duration, opts ...ReaperOption) *SessionReaper {
	r := &SessionReaper{
		repo:     repo,
		interval: interval,
		ttl:      ttl,
		clk:      clock.New(),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Start begins the background reaping loop. It does not block.
func (r *SessionReaper) Start(ctx context.Context) error {
	logging.Default().Info("Session reaper starting",
		"interval", r.interval.String(),
		"ttl", r.ttl.String(),
	)
	go r.run(ctx)
	return nil
}

// Stop signals the reaper to stop and waits for completion
func (r *SessionReaper) Stop() {
	logging.Default().Info("Session reaper stopping")
	close(r.stopCh)
	<-r.doneCh
	logging.Default().Info("Session reaper stopped")
}

func (r *SessionReaper) run(ctx context.Context) {
	defer close(r.doneCh)

	if err := r.Reap(ctx); err != nil {
		logging.Default().Error("Session reap failed (will retry next interval)",
			"error", err.Error())
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := r.Reap(ctx); err != nil {
				logging.Default().Error("Session reap failed (will retry next interval)",
					"error", err.Error())
			}

		case <-r.stopCh:
			logging.Default().Info("Session reaper received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("Session reaper context cancelled")
			return
		}
	}
}

// Reap performs a single pass, bulk-deleting every session whose creation
// time is past the TTL
func (r *SessionReaper) Reap(ctx context.Context) error {
	cutoff := r.clk.Now().Add(-r.ttl)

	deleted, err := r.repo.Session().DeleteCreatedBefore(ctx, cutoff)
	if err != nil {
		return goerr.Wrap(err, "failed to reap stale sessions", goerr.V("cutoff", cutoff))
	}

	if deleted > 0 {
		logging.From(ctx).Info("Reaped stale sessions", "count", deleted)
	}

	return nil
}
