package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/jmhodges/clock"
	"github.com/m-mizutani/goerr/v2"
	"github.com/remedios-lab/remedios/pkg/domain/interfaces"
	"github.com/remedios-lab/remedios/pkg/domain/model"
	"github.com/remedios-lab/remedios/pkg/service/messenger"
	"github.com/remedios-lab/remedios/pkg/utils/errutil"
	"github.com/remedios-lab/remedios/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// DefaultPollInterval is the firing cadence of the reminder loop
const DefaultPollInterval = 5 * time.Second

// maxConcurrentFires bounds the per-pass dispatch fan-out
const maxConcurrentFires = 8

// ReminderPoller is the background loop that finds due reminders, advances
// them and dispatches notifications. It must never silently stop advancing:
// every error inside a pass is logged and the loop keeps its fixed schedule.
//
// Architecture assumptions:
// - Single server instance (no distributed locking). Two concurrent pollers
//   could double-advance a reminder; NextFireAt still never moves backwards.
type ReminderPoller struct {
	repo     interfaces.Repository
	notifier messenger.Service
	interval time.Duration
	clk      clock.Clock
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// PollerOption is a functional option for ReminderPoller configuration
type PollerOption func(*ReminderPoller)

// WithPollerClock injects a clock, letting tests drive a pass off a fixed now
func WithPollerClock(clk clock.Clock) PollerOption {
	return func(p *ReminderPoller) {
		p.clk = clk
	}
}

// NewReminderPoller creates a poller firing due reminders every interval
func NewReminderPoller(repo interfaces.Repository, notifier messenger.Service, interval time.Duration, opts ...PollerOption) *ReminderPoller {
	p := &ReminderPoller{
		repo:     repo,
		notifier: notifier,
		interval: interval,
		clk:      clock.New(),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Start begins the background polling loop. It does not block.
func (p *ReminderPoller) Start(ctx context.Context) error {
	logging.Default().Info("Reminder poller starting", "interval", p.interval.String())
	go p.run(ctx)
	return nil
}

// Stop signals the poller to stop and waits for completion
func (p *ReminderPoller) Stop() {
	logging.Default().Info("Reminder poller stopping")
	close(p.stopCh)
	<-p.doneCh
	logging.Default().Info("Reminder poller stopped")
}

func (p *ReminderPoller) run(ctx context.Context) {
	defer close(p.doneCh)

	// Initial pass catches up on reminders that came due while the
	// process was down.
	if err := p.Poll(ctx); err != nil {
		logging.Default().Error("Reminder poll failed (will retry next interval)",
			"error", err.Error())
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := p.Poll(ctx); err != nil {
				logging.Default().Error("Reminder poll failed (will retry next interval)",
					"error", err.Error())
			}

		case <-p.stopCh:
			logging.Default().Info("Reminder poller received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("Reminder poller context cancelled")
			return
		}
	}
}

// Poll performs a single pass: every reminder due at or before now is
// advanced and its notification dispatched. A per-reminder failure is
// logged and does not block the others; ordering across reminders in a
// pass is unspecified.
func (p *ReminderPoller) Poll(ctx context.Context) error {
	now := p.clk.Now()

	due, err := p.repo.Reminder().ListDue(ctx, now)
	if err != nil {
		return goerr.Wrap(err, "failed to list due reminders")
	}
	if len(due) == 0 {
		return nil
	}

	logging.From(ctx).Info("Firing due reminders", "count", len(due))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentFires)
	for _, reminder := range due {
		eg.Go(func() error {
			if err := p.fire(ctx, now, reminder); err != nil {
				errutil.Handle(ctx, err, "failed to fire reminder")
			}
			// Per-reminder isolation: never cancel the siblings
			return nil
		})
	}

	return eg.Wait()
}

// fire advances one reminder and dispatches its notification. The advanced
// NextFireAt is written back before dispatch so a delivery failure cannot
// cause a duplicate near-future fire.
func (p *ReminderPoller) fire(ctx context.Context, now time.Time, reminder *model.Reminder) error {
	next := reminder.NextOccurrence(now)
	reminder.NextFireAt = next

	if err := p.repo.Reminder().Update(ctx, reminder); err != nil {
		return goerr.Wrap(err, "failed to advance reminder",
			goerr.V("id", reminder.ID),
			goerr.V("next", next),
		)
	}

	if err := p.notifier.Send(ctx, reminder.UserID, formatDueNotice(reminder.SubjectName, next)); err != nil {
		// Delivery failure is logged, not retried; the reminder is
		// already advanced.
		return goerr.Wrap(err, "failed to dispatch reminder notification",
			goerr.V("id", reminder.ID),
			goerr.V("userID", reminder.UserID),
		)
	}

	return nil
}

// dueNoticeTimeLayout renders times as "Mon Jan 2 2006 15:04", day not
// zero-padded.
const dueNoticeTimeLayout = "Mon Jan 2 2006 15:04"

func formatDueNotice(subjectName string, next time.Time) string {
	return fmt.Sprintf("Remember to take %s now. Your next reminder to take %s will be on %s UTC.",
		subjectName, subjectName, next.Format(dueNoticeTimeLayout))
}
