package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/remedios-lab/remedios/pkg/domain/types"
)

// DefaultPeriod is used when the NLU delivers a missing or malformed period
const DefaultPeriod = 1

// Reminder represents a persistent recurring notification obligation tied to
// one user and one subject name (typically a medicine name).
type Reminder struct {
	ID          types.ReminderID
	UserID      types.UserID
	SubjectName string

	// AnchorTime is the timestamp of the first occurrence. It defaults to
	// the creation time when the dialogue never supplied an explicit time.
	AnchorTime time.Time

	// NextFireAt is always the recurrence calculator's output applied to
	// the previous value (or AnchorTime on first fire); it is monotonically
	// non-decreasing across updates.
	NextFireAt time.Time

	Period float64
	Unit   types.RecurrenceUnit
}

// Validate checks if the reminder is persistable
func (r *Reminder) Validate() error {
	if err := r.UserID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid reminder owner")
	}
	if r.SubjectName == "" {
		return goerr.New("subject name is required")
	}
	if r.Period <= 0 {
		return goerr.New("period must be positive", goerr.V("period", r.Period))
	}
	if r.NextFireAt.IsZero() {
		return goerr.New("next fire time is required")
	}
	return nil
}

// NextOccurrence computes the reminder's next fire time after the given
// instant. Both the dialogue flow and the poller go through this so the two
// call sites agree bit-for-bit.
func (r *Reminder) NextOccurrence(from time.Time) time.Time {
	return Advance(from, r.Period, r.Unit)
}
