package model

import (
	"time"

	"github.com/remedios-lab/remedios/pkg/domain/types"
)

// Session is a short-lived per-user dialogue scratchpad. Reminder parameters
// accumulate here turn by turn until the user confirms or abandons the flow.
//
// At most one session is ever read for a user at a given instant: lookup
// always takes the most-recently-created row. A burst of concurrent messages
// from the same user can transiently create extra rows; those are garbage
// that the reaper removes by age.
type Session struct {
	ID     types.SessionID
	UserID types.UserID
	Stage  types.DialogStage

	// Accumulated reminder parameters. Zero values mean "not supplied yet".
	SubjectName string
	Time        time.Time
	Period      float64
	Unit        types.RecurrenceUnit

	// CreatedAt is set once on creation and never mutated; the reaper keys
	// expiry off it.
	CreatedAt time.Time
}

// NewSession creates a fresh session for a user. The proposed reminder time
// anchors to the creation instant until the dialogue overrides it.
func NewSession(userID types.UserID, now time.Time) *Session {
	return &Session{
		ID:        types.NewSessionID(),
		UserID:    userID,
		Stage:     types.StageCollecting,
		Time:      now,
		CreatedAt: now,
	}
}

// Anchor returns the proposed first-occurrence time, falling back to the
// session creation time when the dialogue never set one.
func (s *Session) Anchor() time.Time {
	if s.Time.IsZero() {
		return s.CreatedAt
	}
	return s.Time
}

// ExpiresAt returns the instant the reaper may remove this session
func (s *Session) ExpiresAt(ttl time.Duration) time.Time {
	return s.CreatedAt.Add(ttl)
}
