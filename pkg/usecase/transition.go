package usecase

import (
	"time"

	"github.com/remedios-lab/remedios/pkg/domain/model"
	"github.com/remedios-lab/remedios/pkg/domain/types"
)

// DefaultFailureReply is sent when a dialogue turn cannot persist its effects.
const DefaultFailureReply = "Sorry, but something went wrong. Please try again."

// Outcome is the result of one dialogue turn: the reply text plus the store
// effects to apply. Effects are data so the transition stays a pure function
// of (now, session, resolved intent).
type Outcome struct {
	Response string

	// SaveSession persists the accumulated session when non-nil.
	SaveSession *model.Session

	// CreateReminder persists a new reminder when non-nil.
	CreateReminder *model.Reminder

	// DeleteSubject removes every reminder the user has for this subject
	// when non-empty.
	DeleteSubject string

	// EndSession destroys the session after the other effects.
	EndSession bool
}

// Transition maps a resolved intent onto the session state machine.
//
// Collection intents accumulate slots on the session and move it to a
// confirmation stage. Confirmation intents commit the accumulated state as a
// reminder mutation and end the session. Any other intent abandons the
// session, so a stray message cannot leave a half-built dialogue behind.
func Transition(now time.Time, session *model.Session, resolved *model.ResolvedIntent) Outcome {
	switch resolved.Intent {
	case types.IntentSetReminder:
		s := *session
		s.SubjectName = resolved.Fields.Get(model.ParamMedicine).StringOr(s.SubjectName)
		s.Period = resolved.Fields.Get(model.ParamNumber).NumberOr(model.DefaultPeriod)
		s.Unit = types.RecurrenceUnit(resolved.Fields.Get(model.ParamTimeFrequency).StringOr(string(s.Unit))).Normalize()
		s.Stage = types.StageAwaitingConfirmation
		return Outcome{Response: resolved.Response, SaveSession: &s}

	case types.IntentSetReminderTime:
		s := *session
		s.SubjectName = resolved.Fields.Get(model.ParamMedicine).StringOr(s.SubjectName)
		s.Time = resolved.Fields.Get(model.ParamTime).TimeOr(s.Time)
		s.Stage = types.StageAwaitingConfirmation
		return Outcome{Response: resolved.Response, SaveSession: &s}

	case types.IntentSetReminderYes, types.IntentSetReminderTimeYes:
		if session.SubjectName == "" {
			// Confirmation without a collected subject. Nothing to
			// commit, so the dialogue just ends.
			return Outcome{Response: resolved.Response, EndSession: true}
		}
		return Outcome{
			Response:       resolved.Response,
			CreateReminder: buildReminder(now, session),
			EndSession:     true,
		}

	case types.IntentDeleteReminder:
		s := *session
		s.SubjectName = resolved.Fields.Get(model.ParamMedicine).StringOr(s.SubjectName)
		s.Stage = types.StageAwaitingDeleteConfirmation
		return Outcome{Response: resolved.Response, SaveSession: &s}

	case types.IntentDeleteReminderYes:
		if session.SubjectName == "" {
			return Outcome{Response: resolved.Response, EndSession: true}
		}
		return Outcome{
			Response:      resolved.Response,
			DeleteSubject: session.SubjectName,
			EndSession:    true,
		}

	default:
		// Unrelated or unrecognized intent abandons the dialogue.
		return Outcome{Response: resolved.Response, EndSession: true}
	}
}

// buildReminder commits the accumulated session slots into a reminder. The
// first fire time is the anchor itself when it is still in the future,
// otherwise one full period past the anchor.
func buildReminder(now time.Time, session *model.Session) *model.Reminder {
	period := session.Period
	if period <= 0 {
		period = model.DefaultPeriod
	}
	unit := session.Unit.Normalize()

	anchor := session.Anchor()
	next := anchor
	if !anchor.After(now) {
		next = model.Advance(anchor, period, unit)
	}

	return &model.Reminder{
		UserID:      session.UserID,
		SubjectName: session.SubjectName,
		AnchorTime:  anchor,
		NextFireAt:  next,
		Period:      period,
		Unit:        unit,
	}
}
