package usecase

import (
	"context"

	"github.com/jmhodges/clock"
	"github.com/m-mizutani/goerr/v2"
	"github.com/remedios-lab/remedios/pkg/domain/interfaces"
	"github.com/remedios-lab/remedios/pkg/domain/model"
	"github.com/remedios-lab/remedios/pkg/domain/types"
	"github.com/remedios-lab/remedios/pkg/service/dialogflow"
	"github.com/remedios-lab/remedios/pkg/service/messenger"
	"github.com/remedios-lab/remedios/pkg/utils/errutil"
	"github.com/remedios-lab/remedios/pkg/utils/logging"
)

// Conversation drives one dialogue turn per inbound message: it looks up or
// creates the user's session, resolves the text to an intent, applies the
// state machine and dispatches the reply.
type Conversation struct {
	repo         interfaces.Repository
	resolver     dialogflow.Service
	notifier     messenger.Service
	clk          clock.Clock
	failureReply string
}

func newConversation(repo interfaces.Repository, resolver dialogflow.Service, notifier messenger.Service, clk clock.Clock, failureReply string) *Conversation {
	return &Conversation{
		repo:         repo,
		resolver:     resolver,
		notifier:     notifier,
		clk:          clk,
		failureReply: failureReply,
	}
}

// HandleMessage processes one text message from a user.
//
// Store failures while applying the turn's effects are reported to the user
// with a generic failure reply rather than silence. Dispatch failures are
// logged but do not fail the turn; the state change already happened.
func (c *Conversation) HandleMessage(ctx context.Context, userID types.UserID, text string) error {
	logger := logging.From(ctx)

	if err := userID.Validate(); err != nil {
		return err
	}

	session, err := c.repo.Session().GetLatestByUser(ctx, userID)
	if err != nil {
		return goerr.Wrap(err, "failed to look up session", goerr.V("userID", userID))
	}
	if session == nil {
		session, err = c.repo.Session().Create(ctx, model.NewSession(userID, c.clk.Now().UTC()))
		if err != nil {
			return goerr.Wrap(err, "failed to create session", goerr.V("userID", userID))
		}
		logger.Debug("started session", "sessionID", session.ID, "userID", userID)
	}

	resolved, err := c.resolver.Resolve(ctx, text, session.ID)
	if err != nil {
		return goerr.Wrap(err, "failed to resolve intent",
			goerr.V("userID", userID),
			goerr.V("sessionID", session.ID),
		)
	}

	outcome := Transition(c.clk.Now().UTC(), session, resolved)

	reply := outcome.Response
	if err := c.apply(ctx, session, &outcome); err != nil {
		errutil.Handle(ctx, err, "failed to apply dialogue turn")
		reply = c.failureReply
	}

	if reply == "" {
		logger.Debug("no reply text, skipping dispatch", "userID", userID, "intent", resolved.Intent)
		return nil
	}

	if err := c.notifier.Send(ctx, userID, reply); err != nil {
		errutil.Handle(ctx, err, "failed to dispatch reply")
	}

	return nil
}

// apply runs the outcome's store effects. The session is destroyed whenever
// the outcome ends it, even if an earlier effect failed, so a broken turn
// cannot wedge the user in a stale dialogue.
func (c *Conversation) apply(ctx context.Context, session *model.Session, outcome *Outcome) error {
	var applyErr error

	if outcome.SaveSession != nil {
		if err := c.repo.Session().Update(ctx, outcome.SaveSession); err != nil {
			applyErr = goerr.Wrap(err, "failed to save session", goerr.V("sessionID", session.ID))
		}
	}

	if outcome.CreateReminder != nil {
		if _, err := c.repo.Reminder().Create(ctx, outcome.CreateReminder); err != nil {
			applyErr = goerr.Wrap(err, "failed to create reminder",
				goerr.V("userID", session.UserID),
				goerr.V("subject", outcome.CreateReminder.SubjectName),
			)
		}
	}

	if outcome.DeleteSubject != "" {
		if _, err := c.repo.Reminder().DeleteByUserAndSubject(ctx, session.UserID, outcome.DeleteSubject); err != nil {
			applyErr = goerr.Wrap(err, "failed to delete reminders",
				goerr.V("userID", session.UserID),
				goerr.V("subject", outcome.DeleteSubject),
			)
		}
	}

	if outcome.EndSession {
		if err := c.repo.Session().Delete(ctx, session.ID); err != nil {
			errutil.Handle(ctx, err, "failed to end session")
		}
	}

	return applyErr
}
